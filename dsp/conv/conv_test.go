package conv

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-roomeq/internal/testutil"
)

// direct computes reference linear convolution in O(n*m).
func direct(signal, kernel []float64) []float64 {
	out := make([]float64, len(signal)+len(kernel)-1)

	for i, s := range signal {
		for j, k := range kernel {
			out[i+j] += s * k
		}
	}

	return out
}

func TestConvolveIdentity(t *testing.T) {
	signal := testutil.Noise(7, 1, 500)

	got, err := Convolve(signal, []float64{1})
	if err != nil {
		t.Fatalf("Convolve failed: %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, got, signal, 1e-12)
}

func TestConvolveDelays(t *testing.T) {
	signal := testutil.Noise(11, 1, 300)

	got, err := Convolve(signal, testutil.Impulse(65, 64))
	if err != nil {
		t.Fatalf("Convolve failed: %v", err)
	}

	if len(got) != len(signal)+64 {
		t.Fatalf("length = %d, want %d", len(got), len(signal)+64)
	}

	testutil.RequireSliceNearlyEqual(t, got[64:], signal, 1e-12)
}

func TestOverlapAddMatchesDirect(t *testing.T) {
	signal := testutil.Noise(1, 1, 3000)
	kernel := testutil.Noise(2, 1, 127)

	for _, blockSize := range []int{0, 64, 700, 4096} {
		oa, err := NewOverlapAdd(kernel, blockSize)
		if err != nil {
			t.Fatalf("blockSize %d: NewOverlapAdd failed: %v", blockSize, err)
		}

		got, err := oa.Apply(signal)
		if err != nil {
			t.Fatalf("blockSize %d: Apply failed: %v", blockSize, err)
		}

		want := direct(signal, kernel)
		testutil.RequireSliceNearlyEqual(t, got, want, 1e-9)
	}
}

func TestOverlapAddKernelLen(t *testing.T) {
	oa, err := NewOverlapAdd(make([]float64, 33), 0)
	if err != nil {
		t.Fatalf("NewOverlapAdd failed: %v", err)
	}

	if oa.KernelLen() != 33 {
		t.Fatalf("KernelLen = %d, want 33", oa.KernelLen())
	}
}

func TestErrors(t *testing.T) {
	if _, err := NewOverlapAdd(nil, 0); !errors.Is(err, ErrEmptyKernel) {
		t.Fatalf("empty kernel: err = %v, want ErrEmptyKernel", err)
	}

	oa, err := NewOverlapAdd([]float64{1}, 0)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := oa.Apply(nil); !errors.Is(err, ErrEmptySignal) {
		t.Fatalf("empty signal: err = %v, want ErrEmptySignal", err)
	}
}

func TestConvolveFlattensCorrectedResonance(t *testing.T) {
	// A sine at the resonance of a +12 dB peaking system, convolved
	// with an inverse kernel carrying -12 dB at that frequency, must
	// come out near unity gain.
	const (
		rate = 8000.0
		freq = 500.0
	)

	signal := testutil.Sine(freq, rate, 0.1, 8000)
	testutil.PeakingEQ(signal, rate, freq, 1, 12)

	inverse := testutil.Impulse(1, 0)
	for i := range inverse {
		inverse[i] *= math.Pow(10, -12.0/20)
	}

	got, err := Convolve(signal, inverse)
	if err != nil {
		t.Fatalf("Convolve failed: %v", err)
	}

	var peak float64
	for _, v := range got[len(got)/2:] {
		peak = math.Max(peak, math.Abs(v))
	}

	if math.Abs(peak-0.1) > 0.005 {
		t.Fatalf("corrected peak = %v, want ~0.1", peak)
	}
}
