package testutil

import (
	"math"
	"testing"
)

func TestSine(t *testing.T) {
	s := Sine(1000, 8000, 0.5, 16)

	if len(s) != 16 {
		t.Fatalf("length = %d, want 16", len(s))
	}

	if s[0] != 0 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}

	// 1 kHz at 8 kHz: quarter period is two samples.
	if math.Abs(s[2]-0.5) > 1e-12 {
		t.Fatalf("s[2] = %v, want 0.5", s[2])
	}
}

func TestNoiseDeterministic(t *testing.T) {
	a := Noise(42, 1, 256)
	b := Noise(42, 1, 256)

	RequireSliceNearlyEqual(t, a, b, 0)
	RequireFinite(t, a)

	for i, v := range a {
		if math.Abs(v) > 1 {
			t.Fatalf("sample %d = %v exceeds amplitude", i, v)
		}
	}
}

func TestImpulse(t *testing.T) {
	imp := Impulse(8, 3)

	for i, v := range imp {
		want := 0.0
		if i == 3 {
			want = 1
		}

		if v != want {
			t.Fatalf("imp[%d] = %v, want %v", i, v, want)
		}
	}

	if out := Impulse(4, 9); out[0] != 0 {
		t.Fatal("out-of-range position should produce silence")
	}
}

func TestPeakingEQBoostsCenter(t *testing.T) {
	const (
		rate = 8000.0
		freq = 1000.0
	)

	in := Sine(freq, rate, 0.1, 8000)

	out := make([]float64, len(in))
	copy(out, in)
	PeakingEQ(out, rate, freq, 2, 20)

	// Steady-state gain at the center frequency is +20 dB.
	var inPk, outPk float64
	for i := len(in) / 2; i < len(in); i++ {
		inPk = math.Max(inPk, math.Abs(in[i]))
		outPk = math.Max(outPk, math.Abs(out[i]))
	}

	gain := 20 * math.Log10(outPk/inPk)
	if math.Abs(gain-20) > 0.5 {
		t.Fatalf("gain at center = %v dB, want 20", gain)
	}
}
