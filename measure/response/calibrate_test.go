package response

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-roomeq/dsp/logfreq"
)

func TestCalibrateNilCurveIsIdentity(t *testing.T) {
	s := flatSpectrum(48000, 256, 1)

	got, err := Calibrate(s, nil)
	if err != nil {
		t.Fatal(err)
	}

	for i := range s.Bins {
		if got.Bins[i] != s.Bins[i] {
			t.Fatalf("bin %d modified by nil curve", i)
		}
	}
}

func TestCalibrateConstantOffset(t *testing.T) {
	s := flatSpectrum(48000, 256, 1)

	// A curve that is +6 dB at both control points extrapolates flat,
	// so every valid bin gains exactly 6 dB.
	curve := []logfreq.Point{{Freq: 100, DB: 6}, {Freq: 10000, DB: 6}}

	got, err := Calibrate(s, curve)
	if err != nil {
		t.Fatal(err)
	}

	want := math.Pow(10, 6.0/20)

	for i, st := range got.Status {
		if st != BinValid {
			continue
		}

		if mag := cmplx.Abs(got.Bins[i]); math.Abs(mag-want) > 1e-9 {
			t.Errorf("bin %d: magnitude %v, want %v", i, mag, want)
		}
	}

	// Unmeasured bins stay untouched.
	if got.Bins[0] != s.Bins[0] {
		t.Error("unmeasured bin was calibrated")
	}
}

func TestCalibratePreservesPhase(t *testing.T) {
	s := flatSpectrum(48000, 256, 1)
	for i := range s.Bins {
		s.Bins[i] = cmplx.Rect(1, 0.3)
	}

	curve := []logfreq.Point{{Freq: 20, DB: -3}, {Freq: 20000, DB: 9}}

	got, err := Calibrate(s, curve)
	if err != nil {
		t.Fatal(err)
	}

	for i, st := range got.Status {
		if st != BinValid {
			continue
		}

		if phase := cmplx.Phase(got.Bins[i]); math.Abs(phase-0.3) > 1e-12 {
			t.Errorf("bin %d: phase %v, want 0.3", i, phase)
		}
	}
}

func TestCalibrateSlopedCurve(t *testing.T) {
	s := flatSpectrum(48000, 2048, 1)

	curve := []logfreq.Point{{Freq: 100, DB: 0}, {Freq: 1000, DB: -10}}

	got, err := Calibrate(s, curve)
	if err != nil {
		t.Fatal(err)
	}

	// The geometric midpoint of the control points sits at -5 dB.
	mid := math.Sqrt(100 * 1000)
	bin := int(mid/s.SampleRate*float64(s.FFTSize) + 0.5)

	gotDB := 20 * math.Log10(cmplx.Abs(got.Bins[bin]))

	// The bin grid does not land exactly on the midpoint frequency.
	if math.Abs(gotDB+5) > 0.2 {
		t.Errorf("midpoint bin = %v dB, want ~-5", gotDB)
	}
}

func TestCalibrateUnsortedCurve(t *testing.T) {
	s := flatSpectrum(48000, 64, 1)

	_, err := Calibrate(s, []logfreq.Point{{Freq: 1000, DB: 0}, {Freq: 100, DB: 1}})
	if err == nil {
		t.Error("expected error for unsorted curve")
	}
}
