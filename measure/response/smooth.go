package response

import (
	"math/cmplx"

	"github.com/cwbudde/algo-roomeq/dsp/core"
	"github.com/cwbudde/algo-roomeq/dsp/logfreq"
	"github.com/cwbudde/algo-roomeq/dsp/spectrum"
)

// Smooth applies frequency-proportional smoothing to the magnitude of
// a spectrum and returns the smoothed copy.
//
// The averaging window spans a constant width in octaves around each
// bin, so low frequencies keep their resolution while noisy
// high-frequency detail is averaged away. Smoothing operates on the
// dB magnitude of the valid band only; unmeasured and excluded bins
// pass through unchanged, and phase is preserved per bin. A width of
// 0 octaves is the identity.
func Smooth(s *Spectrum, octaves float64) (*Spectrum, error) {
	if octaves == 0 {
		return s.Clone(), nil
	}

	lo, hi, ok := s.ValidBand()
	if !ok {
		return s.Clone(), nil
	}

	// Collect the valid bins; the band may have excluded holes, and
	// a zero-magnitude bin has no dB value to average.
	idx := make([]int, 0, hi-lo+1)
	freqs := make([]float64, 0, hi-lo+1)
	mags := make([]float64, 0, hi-lo+1)

	for i := lo; i <= hi; i++ {
		if s.Status[i] != BinValid {
			continue
		}

		mag := cmplx.Abs(s.Bins[i])
		if mag <= 0 {
			continue
		}

		idx = append(idx, i)
		freqs = append(freqs, s.Frequency(i))
		mags = append(mags, core.LinearToDB(mag))
	}

	smoothed, err := logfreq.SmoothProportional(freqs, mags, octaves)
	if err != nil {
		return nil, err
	}

	out := s.Clone()

	phases := spectrum.Phase(s.Bins)
	for j, i := range idx {
		out.Bins[i] = cmplx.Rect(core.DBToLinear(smoothed[j]), phases[i])
	}

	return out, nil
}
