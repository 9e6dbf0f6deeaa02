package response

import (
	"github.com/cwbudde/algo-roomeq/dsp/core"
	"github.com/cwbudde/algo-roomeq/dsp/logfreq"
)

// Calibrate applies a microphone (or other transducer) correction
// curve to a measured spectrum and returns the corrected copy.
//
// The curve's dB value, interpolated in log-frequency onto the
// spectrum's grid, is added to each bin's magnitude; phase is left
// untouched. A nil or empty curve is the identity transform.
func Calibrate(s *Spectrum, curve []logfreq.Point) (*Spectrum, error) {
	if len(curve) == 0 {
		return s.Clone(), nil
	}

	offsets, err := logfreq.Resample(curve, s.Frequencies())
	if err != nil {
		return nil, err
	}

	out := s.Clone()

	for i, st := range out.Status {
		if st != BinValid {
			continue
		}

		// A real positive factor scales the magnitude and keeps the phase.
		out.Bins[i] *= complex(core.DBToLinear(offsets[i]), 0)
	}

	return out, nil
}
