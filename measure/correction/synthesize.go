package correction

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-roomeq/dsp/core"
	"github.com/cwbudde/algo-roomeq/dsp/logfreq"
	"github.com/cwbudde/algo-roomeq/measure/response"
)

// Errors returned by correction synthesis.
var (
	ErrEmptySpectrum     = errors.New("correction: spectrum has no valid bins")
	ErrInvalidRange      = errors.New("correction: range must be >= 0 dB")
	ErrGridMismatch      = errors.New("correction: factor grid differs from spectrum grid")
	ErrDurationTooShort  = errors.New("correction: duration cannot contain a center tap plus one sample each side")
	ErrInvalidSampleRate = errors.New("correction: sample rate must be positive")
)

// Options configures correction synthesis.
type Options struct {
	// RangeDB caps the peak-to-peak excursion of the correction in dB.
	RangeDB float64

	// Target is an optional target curve. When nil the correction
	// flattens the response toward 0 dB.
	Target []logfreq.Point
}

// Factor is the per-bin corrective gain derived from a measured
// spectrum. Gains are linear, attenuation-only (never above 1), and
// purely a function of the inputs that produced them.
type Factor struct {
	SampleRate float64
	FFTSize    int
	Gain       []float64
}

// NumBins returns the number of one-sided frequency bins.
func (f *Factor) NumBins() int {
	return len(f.Gain)
}

// Frequency returns the center frequency of bin i in Hz.
func (f *Factor) Frequency(i int) float64 {
	return float64(i) * f.SampleRate / float64(f.FFTSize)
}

// GainDB returns the correction of every bin in dB.
func (f *Factor) GainDB() []float64 {
	out := make([]float64, len(f.Gain))
	for i, g := range f.Gain {
		out[i] = core.LinearToDB(g)
	}

	return out
}

// Synthesize computes the corrective gain per frequency bin for a
// (smoothed, calibrated, possibly averaged) spectrum.
//
// Per valid bin the deviation between the measured magnitude and the
// desired magnitude (0 dB flat, or the target curve) is negated to
// obtain the raw correction. Because an equalizer cannot add energy
// the speaker never produced, the correction only ever attenuates:
// its peak is pinned to 0 dB and every other bin is attenuated
// relative to it, with the total excursion capped at RangeDB. Bins
// outside the measured span get no correction — extrapolating into
// unmeasured territory would only amplify noise.
func Synthesize(s *response.Spectrum, opts Options) (*Factor, error) {
	if opts.RangeDB < 0 {
		return nil, ErrInvalidRange
	}

	var (
		targetDB []float64
		err      error
	)

	if len(opts.Target) > 0 {
		targetDB, err = logfreq.Resample(opts.Target, s.Frequencies())
		if err != nil {
			return nil, err
		}
	}

	bins := s.NumBins()
	corrDB := make([]float64, bins)
	usable := make([]bool, bins)
	peak := math.Inf(-1)

	for i, st := range s.Status {
		if st != response.BinValid {
			continue
		}

		mag := cmplx.Abs(s.Bins[i])
		if mag <= 0 {
			continue
		}

		deviation := core.LinearToDB(mag)
		if targetDB != nil {
			deviation -= targetDB[i]
		}

		corrDB[i] = -deviation
		usable[i] = true

		if corrDB[i] > peak {
			peak = corrDB[i]
		}
	}

	if math.IsInf(peak, -1) {
		return nil, ErrEmptySpectrum
	}

	out := &Factor{
		SampleRate: s.SampleRate,
		FFTSize:    s.FFTSize,
		Gain:       make([]float64, bins),
	}

	for i := range out.Gain {
		if !usable[i] {
			out.Gain[i] = 1
			continue
		}

		db := core.Clamp(corrDB[i]-peak, -opts.RangeDB, 0)
		out.Gain[i] = core.DBToLinear(db)
	}

	return out, nil
}

// Simulate predicts the frequency response of the system after the
// correction factor is applied, in dB per bin. Bins without a valid
// measurement are reported as NaN.
func Simulate(s *response.Spectrum, f *Factor) ([]float64, error) {
	if s.SampleRate != f.SampleRate || s.FFTSize != f.FFTSize {
		return nil, ErrGridMismatch
	}

	out := make([]float64, s.NumBins())

	for i, st := range s.Status {
		if st != response.BinValid {
			out[i] = math.NaN()
			continue
		}

		out[i] = core.LinearToDB(cmplx.Abs(s.Bins[i]) * f.Gain[i])
	}

	return out, nil
}
