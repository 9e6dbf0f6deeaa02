package sweep

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-roomeq/dsp/core"
	"github.com/cwbudde/algo-roomeq/dsp/window"
)

// Errors returned by sweep functions.
var (
	ErrInvalidFrequency  = errors.New("sweep: frequency must be positive")
	ErrFrequencyOrder    = errors.New("sweep: start frequency must be less than end frequency")
	ErrAboveNyquist      = errors.New("sweep: end frequency must not exceed Nyquist")
	ErrInvalidDuration   = errors.New("sweep: duration must be positive")
	ErrInvalidSampleRate = errors.New("sweep: sample rate must be positive")
	ErrInvalidAmplitude  = errors.New("sweep: amplitude must be in (0, 1]")
	ErrInvalidFade       = errors.New("sweep: fade fraction must be in [0, 0.5]")
)

// DefaultFadeFraction is the edge-fade length used by New, as a
// fraction of the sweep duration per edge.
const DefaultFadeFraction = 0.015

// LogSweep generates the exponential sine-sweep stimulus used for
// frequency response measurement.
//
// A logarithmic sweep spends equal time in each octave, giving
// uniform signal-to-noise ratio across the audible band. The
// instantaneous frequency rises geometrically from StartFreq to
// EndFreq, with continuous phase across every sample boundary.
type LogSweep struct {
	StartFreq    float64 // start frequency in Hz
	EndFreq      float64 // end frequency in Hz
	Duration     float64 // sweep duration in seconds
	SampleRate   float64 // sample rate in Hz
	Amplitude    float64 // peak amplitude in (0, 1]
	FadeFraction float64 // raised-cosine edge fade per side, as a fraction of Duration
}

// New returns a LogSweep with full amplitude and the default edge fade.
func New(startFreq, endFreq, duration, sampleRate float64) *LogSweep {
	return &LogSweep{
		StartFreq:    startFreq,
		EndFreq:      endFreq,
		Duration:     duration,
		SampleRate:   sampleRate,
		Amplitude:    1,
		FadeFraction: DefaultFadeFraction,
	}
}

// Validate checks that the LogSweep parameters are valid.
func (s *LogSweep) Validate() error {
	if s.StartFreq <= 0 || s.EndFreq <= 0 {
		return ErrInvalidFrequency
	}

	if s.StartFreq >= s.EndFreq {
		return ErrFrequencyOrder
	}

	if s.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}

	if s.EndFreq > s.SampleRate/2 {
		return ErrAboveNyquist
	}

	if s.Duration <= 0 {
		return ErrInvalidDuration
	}

	if s.Amplitude <= 0 || s.Amplitude > 1 {
		return ErrInvalidAmplitude
	}

	if s.FadeFraction < 0 || s.FadeFraction > 0.5 {
		return ErrInvalidFade
	}

	return nil
}

// Samples returns the total number of samples of the generated sweep.
func (s *LogSweep) Samples() int {
	return int(math.Round(s.Duration * s.SampleRate))
}

// Nyquist returns half the sample rate.
func (s *LogSweep) Nyquist() float64 {
	return s.SampleRate / 2
}

// Octaves returns the frequency span of the sweep in octaves.
func (s *LogSweep) Octaves() float64 {
	return core.Octaves(s.StartFreq, s.EndFreq)
}

// FrequencyAt returns the instantaneous frequency at time t:
//
//	f(t) = f1 * (f2/f1)^(t/T)
func (s *LogSweep) FrequencyAt(t float64) float64 {
	return s.StartFreq * math.Pow(s.EndFreq/s.StartFreq, t/s.Duration)
}

// Generate creates the exponential sine sweep signal.
//
// The phase integral of the instantaneous frequency gives:
//
//	x(t) = A * sin(2π * f1 * T / ln(f2/f1) * (exp(t/T * ln(f2/f1)) - 1))
//
// A raised-cosine fade is applied over FadeFraction of the duration
// at each edge so the stimulus starts and ends without a click.
func (s *LogSweep) Generate() ([]float64, error) {
	err := s.Validate()
	if err != nil {
		return nil, err
	}

	n := s.Samples()
	out := make([]float64, n)

	T := s.Duration
	lnRatio := math.Log(s.EndFreq / s.StartFreq)

	for i := range out {
		t := float64(i) / s.SampleRate
		phase := 2 * math.Pi * s.StartFreq * T / lnRatio * (math.Exp(t/T*lnRatio) - 1)
		out[i] = s.Amplitude * math.Sin(phase)
	}

	window.FadeEdges(out, int(math.Round(s.FadeFraction*float64(n))))

	return out, nil
}
