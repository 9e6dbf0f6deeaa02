package correction

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-roomeq/dsp/window"
)

// Taper produces window coefficients that roll the ends of a
// truncated impulse response off toward zero. Abrupt truncation
// leaves residual energy at the edges which is audible as pre-echo;
// stronger tapering trades that leakage against low-frequency
// resolution, so the shape is a configurable strategy rather than a
// fixed window family.
type Taper func(size int) []float64

// KaiserTaper returns a Kaiser-window taper with the given beta.
// Beta 0 is rectangular; useful values run to around 30.
func KaiserTaper(beta float64) Taper {
	return func(size int) []float64 {
		return window.Generate(window.TypeKaiser, size, beta)
	}
}

// TukeyTaper returns a Tukey-window taper whose alpha is the tapered
// fraction of the impulse, in [0, 1].
func TukeyTaper(alpha float64) Taper {
	return func(size int) []float64 {
		return window.Generate(window.TypeTukey, size, alpha)
	}
}

// HannTaper returns a full raised-cosine taper.
func HannTaper() Taper {
	return func(size int) []float64 {
		return window.Generate(window.TypeHann, size, 0)
	}
}

// DefaultTaper is the taper applied when BuildOptions.Taper is nil.
var DefaultTaper = KaiserTaper(5)

// BuildOptions configures impulse construction.
type BuildOptions struct {
	// Duration is the desired impulse length in seconds. The tap
	// count duration*sampleRate is rounded up to an odd number so a
	// true center tap exists.
	Duration float64

	// Taper shapes the edge roll-off; nil selects DefaultTaper.
	Taper Taper
}

// ImpulseResponse is a finite, odd-length, symmetric filter kernel.
// Convolved with the playback signal it applies the correction
// without phase distortion; the price is a latency of half its
// duration, the position of the center tap.
type ImpulseResponse struct {
	SampleRate float64
	Taps       []float64
}

// Center returns the index of the center tap.
func (ir *ImpulseResponse) Center() int {
	return len(ir.Taps) / 2
}

// Latency returns the group delay of the filter in seconds.
func (ir *ImpulseResponse) Latency() float64 {
	return float64(ir.Center()) / ir.SampleRate
}

// Duration returns the impulse length in seconds.
func (ir *ImpulseResponse) Duration() float64 {
	return float64(len(ir.Taps)) / ir.SampleRate
}

// Build inverse-transforms a correction factor into a phase-neutral
// time-domain impulse response.
//
// The one-sided gains are mirrored into a full real, even-symmetric
// spectrum whose inverse transform is a zero-phase kernel. The kernel
// is rotated so its symmetry center lands on the middle sample,
// truncated (or zero-padded) to the requested odd tap count, tapered,
// and normalized to keep the convolved output clear of clipping.
func Build(f *Factor, opts BuildOptions) (*ImpulseResponse, error) {
	if f.SampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}

	taps := int(math.Round(opts.Duration * f.SampleRate))
	if taps%2 == 0 {
		taps++
	}

	if taps < 3 {
		return nil, ErrDurationTooShort
	}

	n := f.FFTSize

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("correction: failed to create FFT plan: %w", err)
	}

	// Real, even-symmetric spectrum: zero phase by construction.
	full := make([]complex128, n)
	for k, g := range f.Gain {
		full[k] = complex(g, 0)
		if k > 0 && k < n-k {
			full[n-k] = complex(g, 0)
		}
	}

	kernel := make([]complex128, n)
	if err := plan.Inverse(kernel, full); err != nil {
		return nil, fmt.Errorf("correction: inverse FFT failed: %w", err)
	}

	// Rotate the circular kernel so the symmetry center (sample 0)
	// lands on the middle sample.
	center := n / 2
	shifted := make([]float64, n)

	for i := range shifted {
		shifted[i] = real(kernel[(i+n-center)%n])
	}

	// Cut the requested odd-length slice around the center; pad with
	// zeros when the request is longer than the kernel.
	out := make([]float64, taps)
	half := taps / 2

	for i := range out {
		j := center - half + i
		if j >= 0 && j < n {
			out[i] = shifted[j]
		}
	}

	taper := opts.Taper
	if taper == nil {
		taper = DefaultTaper
	}

	if err := window.Apply(out, taper(taps)); err != nil {
		return nil, fmt.Errorf("correction: taper failed: %w", err)
	}

	normalize(out)

	return &ImpulseResponse{SampleRate: f.SampleRate, Taps: out}, nil
}

// normalize scales the kernel by a p-norm between the clip-safe L1
// bound and the energy L2 bound, keeping output level consistent
// without starving strongly attenuating filters.
func normalize(taps []float64) {
	const dim = 1.6

	var sum float64
	for _, v := range taps {
		sum += math.Pow(math.Abs(v), dim)
	}

	norm := math.Pow(sum, 1/dim)
	if norm == 0 {
		return
	}

	for i := range taps {
		taps[i] /= norm
	}
}
