package response

import (
	"errors"
	"fmt"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-roomeq/dsp/core"
	"github.com/cwbudde/algo-roomeq/measure/sweep"
)

// Errors returned by the estimator.
var (
	ErrRecordingTooShort = errors.New("response: recording is shorter than the sweep")
	ErrNoMatch           = errors.New("response: sweep not found in recording")
)

// divisorFloor is the relative power threshold below which a
// reference bin cannot be divided by. Band-edge bins of the sweep
// spectrum fall under it and are excluded rather than blowing up.
const divisorFloor = 1e-6

// Estimator extracts the complex frequency response of a playback
// chain by deconvolving a recording against the known sweep stimulus.
//
// With x the stimulus, y the recording and X, Y their transforms, the
// transfer function is estimated as
//
//	H = Y * conj(X) / (|X|^2 + eps)
//
// where eps regularizes bins with a weak reference spectrum.
type Estimator struct {
	sweep     *sweep.LogSweep
	reference []float64
}

// NewEstimator generates the reference stimulus for the given sweep
// and returns an estimator bound to its frequency grid.
func NewEstimator(s *sweep.LogSweep) (*Estimator, error) {
	reference, err := s.Generate()
	if err != nil {
		return nil, err
	}

	return &Estimator{sweep: s, reference: reference}, nil
}

// Reference returns the stimulus samples the estimator deconvolves against.
func (e *Estimator) Reference() []float64 {
	return e.reference
}

// Estimate deconvolves a time-aligned recording against the sweep and
// returns the complex frequency response from DC to Nyquist.
//
// Bins outside the sweep's [StartFreq, EndFreq] band carry no
// reliable signal and are marked BinUnmeasured; bins whose reference
// spectrum is numerically degenerate are marked BinExcluded. The
// recording must be at least as long as the sweep.
func (e *Estimator) Estimate(recording []float64) (*Spectrum, error) {
	if len(recording) < len(e.reference) {
		return nil, ErrRecordingTooShort
	}

	fftSize := core.NextPowerOf2(len(recording))

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("response: failed to create FFT plan: %w", err)
	}

	refFreq, err := forwardPadded(plan, e.reference, fftSize)
	if err != nil {
		return nil, err
	}

	recFreq, err := forwardPadded(plan, recording, fftSize)
	if err != nil {
		return nil, err
	}

	bins := fftSize/2 + 1
	out := &Spectrum{
		SampleRate: e.sweep.SampleRate,
		FFTSize:    fftSize,
		Bins:       make([]complex128, bins),
		Status:     make([]BinStatus, bins),
	}

	// Regularization scales with the strongest reference bin so the
	// threshold is independent of sweep length and amplitude.
	maxPower := 0.0

	for k := 0; k < bins; k++ {
		re := real(refFreq[k])
		im := imag(refFreq[k])

		if p := re*re + im*im; p > maxPower {
			maxPower = p
		}
	}

	eps := divisorFloor * maxPower

	loBin, hiBin := e.bandBins(fftSize)

	for k := 0; k < bins; k++ {
		if k < loBin || k > hiBin {
			out.Status[k] = BinUnmeasured
			continue
		}

		x := refFreq[k]

		power := real(x)*real(x) + imag(x)*imag(x)
		if power < eps {
			out.Status[k] = BinExcluded
			continue
		}

		out.Bins[k] = recFreq[k] * cmplx.Conj(x) / complex(power+eps, 0)
	}

	return out, nil
}

// Align locates the sweep inside a longer recording by FFT
// cross-correlation and returns the offset of the best match.
//
// Capture chains introduce unknown latency between playback and
// recording; aligning before estimation keeps the response phase
// meaningful.
func (e *Estimator) Align(recording []float64) (int, error) {
	if len(recording) < len(e.reference) {
		return 0, ErrRecordingTooShort
	}

	fftSize := core.NextPowerOf2(len(recording) + len(e.reference))

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return 0, fmt.Errorf("response: failed to create FFT plan: %w", err)
	}

	refFreq, err := forwardPadded(plan, e.reference, fftSize)
	if err != nil {
		return 0, err
	}

	recFreq, err := forwardPadded(plan, recording, fftSize)
	if err != nil {
		return 0, err
	}

	// corr = IFFT(Y * conj(X)); index k is the correlation at lag k.
	for i := range recFreq {
		recFreq[i] *= cmplx.Conj(refFreq[i])
	}

	corr := make([]complex128, fftSize)
	if err := plan.Inverse(corr, recFreq); err != nil {
		return 0, fmt.Errorf("response: inverse FFT failed: %w", err)
	}

	maxLag := len(recording) - len(e.reference)
	best := 0
	bestVal := real(corr[0])

	for lag := 1; lag <= maxLag; lag++ {
		if v := real(corr[lag]); v > bestVal {
			bestVal = v
			best = lag
		}
	}

	if bestVal <= 0 {
		return 0, ErrNoMatch
	}

	return best, nil
}

// EstimateAligned aligns the recording to the sweep and estimates the
// response from the matched segment.
func (e *Estimator) EstimateAligned(recording []float64) (*Spectrum, error) {
	offset, err := e.Align(recording)
	if err != nil {
		return nil, err
	}

	return e.Estimate(recording[offset:])
}

// bandBins returns the first and last bin index inside the sweep's
// excitation band for the given FFT size.
func (e *Estimator) bandBins(fftSize int) (lo, hi int) {
	binWidth := e.sweep.SampleRate / float64(fftSize)
	lo = int(0.5 + e.sweep.StartFreq/binWidth)
	hi = int(0.5 + e.sweep.EndFreq/binWidth)

	if hi > fftSize/2 {
		hi = fftSize / 2
	}

	return lo, hi
}

func forwardPadded(plan *algofft.Plan[complex128], samples []float64, fftSize int) ([]complex128, error) {
	padded := make([]complex128, fftSize)
	for i, v := range samples {
		padded[i] = complex(v, 0)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, padded); err != nil {
		return nil, fmt.Errorf("response: forward FFT failed: %w", err)
	}

	return out, nil
}
