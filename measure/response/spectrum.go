package response

import (
	"math"

	"github.com/cwbudde/algo-roomeq/dsp/spectrum"
)

// BinStatus tags the reliability of a single frequency bin.
//
// Bins are never silently zeroed: a bin either carries a valid
// estimate, lies outside the excited band, or was excluded because
// the reference spectrum was too weak there to divide by.
type BinStatus uint8

const (
	// BinValid marks a bin with a reliable response estimate.
	BinValid BinStatus = iota

	// BinUnmeasured marks a bin outside the sweep's excitation band.
	BinUnmeasured

	// BinExcluded marks a bin whose reference spectrum magnitude was
	// numerically degenerate, so no stable estimate exists.
	BinExcluded
)

// Spectrum is a one-sided complex frequency response on a fixed grid.
//
// Bins run from DC to Nyquist (FFTSize/2 + 1 bins). The grid — sample
// rate and FFT size — is fixed for the lifetime of a measurement
// session; spectra may only be averaged or compared on an identical
// grid. A Spectrum is immutable once built: every transform in this
// package returns a new value.
type Spectrum struct {
	SampleRate float64
	FFTSize    int
	Bins       []complex128
	Status     []BinStatus
}

// NumBins returns the number of one-sided frequency bins.
func (s *Spectrum) NumBins() int {
	return len(s.Bins)
}

// Frequency returns the center frequency of bin i in Hz.
func (s *Spectrum) Frequency(i int) float64 {
	return float64(i) * s.SampleRate / float64(s.FFTSize)
}

// Frequencies returns the center frequency of every bin.
func (s *Spectrum) Frequencies() []float64 {
	out := make([]float64, len(s.Bins))
	for i := range out {
		out[i] = s.Frequency(i)
	}

	return out
}

// SameGrid reports whether two spectra share the identical frequency grid.
func (s *Spectrum) SameGrid(o *Spectrum) bool {
	return o != nil && s.SampleRate == o.SampleRate && s.FFTSize == o.FFTSize
}

// Clone returns a deep copy.
func (s *Spectrum) Clone() *Spectrum {
	out := &Spectrum{
		SampleRate: s.SampleRate,
		FFTSize:    s.FFTSize,
		Bins:       make([]complex128, len(s.Bins)),
		Status:     make([]BinStatus, len(s.Status)),
	}
	copy(out.Bins, s.Bins)
	copy(out.Status, s.Status)

	return out
}

// MagnitudeDB returns the magnitude of every bin in dB. Unmeasured
// and excluded bins are reported as NaN.
func (s *Spectrum) MagnitudeDB() []float64 {
	out := spectrum.MagnitudeDB(s.Bins)
	for i, st := range s.Status {
		if st != BinValid {
			out[i] = math.NaN()
		}
	}

	return out
}

// Phase returns the phase of every bin in radians.
func (s *Spectrum) Phase() []float64 {
	return spectrum.Phase(s.Bins)
}

// ValidBand returns the index range [lo, hi] spanned by valid bins,
// and false when the spectrum has no valid bin.
func (s *Spectrum) ValidBand() (lo, hi int, ok bool) {
	lo = -1

	for i, st := range s.Status {
		if st != BinValid {
			continue
		}

		if lo < 0 {
			lo = i
		}

		hi = i
	}

	return lo, hi, lo >= 0
}
