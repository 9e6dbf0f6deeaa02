// Package store holds the calibrated spectra of a measurement
// session and computes their running average.
package store

import (
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/cwbudde/algo-roomeq/dsp/core"
	"github.com/cwbudde/algo-roomeq/measure/response"
)

// Errors returned by the measurement store.
var (
	ErrGridMismatch   = errors.New("store: spectrum grid differs from stored measurements")
	ErrDuplicateLabel = errors.New("store: a measurement with this label already exists")
	ErrNotFound       = errors.New("store: no measurement with this label")
	ErrEmpty          = errors.New("store: no measurements stored")
)

// Measurement is a named, timestamped spectrum. Members are never
// mutated after they enter the store.
type Measurement struct {
	Label    string
	Taken    time.Time
	Spectrum *response.Spectrum
}

// Store collects measurements taken on one frequency grid and
// averages them on demand.
//
// The average is recomputed lazily whenever membership changes. All
// methods are safe for concurrent use; each call observes a
// consistent membership snapshot.
type Store struct {
	mu      sync.Mutex
	members []Measurement
	avg     *response.Spectrum
}

// New returns an empty measurement store.
func New() *Store {
	return &Store{}
}

// Add stores a spectrum under the given label. The spectrum is cloned
// on entry, so later changes by the caller cannot reach the store.
// All members must share one frequency grid.
func (st *Store) Add(label string, spec *response.Spectrum) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, m := range st.members {
		if m.Label == label {
			return ErrDuplicateLabel
		}
	}

	if len(st.members) > 0 && !st.members[0].Spectrum.SameGrid(spec) {
		return ErrGridMismatch
	}

	st.members = append(st.members, Measurement{
		Label:    label,
		Taken:    time.Now(),
		Spectrum: spec.Clone(),
	})
	st.avg = nil

	return nil
}

// Remove deletes the measurement with the given label.
func (st *Store) Remove(label string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	for i, m := range st.members {
		if m.Label == label {
			st.members = append(st.members[:i], st.members[i+1:]...)
			st.avg = nil

			return nil
		}
	}

	return ErrNotFound
}

// Len returns the number of stored measurements.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	return len(st.members)
}

// Labels returns the labels of all stored measurements, sorted.
func (st *Store) Labels() []string {
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]string, len(st.members))
	for i, m := range st.members {
		out[i] = m.Label
	}

	sort.Strings(out)

	return out
}

// Average returns the per-bin mean of the stored spectra.
//
// The mean is taken over the magnitude in dB of the members whose bin
// is valid; a bin valid in no member stays unmeasured. Phase carries
// no meaning across measurements taken at different times, so the
// average is zero-phase: only magnitude drives correction synthesis.
func (st *Store) Average() (*response.Spectrum, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if len(st.members) == 0 {
		return nil, ErrEmpty
	}

	if st.avg == nil {
		st.avg = average(st.members)
	}

	return st.avg.Clone(), nil
}

func average(members []Measurement) *response.Spectrum {
	first := members[0].Spectrum
	bins := first.NumBins()

	out := &response.Spectrum{
		SampleRate: first.SampleRate,
		FFTSize:    first.FFTSize,
		Bins:       make([]complex128, bins),
		Status:     make([]response.BinStatus, bins),
	}

	for k := 0; k < bins; k++ {
		var sum float64

		count := 0

		for _, m := range members {
			if m.Spectrum.Status[k] != response.BinValid {
				continue
			}

			power := real(m.Spectrum.Bins[k])*real(m.Spectrum.Bins[k]) +
				imag(m.Spectrum.Bins[k])*imag(m.Spectrum.Bins[k])
			if power <= 0 {
				continue
			}

			// 10*log10 of the squared magnitude is the amplitude in dB.
			sum += core.LinearPowerToDB(power)
			count++
		}

		if count == 0 {
			out.Status[k] = response.BinUnmeasured
			continue
		}

		out.Bins[k] = complex(math.Pow(10, sum/float64(count)/20), 0)
	}

	return out
}
