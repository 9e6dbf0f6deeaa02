// Package level reports the drive level of a recorded signal.
//
// A sweep recording is only usable when it was captured loud enough
// to clear the noise floor but without clipping the converter. The
// statistics here are what an operator needs to judge that: peak and
// RMS level in dBFS, crest factor, DC offset, and a count of samples
// at or beyond full scale.
package level

import "math"

// ClipThreshold is the absolute amplitude at which a sample counts as
// clipped. Converters rarely deliver exact ±1.0, so a hair below full
// scale catches flat-topped peaks too.
const ClipThreshold = 0.999

// Stats holds level statistics of a recording.
type Stats struct {
	Length  int
	DC      float64 // mean sample value
	RMS     float64
	RMSDB   float64 // RMS in dBFS
	Peak    float64 // max absolute amplitude
	PeakDB  float64 // peak in dBFS
	Crest   float64 // peak / RMS
	CrestDB float64
	Clipped int // samples at or beyond ClipThreshold
}

// Headroom returns the distance between the peak and full scale in
// dB. Zero or negative means the recording clips.
func (s Stats) Headroom() float64 {
	return -s.PeakDB
}

func ampToDB(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(v)
}

// Calculate computes level statistics in a single pass. Kahan
// summation keeps the DC estimate stable on long recordings.
func Calculate(signal []float64) Stats {
	n := len(signal)
	if n == 0 {
		return Stats{RMSDB: math.Inf(-1), PeakDB: math.Inf(-1), CrestDB: math.Inf(-1)}
	}

	var (
		sum, comp float64
		sumSq     float64
		peak      float64
		clipped   int
	)

	for _, x := range signal {
		y := x - comp
		t := sum + y
		comp = (t - sum) - y
		sum = t

		sumSq += x * x

		a := math.Abs(x)
		if a > peak {
			peak = a
		}

		if a >= ClipThreshold {
			clipped++
		}
	}

	s := Stats{
		Length:  n,
		DC:      sum / float64(n),
		RMS:     math.Sqrt(sumSq / float64(n)),
		Peak:    peak,
		Clipped: clipped,
	}

	s.RMSDB = ampToDB(s.RMS)
	s.PeakDB = ampToDB(s.Peak)

	if s.RMS > 0 {
		s.Crest = s.Peak / s.RMS
		s.CrestDB = ampToDB(s.Crest)
	} else {
		s.CrestDB = math.Inf(-1)
	}

	return s
}

// RMS returns the root-mean-square amplitude of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	var sumSq float64
	for _, x := range signal {
		sumSq += x * x
	}

	return math.Sqrt(sumSq / float64(len(signal)))
}

// Peak returns the maximum absolute amplitude of the signal.
func Peak(signal []float64) float64 {
	var peak float64

	for _, x := range signal {
		if a := math.Abs(x); a > peak {
			peak = a
		}
	}

	return peak
}
