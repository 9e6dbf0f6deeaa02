// Package frequency summarizes a measured magnitude response.
//
// Statistics operate on magnitudes in dB over an explicit frequency
// grid. Bins whose value is NaN carry no measurement and are skipped,
// which matches how masked spectra report unmeasured bins.
package frequency

import "math"

// Stats describes the shape of a magnitude response.
type Stats struct {
	BinCount int // bins carrying a measurement

	MaxDB   float64 // loudest bin
	MaxFreq float64
	MinDB   float64 // quietest bin
	MinFreq float64

	AverageDB float64 // arithmetic mean in dB
	RangeDB   float64 // MaxDB - MinDB

	Centroid float64 // amplitude-weighted mean frequency, Hz
	Spread   float64 // standard deviation around the centroid, Hz
	Flatness float64 // Wiener entropy of the linear magnitude, 0..1
	Rolloff  float64 // frequency below which 85% of the energy lies
	Width3DB float64 // width of the band within 3 dB of the peak, Hz
}

const rolloffFraction = 0.85

func toLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// Calculate computes response statistics over all measured bins.
// freqs and magnitudeDB must have the same length; unmeasured bins
// are marked with NaN in magnitudeDB.
func Calculate(freqs, magnitudeDB []float64) Stats {
	s := Stats{
		MaxDB: math.Inf(-1),
		MinDB: math.Inf(1),
	}

	var (
		sumDB  float64
		sumLin float64
		sumLog float64
		energy float64
	)

	n := len(magnitudeDB)
	if len(freqs) < n {
		n = len(freqs)
	}

	for i := 0; i < n; i++ {
		db := magnitudeDB[i]
		if math.IsNaN(db) {
			continue
		}

		s.BinCount++
		sumDB += db

		if db > s.MaxDB {
			s.MaxDB = db
			s.MaxFreq = freqs[i]
		}

		if db < s.MinDB {
			s.MinDB = db
			s.MinFreq = freqs[i]
		}

		lin := toLinear(db)
		sumLin += lin
		sumLog += math.Log(lin)
		energy += lin * lin
	}

	if s.BinCount == 0 {
		return Stats{MaxDB: math.NaN(), MinDB: math.NaN(), AverageDB: math.NaN(), RangeDB: math.NaN()}
	}

	s.AverageDB = sumDB / float64(s.BinCount)
	s.RangeDB = s.MaxDB - s.MinDB
	s.Centroid = centroid(freqs, magnitudeDB, sumLin)
	s.Spread = spread(freqs, magnitudeDB, s.Centroid, sumLin)
	s.Flatness = math.Exp(sumLog/float64(s.BinCount)) / (sumLin / float64(s.BinCount))
	s.Rolloff = rolloff(freqs, magnitudeDB, energy)
	s.Width3DB = width3DB(freqs, magnitudeDB, s.MaxDB)

	return s
}

func centroid(freqs, magnitudeDB []float64, sumLin float64) float64 {
	if sumLin == 0 {
		return 0
	}

	var weighted float64

	for i, db := range magnitudeDB {
		if math.IsNaN(db) {
			continue
		}

		weighted += freqs[i] * toLinear(db)
	}

	return weighted / sumLin
}

func spread(freqs, magnitudeDB []float64, cent, sumLin float64) float64 {
	if sumLin == 0 {
		return 0
	}

	var weighted float64

	for i, db := range magnitudeDB {
		if math.IsNaN(db) {
			continue
		}

		d := freqs[i] - cent
		weighted += d * d * toLinear(db)
	}

	return math.Sqrt(weighted / sumLin)
}

func rolloff(freqs, magnitudeDB []float64, totalEnergy float64) float64 {
	if totalEnergy == 0 {
		return 0
	}

	threshold := rolloffFraction * totalEnergy
	cum := 0.0
	last := 0.0

	for i, db := range magnitudeDB {
		if math.IsNaN(db) {
			continue
		}

		lin := toLinear(db)

		cum += lin * lin
		if cum >= threshold {
			return freqs[i]
		}

		last = freqs[i]
	}

	return last
}

// width3DB sums the frequency extent of every measured region that
// stays within 3 dB of the loudest bin. Responses with several peaks
// of similar height contribute all of them.
func width3DB(freqs, magnitudeDB []float64, peakDB float64) float64 {
	threshold := peakDB - 3

	var (
		width   float64
		inBand  bool
		bandLow float64
		prev    float64
	)

	for i, db := range magnitudeDB {
		if math.IsNaN(db) || db < threshold {
			if inBand {
				width += prev - bandLow
				inBand = false
			}

			continue
		}

		if !inBand {
			bandLow = freqs[i]
			inBand = true
		}

		prev = freqs[i]
	}

	if inBand {
		width += prev - bandLow
	}

	return width
}
