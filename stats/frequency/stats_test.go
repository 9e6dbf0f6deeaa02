package frequency

import (
	"math"
	"testing"
)

func grid(n int, binWidth float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) * binWidth
	}

	return out
}

func TestCalculateEmpty(t *testing.T) {
	s := Calculate(nil, nil)
	if s.BinCount != 0 {
		t.Fatalf("BinCount = %d, want 0", s.BinCount)
	}

	if !math.IsNaN(s.AverageDB) {
		t.Fatalf("AverageDB = %v, want NaN", s.AverageDB)
	}

	all := []float64{math.NaN(), math.NaN()}
	if s := Calculate(grid(2, 100), all); s.BinCount != 0 {
		t.Fatalf("all-NaN: BinCount = %d, want 0", s.BinCount)
	}
}

func TestCalculateFlat(t *testing.T) {
	freqs := grid(100, 10)

	db := make([]float64, 100)
	for i := range db {
		db[i] = -6
	}

	s := Calculate(freqs, db)

	if s.BinCount != 100 {
		t.Fatalf("BinCount = %d, want 100", s.BinCount)
	}

	if s.AverageDB != -6 || s.MaxDB != -6 || s.MinDB != -6 {
		t.Fatalf("flat response: avg=%v max=%v min=%v, want all -6", s.AverageDB, s.MaxDB, s.MinDB)
	}

	if s.RangeDB != 0 {
		t.Fatalf("RangeDB = %v, want 0", s.RangeDB)
	}

	if math.Abs(s.Flatness-1) > 1e-12 {
		t.Fatalf("Flatness = %v, want 1 for a flat response", s.Flatness)
	}

	// Equal weights: centroid is the mid frequency.
	if want := (freqs[0] + freqs[99]) / 2; math.Abs(s.Centroid-want) > 1e-9 {
		t.Fatalf("Centroid = %v, want %v", s.Centroid, want)
	}
}

func TestCalculatePeak(t *testing.T) {
	freqs := grid(200, 10)

	db := make([]float64, 200)
	for i := range db {
		db[i] = -60
	}

	db[100] = 0 // 1 kHz peak

	s := Calculate(freqs, db)

	if s.MaxDB != 0 || s.MaxFreq != 1000 {
		t.Fatalf("peak at %v Hz / %v dB, want 1000 Hz / 0 dB", s.MaxFreq, s.MaxDB)
	}

	if s.RangeDB != 60 {
		t.Fatalf("RangeDB = %v, want 60", s.RangeDB)
	}

	if s.Flatness >= 0.5 {
		t.Fatalf("Flatness = %v, want well below 1 for a peaky response", s.Flatness)
	}

	// A single dominant bin keeps the centroid near the peak.
	if math.Abs(s.Centroid-1000) > 100 {
		t.Fatalf("Centroid = %v, want near 1000", s.Centroid)
	}
}

func TestCalculateSkipsNaN(t *testing.T) {
	freqs := grid(10, 100)
	db := []float64{math.NaN(), -3, -3, math.NaN(), -3, -3, -3, -3, math.NaN(), math.NaN()}

	s := Calculate(freqs, db)

	if s.BinCount != 6 {
		t.Fatalf("BinCount = %d, want 6", s.BinCount)
	}

	if s.AverageDB != -3 {
		t.Fatalf("AverageDB = %v, want -3", s.AverageDB)
	}
}

func TestWidth3DB(t *testing.T) {
	freqs := grid(100, 10)

	db := make([]float64, 100)
	for i := range db {
		db[i] = -20
	}

	// Two plateaus within 3 dB of the 0 dB peak: bins 10..19 and 50..54.
	for i := 10; i < 20; i++ {
		db[i] = 0
	}

	for i := 50; i < 55; i++ {
		db[i] = -2
	}

	s := Calculate(freqs, db)

	if want := 90.0 + 40.0; math.Abs(s.Width3DB-want) > 1e-9 {
		t.Fatalf("Width3DB = %v, want %v", s.Width3DB, want)
	}
}

func TestRolloff(t *testing.T) {
	freqs := grid(100, 10)

	// All energy in one bin: rolloff lands exactly there.
	db := make([]float64, 100)
	for i := range db {
		db[i] = -120
	}

	db[30] = 0

	s := Calculate(freqs, db)

	if s.Rolloff != 300 {
		t.Fatalf("Rolloff = %v, want 300", s.Rolloff)
	}
}
