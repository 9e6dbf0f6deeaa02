package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name            string
		value, min, max float64
		want            float64
	}{
		{"inside", 0.5, 0, 1, 0.5},
		{"below", -2, 0, 1, 0},
		{"above", 3, 0, 1, 1},
		{"swapped bounds", 0.5, 1, 0, 0.5},
		{"at min", 0, 0, 1, 0},
		{"at max", 1, 0, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.value, tt.min, tt.max)
			if got != tt.want {
				t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.value, tt.min, tt.max, got, tt.want)
			}
		})
	}
}

func TestDBConversionRoundTrip(t *testing.T) {
	for _, db := range []float64{-60, -24, -6, 0, 6, 20} {
		lin := DBToLinear(db)

		back := LinearToDB(lin)
		if !NearlyEqual(back, db, 1e-12) {
			t.Errorf("LinearToDB(DBToLinear(%v)) = %v", db, back)
		}
	}
}

func TestLinearToDBEdgeCases(t *testing.T) {
	if !math.IsInf(LinearToDB(0), -1) {
		t.Error("LinearToDB(0) should be -Inf")
	}

	if !math.IsNaN(LinearToDB(-1)) {
		t.Error("LinearToDB(-1) should be NaN")
	}

	if !math.IsInf(LinearPowerToDB(0), -1) {
		t.Error("LinearPowerToDB(0) should be -Inf")
	}
}

func TestPowerConventions(t *testing.T) {
	// 20 dB amplitude is a factor 10; 20 dB power is a factor 100.
	if !NearlyEqual(DBToLinear(20), 10, 1e-12) {
		t.Errorf("DBToLinear(20) = %v, want 10", DBToLinear(20))
	}

	if !NearlyEqual(DBPowerToLinear(20), 100, 1e-12) {
		t.Errorf("DBPowerToLinear(20) = %v, want 100", DBPowerToLinear(20))
	}
}

func TestNextPowerOf2(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {4, 4}, {5, 8}, {1000, 1024}, {1024, 1024}, {1025, 2048},
	}

	for _, tt := range tests {
		if got := NextPowerOf2(tt.in); got != tt.want {
			t.Errorf("NextPowerOf2(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestOctaves(t *testing.T) {
	if !NearlyEqual(Octaves(1000, 2000), 1, 1e-12) {
		t.Errorf("Octaves(1000, 2000) = %v, want 1", Octaves(1000, 2000))
	}

	if !NearlyEqual(Octaves(2000, 1000), -1, 1e-12) {
		t.Errorf("Octaves(2000, 1000) = %v, want -1", Octaves(2000, 1000))
	}
}
