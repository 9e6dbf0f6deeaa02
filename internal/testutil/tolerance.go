package testutil

import (
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or
// if any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}

	for i := range got {
		diff := math.Abs(got[i] - want[i])
		if diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()

	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// RequireSymmetric fails t if the slice is not even-symmetric about
// its center sample. Phase-neutral impulse responses must satisfy
// this to within rounding error.
func RequireSymmetric(t *testing.T, data []float64, eps float64) {
	t.Helper()

	if len(data)%2 == 0 {
		t.Fatalf("length %d is even, no center sample", len(data))
	}

	c := len(data) / 2
	for k := 1; k <= c; k++ {
		diff := math.Abs(data[c+k] - data[c-k])
		if diff > eps {
			t.Fatalf("asymmetric about center: [%d]=%v vs [%d]=%v", c+k, data[c+k], c-k, data[c-k])
		}
	}
}
