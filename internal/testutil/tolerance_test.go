package testutil

import (
	"math"
	"testing"
)

func TestRequireHelpersPass(t *testing.T) {
	a := []float64{0, 0.5, -1}
	RequireSliceNearlyEqual(t, a, []float64{1e-12, 0.5, -1}, 1e-9)
	RequireBitExact(t, a, []float64{0, 0.5, -1})
	RequireFinite(t, a)
	if math.IsNaN(a[0]) {
		t.Fatal("unexpected NaN")
	}
}
