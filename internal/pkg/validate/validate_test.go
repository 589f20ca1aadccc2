package validate

import (
	"math"
	"testing"
)

func TestRequiredAndPositive(t *testing.T) {
	if Required("  ") || !Required(" Bole ") {
		t.Fatalf("unexpected Required result")
	}
	for _, v := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if Positive(v) {
			t.Fatalf("%v must not be positive", v)
		}
	}
	if !Positive(0.5) {
		t.Fatalf("0.5 must be positive")
	}
}
