package validate

import (
	"math"
	"strings"
)

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// Positive rejects zero, negatives, NaN and infinities.
func Positive(value float64) bool {
	return value > 0 && !math.IsInf(value, 1)
}
