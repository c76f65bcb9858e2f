package timeline

import (
	"math"
	"strconv"
)

// Epsilon is the tolerance for all boundary comparisons, in seconds. Times
// that differ by no more than Epsilon refer to the same boundary.
const Epsilon = 1e-6

// Abuts reports whether two boundary times coincide within Epsilon.
func Abuts(a, b float64) bool {
	return math.Abs(a-b) <= Epsilon
}

// strictlyBefore reports whether a precedes b by more than Epsilon.
func strictlyBefore(a, b float64) bool {
	return a < b-Epsilon
}

// strictlyAfter reports whether a follows b by more than Epsilon.
func strictlyAfter(a, b float64) bool {
	return a > b+Epsilon
}

// FormatTime renders a time in seconds using the shortest decimal form that
// parses back to the same float64. Serialized output therefore depends only
// on the value, never on the arithmetic path that produced it.
func FormatTime(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
