package providers

import (
	"math"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// withinDuration reports whether an advertised duration is close enough to the query.
// Unknown durations on either side always match.
func withinDuration(candidate, query, tolerance float64) bool {
	if candidate <= 0 || query <= 0 {
		return true
	}
	return math.Abs(candidate-query) <= tolerance
}
