package lyrics

import "strings"

// Similarity is the Jaccard index of the distinct plain lines of a and b.
func Similarity(a, b string) float64 {
	linesA := lineSet(StripToPlain(a))
	linesB := lineSet(StripToPlain(b))
	if len(linesA) == 0 || len(linesB) == 0 {
		return 0
	}
	shared := 0
	for line := range linesA {
		if _, ok := linesB[line]; ok {
			shared++
		}
	}
	union := len(linesA) + len(linesB) - shared
	return float64(shared) / float64(union)
}

func lineSet(plain string) map[string]struct{} {
	set := make(map[string]struct{})
	if plain == "" {
		return set
	}
	for _, line := range strings.Split(plain, "\n") {
		set[line] = struct{}{}
	}
	return set
}
