package lyrics

import "strings"

const minTitleOverlap = 0.5

// Matches reports whether a search hit plausibly is the queried track.
// At least half of the query title words must appear in the candidate title, and the
// artists must share a word or contain one another.
func Matches(candidateArtist, candidateTitle, queryArtist, queryTitle string) bool {
	queryWords := wordSet(Normalize(queryTitle))
	if len(queryWords) == 0 {
		return false
	}
	titleWords := wordSet(Normalize(candidateTitle))
	shared := 0
	for w := range queryWords {
		if _, ok := titleWords[w]; ok {
			shared++
		}
	}
	if float64(shared)/float64(len(queryWords)) < minTitleOverlap {
		return false
	}

	qa, ca := NormalizeArtist(queryArtist), NormalizeArtist(candidateArtist)
	artistWords := wordSet(ca)
	for w := range wordSet(qa) {
		if _, ok := artistWords[w]; ok {
			return true
		}
	}
	return strings.Contains(ca, qa) || strings.Contains(qa, ca)
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(text) {
		set[w] = struct{}{}
	}
	return set
}
