package lyrics

import (
	"log/slog"

	"github.com/contre95/lyricsolid/src/music"
)

// DefaultSimilarityThreshold is the similarity from which two candidates confirm each other.
const DefaultSimilarityThreshold = 0.35

// SelectCandidate picks the answer among validated candidates.
// Two candidates agreeing with each other beat any single source; within the agreeing
// pairs a synced text wins. Without agreement the first synced candidate, then the
// first candidate, is returned. Candidate order is the provider priority.
func SelectCandidate(candidates []music.LyricsCandidate, threshold float64) (music.LyricsCandidate, bool) {
	if len(candidates) == 0 {
		return music.LyricsCandidate{}, false
	}
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}

	if len(candidates) >= 2 {
		var verifiedSynced, verifiedPlain *music.LyricsCandidate
		for i := range candidates {
			for j := i + 1; j < len(candidates); j++ {
				a, b := &candidates[i], &candidates[j]
				sim := Similarity(a.Text, b.Text)
				slog.Debug("Cross-validation", "a", a.Source, "b", b.Source, "similarity", sim)
				if sim < threshold {
					continue
				}
				if verifiedSynced == nil {
					if HasTimestamps(a.Text) {
						verifiedSynced = a
					} else if HasTimestamps(b.Text) {
						verifiedSynced = b
					}
				}
				if verifiedPlain == nil {
					verifiedPlain = a
				}
			}
		}
		if verifiedSynced != nil {
			slog.Info("Cross-validated synced lyrics", "source", verifiedSynced.Source)
			return *verifiedSynced, true
		}
		if verifiedPlain != nil {
			slog.Info("Cross-validated plain lyrics", "source", verifiedPlain.Source)
			return *verifiedPlain, true
		}
	}

	for _, c := range candidates {
		if HasTimestamps(c.Text) {
			slog.Info("Using single-source synced lyrics", "source", c.Source)
			return c, true
		}
	}
	slog.Info("Using single-source plain lyrics", "source", candidates[0].Source)
	return candidates[0], true
}
