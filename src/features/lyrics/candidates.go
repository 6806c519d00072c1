package lyrics

import (
	"github.com/cespare/xxhash/v2"
	"github.com/contre95/lyricsolid/src/music"
)

// candidateSet keeps validated candidates in fetch order, collapsing texts whose
// plain projection is identical.
type candidateSet struct {
	seen  map[uint64]struct{}
	items []music.LyricsCandidate
}

func newCandidateSet() *candidateSet {
	return &candidateSet{seen: make(map[uint64]struct{})}
}

// add reports whether the candidate was new.
func (s *candidateSet) add(text, source string) bool {
	key := xxhash.Sum64String(StripToPlain(text))
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	s.items = append(s.items, music.LyricsCandidate{Text: text, Source: source})
	return true
}

func (s *candidateSet) len() int {
	return len(s.items)
}
