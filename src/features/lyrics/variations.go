package lyrics

import (
	"strings"

	"github.com/contre95/lyricsolid/src/music"
)

// variationSet collects query pairs in insertion order, ignoring case duplicates and blanks.
type variationSet struct {
	seen  map[[2]string]struct{}
	items []music.QueryVariation
}

func (s *variationSet) add(artist, title string) {
	artist, title = strings.TrimSpace(artist), strings.TrimSpace(title)
	if artist == "" || title == "" {
		return
	}
	key := [2]string{strings.ToLower(artist), strings.ToLower(title)}
	if _, ok := s.seen[key]; ok {
		return
	}
	s.seen[key] = struct{}{}
	s.items = append(s.items, music.QueryVariation{Artist: artist, Title: title})
}

// GenerateVariations returns the (artist, title) pairs to search for, most exact first.
// The order doubles as the search priority of every provider tier.
func GenerateVariations(artist, title string) []music.QueryVariation {
	set := &variationSet{seen: make(map[[2]string]struct{})}

	cleanTitle := StripNoise(title)
	bareTitle := StripAllParentheticals(title)

	set.add(artist, title)
	set.add(artist, cleanTitle)
	set.add(artist, bareTitle)

	normArtist := NormalizeArtist(artist)
	set.add(normArtist, title)
	set.add(normArtist, cleanTitle)
	set.add(normArtist, bareTitle)
	set.add(normArtist, Normalize(title))

	if artists := SplitArtists(artist); len(artists) > 1 {
		set.add(artists[0], title)
		set.add(artists[0], cleanTitle)
		set.add(artists[0], bareTitle)
	}

	if prefix, suffix, ok := strings.Cut(title, " - "); ok {
		set.add(artist, suffix)
		set.add(prefix, suffix)
	}

	return set.items
}
