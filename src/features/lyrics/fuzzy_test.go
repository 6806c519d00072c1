package lyrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name                    string
		candArtist, candTitle   string
		queryArtist, queryTitle string
		want                    bool
	}{
		{"exact", "Queen", "Bohemian Rhapsody", "Queen", "Bohemian Rhapsody", true},
		{"decorated candidate title", "Queen", "Bohemian Rhapsody - Remastered 2011", "Queen", "Bohemian Rhapsody", true},
		{"leading the", "The Beatles", "Let It Be", "Beatles", "Let It Be", true},
		{"accents", "Beyoncé", "Halo", "Beyonce", "Halo", true},
		{"collaboration", "Daft Punk, Pharrell Williams", "Get Lucky", "Daft Punk", "Get Lucky", true},
		{"artist substring", "acdc", "Thunderstruck", "ACDC Tribute", "Thunderstruck", true},
		{"half the title words", "Adele", "Hello", "Adele", "Hello World", true},
		{"wrong artist", "Someone Else", "Bohemian Rhapsody", "Queen", "Bohemian Rhapsody", false},
		{"wrong title", "Queen", "Another One Bites the Dust", "Queen", "Bohemian Rhapsody", false},
		{"too few title words", "The Beatles", "Love Song", "The Beatles", "Love Me Do", false},
		{"empty query title", "Queen", "Anything", "Queen", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.candArtist, tt.candTitle, tt.queryArtist, tt.queryTitle))
		})
	}
}
