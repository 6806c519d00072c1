package lyrics

import (
	"context"

	"github.com/contre95/lyricsolid/src/music"
)

// LyricsProvider defines the interface for fetching lyrics from external services
type LyricsProvider interface {
	// Fetch looks up lyrics for q. Transport and payload failures are reported as
	// NotFound, never as errors.
	Fetch(ctx context.Context, q music.LyricsQuery) FetchResult

	// Name returns the provider name
	Name() string

	// IsEnabled returns whether the provider is enabled
	IsEnabled() bool
}

// FetchResult is the outcome of a single provider lookup.
type FetchResult struct {
	Text   string
	Source string
}

// NotFound is the result of a provider that had nothing.
func NotFound() FetchResult {
	return FetchResult{Source: music.SourceNotFound}
}

// Instrumental is the result of a provider that knows the track has no lyrics.
func Instrumental() FetchResult {
	return FetchResult{Source: music.SourceInstrumental}
}

// Found returns a result carrying text tagged with source.
func Found(text, source string) FetchResult {
	return FetchResult{Text: text, Source: source}
}

// IsInstrumental reports the authoritative no-lyrics signal.
func (r FetchResult) IsInstrumental() bool {
	return r.Source == music.SourceInstrumental
}

// HasText reports whether the result carries lyrics.
func (r FetchResult) HasText() bool {
	return r.Text != "" && !r.IsInstrumental()
}
