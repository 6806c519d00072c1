package providers

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/contre95/lyricsolid/src/features/config"
	"github.com/contre95/lyricsolid/src/features/lyrics"
	"github.com/contre95/lyricsolid/src/infra/httpclient"
	"github.com/contre95/lyricsolid/src/music"
)

// errNoLyrics is returned by a track loader that found nothing usable.
var errNoLyrics = errors.New("no lyrics")

// instrumentalMarker is the line Chinese catalogs put in place of lyrics.
const instrumentalMarker = "纯音乐，请欣赏"

// track is one search hit of an aggregator backend.
// Lyrics is only called once the hit matched the query.
type track struct {
	Titles   []string
	Artists  []string
	Duration float64
	Lyrics   func(ctx context.Context) (string, error)
}

// Backend is a catalog the aggregator can search.
type Backend interface {
	Name() string
	Search(ctx context.Context, q music.LyricsQuery) ([]track, error)
}

// Aggregator fans a query out to several catalogs and returns the first synced lyrics.
type Aggregator struct {
	backends []Backend
	config   *config.Manager
}

// NewAggregator creates the aggregator tier over the given backends, tried in order.
func NewAggregator(cfg *config.Manager, backends ...Backend) *Aggregator {
	return &Aggregator{backends: backends, config: cfg}
}

// DefaultBackends returns the NetEase, Kugou and LRCLib search backends on their public endpoints.
func DefaultBackends(client *httpclient.Client, cfg *config.Manager) []Backend {
	timeout := cfg.ProviderTimeout(config.ProviderAggregator, 10*time.Second)
	return []Backend{
		NewNetEaseBackend(client, NetEaseBaseURL, timeout),
		NewKugouBackend(client, KugouSearchURL, KugouLyricsURL, timeout),
		NewLRCLibBackend(client, LRCLibBaseURL, timeout),
	}
}

func (a *Aggregator) Fetch(ctx context.Context, q music.LyricsQuery) lyrics.FetchResult {
	tolerance := a.config.Get().Lyrics.Resolution.DurationTolerance.Seconds()
	for _, backend := range a.backends {
		if ctx.Err() != nil {
			break
		}
		hits, err := backend.Search(ctx, q)
		if err != nil {
			slog.Debug("Aggregator backend search failed", "backend", backend.Name(), "artist", q.Artist, "title", q.Title, "error", err)
			continue
		}
		for _, hit := range hits {
			if !hit.matches(q, tolerance) {
				continue
			}
			text, err := hit.Lyrics(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return lyrics.NotFound()
				}
				continue
			}
			if !lyrics.HasTimestamps(text) || isInstrumentalPlaceholder(text) {
				continue
			}
			slog.Debug("Aggregator found synced lyrics", "backend", backend.Name(), "artist", q.Artist, "title", q.Title)
			return lyrics.Found(strings.TrimSpace(text), "aggregator-synced")
		}
	}
	return lyrics.NotFound()
}

func (t track) matches(q music.LyricsQuery, tolerance float64) bool {
	if !withinDuration(t.Duration, q.DurationSeconds, tolerance) {
		return false
	}
	for _, artist := range t.Artists {
		for _, title := range t.Titles {
			if artist != "" && title != "" && lyrics.Matches(artist, title, q.Artist, q.Title) {
				return true
			}
		}
	}
	return false
}

// isInstrumentalPlaceholder reports lyrics whose first text line is the instrumental marker.
func isInstrumentalPlaceholder(text string) bool {
	plain := lyrics.StripToPlain(text)
	first, _, _ := strings.Cut(plain, "\n")
	return strings.TrimSpace(first) == instrumentalMarker
}

func (a *Aggregator) Name() string { return config.ProviderAggregator }
func (a *Aggregator) IsEnabled() bool {
	return len(a.backends) > 0 && a.config.IsProviderEnabled(config.ProviderAggregator)
}
