package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/contre95/lyricsolid/src/features/config"
	"github.com/contre95/lyricsolid/src/features/lyrics"
	"github.com/contre95/lyricsolid/src/infra/httpclient"
	"github.com/contre95/lyricsolid/src/music"
)

// LRCLibBaseURL is the public LRCLib API.
const LRCLibBaseURL = "https://lrclib.net/api"

// LRCLib API response structures
type lrclibSong struct {
	ID           int     `json:"id"`
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

// LRCLibProvider implements LyricsProvider for LRCLib.
// It tries the exact /get lookup first and falls back to a fuzzy matched /search.
type LRCLibProvider struct {
	client  *httpclient.Client
	config  *config.Manager
	baseURL string
}

// NewLRCLibProvider creates a new LRCLib provider
func NewLRCLibProvider(client *httpclient.Client, cfg *config.Manager, baseURL string) *LRCLibProvider {
	return &LRCLibProvider{client: client, config: cfg, baseURL: baseURL}
}

func (p *LRCLibProvider) Fetch(ctx context.Context, q music.LyricsQuery) lyrics.FetchResult {
	if res, ok := p.get(ctx, q); ok {
		return res
	}

	synced, plain, err := p.search(ctx, q)
	if err != nil {
		slog.Warn("LRCLib search failed", "artist", q.Artist, "title", q.Title, "error", err)
		return lyrics.NotFound()
	}
	if synced != "" {
		return lyrics.Found(synced, "lrclib-search-synced")
	}
	if plain != "" {
		return lyrics.Found(plain, "lrclib-search-plain")
	}
	return lyrics.NotFound()
}

// get performs the exact lookup. ok is false when the search fallback should run.
func (p *LRCLibProvider) get(ctx context.Context, q music.LyricsQuery) (lyrics.FetchResult, bool) {
	params := url.Values{}
	params.Set("artist_name", q.Artist)
	params.Set("track_name", q.Title)
	if q.Album != "" {
		params.Set("album_name", q.Album)
	}
	if q.HasDuration() {
		params.Set("duration", strconv.Itoa(int(q.DurationSeconds)))
	}

	resp, err := p.client.Get(ctx, p.baseURL+"/get?"+params.Encode(), httpclient.WithTimeout(p.timeout()))
	if err != nil {
		slog.Warn("LRCLib get failed", "artist", q.Artist, "title", q.Title, "error", err)
		return lyrics.FetchResult{}, false
	}
	if !resp.OK() {
		if resp.StatusCode != http.StatusNotFound {
			slog.Warn("LRCLib get returned unexpected status", "status", resp.StatusCode, "artist", q.Artist, "title", q.Title)
		}
		return lyrics.FetchResult{}, false
	}

	var song lrclibSong
	if err := json.Unmarshal(resp.Body, &song); err != nil {
		slog.Warn("LRCLib get returned invalid JSON", "artist", q.Artist, "title", q.Title, "error", err)
		return lyrics.FetchResult{}, false
	}
	switch {
	case song.Instrumental:
		slog.Info("LRCLib marked track as instrumental", "artist", q.Artist, "title", q.Title)
		return lyrics.Instrumental(), true
	case song.SyncedLyrics != "":
		return lyrics.Found(song.SyncedLyrics, "lrclib-synced"), true
	case song.PlainLyrics != "":
		return lyrics.Found(song.PlainLyrics, "lrclib-plain"), true
	}
	return lyrics.FetchResult{}, false
}

// search returns the first synced and the first plain lyrics among the matching hits.
func (p *LRCLibProvider) search(ctx context.Context, q music.LyricsQuery) (synced, plain string, err error) {
	params := url.Values{}
	params.Set("track_name", q.Title)
	params.Set("artist_name", q.Artist)

	resp, err := p.client.Get(ctx, p.baseURL+"/search?"+params.Encode(), httpclient.WithTimeout(p.timeout()))
	if err != nil {
		return "", "", err
	}
	if !resp.OK() {
		return "", "", fmt.Errorf("LRCLib API request failed with status %d", resp.StatusCode)
	}

	var songs []lrclibSong
	if err := json.Unmarshal(resp.Body, &songs); err != nil {
		return "", "", fmt.Errorf("failed to decode response: %w", err)
	}

	tolerance := p.config.Get().Lyrics.Resolution.DurationTolerance.Seconds()
	for _, song := range songs {
		if song.Instrumental {
			continue
		}
		if !lyrics.Matches(song.ArtistName, song.TrackName, q.Artist, q.Title) {
			continue
		}
		if !withinDuration(song.Duration, q.DurationSeconds, tolerance) {
			continue
		}
		if synced == "" && song.SyncedLyrics != "" {
			synced = song.SyncedLyrics
		}
		if plain == "" && song.PlainLyrics != "" {
			plain = song.PlainLyrics
		}
		if synced != "" {
			break
		}
	}
	return synced, plain, nil
}

func (p *LRCLibProvider) timeout() time.Duration {
	return p.config.ProviderTimeout(config.ProviderLRCLib, 10*time.Second)
}

func (p *LRCLibProvider) Name() string    { return config.ProviderLRCLib }
func (p *LRCLibProvider) IsEnabled() bool { return p.config.IsProviderEnabled(config.ProviderLRCLib) }
