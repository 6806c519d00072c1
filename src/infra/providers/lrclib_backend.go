package providers

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/contre95/lyricsolid/src/infra/httpclient"
	"github.com/contre95/lyricsolid/src/music"
)

// LRCLibBackend exposes the LRCLib search as an aggregator catalog.
// Only entries carrying synced lyrics are returned.
type LRCLibBackend struct {
	client  *httpclient.Client
	baseURL string
	timeout time.Duration
}

func NewLRCLibBackend(client *httpclient.Client, baseURL string, timeout time.Duration) *LRCLibBackend {
	return &LRCLibBackend{client: client, baseURL: baseURL, timeout: timeout}
}

func (b *LRCLibBackend) Name() string { return "lrclib" }

func (b *LRCLibBackend) Search(ctx context.Context, q music.LyricsQuery) ([]track, error) {
	params := url.Values{}
	params.Set("q", q.Artist+" "+q.Title)

	resp, err := b.client.Get(ctx, b.baseURL+"/search?"+params.Encode(), httpclient.WithTimeout(b.timeout))
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("LRCLib search failed with status %d", resp.StatusCode)
	}

	var songs []lrclibSong
	if err := json.Unmarshal(resp.Body, &songs); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var hits []track
	for _, song := range songs {
		if song.Instrumental || song.SyncedLyrics == "" {
			continue
		}
		synced := song.SyncedLyrics
		hits = append(hits, track{
			Titles:   []string{song.TrackName},
			Artists:  []string{song.ArtistName},
			Duration: song.Duration,
			Lyrics: func(context.Context) (string, error) {
				return synced, nil
			},
		})
	}
	return hits, nil
}
