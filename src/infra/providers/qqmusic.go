package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/contre95/lyricsolid/src/features/config"
	"github.com/contre95/lyricsolid/src/features/lyrics"
	"github.com/contre95/lyricsolid/src/infra/httpclient"
	"github.com/contre95/lyricsolid/src/music"
)

const (
	// QQMusicSearchURL is the QQ Music song search endpoint.
	QQMusicSearchURL = "https://c.y.qq.com/soso/fcgi-bin/client_search_cp"
	// QQMusicLyricURL is the QQ Music lyric endpoint.
	QQMusicLyricURL = "https://c.y.qq.com/lyric/fcgi-bin/fcg_query_lyric_new.fcg"

	qqmusicReferer   = "https://y.qq.com/portal/player.html"
	minQQLyricLength = 20
)

type qqSong struct {
	SongName string  `json:"songname"`
	SongMID  string  `json:"songmid"`
	Interval float64 `json:"interval"`
	Singer   []struct {
		Name string `json:"name"`
	} `json:"singer"`
}

type qqSearchResponse struct {
	Data struct {
		Song struct {
			List []qqSong `json:"list"`
		} `json:"song"`
	} `json:"data"`
}

type qqLyricResponse struct {
	Retcode *int   `json:"retcode"`
	Lyric   string `json:"lyric"`
}

// QQMusicProvider implements LyricsProvider for QQ Music.
type QQMusicProvider struct {
	client    *httpclient.Client
	config    *config.Manager
	searchURL string
	lyricURL  string
}

// NewQQMusicProvider creates a new QQ Music provider
func NewQQMusicProvider(client *httpclient.Client, cfg *config.Manager, searchURL, lyricURL string) *QQMusicProvider {
	return &QQMusicProvider{client: client, config: cfg, searchURL: searchURL, lyricURL: lyricURL}
}

func (p *QQMusicProvider) Fetch(ctx context.Context, q music.LyricsQuery) lyrics.FetchResult {
	mid, err := p.findSong(ctx, q)
	if err != nil {
		slog.Warn("QQMusic search failed", "artist", q.Artist, "title", q.Title, "error", err)
		return lyrics.NotFound()
	}
	if mid == "" {
		return lyrics.NotFound()
	}

	text, err := p.lyric(ctx, mid)
	if err != nil {
		slog.Warn("QQMusic lyrics fetch failed", "mid", mid, "error", err)
		return lyrics.NotFound()
	}
	if utf8.RuneCountInString(text) < minQQLyricLength {
		return lyrics.NotFound()
	}
	if lyrics.HasTimestamps(text) {
		return lyrics.Found(text, "qqmusic-synced")
	}
	return lyrics.Found(text, "qqmusic-plain")
}

// findSong returns the song mid of the first hit matching the query, or "" when none does.
func (p *QQMusicProvider) findSong(ctx context.Context, q music.LyricsQuery) (string, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("p", "1")
	params.Set("n", "5")
	params.Set("w", q.Artist+" "+q.Title)
	params.Set("cr", "1")
	params.Set("t", "0")

	resp, err := p.client.Get(ctx, p.searchURL+"?"+params.Encode(), httpclient.WithTimeout(p.timeout()))
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", nil
	}

	var body qqSearchResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	tolerance := p.config.Get().Lyrics.Resolution.DurationTolerance.Seconds()
	for _, song := range body.Data.Song.List {
		singers := make([]string, 0, len(song.Singer))
		for _, s := range song.Singer {
			singers = append(singers, s.Name)
		}
		singer := strings.Join(singers, " ")
		if !lyrics.Matches(singer, song.SongName, q.Artist, q.Title) {
			continue
		}
		if !withinDuration(song.Interval, q.DurationSeconds, tolerance) {
			continue
		}
		if song.SongMID != "" {
			slog.Info("QQMusic matched song", "artist", singer, "title", song.SongName, "mid", song.SongMID)
			return song.SongMID, nil
		}
	}
	return "", nil
}

func (p *QQMusicProvider) lyric(ctx context.Context, mid string) (string, error) {
	params := url.Values{}
	params.Set("songmid", mid)
	params.Set("format", "json")
	params.Set("nobase64", "0")

	resp, err := p.client.Get(ctx, p.lyricURL+"?"+params.Encode(),
		httpclient.WithTimeout(p.timeout()),
		httpclient.WithHeader("Referer", qqmusicReferer),
	)
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", fmt.Errorf("QQMusic lyric request failed with status %d", resp.StatusCode)
	}

	var body qqLyricResponse
	if err := json.Unmarshal(unwrapJSONP(resp.Body), &body); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if body.Retcode == nil || *body.Retcode != 0 {
		return "", errNoLyrics
	}
	if body.Lyric == "" {
		return "", errNoLyrics
	}
	decoded, err := base64.StdEncoding.DecodeString(body.Lyric)
	if err != nil {
		return "", errors.Join(errNoLyrics, err)
	}
	return strings.TrimSpace(strings.ToValidUTF8(string(decoded), "�")), nil
}

// unwrapJSONP strips a MusicJsonCallback(...) or callback(...) wrapper.
func unwrapJSONP(body []byte) []byte {
	body = bytes.TrimSpace(body)
	if !bytes.HasPrefix(body, []byte("MusicJsonCallback")) && !bytes.HasPrefix(body, []byte("callback")) {
		return body
	}
	open := bytes.IndexByte(body, '(')
	end := bytes.LastIndexByte(body, ')')
	if open < 0 || end <= open {
		return body
	}
	return body[open+1 : end]
}

func (p *QQMusicProvider) timeout() time.Duration {
	return p.config.ProviderTimeout(config.ProviderQQMusic, 10*time.Second)
}

func (p *QQMusicProvider) Name() string    { return config.ProviderQQMusic }
func (p *QQMusicProvider) IsEnabled() bool { return p.config.IsProviderEnabled(config.ProviderQQMusic) }
