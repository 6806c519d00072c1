package providers

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/contre95/lyricsolid/src/infra/httpclient"
	"github.com/contre95/lyricsolid/src/music"
)

const (
	// KugouSearchURL is the Kugou song search endpoint.
	KugouSearchURL = "http://msearchcdn.kugou.com/api/v3/search/song"
	// KugouLyricsURL is the Kugou lyrics service.
	KugouLyricsURL = "http://lyrics.kugou.com"
)

type kugouSong struct {
	Hash              string  `json:"hash"`
	SongName          string  `json:"songname"`
	OtherName         string  `json:"othername"`
	SongNameOriginal  string  `json:"songname_original"`
	OtherNameOriginal string  `json:"othername_original"`
	SingerName        string  `json:"singername"`
	Duration          float64 `json:"duration"`
}

type kugouSongSearchResponse struct {
	Data struct {
		Info []kugouSong `json:"info"`
	} `json:"data"`
}

type kugouLyricsSearchResponse struct {
	Candidates []struct {
		ID        string `json:"id"`
		AccessKey string `json:"accesskey"`
	} `json:"candidates"`
}

type kugouDownloadResponse struct {
	Content string `json:"content"`
}

// KugouBackend searches the Kugou catalog. Lyrics are looked up by song hash.
type KugouBackend struct {
	client    *httpclient.Client
	searchURL string
	lyricsURL string
	timeout   time.Duration
}

func NewKugouBackend(client *httpclient.Client, searchURL, lyricsURL string, timeout time.Duration) *KugouBackend {
	return &KugouBackend{client: client, searchURL: searchURL, lyricsURL: lyricsURL, timeout: timeout}
}

func (b *KugouBackend) Name() string { return "kugou" }

func (b *KugouBackend) Search(ctx context.Context, q music.LyricsQuery) ([]track, error) {
	resp, err := b.client.Get(ctx, b.searchURL+"?keyword="+url.QueryEscape(q.Artist+" "+q.Title), httpclient.WithTimeout(b.timeout))
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("Kugou search failed with status %d", resp.StatusCode)
	}

	var body kugouSongSearchResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	hits := make([]track, 0, len(body.Data.Info))
	for _, song := range body.Data.Info {
		hash := song.Hash
		hits = append(hits, track{
			Titles:   []string{song.SongName, song.SongNameOriginal, song.OtherName, song.OtherNameOriginal},
			Artists:  []string{song.SingerName},
			Duration: song.Duration,
			Lyrics: func(ctx context.Context) (string, error) {
				return b.lyrics(ctx, hash)
			},
		})
	}
	return hits, nil
}

func (b *KugouBackend) lyrics(ctx context.Context, hash string) (string, error) {
	resp, err := b.client.Get(ctx, b.lyricsURL+"/search?ver=1&man=yes&client=pc&hash="+url.QueryEscape(hash), httpclient.WithTimeout(b.timeout))
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", fmt.Errorf("Kugou lyrics search failed with status %d", resp.StatusCode)
	}
	var found kugouLyricsSearchResponse
	if err := json.Unmarshal(resp.Body, &found); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	for _, c := range found.Candidates {
		params := url.Values{}
		params.Set("ver", "1")
		params.Set("client", "pc")
		params.Set("id", c.ID)
		params.Set("accesskey", c.AccessKey)
		params.Set("fmt", "lrc")
		params.Set("charset", "utf8")
		resp, err := b.client.Get(ctx, b.lyricsURL+"/download?"+params.Encode(), httpclient.WithTimeout(b.timeout))
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			continue
		}
		if !resp.OK() {
			continue
		}
		var dl kugouDownloadResponse
		if err := json.Unmarshal(resp.Body, &dl); err != nil {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(dl.Content)
		if err != nil || len(decoded) == 0 {
			continue
		}
		return string(decoded), nil
	}
	return "", errNoLyrics
}
