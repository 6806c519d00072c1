package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/contre95/lyricsolid/src/infra/httpclient"
	"github.com/contre95/lyricsolid/src/music"
)

// NetEaseBaseURL is the NetEase Cloud Music web API.
const NetEaseBaseURL = "https://music.163.com/api"

type neteaseSong struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Alias    []string `json:"alias"`
	Duration int64    `json:"duration"`
	Artists  []struct {
		Name  string   `json:"name"`
		Alias []string `json:"alias"`
	} `json:"artists"`
}

type neteaseSearchResponse struct {
	Result struct {
		Songs []neteaseSong `json:"songs"`
	} `json:"result"`
}

type neteaseLyricResponse struct {
	Lrc struct {
		Lyric string `json:"lyric"`
	} `json:"lrc"`
}

// NetEaseBackend searches the NetEase catalog.
type NetEaseBackend struct {
	client  *httpclient.Client
	baseURL string
	timeout time.Duration
}

func NewNetEaseBackend(client *httpclient.Client, baseURL string, timeout time.Duration) *NetEaseBackend {
	return &NetEaseBackend{client: client, baseURL: baseURL, timeout: timeout}
}

func (b *NetEaseBackend) Name() string { return "netease" }

func (b *NetEaseBackend) Search(ctx context.Context, q music.LyricsQuery) ([]track, error) {
	params := url.Values{}
	params.Set("limit", "30")
	params.Set("type", "1")
	params.Set("s", q.Artist+" "+q.Title)

	resp, err := b.client.Get(ctx, b.baseURL+"/search/get/web?"+params.Encode(), httpclient.WithTimeout(b.timeout))
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("NetEase search failed with status %d", resp.StatusCode)
	}

	var body neteaseSearchResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	hits := make([]track, 0, len(body.Result.Songs))
	for _, song := range body.Result.Songs {
		titles := append([]string{song.Name}, song.Alias...)
		var artists []string
		for _, a := range song.Artists {
			artists = append(artists, a.Name)
			artists = append(artists, a.Alias...)
		}
		id := song.ID
		hits = append(hits, track{
			Titles:   titles,
			Artists:  artists,
			Duration: float64(song.Duration) / 1000,
			Lyrics: func(ctx context.Context) (string, error) {
				return b.lyrics(ctx, id)
			},
		})
	}
	return hits, nil
}

func (b *NetEaseBackend) lyrics(ctx context.Context, id int) (string, error) {
	resp, err := b.client.Get(ctx, b.baseURL+"/song/lyric?lv=1&id="+strconv.Itoa(id), httpclient.WithTimeout(b.timeout))
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", fmt.Errorf("NetEase lyric request failed with status %d", resp.StatusCode)
	}
	var body neteaseLyricResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if body.Lrc.Lyric == "" {
		return "", errNoLyrics
	}
	return body.Lrc.Lyric, nil
}
