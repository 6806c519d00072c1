package tag

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/contre95/lyricsolid/src/music"
	"github.com/dhowden/tag"
	goflac "github.com/go-flac/go-flac"
)

// lengthFields hold the track length in milliseconds, depending on the tag format.
var lengthFields = []string{"TLEN", "TLE", "LENGTH", "length"}

// TagReader reads lyrics queries from audio files using the dhowden/tag library.
type TagReader struct{}

// NewTagReader creates a new TagReader
func NewTagReader() *TagReader {
	return &TagReader{}
}

// ReadQuery builds a lyrics query from the tags of the file at filePath.
// Files without title or artist tags fall back to an "Artist - Title" file name.
func (r *TagReader) ReadQuery(ctx context.Context, filePath string) (music.LyricsQuery, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return music.LyricsQuery{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var q music.LyricsQuery
	tags, err := tag.ReadFrom(file)
	switch {
	case errors.Is(err, tag.ErrNoTagsFound):
		slog.Debug("No tags found, using the file name", "path", filePath)
	case err != nil:
		return music.LyricsQuery{}, fmt.Errorf("failed to read tags: %w", err)
	default:
		q.Artist = strings.TrimSpace(tags.Artist())
		q.Title = strings.TrimSpace(tags.Title())
		q.Album = strings.TrimSpace(tags.Album())
		if q.Artist == "" {
			q.Artist = strings.TrimSpace(tags.AlbumArtist())
		}
		q.DurationSeconds = readLength(tags.Raw())
	}

	if q.Artist == "" || q.Title == "" {
		artist, title := parseFileName(filePath)
		if q.Artist == "" {
			q.Artist = artist
		}
		if q.Title == "" {
			q.Title = title
		}
	}
	if q.Artist == "" || q.Title == "" {
		return music.LyricsQuery{}, fmt.Errorf("no artist or title in %s", filepath.Base(filePath))
	}

	if q.DurationSeconds == 0 && isFLAC(tags, filePath) {
		q.DurationSeconds = flacDuration(file)
	}
	return q, nil
}

func isFLAC(tags tag.Metadata, filePath string) bool {
	if tags != nil {
		return tags.FileType() == tag.FLAC
	}
	return strings.EqualFold(filepath.Ext(filePath), ".flac")
}

// flacDuration computes the length of a FLAC stream from its STREAMINFO block.
func flacDuration(file io.ReadSeeker) float64 {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return 0
	}
	f, err := goflac.ParseMetadata(file)
	if err != nil {
		slog.Debug("Failed to parse FLAC metadata", "error", err)
		return 0
	}
	info, err := f.GetStreamInfo()
	if err != nil || info.SampleRate <= 0 {
		return 0
	}
	return float64(info.SampleCount) / float64(info.SampleRate)
}

// parseFileName splits "Artist - Title.ext". A name without a separator is taken as the title.
func parseFileName(filePath string) (artist, title string) {
	base := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	if a, t, ok := strings.Cut(base, " - "); ok {
		return strings.TrimSpace(a), strings.TrimSpace(t)
	}
	return "", strings.TrimSpace(base)
}

// readLength returns the tagged track length in seconds, or 0 when it isn't tagged.
func readLength(raw map[string]interface{}) float64 {
	for _, field := range lengthFields {
		value, ok := raw[field]
		if !ok {
			continue
		}
		var s string
		switch v := value.(type) {
		case string:
			s = v
		case []byte:
			s = string(v)
		default:
			continue
		}
		ms, err := strconv.ParseFloat(strings.TrimSpace(strings.Trim(s, "\x00")), 64)
		if err == nil && ms > 0 {
			return ms / 1000
		}
	}
	return 0
}
