package lyrics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/contre95/lyricsolid/src/music"
)

var (
	// ErrInvalidRequest is returned for requests missing required fields.
	ErrInvalidRequest = errors.New("invalid lyrics request")
	// ErrPathNotAllowed is returned for paths outside the configured media roots.
	ErrPathNotAllowed = errors.New("path not in allowed roots")
	// ErrOutputWrite is returned when resolved lyrics could not be persisted.
	ErrOutputWrite = errors.New("failed to write lyrics")
)

// Request asks for the lyrics of a track to be stored at OutputPath.
type Request struct {
	Artist     string `json:"artist"`
	Title      string `json:"title"`
	OutputPath string `json:"outputPath"`
	DurationMs int64  `json:"durationMs,omitempty"`
	Album      string `json:"album,omitempty"`
	Force      bool   `json:"force"`
}

// Validate checks the required fields.
func (r Request) Validate() error {
	switch {
	case strings.TrimSpace(r.Artist) == "":
		return fmt.Errorf("%w: artist is required", ErrInvalidRequest)
	case strings.TrimSpace(r.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidRequest)
	case strings.TrimSpace(r.OutputPath) == "":
		return fmt.Errorf("%w: outputPath is required", ErrInvalidRequest)
	case r.DurationMs < 0:
		return fmt.Errorf("%w: durationMs must not be negative", ErrInvalidRequest)
	}
	return nil
}

// Query converts the request to a LyricsQuery.
func (r Request) Query() music.LyricsQuery {
	return music.LyricsQuery{
		Artist:          r.Artist,
		Title:           r.Title,
		Album:           r.Album,
		DurationSeconds: float64(r.DurationMs) / 1000,
	}
}

// Response is the terminal answer to a Request.
type Response struct {
	Success    bool   `json:"success"`
	OutputPath string `json:"outputPath,omitempty"`
	Source     string `json:"source"`
	Synced     bool   `json:"synced,omitempty"`
	Lyrics     string `json:"lyrics,omitempty"`
}
