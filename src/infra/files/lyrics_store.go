package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/contre95/lyricsolid/src/features/config"
)

// NegativeCacheMarker is the content of a file recording that no lyrics were found.
const NegativeCacheMarker = "[no lyrics found]"

// DefaultNegativeCacheTTL is how long a negative cache marker stays valid.
const DefaultNegativeCacheTTL = 30 * 24 * time.Hour

// LyricsStore keeps lyrics and negative cache markers as UTF-8 files on disk.
type LyricsStore struct {
	config *config.Manager
}

// NewLyricsStore creates a store whose marker TTL is read from cfg on every check.
// A nil cfg uses DefaultNegativeCacheTTL.
func NewLyricsStore(cfg *config.Manager) *LyricsStore {
	return &LyricsStore{config: cfg}
}

func (s *LyricsStore) ttl() time.Duration {
	if s.config == nil {
		return DefaultNegativeCacheTTL
	}
	if ttl := s.config.Get().Lyrics.Resolution.NegativeCacheTTL; ttl > 0 {
		return ttl
	}
	return DefaultNegativeCacheTTL
}

// ReadLyrics returns the trimmed content at path. ok is false when the file is
// missing, empty, or a negative cache marker.
func (s *LyricsStore) ReadLyrics(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read lyrics file: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" || text == NegativeCacheMarker {
		return "", false, nil
	}
	return text, true, nil
}

// IsNegativeCacheValid reports whether path holds a marker younger than the TTL.
func (s *LyricsStore) IsNegativeCacheValid(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil || strings.TrimSpace(string(data)) != NegativeCacheMarker {
		return false
	}
	return time.Since(info.ModTime()) < s.ttl()
}

// WriteNegativeCache records at path that no lyrics exist.
func (s *LyricsStore) WriteNegativeCache(path string) error {
	return writeFile(path, NegativeCacheMarker)
}

// WriteLyrics stores text at path, creating the parent directories.
func (s *LyricsStore) WriteLyrics(path, text string) error {
	return writeFile(path, text)
}

// Remove deletes the file at path. A missing file is not an error.
func (s *LyricsStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete lyrics file: %w", err)
	}
	return nil
}

// writeFile replaces path through a temporary file in the same directory.
func writeFile(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}
