package lyrics

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/contre95/lyricsolid/src/features/config"
)

const (
	lyricsDirName  = ".lyrics"
	karaokeDirName = ".karaoke"
)

// LyricsPathFor returns where the lyrics of an audio file live: a .lrc file named
// after it in the .lyrics directory beside it. Audio inside a .karaoke directory
// shares the lyrics directory of its parent.
func LyricsPathFor(audioPath string) string {
	dir := filepath.Dir(audioPath)
	if filepath.Base(dir) == karaokeDirName {
		dir = filepath.Dir(dir)
	}
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	return filepath.Join(dir, lyricsDirName, base+".lrc")
}

// PathGuard confines request paths to the configured media roots.
type PathGuard struct {
	config *config.Manager
}

// NewPathGuard creates a guard over the media_paths of cfg.
func NewPathGuard(cfg *config.Manager) *PathGuard {
	return &PathGuard{config: cfg}
}

// Resolve returns the absolute form of path, or ErrPathNotAllowed when it falls outside every root.
func (g *PathGuard) Resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPathNotAllowed, err)
	}
	for _, root := range g.config.Get().MediaPaths {
		rootAbs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(rootAbs, abs)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return abs, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrPathNotAllowed, abs)
}
