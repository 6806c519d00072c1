package metrics

import (
	"context"
	"fmt"

	"github.com/contre95/lyricsolid/src/music"
)

// failedSources are the terminal tags of requests that produced no lyrics.
var failedSources = map[string]bool{
	music.SourceInstrumental:  true,
	music.SourceExhausted:     true,
	music.SourceNegativeCache: true,
}

// Service provides metrics functionality.
type Service struct {
	stats HistoryStats
}

// NewService creates a new metrics service. stats may be nil when history is disabled.
func NewService(stats HistoryStats) *Service {
	return &Service{stats: stats}
}

// GetLyricsStats aggregates the lyrics history by source.
func (s *Service) GetLyricsStats(ctx context.Context) (LyricsStats, error) {
	out := LyricsStats{Sources: map[string]int{}}
	if s.stats == nil {
		return out, nil
	}

	counts, err := s.stats.GetSourceCounts(ctx)
	if err != nil {
		return out, fmt.Errorf("failed to load source counts: %w", err)
	}
	for source, n := range counts {
		out.Sources[source] = n
		if failedSources[source] {
			out.Failed += n
		} else {
			out.Resolved += n
		}
	}
	return out, nil
}
