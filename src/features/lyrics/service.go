package lyrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/contre95/lyricsolid/src/features/config"
	"github.com/contre95/lyricsolid/src/music"
)

// Tier is one phase of a resolution, backed by a single provider.
type Tier struct {
	Provider LyricsProvider
	// Variations caps the query variations tried by the tier. Zero means all of them.
	Variations int
	// OnlyWhenEmpty runs the tier only when no candidate was collected so far.
	OnlyWhenEmpty bool
	// UseAlbum sends the album along with the first variation.
	UseAlbum bool
}

// DefaultTiers returns the provider tiers in resolution order.
func DefaultTiers(primary, aggregator, secondary, web LyricsProvider) []Tier {
	return []Tier{
		{Provider: primary, UseAlbum: true},
		{Provider: aggregator, Variations: 3},
		{Provider: secondary, Variations: 2},
		{Provider: web, Variations: 2, OnlyWhenEmpty: true},
	}
}

// Store persists resolved lyrics and negative cache markers, keyed by output path.
type Store interface {
	ReadLyrics(path string) (text string, ok bool, err error)
	IsNegativeCacheValid(path string) bool
	WriteNegativeCache(path string) error
	WriteLyrics(path, text string) error
	Remove(path string) error
}

// HistoryRepository records terminal responses.
type HistoryRepository interface {
	AddHistoryEntry(ctx context.Context, entry music.HistoryEntry) error
	GetHistory(ctx context.Context, limit int) ([]music.HistoryEntry, error)
}

// TagReader reads the lyrics query out of an audio file.
type TagReader interface {
	ReadQuery(ctx context.Context, path string) (music.LyricsQuery, error)
}

// Recorder receives resolution metrics.
type Recorder interface {
	ObserveFetch(provider, result string, elapsed time.Duration)
	CandidateRejected(reason string)
	Resolved(source string)
}

type noopRecorder struct{}

func (noopRecorder) ObserveFetch(string, string, time.Duration) {}
func (noopRecorder) CandidateRejected(string)                   {}
func (noopRecorder) Resolved(string)                            {}

// Service resolves lyrics across the provider tiers.
type Service struct {
	tiers     []Tier
	store     Store
	history   HistoryRepository
	tagReader TagReader
	recorder  Recorder
	config    *config.Manager
}

// NewService creates a new lyrics service. history, tagReader and recorder may be nil.
func NewService(tiers []Tier, store Store, history HistoryRepository, tagReader TagReader, recorder Recorder, cfg *config.Manager) *Service {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Service{
		tiers:     tiers,
		store:     store,
		history:   history,
		tagReader: tagReader,
		recorder:  recorder,
		config:    cfg,
	}
}

// Resolve runs the provider tiers for q and selects the answer.
// Caching the outcome is left to the caller.
func (s *Service) Resolve(ctx context.Context, q music.LyricsQuery) music.Resolution {
	res := s.config.Get().Lyrics.Resolution
	quota := max(res.CandidateQuota, 1)

	validator := NewValidator(res.MaxOvershoot.Seconds(), res.MinCoverage)
	validator.OnReject = s.recorder.CandidateRejected

	variations := GenerateVariations(q.Artist, q.Title)
	slog.Info("Generated query variations", "artist", q.Artist, "title", q.Title, "count", len(variations))

	candidates := newCandidateSet()
	interrupted := false

tiers:
	for _, tier := range s.tiers {
		if tier.Provider == nil || !tier.Provider.IsEnabled() {
			continue
		}
		if candidates.len() >= quota {
			break
		}
		if tier.OnlyWhenEmpty && candidates.len() > 0 {
			continue
		}

		budget := variations
		if tier.Variations > 0 && tier.Variations < len(budget) {
			budget = budget[:tier.Variations]
		}
		for i, v := range budget {
			if ctx.Err() != nil {
				interrupted = true
				break tiers
			}
			vq := music.LyricsQuery{Artist: v.Artist, Title: v.Title, DurationSeconds: q.DurationSeconds}
			if tier.UseAlbum && i == 0 {
				vq.Album = q.Album
			}

			result := s.fetch(ctx, tier.Provider, vq)
			if result.IsInstrumental() {
				slog.Info("Track is instrumental", "artist", q.Artist, "title", q.Title, "provider", tier.Provider.Name())
				return music.Resolution{Outcome: music.OutcomeInstrumental, Source: music.SourceInstrumental}
			}
			if result.HasText() && validator.Validate(result.Text, q.DurationSeconds, v.Artist, v.Title) {
				if candidates.add(result.Text, result.Source) {
					slog.Info("Candidate collected",
						"source", result.Source,
						"artist", v.Artist,
						"title", v.Title,
						"synced", HasTimestamps(result.Text),
						"lines", CountLyricLines(result.Text),
					)
				} else {
					s.recorder.CandidateRejected("duplicate")
				}
			}

			if tier.OnlyWhenEmpty && candidates.len() > 0 {
				break
			}
			if candidates.len() >= quota {
				break
			}
		}
	}
	if ctx.Err() != nil {
		interrupted = true
	}

	chosen, ok := SelectCandidate(candidates.items, res.SimilarityThreshold)
	if !ok {
		if interrupted {
			slog.Warn("Lyrics search interrupted by deadline", "artist", q.Artist, "title", q.Title)
		}
		return music.Resolution{Outcome: music.OutcomeExhausted, Source: music.SourceExhausted, Interrupted: interrupted}
	}
	return music.Resolution{
		Outcome:     music.OutcomeResolved,
		Text:        chosen.Text,
		Source:      chosen.Source,
		Synced:      HasTimestamps(chosen.Text),
		Interrupted: interrupted,
	}
}

func (s *Service) fetch(ctx context.Context, p LyricsProvider, q music.LyricsQuery) FetchResult {
	start := time.Now()
	result := p.Fetch(ctx, q)
	outcome := "not_found"
	switch {
	case result.IsInstrumental():
		outcome = "instrumental"
	case result.HasText():
		outcome = "found"
	}
	s.recorder.ObserveFetch(p.Name(), outcome, time.Since(start))
	slog.Debug("Provider fetch finished", "provider", p.Name(), "artist", q.Artist, "title", q.Title, "result", outcome, "source", result.Source)
	return result
}

// FetchLyrics serves a lyrics request against the file at req.OutputPath.
// Only a failure to persist resolved lyrics is returned as an error.
func (s *Service) FetchLyrics(ctx context.Context, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	path := req.OutputPath

	if req.Force {
		slog.Info("Force mode: deleting existing lyrics file", "path", path)
		if err := s.store.Remove(path); err != nil {
			slog.Warn("Failed to delete existing lyrics file", "path", path, "error", err)
		}
	} else {
		text, ok, err := s.store.ReadLyrics(path)
		if err != nil {
			slog.Warn("Failed to read existing lyrics file", "path", path, "error", err)
		}
		if ok {
			slog.Info("Lyrics already exist", "path", path)
			return s.respond(ctx, req, &Response{
				Success:    true,
				OutputPath: path,
				Source:     music.SourceCached,
				Synced:     HasTimestamps(text),
				Lyrics:     text,
			}), nil
		}
		if s.store.IsNegativeCacheValid(path) {
			slog.Info("Negative cache hit", "artist", req.Artist, "title", req.Title)
			return s.respond(ctx, req, &Response{Source: music.SourceNegativeCache}), nil
		}
	}

	q := req.Query()
	slog.Info("Searching lyrics", "artist", q.Artist, "title", q.Title, "album", q.Album, "duration", q.DurationSeconds)

	resolveCtx := ctx
	if timeout := s.config.Get().Lyrics.Resolution.RequestTimeout; timeout > 0 {
		var cancel context.CancelFunc
		resolveCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	res := s.Resolve(resolveCtx, q)

	switch res.Outcome {
	case music.OutcomeInstrumental:
		s.writeNegativeCache(path)
		return s.respond(ctx, req, &Response{Source: music.SourceInstrumental}), nil
	case music.OutcomeExhausted:
		if res.Interrupted {
			slog.Info("Skipping negative cache for interrupted search", "artist", q.Artist, "title", q.Title)
		} else {
			slog.Info("No lyrics found from any source", "artist", q.Artist, "title", q.Title)
			s.writeNegativeCache(path)
		}
		return s.respond(ctx, req, &Response{Source: music.SourceExhausted}), nil
	}

	if err := s.store.WriteLyrics(path, res.Text); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}
	slog.Info("Wrote lyrics", "path", path, "source", res.Source, "synced", res.Synced)
	return s.respond(ctx, req, &Response{
		Success:    true,
		OutputPath: path,
		Source:     res.Source,
		Synced:     res.Synced,
		Lyrics:     res.Text,
	}), nil
}

// FetchLyricsForFile resolves lyrics for an audio file using its own tags,
// storing them next to it.
func (s *Service) FetchLyricsForFile(ctx context.Context, audioPath string, force bool) (*Response, error) {
	if s.tagReader == nil {
		return nil, errors.New("tag reading is not configured")
	}
	q, err := s.tagReader.ReadQuery(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read tags: %w", ErrInvalidRequest, err)
	}
	return s.FetchLyrics(ctx, Request{
		Artist:     q.Artist,
		Title:      q.Title,
		Album:      q.Album,
		DurationMs: int64(q.DurationSeconds * 1000),
		OutputPath: LyricsPathFor(audioPath),
		Force:      force,
	})
}

// ReadLyrics returns the stored lyrics at path. ok is false for missing files and negative cache markers.
func (s *Service) ReadLyrics(path string) (text string, ok bool, err error) {
	return s.store.ReadLyrics(path)
}

// History returns the latest terminal responses, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]music.HistoryEntry, error) {
	if s.history == nil {
		return []music.HistoryEntry{}, nil
	}
	return s.history.GetHistory(ctx, limit)
}

func (s *Service) writeNegativeCache(path string) {
	if err := s.store.WriteNegativeCache(path); err != nil {
		slog.Warn("Failed to write negative cache", "path", path, "error", err)
	}
}

// respond records the terminal response. Cache hits are counted but kept out of the history.
func (s *Service) respond(ctx context.Context, req Request, resp *Response) *Response {
	s.recorder.Resolved(resp.Source)
	if s.history == nil || resp.Source == music.SourceCached {
		return resp
	}
	entry := music.HistoryEntry{
		Artist:     req.Artist,
		Title:      req.Title,
		OutputPath: req.OutputPath,
		Source:     resp.Source,
		Synced:     resp.Synced,
		Success:    resp.Success,
		CreatedAt:  time.Now(),
	}
	if err := s.history.AddHistoryEntry(ctx, entry); err != nil {
		slog.Warn("Failed to record lyrics history", "path", req.OutputPath, "error", err)
	}
	return resp
}
