package lyrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/contre95/lyricsolid/src/features/config"
	"github.com/contre95/lyricsolid/src/infra/files"
	"github.com/contre95/lyricsolid/src/music"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockProvider answers lookups through respond and records every query.
type MockProvider struct {
	name     string
	disabled bool
	respond  func(ctx context.Context, call int, q music.LyricsQuery) FetchResult

	mu    sync.Mutex
	calls []music.LyricsQuery
}

func newMockProvider(name string, respond func(ctx context.Context, call int, q music.LyricsQuery) FetchResult) *MockProvider {
	return &MockProvider{name: name, respond: respond}
}

func (m *MockProvider) Fetch(ctx context.Context, q music.LyricsQuery) FetchResult {
	m.mu.Lock()
	m.calls = append(m.calls, q)
	call := len(m.calls)
	m.mu.Unlock()
	if m.respond == nil {
		return NotFound()
	}
	return m.respond(ctx, call, q)
}

func (m *MockProvider) Name() string    { return m.name }
func (m *MockProvider) IsEnabled() bool { return !m.disabled }

func (m *MockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// always returns the same result on every call.
func always(res FetchResult) func(context.Context, int, music.LyricsQuery) FetchResult {
	return func(context.Context, int, music.LyricsQuery) FetchResult { return res }
}

// onCall returns res on the n-th call only.
func onCall(n int, res FetchResult) func(context.Context, int, music.LyricsQuery) FetchResult {
	return func(_ context.Context, call int, _ music.LyricsQuery) FetchResult {
		if call == n {
			return res
		}
		return NotFound()
	}
}

// MockHistory keeps history entries in memory.
type MockHistory struct {
	entries []music.HistoryEntry
}

func (m *MockHistory) AddHistoryEntry(_ context.Context, e music.HistoryEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *MockHistory) GetHistory(_ context.Context, limit int) ([]music.HistoryEntry, error) {
	return m.entries[:min(limit, len(m.entries))], nil
}

// MockTagReader returns a fixed query.
type MockTagReader struct {
	query music.LyricsQuery
	err   error
}

func (m MockTagReader) ReadQuery(context.Context, string) (music.LyricsQuery, error) {
	return m.query, m.err
}

type fixture struct {
	primary, aggregator, secondary, web *MockProvider
	history                             *MockHistory
	cfg                                 *config.Manager
	service                             *Service
	dir                                 string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		primary:    newMockProvider("lrclib", nil),
		aggregator: newMockProvider("aggregator", nil),
		secondary:  newMockProvider("qqmusic", nil),
		web:        newMockProvider("websearch", nil),
		history:    &MockHistory{},
		dir:        t.TempDir(),
	}
	cfg := config.Default()
	cfg.MediaPaths = []string{f.dir}
	f.cfg = config.NewManager(cfg)
	f.service = NewService(
		DefaultTiers(f.primary, f.aggregator, f.secondary, f.web),
		files.NewLyricsStore(f.cfg),
		f.history,
		MockTagReader{query: music.LyricsQuery{Artist: "Artist", Title: "Song", DurationSeconds: 200}},
		nil,
		f.cfg,
	)
	return f
}

func (f *fixture) totalCalls() int {
	return f.primary.callCount() + f.aggregator.callCount() + f.secondary.callCount() + f.web.callCount()
}

func (f *fixture) request(force bool) Request {
	return Request{
		Artist:     "Artist",
		Title:      "Song",
		OutputPath: filepath.Join(f.dir, ".lyrics", "song.lrc"),
		DurationMs: 200000,
		Force:      force,
	}
}

func TestFetchLyrics_InstrumentalWritesNegativeCache(t *testing.T) {
	f := newFixture(t)
	f.primary.respond = always(Instrumental())
	req := f.request(false)

	resp, err := f.service.FetchLyrics(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, &Response{Success: false, Source: music.SourceInstrumental}, resp)

	data, err := os.ReadFile(req.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, files.NegativeCacheMarker, string(data))

	calls := f.totalCalls()
	resp, err = f.service.FetchLyrics(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, &Response{Success: false, Source: music.SourceNegativeCache}, resp)
	assert.Equal(t, calls, f.totalCalls(), "negative cache hit must not reach providers")
}

func TestFetchLyrics_InstrumentalDiscardsCandidates(t *testing.T) {
	f := newFixture(t)
	f.primary.respond = func(_ context.Context, call int, _ music.LyricsQuery) FetchResult {
		if call == 1 {
			return Found("first line\nsecond line", "lrclib-plain")
		}
		return Instrumental()
	}
	f.cfg.Get().Lyrics.Resolution.CandidateQuota = 3

	resp, err := f.service.FetchLyrics(context.Background(), f.request(false))
	require.NoError(t, err)
	assert.Equal(t, music.SourceInstrumental, resp.Source)
	assert.False(t, resp.Success)
	assert.Zero(t, f.aggregator.callCount())
}

func TestFetchLyrics_CachedIsIdempotent(t *testing.T) {
	f := newFixture(t)
	text := strings.TrimSpace(syncedLyrics(180, 10))
	f.primary.respond = always(Found(text, "lrclib-synced"))
	req := f.request(false)

	first, err := f.service.FetchLyrics(context.Background(), req)
	require.NoError(t, err)
	require.True(t, first.Success)
	assert.Equal(t, "lrclib-synced", first.Source)
	assert.True(t, first.Synced)
	assert.Equal(t, req.OutputPath, first.OutputPath)

	calls := f.totalCalls()
	second, err := f.service.FetchLyrics(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.Equal(t, music.SourceCached, second.Source)
	assert.True(t, second.Synced)
	assert.Equal(t, first.Lyrics, second.Lyrics)
	assert.Equal(t, calls, f.totalCalls(), "cached response must not reach providers")
}

func TestFetchLyrics_CrossValidationPicksSynced(t *testing.T) {
	f := newFixture(t)
	f.primary.respond = onCall(1, Found(sharedPlain, "lrclib-plain"))
	f.aggregator.respond = onCall(1, Found(sharedSync, "aggregator-synced"))

	resp, err := f.service.FetchLyrics(context.Background(), f.request(false))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "aggregator-synced", resp.Source)
	assert.True(t, resp.Synced)
	assert.Equal(t, sharedSync, resp.Lyrics)
	assert.Zero(t, f.secondary.callCount(), "quota reached before the secondary tier")
	assert.Zero(t, f.web.callCount())
}

func TestFetchLyrics_ExhaustedWritesNegativeCache(t *testing.T) {
	f := newFixture(t)
	f.primary.respond = always(Found(syncedLyrics(400, 20), "lrclib-synced"))
	req := f.request(false)

	resp, err := f.service.FetchLyrics(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, &Response{Success: false, Source: music.SourceExhausted}, resp)
	assert.Equal(t, 2, f.web.callCount(), "web tier tries the first two variations when nothing was found")

	store := files.NewLyricsStore(nil)
	assert.True(t, store.IsNegativeCacheValid(req.OutputPath))
}

func TestFetchLyrics_ForceBypassesCaches(t *testing.T) {
	f := newFixture(t)
	req := f.request(false)
	store := files.NewLyricsStore(nil)
	require.NoError(t, store.WriteNegativeCache(req.OutputPath))

	f.primary.respond = always(Found("fresh line one\nfresh line two", "lrclib-plain"))

	resp, err := f.service.FetchLyrics(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, music.SourceNegativeCache, resp.Source)

	req.Force = true
	resp, err = f.service.FetchLyrics(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "lrclib-plain", resp.Source)
	assert.False(t, resp.Synced)

	text, ok, err := store.ReadLyrics(req.OutputPath)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "fresh line one\nfresh line two", text)
}

func TestFetchLyrics_ExpiredNegativeCacheSearchesAgain(t *testing.T) {
	f := newFixture(t)
	req := f.request(false)
	require.NoError(t, files.NewLyricsStore(nil).WriteNegativeCache(req.OutputPath))
	old := time.Now().Add(-31 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(req.OutputPath, old, old))

	resp, err := f.service.FetchLyrics(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, music.SourceExhausted, resp.Source)
	assert.NotZero(t, f.primary.callCount())
}

func TestFetchLyrics_WriteFailureIsAnError(t *testing.T) {
	f := newFixture(t)
	f.primary.respond = always(Found("line one\nline two", "lrclib-plain"))

	blocker := filepath.Join(f.dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	req := f.request(false)
	req.OutputPath = filepath.Join(blocker, "song.lrc")

	_, err := f.service.FetchLyrics(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutputWrite))
}

func TestFetchLyrics_InvalidRequest(t *testing.T) {
	f := newFixture(t)
	req := f.request(false)
	req.Title = " "

	_, err := f.service.FetchLyrics(context.Background(), req)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
	assert.Zero(t, f.totalCalls())
}

func TestFetchLyrics_DeadlineSkipsNegativeCache(t *testing.T) {
	f := newFixture(t)
	f.cfg.Get().Lyrics.Resolution.RequestTimeout = 50 * time.Millisecond
	f.primary.respond = func(ctx context.Context, _ int, _ music.LyricsQuery) FetchResult {
		<-ctx.Done()
		return NotFound()
	}
	req := f.request(false)

	resp, err := f.service.FetchLyrics(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, music.SourceExhausted, resp.Source)
	assert.Equal(t, 1, f.primary.callCount())
	assert.Zero(t, f.web.callCount())

	_, err = os.Stat(req.OutputPath)
	assert.True(t, os.IsNotExist(err), "an interrupted search must not be cached as absent")
}

func TestFetchLyrics_DeadlineDuringLastTierSkipsNegativeCache(t *testing.T) {
	f := newFixture(t)
	f.cfg.Get().Lyrics.Resolution.RequestTimeout = 50 * time.Millisecond
	f.web.respond = func(ctx context.Context, _ int, _ music.LyricsQuery) FetchResult {
		<-ctx.Done()
		return NotFound()
	}
	req := f.request(false)

	resp, err := f.service.FetchLyrics(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, music.SourceExhausted, resp.Source)
	assert.Equal(t, 1, f.web.callCount())

	_, err = os.Stat(req.OutputPath)
	assert.True(t, os.IsNotExist(err), "a deadline hit inside the web tier must not be cached as absent")
}

func TestFetchLyrics_RecordsHistory(t *testing.T) {
	f := newFixture(t)
	f.primary.respond = always(Instrumental())

	_, err := f.service.FetchLyrics(context.Background(), f.request(false))
	require.NoError(t, err)

	entries, err := f.service.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, music.SourceInstrumental, entries[0].Source)
	assert.Equal(t, "Song", entries[0].Title)
	assert.False(t, entries[0].Success)
}

func TestResolve_QuotaStopsTiers(t *testing.T) {
	f := newFixture(t)
	f.primary.respond = func(_ context.Context, call int, _ music.LyricsQuery) FetchResult {
		if call == 1 {
			return Found("alpha line\nbeta line", "lrclib-plain")
		}
		return Found("gamma line\ndelta line", "lrclib-search-plain")
	}

	res := f.service.Resolve(context.Background(), music.LyricsQuery{Artist: "The Artist", Title: "Song (Live)"})
	assert.Equal(t, music.OutcomeResolved, res.Outcome)
	assert.Equal(t, 2, f.primary.callCount())
	assert.Zero(t, f.aggregator.callCount())
}

func TestResolve_DuplicatesDoNotCount(t *testing.T) {
	f := newFixture(t)
	f.primary.respond = always(Found("[00:01.00]Same Line\n[00:02.00]Other Line", "lrclib-synced"))
	f.aggregator.respond = always(Found("same line\nother line", "aggregator-synced"))

	q := music.LyricsQuery{Artist: "The Artist", Title: "Song (Live)"}
	res := f.service.Resolve(context.Background(), q)

	assert.Equal(t, "lrclib-synced", res.Source)
	assert.Equal(t, len(GenerateVariations(q.Artist, q.Title)), f.primary.callCount(), "primary tier walks every variation")
	assert.Equal(t, 3, f.aggregator.callCount())
	assert.Equal(t, 2, f.secondary.callCount())
	assert.Zero(t, f.web.callCount(), "web tier only runs without any candidate")
}

func TestResolve_AlbumOnlyOnFirstVariation(t *testing.T) {
	f := newFixture(t)

	f.service.Resolve(context.Background(), music.LyricsQuery{Artist: "The Artist", Title: "Song (Live)", Album: "Album"})

	require.Greater(t, f.primary.callCount(), 1)
	assert.Equal(t, "Album", f.primary.calls[0].Album)
	for _, q := range f.primary.calls[1:] {
		assert.Empty(t, q.Album)
	}
	for _, q := range f.aggregator.calls {
		assert.Empty(t, q.Album)
	}
}

func TestResolve_DisabledProviderSkipped(t *testing.T) {
	f := newFixture(t)
	f.primary.disabled = true
	f.secondary.respond = onCall(1, Found("one line\ntwo lines", "qqmusic-plain"))

	res := f.service.Resolve(context.Background(), music.LyricsQuery{Artist: "Artist", Title: "Song"})
	assert.Zero(t, f.primary.callCount())
	assert.Equal(t, "qqmusic-plain", res.Source)
}

func TestFetchLyricsForFile(t *testing.T) {
	f := newFixture(t)
	f.primary.respond = always(Found("line one\nline two", "lrclib-plain"))
	audio := filepath.Join(f.dir, "Artist", "Song.flac")

	resp, err := f.service.FetchLyricsForFile(context.Background(), audio, false)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, filepath.Join(f.dir, "Artist", ".lyrics", "Song.lrc"), resp.OutputPath)
	assert.Equal(t, 200.0, f.primary.calls[0].DurationSeconds)
}

func TestFetchLyricsForFile_TagError(t *testing.T) {
	f := newFixture(t)
	f.service.tagReader = MockTagReader{err: errors.New("no tags")}

	_, err := f.service.FetchLyricsForFile(context.Background(), filepath.Join(f.dir, "x.mp3"), false)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}
