package config

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	mgr, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, mgr.Get().Lyrics.Resolution.CandidateQuota)

	_, err = os.Stat(path)
	require.NoError(t, err)

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, mgr.Get().Lyrics.Resolution, reloaded.Get().Lyrics.Resolution)
	assert.Equal(t, 30*24*time.Hour, reloaded.Get().Lyrics.Resolution.NegativeCacheTTL)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
media_paths: [/music]
database:
  enabled: false
lyrics:
  resolution:
    candidate_quota: 3
    request_timeout: 45s
`), 0644))

	mgr, err := Load(path)
	require.NoError(t, err)
	cfg := mgr.Get()
	assert.Equal(t, []string{"/music"}, cfg.MediaPaths)
	assert.Equal(t, 3, cfg.Lyrics.Resolution.CandidateQuota)
	assert.Equal(t, 45*time.Second, cfg.Lyrics.Resolution.RequestTimeout)
	assert.Equal(t, 0.35, cfg.Lyrics.Resolution.SimilarityThreshold)
	assert.Equal(t, uint32(8000), cfg.Server.Port)
	assert.Equal(t, DefaultBodyLimit, cfg.Server.BodyLimit)
}

func TestLoad_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("media_paths: []\n"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "config validation failed")
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  enabled: false\n"), 0644))
	t.Setenv("LYRICS_MEDIA_PATHS", "/a, /b ,")
	t.Setenv("LYRICS_SERVER_PORT", "9090")

	mgr, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, mgr.Get().MediaPaths)
	assert.Equal(t, uint32(9090), mgr.Get().Server.Port)
}

func TestManager_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  enabled: false\n"), 0644))
	mgr, err := Load(path)
	require.NoError(t, err)
	require.True(t, mgr.IsProviderEnabled(ProviderQQMusic))

	require.NoError(t, os.WriteFile(path, []byte(`
database:
  enabled: false
lyrics:
  providers:
    qqmusic:
      enabled: false
`), 0644))
	require.NoError(t, mgr.Reload(path))
	assert.False(t, mgr.IsProviderEnabled(ProviderQQMusic))
	assert.True(t, mgr.IsProviderEnabled(ProviderLRCLib))

	require.NoError(t, os.WriteFile(path, []byte("lyrics: [broken"), 0644))
	assert.Error(t, mgr.Reload(path))
	assert.False(t, mgr.IsProviderEnabled(ProviderQQMusic), "a failed reload keeps the running config")
}

func TestManager_ProviderTimeout(t *testing.T) {
	mgr := NewManager(Default())
	assert.Equal(t, 15*time.Second, mgr.ProviderTimeout(ProviderWebSearch, time.Second))
	assert.Equal(t, time.Second, mgr.ProviderTimeout("unknown", time.Second))
}

func TestDefault_IsACopy(t *testing.T) {
	a := Default()
	a.Lyrics.Providers[ProviderLRCLib] = LyricsProvider{}
	a.MediaPaths[0] = "/changed"

	b := Default()
	assert.True(t, b.Lyrics.Providers[ProviderLRCLib].Enabled)
	assert.Equal(t, "/media", b.MediaPaths[0])
}

func TestHandler_GetProviders(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app, NewManager(Default()))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/config/providers", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/config?format=yaml", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, "application/yaml", resp.Header.Get("Content-Type"))
}
