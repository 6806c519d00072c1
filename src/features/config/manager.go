package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Manager holds the application configuration and provides thread-safe access to it.
type Manager struct {
	mu     sync.RWMutex
	config *Config
}

// NewManager creates a new ConfigManager.
func NewManager(config *Config) *Manager {
	return &Manager{config: config}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Update updates the configuration.
func (m *Manager) Update(config *Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldConfig := m.config
	m.config = config

	// Log configuration changes
	if oldConfig != nil {
		slog.Debug("Configuration updated",
			"media_paths_changed", fmt.Sprint(oldConfig.MediaPaths) != fmt.Sprint(config.MediaPaths),
			"resolution_changed", oldConfig.Lyrics.Resolution != config.Lyrics.Resolution,
			"logger_enabled_changed", oldConfig.Logger.Enabled != config.Logger.Enabled,
		)
	}
}

// EnsureDirectories creates the directory of the history database if it doesn't exist.
func (m *Manager) EnsureDirectories() error {
	cfg := m.Get()
	if !cfg.Database.Enabled {
		return nil
	}
	dir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	slog.Info("Required directories created/verified", "database", dir)
	return nil
}

// IsProviderEnabled reports whether the named lyrics provider is switched on.
func (m *Manager) IsProviderEnabled(name string) bool {
	return m.Get().Lyrics.Providers[name].Enabled
}

// ProviderTimeout returns the per call timeout of the named provider, or fallback when unset.
func (m *Manager) ProviderTimeout(name string, fallback time.Duration) time.Duration {
	if t := m.Get().Lyrics.Providers[name].Timeout; t > 0 {
		return t
	}
	return fallback
}

// GetEnabledLyricsProviders returns a map of lyrics providers and whether they are enabled
func (m *Manager) GetEnabledLyricsProviders() map[string]bool {
	providers := make(map[string]bool)
	for name, p := range m.Get().Lyrics.Providers {
		providers[name] = p.Enabled
	}
	return providers
}

// GetJSON returns the current configuration as a JSON string.
func (m *Manager) GetJSON() string {
	jsonBytes, err := json.Marshal(m.Get())
	if err != nil {
		slog.Error("failed to marshal config to JSON", "error", err)
		return err.Error()
	}
	return string(jsonBytes)
}

func (m *Manager) GetYAML() string {
	yamlBytes, err := yaml.Marshal(m.Get())
	if err != nil {
		slog.Error("failed to marshal config to YAML", "error", err)
		return err.Error()
	}
	return string(yamlBytes)
}
