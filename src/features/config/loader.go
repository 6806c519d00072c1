package config

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML file from the given path and returns a new ConfigManager.
// If the file doesn't exist, creates a default configuration.
func Load(path string) (*Manager, error) {
	// Check if config file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Info("Config file not found, creating default configuration", "path", path)
		defaultCfg := createDefaultConfig()

		// Save default config to file
		if err := saveDefaultConfig(path, defaultCfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		applyEnv(defaultCfg)

		slog.Info("Default configuration created successfully", "path", path)
		manager := NewManager(defaultCfg)
		if err := manager.EnsureDirectories(); err != nil {
			return nil, err
		}
		return manager, nil
	}

	cfg, err := readConfig(path)
	if err != nil {
		return nil, err
	}

	manager := NewManager(cfg)
	if err := manager.EnsureDirectories(); err != nil {
		return nil, err
	}

	return manager, nil
}

// Reload re-reads the configuration file into m.
func (m *Manager) Reload(path string) error {
	cfg, err := readConfig(path)
	if err != nil {
		return err
	}
	m.Update(cfg)
	slog.Info("Configuration reloaded", "path", path)
	return nil
}

func readConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Start from defaults so partial files keep sane tunables
	cfg := createDefaultConfig()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// Override with environment variables if set
	applyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags of cfg.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// applyEnv overrides cfg with LYRICS_* environment variables.
func applyEnv(cfg *Config) {
	if raw := os.Getenv("LYRICS_MEDIA_PATHS"); raw != "" {
		var roots []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				roots = append(roots, p)
			}
		}
		cfg.MediaPaths = roots
	}
	if raw := os.Getenv("LYRICS_SERVER_PORT"); raw != "" {
		port, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			slog.Warn("Ignoring invalid LYRICS_SERVER_PORT", "value", raw, "error", err)
			return
		}
		cfg.Server.Port = uint32(port)
	}
}

// Default returns a copy of the built-in configuration.
func Default() *Config {
	return createDefaultConfig()
}

// createDefaultConfig returns a copy of the default configuration
func createDefaultConfig() *Config {
	cfg := defaultConfig
	cfg.MediaPaths = append([]string(nil), defaultConfig.MediaPaths...)
	cfg.Lyrics.Providers = maps.Clone(defaultConfig.Lyrics.Providers)
	return &cfg
}

// saveDefaultConfig saves the default configuration to the specified file path
func saveDefaultConfig(path string, cfg *Config) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()
	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	slog.Info("Default configuration saved", "path", path)
	return nil
}
