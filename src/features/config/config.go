package config

import "time"

// Config holds the application configuration.
type Config struct {
	MediaPaths []string `yaml:"media_paths" validate:"required,min=1,dive,required"`
	Logger     Logger   `yaml:"logger"`
	Server     Server   `yaml:"server"`
	Database   Database `yaml:"database"`
	HTTP       HTTP     `yaml:"http"`
	Lyrics     Lyrics   `yaml:"lyrics"`
}

// Server hold the configuration for the Fiber server Config
type Server struct {
	PrintRoutes bool   `yaml:"show_routes"`
	Port        uint32 `yaml:"port" validate:"required"`
	BodyLimit   int    `yaml:"body_limit" validate:"gte=0"`
}

// Logger holds the configuration for the app logging
type Logger struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format  string `yaml:"format" validate:"omitempty,oneof=text json logfmt"`
}

// Database holds the configuration for the resolution history database
type Database struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"required_if=Enabled true"`
}

// HTTP holds the configuration shared by every outbound provider call.
type HTTP struct {
	UserAgent         string        `yaml:"user_agent"`
	BrowserUserAgent  string        `yaml:"browser_user_agent"`
	RetryMax          int           `yaml:"retry_max" validate:"gte=0,lte=10"`
	RetryWaitMin      time.Duration `yaml:"retry_wait_min"`
	RetryWaitMax      time.Duration `yaml:"retry_wait_max"`
	RequestsPerSecond float64       `yaml:"requests_per_second" validate:"gte=0"`
	Burst             int           `yaml:"burst" validate:"gte=0"`
}

// Lyrics holds the configuration for lyrics providers and the resolution flow
type Lyrics struct {
	Providers  map[string]LyricsProvider `yaml:"providers"`
	Resolution Resolution                `yaml:"resolution"`
}

// LyricsProvider holds configuration for individual lyric providers
type LyricsProvider struct {
	Enabled bool          `yaml:"enabled"`
	Timeout time.Duration `yaml:"timeout"`
}

// Resolution holds the tunables of the lyrics resolution.
type Resolution struct {
	CandidateQuota      int           `yaml:"candidate_quota" validate:"gte=1"`
	SimilarityThreshold float64       `yaml:"similarity_threshold" validate:"gt=0,lte=1"`
	DurationTolerance   time.Duration `yaml:"duration_tolerance"`
	MinCoverage         float64       `yaml:"min_coverage" validate:"gte=0,lt=1"`
	MaxOvershoot        time.Duration `yaml:"max_overshoot"`
	NegativeCacheTTL    time.Duration `yaml:"negative_cache_ttl"`
	RequestTimeout      time.Duration `yaml:"request_timeout"`
}
