package config

import "time"

// Provider names as used in the lyrics.providers section.
const (
	ProviderLRCLib     = "lrclib"
	ProviderAggregator = "aggregator"
	ProviderQQMusic    = "qqmusic"
	ProviderWebSearch  = "websearch"
)

// DefaultBodyLimit is the largest request body the server accepts, in bytes.
const DefaultBodyLimit = 1024 * 1024

var defaultConfig = Config{
	MediaPaths: []string{"/media"},
	Logger: Logger{
		Enabled: true,
		Level:   "info",
		Format:  "text",
	},
	Server: Server{
		PrintRoutes: false,
		Port:        8000,
		BodyLimit:   DefaultBodyLimit,
	},
	Database: Database{
		Enabled: true,
		Path:    "./lyrics.db",
	},
	HTTP: HTTP{
		UserAgent:         "lyricsolid/1.0.0",
		BrowserUserAgent:  "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		RetryMax:          2,
		RetryWaitMin:      500 * time.Millisecond,
		RetryWaitMax:      4 * time.Second,
		RequestsPerSecond: 0, // unlimited
		Burst:             1,
	},
	Lyrics: Lyrics{
		Providers: map[string]LyricsProvider{
			ProviderLRCLib:     {Enabled: true, Timeout: 10 * time.Second},
			ProviderAggregator: {Enabled: true, Timeout: 10 * time.Second},
			ProviderQQMusic:    {Enabled: true, Timeout: 10 * time.Second},
			ProviderWebSearch:  {Enabled: true, Timeout: 15 * time.Second},
		},
		Resolution: Resolution{
			CandidateQuota:      2,
			SimilarityThreshold: 0.35,
			DurationTolerance:   15 * time.Second,
			MinCoverage:         0.15,
			MaxOvershoot:        30 * time.Second,
			NegativeCacheTTL:    30 * 24 * time.Hour,
			RequestTimeout:      2 * time.Minute,
		},
	},
}
