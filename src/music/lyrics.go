package music

import "time"

// Source tags with a special meaning for the resolution flow.
const (
	SourceInstrumental  = "instrumental"
	SourceNotFound      = "not_found"
	SourceCached        = "cached"
	SourceExhausted     = "exhausted"
	SourceNegativeCache = "negative-cache"
)

// LyricsQuery is the immutable input of a lyrics resolution.
// A zero DurationSeconds means the duration is unknown.
type LyricsQuery struct {
	Artist          string
	Title           string
	Album           string
	DurationSeconds float64
}

// HasDuration reports whether duration based validation applies.
func (q LyricsQuery) HasDuration() bool {
	return q.DurationSeconds > 0
}

// QueryVariation is one (artist, title) pair tried against the providers.
type QueryVariation struct {
	Artist string
	Title  string
}

// LyricsCandidate is a validated lyrics text collected from a provider.
type LyricsCandidate struct {
	Text   string
	Source string
}

// Outcome is the terminal state of a resolution.
type Outcome string

const (
	OutcomeResolved     Outcome = "resolved"
	OutcomeInstrumental Outcome = "instrumental"
	OutcomeExhausted    Outcome = "exhausted"
)

// Resolution is the result of running the provider tiers for a query.
type Resolution struct {
	Outcome Outcome
	Text    string
	Source  string
	Synced  bool
	// Interrupted is set when the overall deadline stopped the search early.
	Interrupted bool
}

// HistoryEntry records a terminal lyrics response.
type HistoryEntry struct {
	ID         string    `json:"id"`
	Artist     string    `json:"artist"`
	Title      string    `json:"title"`
	OutputPath string    `json:"outputPath"`
	Source     string    `json:"source"`
	Synced     bool      `json:"synced"`
	Success    bool      `json:"success"`
	CreatedAt  time.Time `json:"createdAt"`
}
