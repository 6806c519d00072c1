package lyrics

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

var (
	timestampRe    = regexp.MustCompile(`^\[(\d+):(\d{2})(?:\.(\d{2,3}))?\]`)
	timestampTagRe = regexp.MustCompile(`^\[\d+:\d{2}`)
	leadingStampRe = regexp.MustCompile(`^\[\d+:\d{2}(?:\.\d{2,3})?\]\s*`)
	anyStampRe     = regexp.MustCompile(`\[\d+:\d{2}(?:\.\d{2,3})?\]\s*`)
	looseStampRe   = regexp.MustCompile(`^\[\d+:\d+[^\]]*\]?\s*`)
	metadataTagRe  = regexp.MustCompile(`(?i)^\[[a-z]{2}:.+\]$`)
	htmlMarkerRe   = regexp.MustCompile(`(?i)<html|<body`)
)

const (
	minLyricLines    = 2
	maxLyricLines    = 2000
	defaultOvershoot = 30.0
	defaultCoverage  = 0.15
)

// ExtractTimestamps returns the time in seconds of every line starting with an [mm:ss(.xx)] tag.
func ExtractTimestamps(text string) []float64 {
	var stamps []float64
	for _, line := range strings.Split(text, "\n") {
		m := timestampRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		minutes, _ := strconv.Atoi(m[1])
		seconds, _ := strconv.Atoi(m[2])
		stamp := float64(minutes*60 + seconds)
		if m[3] != "" {
			frac := (m[3] + "000")[:3]
			ms, _ := strconv.Atoi(frac)
			stamp += float64(ms) / 1000
		}
		stamps = append(stamps, stamp)
	}
	return stamps
}

// HasTimestamps reports whether any line starts with a [digits:digits tag.
func HasTimestamps(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if timestampTagRe.MatchString(strings.TrimSpace(line)) {
			return true
		}
	}
	return false
}

// CountLyricLines counts timestamped lines with text plus plain lines that are not tags.
func CountLyricLines(text string) int {
	count := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case timestampTagRe.MatchString(line):
			if leadingStampRe.ReplaceAllString(line, "") != "" {
				count++
			}
		case !strings.HasPrefix(line, "["):
			count++
		}
	}
	return count
}

// StripToPlain projects lyrics to lowercased lines without timestamps or metadata tags.
// It is only meant for comparisons, never for storage.
func StripToPlain(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = anyStampRe.ReplaceAllString(strings.TrimSpace(line), "")
		for looseStampRe.MatchString(line) {
			line = looseStampRe.ReplaceAllString(line, "")
		}
		line = strings.TrimSpace(line)
		if line == "" || metadataTagRe.MatchString(line) {
			continue
		}
		lines = append(lines, strings.ToLower(line))
	}
	return strings.Join(lines, "\n")
}

// Validator rejects texts that cannot be the lyrics of the queried track.
type Validator struct {
	// MaxOvershoot is how far past the track duration the last timestamp may go, in seconds.
	MaxOvershoot float64
	// MinCoverage is the fraction of the duration the last timestamp has to reach.
	MinCoverage float64
	// OnReject is called with the rejection reason, if set.
	OnReject func(reason string)
}

// NewValidator creates a Validator with the given duration tolerances.
func NewValidator(maxOvershoot, minCoverage float64) *Validator {
	if maxOvershoot <= 0 {
		maxOvershoot = defaultOvershoot
	}
	if minCoverage <= 0 {
		minCoverage = defaultCoverage
	}
	return &Validator{MaxOvershoot: maxOvershoot, MinCoverage: minCoverage}
}

// Validate reports whether text is acceptable lyrics for artist - title.
// A zero durationSeconds skips the timestamp checks.
func (v *Validator) Validate(text string, durationSeconds float64, artist, title string) bool {
	reason := v.check(text, durationSeconds)
	if reason == "" {
		return true
	}
	slog.Info("Rejected lyrics", "artist", artist, "title", title, "reason", reason)
	if v.OnReject != nil {
		v.OnReject(reason)
	}
	return false
}

func (v *Validator) check(text string, durationSeconds float64) string {
	lines := CountLyricLines(text)
	if lines < minLyricLines {
		return "too_few_lines"
	}
	if lines > maxLyricLines {
		return "too_many_lines"
	}
	if htmlMarkerRe.MatchString(text) {
		return "html"
	}
	if durationSeconds <= 0 || !HasTimestamps(text) {
		return ""
	}
	stamps := ExtractTimestamps(text)
	if len(stamps) == 0 {
		return ""
	}
	last := stamps[0]
	for _, s := range stamps[1:] {
		last = max(last, s)
	}
	if last > durationSeconds+v.MaxOvershoot {
		return "exceeds_duration"
	}
	if last < durationSeconds*v.MinCoverage {
		return "short_coverage"
	}
	return ""
}
