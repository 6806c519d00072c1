package lyrics

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// noisePatterns are the annotations providers rarely carry in their own titles.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*\(feat\.?\s+[^)]*\)`),
	regexp.MustCompile(`(?i)\s*\[feat\.?\s+[^\]]*\]`),
	regexp.MustCompile(`(?i)\s*\bft\.?\s+.*$`),
	regexp.MustCompile(`(?i)\s*\(with\s+[^)]*\)`),
	regexp.MustCompile(`(?i)\s*\[with\s+[^\]]*\]`),
	regexp.MustCompile(`(?i)\s*\(remaster(ed)?\s*\d*\)`),
	regexp.MustCompile(`(?i)\s*\[remaster(ed)?\s*\d*\]`),
	regexp.MustCompile(`(?i)\s*-\s*single$`),
	regexp.MustCompile(`(?i)\s*\(deluxe[^)]*\)`),
	regexp.MustCompile(`(?i)\s*\(bonus\s*track\)`),
	regexp.MustCompile(`(?i)\s*\(live[^)]*\)`),
	regexp.MustCompile(`(?i)\s*\[live[^\]]*\]`),
	regexp.MustCompile(`(?i)\s*\(acoustic[^)]*\)`),
	regexp.MustCompile(`(?i)\s*\(remix[^)]*\)`),
	regexp.MustCompile(`(?i)\s*\[remix[^\]]*\]`),
	regexp.MustCompile(`(?i)\s*\(radio\s*edit\)`),
	regexp.MustCompile(`(?i)\s*\(explicit\)`),
	regexp.MustCompile(`(?i)\s*\(clean\)`),
	regexp.MustCompile(`(?i)\s*\(original\s*mix\)`),
	regexp.MustCompile(`(?i)\s*\(extended[^)]*\)`),
}

var (
	artistSplitRe   = regexp.MustCompile(`(?i)\s*(?:,\s*|\s+(?:&|and|feat\.?|ft\.?|vs\.?|x|×)\s+)\s*`)
	punctuationRe   = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
	leadingTheRe    = regexp.MustCompile(`^the\s+`)
	parentheticalRe = regexp.MustCompile(`\s*\([^)]*\)`)
	bracketedRe     = regexp.MustCompile(`\s*\[[^\]]*\]`)
)

// stripMarks decomposes text and drops the combining marks, so "Beyoncé" becomes "Beyonce".
func stripMarks(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

// StripNoise removes the known noise annotations from a title, keeping its case.
func StripNoise(title string) string {
	for _, re := range noisePatterns {
		title = re.ReplaceAllString(title, "")
	}
	return strings.TrimSpace(title)
}

// StripAllParentheticals removes every (...) and [...] group.
func StripAllParentheticals(title string) string {
	title = parentheticalRe.ReplaceAllString(title, "")
	title = bracketedRe.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}

// Normalize folds text into the canonical form used for comparisons.
func Normalize(text string) string {
	text = stripMarks(text)
	text = strings.TrimSpace(strings.ToLower(text))
	for _, re := range noisePatterns {
		text = re.ReplaceAllString(text, "")
	}
	text = punctuationRe.ReplaceAllString(text, "")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// NormalizeArtist is Normalize without a leading "the".
func NormalizeArtist(artist string) string {
	return leadingTheRe.ReplaceAllString(Normalize(artist), "")
}

// SplitArtists splits a collaboration string into its artists, primary first.
func SplitArtists(artist string) []string {
	var artists []string
	for _, part := range artistSplitRe.Split(artist, -1) {
		if part = strings.TrimSpace(part); part != "" {
			artists = append(artists, part)
		}
	}
	return artists
}
