package lyrics

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// syncedLyrics builds an LRC text with one line every step seconds up to last.
func syncedLyrics(last, step int) string {
	var b strings.Builder
	for s := 0; s <= last; s += step {
		fmt.Fprintf(&b, "[%02d:%02d.00]line at %d\n", s/60, s%60, s)
	}
	if last%step != 0 {
		fmt.Fprintf(&b, "[%02d:%02d.00]last line\n", last/60, last%60)
	}
	return b.String()
}

func TestExtractTimestamps(t *testing.T) {
	text := "[ar:Artist]\n[00:12.34]first\n  [01:02]second\nplain\n[02:03.5]short fraction\n[10:00.250]third"

	assert.InDeltaSlice(t, []float64{12.34, 62, 600.25}, ExtractTimestamps(text), 0.0001)
	assert.Empty(t, ExtractTimestamps("no tags\nat all"))
}

func TestHasTimestamps(t *testing.T) {
	assert.True(t, HasTimestamps("plain\n[00:01.00]tagged"))
	assert.True(t, HasTimestamps("[3:15]loose minutes"))
	assert.False(t, HasTimestamps("[ar:Artist]\nplain"))
	assert.False(t, HasTimestamps("text [00:01] later in line"))
}

func TestHasTimestamps_AgreesWithExtract(t *testing.T) {
	for _, text := range []string{
		"[00:01.00]a\n[00:02.00]b",
		"[00:01]a",
		"plain\n [01:30.123]indented",
	} {
		assert.True(t, HasTimestamps(text))
		assert.NotEmpty(t, ExtractTimestamps(text), text)
	}
}

func TestCountLyricLines(t *testing.T) {
	text := "[ar:X]\n[00:01.00]\n[00:02.00]hello\nworld\n\n   \n[chorus]"
	assert.Equal(t, 2, CountLyricLines(text))
	assert.Zero(t, CountLyricLines(""))
}

func TestStripToPlain(t *testing.T) {
	text := "[ar:Someone]\n[ti:Song]\n[00:01.00]Hello World\n[00:02.00][00:03.00]Again\n\nPlain Line"
	assert.Equal(t, "hello world\nagain\nplain line", StripToPlain(text))
}

func TestStripToPlain_NoLeadingTags(t *testing.T) {
	for _, text := range []string{
		syncedLyrics(60, 5),
		"[00:01.00] [00:02.00] doubled\n[1:2:3]odd",
		"[12:34.567]x\n[99:99]y",
	} {
		for _, line := range strings.Split(StripToPlain(text), "\n") {
			assert.False(t, timestampTagRe.MatchString(line), "line %q still has a timestamp", line)
		}
	}
}

func TestValidate_Duration(t *testing.T) {
	v := NewValidator(30, 0.15)

	assert.False(t, v.Validate(syncedLyrics(250, 10), 180, "a", "t"), "last timestamp past duration + 30s")
	assert.False(t, v.Validate(syncedLyrics(20, 5), 180, "a", "t"), "last timestamp under 15% of duration")
	assert.True(t, v.Validate(syncedLyrics(170, 10), 180, "a", "t"))
	assert.True(t, v.Validate(syncedLyrics(250, 10), 0, "a", "t"), "unknown duration skips timestamp checks")
}

func TestValidate_Content(t *testing.T) {
	v := NewValidator(0, 0)

	assert.False(t, v.Validate("just one line", 0, "a", "t"))
	assert.False(t, v.Validate("<html>\n<body>\nline\nline", 0, "a", "t"))
	assert.False(t, v.Validate(strings.Repeat("la\n", 2001), 0, "a", "t"))
	assert.True(t, v.Validate("first line\nsecond line", 0, "a", "t"))
	assert.True(t, v.Validate("first line\nsecond line", 200, "a", "t"), "plain lyrics skip duration checks")
}

func TestValidate_OnReject(t *testing.T) {
	var reasons []string
	v := NewValidator(30, 0.15)
	v.OnReject = func(reason string) { reasons = append(reasons, reason) }

	v.Validate("one", 0, "a", "t")
	v.Validate(syncedLyrics(250, 10), 180, "a", "t")
	v.Validate(syncedLyrics(20, 5), 180, "a", "t")
	v.Validate("<body>\nx\ny", 0, "a", "t")

	assert.Equal(t, []string{"too_few_lines", "exceeds_duration", "short_coverage", "html"}, reasons)
}

func TestSimilarity(t *testing.T) {
	a := "[00:01.00]Hello\n[00:02.00]World"
	assert.Equal(t, 1.0, Similarity(a, a))
	assert.Equal(t, 1.0, Similarity(a, "hello\nWORLD\nhello"), "timestamps case and repeats are ignored")
	assert.Equal(t, 0.0, Similarity(a, ""))
	assert.Equal(t, 0.0, Similarity("", ""))
	assert.InDelta(t, 1.0/3.0, Similarity("a\nb", "b\nc"), 0.0001)
}
