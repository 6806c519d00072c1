package logging

import (
	"bytes"
	"testing"

	"github.com/contre95/lyricsolid/src/features/config"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.Logger{Enabled: true, Level: "warn", Format: "logfmt"}, &buf)
	buf.Reset()

	logger.Info("hidden message")
	logger.Warn("shown message", "provider", "lrclib")

	out := buf.String()
	assert.NotContains(t, out, "hidden message")
	assert.Contains(t, out, "shown message")
	assert.Contains(t, out, "provider=lrclib")
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.Logger{Enabled: true, Level: "debug", Format: "json"}, &buf)
	buf.Reset()

	logger.Debug("resolving", "title", "Song")
	assert.Contains(t, buf.String(), `"title":"Song"`)
}

func TestNewLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.Logger{Enabled: false, Level: "debug"}, &buf)
	logger.Error("dropped")
	assert.Zero(t, buf.Len())
}
