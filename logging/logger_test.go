package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_JSONIncludesComponentAndArgs(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf, Component: "imagegen"})

	l.Info("imagegen.primary.failed", "backend", "imagen")
	l.Debug("filtered")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "imagegen.primary.failed", entry["msg"])
	assert.Equal(t, "imagegen", entry["component"])
	assert.Equal(t, "imagen", entry["backend"])
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "console", Output: &buf})
	l.Warn("score.rejected", "score", 120)
	assert.Contains(t, buf.String(), "score.rejected")
	assert.Contains(t, buf.String(), "score=")
	assert.Contains(t, buf.String(), "120")
}

func TestWith_AttachesArgs(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&LoggerConfig{Format: "text", Output: &buf})
	With(base, "session_id", "s1").Info("hello")
	assert.Contains(t, buf.String(), "session_id=s1")

	// Unknown implementations pass through untouched.
	assert.Equal(t, NoOpLogger{}, With(NoOpLogger{}, "k", "v"))
}

func TestZapAdapter_ForwardsKeyValues(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	z := NewZapAdapter(zap.New(core))

	z.Error("store.save.failed", "name", "a.png")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "store.save.failed", entries[0].Message)
	assert.Equal(t, "a.png", entries[0].ContextMap()["name"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLevel("debug"))
	assert.Equal(t, LogLevelWarn, ParseLevel("warning"))
	assert.Equal(t, LogLevelInfo, ParseLevel("bogus"))
	assert.Equal(t, "ERROR", LogLevelError.String())
}
