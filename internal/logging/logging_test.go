package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" DEBUG ": slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}

	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestNewLogger_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo, false)

	logger.With("module", "GitHubClient").Info("retrieved pull request", "pr_number", 42)
	logger.Debug("hidden")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "retrieved pull request", rec["msg"])
	assert.Equal(t, "GitHubClient", rec["module"])
	assert.EqualValues(t, 42, rec["pr_number"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewLogger_DevelopmentWritesPlainTextToBuffers(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelDebug, true)

	logger.Debug("parsing coderabbit comment", "comment_id", 7)

	out := buf.String()
	assert.Contains(t, out, "DBG")
	assert.Contains(t, out, "parsing coderabbit comment")
	assert.Contains(t, out, "comment_id=7")
	assert.NotContains(t, out, "\x1b[", "non-terminal writers get no ANSI colors")
}
