package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""), "unknown falls back to info")
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestRunLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewRunLogger(&Config{Level: slog.LevelInfo, Format: "json", Output: &buf})

	l.WithComponent("boundary").WithRun("run-1").Info("run started", "slots", 4)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "run started", record["msg"])
	assert.Equal(t, "boundary", record["component"])
	assert.Equal(t, "run-1", record["run_id"])
	assert.Equal(t, 4.0, record["slots"])
}

func TestRunLoggerLevelGate(t *testing.T) {
	var buf bytes.Buffer
	l := NewRunLogger(&Config{Level: slog.LevelError, Format: "json", Output: &buf})

	l.Info("suppressed")
	l.Warn("also suppressed")
	assert.Zero(t, buf.Len())

	l.Error("kept")
	assert.NotZero(t, buf.Len())
}

func TestRunLoggerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewRunLogger(&Config{Level: slog.LevelInfo, Format: "text", Output: &buf})

	l.WithNode("controller").Info("request routed", "route", "research")

	out := buf.String()
	assert.Contains(t, out, "node=controller")
	assert.Contains(t, out, "route=research")
	assert.False(t, strings.HasPrefix(out, "{"), "text format is not JSON")
}

func TestRunLoggerCallHelpers(t *testing.T) {
	var buf bytes.Buffer
	l := NewRunLogger(&Config{Level: slog.LevelInfo, Format: "json", Output: &buf})

	l.LogToolCall("web_search", 120*time.Millisecond, nil)
	l.LogModelCall("local", 80*time.Millisecond, errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "tool call completed")
	assert.Contains(t, lines[1], "model call failed")
}
