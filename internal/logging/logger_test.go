package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, sonic.UnmarshalString(line, &entry))
		out = append(out, entry)
	}
	return out
}

func TestLoggerWritesKeyValueFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, FormatJSON, LevelInfo).With("run_id", "abc")

	log.Debug("hidden")
	log.Info("processed match", "match_id", 42, "events", 120)
	log.Error("failed", "error", errors.New("boom"), "dangling")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)

	assert.Equal(t, "processed match", entries[0]["msg"])
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "abc", entries[0]["run_id"])
	assert.EqualValues(t, 42, entries[0]["match_id"])

	assert.Equal(t, "boom", entries[1]["error"])
	assert.Contains(t, entries[1], "dangling")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel(" warning "))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestNilAndNopLoggersAreSafe(t *testing.T) {
	var nilLogger *Logger
	assert.NotPanics(t, func() {
		nilLogger.Info("ignored")
		nilLogger.With("k", "v").Warn("ignored")
		_ = nilLogger.Sync()
		NewNop().Error("ignored", "k", 1)
	})
}

func TestSyncRunsOnce(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, FormatConsole, LevelDebug)
	child := log.With("match_id", 1)

	child.Debug("console line")
	assert.NoError(t, log.Sync())
	assert.NoError(t, child.Sync())
	assert.Contains(t, buf.String(), "console line")
}

func TestFromZapWrapsLogger(t *testing.T) {
	z := zap.NewExample()
	assert.Same(t, z, FromZap(z).Zap())
	assert.NotNil(t, FromZap(nil).Zap())

	var nilLogger *Logger
	assert.NotNil(t, nilLogger.Zap())
	assert.NotNil(t, NewJSON(LevelInfo))
}

func TestErrorEntriesCarryStacktrace(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, FormatJSON, LevelDebug)

	log.Warn("slow page", "match_id", 7)
	log.Error("match failed", "match_id", 7)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.NotContains(t, entries[0], "stacktrace")
	assert.Equal(t, "ERROR", entries[1]["level"])
	assert.Contains(t, entries[1], "stacktrace")
}
