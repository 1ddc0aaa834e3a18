package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, raw string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestWriterLoggerCarriesSessionAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWriterLogger(&buf, "info").WithSession("c:m").WithRegion("import")
	log.Info("import started", "account_id", "acct1")
	log.Debug("hidden")

	entries := decodeLines(t, buf.String())
	require.Len(t, entries, 1)
	assert.Equal(t, "import started", entries[0]["msg"])
	assert.Equal(t, "c:m", entries[0]["session_id"])
	assert.Equal(t, "import", entries[0]["region"])
	assert.Equal(t, "acct1", entries[0]["account_id"])
}

func TestWithSkipsNonStringKeys(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewWriterLogger(&buf, "debug").With(42, "x", "ok", true).Debug("entry")

	entries := decodeLines(t, buf.String())
	require.Len(t, entries, 1)
	assert.Equal(t, true, entries[0]["ok"])
	assert.NotContains(t, entries[0], "42")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"bogus":   LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
	assert.Len(t, ValidLevels(), 4)
}

func TestNewLoggerWritesFileAndCloses(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "logs")
	log, err := NewLogger(dir, "info")
	require.NoError(t, err)

	log.WithComponent("watcher").Warn("poll failed", "error", "boom")
	require.NoError(t, log.Close())
	require.NoError(t, log.Close())

	raw, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	entries := decodeLines(t, string(raw))
	require.Len(t, entries, 1)
	assert.Equal(t, "watcher", entries[0]["component"])
	assert.Equal(t, "WARN", entries[0]["level"])
}

func TestNilAndNopLoggerAreSafe(t *testing.T) {
	t.Parallel()

	var nilLogger *Logger
	nilLogger.Info("ignored")
	assert.Nil(t, nilLogger.With("k", "v"))
	assert.NoError(t, nilLogger.Close())
	assert.NotNil(t, nilLogger.Slog())

	NopLogger().Error("ignored")
	assert.NoError(t, NopLogger().Close())
}
