package logging

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("bogus"))
}

func TestConsoleOutputRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithConfig(LogConfig{Level: "info", Console: true, Output: &buf})

	LogTick(logger, 3, 8)
	assert.Empty(t, buf.String(), "ticks are debug level")

	LogRejection(WithSession(logger, "abc"), "buy", errors.New("insufficient funds"))
	out := buf.String()
	assert.Contains(t, out, "Action rejected")
	assert.Contains(t, out, "insufficient funds")
	assert.Contains(t, out, "abc")
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tycoon.log")
	logger := NewLoggerWithConfig(LogConfig{Level: "debug", File: true, FilePath: path, MaxSize: 1})

	LogAction(logger, "tick", 1, "10000", "25")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"action":"tick"`)
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	ctx := WithLogger(context.Background(), logger)
	got, ok := FromContext(ctx)
	assert.True(t, ok)
	got.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")

	// A bare context yields a no-op logger.
	got, ok = FromContext(context.Background())
	assert.False(t, ok)
	got.Info().Msg("dropped")
	assert.NotContains(t, buf.String(), "dropped")
}
