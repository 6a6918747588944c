package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ainews/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelDispatcher_RoutesErrors(t *testing.T) {
	var out, errOut bytes.Buffer
	log := slog.New(NewLevelDispatcherHandler(&out, &errOut, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.Info("feed fetched", slog.String("component", "pipeline"), slog.Int("count", 5))
	log.Error("feed failed", slog.String("component", "pipeline"), slog.String("error", "boom"))

	assert.Contains(t, out.String(), "INFO [pipeline]: feed fetched | count=5")
	assert.NotContains(t, out.String(), "feed failed")
	assert.Contains(t, errOut.String(), `ERROR [pipeline]: feed failed | error="boom"`)
}

func TestReadableHandler_LevelFilter(t *testing.T) {
	var out bytes.Buffer
	log := slog.New(NewReadableHandler(&out, &slog.HandlerOptions{Level: slog.LevelWarn}))

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "WARN: shown")
}

func TestReadableHandler_WithAttrsKept(t *testing.T) {
	var out bytes.Buffer
	log := slog.New(NewReadableHandler(&out, nil)).With(
		slog.String("component", "fetcher"),
		slog.String("source", "OpenAI Blog"),
	)

	log.Info("fetching", slog.String("op", "fetch"))

	line := out.String()
	assert.Contains(t, line, "[fetcher] (fetch): fetching")
	assert.Contains(t, line, "source=OpenAI Blog")
}

func TestReadableHandler_Groups(t *testing.T) {
	var out bytes.Buffer
	log := slog.New(NewReadableHandler(&out, nil)).WithGroup("stats")
	log.Info("run done", slog.Int("ranked", 20))
	assert.Contains(t, out.String(), "stats.ranked=20")
}

func TestFormatAttr(t *testing.T) {
	assert.Equal(t, "duration=1.235s", formatAttr(slog.Duration("duration", 1234567*time.Microsecond)))
	assert.Equal(t, `error="x"`, formatAttr(slog.String("error", "x")))
	long := "https://www.example.com/" + strings.Repeat("a", 60)
	assert.Equal(t, "url=https://www.example.com/...", formatAttr(slog.String("url", long)))
	assert.Equal(t, "url=https://a.b/c", formatAttr(slog.String("url", "https://a.b/c")))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("WARN"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("whatever"))
}

func TestNew_FileOutputs(t *testing.T) {
	dir := t.TempDir()
	cfg := config.LoggerConfig{
		Level:       "info",
		Output:      filepath.Join(dir, "logs", "ainews.log"),
		ErrorOutput: filepath.Join(dir, "logs", "ainews_error.log"),
	}
	log, err := New(cfg)
	require.NoError(t, err)

	log.Info("hello")
	log.Error("bad")

	data, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	errData, err := os.ReadFile(cfg.ErrorOutput)
	require.NoError(t, err)
	assert.Contains(t, string(errData), "bad")
}
