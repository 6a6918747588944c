package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ainews/internal/config"
	"ainews/internal/domain"
	"ainews/internal/output"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const feedBody = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Test</title>
<item><title>OpenAI announces breakthrough GPT-4 release</title><link>https://t/1</link></item>
<item><title>Weekly notes on robotics research</title><link>https://t/2</link></item>
</channel></rss>`

func testConfig(t *testing.T, feedURL string) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.App.FeedURLs = []config.FeedURL{{Name: "Test Feed", URL: feedURL}}
	cfg.App.FeedDelay = "0s"
	cfg.App.APIDelay = "0s"
	cfg.Server.RateLimit = 0
	cfg.App.RequestTimeout = "2s"
	cfg.NewsAPI.APIKey = ""
	cfg.Output.Dir = t.TempDir()
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestBuildSources_WithoutAPIKey(t *testing.T) {
	cfg := config.New()

	sources := BuildSources(cfg, discardLogger())

	require.Len(t, sources, len(cfg.App.FeedURLs))
	for _, s := range sources {
		assert.Equal(t, domain.SourceRSS, s.Kind)
	}
}

func TestBuildSources_WithAPIKey(t *testing.T) {
	cfg := config.New()
	cfg.NewsAPI.APIKey = "key"

	sources := BuildSources(cfg, discardLogger())

	require.Len(t, sources, len(cfg.App.FeedURLs)+cfg.NewsAPI.MaxQueries)
	assert.Equal(t, domain.SourceAPI, sources[len(sources)-1].Kind)
}

func TestApp_Collect(t *testing.T) {
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feedBody))
	}))
	defer feed.Close()
	cfg := testConfig(t, feed.URL)

	a, err := NewWithLogger(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	defer a.Close()

	result, err := a.Collect(context.Background())

	require.NoError(t, err)
	require.Len(t, result.Articles, 2)
	assert.Equal(t, "OpenAI announces breakthrough GPT-4 release", result.Articles[0].Title)
	assert.Equal(t, 0, result.Stats.APIArticles)

	data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, output.LatestFile))
	require.NoError(t, err)
	var latest map[string]any
	require.NoError(t, json.Unmarshal(data, &latest))
	assert.EqualValues(t, 2, latest["totalCount"])
	assert.FileExists(t, filepath.Join(cfg.Output.Dir, output.FeedFile))

	snap, err := a.snapshot.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, result.RunID, snap.RunID)
}

func TestApp_CollectOutputFailureIsFatal(t *testing.T) {
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feedBody))
	}))
	defer feed.Close()
	cfg := testConfig(t, feed.URL)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	cfg.Output.Dir = blocker

	a, err := NewWithLogger(context.Background(), cfg, discardLogger())
	require.NoError(t, err)

	_, err = a.Collect(context.Background())
	assert.True(t, domain.IsFatal(err))
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().String()
}

func TestApp_Serve(t *testing.T) {
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feedBody))
	}))
	defer feed.Close()
	cfg := testConfig(t, feed.URL)
	cfg.Server.Address = freeAddr(t)
	cfg.Schedule.RunOnStart = true

	a, err := NewWithLogger(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	url := fmt.Sprintf("http://%s/api/news", cfg.Server.Address)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}
