package storage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"ainews/internal/config"
	"ainews/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRedisSnapshot_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisSnapshot(ctx, config.RedisConfig{Address: "127.0.0.1:1"}, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}

// Требует запущенного Redis: REDIS_TEST_ADDR=localhost:6379.
func TestRedisSnapshot_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR is not set")
	}
	ctx := context.Background()
	key := "ainews:test:" + uuid.NewString()
	snap, err := NewRedisSnapshot(ctx, config.RedisConfig{Address: addr, Key: key}, discardLogger())
	require.NoError(t, err)
	defer snap.Close()
	defer snap.client.Del(ctx, key)

	_, err = snap.Latest(ctx)
	assert.ErrorIs(t, err, domain.ErrNoSnapshot)

	result := &domain.Result{
		RunID:    "redis-run",
		Articles: []domain.Article{{Title: "Stored headline for redis", URL: "https://r/1", Importance: 8}},
		Stats:    domain.Stats{Ranked: 1, BySource: map[string]int{"r": 1}},
	}
	require.NoError(t, snap.Publish(ctx, result))

	got, err := snap.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "redis-run", got.RunID)
	require.Len(t, got.Articles, 1)
	assert.Equal(t, 8, got.Articles[0].Importance)
}
