package worker

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ainews/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCollector struct {
	calls   atomic.Int32
	block   chan struct{}
	started chan struct{}
	once    sync.Once
	err     error
}

func (c *countingCollector) Collect(ctx context.Context) (*domain.Result, error) {
	c.calls.Add(1)
	if c.started != nil {
		c.once.Do(func() { close(c.started) })
	}
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
			return nil, &domain.FatalError{Stage: "collect", Err: ctx.Err()}
		}
	}
	if c.err != nil {
		return nil, c.err
	}
	return &domain.Result{RunID: "run"}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_InvalidSchedule(t *testing.T) {
	_, err := New(&countingCollector{}, "every now and then", false, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schedule")
}

func TestWorker_RunNow(t *testing.T) {
	c := &countingCollector{}
	w, err := New(c, "0 9,18 * * *", false, testLogger())
	require.NoError(t, err)

	assert.True(t, w.RunNow())
	assert.Equal(t, int32(1), c.calls.Load())
	assert.Equal(t, "0 9,18 * * *", w.Schedule())
}

func TestWorker_RunNowLogsFailure(t *testing.T) {
	c := &countingCollector{err: &domain.FatalError{Stage: "publish files", Err: errors.New("disk full")}}
	w, err := New(c, "@hourly", false, testLogger())
	require.NoError(t, err)

	assert.True(t, w.RunNow())
	assert.Equal(t, int32(1), c.calls.Load())
}

func TestWorker_SkipsOverlappingRuns(t *testing.T) {
	c := &countingCollector{block: make(chan struct{}), started: make(chan struct{})}
	w, err := New(c, "@hourly", false, testLogger())
	require.NoError(t, err)

	done := make(chan bool)
	go func() { done <- w.RunNow() }()
	<-c.started

	assert.False(t, w.RunNow(), "second run must be skipped while the first is in progress")
	close(c.block)
	assert.True(t, <-done)
	assert.Equal(t, int32(1), c.calls.Load())
}

func TestWorker_StartRunsOnStartAndStopCancels(t *testing.T) {
	c := &countingCollector{block: make(chan struct{}), started: make(chan struct{})}
	w, err := New(c, "@hourly", true, testLogger())
	require.NoError(t, err)

	w.Start()
	select {
	case <-c.started:
	case <-time.After(2 * time.Second):
		t.Fatal("run on start did not begin")
	}
	assert.False(t, w.Next().IsZero())

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not cancel the running collection")
	}
	assert.False(t, w.RunNow(), "no runs after stop")
}

type panickingCollector struct {
	calls atomic.Int32
}

func (c *panickingCollector) Collect(ctx context.Context) (*domain.Result, error) {
	if c.calls.Add(1) == 1 {
		panic("parser exploded")
	}
	return &domain.Result{RunID: "after-panic"}, nil
}

func TestWorker_PanicOnStartIsRecovered(t *testing.T) {
	var buf safeBuffer
	c := &panickingCollector{}
	w, err := New(c, "@hourly", true, slog.New(slog.NewTextHandler(&buf, nil)))
	require.NoError(t, err)

	w.Start()
	require.Eventually(t, func() bool { return c.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return strings.Contains(buf.String(), "panic") }, 2*time.Second, 10*time.Millisecond)

	assert.True(t, w.RunNow(), "lock is released after the panic")
	assert.Equal(t, int32(2), c.calls.Load())
	w.Stop()
}

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
