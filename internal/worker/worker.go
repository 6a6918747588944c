package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ainews/internal/domain"

	"github.com/robfig/cron/v3"
)

// DefaultRunTimeout ограничивает длительность одного прогона по расписанию.
const DefaultRunTimeout = 10 * time.Minute

// Collector выполняет один прогон сбора и публикации.
type Collector interface {
	Collect(ctx context.Context) (*domain.Result, error)
}

// Worker запускает сбор по cron-расписанию.
// Прогоны никогда не выполняются параллельно: тик, пришедший во время
// текущего прогона, пропускается.
type Worker struct {
	collector  Collector
	schedule   string
	runOnStart bool
	runTimeout time.Duration
	log        *slog.Logger

	cron    *cron.Cron
	chain   cron.Chain
	running sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New создает воркер. schedule - стандартное cron-выражение из пяти полей
// или дескриптор вида "@every 1h".
func New(collector Collector, schedule string, runOnStart bool, log *slog.Logger) (*Worker, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	w := &Worker{
		collector:  collector,
		schedule:   schedule,
		runOnStart: runOnStart,
		runTimeout: DefaultRunTimeout,
		log:        log.With(slog.String("component", "worker")),
	}
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.chain = cron.NewChain(cron.Recover(cronLogger{log: w.log}))
	w.cron = cron.New(cron.WithChain(cron.Recover(cronLogger{log: w.log})))
	if _, err := w.cron.AddFunc(schedule, func() { w.RunNow() }); err != nil {
		return nil, fmt.Errorf("failed to register schedule: %w", err)
	}
	return w, nil
}

// Start запускает планировщик и, если настроено, первый прогон в фоне.
// Паника в первом прогоне перехватывается так же, как в прогонах по расписанию.
func (w *Worker) Start() {
	w.log.Info("Collection worker started",
		slog.String("schedule", w.schedule),
		slog.Bool("run_on_start", w.runOnStart),
	)
	w.cron.Start()
	if w.runOnStart {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.chain.Then(cron.FuncJob(func() { w.RunNow() })).Run()
		}()
	}
}

// Stop останавливает планировщик, отменяет текущий прогон и дожидается его завершения.
func (w *Worker) Stop() {
	stopped := w.cron.Stop()
	w.cancel()
	<-stopped.Done()
	w.wg.Wait()
	w.log.Info("Collection worker stopped")
}

// RunNow выполняет прогон немедленно. Возвращает false, если прогон уже идет.
func (w *Worker) RunNow() bool {
	if !w.running.TryLock() {
		w.log.Warn("Collection already in progress, skipping tick")
		return false
	}
	defer w.running.Unlock()
	if w.ctx.Err() != nil {
		return false
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(w.ctx, w.runTimeout)
	defer cancel()

	result, err := w.collector.Collect(ctx)
	if err != nil {
		w.log.Error("Scheduled collection failed",
			slog.String("kind", domain.KindOf(err)),
			slog.Any("error", err),
			slog.Duration("duration", time.Since(start)),
		)
		return true
	}
	w.log.Info("Scheduled collection completed",
		slog.String("run_id", result.RunID),
		slog.Int("ranked", result.Stats.Ranked),
		slog.Int("sources_failed", result.Stats.SourcesFailed),
		slog.Duration("duration", time.Since(start)),
	)
	return true
}

// Next возвращает время следующего запуска по расписанию.
func (w *Worker) Next() time.Time {
	entries := w.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Schedule возвращает cron-выражение воркера.
func (w *Worker) Schedule() string { return w.schedule }

// cronLogger передает сообщения cron в slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append([]interface{}{slog.Any("error", err)}, keysAndValues...)...)
}
