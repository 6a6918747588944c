package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"ainews/internal/adapter/fetcher"
	"ainews/internal/adapter/newsapi"
	"ainews/internal/adapter/parser"
	"ainews/internal/config"
	"ainews/internal/domain"
	"ainews/internal/logger"
	"ainews/internal/migrations"
	"ainews/internal/output"
	"ainews/internal/scoring"
	server "ainews/internal/transport/http"
	"ainews/internal/usecase"
	"ainews/internal/worker"
	"ainews/storage"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ShutdownTimeout ограничивает время на завершение HTTP-сервера.
const ShutdownTimeout = 10 * time.Second

// App связывает конвейер сбора с получателями результата и API.
// Собирается один раз из конфигурации и используется командами collect и serve.
type App struct {
	config    *config.Config
	logger    *slog.Logger
	collector *usecase.CollectUseCase
	snapshot  storage.Snapshot
	archive   *storage.PostgresArchive
	redis     *storage.RedisSnapshot
}

// New создает приложение: логгер, источники, конвейер и получателей.
// Архив и Redis подключаются только если настроены; ошибка подключения к ним фатальна.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	return NewWithLogger(ctx, cfg, appLogger)
}

// NewWithLogger создает приложение с готовым логгером.
func NewWithLogger(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) (*App, error) {
	a := &App{config: cfg, logger: appLogger}

	var snapshot storage.Snapshot = storage.NewMemorySnapshot(0)
	if cfg.Redis.IsEnabled() {
		redisSnapshot, err := storage.NewRedisSnapshot(ctx, cfg.Redis, appLogger)
		if err != nil {
			return nil, err
		}
		a.redis = redisSnapshot
		local := storage.NewMemorySnapshot(cfg.Redis.LocalTTLDuration())
		snapshot = storage.NewLayeredSnapshot(local, redisSnapshot)
	}
	a.snapshot = snapshot

	if cfg.Database.IsEnabled() {
		archive, err := openArchive(ctx, cfg.Database, appLogger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.archive = archive
	}

	sinks := []usecase.Sink{output.NewWriter(cfg.Output, appLogger), a.snapshot}
	if a.archive != nil {
		sinks = append(sinks, a.archive)
	}

	httpFetcher := fetcher.NewHTTPFetcher(appLogger, cfg.App.RequestTimeoutDuration(), cfg.App.UserAgent)
	pipeline := usecase.NewPipeline(
		httpFetcher,
		map[domain.SourceKind]usecase.Parser{
			domain.SourceRSS: parser.NewRSSParser(appLogger, cfg.App.MaxItemsPerFeed),
			domain.SourceAPI: parser.NewAPIParser(appLogger, cfg.App.MaxItemsPerQuery),
		},
		scoring.New(scoring.DefaultTable()),
		appLogger,
		usecase.PipelineOptions{
			FeedDelay:          cfg.App.FeedDelayDuration(),
			APIDelay:           cfg.App.APIDelayDuration(),
			MaxArticles:        cfg.App.MaxArticles,
			ImportantThreshold: cfg.App.ImportantThreshold,
		},
	)
	a.collector = usecase.NewCollectUseCase(pipeline, BuildSources(cfg, appLogger), sinks, appLogger)
	return a, nil
}

func openArchive(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*storage.PostgresArchive, error) {
	dbPool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	if err := migrations.Apply(ctx, log, dbPool); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("migrations failed: %w", err)
	}
	return storage.NewPostgresArchive(dbPool, log), nil
}

// BuildSources возвращает RSS-ленты и, при наличии ключа, поисковые запросы к API.
// Отсутствие ключа не ошибка: сбор продолжается только по RSS.
func BuildSources(cfg *config.Config, log *slog.Logger) []domain.Source {
	sources := newsapi.FeedSources(cfg.App.FeedURLs)
	apiSources, err := newsapi.Sources(cfg.NewsAPI)
	if err != nil {
		log.Warn("News API disabled, collecting from RSS only",
			slog.String("component", "app"),
			slog.String("kind", domain.KindOf(err)),
			slog.Any("error", err),
		)
		return sources
	}
	return append(sources, apiSources...)
}

// Collect выполняет один прогон и публикует результат.
func (a *App) Collect(ctx context.Context) (*domain.Result, error) {
	a.logger.Info("Starting collection",
		slog.String("component", "app"),
		slog.Int("sources", len(a.collector.Sources())),
		slog.String("output_dir", a.config.Output.Dir),
	)
	return a.collector.Collect(ctx)
}

// Serve запускает сбор по расписанию и HTTP API. Блокируется до отмены ctx,
// затем выполняет graceful shutdown.
func (a *App) Serve(ctx context.Context) error {
	w, err := worker.New(a.collector, a.config.Schedule.Cron, a.config.Schedule.RunOnStart, a.logger)
	if err != nil {
		return err
	}

	var archive usecase.ArchiveReader
	if a.archive != nil {
		archive = a.archive
	}
	getter := usecase.NewNewsGetterUseCase(a.snapshot, archive)
	handler := server.NewHandler(a.logger, getter, a.config.Output.ImportantThreshold)
	router := server.NewServer(a.logger, handler, server.ServerOptions{
		AllowedOrigins: a.config.Server.AllowedOrigins,
		StaticDir:      a.config.Output.Dir,
		RateLimit:      a.config.Server.RateLimit,
		RateBurst:      a.config.Server.RateBurst,
	})
	httpServer := &http.Server{
		Addr:              a.config.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	listener, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	a.logger.Info("HTTP server ready",
		slog.String("component", "server"),
		slog.String("address", listener.Addr().String()),
	)

	w.Start()
	a.logger.Info("Next scheduled collection",
		slog.String("component", "app"),
		slog.Time("at", w.Next()),
	)

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("Shutdown signal received", slog.String("component", "app"))
	case runErr = <-serveErr:
		a.logger.Error("HTTP server failed", slog.String("component", "server"), slog.Any("error", runErr))
	}

	w.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", slog.String("component", "server"), slog.Any("error", err))
	}
	wg.Wait()
	a.logger.Info("Application stopped gracefully", slog.String("component", "app"))
	return runErr
}

// Close освобождает соединения с внешними хранилищами.
func (a *App) Close() {
	if a.archive != nil {
		a.archive.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}
