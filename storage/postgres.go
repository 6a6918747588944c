package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"ainews/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ Archive = (*PostgresArchive)(nil)

// DefaultArchiveLimit - сколько статей отдает GetNews при неположительном n.
const DefaultArchiveLimit = 50

// PostgresArchive сохраняет прогоны и статьи в PostgreSQL.
// Статья идентифицируется URL: повторная встреча обновляет важность и прогон.
type PostgresArchive struct {
	pool         *pgxpool.Pool
	log          *slog.Logger
	defaultLimit int
}

func NewPostgresArchive(pool *pgxpool.Pool, log *slog.Logger) *PostgresArchive {
	log.Info("Initializing Postgres news archive", slog.String("component", "storage"))
	return &PostgresArchive{
		pool:         pool,
		log:          log,
		defaultLimit: DefaultArchiveLimit,
	}
}

func (db *PostgresArchive) Close() {
	db.log.Info("Closing database connection pool", slog.String("component", "storage"))
	db.pool.Close()
}

func (db *PostgresArchive) Name() string { return "archive" }

// Publish реализует usecase.Sink.
func (db *PostgresArchive) Publish(ctx context.Context, result *domain.Result) error {
	_, err := db.SaveRun(ctx, result)
	return err
}

// SaveRun записывает прогон и его статьи в одной транзакции.
// Возвращает количество записанных статей.
func (db *PostgresArchive) SaveRun(ctx context.Context, result *domain.Result) (n int, err error) {
	const op = "storage.postgres.SaveRun"
	log := db.log.With(
		slog.String("component", "storage"),
		slog.String("op", op),
		slog.String("run_id", result.RunID),
	)
	stats, err := json.Marshal(result.Stats)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to encode stats: %w", op, err)
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		log.Error("Failed to begin transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(context.Background()); rollbackErr != nil {
				log.Error("Failed to rollback transaction", slog.Any("error", rollbackErr))
			}
		}
	}()

	if _, err = tx.Exec(ctx, `
	INSERT INTO runs (id, started_at, finished_at, stats)
	VALUES ($1, $2, $3, $4);
	`, result.RunID, result.StartedAt, result.FinishedAt, stats); err != nil {
		log.Error("Failed to insert run", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to insert run: %w", op, err)
	}

	if len(result.Articles) > 0 {
		batch := &pgx.Batch{}
		query := `
		INSERT INTO articles (url, title, description, published_at, source, origin, importance, collected_at, run_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (url) DO UPDATE
		SET importance = EXCLUDED.importance, run_id = EXCLUDED.run_id, collected_at = EXCLUDED.collected_at;
		`
		for _, a := range result.Articles {
			batch.Queue(query,
				a.URL,
				a.Title,
				a.Description,
				a.PublishedAt,
				a.Source,
				string(a.Type),
				a.Importance,
				a.Collected,
				result.RunID,
			)
		}
		if err = tx.SendBatch(ctx, batch).Close(); err != nil {
			log.Error("Failed to execute batch", slog.Any("error", err))
			return 0, fmt.Errorf("%s: failed to execute batch: %w", op, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		log.Error("Failed to commit transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	log.Info("Run archived", slog.Int("articles", len(result.Articles)))
	return len(result.Articles), nil
}

// GetNews возвращает последние n статей архива: свежие прогоны первыми,
// внутри прогона - по убыванию важности.
func (db *PostgresArchive) GetNews(ctx context.Context, n int) ([]domain.Article, error) {
	limit := n
	if limit <= 0 {
		limit = db.defaultLimit
	}
	const op = "storage.postgres.GetNews"
	log := db.log.With(
		slog.String("component", "storage"),
		slog.String("op", op),
		slog.Int("limit", limit),
	)
	rows, err := db.pool.Query(ctx, `
	SELECT title, url, description, published_at, source, origin, collected_at, importance
	FROM articles
	ORDER BY collected_at DESC, importance DESC
	LIMIT $1;
	`, limit)
	if err != nil {
		log.Error("Database query failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}
	defer rows.Close()

	articles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Article, error) {
		var a domain.Article
		var origin string
		err := row.Scan(
			&a.Title,
			&a.URL,
			&a.Description,
			&a.PublishedAt,
			&a.Source,
			&origin,
			&a.Collected,
			&a.Importance,
		)
		a.Type = domain.OriginType(origin)
		return a, err
	})
	if err != nil {
		log.Error("Failed to collect rows", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to scan row: %w", op, err)
	}
	log.Debug("Archive news retrieved", slog.Int("count", len(articles)))
	return articles, nil
}
