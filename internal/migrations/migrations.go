// Package migrations создает и обновляет схему архива статей.
package migrations

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Migration struct {
	ID    string
	UpSQL string
}

var allMigrations = []Migration{
	{
		ID: "20250110090000_create_runs_table",
		UpSQL: `
		CREATE TABLE runs(
		id UUID PRIMARY KEY,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL,
		stats JSONB NOT NULL
		);`,
	},
	{
		ID: "20250110090100_create_articles_table",
		UpSQL: `
		CREATE TABLE articles(
		id BIGSERIAL PRIMARY KEY,
		url TEXT UNIQUE NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		published_at TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL,
		origin TEXT NOT NULL,
		importance SMALLINT NOT NULL CHECK (importance BETWEEN 1 AND 10),
		collected_at TIMESTAMPTZ NOT NULL,
		run_id UUID NOT NULL REFERENCES runs(id)
		);
		CREATE INDEX articles_collected_idx ON articles (collected_at DESC, importance DESC);`,
	},
}

// Ordered возвращает миграции в порядке применения.
func Ordered() []Migration {
	ordered := append([]Migration(nil), allMigrations...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ID < ordered[j].ID
	})
	return ordered
}

// Pending возвращает еще не примененные миграции в порядке применения.
func Pending(applied map[string]bool) []Migration {
	var pending []Migration
	for _, m := range Ordered() {
		if !applied[m.ID] {
			pending = append(pending, m)
		}
	}
	return pending
}

// Apply применяет все необходимые миграции к базе данных в одной транзакции.
func Apply(ctx context.Context, log *slog.Logger, pool *pgxpool.Pool) error {
	log = log.With(slog.String("component", "migrations"))
	log.Info("Checking archive schema")
	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (id TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	applied, err := appliedIDs(ctx, pool)
	if err != nil {
		return err
	}
	pending := Pending(applied)
	if len(pending) == 0 {
		log.Info("Archive schema is up to date")
		return nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)
	for _, m := range pending {
		log.Info("Applying migration", slog.String("id", m.ID))
		if _, err := tx.Exec(ctx, m.UpSQL); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.ID, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (id) VALUES ($1)", m.ID); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", m.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migrations transaction: %w", err)
	}
	log.Info("Archive migrations applied", slog.Int("count", len(pending)))
	return nil
}

func appliedIDs(ctx context.Context, pool *pgxpool.Pool) (map[string]bool, error) {
	rows, err := pool.Query(ctx, "SELECT id FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()
	applied := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan migration id: %w", err)
		}
		applied[id] = true
	}
	return applied, rows.Err()
}
