package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"ainews/internal/config"
	"ainews/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisSnapshot публикует последний результат в Redis, чтобы его видели
// другие процессы: например, serve читает результат отдельного запуска collect.
type RedisSnapshot struct {
	client *redis.Client
	key    string
	log    *slog.Logger
}

// NewRedisSnapshot подключается к Redis и проверяет соединение.
func NewRedisSnapshot(ctx context.Context, cfg config.RedisConfig, log *slog.Logger) (*RedisSnapshot, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Address, err)
	}
	key := cfg.Key
	if key == "" {
		key = "ainews:latest"
	}
	log.Info("Redis snapshot connected",
		slog.String("component", "storage"),
		slog.String("address", cfg.Address),
		slog.String("key", key),
	)
	return &RedisSnapshot{client: client, key: key, log: log}, nil
}

func (r *RedisSnapshot) Name() string { return "redis" }

func (r *RedisSnapshot) Publish(ctx context.Context, result *domain.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot in redis: %w", err)
	}
	return nil
}

func (r *RedisSnapshot) Latest(ctx context.Context) (*domain.Result, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot from redis: %w", err)
	}
	var result domain.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &result, nil
}

func (r *RedisSnapshot) Close() {
	if err := r.client.Close(); err != nil {
		r.log.Warn("Failed to close redis client", slog.Any("error", err))
	}
}
