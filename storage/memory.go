package storage

import (
	"context"
	"time"

	"ainews/internal/domain"

	"github.com/patrickmn/go-cache"
)

const latestKey = "latest"

// MemorySnapshot хранит последний результат в памяти процесса.
type MemorySnapshot struct {
	cache *cache.Cache
}

// NewMemorySnapshot создает снимок, копия в котором живет ttl.
// Неположительный ttl означает хранение без срока.
func NewMemorySnapshot(ttl time.Duration) *MemorySnapshot {
	if ttl <= 0 {
		return &MemorySnapshot{cache: cache.New(cache.NoExpiration, 0)}
	}
	return &MemorySnapshot{cache: cache.New(ttl, 2*ttl)}
}

func (m *MemorySnapshot) Name() string { return "memory" }

func (m *MemorySnapshot) Publish(ctx context.Context, result *domain.Result) error {
	m.cache.Set(latestKey, result, cache.DefaultExpiration)
	return nil
}

func (m *MemorySnapshot) Latest(ctx context.Context) (*domain.Result, error) {
	v, found := m.cache.Get(latestKey)
	if !found {
		return nil, domain.ErrNoSnapshot
	}
	result, ok := v.(*domain.Result)
	if !ok {
		return nil, domain.ErrNoSnapshot
	}
	return result, nil
}
