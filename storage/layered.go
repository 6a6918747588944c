package storage

import (
	"context"
	"errors"

	"ainews/internal/domain"
)

var (
	_ Snapshot = (*MemorySnapshot)(nil)
	_ Snapshot = (*RedisSnapshot)(nil)
	_ Snapshot = (*LayeredSnapshot)(nil)
)

// LayeredSnapshot читает из локального снимка и при его отсутствии
// обращается к общему, прогревая локальный. Публикация идет в оба.
// Локальный снимок должен истекать, иначе прогоны другого процесса не будут видны.
type LayeredSnapshot struct {
	local  Snapshot
	shared Snapshot
}

func NewLayeredSnapshot(local, shared Snapshot) *LayeredSnapshot {
	return &LayeredSnapshot{local: local, shared: shared}
}

func (l *LayeredSnapshot) Name() string { return l.local.Name() + "+" + l.shared.Name() }

func (l *LayeredSnapshot) Publish(ctx context.Context, result *domain.Result) error {
	if err := l.shared.Publish(ctx, result); err != nil {
		return err
	}
	return l.local.Publish(ctx, result)
}

func (l *LayeredSnapshot) Latest(ctx context.Context) (*domain.Result, error) {
	result, err := l.local.Latest(ctx)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, domain.ErrNoSnapshot) {
		return nil, err
	}
	result, err = l.shared.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if err := l.local.Publish(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}
