package storage

import (
	"context"

	"ainews/internal/domain"
)

// Archive определяет интерфейс долговременного архива статей.
// Сохраняет каждый прогон и отдает историю для API.
type Archive interface {
	SaveRun(ctx context.Context, result *domain.Result) (int, error)
	GetNews(ctx context.Context, n int) ([]domain.Article, error)
	Close()
}

// Snapshot хранит результат последнего прогона.
// Latest возвращает domain.ErrNoSnapshot, пока ничего не сохранено.
type Snapshot interface {
	Name() string
	Publish(ctx context.Context, result *domain.Result) error
	Latest(ctx context.Context) (*domain.Result, error)
}
