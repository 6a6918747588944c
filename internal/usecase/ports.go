package usecase

import (
	"context"

	"ainews/internal/domain"
)

// Fetcher определяет интерфейс загрузки сырого ответа источника.
type Fetcher interface {
	Fetch(ctx context.Context, src domain.Source) ([]byte, error)
}

// Parser преобразует сырой ответ источника в нормализованные статьи.
type Parser interface {
	Parse(ctx context.Context, payload []byte, src domain.Source) ([]domain.Article, error)
}

// Sink получает завершенный результат прогона: файлы, снимок, архив.
type Sink interface {
	Name() string
	Publish(ctx context.Context, result *domain.Result) error
}

// SnapshotStore хранит результат последнего прогона для API.
type SnapshotStore interface {
	Latest(ctx context.Context) (*domain.Result, error)
}

// ArchiveReader читает историю статей из долговременного хранилища.
type ArchiveReader interface {
	GetNews(ctx context.Context, n int) ([]domain.Article, error)
}
