package usecase

import (
	"context"

	"ainews/internal/domain"
)

// NewsGetterUseCase предоставляет данные последнего прогона и архива для API.
type NewsGetterUseCase struct {
	snapshot SnapshotStore
	archive  ArchiveReader
}

// NewNewsGetterUseCase создает UseCase чтения. archive может быть nil, если архив не настроен.
func NewNewsGetterUseCase(snapshot SnapshotStore, archive ArchiveReader) *NewsGetterUseCase {
	return &NewsGetterUseCase{snapshot: snapshot, archive: archive}
}

// GetNews возвращает последний прогон, в котором оставлено не больше limit статей
// в порядке ранжирования. Неположительный limit означает весь список.
// Снимок читается один раз, поэтому RunID и статьи относятся к одному прогону.
func (uc *NewsGetterUseCase) GetNews(ctx context.Context, limit int) (*domain.Result, error) {
	result, err := uc.snapshot.Latest(ctx)
	if err != nil {
		return nil, err
	}
	view := *result
	if limit > 0 && len(view.Articles) > limit {
		view.Articles = view.Articles[:limit]
	}
	return &view, nil
}

// GetImportant возвращает статьи последнего прогона с важностью не ниже threshold.
func (uc *NewsGetterUseCase) GetImportant(ctx context.Context, threshold int) ([]domain.Article, error) {
	result, err := uc.snapshot.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterAtLeast(result.Articles, threshold), nil
}

// GetLatest возвращает результат последнего прогона целиком.
func (uc *NewsGetterUseCase) GetLatest(ctx context.Context) (*domain.Result, error) {
	return uc.snapshot.Latest(ctx)
}

// GetArchive возвращает статьи из архива; без архива - domain.ErrArchiveDisabled.
func (uc *NewsGetterUseCase) GetArchive(ctx context.Context, limit int) ([]domain.Article, error) {
	if uc.archive == nil {
		return nil, domain.ErrArchiveDisabled
	}
	return uc.archive.GetNews(ctx, limit)
}
