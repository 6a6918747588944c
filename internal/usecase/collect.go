package usecase

import (
	"context"
	"log/slog"
	"time"

	"ainews/internal/domain"
)

// CollectUseCase выполняет прогон конвейера и передает результат всем получателям.
type CollectUseCase struct {
	pipeline *Pipeline
	sources  []domain.Source
	sinks    []Sink
	log      *slog.Logger
}

func NewCollectUseCase(pipeline *Pipeline, sources []domain.Source, sinks []Sink, log *slog.Logger) *CollectUseCase {
	return &CollectUseCase{
		pipeline: pipeline,
		sources:  sources,
		sinks:    sinks,
		log:      log,
	}
}

// Sources возвращает источники, опрашиваемые каждым прогоном.
func (uc *CollectUseCase) Sources() []domain.Source { return uc.sources }

// Collect выполняет один прогон. Сбой любого получателя возвращается как
// *domain.FatalError: результат, не дошедший до потребителей, считается потерянным.
// Получатели вызываются по порядку, после первого сбоя остальные не вызываются.
func (uc *CollectUseCase) Collect(ctx context.Context) (*domain.Result, error) {
	log := uc.log.With(slog.String("component", "collector"))
	result, err := uc.pipeline.Run(ctx, uc.sources)
	if err != nil {
		return nil, err
	}
	for _, sink := range uc.sinks {
		start := time.Now()
		if err := sink.Publish(ctx, result); err != nil {
			log.Error("Publishing failed",
				slog.String("sink", sink.Name()),
				slog.String("run_id", result.RunID),
				slog.Any("error", err),
			)
			return result, &domain.FatalError{Stage: "publish " + sink.Name(), Err: err}
		}
		log.Debug("Result published",
			slog.String("sink", sink.Name()),
			slog.Duration("duration", time.Since(start)),
		)
	}
	return result, nil
}
