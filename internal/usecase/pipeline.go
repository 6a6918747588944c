package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"ainews/internal/dedupe"
	"ainews/internal/domain"
	"ainews/internal/scoring"

	"github.com/google/uuid"
)

const (
	DefaultMaxArticles        = 20
	DefaultImportantThreshold = 7
)

// PipelineOptions задает лимиты и задержки конвейера.
// FeedDelay и APIDelay - пауза после запроса к источнику соответствующего вида
// перед следующим запросом. Нулевая задержка отключает паузу.
type PipelineOptions struct {
	FeedDelay          time.Duration
	APIDelay           time.Duration
	MaxArticles        int
	ImportantThreshold int
}

// Pipeline выполняет один прогон сбора: последовательно опрашивает источники,
// объединяет статьи, удаляет дубликаты, оценивает, сортирует и обрезает список.
// Ошибка отдельного источника не прерывает прогон.
type Pipeline struct {
	fetcher            Fetcher
	parsers            map[domain.SourceKind]Parser
	scorer             *scoring.Scorer
	delays             map[domain.SourceKind]time.Duration
	log                *slog.Logger
	maxArticles        int
	importantThreshold int
	now                func() time.Time
}

// NewPipeline создает конвейер. parsers сопоставляет вид источника с парсером.
func NewPipeline(
	fetcher Fetcher,
	parsers map[domain.SourceKind]Parser,
	scorer *scoring.Scorer,
	log *slog.Logger,
	opts PipelineOptions,
) *Pipeline {
	if opts.MaxArticles <= 0 {
		opts.MaxArticles = DefaultMaxArticles
	}
	if opts.ImportantThreshold <= 0 {
		opts.ImportantThreshold = DefaultImportantThreshold
	}
	return &Pipeline{
		fetcher: fetcher,
		parsers: parsers,
		scorer:  scorer,
		delays: map[domain.SourceKind]time.Duration{
			domain.SourceRSS: opts.FeedDelay,
			domain.SourceAPI: opts.APIDelay,
		},
		log:                log,
		maxArticles:        opts.MaxArticles,
		importantThreshold: opts.ImportantThreshold,
		now:                time.Now,
	}
}

// pause ждет delay или отмены ctx.
func pause(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run опрашивает источники по порядку и возвращает ранжированный результат.
// Ошибка возвращается только при отмене ctx, в виде *domain.FatalError.
func (p *Pipeline) Run(ctx context.Context, sources []domain.Source) (*domain.Result, error) {
	started := p.now()
	runID := uuid.NewString()
	log := p.log.With(
		slog.String("component", "pipeline"),
		slog.String("run_id", runID),
	)
	log.Info("Collection started", slog.Int("sources", len(sources)))

	stats := domain.Stats{
		ImportantThreshold: p.importantThreshold,
		BySource:           make(map[string]int),
	}
	var collected []domain.Article
	for i, src := range sources {
		if i > 0 {
			if err := pause(ctx, p.delays[sources[i-1].Kind]); err != nil {
				log.Error("Collection aborted", slog.String("source", src.Name), slog.Any("error", err))
				return nil, &domain.FatalError{Stage: "collect", Err: err}
			}
		}
		articles, err := p.collectSource(ctx, src)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				log.Error("Collection aborted", slog.String("source", src.Name), slog.Any("error", ctxErr))
				return nil, &domain.FatalError{Stage: "collect", Err: ctxErr}
			}
			stats.SourcesFailed++
			stats.Failures = append(stats.Failures, domain.SourceFailure{
				Source:  src.Name,
				Kind:    domain.KindOf(err),
				Message: err.Error(),
			})
			log.Warn("Source skipped",
				slog.String("source", src.Name),
				slog.String("kind", domain.KindOf(err)),
				slog.Any("error", err),
			)
			continue
		}
		stats.SourcesOK++
		for _, a := range articles {
			switch a.Type {
			case domain.OriginAPI:
				stats.APIArticles++
			default:
				stats.RSSArticles++
			}
		}
		collected = append(collected, articles...)
	}

	unique := dedupe.Unique(collected)
	ranked := p.Rank(unique)

	stats.Collected = len(collected)
	stats.Unique = len(unique)
	stats.Ranked = len(ranked)
	stats.Important = domain.CountAtLeast(ranked, p.importantThreshold)
	for _, a := range ranked {
		stats.BySource[a.Source]++
	}

	result := &domain.Result{
		RunID:      runID,
		StartedAt:  started,
		FinishedAt: p.now(),
		Articles:   ranked,
		Stats:      stats,
	}
	log.Info("Collection completed",
		slog.Int("collected", stats.Collected),
		slog.Int("unique", stats.Unique),
		slog.Int("ranked", stats.Ranked),
		slog.Int("important", stats.Important),
		slog.Int("sources_failed", stats.SourcesFailed),
		slog.Duration("duration", result.FinishedAt.Sub(started)),
	)
	return result, nil
}

// Rank оценивает статьи, устойчиво сортирует по убыванию важности и обрезает список.
// Статьи с равной важностью сохраняют исходный порядок.
func (p *Pipeline) Rank(articles []domain.Article) []domain.Article {
	scored := make([]domain.Article, len(articles))
	for i, a := range articles {
		scored[i] = p.scorer.Apply(a)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Importance > scored[j].Importance
	})
	if len(scored) > p.maxArticles {
		scored = scored[:p.maxArticles]
	}
	return scored
}

func (p *Pipeline) collectSource(ctx context.Context, src domain.Source) ([]domain.Article, error) {
	start := p.now()
	log := p.log.With(
		slog.String("component", "pipeline"),
		slog.String("source", src.Name),
	)

	parser, ok := p.parsers[src.Kind]
	if !ok {
		return nil, &domain.ConfigurationError{Source: src.Name, Field: "kind", Message: fmt.Sprintf("no parser for %q", src.Kind)}
	}
	payload, err := p.fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	articles, err := parser.Parse(ctx, payload, src)
	if err != nil {
		return nil, err
	}
	log.Info("Source collected",
		slog.Int("articles", len(articles)),
		slog.Duration("duration", p.now().Sub(start)),
	)
	return articles, nil
}
