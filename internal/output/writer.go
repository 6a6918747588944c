// Package output публикует результат прогона в виде статических файлов:
// JSON-сводок, ежедневного архива и RSS-ленты.
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ainews/internal/config"
	"ainews/internal/domain"
)

const (
	LatestFile    = "latest-news.json"
	ImportantFile = "important-news.json"
	NewsFile      = "news.json"
	FeedFile      = "rss.xml"
	ArchiveDir    = "archive"
)

type summaryStats struct {
	RSSArticles   int            `json:"rssArticles"`
	APIArticles   int            `json:"apiArticles"`
	ImportantNews int            `json:"importantNews"`
	Categories    map[string]int `json:"categories"`
}

type latestDocument struct {
	LastUpdated time.Time        `json:"lastUpdated"`
	RunID       string           `json:"runId"`
	TotalCount  int              `json:"totalCount"`
	Stats       summaryStats     `json:"stats"`
	News        []domain.Article `json:"news"`
}

type importantDocument struct {
	LastUpdated time.Time        `json:"lastUpdated"`
	Threshold   int              `json:"threshold"`
	TotalCount  int              `json:"totalCount"`
	News        []domain.Article `json:"news"`
}

// Writer записывает артефакты прогона в каталог вывода.
// Каждый файл сначала пишется во временный файл и затем переименовывается,
// поэтому читатели никогда не видят частично записанный документ.
type Writer struct {
	dir                string
	importantThreshold int
	feed               FeedOptions
	log                *slog.Logger
}

func NewWriter(cfg config.OutputConfig, log *slog.Logger) *Writer {
	return &Writer{
		dir:                cfg.Dir,
		importantThreshold: cfg.ImportantThreshold,
		feed: FeedOptions{
			Title: cfg.SiteTitle,
			Link:  cfg.SiteLink,
			Items: cfg.RSSItems,
		},
		log: log,
	}
}

func (w *Writer) Name() string { return "files" }

// Publish реализует usecase.Sink.
func (w *Writer) Publish(ctx context.Context, result *domain.Result) error {
	log := w.log.With(
		slog.String("component", "output"),
		slog.String("run_id", result.RunID),
	)
	if err := os.MkdirAll(filepath.Join(w.dir, ArchiveDir), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir %s: %w", w.dir, err)
	}

	latest := latestDocument{
		LastUpdated: result.FinishedAt,
		RunID:       result.RunID,
		TotalCount:  len(result.Articles),
		Stats: summaryStats{
			RSSArticles:   result.Stats.RSSArticles,
			APIArticles:   result.Stats.APIArticles,
			ImportantNews: result.Stats.Important,
			Categories:    result.Stats.BySource,
		},
		News: nonNil(result.Articles),
	}
	important := domain.FilterAtLeast(result.Articles, w.importantThreshold)
	archiveName := filepath.Join(ArchiveDir, "news-"+result.FinishedAt.UTC().Format("2006-01-02")+".json")

	writes := []struct {
		name string
		v    any
	}{
		{LatestFile, latest},
		{ImportantFile, importantDocument{
			LastUpdated: result.FinishedAt,
			Threshold:   w.importantThreshold,
			TotalCount:  len(important),
			News:        important,
		}},
		{NewsFile, nonNil(result.Articles)},
		{archiveName, result},
	}
	for _, wr := range writes {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := json.MarshalIndent(wr.v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", wr.name, err)
		}
		if err := writeAtomic(filepath.Join(w.dir, wr.name), data); err != nil {
			return err
		}
	}

	feed, err := BuildFeed(result, w.feed)
	if err != nil {
		return err
	}
	if err := writeAtomic(filepath.Join(w.dir, FeedFile), feed); err != nil {
		return err
	}

	log.Info("Artifacts written",
		slog.String("dir", w.dir),
		slog.Int("articles", len(result.Articles)),
		slog.Int("important", len(important)),
	)
	return nil
}

func nonNil(articles []domain.Article) []domain.Article {
	if articles == nil {
		return []domain.Article{}
	}
	return articles
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
