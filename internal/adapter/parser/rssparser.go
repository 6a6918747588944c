package parser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"ainews/internal/domain"
	"ainews/internal/normalize"

	"github.com/mmcdole/gofeed"
)

// DefaultMaxFeedItems - сколько статей берется из одной ленты.
const DefaultMaxFeedItems = 5

// RSSParser разбирает RSS- и Atom-ленты в статьи.
// Элементы без заголовка или ссылки и с коротким заголовком пропускаются,
// остальные элементы ленты при этом сохраняются.
type RSSParser struct {
	log      *slog.Logger
	maxItems int
	now      func() time.Time
}

func NewRSSParser(log *slog.Logger, maxItems int) *RSSParser {
	if maxItems <= 0 {
		maxItems = DefaultMaxFeedItems
	}
	return &RSSParser{
		log:      log,
		maxItems: maxItems,
		now:      time.Now,
	}
}

// Parse реализует метод интерфейса usecase.Parser.
func (p *RSSParser) Parse(ctx context.Context, payload []byte, src domain.Source) ([]domain.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(payload))
	if err != nil {
		return nil, &domain.ParseError{Source: src.Name, Err: fmt.Errorf("failed to decode feed: %w", err)}
	}

	log := p.log.With(slog.String("component", "rss-parser"), slog.String("source", src.Name))
	source := feedSourceName(src, feed)
	collected := p.now()
	articles := make([]domain.Article, 0, p.maxItems)
	for _, item := range feed.Items {
		if len(articles) >= p.maxItems {
			break
		}
		if item == nil {
			continue
		}
		description := item.Description
		if description == "" {
			description = item.Content
		}
		published := item.Published
		if published == "" {
			published = item.Updated
		}
		article, ok := buildArticle(rawItem{
			Title:       item.Title,
			Link:        item.Link,
			Description: description,
			PublishedAt: published,
			Source:      source,
		}, domain.OriginRSS, collected)
		if !ok {
			log.Debug("Skipping feed item", slog.String("item_title", item.Title), slog.String("item_link", item.Link))
			continue
		}
		articles = append(articles, article)
	}
	return articles, nil
}

// feedSourceName выбирает имя источника: из конфигурации, из заголовка ленты или по домену.
func feedSourceName(src domain.Source, feed *gofeed.Feed) string {
	if src.Name != "" {
		return src.Name
	}
	if title := normalize.Text(feed.Title); title != "" {
		return title
	}
	return hostName(src.URL)
}
