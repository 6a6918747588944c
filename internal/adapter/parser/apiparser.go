package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"ainews/internal/domain"
)

// DefaultMaxQueryItems - сколько статей берется из ответа на один поисковый запрос.
const DefaultMaxQueryItems = 6

type apiResponse struct {
	Status   string       `json:"status"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Articles []apiArticle `json:"articles"`
}

type apiArticle struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	PublishedAt string    `json:"publishedAt"`
	Source      apiSource `json:"source"`
}

type apiSource struct {
	Name string `json:"name"`
}

// APIParser разбирает JSON-ответ поискового API новостей.
// Отсутствующие поля становятся пустыми строками.
type APIParser struct {
	log      *slog.Logger
	maxItems int
	now      func() time.Time
}

func NewAPIParser(log *slog.Logger, maxItems int) *APIParser {
	if maxItems <= 0 {
		maxItems = DefaultMaxQueryItems
	}
	return &APIParser{
		log:      log,
		maxItems: maxItems,
		now:      time.Now,
	}
}

func (p *APIParser) Parse(ctx context.Context, payload []byte, src domain.Source) ([]domain.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var resp apiResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, &domain.ParseError{Source: src.Name, Err: fmt.Errorf("failed to decode JSON: %w", err)}
	}
	if resp.Status == "error" {
		return nil, &domain.ParseError{Source: src.Name, Err: fmt.Errorf("api error %s: %s", resp.Code, resp.Message)}
	}

	log := p.log.With(slog.String("component", "api-parser"), slog.String("source", src.Name))
	collected := p.now()
	articles := make([]domain.Article, 0, p.maxItems)
	for _, entry := range resp.Articles {
		if len(articles) >= p.maxItems {
			break
		}
		source := entry.Source.Name
		if source == "" {
			source = src.Name
		}
		article, ok := buildArticle(rawItem{
			Title:       entry.Title,
			Link:        entry.URL,
			Description: entry.Description,
			PublishedAt: entry.PublishedAt,
			Source:      source,
		}, domain.OriginAPI, collected)
		if !ok {
			log.Debug("Skipping api entry", slog.String("item_title", entry.Title))
			continue
		}
		articles = append(articles, article)
	}
	return articles, nil
}
