// Package newsapi строит запросы к поисковому API новостей по настроенным ключевым фразам.
package newsapi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"ainews/internal/config"
	"ainews/internal/domain"
)

// KeyHeader - заголовок, в котором передается ключ API. Ключ не попадает в URL и логи.
const KeyHeader = "X-Api-Key"

// MaxQueries - верхняя граница числа различных запросов за прогон.
// news_api.max_queries может только уменьшить ее.
const MaxQueries = 3

// Sources возвращает по одному источнику на каждый различный поисковый запрос,
// не больше MaxQueries. Запросы, отличающиеся только регистром или пробелами
// по краям, считаются одинаковыми; пустые пропускаются.
// Без ключа API возвращает *domain.ConfigurationError: вызывающая сторона
// продолжает сбор только по RSS.
func Sources(cfg config.NewsAPIConfig) ([]domain.Source, error) {
	if cfg.APIKey == "" {
		return nil, &domain.ConfigurationError{
			Source:  "newsapi",
			Field:   "news_api.api_key",
			Message: "api key is not set, api collection disabled",
		}
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, &domain.ConfigurationError{
			Source:  "newsapi",
			Field:   "news_api.base_url",
			Message: fmt.Sprintf("invalid base url %q", cfg.BaseURL),
		}
	}

	queries := distinctQueries(cfg.Queries, queryLimit(cfg.MaxQueries))
	sources := make([]domain.Source, 0, len(queries))
	for _, q := range queries {
		u := *base
		params := u.Query()
		params.Set("q", q)
		if cfg.Language != "" {
			params.Set("language", cfg.Language)
		}
		if cfg.SortBy != "" {
			params.Set("sortBy", cfg.SortBy)
		}
		if cfg.PageSize > 0 {
			params.Set("pageSize", strconv.Itoa(cfg.PageSize))
		}
		u.RawQuery = params.Encode()
		sources = append(sources, domain.Source{
			Name:    "NewsAPI: " + q,
			URL:     u.String(),
			Kind:    domain.SourceAPI,
			Query:   q,
			Headers: map[string]string{KeyHeader: cfg.APIKey},
		})
	}
	return sources, nil
}

func queryLimit(configured int) int {
	if configured > 0 && configured < MaxQueries {
		return configured
	}
	return MaxQueries
}

func distinctQueries(queries []string, limit int) []string {
	seen := make(map[string]bool, len(queries))
	out := make([]string, 0, limit)
	for _, q := range queries {
		if len(out) == limit {
			break
		}
		q = strings.TrimSpace(q)
		key := strings.ToLower(q)
		if q == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, q)
	}
	return out
}

// FeedSources преобразует настроенные RSS-ленты в источники конвейера.
func FeedSources(feeds []config.FeedURL) []domain.Source {
	sources := make([]domain.Source, 0, len(feeds))
	for _, f := range feeds {
		sources = append(sources, domain.Source{Name: f.Name, URL: f.URL, Kind: domain.SourceRSS})
	}
	return sources
}
