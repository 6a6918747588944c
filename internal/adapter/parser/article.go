package parser

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"ainews/internal/domain"
	"ainews/internal/normalize"
)

// MinTitleLength - заголовки такой длины (в рунах) и короче отбрасываются.
const MinTitleLength = 10

// rawItem - поля записи до нормализации, общие для RSS и API.
type rawItem struct {
	Title       string
	Link        string
	Description string
	PublishedAt string
	Source      string
}

// buildArticle нормализует поля записи и проверяет обязательные поля.
// Возвращает false, если заголовок или ссылка пусты либо заголовок слишком короткий.
func buildArticle(raw rawItem, origin domain.OriginType, collected time.Time) (domain.Article, bool) {
	title := normalize.Text(raw.Title)
	link := normalize.Text(raw.Link)
	if title == "" || link == "" {
		return domain.Article{}, false
	}
	if utf8.RuneCountInString(title) <= MinTitleLength {
		return domain.Article{}, false
	}
	return domain.Article{
		Title:       title,
		URL:         link,
		Description: normalize.Text(raw.Description),
		PublishedAt: normalize.Text(raw.PublishedAt),
		Source:      normalize.Text(raw.Source),
		Type:        origin,
		Collected:   collected,
	}, true
}

// hostName извлекает домен из URL как запасное имя источника.
func hostName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "Unknown"
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
