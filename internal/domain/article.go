package domain

import "time"

// OriginType указывает механизм, через который статья попала в конвейер.
// Используется только для статистики, на оценку важности не влияет.
type OriginType string

const (
	OriginRSS OriginType = "rss"
	OriginAPI OriginType = "api"
)

const (
	MinImportance = 1
	MaxImportance = 10
)

// Article представляет нормализованную новость, полученную из одного источника.
// Значение неизменяемо: оценка важности возвращает новую копию через WithImportance.
type Article struct {
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Description string     `json:"description"`
	PublishedAt string     `json:"publishedAt"`
	Source      string     `json:"source"`
	Type        OriginType `json:"type"`
	Collected   time.Time  `json:"collected"`
	Importance  int        `json:"importance"`
}

// WithImportance возвращает копию статьи с проставленной важностью.
func (a Article) WithImportance(score int) Article {
	a.Importance = score
	return a
}

// SourceKind определяет, каким парсером обрабатывается ответ источника.
type SourceKind string

const (
	SourceRSS SourceKind = "rss"
	SourceAPI SourceKind = "api"
)

// Source описывает один запрос к внешнему источнику: RSS-ленту или поисковый запрос к API.
type Source struct {
	Name    string
	URL     string
	Kind    SourceKind
	Query   string
	Headers map[string]string
}
