package domain

import "time"

// SourceFailure фиксирует источник, пропущенный в ходе прогона, и причину пропуска.
type SourceFailure struct {
	Source  string `json:"source"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Stats содержит агрегированную статистику одного прогона конвейера.
type Stats struct {
	RSSArticles        int             `json:"rssArticles"`
	APIArticles        int             `json:"apiArticles"`
	Collected          int             `json:"collected"`
	Unique             int             `json:"unique"`
	Ranked             int             `json:"ranked"`
	Important          int             `json:"importantNews"`
	ImportantThreshold int             `json:"importantThreshold"`
	BySource           map[string]int  `json:"categories"`
	SourcesOK          int             `json:"sourcesOk"`
	SourcesFailed      int             `json:"sourcesFailed"`
	Failures           []SourceFailure `json:"failures,omitempty"`
}

// Result - итог одного прогона: ранжированный список статей и статистика.
type Result struct {
	RunID      string    `json:"runId"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Articles   []Article `json:"news"`
	Stats      Stats     `json:"stats"`
}

// CountAtLeast возвращает количество статей с важностью не ниже threshold.
func CountAtLeast(articles []Article, threshold int) int {
	n := 0
	for _, a := range articles {
		if a.Importance >= threshold {
			n++
		}
	}
	return n
}

// FilterAtLeast возвращает статьи с важностью не ниже threshold, сохраняя порядок.
func FilterAtLeast(articles []Article, threshold int) []Article {
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		if a.Importance >= threshold {
			out = append(out, a)
		}
	}
	return out
}
