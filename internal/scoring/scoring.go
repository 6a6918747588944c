package scoring

import (
	"strings"
	"time"

	"ainews/internal/domain"

	"github.com/araddon/dateparse"
)

const (
	BaseScore = 5

	freshWindow  = 6 * time.Hour
	recentWindow = 24 * time.Hour
	freshBonus   = 2
	recentBonus  = 1
)

// Breakdown показывает вклад каждой составляющей в итоговую оценку.
type Breakdown struct {
	Base     int
	Keywords int
	Recency  int
	Matched  []string
	Final    int
}

// Scorer вычисляет важность статьи по таблице ключевых слов и свежести публикации.
type Scorer struct {
	table Table
	now   func() time.Time
}

func New(table Table) *Scorer {
	return &Scorer{table: table, now: time.Now}
}

// WithClock возвращает копию Scorer с подменой текущего времени.
func (s *Scorer) WithClock(now func() time.Time) *Scorer {
	cp := *s
	cp.now = now
	return &cp
}

// Score возвращает важность статьи в диапазоне [1,10].
func (s *Scorer) Score(a domain.Article) int {
	return s.Breakdown(a).Final
}

// Apply возвращает копию статьи с проставленной важностью.
func (s *Scorer) Apply(a domain.Article) domain.Article {
	return a.WithImportance(s.Score(a))
}

func (s *Scorer) Breakdown(a domain.Article) Breakdown {
	b := Breakdown{Base: BaseScore}
	// перевод строки не входит ни в одно ключевое слово, совпадение через границу полей невозможно
	text := strings.ToLower(a.Title + "\n" + a.Description)
	for _, e := range s.table.entries {
		if strings.Contains(text, e.Keyword) {
			b.Keywords += e.Weight
			b.Matched = append(b.Matched, e.Keyword)
		}
	}
	if published, ok := ParsePublished(a.PublishedAt); ok {
		b.Recency = recencyBonus(s.now().Sub(published))
	}
	b.Final = Clamp(b.Base + b.Keywords + b.Recency)
	return b
}

func recencyBonus(age time.Duration) int {
	switch {
	case age < freshWindow:
		return freshBonus
	case age < recentWindow:
		return recentBonus
	default:
		return 0
	}
}

// ParsePublished разбирает дату публикации в любом распространенном формате.
func ParsePublished(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func Clamp(score int) int {
	if score < domain.MinImportance {
		return domain.MinImportance
	}
	if score > domain.MaxImportance {
		return domain.MaxImportance
	}
	return score
}
