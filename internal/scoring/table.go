package scoring

import "strings"

// KeywordWeight - ключевое слово и вес, добавляемый к оценке при его вхождении.
type KeywordWeight struct {
	Keyword string
	Weight  int
}

// Table - неизменяемая таблица весов ключевых слов.
// Конструктор копирует входные данные, Entries возвращает копию.
type Table struct {
	entries []KeywordWeight
}

// NewTable создает таблицу из переданных записей. Ключевые слова приводятся к нижнему регистру,
// пустые ключевые слова отбрасываются.
func NewTable(entries []KeywordWeight) Table {
	out := make([]KeywordWeight, 0, len(entries))
	for _, e := range entries {
		kw := strings.ToLower(strings.TrimSpace(e.Keyword))
		if kw == "" {
			continue
		}
		out = append(out, KeywordWeight{Keyword: kw, Weight: e.Weight})
	}
	return Table{entries: out}
}

// DefaultTable возвращает таблицу для новостей об ИИ: продукты, компании и сигнальные слова
// на английском и японском.
func DefaultTable() Table {
	return NewTable([]KeywordWeight{
		{"gpt-4", 4},
		{"chatgpt", 3},
		{"claude", 3},
		{"gemini", 3},
		{"openai", 2},
		{"anthropic", 2},
		{"google ai", 2},
		{"breakthrough", 3},
		{"革新", 3},
		{"release", 2},
		{"発表", 2},
		{"update", 1},
		{"アップデート", 1},
		{"ai", 1},
	})
}

func (t Table) Entries() []KeywordWeight {
	out := make([]KeywordWeight, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t Table) Len() int { return len(t.entries) }
