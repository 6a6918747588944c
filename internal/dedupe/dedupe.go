package dedupe

import (
	"strings"

	"ainews/internal/domain"
)

// KeyLength - длина префикса заголовка (в рунах), по которому статьи считаются одинаковыми.
const KeyLength = 50

// Key возвращает ключ дедупликации: заголовок в нижнем регистре, обрезанный до KeyLength рун.
func Key(title string) string {
	lower := []rune(strings.ToLower(title))
	if len(lower) > KeyLength {
		lower = lower[:KeyLength]
	}
	return string(lower)
}

// Unique удаляет статьи с повторяющимся ключом, оставляя первое вхождение.
// Источник и URL при сравнении не учитываются.
func Unique(articles []domain.Article) []domain.Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		key := Key(a.Title)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}
