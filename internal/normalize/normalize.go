package normalize

import (
	"strings"

	"golang.org/x/net/html"
)

// Text удаляет разметку, декодирует HTML-сущности и обрезает пробелы по краям.
// Проходы повторяются до неподвижной точки, поэтому Text(Text(s)) == Text(s)
// при любой глубине экранирования (&amp;amp;lt;b&amp;amp;gt;).
// Каждый проход, меняющий строку, уменьшает число символов '&' и '<' или ее длину,
// поэтому цикл конечен.
func Text(s string) string {
	cur := s
	for {
		next := pass(cur)
		if next == cur {
			return cur
		}
		cur = next
	}
}

func pass(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return finish(s)
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	b.Grow(len(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return finish(b.String())
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}

// &nbsp; декодируется в U+00A0, в тексте статьи нужен обычный пробел.
func finish(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
}
