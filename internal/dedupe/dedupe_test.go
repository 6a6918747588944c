package dedupe

import (
	"strings"
	"testing"

	"ainews/internal/domain"
	"ainews/internal/normalize"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "openai news", Key("OpenAI News"))

	long := strings.Repeat("a", 80)
	assert.Len(t, []rune(Key(long)), KeyLength)

	jp := strings.Repeat("人工知能", 20)
	assert.Equal(t, KeyLength, len([]rune(Key(jp))))
}

func TestUnique_FirstOccurrenceWins(t *testing.T) {
	articles := []domain.Article{
		{Title: "OpenAI ships a new model", URL: "https://a.example/1", Source: "A"},
		{Title: "Anthropic publishes research", URL: "https://b.example/1", Source: "B"},
		{Title: "OPENAI SHIPS A NEW MODEL", URL: "https://c.example/1", Source: "C"},
	}
	got := Unique(articles)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Source)
	assert.Equal(t, "B", got[1].Source)
}

func TestUnique_PrefixCollision(t *testing.T) {
	prefix := strings.Repeat("x", KeyLength)
	articles := []domain.Article{
		{Title: prefix + " first ending"},
		{Title: prefix + " second ending"},
		{Title: prefix[:KeyLength-1] + "y differs before the cut"},
	}
	got := Unique(articles)
	require.Len(t, got, 2)
	assert.Equal(t, articles[0].Title, got[0].Title)
	assert.Equal(t, articles[2].Title, got[1].Title)
}

func TestUnique_NeverGrowsAndPreservesOrder(t *testing.T) {
	articles := []domain.Article{
		{Title: "c title long enough"},
		{Title: "a title long enough"},
		{Title: "c title long enough"},
		{Title: "b title long enough"},
		{Title: "a title long enough"},
	}
	got := Unique(articles)
	assert.LessOrEqual(t, len(got), len(articles))
	titles := make([]string, 0, len(got))
	for _, a := range got {
		titles = append(titles, a.Title)
	}
	assert.Equal(t, []string{"c title long enough", "a title long enough", "b title long enough"}, titles)
}

func TestUnique_Empty(t *testing.T) {
	assert.Empty(t, Unique(nil))
}

func TestUnique_NormalizedEntityTitlesCollapse(t *testing.T) {
	articles := []domain.Article{
		{Title: normalize.Text("GPT&#39;s Update  "), Source: "rss"},
		{Title: normalize.Text("GPT's Update"), Source: "api"},
	}
	got := Unique(articles)
	require.Len(t, got, 1)
	assert.Equal(t, "rss", got[0].Source)
}
