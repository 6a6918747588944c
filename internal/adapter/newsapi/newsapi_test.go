package newsapi

import (
	"net/url"
	"strings"
	"testing"

	"ainews/internal/config"
	"ainews/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSources_BuildsQueries(t *testing.T) {
	cfg := config.New().NewsAPI
	cfg.APIKey = "secret"
	cfg.Queries = append(cfg.Queries, "extra query beyond the limit")

	sources, err := Sources(cfg)

	require.NoError(t, err)
	require.Len(t, sources, 3)
	for i, src := range sources {
		assert.Equal(t, domain.SourceAPI, src.Kind)
		assert.Equal(t, cfg.Queries[i], src.Query)
		assert.Equal(t, "secret", src.Headers[KeyHeader])
		assert.False(t, strings.Contains(src.URL, "secret"), "api key must not leak into url")

		u, err := url.Parse(src.URL)
		require.NoError(t, err)
		assert.Equal(t, cfg.Queries[i], u.Query().Get("q"))
		assert.Equal(t, "ja", u.Query().Get("language"))
		assert.Equal(t, "publishedAt", u.Query().Get("sortBy"))
		assert.Equal(t, "8", u.Query().Get("pageSize"))
	}
}

func TestSources_MissingKey(t *testing.T) {
	sources, err := Sources(config.New().NewsAPI)

	assert.Nil(t, sources)
	require.Error(t, err)
	assert.True(t, domain.IsConfiguration(err))
}

func TestSources_InvalidBaseURL(t *testing.T) {
	cfg := config.New().NewsAPI
	cfg.APIKey = "k"
	cfg.BaseURL = "not-a-url"

	_, err := Sources(cfg)
	assert.True(t, domain.IsConfiguration(err))
}

func TestFeedSources(t *testing.T) {
	sources := FeedSources(config.DefaultFeeds())

	require.Len(t, sources, 6)
	assert.Equal(t, "OpenAI Blog", sources[0].Name)
	assert.Equal(t, domain.SourceRSS, sources[0].Kind)
}

func TestSources_DistinctQueriesCappedAtThree(t *testing.T) {
	cfg := config.New().NewsAPI
	cfg.APIKey = "secret"
	cfg.MaxQueries = 10
	cfg.Queries = []string{"OpenAI", " openai ", "", "Claude", "CLAUDE", "Gemini", "Llama", "Mistral"}

	sources, err := Sources(cfg)

	require.NoError(t, err)
	var got []string
	for _, src := range sources {
		got = append(got, src.Query)
	}
	assert.Equal(t, []string{"OpenAI", "Claude", "Gemini"}, got)
}

func TestSources_ConfiguredLimitBelowCap(t *testing.T) {
	cfg := config.New().NewsAPI
	cfg.APIKey = "secret"
	cfg.MaxQueries = 2
	cfg.Queries = []string{"a", "b", "c"}

	sources, err := Sources(cfg)

	require.NoError(t, err)
	assert.Len(t, sources, 2)
}
