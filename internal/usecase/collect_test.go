package usecase

import (
	"context"
	"errors"
	"testing"

	"ainews/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	name      string
	err       error
	published []*domain.Result
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Publish(ctx context.Context, result *domain.Result) error {
	s.published = append(s.published, result)
	return s.err
}

func collectFixture() (*fakeFetcher, []domain.Source) {
	src := rssSource("collect")
	f := &fakeFetcher{responses: map[string]fakeResponse{
		src.URL: {body: rssFeed(item{title: "Anthropic ships a Claude update", link: "https://c/1"})},
	}}
	return f, []domain.Source{src}
}

func TestCollect_PublishesToAllSinks(t *testing.T) {
	f, sources := collectFixture()
	first, second := &recordingSink{name: "files"}, &recordingSink{name: "snapshot"}
	uc := NewCollectUseCase(newTestPipeline(f, PipelineOptions{}), sources, []Sink{first, second}, testLogger())

	result, err := uc.Collect(context.Background())

	require.NoError(t, err)
	require.Len(t, result.Articles, 1)
	require.Len(t, first.published, 1)
	require.Len(t, second.published, 1)
	assert.Same(t, result, first.published[0])
	assert.Equal(t, sources, uc.Sources())
}

func TestCollect_SinkFailureIsFatal(t *testing.T) {
	f, sources := collectFixture()
	failing := &recordingSink{name: "files", err: errors.New("disk full")}
	after := &recordingSink{name: "snapshot"}
	uc := NewCollectUseCase(newTestPipeline(f, PipelineOptions{}), sources, []Sink{failing, after}, testLogger())

	result, err := uc.Collect(context.Background())

	require.Error(t, err)
	assert.NotNil(t, result)
	var fatal *domain.FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, "publish files", fatal.Stage)
	assert.Empty(t, after.published)
}

func TestCollect_CancelledBeforeRun(t *testing.T) {
	f, sources := collectFixture()
	sink := &recordingSink{name: "files"}
	uc := NewCollectUseCase(newTestPipeline(f, PipelineOptions{}), sources, []Sink{sink}, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Collect(ctx)

	assert.True(t, domain.IsFatal(err))
	assert.Empty(t, sink.published)
}
