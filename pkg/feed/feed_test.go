package feed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Adda-Baaj/arogya-feed/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	articles []domain.Article
	err      error
	calls    int
	gotQuery string
	gotSize  int
}

func (s *stubSource) Search(_ context.Context, query string, pageSize int) ([]domain.Article, error) {
	s.calls++
	s.gotQuery = query
	s.gotSize = pageSize
	return s.articles, s.err
}

func homeRequest() Request {
	return Request{Query: "cancer OR thyroid", PageSize: 20, DisplayCap: 4, Vocabulary: DefaultVocabulary()}
}

func titles(articles []domain.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.Title
	}
	return out
}

func TestFetchCapsAfterFiltering(t *testing.T) {
	src := &stubSource{articles: []domain.Article{
		{Title: "a", Description: "new thyroid screening"},
		{Title: "b", Description: "thyroid hormone study"},
		{Title: "c", Description: "stock markets rally"},
		{Title: "d", Description: "thyroid nodules explained"},
		{Title: "e", Description: "thyroid and pregnancy"},
		{Title: "f", Description: "thyroid diet myths"},
	}}

	out := NewFetcher(src, nil).Fetch(context.Background(), homeRequest())

	require.Equal(t, StateReady, out.State)
	require.NoError(t, out.Err)
	assert.Equal(t, []string{"a", "b", "d", "e"}, titles(out.Articles))
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, "cancer OR thyroid", src.gotQuery)
	assert.Equal(t, 20, src.gotSize)
}

func TestFetchLengthIsMinOfCapAndMatches(t *testing.T) {
	for matching := 0; matching <= 7; matching++ {
		t.Run(fmt.Sprintf("matching=%d", matching), func(t *testing.T) {
			var arts []domain.Article
			for i := 0; i < matching; i++ {
				arts = append(arts, domain.Article{Title: fmt.Sprintf("oncology %d", i)})
				arts = append(arts, domain.Article{Title: fmt.Sprintf("sports %d", i)})
			}
			out := NewFetcher(&stubSource{articles: arts}, nil).Fetch(context.Background(), homeRequest())
			require.Equal(t, StateReady, out.State)
			assert.Len(t, out.Articles, min(4, matching))
		})
	}
}

func TestFetchZeroCandidatesIsReadyEmpty(t *testing.T) {
	out := NewFetcher(&stubSource{}, nil).Fetch(context.Background(), homeRequest())
	assert.Equal(t, StateReady, out.State)
	assert.True(t, out.Empty())
	assert.NotNil(t, out.Articles)
}

func TestFetchNoRelevantCandidatesIsReadyEmpty(t *testing.T) {
	src := &stubSource{articles: []domain.Article{
		{Title: "Football final", Description: "a late goal"},
		{Title: "Elections", Content: "turnout was high"},
	}}
	out := NewFetcher(src, nil).Fetch(context.Background(), homeRequest())
	assert.Equal(t, StateReady, out.State)
	assert.True(t, out.Empty())
}

func TestFetchNetworkFailureIsFailedWithoutArticles(t *testing.T) {
	src := &stubSource{
		articles: []domain.Article{{Title: "cancer"}},
		err:      fmt.Errorf("dial tcp: %w", ErrNetwork),
	}
	out := NewFetcher(src, nil).Fetch(context.Background(), homeRequest())
	assert.Equal(t, StateFailed, out.State)
	assert.ErrorIs(t, out.Err, ErrNetwork)
	assert.Nil(t, out.Articles)
	assert.False(t, out.Empty())
}

func TestFetchUpstreamErrorKeepsClassification(t *testing.T) {
	src := &stubSource{err: fmt.Errorf("status 429: %w", ErrUpstream)}
	out := NewFetcher(src, nil).Fetch(context.Background(), homeRequest())
	assert.Equal(t, StateFailed, out.State)
	assert.ErrorIs(t, out.Err, ErrUpstream)
	assert.NotErrorIs(t, out.Err, ErrNetwork)
}

func TestFetchUnknownErrorTreatedAsNetwork(t *testing.T) {
	src := &stubSource{err: context.DeadlineExceeded}
	out := NewFetcher(src, nil).Fetch(context.Background(), homeRequest())
	assert.Equal(t, StateFailed, out.State)
	assert.ErrorIs(t, out.Err, ErrNetwork)
	assert.ErrorIs(t, out.Err, context.DeadlineExceeded)
}

func TestFetchInvalidRequestSkipsSource(t *testing.T) {
	cases := map[string]func(*Request){
		"empty query":      func(r *Request) { r.Query = "  " },
		"zero page size":   func(r *Request) { r.PageSize = 0 },
		"zero cap":         func(r *Request) { r.DisplayCap = 0 },
		"cap over page":    func(r *Request) { r.DisplayCap = 21 },
		"empty vocabulary": func(r *Request) { r.Vocabulary = Vocabulary{} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			src := &stubSource{}
			req := homeRequest()
			mutate(&req)
			out := NewFetcher(src, nil).Fetch(context.Background(), req)
			assert.Equal(t, StateFailed, out.State)
			assert.ErrorIs(t, out.Err, ErrInvalidRequest)
			assert.Zero(t, src.calls)
		})
	}
}

func TestFetchNilSource(t *testing.T) {
	out := NewFetcher(nil, nil).Fetch(context.Background(), homeRequest())
	assert.Equal(t, StateFailed, out.State)
	assert.True(t, errors.Is(out.Err, ErrInvalidRequest))
}

func TestFetchEveryCallHitsSource(t *testing.T) {
	src := &stubSource{articles: []domain.Article{{Title: "health"}}}
	f := NewFetcher(src, nil)
	f.Fetch(context.Background(), homeRequest())
	f.Fetch(context.Background(), homeRequest())
	assert.Equal(t, 2, src.calls)
}

func TestFilterPreservesUpstreamOrder(t *testing.T) {
	candidates := []domain.Article{
		{Title: "z medicine"},
		{Title: "noise"},
		{Title: "a diagnosis"},
		{Title: "m treatment"},
	}
	got := Filter(candidates, DefaultVocabulary(), 10)
	assert.Equal(t, []string{"z medicine", "a diagnosis", "m treatment"}, titles(got))
}

func TestFilterCapLargerThanMatchesDoesNotPad(t *testing.T) {
	got := Filter([]domain.Article{{Title: "cancer"}}, DefaultVocabulary(), 4)
	assert.Len(t, got, 1)
}

func TestFilterNonPositiveLimit(t *testing.T) {
	assert.Empty(t, Filter([]domain.Article{{Title: "cancer"}}, DefaultVocabulary(), 0))
}
