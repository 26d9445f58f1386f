package home

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/Adda-Baaj/arogya-feed/internal/domain"
	"github.com/Adda-Baaj/arogya-feed/pkg/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	byQuery map[string][]domain.Article
	err     error
}

func (f *fakeSource) Search(_ context.Context, query string, _ int) ([]domain.Article, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byQuery[query], nil
}

type fakeReader struct {
	items []domain.Testimonial
	err   error
}

func (f *fakeReader) ListTestimonials(context.Context) ([]domain.Testimonial, error) {
	return f.items, f.err
}

type markEnricher struct{ calls int }

func (m *markEnricher) Enrich(_ context.Context, in []domain.Article) []domain.Article {
	m.calls++
	out := make([]domain.Article, len(in))
	for i, a := range in {
		a.ImageURL = "enriched"
		out[i] = a
	}
	return out
}

func newService(src feed.Source, reader TestimonialReader, enricher Enricher) *Service {
	return NewService(feed.NewFetcher(src, nil), feed.DefaultProfiles(), reader, enricher, nil)
}

func TestHomeCombinesNewsAndTestimonials(t *testing.T) {
	src := &fakeSource{byQuery: map[string][]domain.Article{
		"cancer OR thyroid": {{Title: "Thyroid news"}, {Title: "Cricket"}},
	}}
	var items []domain.Testimonial
	for i := range 6 {
		items = append(items, domain.Testimonial{ID: fmt.Sprint(i), Name: "n", Message: "m"})
	}
	view := newService(src, &fakeReader{items: items}, nil).Home(context.Background())

	assert.Equal(t, feed.StateReady, view.News.State)
	require.Len(t, view.News.Articles, 1)
	assert.Equal(t, "home", view.News.Profile)

	assert.False(t, view.Testimonials.Fallback)
	require.Len(t, view.Testimonials.Items, testimonialCap)
	assert.Equal(t, "0", view.Testimonials.Items[0].ID)
}

func TestHomeFeedFailureDoesNotAffectTestimonials(t *testing.T) {
	src := &fakeSource{err: fmt.Errorf("boom: %w", feed.ErrNetwork)}
	reader := &fakeReader{items: []domain.Testimonial{{ID: "t1", Name: "Sam", Message: "hi"}}}
	view := newService(src, reader, &markEnricher{}).Home(context.Background())

	assert.Equal(t, feed.StateFailed, view.News.State)
	assert.Nil(t, view.News.Articles)
	assert.Contains(t, view.News.Error, "network failure")
	require.Len(t, view.Testimonials.Items, 1)
}

func TestHomeFallbackTestimonials(t *testing.T) {
	src := &fakeSource{}
	for name, reader := range map[string]TestimonialReader{
		"empty store":  &fakeReader{},
		"store failed": &fakeReader{err: errors.New("disk")},
		"no store":     nil,
	} {
		t.Run(name, func(t *testing.T) {
			view := newService(src, reader, nil).Home(context.Background())
			assert.True(t, view.Testimonials.Fallback)
			require.Len(t, view.Testimonials.Items, 2)
			assert.Equal(t, "Alex", view.Testimonials.Items[0].Name)
			assert.True(t, view.News.Empty())
		})
	}
}

func TestWelcomeUsesWelcomeProfileAndEnricher(t *testing.T) {
	src := &fakeSource{byQuery: map[string][]domain.Article{
		"cancer": {{Title: "Cancer research"}},
	}}
	enr := &markEnricher{}
	view := newService(src, nil, enr).Welcome(context.Background())

	assert.Equal(t, "welcome", view.News.Profile)
	require.Len(t, view.News.Articles, 1)
	assert.Equal(t, "enriched", view.News.Articles[0].ImageURL)
	assert.Equal(t, 1, enr.calls)
}

func TestNewsSkipsEnricherWhenEmpty(t *testing.T) {
	enr := &markEnricher{}
	section := newService(&fakeSource{}, nil, enr).News(context.Background(), "home")
	assert.True(t, section.Empty())
	assert.Zero(t, enr.calls)
}

func TestNewsUnknownProfile(t *testing.T) {
	section := newService(&fakeSource{}, nil, nil).News(context.Background(), "sports")
	assert.Equal(t, feed.StateFailed, section.State)
	assert.ErrorIs(t, section.Err, feed.ErrInvalidRequest)
	assert.ErrorIs(t, section.Err, feed.ErrUnknownProfile)
}

type blockingSource struct{ started chan struct{} }

func (b *blockingSource) Search(ctx context.Context, _ string, _ int) ([]domain.Article, error) {
	close(b.started)
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestNewsAbandonedLoadIsFailed(t *testing.T) {
	src := &blockingSource{started: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-src.started
		cancel()
	}()

	section := newService(src, nil, nil).News(ctx, "home")
	assert.Equal(t, feed.StateFailed, section.State)
	assert.ErrorIs(t, section.Err, feed.ErrNetwork)
	assert.Nil(t, section.Articles)
	assert.NotEmpty(t, section.Error)
}

func TestNewsSectionJSON(t *testing.T) {
	section := NewsSection{Profile: "home", Outcome: feed.Outcome{State: feed.StateReady, Articles: []domain.Article{}}}
	raw, err := json.Marshal(section)
	require.NoError(t, err)
	assert.JSONEq(t, `{"profile":"home","state":"ready","articles":[]}`, string(raw))
}
