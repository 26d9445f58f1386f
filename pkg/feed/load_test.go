package feed

import (
	"context"
	"testing"
	"time"

	"github.com/Adda-Baaj/arogya-feed/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type gatedSource struct {
	release  chan struct{}
	articles []domain.Article
}

func (g *gatedSource) Search(ctx context.Context, _ string, _ int) ([]domain.Article, error) {
	select {
	case <-g.release:
		return g.articles, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestLoadTransitionsLoadingToReady(t *testing.T) {
	src := &gatedSource{release: make(chan struct{}), articles: []domain.Article{{Title: "thyroid"}}}
	l := NewFetcher(src, nil).Start(context.Background(), homeRequest())

	assert.Equal(t, StateLoading, l.State())
	_, settled := l.Outcome()
	assert.False(t, settled)

	close(src.release)
	out, err := l.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateReady, out.State)
	assert.Len(t, out.Articles, 1)
	assert.Equal(t, StateReady, l.State())
}

func TestLoadCancelledContextSettlesFailed(t *testing.T) {
	src := &gatedSource{release: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	l := NewFetcher(src, nil).Start(ctx, homeRequest())
	cancel()

	select {
	case <-l.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("load did not settle after cancel")
	}
	out, ok := l.Outcome()
	require.True(t, ok)
	assert.Equal(t, StateFailed, out.State)
	assert.ErrorIs(t, out.Err, ErrNetwork)
	assert.Nil(t, out.Articles)
}

func TestLoadWaitAbandoned(t *testing.T) {
	src := &gatedSource{release: make(chan struct{})}
	l := NewFetcher(src, nil).Start(context.Background(), homeRequest())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	out, err := l.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StateLoading, out.State)

	close(src.release)
	<-l.Done()
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "failed", StateFailed.String())
	b, err := StateFailed.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "failed", string(b))
}

func TestProfilesLookup(t *testing.T) {
	p := DefaultProfiles()
	home, err := p.Lookup("")
	require.NoError(t, err)
	assert.Equal(t, "cancer OR thyroid", home.Query)
	require.NoError(t, home.Request().Validate())

	welcome, err := p.Lookup("Welcome")
	require.NoError(t, err)
	assert.Equal(t, "cancer", welcome.Query)

	_, err = p.Lookup("sports")
	assert.ErrorIs(t, err, ErrUnknownProfile)
}
