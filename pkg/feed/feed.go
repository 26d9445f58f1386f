package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Adda-Baaj/arogya-feed/internal/domain"
	"github.com/Adda-Baaj/arogya-feed/internal/logger"
)

var (
	// ErrNetwork marks a request that could not complete.
	ErrNetwork = errors.New("network failure")
	// ErrUpstream marks a non-success status or malformed payload.
	ErrUpstream = errors.New("upstream error")
	// ErrInvalidRequest marks a request rejected before any outbound call.
	ErrInvalidRequest = errors.New("invalid feed request")

	// ErrUnknownProfile marks a lookup of a profile name that is not configured.
	ErrUnknownProfile = errors.New("unknown feed profile")
)

// Source performs the single outbound search for candidates, most recent first.
type Source interface {
	Search(ctx context.Context, query string, pageSize int) ([]domain.Article, error)
}

// Request describes one feed load.
type Request struct {
	Query      string
	PageSize   int
	DisplayCap int
	Vocabulary Vocabulary
}

// Validate checks the request bounds.
func (r Request) Validate() error {
	switch {
	case strings.TrimSpace(r.Query) == "":
		return fmt.Errorf("%w: query is empty", ErrInvalidRequest)
	case r.PageSize <= 0:
		return fmt.Errorf("%w: page size must be positive, got %d", ErrInvalidRequest, r.PageSize)
	case r.DisplayCap <= 0:
		return fmt.Errorf("%w: display cap must be positive, got %d", ErrInvalidRequest, r.DisplayCap)
	case r.DisplayCap > r.PageSize:
		return fmt.Errorf("%w: display cap %d exceeds page size %d", ErrInvalidRequest, r.DisplayCap, r.PageSize)
	case r.Vocabulary.Len() == 0:
		return fmt.Errorf("%w: vocabulary is empty", ErrInvalidRequest)
	}
	return nil
}

// Fetcher retrieves candidates from a Source and keeps the relevant ones.
// It holds no state between calls; every Fetch performs a fresh request.
type Fetcher struct {
	source Source
	log    logger.Logger
}

// NewFetcher builds a Fetcher over the given source.
func NewFetcher(source Source, log logger.Logger) *Fetcher {
	return &Fetcher{source: source, log: logger.Ensure(log)}
}

// Fetch runs one load and reports it as a ready or failed Outcome.
// Source errors never escape as Go errors; they become a failed Outcome.
func (f *Fetcher) Fetch(ctx context.Context, req Request) Outcome {
	if err := req.Validate(); err != nil {
		return failed(err)
	}
	if f.source == nil {
		return failed(fmt.Errorf("%w: no feed source configured", ErrInvalidRequest))
	}

	f.log.DebugObj("fetching feed candidates", "feed_fetch_start", map[string]any{
		"query":     req.Query,
		"page_size": req.PageSize,
	})

	candidates, err := f.source.Search(ctx, req.Query, req.PageSize)
	if err != nil {
		err = classify(err)
		f.log.WarnObj("feed fetch failed", "feed_fetch_error", map[string]any{
			"query": req.Query,
			"error": err.Error(),
		})
		return failed(err)
	}

	articles := Filter(candidates, req.Vocabulary, req.DisplayCap)
	f.log.InfoObj("feed fetched", "feed_fetch_done", map[string]any{
		"query":      req.Query,
		"candidates": len(candidates),
		"returned":   len(articles),
	})
	return Outcome{State: StateReady, Articles: articles}
}

// Filter keeps candidates matching the vocabulary in their original order,
// then truncates to limit. The cap is applied after filtering.
func Filter(candidates []domain.Article, vocab Vocabulary, limit int) []domain.Article {
	out := make([]domain.Article, 0, min(len(candidates), max(limit, 0)))
	if len(candidates) == 0 || limit <= 0 {
		return out
	}
	for _, a := range candidates {
		if !vocab.Matches(a) {
			continue
		}
		out = append(out, a)
		if len(out) == limit {
			break
		}
	}
	return out
}

// classify keeps known sentinels and treats anything else as a request that did not complete.
func classify(err error) error {
	if errors.Is(err, ErrNetwork) || errors.Is(err, ErrUpstream) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrNetwork, err)
}
