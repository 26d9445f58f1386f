package home

import (
	"context"
	"fmt"

	"github.com/Adda-Baaj/arogya-feed/internal/domain"
	"github.com/Adda-Baaj/arogya-feed/internal/logger"
	"github.com/Adda-Baaj/arogya-feed/pkg/feed"
	"golang.org/x/sync/errgroup"
)

const testimonialCap = 4

// fallbackTestimonials are shown when the store has none or cannot be read.
var fallbackTestimonials = []domain.Testimonial{
	{ID: "fallback-1", Name: "Alex", Message: "This platform helped me detect early signs. A real life saver."},
	{ID: "fallback-2", Name: "Maria", Message: "The dashboard is clean, simple, and extremely informative."},
}

// TestimonialReader is the read half of the document store.
type TestimonialReader interface {
	ListTestimonials(ctx context.Context) ([]domain.Testimonial, error)
}

// Enricher backfills display fields on already-selected articles.
type Enricher interface {
	Enrich(ctx context.Context, articles []domain.Article) []domain.Article
}

// NewsSection is the news part of a page.
type NewsSection struct {
	Profile string `json:"profile"`
	feed.Outcome
	Error string `json:"error,omitempty"`
}

// TestimonialSection is the testimonials part of the home page.
type TestimonialSection struct {
	Items    []domain.Testimonial `json:"items"`
	Fallback bool                 `json:"fallback"`
}

// HomeView is the data behind the signed-in home page.
type HomeView struct {
	News         NewsSection        `json:"news"`
	Testimonials TestimonialSection `json:"testimonials"`
}

// WelcomeView is the data behind the signed-out landing page.
type WelcomeView struct {
	News NewsSection `json:"news"`
}

// Service assembles page data from the feed fetcher and document store.
type Service struct {
	fetcher  *feed.Fetcher
	profiles feed.Profiles
	reader   TestimonialReader
	enricher Enricher
	log      logger.Logger
}

// NewService wires the page assembler. enricher may be nil.
func NewService(fetcher *feed.Fetcher, profiles feed.Profiles, reader TestimonialReader, enricher Enricher, log logger.Logger) *Service {
	return &Service{
		fetcher:  fetcher,
		profiles: profiles,
		reader:   reader,
		enricher: enricher,
		log:      logger.Ensure(log),
	}
}

// Home loads the home feed and testimonials concurrently. Neither read
// can fail the other; failures surface inside the view.
func (s *Service) Home(ctx context.Context) HomeView {
	var view HomeView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		view.News = s.News(gctx, feed.ProfileHome)
		return nil
	})
	g.Go(func() error {
		view.Testimonials = s.testimonials(gctx)
		return nil
	})
	_ = g.Wait()
	return view
}

// Welcome loads the landing page feed.
func (s *Service) Welcome(ctx context.Context) WelcomeView {
	return WelcomeView{News: s.News(ctx, feed.ProfileWelcome)}
}

// News starts one feed load for the named profile and waits for it to
// leave the loading state. Abandoning the wait reports a failed section.
func (s *Service) News(ctx context.Context, profile string) NewsSection {
	p, err := s.profiles.Lookup(profile)
	if err != nil {
		err = fmt.Errorf("%w: %w", feed.ErrInvalidRequest, err)
		return NewsSection{Profile: profile, Outcome: feed.Outcome{State: feed.StateFailed, Err: err}, Error: err.Error()}
	}

	out, err := s.fetcher.Start(ctx, p.Request()).Wait(ctx)
	if err != nil {
		out = feed.Outcome{State: feed.StateFailed, Err: fmt.Errorf("%w: %w", feed.ErrNetwork, err)}
	}
	section := NewsSection{Profile: p.Name, Outcome: out}
	switch {
	case out.State == feed.StateFailed:
		section.Error = out.Err.Error()
	case s.enricher != nil && len(out.Articles) > 0:
		section.Articles = s.enricher.Enrich(ctx, out.Articles)
	}
	return section
}

func (s *Service) testimonials(ctx context.Context) TestimonialSection {
	if s.reader == nil {
		return TestimonialSection{Items: fallback(), Fallback: true}
	}
	items, err := s.reader.ListTestimonials(ctx)
	if err != nil {
		s.log.WarnObj("testimonials read failed", "testimonials_error", map[string]any{
			"error": err.Error(),
		})
		return TestimonialSection{Items: fallback(), Fallback: true}
	}
	if len(items) == 0 {
		return TestimonialSection{Items: fallback(), Fallback: true}
	}
	if len(items) > testimonialCap {
		items = items[:testimonialCap]
	}
	return TestimonialSection{Items: items}
}

func fallback() []domain.Testimonial {
	out := make([]domain.Testimonial, len(fallbackTestimonials))
	copy(out, fallbackTestimonials)
	return out
}
