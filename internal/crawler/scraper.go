package crawler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Adda-Baaj/arogya-feed/internal/domain"
	"github.com/Adda-Baaj/arogya-feed/internal/logger"
	"github.com/Adda-Baaj/arogya-feed/pkg/httpclient"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxHTMLBodyBytes  = 1 << 20 // 1 MiB
	maxArticleWorkers = 4
)

// Options tune the backfill scraper.
type Options struct {
	// Delay spaces out page requests across all workers. Zero means no delay.
	Delay   time.Duration
	Headers map[string]string
}

// Scraper backfills missing article images and descriptions from page metadata.
type Scraper struct {
	client httpclient.Client
	log    logger.Logger
	opts   Options
}

// NewScraper creates a new Scraper with the given HTTP client and logger.
func NewScraper(client httpclient.Client, log logger.Logger, opts Options) *Scraper {
	if client == nil {
		client = httpclient.NewRestyClient(10 * time.Second)
	}
	return &Scraper{client: client, log: logger.Ensure(log), opts: opts}
}

// Enrich fills empty ImageURL and Description fields by scraping each
// article page. Order and length are preserved; articles that already
// have both fields, or whose page fails, are returned unchanged.
func (s *Scraper) Enrich(ctx context.Context, articles []domain.Article) []domain.Article {
	out := make([]domain.Article, len(articles))
	copy(out, articles) // default to originals so partial results are returned on cancel

	var pending []int
	for i, a := range articles {
		if needsBackfill(a) {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return out
	}

	workerCount := min(len(pending), maxArticleWorkers)

	var limiter <-chan time.Time
	if s.opts.Delay > 0 {
		ticker := time.NewTicker(s.opts.Delay)
		limiter = ticker.C
		defer ticker.Stop()
	}

	jobCh := make(chan int)
	var wg sync.WaitGroup

	for workerID := range workerCount {
		wg.Add(1)
		go s.articleWorker(ctx, articles, limiter, jobCh, out, &wg, workerID)
	}

	for _, idx := range pending {
		if ctx.Err() != nil {
			break
		}
		jobCh <- idx
	}
	close(jobCh)

	wg.Wait()

	return out
}

func needsBackfill(a domain.Article) bool {
	return strings.TrimSpace(a.URL) != "" && (a.ImageURL == "" || a.Description == "")
}

// articleWorker processes articles from the job channel, respecting the rate limiter.
func (s *Scraper) articleWorker(
	ctx context.Context,
	articles []domain.Article,
	limiter <-chan time.Time,
	jobCh <-chan int,
	out []domain.Article,
	wg *sync.WaitGroup,
	workerID int,
) {
	defer wg.Done()

	for idx := range jobCh {
		if ctx.Err() != nil {
			continue
		}

		if limiter != nil {
			select {
			case <-ctx.Done():
				continue
			case <-limiter:
			}
		}

		art := articles[idx]
		enriched, err := s.fetchAndParse(ctx, art, workerID)
		if err != nil {
			s.log.WarnObj("article metadata scrape failed", "metadata_error", map[string]any{
				"worker_id": workerID,
				"url":       art.URL,
				"error":     err.Error(),
			})
			continue
		}
		out[idx] = enriched
	}
}

// fetchAndParse fetches the article HTML and fills its blank fields from page metadata.
func (s *Scraper) fetchAndParse(ctx context.Context, art domain.Article, workerID int) (domain.Article, error) {
	s.log.DebugObj("scraping article metadata", "scrape_start", map[string]any{
		"worker_id": workerID,
		"url":       art.URL,
	})

	resp, err := s.client.Get(ctx, art.URL, s.opts.Headers)
	if err != nil {
		return art, fmt.Errorf("http fetch: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		snippet := strings.TrimSpace(string(resp.Body()))
		if len(snippet) > 1024 {
			snippet = snippet[:1024]
		}
		return art, fmt.Errorf("status %d body: %s", resp.StatusCode(), snippet)
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	meta, err := parseMeta(body)
	if err != nil {
		return art, err
	}
	updated := art
	if updated.Description == "" {
		updated.Description = meta.Description
	}
	if updated.ImageURL == "" && meta.ImageURL != "" {
		updated.ImageURL = resolveURL(meta.ImageURL, art.URL)
	}

	return updated, nil
}

// parseMeta extracts page metadata from the HTML body.
func parseMeta(body []byte) (pageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pageMeta{}, fmt.Errorf("parse html: %w", err)
	}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	return pageMeta{
		Description: firstNonEmpty(
			extract(`meta[property="og:description"]`),
			extract(`meta[name="description"]`),
			extract(`meta[name="twitter:description"]`),
		),
		ImageURL: firstNonEmpty(
			extract(`meta[property="og:image"]`),
			extract(`meta[name="twitter:image"]`),
		),
	}, nil
}

type pageMeta struct {
	Description string
	ImageURL    string
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// resolveURL resolves a possibly relative URL against a base URL.
func resolveURL(raw, base string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if parsed.IsAbs() {
		return parsed.String()
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return raw
	}

	return baseURL.ResolveReference(parsed).String()
}
