package newsapi

import (
	"context"
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Adda-Baaj/arogya-feed/internal/domain"
	"github.com/Adda-Baaj/arogya-feed/internal/logger"
	"github.com/Adda-Baaj/arogya-feed/pkg/feed"
	"github.com/Adda-Baaj/arogya-feed/pkg/httpclient"
)

const (
	// DefaultEndpoint is the public NewsAPI host.
	DefaultEndpoint = "https://newsapi.org"

	everythingPath = "/v2/everything"
	sortByRecency  = "publishedAt"
	statusOK       = "ok"
)

// Client searches the NewsAPI "everything" endpoint. It implements feed.Source.
type Client struct {
	client   httpclient.Client
	endpoint string
	apiKey   string
	log      logger.Logger
}

// NewClient builds a Client. An empty endpoint falls back to DefaultEndpoint.
func NewClient(client httpclient.Client, endpoint, apiKey string, log logger.Logger) *Client {
	if client == nil {
		client = httpclient.NewRestyClient(15 * time.Second)
	}
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		client:   client,
		endpoint: endpoint,
		apiKey:   strings.TrimSpace(apiKey),
		log:      logger.Ensure(log),
	}
}

// Search requests the most recent pageSize articles for query.
// Transport failures wrap feed.ErrNetwork; bad statuses and payloads wrap feed.ErrUpstream.
func (c *Client) Search(ctx context.Context, query string, pageSize int) ([]domain.Article, error) {
	reqURL := c.searchURL(query, pageSize)
	headers := map[string]string{"Accept": "application/json"}
	if c.apiKey != "" {
		headers["X-Api-Key"] = c.apiKey
	}

	resp, err := c.client.Get(ctx, reqURL, headers)
	if err != nil {
		return nil, fmt.Errorf("%w: newsapi request: %w", feed.ErrNetwork, err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: newsapi returned status %d%s body: %s",
			feed.ErrUpstream, resp.StatusCode(), apiErrorSuffix(body), responseSnippet(body))
	}

	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode newsapi response: %w", feed.ErrUpstream, err)
	}
	if !strings.EqualFold(payload.Status, statusOK) {
		return nil, fmt.Errorf("%w: newsapi status %q code %q: %s",
			feed.ErrUpstream, payload.Status, payload.Code, payload.Message)
	}

	articles := buildArticles(payload.Articles)
	c.log.DebugObj("newsapi search complete", "newsapi_search", map[string]any{
		"query":         query,
		"total_results": payload.TotalResults,
		"received":      len(articles),
	})
	return articles, nil
}

// searchURL builds the request URL. The key travels in a header, and in
// the query too so the request works against proxies that strip headers.
func (c *Client) searchURL(query string, pageSize int) string {
	q := url.Values{}
	q.Set("q", query)
	q.Set("sortBy", sortByRecency)
	q.Set("pageSize", strconv.Itoa(pageSize))
	if c.apiKey != "" {
		q.Set("apiKey", c.apiKey)
	}
	return c.endpoint + everythingPath + "?" + q.Encode()
}

type searchResponse struct {
	Status       string       `json:"status"`
	Code         string       `json:"code"`
	Message      string       `json:"message"`
	TotalResults int          `json:"totalResults"`
	Articles     []apiArticle `json:"articles"`
}

type apiArticle struct {
	Source struct {
		ID   *string `json:"id"`
		Name *string `json:"name"`
	} `json:"source"`
	Author      *string `json:"author"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	URL         *string `json:"url"`
	URLToImage  *string `json:"urlToImage"`
	PublishedAt *string `json:"publishedAt"`
	Content     *string `json:"content"`
}

func buildArticles(raw []apiArticle) []domain.Article {
	articles := make([]domain.Article, 0, len(raw))
	for _, a := range raw {
		link := str(a.URL)
		title := str(a.Title)
		idSeed := link
		if idSeed == "" {
			idSeed = title
		}
		articles = append(articles, domain.Article{
			ID:          hashURL(idSeed),
			Title:       title,
			Description: str(a.Description),
			Content:     str(a.Content),
			SourceName:  str(a.Source.Name),
			URL:         link,
			ImageURL:    str(a.URLToImage),
			PublishedAt: parsePublishedAt(str(a.PublishedAt)),
		})
	}
	return articles
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func parsePublishedAt(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return time.Time{}
}

func hashURL(u string) string {
	sum := sha1.Sum([]byte(u))
	return hex.EncodeToString(sum[:])
}

// responseSnippet returns a truncated snippet of the response body for errors and logs.
func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		return s[:cut] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}

// apiErrorSuffix extracts the NewsAPI error code from an error body, if present.
func apiErrorSuffix(body []byte) string {
	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil || payload.Code == "" {
		return ""
	}
	return fmt.Sprintf(" (%s)", payload.Code)
}
