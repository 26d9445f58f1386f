package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultUserAgent = "arogya-feed/1.0 (+https://github.com/Adda-Baaj/arogya-feed)"

// Response is the subset of an HTTP response the callers inspect.
type Response interface {
	StatusCode() int
	Body() []byte
}

// Client is a minimal HTTP client abstraction so fetchers and publishers can be tested with fakes.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
	Do(ctx context.Context, method, url string, headers map[string]string, body []byte) (Response, error)
}

type restyClient struct {
	r *resty.Client
}

// NewRestyClient returns a resty backed Client with the given timeout.
// Redirects are followed; retries are disabled so each call is a single attempt.
func NewRestyClient(timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	r := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", defaultUserAgent).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	return NewFromResty(r)
}

// NewFromResty wraps a preconfigured resty client. A nil client gets resty defaults.
func NewFromResty(r *resty.Client) Client {
	if r == nil {
		r = resty.New()
	}
	return &restyClient{r: r}
}

// Get issues a GET request.
func (c *restyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	return c.Do(ctx, http.MethodGet, url, headers, nil)
}

// Do issues a request with an optional body.
func (c *restyClient) Do(ctx context.Context, method, url string, headers map[string]string, body []byte) (Response, error) {
	req := c.r.R().SetContext(ctx).SetHeaders(headers)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	return resp, nil
}
