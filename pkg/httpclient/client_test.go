package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestyClientGetSendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		assert.Contains(t, r.Header.Get("User-Agent"), "arogya-feed")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	defer srv.Close()

	c := NewRestyClient(time.Second)
	resp, err := c.Get(context.Background(), srv.URL, map[string]string{"X-Api-Key": "secret"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode())
	assert.Equal(t, "short and stout", string(resp.Body()))
}

func TestRestyClientDoPostsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"ok":true}`, string(b))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	resp, err := NewRestyClient(0).Do(context.Background(), http.MethodPost, srv.URL,
		map[string]string{"Content-Type": "application/json"}, []byte(`{"ok":true}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode())
}

func TestRestyClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewRestyClient(time.Second).Get(context.Background(), url, nil)
	require.Error(t, err)
}

func TestNewFromRestyKeepsClientSettings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/html", r.Header.Get("Accept"))
		assert.Equal(t, "page", r.Header.Get("X-Caller"))
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	c := NewFromResty(resty.New().SetHeader("Accept", "text/html"))
	resp, err := c.Get(context.Background(), srv.URL, map[string]string{"X-Caller": "page"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	resp, err = NewFromResty(nil).Get(context.Background(), srv.URL, map[string]string{"Accept": "text/html", "X-Caller": "page"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
}
