package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Adda-Baaj/arogya-feed/pkg/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "https://newsapi.org", cfg.NewsAPI.Endpoint)
	assert.Equal(t, 15*time.Second, cfg.NewsAPI.Timeout)
	assert.False(t, cfg.Crawler.Enabled)

	home, err := cfg.Feeds.Lookup(feed.ProfileHome)
	require.NoError(t, err)
	assert.Equal(t, "cancer OR thyroid", home.Query)
	assert.Equal(t, 20, home.PageSize)
	assert.Equal(t, 4, home.DisplayCap)
}

func TestLoadEnvAndDotenv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("VITE_NEWS_API_KEY=from-dotenv\n"), 0o600))
	t.Setenv("AROGYA_HTTP_ADDR", ":9999")
	t.Setenv("AROGYA_CRAWLER_ENABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.HTTP.Addr)
	assert.True(t, cfg.Crawler.Enabled)
	assert.Equal(t, "from-dotenv", cfg.NewsAPI.Key)
	_ = os.Unsetenv("VITE_NEWS_API_KEY")
}

func TestLoadFileOverridesProfiles(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "arogya.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  path: /tmp/x.db
feeds:
  home:
    display_cap: 6
  research:
    query: "oncology trial"
    vocabulary: ["Oncology", "trial"]
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.Store.Path)

	home, err := cfg.Feeds.Lookup("home")
	require.NoError(t, err)
	assert.Equal(t, 6, home.DisplayCap)
	assert.Equal(t, "cancer OR thyroid", home.Query)

	research, err := cfg.Feeds.Lookup("research")
	require.NoError(t, err)
	assert.Equal(t, []string{"oncology", "trial"}, research.Vocabulary.Terms())
	assert.Equal(t, feed.DefaultPageSize, research.PageSize)
}

func TestLoadRejectsInvalidProfile(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "arogya.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feeds:\n  home:\n    display_cap: 50\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, feed.ErrInvalidRequest)
}

func TestLoadMissingFile(t *testing.T) {
	chdirTemp(t)
	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestLoadAuthTokens(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("AROGYA_TEST_ALICE_TOKEN", "alice-secret")
	path := filepath.Join(dir, "arogya.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
auth:
  tokens:
    - token: ${AROGYA_TEST_ALICE_TOKEN}
      uid: alice
      email: alice@example.com
      name: Alice
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Auth.Tokens, 1)
	g := cfg.Auth.Tokens[0]
	assert.Equal(t, "alice-secret", g.Token)
	assert.Equal(t, "alice", g.UID)
	assert.Equal(t, "Alice", g.DisplayName)
}

func TestLoadRejectsIncompleteAuthToken(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "arogya.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  tokens:\n    - token: abc\n"), 0o600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "uid is required")
}
