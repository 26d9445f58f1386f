package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Adda-Baaj/arogya-feed/internal/auth"
	"github.com/Adda-Baaj/arogya-feed/pkg/feed"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "AROGYA"

// Config is the resolved service configuration.
type Config struct {
	Log        LogConfig
	HTTP       HTTPConfig
	NewsAPI    NewsAPIConfig
	Store      StoreConfig
	Publishers PublishersConfig
	Crawler    CrawlerConfig
	RateLimit  RateLimitConfig
	Auth       AuthConfig
	Feeds      feed.Profiles
}

type LogConfig struct {
	Level  string
	Format string
}

type HTTPConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

type NewsAPIConfig struct {
	Endpoint string
	Key      string
	Timeout  time.Duration
}

type StoreConfig struct {
	Path string
}

type PublishersConfig struct {
	File string
}

type CrawlerConfig struct {
	Enabled bool
	Delay   time.Duration
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// AuthConfig lists the bearer tokens the API accepts. Token values may
// reference environment variables as ${NAME}.
type AuthConfig struct {
	Tokens []auth.Grant
}

// Load reads .env (if present), an optional config file, and AROGYA_*
// environment variables, in increasing precedence.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The original frontend read the key from this name; keep it working.
	_ = v.BindEnv("newsapi.key", envPrefix+"_NEWSAPI_KEY", "NEWS_API_KEY", "VITE_NEWS_API_KEY")

	if configFile = strings.TrimSpace(configFile); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", "10s")
	v.SetDefault("newsapi.endpoint", "https://newsapi.org")
	v.SetDefault("newsapi.timeout", "15s")
	v.SetDefault("store.path", "arogya.db")
	v.SetDefault("publishers.file", "")
	v.SetDefault("crawler.enabled", false)
	v.SetDefault("crawler.delay", "0s")
	v.SetDefault("ratelimit.rps", 1.0)
	v.SetDefault("ratelimit.burst", 5)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		HTTP: HTTPConfig{
			Addr:            v.GetString("http.addr"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
		},
		NewsAPI: NewsAPIConfig{
			Endpoint: v.GetString("newsapi.endpoint"),
			Key:      v.GetString("newsapi.key"),
			Timeout:  v.GetDuration("newsapi.timeout"),
		},
		Store:      StoreConfig{Path: v.GetString("store.path")},
		Publishers: PublishersConfig{File: v.GetString("publishers.file")},
		Crawler: CrawlerConfig{
			Enabled: v.GetBool("crawler.enabled"),
			Delay:   v.GetDuration("crawler.delay"),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("ratelimit.rps"),
			Burst: v.GetInt("ratelimit.burst"),
		},
	}

	var grants []auth.Grant
	if err := v.UnmarshalKey("auth.tokens", &grants); err != nil {
		return nil, fmt.Errorf("decode auth.tokens: %w", err)
	}
	for i := range grants {
		grants[i].Token = os.ExpandEnv(grants[i].Token)
	}
	cfg.Auth.Tokens = grants

	profiles, err := loadProfiles(v)
	if err != nil {
		return nil, err
	}
	cfg.Feeds = profiles

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// profileFile mirrors one feeds.<name> block in a config file.
type profileFile struct {
	Query      string   `mapstructure:"query"`
	PageSize   int      `mapstructure:"page_size"`
	DisplayCap int      `mapstructure:"display_cap"`
	Vocabulary []string `mapstructure:"vocabulary"`
}

// loadProfiles starts from the built-in profiles and lets feeds.<name>
// override any field or add new profiles.
func loadProfiles(v *viper.Viper) (feed.Profiles, error) {
	profiles := feed.DefaultProfiles()

	var raw map[string]profileFile
	if err := v.UnmarshalKey("feeds", &raw); err != nil {
		return nil, fmt.Errorf("decode feeds: %w", err)
	}
	for name, pf := range raw {
		key := strings.ToLower(strings.TrimSpace(name))
		p, ok := profiles[key]
		if !ok {
			p = feed.Profile{
				Name:       key,
				PageSize:   feed.DefaultPageSize,
				DisplayCap: feed.DefaultDisplayCap,
				Vocabulary: feed.DefaultVocabulary(),
			}
		}
		if q := strings.TrimSpace(pf.Query); q != "" {
			p.Query = q
		}
		if pf.PageSize != 0 {
			p.PageSize = pf.PageSize
		}
		if pf.DisplayCap != 0 {
			p.DisplayCap = pf.DisplayCap
		}
		if len(pf.Vocabulary) > 0 {
			vocab, err := feed.NewVocabulary(pf.Vocabulary...)
			if err != nil {
				return nil, fmt.Errorf("feeds.%s.vocabulary: %w", key, err)
			}
			p.Vocabulary = vocab
		}
		profiles[key] = p
	}
	return profiles, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return errors.New("http.addr is required")
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		return errors.New("store.path is required")
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("ratelimit.rps and ratelimit.burst must be positive, got %v/%d", c.RateLimit.RPS, c.RateLimit.Burst)
	}
	if _, err := auth.NewTokens(c.Auth.Tokens); err != nil {
		return err
	}
	for name, p := range c.Feeds {
		if err := p.Request().Validate(); err != nil {
			return fmt.Errorf("feeds.%s: %w", name, err)
		}
	}
	return nil
}
