package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adda-Baaj/arogya-feed/internal/api"
	"github.com/Adda-Baaj/arogya-feed/internal/auth"
	"github.com/Adda-Baaj/arogya-feed/internal/crawler"
	"github.com/Adda-Baaj/arogya-feed/internal/domain"
	"github.com/Adda-Baaj/arogya-feed/internal/home"
	"github.com/Adda-Baaj/arogya-feed/internal/store"
	"github.com/Adda-Baaj/arogya-feed/pkg/httpclient"
	"github.com/Adda-Baaj/arogya-feed/pkg/publishers"
	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the page data API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer rt.close()

			ctx, stop := signal.NotifyContext(contextFor(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, rt)
		},
	}
}

func serve(ctx context.Context, rt *runtime) error {
	cfg := rt.cfg

	docs, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer docs.Close()

	fanout, err := publishers.LoadFanout(ctx, cfg.Publishers.File, nil, rt.log)
	if err != nil {
		return err
	}

	tokens, err := auth.NewTokens(cfg.Auth.Tokens)
	if err != nil {
		return err
	}
	stopAuthLog := tokens.Changes().Subscribe(func(id *domain.Identity) {
		fields := map[string]any{"tokens": tokens.Len(), "signed_in": id != nil}
		if id != nil {
			fields["uid"] = id.UID
		}
		rt.log.InfoObj("auth state changed", "auth_state", fields)
	})
	defer stopAuthLog()
	if tokens.Len() == 0 {
		rt.log.WarnObj("no auth tokens configured; signed-in routes will reject every caller", "config_warning", nil)
	}

	var enricher home.Enricher
	if cfg.Crawler.Enabled {
		enricher = crawler.NewScraper(newPageClient(), rt.log, crawler.Options{Delay: cfg.Crawler.Delay})
	}
	pages := home.NewService(rt.fetcher, cfg.Feeds, docs, enricher, rt.log)

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.Deps{
		Pages:      pages,
		Documents:  docs,
		Verifier:   tokens,
		Publishers: fanout,
		Log:        rt.log,
		RateRPS:    cfg.RateLimit.RPS,
		RateBurst:  cfg.RateLimit.Burst,
	})
	return api.NewServer(cfg.HTTP.Addr, router, cfg.HTTP.ShutdownTimeout, rt.log).Run(ctx)
}

// newPageClient fetches article pages for the crawler. Pages are HTML,
// and one slow publisher must not hold a home load for long.
func newPageClient() httpclient.Client {
	r := resty.New().
		SetTimeout(10*time.Second).
		SetRetryCount(0).
		SetHeader("Accept", "text/html,application/xhtml+xml").
		SetHeader("User-Agent", "arogya-feed/1.0 (+https://github.com/Adda-Baaj/arogya-feed)").
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	return httpclient.NewFromResty(r)
}
