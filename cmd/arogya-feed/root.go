package main

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/Adda-Baaj/arogya-feed/internal/config"
	"github.com/Adda-Baaj/arogya-feed/internal/logger"
	"github.com/Adda-Baaj/arogya-feed/pkg/feed"
	"github.com/Adda-Baaj/arogya-feed/pkg/httpclient"
	"github.com/Adda-Baaj/arogya-feed/pkg/newsapi"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "arogya-feed",
		Short:        "Health awareness news feed and page data service",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "path to a YAML/JSON/TOML config file")

	cmd.AddCommand(newServeCmd(opts), newFetchCmd(opts))
	return cmd
}

// runtime bundles what every subcommand needs.
type runtime struct {
	cfg     *config.Config
	log     logger.Logger
	fetcher *feed.Fetcher
}

func bootstrap(opts *rootOptions) (*runtime, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, err
	}
	if cfg.NewsAPI.Key == "" {
		log.WarnObj("newsapi key is not set; feed loads will likely fail", "config_warning", nil)
	}

	client := httpclient.NewRestyClient(cfg.NewsAPI.Timeout)
	source := newsapi.NewClient(client, cfg.NewsAPI.Endpoint, cfg.NewsAPI.Key, log)
	return &runtime{cfg: cfg, log: log, fetcher: feed.NewFetcher(source, log)}, nil
}

func (r *runtime) close() {
	_ = r.log.Sync()
}

func lookupProfile(cfg *config.Config, name string) (feed.Profile, error) {
	p, err := cfg.Feeds.Lookup(name)
	if err != nil {
		return feed.Profile{}, fmt.Errorf("%w (known: %v)", err, profileNames(cfg.Feeds))
	}
	return p, nil
}

func profileNames(p feed.Profiles) []string {
	return slices.Sorted(maps.Keys(p))
}

func contextFor(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
