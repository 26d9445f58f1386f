package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Adda-Baaj/arogya-feed/internal/home"
	"github.com/Adda-Baaj/arogya-feed/pkg/feed"
	"github.com/spf13/cobra"
)

var errFetchFailed = errors.New("feed fetch failed")

func newFetchCmd(opts *rootOptions) *cobra.Command {
	var profile string
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Run one feed load and print the outcome as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer rt.close()

			p, err := lookupProfile(rt.cfg, profile)
			if err != nil {
				return err
			}

			out := rt.fetcher.Fetch(contextFor(cmd), p.Request())
			res := home.NewsSection{Profile: p.Name, Outcome: out}
			if out.Err != nil {
				res.Error = out.Err.Error()
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return fmt.Errorf("encode outcome: %w", err)
			}
			// Exit non-zero only for failed loads; an empty feed is a success.
			if out.State == feed.StateFailed {
				return errFetchFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&profile, "profile", "p", feed.ProfileHome, "feed profile to load")
	return cmd
}
