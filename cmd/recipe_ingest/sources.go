package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jonathan/recipe-ingest/internal/cache"
	"github.com/jonathan/recipe-ingest/internal/config"
	"github.com/jonathan/recipe-ingest/internal/fetch"
	"github.com/jonathan/recipe-ingest/internal/observability"
	"github.com/jonathan/recipe-ingest/internal/ratelimit"
	"github.com/jonathan/recipe-ingest/internal/retry"
	"github.com/jonathan/recipe-ingest/internal/sources"
	"github.com/jonathan/recipe-ingest/internal/sources/themealdb"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List available recipe sources",
	Args:  cobra.NoArgs,
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, _ []string) error {
	reg, err := newRegistry(cfg, logger, cache.Nop{})
	if err != nil {
		return err
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintSources(reg.List())
	return nil
}

// newRegistry registers every known source, configured from c.
func newRegistry(c *config.Config, log zerolog.Logger, catalogCache cache.Cache) (*sources.Registry, error) {
	reg := sources.NewRegistry()

	err := reg.Register(themealdb.Info, func() (sources.Source, error) {
		var limiter ratelimit.Limiter = ratelimit.Unlimited{}
		if interval := c.Catalog.RequestInterval.Std(); interval > 0 {
			limiter = ratelimit.Every(interval, ratelimit.RealClock)
		}

		httpOpts := fetch.DefaultOptions()
		httpOpts.Timeout = c.Catalog.RequestTimeout.Std()

		retryCfg := retry.DefaultConfig()
		retryCfg.MaxAttempts = c.Catalog.RetryAttempts

		return themealdb.New(themealdb.Config{
			BaseURL:     c.Catalog.BaseURL,
			HTTP:        httpOpts,
			Limiter:     limiter,
			Cache:       catalogCache,
			CacheTTL:    c.Catalog.CacheTTL.Std(),
			Concurrency: c.Catalog.Concurrency,
			Retry:       &retryCfg,
			Logger:      log,
		}), nil
	})
	if err != nil {
		return nil, err
	}

	return reg, nil
}
