// Package themealdb implements the TheMealDB catalog source.
package themealdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/recipe-ingest/internal/cache"
	"github.com/jonathan/recipe-ingest/internal/fetch"
	"github.com/jonathan/recipe-ingest/internal/ratelimit"
	"github.com/jonathan/recipe-ingest/internal/retry"
	"github.com/jonathan/recipe-ingest/internal/sources"
	"github.com/jonathan/recipe-ingest/internal/types"
)

const (
	// SourceName is stored as external_source on every record from this catalog.
	SourceName = "themealdb"
	// DefaultBaseURL is the public v1 API with the free test key.
	DefaultBaseURL = "https://www.themealdb.com/api/json/v1/1"
	// DefaultLimit is the record count used when the caller does not pick one.
	DefaultLimit = 100
	// DefaultInterval spaces consecutive catalog calls.
	DefaultInterval = 100 * time.Millisecond
	// DefaultCacheTTL bounds how long a lookup response is reused.
	DefaultCacheTTL = 24 * time.Hour

	// maxRandomTopUp caps random calls per fetch.
	maxRandomTopUp = 50
)

// Categories are the high-yield categories enumerated in order.
var Categories = []string{
	"Chicken", "Beef", "Pork", "Seafood", "Vegetarian",
	"Pasta", "Side", "Dessert", "Breakfast",
}

// Info describes this source for the registry.
var Info = sources.Info{
	Name:           SourceName,
	Description:    "TheMealDB - Free recipe database with international cuisines",
	APIKeyRequired: false,
	DefaultLimit:   DefaultLimit,
}

// Config configures a Client. Zero values fall back to defaults.
type Config struct {
	BaseURL     string
	HTTP        *fetch.Options
	Limiter     ratelimit.Limiter
	Cache       cache.Cache
	CacheTTL    time.Duration
	Concurrency int
	Retry       *retry.Config
	Logger      zerolog.Logger
}

// Client fetches and normalizes TheMealDB meals.
type Client struct {
	baseURL     string
	http        *fetch.Client
	limiter     ratelimit.Limiter
	cache       cache.Cache
	cacheTTL    time.Duration
	concurrency int
	retry       retry.Config
	logger      zerolog.Logger
}

var _ sources.Source = (*Client)(nil)

// New creates a client.
func New(cfg Config) *Client {
	c := &Client{
		baseURL:     cfg.BaseURL,
		http:        fetch.NewClient(cfg.HTTP),
		limiter:     cfg.Limiter,
		cache:       cfg.Cache,
		cacheTTL:    cfg.CacheTTL,
		concurrency: cfg.Concurrency,
		retry:       retry.DefaultConfig(),
		logger:      cfg.Logger.With().Str("source", SourceName).Logger(),
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.limiter == nil {
		c.limiter = ratelimit.Every(DefaultInterval, ratelimit.RealClock)
	}
	if c.cache == nil {
		c.cache = cache.Nop{}
	}
	if c.cacheTTL <= 0 {
		c.cacheTTL = DefaultCacheTTL
	}
	if c.concurrency < 1 {
		c.concurrency = 1
	}
	if cfg.Retry != nil {
		c.retry = *cfg.Retry
	}
	return c
}

// Name implements sources.Source.
func (c *Client) Name() string {
	return SourceName
}

// Normalize implements sources.Source.
func (c *Client) Normalize(raw types.RawRecord) *types.Recipe {
	return Normalize(raw)
}

// Fetch enumerates Categories until limit records are gathered, tops up with
// random meals, then deduplicates by idMeal and truncates to limit.
func (c *Client) Fetch(ctx context.Context, limit int) ([]types.RawRecord, error) {
	var all []types.RawRecord

	for _, category := range Categories {
		if limit > 0 && len(all) >= limit {
			break
		}

		records, err := c.fetchCategory(ctx, category)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)

		c.logger.Info().
			Str("category", category).
			Int("fetched", len(records)).
			Int("total", len(all)).
			Msg("category fetched")
	}

	if limit > 0 && len(all) < limit {
		records, err := c.fetchRandom(ctx, min(limit-len(all), maxRandomTopUp))
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}

	unique := dedupe(all)
	if limit > 0 && len(unique) > limit {
		unique = unique[:limit]
	}

	c.logger.Info().
		Int("raw", len(all)).
		Int("unique", len(unique)).
		Msg("fetch complete")

	return unique, nil
}

func (c *Client) fetchCategory(ctx context.Context, category string) ([]types.RawRecord, error) {
	listURL := c.baseURL + "/filter.php?c=" + url.QueryEscape(category)

	listing, err := c.getMeals(ctx, "category", listURL)
	if err != nil {
		return nil, c.skipTransient(err)
	}
	if len(listing) == 0 {
		c.logger.Warn().Str("category", category).Msg("no meals found in category")
		return nil, nil
	}

	results := make([]types.RawRecord, len(listing))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, entry := range listing {
		id := entry.Get("idMeal")
		if id == "" {
			continue
		}
		g.Go(func() error {
			record, err := c.lookup(gctx, id)
			if err != nil {
				return c.skipTransient(err)
			}
			results[i] = record
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]types.RawRecord, 0, len(results))
	for _, r := range results {
		if r != nil {
			records = append(records, r)
		}
	}
	return records, nil
}

func (c *Client) lookup(ctx context.Context, id string) (types.RawRecord, error) {
	key := SourceName + ":lookup:" + id

	if cached, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if ok {
		var record types.RawRecord
		if err := json.Unmarshal(cached, &record); err == nil {
			return record, nil
		}
	}

	lookupURL := c.baseURL + "/lookup.php?i=" + url.QueryEscape(id)
	meals, err := c.getMeals(ctx, "lookup", lookupURL)
	if err != nil {
		return nil, err
	}
	if len(meals) == 0 {
		return nil, nil
	}

	record := meals[0]
	if data, err := json.Marshal(record); err == nil {
		if err := c.cache.Set(ctx, key, data, c.cacheTTL); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return record, nil
}

func (c *Client) fetchRandom(ctx context.Context, count int) ([]types.RawRecord, error) {
	c.logger.Info().Int("count", count).Msg("fetching random meals")

	var records []types.RawRecord
	for i := 0; i < count; i++ {
		meals, err := c.getMeals(ctx, "random", c.baseURL+"/random.php")
		if err != nil {
			if err := c.skipTransient(err); err != nil {
				return nil, err
			}
			continue
		}
		if len(meals) > 0 {
			records = append(records, meals[0])
		}
	}
	return records, nil
}

// getMeals performs one rate-limited call and decodes the meals envelope.
// Connection failures are retried; the returned error is a
// *sources.FatalFetchError or a *sources.TransientFetchError.
func (c *Client) getMeals(ctx context.Context, op, callURL string) ([]types.RawRecord, error) {
	var env envelope

	err := retry.Do(ctx, c.retry, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		env = envelope{}
		return c.http.GetJSON(ctx, callURL, &env)
	}, fetch.IsConnectionError, func(attempt int, err error, next time.Duration) {
		c.logger.Warn().
			Err(err).
			Str("url", callURL).
			Int("attempt", attempt).
			Dur("retry_in", next).
			Msg("catalog unreachable, retrying")
	})

	switch {
	case err == nil:
		return env.records(), nil
	case ctx.Err() != nil:
		return nil, &sources.FatalFetchError{URL: callURL, Cause: ctx.Err()}
	case fetch.IsConnectionError(err):
		return nil, &sources.FatalFetchError{URL: callURL, Cause: err}
	default:
		return nil, &sources.TransientFetchError{Op: op, URL: callURL, Cause: err}
	}
}

// skipTransient logs and swallows transient errors and passes fatal ones on.
func (c *Client) skipTransient(err error) error {
	var transient *sources.TransientFetchError
	if errors.As(err, &transient) {
		c.logger.Error().Err(transient.Cause).Str("op", transient.Op).Str("url", transient.URL).Msg("catalog call failed, skipping")
		return nil
	}
	return err
}

// envelope is the {"meals": [...]} wrapper of every endpoint. Null meals
// means no results.
type envelope struct {
	Meals []map[string]any `json:"meals"`
}

func (e envelope) records() []types.RawRecord {
	records := make([]types.RawRecord, 0, len(e.Meals))
	for _, meal := range e.Meals {
		record := make(types.RawRecord, len(meal))
		for k, v := range meal {
			switch val := v.(type) {
			case nil:
			case string:
				record[k] = val
			case float64:
				record[k] = strconv.FormatFloat(val, 'f', -1, 64)
			default:
				record[k] = fmt.Sprint(val)
			}
		}
		records = append(records, record)
	}
	return records
}

func dedupe(records []types.RawRecord) []types.RawRecord {
	seen := make(map[string]bool, len(records))
	unique := make([]types.RawRecord, 0, len(records))
	for _, r := range records {
		id := r.Get("idMeal")
		if seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, r)
	}
	return unique
}
