package themealdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/recipe-ingest/internal/cache"
	"github.com/jonathan/recipe-ingest/internal/ratelimit"
	"github.com/jonathan/recipe-ingest/internal/retry"
	"github.com/jonathan/recipe-ingest/internal/sources"
)

// fakeCatalog serves filter.php, lookup.php and random.php from memory.
type fakeCatalog struct {
	mu         sync.Mutex
	categories map[string][]string
	failLookup map[string]bool
	failList   map[string]bool
	randomIDs  []string
	lookups    map[string]int
	randoms    int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		categories: map[string][]string{},
		failLookup: map[string]bool{},
		failList:   map[string]bool{},
		lookups:    map[string]int{},
	}
}

func meal(id string) map[string]any {
	return map[string]any{
		"idMeal":          id,
		"strMeal":         "Meal " + id,
		"strCategory":     "Chicken",
		"strArea":         "British",
		"strInstructions": "Cook it.",
		"strTags":         nil,
		"strIngredient1":  "chicken",
		"strMeasure1":     "1",
	}
}

func (f *fakeCatalog) handler() http.Handler {
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, meals []map[string]any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"meals": meals})
	}

	mux.HandleFunc("/filter.php", func(w http.ResponseWriter, r *http.Request) {
		c := r.URL.Query().Get("c")
		if f.failList[c] {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		ids, ok := f.categories[c]
		if !ok {
			write(w, nil)
			return
		}
		var meals []map[string]any
		for _, id := range ids {
			meals = append(meals, map[string]any{"idMeal": id, "strMeal": "Meal " + id})
		}
		write(w, meals)
	})

	mux.HandleFunc("/lookup.php", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("i")
		f.mu.Lock()
		f.lookups[id]++
		f.mu.Unlock()
		if f.failLookup[id] {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		write(w, []map[string]any{meal(id)})
	})

	mux.HandleFunc("/random.php", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		n := f.randoms
		f.randoms++
		f.mu.Unlock()
		id := fmt.Sprintf("r%d", n)
		if n < len(f.randomIDs) {
			id = f.randomIDs[n]
		}
		write(w, []map[string]any{meal(id)})
	})

	return mux
}

func ids(prefix string, from, to int) []string {
	var out []string
	for i := from; i <= to; i++ {
		out = append(out, fmt.Sprintf("%s%d", prefix, i))
	}
	return out
}

func testClient(baseURL string, opts ...func(*Config)) *Client {
	cfg := Config{
		BaseURL: baseURL,
		Limiter: ratelimit.Unlimited{},
		Retry: &retry.Config{
			MaxAttempts:   2,
			InitialDelay:  time.Millisecond,
			MaxDelay:      time.Millisecond,
			BackoffFactor: 1,
		},
		Logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return New(cfg)
}

func recordIDs(t *testing.T, c *Client, limit int) []string {
	t.Helper()
	records, err := c.Fetch(context.Background(), limit)
	require.NoError(t, err)
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Get("idMeal")
	}
	return out
}

func TestFetch_StopsAtLimitAndTruncates(t *testing.T) {
	catalog := newFakeCatalog()
	// 25 + 25 with 5 shared ids gives 45 unique records
	catalog.categories["Chicken"] = ids("m", 1, 25)
	catalog.categories["Beef"] = ids("m", 21, 45)
	catalog.categories["Pork"] = ids("p", 1, 10)

	srv := httptest.NewServer(catalog.handler())
	defer srv.Close()

	got := recordIDs(t, testClient(srv.URL), 30)

	assert.Len(t, got, 30)
	assert.Equal(t, ids("m", 1, 30), got)
	assert.Zero(t, catalog.lookups["p1"], "Pork is never enumerated once the limit is met")
	assert.Zero(t, catalog.randoms)
}

func TestFetch_RandomTopUp(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.categories["Chicken"] = ids("m", 1, 3)
	catalog.randomIDs = []string{"m1", "x1", "x2", "x3"}

	srv := httptest.NewServer(catalog.handler())
	defer srv.Close()

	got := recordIDs(t, testClient(srv.URL), 6)

	// 3 remaining after categories; the random duplicate m1 is dropped
	assert.Equal(t, 3, catalog.randoms)
	assert.Equal(t, []string{"m1", "m2", "m3", "x1", "x2"}, got)
}

func TestFetch_RandomTopUpIsCapped(t *testing.T) {
	catalog := newFakeCatalog()

	srv := httptest.NewServer(catalog.handler())
	defer srv.Close()

	got := recordIDs(t, testClient(srv.URL), 500)

	assert.Equal(t, maxRandomTopUp, catalog.randoms)
	assert.Len(t, got, maxRandomTopUp)
}

func TestFetch_UnlimitedEnumeratesEverything(t *testing.T) {
	catalog := newFakeCatalog()
	for i, c := range Categories {
		catalog.categories[c] = ids(fmt.Sprintf("c%d-", i), 1, 2)
	}

	srv := httptest.NewServer(catalog.handler())
	defer srv.Close()

	got := recordIDs(t, testClient(srv.URL), 0)

	assert.Len(t, got, 2*len(Categories))
	assert.Zero(t, catalog.randoms)
}

func TestFetch_SkipsTransientFailures(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.categories["Chicken"] = ids("m", 1, 4)
	catalog.categories["Beef"] = ids("b", 1, 2)
	catalog.failLookup["m2"] = true
	catalog.failList["Beef"] = true
	catalog.categories["Pork"] = ids("p", 1, 1)

	srv := httptest.NewServer(catalog.handler())
	defer srv.Close()

	got := recordIDs(t, testClient(srv.URL), 0)

	assert.Equal(t, []string{"m1", "m3", "m4", "p1"}, got)
	assert.Equal(t, 1, catalog.lookups["m2"], "HTTP errors are not retried")
}

func TestFetch_ConcurrentLookupsKeepListingOrder(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.categories["Chicken"] = ids("m", 1, 20)

	srv := httptest.NewServer(catalog.handler())
	defer srv.Close()

	c := testClient(srv.URL, func(cfg *Config) { cfg.Concurrency = 4 })
	got := recordIDs(t, c, 0)

	assert.Equal(t, ids("m", 1, 20), got)
}

func TestFetch_UnreachableCatalogIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	records, err := testClient(baseURL).Fetch(context.Background(), 10)

	assert.Nil(t, records)
	var fatal *sources.FatalFetchError
	require.True(t, errors.As(err, &fatal), "got %v", err)
	assert.Contains(t, fatal.URL, "filter.php?c=Chicken")
}

func TestFetch_CanceledContextIsFatal(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.categories["Chicken"] = ids("m", 1, 3)

	srv := httptest.NewServer(catalog.handler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(srv.URL).Fetch(ctx, 10)

	var fatal *sources.FatalFetchError
	require.True(t, errors.As(err, &fatal))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetch_LookupCache(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.categories["Chicken"] = ids("m", 1, 3)

	srv := httptest.NewServer(catalog.handler())
	defer srv.Close()

	mem := cache.NewMemory()
	c := testClient(srv.URL, func(cfg *Config) { cfg.Cache = mem })

	first := recordIDs(t, c, 0)
	second := recordIDs(t, c, 0)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, catalog.lookups["m1"])
	assert.Equal(t, 3, mem.Len())
}

func TestFetch_UsesLimiter(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.categories["Chicken"] = ids("m", 1, 2)

	srv := httptest.NewServer(catalog.handler())
	defer srv.Close()

	limiter := &countingLimiter{}
	c := testClient(srv.URL, func(cfg *Config) { cfg.Limiter = limiter })
	recordIDs(t, c, 0)

	// one listing per category plus two lookups
	assert.Equal(t, len(Categories)+2, limiter.calls)
}

type countingLimiter struct {
	mu    sync.Mutex
	calls int
}

func (l *countingLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return ctx.Err()
}

func TestEnvelope_Records(t *testing.T) {
	var env envelope
	require.NoError(t, json.Unmarshal([]byte(`{"meals":[{"idMeal":"52772","strTags":null,"strMeal":"Teriyaki","n":3}]}`), &env))

	records := env.records()
	require.Len(t, records, 1)
	assert.Equal(t, "52772", records[0].Get("idMeal"))
	assert.Equal(t, "3", records[0].Get("n"))
	_, present := records[0]["strTags"]
	assert.False(t, present)

	require.NoError(t, json.Unmarshal([]byte(`{"meals":null}`), &env))
	assert.Empty(t, env.records())
}

func TestClient_Defaults(t *testing.T) {
	c := New(Config{Logger: zerolog.Nop()})
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, 1, c.concurrency)
	assert.Equal(t, SourceName, c.Name())
	assert.IsType(t, cache.Nop{}, c.cache)
}
