package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadWithEnv("", env(map[string]string{"DATABASE_URL": "postgres://localhost/recipes"}))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, 30*time.Second, cfg.Catalog.RequestTimeout.Std())
	assert.Equal(t, 100*time.Millisecond, cfg.Catalog.RequestInterval.Std())
	assert.Equal(t, 1, cfg.Catalog.Concurrency)
	assert.Equal(t, 100, cfg.Ingest.DefaultLimit)
	assert.Equal(t, 50, cfg.Ingest.AllSourcesLimit)
}

func TestLoad_NoStoreLocationNeeded(t *testing.T) {
	cfg, err := LoadWithEnv("", env(nil))
	require.NoError(t, err)
	assert.Empty(t, cfg.Store.DatabaseURL)
}

func TestLoad_JSONFile(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"env": "production",
		"store": {"backend": "sqlite", "sqlite_path": "recipes.db"},
		"catalog": {"request_interval": "250ms", "fetch_concurrency": 4, "cache_ttl": "1h"}
	}`)

	cfg, err := LoadWithEnv(path, env(nil))
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "recipes.db", cfg.Store.SQLitePath)
	assert.Equal(t, 250*time.Millisecond, cfg.Catalog.RequestInterval.Std())
	assert.Equal(t, 4, cfg.Catalog.Concurrency)
	assert.Equal(t, time.Hour, cfg.Catalog.CacheTTL.Std())
	// untouched fields keep defaults
	assert.Equal(t, 3, cfg.Catalog.RetryAttempts)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, "config.yaml", `
store:
  backend: memory
catalog:
  request_timeout: 5s
  base_url: http://localhost:8080/api
ingest:
  default_limit: 20
`)

	cfg, err := LoadWithEnv(path, env(nil))
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 5*time.Second, cfg.Catalog.RequestTimeout.Std())
	assert.Equal(t, "http://localhost:8080/api", cfg.Catalog.BaseURL)
	assert.Equal(t, 20, cfg.Ingest.DefaultLimit)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.json", `{"store": {"backend": "memory"}, "ingest": {"default_limit": 20}}`)

	cfg, err := LoadWithEnv(path, env(map[string]string{
		"STORE_BACKEND":             "sqlite",
		"SQLITE_PATH":               "/tmp/r.db",
		"INGEST_DEFAULT_LIMIT":      "7",
		"CATALOG_REQUEST_INTERVAL":  "0s",
		"CATALOG_FETCH_CONCURRENCY": "2",
		"AUTO_MIGRATE":              "true",
		"REDIS_URL":                 "redis://localhost:6379/0",
		"LOG_LEVEL":                 "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "/tmp/r.db", cfg.Store.SQLitePath)
	assert.Equal(t, 7, cfg.Ingest.DefaultLimit)
	assert.Zero(t, cfg.Catalog.RequestInterval)
	assert.Equal(t, 2, cfg.Catalog.Concurrency)
	assert.True(t, cfg.Store.AutoMigrate)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Catalog.RedisURL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidEnv(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want string
	}{
		{"bad integer", map[string]string{"INGEST_DEFAULT_LIMIT": "many"}, "invalid INGEST_DEFAULT_LIMIT"},
		{"bad duration", map[string]string{"CATALOG_CACHE_TTL": "forever"}, "invalid CATALOG_CACHE_TTL"},
		{"bad bool", map[string]string{"AUTO_MIGRATE": "sometimes"}, "invalid AUTO_MIGRATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.vars["STORE_BACKEND"] = "memory"
			_, err := LoadWithEnv("", env(tt.vars))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_FileErrors(t *testing.T) {
	_, err := LoadWithEnv("/nonexistent/path/config.json", env(nil))
	assert.ErrorContains(t, err, "failed to read config file")

	path := writeFile(t, "config.json", `{ invalid json }`)
	_, err = LoadWithEnv(path, env(nil))
	assert.ErrorContains(t, err, "failed to parse config JSON")

	path = writeFile(t, "config.yml", "store: [")
	_, err = LoadWithEnv(path, env(nil))
	assert.ErrorContains(t, err, "failed to parse config YAML")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown backend", func(c *Config) { c.Store.Backend = "mongo" }},
		{"zero concurrency", func(c *Config) { c.Catalog.Concurrency = 0 }},
		{"too many retries", func(c *Config) { c.Catalog.RetryAttempts = 50 }},
		{"negative limit", func(c *Config) { c.Ingest.DefaultLimit = -1 }},
		{"zero timeout", func(c *Config) { c.Catalog.RequestTimeout = 0 }},
		{"bad env", func(c *Config) { c.Env = "staging" }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad pushgateway url", func(c *Config) { c.Metrics.PushgatewayURL = "not a url" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Store.Backend = BackendMemory
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), "config error")
		})
	}
}

func TestDuration_JSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"1m30s"`), &d))
	assert.Equal(t, 90*time.Second, d.Std())

	require.NoError(t, json.Unmarshal([]byte(`1000000`), &d))
	assert.Equal(t, time.Millisecond, d.Std())

	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))

	out, err := json.Marshal(Duration(2 * time.Second))
	require.NoError(t, err)
	assert.JSONEq(t, `"2s"`, string(out))
}
