// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Config is the full runtime configuration. Values come from Default, then
// an optional JSON or YAML file, then environment variables.
type Config struct {
	Env      string `json:"env" yaml:"env" validate:"oneof=development production test"`
	LogLevel string `json:"log_level" yaml:"log_level" validate:"oneof=trace debug info warn error"`

	Store   StoreConfig   `json:"store" yaml:"store"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`
	Ingest  IngestConfig  `json:"ingest" yaml:"ingest"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
}

// StoreConfig selects and configures the recipe store. The backend's
// location is checked when the store is opened.
type StoreConfig struct {
	Backend     string `json:"backend" yaml:"backend" validate:"oneof=postgres sqlite memory"`
	DatabaseURL string `json:"database_url" yaml:"database_url"`
	SQLitePath  string `json:"sqlite_path" yaml:"sqlite_path"`
	AutoMigrate bool   `json:"auto_migrate" yaml:"auto_migrate"`
}

// CatalogConfig tunes requests to the recipe catalog.
type CatalogConfig struct {
	BaseURL         string   `json:"base_url" yaml:"base_url" validate:"omitempty,url"`
	RequestTimeout  Duration `json:"request_timeout" yaml:"request_timeout" validate:"gt=0"`
	RequestInterval Duration `json:"request_interval" yaml:"request_interval" validate:"gte=0"`
	Concurrency     int      `json:"fetch_concurrency" yaml:"fetch_concurrency" validate:"min=1,max=16"`
	RetryAttempts   int      `json:"retry_attempts" yaml:"retry_attempts" validate:"min=1,max=10"`
	CacheTTL        Duration `json:"cache_ttl" yaml:"cache_ttl" validate:"gte=0"`
	RedisURL        string   `json:"redis_url" yaml:"redis_url" validate:"omitempty,url"`
}

// IngestConfig holds ingestion defaults.
type IngestConfig struct {
	DefaultLimit    int `json:"default_limit" yaml:"default_limit" validate:"gte=0"`
	AllSourcesLimit int `json:"all_sources_limit" yaml:"all_sources_limit" validate:"gte=0"`
}

// MetricsConfig controls where run metrics are exported. Both are optional.
type MetricsConfig struct {
	Textfile       string `json:"textfile" yaml:"textfile"`
	PushgatewayURL string `json:"pushgateway_url" yaml:"pushgateway_url" validate:"omitempty,url"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Env:      "development",
		LogLevel: "info",
		Store: StoreConfig{
			Backend: BackendPostgres,
		},
		Catalog: CatalogConfig{
			RequestTimeout:  Duration(30 * time.Second),
			RequestInterval: Duration(100 * time.Millisecond),
			Concurrency:     1,
			RetryAttempts:   3,
			CacheTTL:        Duration(24 * time.Hour),
		},
		Ingest: IngestConfig{
			DefaultLimit:    100,
			AllSourcesLimit: 50,
		},
	}
}

// Load builds the configuration from defaults, the file at path (if any) and
// the process environment, then validates it.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
		return nil
	}
	duration := func(key string, dst *Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = Duration(d)
		return nil
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = b
		return nil
	}

	str("APP_ENV", &c.Env)
	str("LOG_LEVEL", &c.LogLevel)
	str("DATABASE_URL", &c.Store.DatabaseURL)
	str("STORE_BACKEND", &c.Store.Backend)
	str("SQLITE_PATH", &c.Store.SQLitePath)
	str("REDIS_URL", &c.Catalog.RedisURL)
	str("THEMEALDB_BASE_URL", &c.Catalog.BaseURL)
	str("METRICS_TEXTFILE", &c.Metrics.Textfile)
	str("PUSHGATEWAY_URL", &c.Metrics.PushgatewayURL)

	for _, set := range []func() error{
		func() error { return boolean("AUTO_MIGRATE", &c.Store.AutoMigrate) },
		func() error { return duration("CATALOG_CACHE_TTL", &c.Catalog.CacheTTL) },
		func() error { return duration("CATALOG_REQUEST_TIMEOUT", &c.Catalog.RequestTimeout) },
		func() error { return duration("CATALOG_REQUEST_INTERVAL", &c.Catalog.RequestInterval) },
		func() error { return integer("CATALOG_FETCH_CONCURRENCY", &c.Catalog.Concurrency) },
		func() error { return integer("CATALOG_RETRY_ATTEMPTS", &c.Catalog.RetryAttempts) },
		func() error { return integer("INGEST_DEFAULT_LIMIT", &c.Ingest.DefaultLimit) },
	} {
		if err := set(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// Duration is a time.Duration that reads "100ms"-style strings from JSON and YAML.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", val, err)
		}
		*d = Duration(parsed)
	case float64:
		*d = Duration(time.Duration(val))
	default:
		return fmt.Errorf("invalid duration %s", string(data))
	}
	return nil
}

// UnmarshalYAML accepts a duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}
