// Package sources defines the contract between the ingestion pipeline and
// external recipe catalogs, plus a registry of the catalogs that are available.
package sources

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jonathan/recipe-ingest/internal/types"
)

// Source fetches raw records from one catalog and normalizes them.
type Source interface {
	// Name is the value stored as external_source.
	Name() string
	// Fetch returns up to limit deduplicated raw records; limit <= 0 means no
	// limit. Individual call failures are skipped. A returned error means the
	// catalog could not be reached and is a *FatalFetchError.
	Fetch(ctx context.Context, limit int) ([]types.RawRecord, error)
	// Normalize maps one raw record to the canonical schema. It never fails.
	Normalize(raw types.RawRecord) *types.Recipe
}

// Info describes a registered source for listings.
type Info struct {
	Name           string
	Description    string
	APIKeyRequired bool
	DefaultLimit   int
}

// Factory builds a ready-to-use Source.
type Factory func() (Source, error)

type registration struct {
	info    Info
	factory Factory
}

// Registry maps source names to factories.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registration)}
}

// Register adds a source. Registering the same name twice is an error.
func (r *Registry) Register(info Info, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if info.Name == "" {
		return fmt.Errorf("source name is empty")
	}
	if _, exists := r.entries[info.Name]; exists {
		return fmt.Errorf("source %q already registered", info.Name)
	}
	r.entries[info.Name] = registration{info: info, factory: factory}
	return nil
}

// Open builds the named source.
func (r *Registry) Open(name string) (Source, error) {
	r.mu.RLock()
	reg, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown source: %s", name)
	}
	src, err := reg.factory()
	if err != nil {
		return nil, fmt.Errorf("failed to open source %s: %w", name, err)
	}
	return src, nil
}

// Info returns the metadata of one source.
func (r *Registry) Info(name string) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[name]
	return reg.info, ok
}

// List returns all registered sources sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.entries))
	for _, reg := range r.entries {
		infos = append(infos, reg.info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Names returns the registered source names sorted.
func (r *Registry) Names() []string {
	infos := r.List()
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names
}
