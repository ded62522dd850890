// Package persist saves canonical recipes insert-only: a recipe whose
// (external_source, external_id) is already stored is skipped, never updated.
package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jonathan/recipe-ingest/internal/store"
	"github.com/jonathan/recipe-ingest/internal/types"
)

// Outcome is the result kind of one save.
type Outcome int

const (
	Saved Outcome = iota
	SkippedDuplicate
	Error
)

func (o Outcome) String() string {
	switch o {
	case Saved:
		return "saved"
	case SkippedDuplicate:
		return "skipped_duplicate"
	case Error:
		return "error"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result reports what happened to one recipe. ID is set for Saved and for
// SkippedDuplicate when the existing row is known. Err is set only for Error.
type Result struct {
	Outcome Outcome
	ID      int64
	Err     error
}

// PersistenceError is a failed write for one recipe.
type PersistenceError struct {
	Key     string
	Message string
	Cause   error
}

func (e *PersistenceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("persist %s: %s: %v", e.Key, e.Message, e.Cause)
	}
	return fmt.Sprintf("persist %s: %s", e.Key, e.Message)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// Gateway serializes check-then-insert per dedup key. The store's unique
// constraint backs this up across processes.
type Gateway struct {
	store  store.Store
	logger zerolog.Logger
	locks  keyedMutex
}

// NewGateway creates a gateway over s.
func NewGateway(s store.Store, logger zerolog.Logger) *Gateway {
	return &Gateway{store: s, logger: logger}
}

// Save stores r unless its dedup key already exists.
func (g *Gateway) Save(ctx context.Context, r *types.Recipe) Result {
	key := r.Key()
	unlock := g.locks.lock(key)
	defer unlock()

	existing, err := g.store.FindByExternalID(ctx, r.ExternalSource, r.ExternalID)
	if err != nil {
		return g.failed(key, "lookup failed", err)
	}
	if existing != nil {
		g.logger.Debug().Str("key", key).Int64("id", existing.ID).Msg("recipe already stored, skipping")
		return Result{Outcome: SkippedDuplicate, ID: existing.ID}
	}

	id, err := g.store.Insert(ctx, r)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			g.logger.Debug().Str("key", key).Msg("recipe inserted concurrently, skipping")
			return Result{Outcome: SkippedDuplicate}
		}
		return g.failed(key, "insert failed", err)
	}

	g.logger.Debug().Str("key", key).Int64("id", id).Str("name", r.Name).Msg("recipe saved")
	return Result{Outcome: Saved, ID: id}
}

func (g *Gateway) failed(key, message string, cause error) Result {
	err := &PersistenceError{Key: key, Message: message, Cause: cause}
	g.logger.Error().Err(cause).Str("key", key).Msg(message)
	return Result{Outcome: Error, Err: err}
}

// keyedMutex hands out one mutex per key and forgets it once unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refMutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
