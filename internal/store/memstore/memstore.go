// Package memstore is an in-memory store.Store.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jonathan/recipe-ingest/internal/store"
	"github.com/jonathan/recipe-ingest/internal/types"
)

// Store keeps recipes in a map guarded by a mutex. Recipes are copied in and
// out so callers never share memory with the store.
type Store struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*types.Recipe
	byKey  map[string]int64
	now    func() time.Time
}

var _ store.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID: 1,
		byID:   make(map[int64]*types.Recipe),
		byKey:  make(map[string]int64),
		now:    time.Now,
	}
}

func (s *Store) FindByExternalID(_ context.Context, source, externalID string) (*types.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byKey[types.DedupKey(source, externalID)]
	if !ok {
		return nil, nil
	}
	return s.byID[id].Clone(), nil
}

func (s *Store) Insert(_ context.Context, r *types.Recipe) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := r.Key()
	if _, exists := s.byKey[key]; exists {
		return 0, store.ErrDuplicate
	}

	stored := r.Clone()
	stored.ID = s.nextID
	now := s.now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	s.byID[stored.ID] = stored
	s.byKey[key] = stored.ID
	s.nextID++
	return stored.ID, nil
}

func (s *Store) UpdateFlags(_ context.Context, id int64, flags types.DietaryFlags, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	r.DietaryFlags = flags
	r.UpdatedAt = at.UTC()
	return nil
}

func (s *Store) QueryWithIngredients(_ context.Context, f store.Filter) ([]*types.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*types.Recipe
	for _, r := range s.sorted() {
		if len(r.Ingredients) == 0 {
			continue
		}
		if f.RecipeID != 0 && r.ID != f.RecipeID {
			continue
		}
		if f.Flag != "" {
			if v, _ := r.Get(f.Flag); !v {
				continue
			}
		}
		out = append(out, r.Clone())
	}
	return out, nil
}

func (s *Store) List(_ context.Context) ([]*types.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recipes := s.sorted()
	out := make([]*types.Recipe, len(recipes))
	for i, r := range recipes {
		out[i] = r.Clone()
	}
	return out, nil
}

func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// sorted must be called with the lock held.
func (s *Store) sorted() []*types.Recipe {
	recipes := make([]*types.Recipe, 0, len(s.byID))
	for _, r := range s.byID {
		recipes = append(recipes, r)
	}
	sort.Slice(recipes, func(i, j int) bool { return recipes[i].ID < recipes[j].ID })
	return recipes
}
