// Package store defines the storage contract of the recipe pipeline.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jonathan/recipe-ingest/internal/types"
)

var (
	// ErrDuplicate is returned by Insert when (external_source, external_id) already exists.
	ErrDuplicate = errors.New("recipe already exists")
	// ErrNotFound is returned when updating a recipe id that does not exist.
	ErrNotFound = errors.New("recipe not found")
)

// Filter narrows QueryWithIngredients. Zero values match everything.
type Filter struct {
	// RecipeID selects a single recipe.
	RecipeID int64
	// Flag selects recipes whose stored flag (e.g. "is_vegan") is true.
	Flag string
}

// Store is the recipe storage collaborator. Implementations must make an
// inserted recipe visible to readers only once it is fully written.
type Store interface {
	// FindByExternalID returns nil, nil when no recipe matches.
	FindByExternalID(ctx context.Context, source, externalID string) (*types.Recipe, error)
	// Insert stores a new recipe and returns its id.
	Insert(ctx context.Context, r *types.Recipe) (int64, error)
	// UpdateFlags overwrites the dietary flags and sets updated_at.
	UpdateFlags(ctx context.Context, id int64, flags types.DietaryFlags, at time.Time) error
	// QueryWithIngredients returns recipes with a non-empty ingredient list, ordered by id.
	QueryWithIngredients(ctx context.Context, f Filter) ([]*types.Recipe, error)
	// List returns every recipe ordered by id.
	List(ctx context.Context) ([]*types.Recipe, error)
	// Count returns the number of stored recipes.
	Count(ctx context.Context) (int, error)
	Close() error
}
