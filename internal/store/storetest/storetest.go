// Package storetest holds the behaviour every store.Store implementation must show.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/recipe-ingest/internal/store"
	"github.com/jonathan/recipe-ingest/internal/types"
)

// Recipe returns a valid recipe for the given dedup key.
func Recipe(source, externalID string, ingredients ...string) *types.Recipe {
	r := &types.Recipe{
		Name:             "Recipe " + externalID,
		Instructions:     "1. Cook.",
		PrepTimeMinutes:  10,
		CookTimeMinutes:  20,
		TotalTimeMinutes: 30,
		Servings:         4,
		Difficulty:       2,
		CuisineType:      types.StringPtr("Italian"),
		MealType:         "dinner",
		CourseType:       "main",
		ExternalID:       externalID,
		ExternalSource:   source,
		Ingredients:      []types.Ingredient{},
		Tags:             []string{"pasta"},
		EquipmentNeeded:  []string{},
		ComplexityScore:  0.4,
	}
	for _, name := range ingredients {
		r.Ingredients = append(r.Ingredients, types.Ingredient{Name: name, Amount: types.DefaultAmount})
	}
	return r
}

// Run exercises a store. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("InsertAndFind", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		r := Recipe("themealdb", "100", "tofu", "rice")
		r.Vegan = true
		r.Vegetarian = true
		r.Description = types.StringPtr("A delicious dish")

		id, err := s.Insert(ctx, r)
		require.NoError(t, err)
		assert.Positive(t, id)

		got, err := s.FindByExternalID(ctx, "themealdb", "100")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, r.Name, got.Name)
		assert.Equal(t, "A delicious dish", types.Deref(got.Description))
		assert.Equal(t, "Italian", types.Deref(got.CuisineType))
		assert.Nil(t, got.ImageURL)
		assert.Equal(t, r.Ingredients, got.Ingredients)
		assert.Equal(t, r.Tags, got.Tags)
		assert.True(t, got.Vegan)
		assert.False(t, got.GlutenFree)
		assert.False(t, got.UpdatedAt.IsZero())
	})

	t.Run("FindMissing", func(t *testing.T) {
		s := newStore(t)
		got, err := s.FindByExternalID(context.Background(), "themealdb", "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("DuplicateInsert", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Insert(ctx, Recipe("themealdb", "1"))
		require.NoError(t, err)

		_, err = s.Insert(ctx, Recipe("themealdb", "1"))
		assert.True(t, errors.Is(err, store.ErrDuplicate), "got %v", err)

		_, err = s.Insert(ctx, Recipe("other", "1"))
		assert.NoError(t, err, "same id from another source is a different recipe")

		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("UpdateFlags", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		id, err := s.Insert(ctx, Recipe("themealdb", "7", "chicken stock"))
		require.NoError(t, err)

		at := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
		flags := types.DietaryFlags{GlutenFree: true, NutFree: true}
		require.NoError(t, s.UpdateFlags(ctx, id, flags, at))

		got, err := s.FindByExternalID(ctx, "themealdb", "7")
		require.NoError(t, err)
		assert.Equal(t, flags, got.DietaryFlags)
		assert.True(t, at.Equal(got.UpdatedAt), "updated_at = %v", got.UpdatedAt)

		err = s.UpdateFlags(ctx, id+1000, flags, at)
		assert.True(t, errors.Is(err, store.ErrNotFound), "got %v", err)
	})

	t.Run("QueryWithIngredients", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		vegan := Recipe("themealdb", "1", "tofu")
		vegan.Vegan = true
		veganID, err := s.Insert(ctx, vegan)
		require.NoError(t, err)

		_, err = s.Insert(ctx, Recipe("themealdb", "2", "beef"))
		require.NoError(t, err)

		empty := Recipe("themealdb", "3")
		empty.Vegan = true
		_, err = s.Insert(ctx, empty)
		require.NoError(t, err)

		all, err := s.QueryWithIngredients(ctx, store.Filter{})
		require.NoError(t, err)
		require.Len(t, all, 2, "recipes without ingredients are excluded")
		assert.Less(t, all[0].ID, all[1].ID)

		byFlag, err := s.QueryWithIngredients(ctx, store.Filter{Flag: types.FlagVegan})
		require.NoError(t, err)
		require.Len(t, byFlag, 1)
		assert.Equal(t, veganID, byFlag[0].ID)

		byID, err := s.QueryWithIngredients(ctx, store.Filter{RecipeID: veganID})
		require.NoError(t, err)
		require.Len(t, byID, 1)
		assert.Equal(t, "1", byID[0].ExternalID)

		none, err := s.QueryWithIngredients(ctx, store.Filter{RecipeID: veganID + 1000})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("ListAndCount", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		for _, id := range []string{"a", "b", "c"} {
			_, err := s.Insert(ctx, Recipe("themealdb", id, "salt"))
			require.NoError(t, err)
		}

		all, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "a", all[0].ExternalID)
		assert.Equal(t, "c", all[2].ExternalID)

		n, err = s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})
}
