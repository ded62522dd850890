package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jonathan/recipe-ingest/internal/store"
	"github.com/jonathan/recipe-ingest/internal/types"
)

var _ store.Store = (*DB)(nil)

// uniqueViolation is the PostgreSQL error code for unique constraint violations
const uniqueViolation = "23505"

const recipeColumns = `id, name, description, instructions,
	prep_time_minutes, cook_time_minutes, total_time_minutes, servings, difficulty,
	cuisine_type, meal_type, course_type,
	is_vegetarian, is_vegan, is_gluten_free, is_dairy_free, is_nut_free, is_low_carb, is_keto, is_paleo,
	calories_per_serving, protein_grams, carbs_grams, fat_grams, fiber_grams, sugar_grams, sodium_mg,
	external_id, external_source, image_url, video_url, source_url,
	ingredients_json, tags, equipment_needed, popularity_score, complexity_score,
	created_at, updated_at`

// -----------------------------------------------------------------------------
// Recipe Methods
// -----------------------------------------------------------------------------

// FindByExternalID returns nil, nil when no recipe matches.
func (db *DB) FindByExternalID(ctx context.Context, source, externalID string) (*types.Recipe, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE external_source = $1 AND external_id = $2`,
		source, externalID,
	)
	r, err := scanRecipe(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return r, nil
}

// Insert writes the recipe inside a transaction. A conflicting
// (external_source, external_id) returns store.ErrDuplicate.
func (db *DB) Insert(ctx context.Context, r *types.Recipe) (int64, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO recipes (
			name, description, instructions,
			prep_time_minutes, cook_time_minutes, total_time_minutes, servings, difficulty,
			cuisine_type, meal_type, course_type,
			is_vegetarian, is_vegan, is_gluten_free, is_dairy_free, is_nut_free, is_low_carb, is_keto, is_paleo,
			calories_per_serving, protein_grams, carbs_grams, fat_grams, fiber_grams, sugar_grams, sodium_mg,
			external_id, external_source, image_url, video_url, source_url,
			ingredients_json, tags, equipment_needed, popularity_score, complexity_score
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19,
			$20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35, $36
		)
		RETURNING id`,
		r.Name, r.Description, r.Instructions,
		r.PrepTimeMinutes, r.CookTimeMinutes, r.TotalTimeMinutes, r.Servings, r.Difficulty,
		r.CuisineType, r.MealType, r.CourseType,
		r.Vegetarian, r.Vegan, r.GlutenFree, r.DairyFree, r.NutFree, r.LowCarb, r.Keto, r.Paleo,
		r.CaloriesPerServing, r.ProteinGrams, r.CarbsGrams, r.FatGrams, r.FiberGrams, r.SugarGrams, r.SodiumMg,
		r.ExternalID, r.ExternalSource, r.ImageURL, r.VideoURL, r.SourceURL,
		nonNil(r.Ingredients), nonNil(r.Tags), nonNil(r.EquipmentNeeded), r.PopularityScore, r.ComplexityScore,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, store.ErrDuplicate
		}
		return 0, fmt.Errorf("failed to insert recipe: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, nil
}

// UpdateFlags overwrites all dietary flags of a recipe and stamps updated_at.
func (db *DB) UpdateFlags(ctx context.Context, id int64, f types.DietaryFlags, at time.Time) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE recipes SET
			is_vegetarian = $1, is_vegan = $2, is_gluten_free = $3, is_dairy_free = $4,
			is_nut_free = $5, is_low_carb = $6, is_keto = $7, is_paleo = $8, updated_at = $9
		 WHERE id = $10`,
		f.Vegetarian, f.Vegan, f.GlutenFree, f.DairyFree,
		f.NutFree, f.LowCarb, f.Keto, f.Paleo, at, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update flags: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// QueryWithIngredients returns recipes that have at least one stored ingredient.
func (db *DB) QueryWithIngredients(ctx context.Context, f store.Filter) ([]*types.Recipe, error) {
	query, args, err := buildIngredientQuery(f)
	if err != nil {
		return nil, err
	}
	return db.queryRecipes(ctx, query, args...)
}

// List returns every recipe ordered by id.
func (db *DB) List(ctx context.Context) ([]*types.Recipe, error) {
	return db.queryRecipes(ctx, `SELECT `+recipeColumns+` FROM recipes ORDER BY id`)
}

// Count returns the number of stored recipes.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return n, nil
}

// buildIngredientQuery renders the filter into SQL. Flag names are checked
// against the known flag columns before they are spliced in.
func buildIngredientQuery(f store.Filter) (string, []any, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE jsonb_array_length(ingredients_json) > 0`
	var args []any

	if f.RecipeID != 0 {
		args = append(args, f.RecipeID)
		query += fmt.Sprintf(` AND id = $%d`, len(args))
	}
	if f.Flag != "" {
		if _, ok := (types.DietaryFlags{}).Get(f.Flag); !ok {
			return "", nil, fmt.Errorf("unknown flag: %s", f.Flag)
		}
		query += ` AND ` + f.Flag + ` = TRUE`
	}

	return query + ` ORDER BY id`, args, nil
}

func (db *DB) queryRecipes(ctx context.Context, query string, args ...any) ([]*types.Recipe, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	defer rows.Close()

	var recipes []*types.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipes: %w", err)
	}
	return recipes, nil
}

func scanRecipe(row pgx.Row) (*types.Recipe, error) {
	var r types.Recipe
	err := row.Scan(
		&r.ID, &r.Name, &r.Description, &r.Instructions,
		&r.PrepTimeMinutes, &r.CookTimeMinutes, &r.TotalTimeMinutes, &r.Servings, &r.Difficulty,
		&r.CuisineType, &r.MealType, &r.CourseType,
		&r.Vegetarian, &r.Vegan, &r.GlutenFree, &r.DairyFree, &r.NutFree, &r.LowCarb, &r.Keto, &r.Paleo,
		&r.CaloriesPerServing, &r.ProteinGrams, &r.CarbsGrams, &r.FatGrams, &r.FiberGrams, &r.SugarGrams, &r.SodiumMg,
		&r.ExternalID, &r.ExternalSource, &r.ImageURL, &r.VideoURL, &r.SourceURL,
		&r.Ingredients, &r.Tags, &r.EquipmentNeeded, &r.PopularityScore, &r.ComplexityScore,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
