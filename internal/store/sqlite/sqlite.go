// Package sqlite implements store.Store on an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jonathan/recipe-ingest/internal/store"
	"github.com/jonathan/recipe-ingest/internal/types"
)

// Store is a SQLite-backed recipe store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open opens (or creates) the database at path with WAL mode enabled and
// makes sure the schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// Enable WAL mode so readers see only committed rows without blocking the writer
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := initSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS recipes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT,
	instructions TEXT NOT NULL DEFAULT '',
	prep_time_minutes INTEGER NOT NULL DEFAULT 0,
	cook_time_minutes INTEGER NOT NULL DEFAULT 0,
	total_time_minutes INTEGER NOT NULL DEFAULT 0,
	servings INTEGER NOT NULL DEFAULT 4,
	difficulty INTEGER NOT NULL DEFAULT 1 CHECK (difficulty BETWEEN 1 AND 5),
	cuisine_type TEXT,
	meal_type TEXT NOT NULL DEFAULT '',
	course_type TEXT NOT NULL DEFAULT '',
	is_vegetarian INTEGER NOT NULL DEFAULT 0,
	is_vegan INTEGER NOT NULL DEFAULT 0,
	is_gluten_free INTEGER NOT NULL DEFAULT 0,
	is_dairy_free INTEGER NOT NULL DEFAULT 0,
	is_nut_free INTEGER NOT NULL DEFAULT 0,
	is_low_carb INTEGER NOT NULL DEFAULT 0,
	is_keto INTEGER NOT NULL DEFAULT 0,
	is_paleo INTEGER NOT NULL DEFAULT 0,
	calories_per_serving INTEGER,
	protein_grams REAL,
	carbs_grams REAL,
	fat_grams REAL,
	fiber_grams REAL,
	sugar_grams REAL,
	sodium_mg REAL,
	external_id TEXT NOT NULL,
	external_source TEXT NOT NULL,
	image_url TEXT,
	video_url TEXT,
	source_url TEXT,
	ingredients_json TEXT NOT NULL DEFAULT '[]',
	tags TEXT NOT NULL DEFAULT '[]',
	equipment_needed TEXT NOT NULL DEFAULT '[]',
	popularity_score REAL NOT NULL DEFAULT 0,
	complexity_score REAL NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	UNIQUE(external_source, external_id)
);

CREATE INDEX IF NOT EXISTS idx_recipes_vegetarian ON recipes(is_vegetarian);
CREATE INDEX IF NOT EXISTS idx_recipes_vegan ON recipes(is_vegan);
CREATE INDEX IF NOT EXISTS idx_recipes_gluten_free ON recipes(is_gluten_free);
CREATE INDEX IF NOT EXISTS idx_recipes_cuisine ON recipes(cuisine_type);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

const recipeColumns = `id, name, description, instructions,
	prep_time_minutes, cook_time_minutes, total_time_minutes, servings, difficulty,
	cuisine_type, meal_type, course_type,
	is_vegetarian, is_vegan, is_gluten_free, is_dairy_free, is_nut_free, is_low_carb, is_keto, is_paleo,
	calories_per_serving, protein_grams, carbs_grams, fat_grams, fiber_grams, sugar_grams, sodium_mg,
	external_id, external_source, image_url, video_url, source_url,
	ingredients_json, tags, equipment_needed, popularity_score, complexity_score,
	created_at, updated_at`

// Insert relies on the unique constraint: a conflicting row inserts nothing
// and returns no id.
func (s *Store) Insert(ctx context.Context, r *types.Recipe) (int64, error) {
	ingredients, err := marshalList(r.Ingredients)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal ingredients: %w", err)
	}
	tags, err := marshalList(r.Tags)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal tags: %w", err)
	}
	equipment, err := marshalList(r.EquipmentNeeded)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal equipment: %w", err)
	}

	now := s.now().UTC()
	created := r.CreatedAt
	if created.IsZero() {
		created = now
	}

	var id int64
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO recipes (
			name, description, instructions,
			prep_time_minutes, cook_time_minutes, total_time_minutes, servings, difficulty,
			cuisine_type, meal_type, course_type,
			is_vegetarian, is_vegan, is_gluten_free, is_dairy_free, is_nut_free, is_low_carb, is_keto, is_paleo,
			calories_per_serving, protein_grams, carbs_grams, fat_grams, fiber_grams, sugar_grams, sodium_mg,
			external_id, external_source, image_url, video_url, source_url,
			ingredients_json, tags, equipment_needed, popularity_score, complexity_score,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_source, external_id) DO NOTHING
		RETURNING id`,
		r.Name, r.Description, r.Instructions,
		r.PrepTimeMinutes, r.CookTimeMinutes, r.TotalTimeMinutes, r.Servings, r.Difficulty,
		r.CuisineType, r.MealType, r.CourseType,
		r.Vegetarian, r.Vegan, r.GlutenFree, r.DairyFree, r.NutFree, r.LowCarb, r.Keto, r.Paleo,
		r.CaloriesPerServing, r.ProteinGrams, r.CarbsGrams, r.FatGrams, r.FiberGrams, r.SugarGrams, r.SodiumMg,
		r.ExternalID, r.ExternalSource, r.ImageURL, r.VideoURL, r.SourceURL,
		ingredients, tags, equipment, r.PopularityScore, r.ComplexityScore,
		formatTime(created), formatTime(now),
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, store.ErrDuplicate
		}
		return 0, fmt.Errorf("failed to insert recipe: %w", err)
	}
	return id, nil
}

// FindByExternalID returns nil, nil when no recipe matches.
func (s *Store) FindByExternalID(ctx context.Context, source, externalID string) (*types.Recipe, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE external_source = ? AND external_id = ?`,
		source, externalID,
	)
	r, err := scanRecipe(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return r, nil
}

func (s *Store) UpdateFlags(ctx context.Context, id int64, f types.DietaryFlags, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE recipes SET
			is_vegetarian = ?, is_vegan = ?, is_gluten_free = ?, is_dairy_free = ?,
			is_nut_free = ?, is_low_carb = ?, is_keto = ?, is_paleo = ?, updated_at = ?
		 WHERE id = ?`,
		f.Vegetarian, f.Vegan, f.GlutenFree, f.DairyFree,
		f.NutFree, f.LowCarb, f.Keto, f.Paleo, formatTime(at), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update flags: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update flags: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) QueryWithIngredients(ctx context.Context, f store.Filter) ([]*types.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE json_array_length(ingredients_json) > 0`
	var args []any

	if f.RecipeID != 0 {
		query += ` AND id = ?`
		args = append(args, f.RecipeID)
	}
	if f.Flag != "" {
		if _, ok := (types.DietaryFlags{}).Get(f.Flag); !ok {
			return nil, fmt.Errorf("unknown flag: %s", f.Flag)
		}
		// f.Flag is one of the fixed column names checked above
		query += ` AND ` + f.Flag + ` = 1`
	}
	query += ` ORDER BY id`

	return s.query(ctx, query, args...)
}

func (s *Store) List(ctx context.Context) ([]*types.Recipe, error) {
	return s.query(ctx, `SELECT `+recipeColumns+` FROM recipes ORDER BY id`)
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return n, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]*types.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	defer func() { _ = rows.Close() }()

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

type scanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row scanner) (*types.Recipe, error) {
	var (
		r                                 types.Recipe
		description, cuisine              sql.NullString
		imageURL, videoURL, sourceURL     sql.NullString
		calories                          sql.NullInt64
		protein, carbs, fat, fiber, sugar sql.NullFloat64
		sodium                            sql.NullFloat64
		ingredients, tags, equipment      string
		createdAt, updatedAt              string
	)

	err := row.Scan(
		&r.ID, &r.Name, &description, &r.Instructions,
		&r.PrepTimeMinutes, &r.CookTimeMinutes, &r.TotalTimeMinutes, &r.Servings, &r.Difficulty,
		&cuisine, &r.MealType, &r.CourseType,
		&r.Vegetarian, &r.Vegan, &r.GlutenFree, &r.DairyFree, &r.NutFree, &r.LowCarb, &r.Keto, &r.Paleo,
		&calories, &protein, &carbs, &fat, &fiber, &sugar, &sodium,
		&r.ExternalID, &r.ExternalSource, &imageURL, &videoURL, &sourceURL,
		&ingredients, &tags, &equipment, &r.PopularityScore, &r.ComplexityScore,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Description = nullString(description)
	r.CuisineType = nullString(cuisine)
	r.ImageURL = nullString(imageURL)
	r.VideoURL = nullString(videoURL)
	r.SourceURL = nullString(sourceURL)

	if calories.Valid {
		v := int(calories.Int64)
		r.CaloriesPerServing = &v
	}
	r.ProteinGrams = nullFloat(protein)
	r.CarbsGrams = nullFloat(carbs)
	r.FatGrams = nullFloat(fat)
	r.FiberGrams = nullFloat(fiber)
	r.SugarGrams = nullFloat(sugar)
	r.SodiumMg = nullFloat(sodium)

	if err := json.Unmarshal([]byte(ingredients), &r.Ingredients); err != nil {
		return nil, fmt.Errorf("failed to decode ingredients: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &r.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if err := json.Unmarshal([]byte(equipment), &r.EquipmentNeeded); err != nil {
		return nil, fmt.Errorf("failed to decode equipment: %w", err)
	}

	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if r.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return &r, nil
}

// marshalList encodes a slice as a JSON array, never "null".
func marshalList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func nullFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	return &f.Float64
}
