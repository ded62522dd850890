// Package schemas provides JSON Schema validation for canonical recipes and
// other structured documents.
package schemas

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/recipe-ingest/internal/types"
	schemafiles "github.com/jonathan/recipe-ingest/schemas"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// RecipeValidator checks recipes against the embedded canonical schema.
// The schema is compiled once on first use.
type RecipeValidator struct {
	once   sync.Once
	schema *gojsonschema.Schema
	err    error
}

// NewRecipeValidator creates a validator for the embedded recipe schema.
func NewRecipeValidator() *RecipeValidator {
	return &RecipeValidator{}
}

func (v *RecipeValidator) load() (*gojsonschema.Schema, error) {
	v.once.Do(func() {
		data, err := schemafiles.FS.ReadFile(schemafiles.RecipeSchema)
		if err != nil {
			v.err = &SchemaLoadError{Path: schemafiles.RecipeSchema, Message: "schema not embedded", Cause: err}
			return
		}
		v.schema, err = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			v.err = &SchemaLoadError{Path: schemafiles.RecipeSchema, Message: "invalid schema", Cause: err}
		}
	})
	return v.schema, v.err
}

// Validate returns a *ValidationError when r violates the recipe schema.
func (v *RecipeValidator) Validate(r *types.Recipe) error {
	schema, err := v.load()
	if err != nil {
		return err
	}

	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("failed to validate recipe: %w", err)
	}
	return toValidationError(result)
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	return toValidationError(result)
}

func toValidationError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
