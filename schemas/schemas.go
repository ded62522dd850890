// Package schemas embeds the JSON Schema documents shipped with the binary.
package schemas

import "embed"

// RecipeSchema is the file name of the canonical recipe schema.
const RecipeSchema = "recipe.schema.json"

// FS holds every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS
