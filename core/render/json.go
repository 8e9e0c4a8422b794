// Package render turns recipe records into output formats: JSON,
// Markdown, PDF and embedding dumps.
package render

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/gaurav-prasanna/recipepipe/core/normalize"
)

// JSONRenderer produces the stored record as indented JSON, plus a
// display block with human-readable times.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

type jsonRecipe struct {
	*core.Recipe
	Display jsonDisplay `json:"display"`
}

type jsonDisplay struct {
	CookTime         string `json:"cookTime,omitempty"`
	PrepTime         string `json:"prepTime,omitempty"`
	TotalTime        string `json:"totalTime,omitempty"`
	PlaceholderImage bool   `json:"placeholderImage"`
}

// Render marshals the recipe.
func (r *JSONRenderer) Render(_ context.Context, recipe *core.Recipe) ([]byte, error) {
	doc := jsonRecipe{
		Recipe: recipe,
		Display: jsonDisplay{
			CookTime:         normalize.Duration(recipe.CookTime),
			PrepTime:         normalize.Duration(recipe.PrepTime),
			TotalTime:        normalize.Duration(recipe.TotalTime),
			PlaceholderImage: core.IsPlaceholderImage(recipe.Image),
		},
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}
