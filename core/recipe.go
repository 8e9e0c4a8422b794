package core

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Placeholder values substituted when a field could not be extracted.
const (
	PlaceholderIngredients = "Ingredients not found. Please check the original recipe."
	PlaceholderDirections  = "Directions not found. Please check the original recipe."
	DefaultCategory        = "Recipe"

	// PlaceholderImagePrefix marks generated, decorative image references.
	PlaceholderImagePrefix = "/placeholder"
)

// Recipe is the structured record recovered from a recipe page.
type Recipe struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Ingredients []string  `json:"ingredients"`
	Directions  []string  `json:"directions"`
	Categories  []string  `json:"categories"`
	CookTime    string    `json:"cookTime"`
	PrepTime    string    `json:"prepTime"`
	TotalTime   string    `json:"totalTime"`
	Yield       string    `json:"yield"`
	DateAdded   time.Time `json:"dateAdded"`
}

// PlaceholderImage returns the generated image reference for a title.
func PlaceholderImage(title string) string {
	q := strings.ReplaceAll(url.QueryEscape(title), "+", "%20")
	return PlaceholderImagePrefix + ".svg?height=400&width=600&query=" + q
}

// IsPlaceholderImage reports whether ref is a generated image reference.
func IsPlaceholderImage(ref string) bool {
	return strings.HasPrefix(ref, PlaceholderImagePrefix)
}

// Viable reports whether the candidate has a title and at least one
// ingredient or direction. It must be checked before Finalize, since
// placeholders would otherwise always satisfy it.
func (r *Recipe) Viable() bool {
	if r == nil || r.Title == "" {
		return false
	}
	return len(r.Ingredients) > 0 || len(r.Directions) > 0
}

// Finalize stamps identity and fills every required field that is still
// empty with its placeholder.
func (r *Recipe) Finalize(sourceURL string, now time.Time) {
	r.ID = uuid.NewString()
	r.URL = sourceURL
	r.DateAdded = now.UTC()

	if r.Image == "" {
		r.Image = PlaceholderImage(r.Title)
	}
	if len(r.Ingredients) == 0 {
		r.Ingredients = []string{PlaceholderIngredients}
	}
	if len(r.Directions) == 0 {
		r.Directions = []string{PlaceholderDirections}
	}
	if len(r.Categories) == 0 {
		r.Categories = []string{DefaultCategory}
	}
}

// Matches does a case-insensitive substring search over the title,
// ingredients and categories. An empty query matches everything.
func (r *Recipe) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(r.Title), q) {
		return true
	}
	for _, list := range [][]string{r.Ingredients, r.Categories} {
		for _, s := range list {
			if strings.Contains(strings.ToLower(s), q) {
				return true
			}
		}
	}
	return false
}
