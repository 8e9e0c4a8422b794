package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/gaurav-prasanna/recipepipe/core/logger"
	"github.com/gaurav-prasanna/recipepipe/core/normalize"
)

// maxSearchDepth caps recursion when walking a JSON-LD graph.
const maxSearchDepth = 32

// markupPolicy strips any markup publishers leave inside JSON-LD strings.
var markupPolicy = bluemonday.StrictPolicy()

// extractStructured maps the first Recipe node of each JSON-LD block in
// turn and returns the first viable one. Blocks that fail to parse are
// skipped. When no block is viable the first mapped candidate is returned
// so the caller can report it.
func (e *Extractor) extractStructured(doc *goquery.Document, sourceURL string) *core.Recipe {
	var found, fallback *core.Recipe
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		v, err := ParseValue(s.Text())
		if err != nil {
			e.log.Debug("Skipping malformed JSON-LD block",
				logger.Int("block", i),
				logger.String("url", sourceURL),
				logger.Error(err),
			)
			e.metrics.JSONLDBlockFailed()
			return true
		}
		nodes := FindRecipes(v)
		if len(nodes) == 0 {
			return true
		}
		candidate := mapRecipeNode(nodes[0], sourceURL)
		if candidate.Viable() {
			found = candidate
			return false
		}
		if fallback == nil {
			fallback = candidate
		}
		return true
	})
	if found != nil {
		return found
	}
	return fallback
}

// FindRecipes searches a JSON-LD value depth-first for Recipe nodes.
// Arrays are searched element by element, a Recipe-typed object is its
// own match, an @graph array is filtered for Recipe entries, and
// otherwise every nested object or array member is searched in order.
func FindRecipes(v *Value) []*Value {
	return findRecipes(v, 0)
}

func findRecipes(v *Value, depth int) []*Value {
	if v == nil || depth > maxSearchDepth {
		return nil
	}

	switch v.Kind {
	case Array:
		for _, item := range v.Items {
			if found := findRecipes(item, depth+1); len(found) > 0 {
				return found
			}
		}
	case Object:
		if v.HasType("Recipe") {
			return []*Value{v}
		}
		if graph := v.Get("@graph"); graph.IsArray() {
			var matches []*Value
			for _, item := range graph.Items {
				if item.IsObject() && item.HasType("Recipe") {
					matches = append(matches, item)
				}
			}
			if len(matches) > 0 {
				return matches
			}
		}
		for _, m := range v.Members {
			if !m.Value.IsObject() && !m.Value.IsArray() {
				continue
			}
			if found := findRecipes(m.Value, depth+1); len(found) > 0 {
				return found
			}
		}
	}
	return nil
}

func mapRecipeNode(node *Value, sourceURL string) *core.Recipe {
	r := &core.Recipe{
		Title:       cleanString(node.Get("name").Text()),
		Description: cleanString(node.Get("description").Text()),
		Image:       normalize.ImageURL(structuredImage(node.Get("image")), sourceURL),
		Directions:  structuredDirections(node.Get("recipeInstructions"), 0),
		Categories:  structuredCategories(node),
		Yield:       structuredYield(node.Get("recipeYield")),
		CookTime:    node.Get("cookTime").Text(),
		PrepTime:    node.Get("prepTime").Text(),
		TotalTime:   node.Get("totalTime").Text(),
	}

	r.Ingredients = stringList(node.Get("recipeIngredient"))
	if len(r.Ingredients) == 0 {
		r.Ingredients = stringList(node.Get("ingredients"))
	}
	return r
}

// cleanString decodes entities, strips markup and normalizes whitespace.
func cleanString(s string) string {
	if s == "" {
		return ""
	}
	return normalize.Text(markupPolicy.Sanitize(normalize.Text(s)))
}

func structuredImage(v *Value) string {
	switch {
	case v.IsString():
		return v.Str
	case v.IsArray():
		for _, item := range v.Items {
			if item.IsString() && item.Str != "" {
				return item.Str
			}
			if u := imageObjectURL(item); u != "" {
				return u
			}
		}
	case v.IsObject():
		return imageObjectURL(v)
	}
	return ""
}

func imageObjectURL(v *Value) string {
	if !v.IsObject() {
		return ""
	}
	if u := v.Get("url").Text(); u != "" {
		return u
	}
	return v.Get("@id").Text()
}

// stringList reads a string or an array of scalars, dropping entries
// that are empty after cleaning.
func stringList(v *Value) []string {
	var out []string
	add := func(s string) {
		if s = cleanString(s); s != "" {
			out = append(out, s)
		}
	}
	switch {
	case v.IsArray():
		for _, item := range v.Items {
			add(item.Text())
		}
	default:
		add(v.Text())
	}
	return out
}

// structuredDirections accepts a single string, a HowToStep object, or an
// array mixing strings, HowToSteps and HowToSections.
func structuredDirections(v *Value, depth int) []string {
	if v == nil || depth > maxSearchDepth {
		return nil
	}

	var out []string
	switch {
	case v.IsString():
		if s := cleanString(v.Str); s != "" {
			out = append(out, s)
		}
	case v.IsArray():
		for _, item := range v.Items {
			out = append(out, structuredDirections(item, depth+1)...)
		}
	case v.IsObject():
		if steps := v.Get("itemListElement"); steps != nil {
			return structuredDirections(steps, depth+1)
		}
		text := cleanString(v.Get("text").Text())
		if text == "" {
			text = cleanString(v.Get("name").Text())
		}
		if text != "" {
			out = append(out, text)
		}
	}
	return out
}

func structuredCategories(node *Value) []string {
	var values []string
	values = append(values, stringList(node.Get("recipeCategory"))...)

	keywords := node.Get("keywords")
	if keywords.IsString() {
		values = append(values, strings.Split(keywords.Str, ",")...)
	} else {
		values = append(values, stringList(keywords)...)
	}
	return normalize.Categories(values...)
}

func structuredYield(v *Value) string {
	switch {
	case v == nil:
		return ""
	case v.Kind == Number:
		return normalize.YieldFromNumber(v.Number)
	case v.IsString():
		return normalize.Yield(v.Str)
	case v.IsArray():
		for _, item := range v.Items {
			if item.IsString() && strings.TrimSpace(item.Str) != "" {
				return normalize.Yield(item.Str)
			}
		}
	}
	return ""
}
