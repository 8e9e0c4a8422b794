package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/gaurav-prasanna/recipepipe/core/normalize"
)

const recipeItemTypeSelector = `[itemtype~="http://schema.org/Recipe"], [itemtype~="https://schema.org/Recipe"]`

// extractMicrodata reads itemprop-tagged descendants of the first
// schema.org Recipe item on the page.
func (e *Extractor) extractMicrodata(doc *goquery.Document, sourceURL string) *core.Recipe {
	root := doc.Find(recipeItemTypeSelector).First()
	if root.Length() == 0 {
		return nil
	}

	r := &core.Recipe{
		Title: firstNonEmpty(
			itemText(root.Find(`[itemprop="name"]`).First()),
			normalize.Text(doc.Find("h1").First().Text()),
			normalize.Text(doc.Find("title").First().Text()),
		),
		Description: itemText(root.Find(`[itemprop="description"]`).First()),
		Image:       normalize.ImageURL(microdataImage(root.Find(`[itemprop="image"]`).First()), sourceURL),
		CookTime:    attr(root.Find(`[itemprop="cookTime"]`).First(), "content"),
		PrepTime:    attr(root.Find(`[itemprop="prepTime"]`).First(), "content"),
		TotalTime:   attr(root.Find(`[itemprop="totalTime"]`).First(), "content"),
		Yield:       microdataYield(root.Find(`[itemprop="recipeYield"]`).First()),
	}

	root.Find(`[itemprop="recipeIngredient"], [itemprop="ingredients"]`).Each(func(_ int, s *goquery.Selection) {
		if text := itemText(s); text != "" {
			r.Ingredients = append(r.Ingredients, text)
		}
	})

	root.Find(`[itemprop="recipeInstructions"]`).Each(func(_ int, s *goquery.Selection) {
		steps := s.Find("li")
		if steps.Length() == 0 {
			steps = s
		}
		steps.Each(func(_ int, step *goquery.Selection) {
			if text := normalize.Text(step.Text()); text != "" {
				r.Directions = append(r.Directions, text)
			}
		})
	})

	var categories []string
	root.Find(`[itemprop="recipeCategory"]`).Each(func(_ int, s *goquery.Selection) {
		categories = append(categories, itemText(s))
	})
	r.Categories = normalize.Categories(categories...)

	return r
}

// itemText reads an item property's text, falling back to its content
// attribute for <meta itemprop> style properties.
func itemText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	if text := normalize.Text(s.Text()); text != "" {
		return text
	}
	return attr(s, "content")
}

func microdataImage(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	for _, name := range []string{"src", "content", "href"} {
		if v := attr(s, name); v != "" {
			return v
		}
	}
	return attr(s.Find("img").First(), "src")
}

func microdataYield(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	if v := attr(s, "content"); v != "" {
		return normalize.Yield(v)
	}
	return normalize.Yield(s.Text())
}

// attr returns the trimmed attribute of the first element, or "".
func attr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return strings.TrimSpace(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
