package extract

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/gaurav-prasanna/recipepipe/core/normalize"
)

// page is the input shared by every heuristic strategy.
type page struct {
	doc       *goquery.Document
	sourceURL string

	short []string // lazily collected texts of short elements
}

// strategy is one way of finding a field. It reports ok only for a
// non-empty result.
type strategy[T any] func(p *page) (T, bool)

// cascade returns the result of the first strategy that succeeds.
func cascade[T any](p *page, strategies ...strategy[T]) T {
	for _, s := range strategies {
		if v, ok := s(p); ok {
			return v
		}
	}
	var zero T
	return zero
}

// extractHeuristic always returns a record; fields that no strategy
// could fill stay empty until Finalize substitutes placeholders.
func (e *Extractor) extractHeuristic(doc *goquery.Document, sourceURL string) *core.Recipe {
	p := &page{doc: doc, sourceURL: sourceURL}

	r := &core.Recipe{
		Title:       cascade(p, titleStrategies...),
		Description: cascade(p, descriptionStrategies...),
		Image:       normalize.ImageURL(cascade(p, imageStrategies...), sourceURL),
		Ingredients: cascade(p, ingredientStrategies...),
		Directions:  cascade(p, directionStrategies...),
		CookTime:    p.findTime(cookTimeRegex),
		PrepTime:    p.findTime(prepTimeRegex),
		TotalTime:   p.findTime(totalTimeRegex),
		Yield:       normalize.Yield(cascade(p, yieldStrategies...)),
	}
	r.Categories = heuristicCategories(p, r.Title, r.Ingredients)
	return r
}

var titleStrategies = []strategy[string]{
	textOf("h1"),
	textOf("title"),
	func(p *page) (string, bool) {
		u, err := url.Parse(p.sourceURL)
		if err != nil || u.Hostname() == "" {
			return "Recipe", true
		}
		return u.Hostname() + " Recipe", true
	},
}

var descriptionStrategies = []strategy[string]{
	func(p *page) (string, bool) {
		d := attr(p.doc.Find(`meta[name="description"]`).First(), "content")
		d = normalize.Text(d)
		return d, d != ""
	},
	boundedTextOf(`p[class*="description"], div[class*="description"]`),
	boundedTextOf(`p[class*="summary"], div[class*="summary"]`),
	boundedTextOf(`p[class*="intro"], div[class*="intro"]`),
	boundedTextOf("p"),
}

// textOf reads the normalized text of the first element matching selector.
func textOf(selector string) strategy[string] {
	return func(p *page) (string, bool) {
		text := normalize.Text(p.doc.Find(selector).First().Text())
		return text, text != ""
	}
}

// boundedTextOf is textOf restricted to 20..500 character blocks.
func boundedTextOf(selector string) strategy[string] {
	return func(p *page) (string, bool) {
		text := normalize.Text(p.doc.Find(selector).First().Text())
		n := runeLen(text)
		return text, n > 20 && n < 500
	}
}

var ingredientStrategies = []strategy[[]string]{
	// Containers named after ingredients.
	func(p *page) ([]string, bool) {
		var c collector
		p.doc.Find(`section[class*="ingredient"], div[class*="ingredient"], ul[class*="ingredient"]`).
			Each(func(_ int, section *goquery.Selection) {
				section.Find("li").Each(func(_ int, li *goquery.Selection) {
					c.addUnique(normalize.Text(li.Text()))
				})
			})
		return c.items, len(c.items) > 0
	},
	// Lists following an "Ingredients" heading.
	func(p *page) ([]string, bool) {
		var c collector
		eachHeading(p, []string{"ingredient"}, func(h *goquery.Selection) {
			listAfter(h, "ul, ol").Find("li").Each(func(_ int, li *goquery.Selection) {
				c.addUnique(normalize.Text(li.Text()))
			})
		})
		return c.items, len(c.items) > 0
	},
	// Any short unordered list item.
	func(p *page) ([]string, bool) {
		var c collector
		p.doc.Find("ul li").Each(func(_ int, li *goquery.Selection) {
			text := normalize.Text(li.Text())
			if n := runeLen(text); n > 3 && n < 200 && !strings.Contains(text, "http") {
				c.add(text)
			}
		})
		return c.items, len(c.items) > 0
	},
}

var directionStrategies = []strategy[[]string]{
	// Containers named after instructions.
	func(p *page) ([]string, bool) {
		var c collector
		p.doc.Find(`section[class*="instruction"], section[class*="direction"], div[class*="instruction"], div[class*="direction"], div[class*="method"]`).
			Each(func(_ int, section *goquery.Selection) {
				section.Find("li, p").Each(func(_ int, el *goquery.Selection) {
					if text := normalize.Text(el.Text()); runeLen(text) > 10 {
						c.addUnique(text)
					}
				})
			})
		return c.items, len(c.items) > 0
	},
	// A list, or a run of paragraphs, following a method heading.
	func(p *page) ([]string, bool) {
		var c collector
		keywords := []string{"instruction", "direction", "method", "preparation"}
		eachHeading(p, keywords, func(h *goquery.Selection) {
			steps := listAfter(h, "ol, ul").Find("li")
			if steps.Length() == 0 {
				steps = h.NextAllFiltered("p")
				if steps.Length() > maxParagraphSteps {
					steps = steps.Slice(0, maxParagraphSteps)
				}
			}
			steps.Each(func(_ int, el *goquery.Selection) {
				if text := normalize.Text(el.Text()); runeLen(text) > 10 {
					c.add(text)
				}
			})
		})
		return c.items, len(c.items) > 0
	},
	// Any ordered list item of step-like length.
	func(p *page) ([]string, bool) {
		var c collector
		p.doc.Find("ol li").Each(func(_ int, li *goquery.Selection) {
			text := normalize.Text(li.Text())
			if n := runeLen(text); n > 10 && n < 500 {
				c.add(text)
			}
		})
		return c.items, len(c.items) > 0
	},
}

// maxParagraphSteps bounds how many paragraphs after a heading are read.
const maxParagraphSteps = 10

// eachHeading calls fn for every h2-h4 whose text mentions a keyword.
func eachHeading(p *page, keywords []string, fn func(h *goquery.Selection)) {
	p.doc.Find("h2, h3, h4").Each(func(_ int, h *goquery.Selection) {
		if containsAny(strings.ToLower(h.Text()), keywords...) {
			fn(h)
		}
	})
}

// listAfter returns the list directly following h, or else the first
// list inside h's parent.
func listAfter(h *goquery.Selection, selector string) *goquery.Selection {
	if list := h.NextFiltered(selector); list.Length() > 0 {
		return list
	}
	return h.Parent().Find(selector).First()
}

type collector struct {
	items []string
	seen  map[string]bool
}

func (c *collector) add(s string) {
	if s != "" {
		c.items = append(c.items, s)
	}
}

func (c *collector) addUnique(s string) {
	if s == "" || c.seen[s] {
		return
	}
	if c.seen == nil {
		c.seen = make(map[string]bool)
	}
	c.seen[s] = true
	c.items = append(c.items, s)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
