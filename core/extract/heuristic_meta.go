package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gaurav-prasanna/recipepipe/core/normalize"
)

// shortTextLimit keeps regex mining away from long prose blocks.
const shortTextLimit = 100

const timeUnit = `(\d+\s*(?:minute|min|hour|hr)s?)`

var (
	cookTimeRegex  = regexp.MustCompile(`(?i)cook(?:ing)?\s*time:?\s*` + timeUnit)
	prepTimeRegex  = regexp.MustCompile(`(?i)prep(?:aration)?\s*time:?\s*` + timeUnit)
	totalTimeRegex = regexp.MustCompile(`(?i)total\s*time:?\s*` + timeUnit)
)

var yieldPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)serves:?\s*(\d+(?:-\d+)?(?:\s*(?:people|persons|servings))?)`),
	regexp.MustCompile(`(?i)servings:?\s*(\d+(?:-\d+)?)`),
	regexp.MustCompile(`(?i)yield:?\s*(\d+(?:-\d+)?(?:\s*(?:servings|portions))?)`),
	regexp.MustCompile(`(?i)makes:?\s*(\d+(?:-\d+)?(?:\s*(?:servings|portions|people))?)`),
	regexp.MustCompile(`(?i)for:?\s*(\d+(?:-\d+)?(?:\s*(?:people|persons|servings))?)`),
}

var servingNumberRegex = regexp.MustCompile(`\d+(?:-\d+)?`)

var titleCategoryRules = []struct {
	keywords []string
	category string
}{
	{[]string{"dinner", "meal"}, "Dinner"},
	{[]string{"dessert", "cake", "cookie"}, "Dessert"},
	{[]string{"quick", "easy", "simple"}, "Quick & Easy"},
}

var meatKeywords = []string{"chicken", "beef", "pork", "meat", "fish", "salmon", "tuna", "shrimp"}

// heuristicCategories unions meta keywords, title-derived tags and a
// Vegetarian tag when no extracted ingredient mentions meat, which
// includes pages where no ingredients were found.
func heuristicCategories(p *page, title string, ingredients []string) []string {
	var values []string

	if keywords := attr(p.doc.Find(`meta[name="keywords"]`).First(), "content"); keywords != "" {
		for _, k := range strings.Split(keywords, ",") {
			if k = normalize.Text(k); k != "" && runeLen(k) < 20 {
				values = append(values, k)
			}
		}
	}

	lower := strings.ToLower(title)
	for _, rule := range titleCategoryRules {
		if containsAny(lower, rule.keywords...) {
			values = append(values, rule.category)
		}
	}

	if !mentionsMeat(ingredients) {
		values = append(values, "Vegetarian")
	}
	return normalize.Categories(values...)
}

func mentionsMeat(ingredients []string) bool {
	for _, ing := range ingredients {
		if containsAny(strings.ToLower(ing), meatKeywords...) {
			return true
		}
	}
	return false
}

// shortTexts returns the trimmed text of every element shorter than
// shortTextLimit characters, in document order.
func (p *page) shortTexts() []string {
	if p.short != nil {
		return p.short
	}
	p.short = []string{}
	p.doc.Find("*").Not("script, style, noscript").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" && runeLen(text) < shortTextLimit {
			p.short = append(p.short, text)
		}
	})
	return p.short
}

// findTime returns the first duration captured by re in a short element.
func (p *page) findTime(re *regexp.Regexp) string {
	for _, text := range p.shortTexts() {
		if m := re.FindStringSubmatch(text); m != nil {
			return normalize.Text(m[1])
		}
	}
	return ""
}

var yieldStrategies = []strategy[string]{
	// Serving phrases in short text.
	func(p *page) (string, bool) {
		for _, text := range p.shortTexts() {
			if !containsAny(strings.ToLower(text), "serves", "servings", "yield", "makes") {
				continue
			}
			for _, re := range yieldPatterns {
				if m := re.FindStringSubmatch(text); m != nil {
					return strings.TrimSpace(m[1]), true
				}
			}
		}
		return "", false
	},
	// Elements named after yield or servings.
	func(p *page) (string, bool) {
		var found string
		p.doc.Find(`[class*="yield"], [class*="serving"], [id*="yield"], [id*="serving"]`).
			EachWithBreak(func(_ int, s *goquery.Selection) bool {
				text := strings.TrimSpace(s.Text())
				if runeLen(text) >= shortTextLimit {
					return true
				}
				if n := servingNumberRegex.FindString(text); n != "" {
					found = n
				} else {
					found = text
				}
				return found == ""
			})
		return found, found != ""
	},
	// Data attributes.
	func(p *page) (string, bool) {
		var found string
		p.doc.Find("[data-serves], [data-yield], [data-servings]").
			EachWithBreak(func(_ int, s *goquery.Selection) bool {
				found = firstAttr(s, "data-serves", "data-yield", "data-servings")
				return found == ""
			})
		return found, found != ""
	},
	// A servings meta tag.
	func(p *page) (string, bool) {
		v := attr(p.doc.Find(`meta[name="servings"], meta[property="servings"]`).First(), "content")
		return v, v != ""
	},
}
