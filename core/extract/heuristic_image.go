package extract

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// recipeImageSlots name common hero/recipe image slots, most specific
// first.
var recipeImageSlots = compileAll(
	`img[class*="hero"]`,
	`img[class*="featured"]`,
	`img[class*="recipe-image"]`,
	`img[class*="recipeImage"]`,
	`img[class*="recipe_image"]`,
	`img[class*="mainImage"]`,
	`img[class*="main-image"]`,
	`img[id*="recipe-image"]`,
	`img[data-pin-media]`,
	`.recipe-image img`,
	`.recipeImage img`,
	`.recipe_image img`,
	`.hero-photo img`,
	`.post-thumbnail img`,
	`.featured-image img`,
	`.entry-image img`,
	`figure img`,
)

// contentAreas name the containers that usually hold the post body.
var contentAreas = compileAll(
	"article",
	".post-content",
	".entry-content",
	".content",
	".recipe-content",
	"main",
	"#content",
	".main-content",
)

var photoExtRegex = regexp.MustCompile(`(?i)\.(jpe?g|png|webp)($|\?)`)

var imageStrategies = []strategy[string]{
	// Social card meta tags.
	func(p *page) (string, bool) {
		for _, sel := range []string{
			`meta[property="og:image"]`,
			`meta[name="twitter:image"]`,
			`meta[property="og:image:secure_url"]`,
		} {
			if v := attr(p.doc.Find(sel).First(), "content"); v != "" {
				return v, true
			}
		}
		return "", false
	},
	// Well-known recipe image slots.
	func(p *page) (string, bool) {
		for _, m := range recipeImageSlots {
			img := p.doc.FindMatcher(m).First()
			if img.Length() == 0 {
				continue
			}
			if src := firstAttr(img, "src", "data-src", "data-lazy-src", "data-pin-media"); src != "" {
				return src, true
			}
		}
		return "", false
	},
	// First large image in a content area.
	func(p *page) (string, bool) {
		for _, m := range contentAreas {
			var found string
			p.doc.FindMatcher(m).Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
				src := firstAttr(img, "src", "data-src", "data-lazy-src")
				if src != "" && largeEnough(img) {
					found = src
					return false
				}
				return true
			})
			if found != "" {
				return found, true
			}
		}
		return "", false
	},
	// First large photo anywhere.
	func(p *page) (string, bool) {
		var found string
		p.doc.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
			src := firstAttr(img, "src", "data-src")
			if src != "" && photoExtRegex.MatchString(src) && largeEnough(img) {
				found = src
				return false
			}
			return true
		})
		return found, found != ""
	},
	// Any image at all.
	func(p *page) (string, bool) {
		src := attr(p.doc.Find("img").First(), "src")
		return src, src != ""
	},
}

func compileAll(selectors ...string) []cascadia.Selector {
	out := make([]cascadia.Selector, len(selectors))
	for i, s := range selectors {
		out[i] = cascadia.MustCompile(s)
	}
	return out
}

// firstAttr returns the first non-empty attribute among attrs.
func firstAttr(s *goquery.Selection, attrs ...string) string {
	for _, name := range attrs {
		if v := attr(s, name); v != "" {
			return v
		}
	}
	return ""
}

// largeEnough accepts images over 300x200, and images whose size is not
// declared.
func largeEnough(img *goquery.Selection) bool {
	w := dimension(attr(img, "width"))
	h := dimension(attr(img, "height"))
	if w == 0 || h == 0 {
		return true
	}
	return w > 300 && h > 200
}

// dimension reads the leading integer of a size attribute such as
// "640" or "640px". Anything unparseable is 0.
func dimension(s string) int {
	n := 0
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			break
		}
		n = n*10 + int(ch-'0')
		if n > 1<<20 {
			break
		}
	}
	return n
}
