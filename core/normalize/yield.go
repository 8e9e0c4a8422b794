package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	yieldLabelRegex = regexp.MustCompile(`(?i)^(?:yield|serves|servings|makes|for)s?:?\s*`)
	digitsRegex     = regexp.MustCompile(`^\d+$`)
	rangeRegex      = regexp.MustCompile(`^\d+-\d+$`)
)

// Yield canonicalizes free-form serving text: "Serves: 4" and "4" become
// "4 servings", "4-6" becomes "4-6 servings", "one" becomes "1 serving".
// Anything else is returned trimmed.
func Yield(raw string) string {
	s := strings.TrimSpace(Text(raw))
	s = strings.TrimSpace(yieldLabelRegex.ReplaceAllString(s, ""))

	switch {
	case s == "1" || strings.EqualFold(s, "one"):
		return "1 serving"
	case digitsRegex.MatchString(s), rangeRegex.MatchString(s):
		return s + " servings"
	}
	return s
}

// YieldFromNumber formats a numeric yield the way a JSON number prints
// and canonicalizes it.
func YieldFromNumber(n float64) string {
	return Yield(strconv.FormatFloat(n, 'f', -1, 64))
}
