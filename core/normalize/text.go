// Package normalize holds the string routines shared by every extraction
// tier: entity decoding, yield canonicalization, image URL resolution,
// duration formatting and category folding.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// namedEntities is the fixed decode table. Numeric references are
// handled separately, so only named forms live here.
var namedEntities = map[string]string{
	"amp":    "&",
	"lt":     "<",
	"gt":     ">",
	"quot":   `"`,
	"apos":   "'",
	"nbsp":   "\u00a0",
	"ndash":  "–",
	"mdash":  "—",
	"hellip": "…",
	"lsquo":  "‘",
	"rsquo":  "’",
	"ldquo":  "“",
	"rdquo":  "”",
	"bull":   "•",
	"middot": "·",
	"deg":    "°",
	"times":  "×",
	"frac12": "½",
	"frac13": "⅓",
	"frac23": "⅔",
	"frac14": "¼",
	"frac34": "¾",
	"copy":   "©",
	"reg":    "®",
	"trade":  "™",
	"eacute": "é",
	"egrave": "è",
	"ecirc":  "ê",
	"agrave": "à",
	"aacute": "á",
	"iacute": "í",
	"oacute": "ó",
	"uacute": "ú",
	"ntilde": "ñ",
	"ccedil": "ç",
	"auml":   "ä",
	"ouml":   "ö",
	"uuml":   "ü",
	"szlig":  "ß",
}

var entityRegex = regexp.MustCompile(`&(#[0-9]+|#[xX][0-9a-fA-F]+|[a-zA-Z][a-zA-Z0-9]*);`)

// Text decodes character entities, collapses whitespace runs to a single
// space and trims. Decoding repeats until nothing changes, so
// Text(Text(s)) == Text(s). Unknown or malformed entities are kept as
// literal text.
func Text(s string) string {
	for {
		decoded := entityRegex.ReplaceAllStringFunc(s, decodeEntity)
		if decoded == s {
			break
		}
		s = decoded
	}
	return strings.Join(strings.Fields(s), " ")
}

func decodeEntity(ref string) string {
	body := ref[1 : len(ref)-1]
	if body[0] != '#' {
		if v, ok := namedEntities[body]; ok {
			return v
		}
		return ref
	}

	var (
		n   uint64
		err error
	)
	if len(body) > 1 && (body[1] == 'x' || body[1] == 'X') {
		n, err = strconv.ParseUint(body[2:], 16, 32)
	} else {
		n, err = strconv.ParseUint(body[1:], 10, 32)
	}
	if err != nil || n == 0 {
		return ref
	}
	r := rune(n)
	if !utf8.ValidRune(r) {
		return ref
	}
	return string(r)
}
