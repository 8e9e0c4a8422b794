package normalize

import (
	"net/url"
	"regexp"
	"strings"
)

var schemeRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

// ImageURL turns a discovered image reference into an absolute URL using
// the page it was found on. References that already carry a scheme
// (data URIs included) and generated placeholder paths are returned
// unchanged, as is everything when pageURL is not an absolute URL.
func ImageURL(ref, pageURL string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || schemeRegex.MatchString(ref) || strings.HasPrefix(ref, "/placeholder") {
		return ref
	}

	base, err := url.Parse(pageURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return ref
	}
	origin := base.Scheme + "://" + base.Host

	switch {
	case strings.HasPrefix(ref, "//"):
		return base.Scheme + ":" + ref
	case strings.HasPrefix(ref, "/"):
		return origin + ref
	}

	dir := base.EscapedPath()
	if i := strings.LastIndex(dir, "/"); i >= 0 {
		dir = dir[:i]
	} else {
		dir = ""
	}
	return origin + dir + "/" + ref
}
