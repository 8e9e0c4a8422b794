package crawl

import (
	"net/url"
	"path"
	"strings"
)

// skippedExtensions name files that are never recipe pages.
var skippedExtensions = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, group := range []string{
		"png jpg jpeg gif svg webp avif ico bmp",
		"css js mjs json xml rss",
		"woff woff2 ttf eot otf",
		"mp4 webm mov mp3 wav",
		"zip tar gz rar",
		"pdf doc docx xls xlsx ppt pptx",
	} {
		for _, ext := range strings.Fields(group) {
			set["."+ext] = struct{}{}
		}
	}
	return set
}()

// trackingParams are dropped by NormalizeURL.
var trackingParams = []string{"utm_", "fbclid", "gclid", "mc_cid", "mc_eid"}

// IsSameDomain reports whether rawURL is on domain. Host comparison is
// case-insensitive and ignores a leading "www.".
func IsSameDomain(rawURL string, domain string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	return bareHost(u.Host) == bareHost(domain)
}

func bareHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

// MatchesPath reports whether the URL path contains filter, ignoring
// case. An empty filter matches everything.
func MatchesPath(rawURL, filter string) bool {
	if filter == "" {
		return true
	}
	u, err := url.Parse(rawURL)
	return err == nil && strings.Contains(strings.ToLower(u.Path), strings.ToLower(filter))
}

// IsStaticAsset reports whether the URL path ends in a media, script,
// font, archive or document extension.
func IsStaticAsset(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	_, skip := skippedExtensions[strings.ToLower(path.Ext(u.Path))]
	return skip
}

// NormalizeURL canonicalizes a page URL for deduplication: no fragment,
// no tracking parameters, lowercase host, and no trailing slash except
// on the root path.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	if u.RawQuery != "" {
		q := u.Query()
		for key := range q {
			if isTrackingParam(key) {
				q.Del(key)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func isTrackingParam(key string) bool {
	key = strings.ToLower(key)
	for _, p := range trackingParams {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}
