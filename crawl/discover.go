// Package crawl discovers candidate recipe pages on a site for
// import --all. It reads sitemap.xml first and falls back to following
// same-domain links.
package crawl

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/gaurav-prasanna/recipepipe/core/logger"
)

const (
	defaultMaxPages   = 100
	maxNestedSitemaps = 10
)

// DefaultPathFilter keeps URLs whose path mentions recipes.
const DefaultPathFilter = "recipe"

// sitemap covers both a urlset and a sitemapindex document.
type sitemap struct {
	URLs     []sitemapLoc `xml:"url"`
	Sitemaps []sitemapLoc `xml:"sitemap"`
}

type sitemapLoc struct {
	Loc string `xml:"loc"`
}

// Discoverer finds recipe pages on a site.
type Discoverer struct {
	fetcher  core.Fetcher
	maxPages int
	filter   string
	log      logger.Logger
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithMaxPages caps how many pages link crawling visits and how many
// URLs are returned.
func WithMaxPages(n int) Option {
	return func(d *Discoverer) {
		if n > 0 {
			d.maxPages = n
		}
	}
}

// WithPathFilter keeps only URLs whose path contains filter,
// case-insensitively. An empty filter keeps everything.
func WithPathFilter(filter string) Option {
	return func(d *Discoverer) { d.filter = strings.ToLower(filter) }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(d *Discoverer) { d.log = l }
}

// NewDiscoverer creates a Discoverer that fetches through fetcher.
func NewDiscoverer(fetcher core.Fetcher, opts ...Option) *Discoverer {
	d := &Discoverer{
		fetcher:  fetcher,
		maxPages: defaultMaxPages,
		filter:   DefaultPathFilter,
		log:      logger.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Discover returns baseURL followed by the candidate pages found on its
// site, deduplicated and in discovery order.
func (d *Discoverer) Discover(ctx context.Context, baseURL string) ([]string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("parsing base URL %q: invalid URL", baseURL)
	}
	domain := parsed.Host

	sitemapURL := fmt.Sprintf("%s://%s/sitemap.xml", parsed.Scheme, domain)
	urls := d.fromSitemap(ctx, sitemapURL, domain)
	if len(urls) > 0 {
		d.log.Info("Discovered pages from sitemap", logger.String("sitemap", sitemapURL), logger.Int("count", len(urls)))
		return d.collect(baseURL, urls), nil
	}

	urls = d.fromLinks(ctx, baseURL, domain)
	d.log.Info("Discovered pages from links", logger.String("start", baseURL), logger.Int("count", len(urls)))
	return d.collect(baseURL, urls), nil
}

// collect puts the start URL first, applies the path filter and the cap.
func (d *Discoverer) collect(baseURL string, found []string) []string {
	queue := NewQueue()
	queue.Add(NormalizeURL(baseURL))
	for _, u := range found {
		if queue.Len() >= d.maxPages {
			break
		}
		if MatchesPath(u, d.filter) {
			queue.Add(u)
		}
	}
	return queue.All()
}

// fromSitemap reads a sitemap, following a sitemap index one level deep
// per nested document. Failures yield no URLs.
func (d *Discoverer) fromSitemap(ctx context.Context, sitemapURL, domain string) []string {
	pending := []string{sitemapURL}
	seen := map[string]bool{sitemapURL: true}
	var urls []string

	for fetched := 0; len(pending) > 0 && fetched <= maxNestedSitemaps; fetched++ {
		current := pending[0]
		pending = pending[1:]

		doc, err := d.fetchSitemap(ctx, current)
		if err != nil {
			d.log.Debug("Skipping sitemap", logger.String("sitemap", current), logger.Error(err))
			continue
		}

		for _, u := range doc.URLs {
			loc := strings.TrimSpace(u.Loc)
			if IsSameDomain(loc, domain) && !IsStaticAsset(loc) {
				urls = append(urls, NormalizeURL(loc))
			}
		}
		for _, s := range doc.Sitemaps {
			loc := strings.TrimSpace(s.Loc)
			if IsSameDomain(loc, domain) && !seen[loc] {
				seen[loc] = true
				pending = append(pending, loc)
			}
		}
	}
	return urls
}

func (d *Discoverer) fetchSitemap(ctx context.Context, sitemapURL string) (*sitemap, error) {
	result, err := d.fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	dec := xml.NewDecoder(bytes.NewReader([]byte(result.HTML)))
	// The fetcher already transcoded the body to UTF-8.
	dec.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }

	var doc sitemap
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding sitemap: %w", err)
	}
	return &doc, nil
}

// fromLinks walks same-domain links breadth first.
func (d *Discoverer) fromLinks(ctx context.Context, startURL, domain string) []string {
	queue := NewQueue()
	queue.Add(NormalizeURL(startURL))

	for queue.HasNext() && queue.Visited() < d.maxPages {
		if ctx.Err() != nil {
			break
		}
		current := queue.Next()

		result, err := d.fetcher.Fetch(ctx, current)
		if err != nil {
			d.log.Debug("Skipping page", logger.String("url", current), logger.Error(err))
			continue
		}

		links, err := extractLinks(result.HTML, current)
		if err != nil {
			continue
		}
		for _, link := range links {
			if IsSameDomain(link, domain) && !IsStaticAsset(link) {
				queue.Add(NormalizeURL(link))
			}
		}
	}
	return queue.All()
}

// extractLinks returns every resolved <a href> on the page.
func extractLinks(html, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if resolved := resolveURL(strings.TrimSpace(href), base); resolved != "" {
			links = append(links, resolved)
		}
	})
	return links, nil
}

// resolveURL resolves href against base, dropping non-page schemes and
// fragments.
func resolveURL(href string, base *url.URL) string {
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	for _, prefix := range []string{"mailto:", "javascript:", "tel:", "data:"} {
		if strings.HasPrefix(strings.ToLower(href), prefix) {
			return ""
		}
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(parsed)
	resolved.Fragment = ""
	return resolved.String()
}
