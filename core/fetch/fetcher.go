// Package fetch implements the Fetcher interface.
// It performs HTTP GET requests the way a desktop browser would, retries
// transient failures, and transcodes the body to UTF-8.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"

	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/gaurav-prasanna/recipepipe/core/logger"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultRetries   = 3
	defaultMaxBody   = 10 << 20
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// ErrUpstream marks a page that could not be retrieved: a transport
// failure or a non-2xx response.
var ErrUpstream = errors.New("failed to fetch URL")

// HTTPFetcher fetches web pages via HTTP.
type HTTPFetcher struct {
	client    *retryablehttp.Client
	userAgent string
	maxBody   int64
	log       logger.Logger
	observe   func(time.Duration, error)
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.client.HTTPClient.Timeout = d
		}
	}
}

// WithRetries sets how many times a failed attempt is retried.
func WithRetries(n int) Option {
	return func(f *HTTPFetcher) {
		if n >= 0 {
			f.client.RetryMax = n
		}
	}
}

// WithRetryWait bounds the backoff between attempts.
func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(f *HTTPFetcher) {
		f.client.RetryWaitMin = minWait
		f.client.RetryWaitMax = maxWait
	}
}

// WithUserAgent overrides the browser User-Agent.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodyBytes caps the accepted response size.
func WithMaxBodyBytes(n int64) Option {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBody = n
		}
	}
}

// WithLogger routes fetch and retry diagnostics to l.
func WithLogger(l logger.Logger) Option {
	return func(f *HTTPFetcher) {
		f.log = l
		f.client.Logger = leveledLogger{log: l}
	}
}

// WithObserver is called with the duration and outcome of every fetch.
func WithObserver(fn func(time.Duration, error)) Option {
	return func(f *HTTPFetcher) { f.observe = fn }
}

// New creates an HTTPFetcher.
func New(opts ...Option) *HTTPFetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = defaultRetries
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.HTTPClient.Timeout = defaultTimeout
	client.Logger = nil
	// Hand the final response back so status errors can be reported.
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	f := &HTTPFetcher{
		client:    client,
		userAgent: DefaultUserAgent,
		maxBody:   defaultMaxBody,
		log:       logger.NewNop(),
		observe:   func(time.Duration, error) {},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves the page at url and returns its body as UTF-8.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*core.FetchResult, error) {
	start := time.Now()
	result, err := f.fetch(ctx, url)
	elapsed := time.Since(start)
	f.observe(elapsed, err)

	if err != nil {
		f.log.Warn("Fetch failed", logger.String("url", url), logger.Duration("elapsed", elapsed), logger.Error(err))
		return nil, err
	}
	f.log.Debug("Fetched page",
		logger.String("url", url),
		logger.Int("status", result.StatusCode),
		logger.Int("bytes", len(result.HTML)),
		logger.Duration("elapsed", elapsed),
	)
	return result, nil
}

func (f *HTTPFetcher) fetch(ctx context.Context, url string) (*core.FetchResult, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %w", ErrUpstream, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected status %d for %s", ErrUpstream, resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %w", ErrUpstream, err)
	}
	if int64(len(body)) > f.maxBody {
		return nil, fmt.Errorf("%w: response from %s exceeds %d bytes", ErrUpstream, url, f.maxBody)
	}

	contentType := resp.Header.Get("Content-Type")
	return &core.FetchResult{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		HTML:        DecodeBody(body, contentType),
	}, nil
}

// DecodeBody transcodes body to UTF-8. A BOM, the Content-Type charset or
// a <meta charset> declaration decide the encoding; undeclared non-UTF-8
// bodies fall back to statistical detection.
func DecodeBody(body []byte, contentType string) string {
	enc, name, certain := charset.DetermineEncoding(body, contentType)
	if !certain && name == "windows-1252" && !declaresCharset(body) {
		if guess := detectCharset(body); guess != "" {
			if e, _ := charset.Lookup(guess); e != nil {
				enc = e
			}
		}
	}

	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}

// declaresCharset reports whether the document head names an encoding,
// in which case the prescan result is trusted.
func declaresCharset(body []byte) bool {
	head := body
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(bytes.ToLower(head), []byte("charset"))
}

func detectCharset(body []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(body)
	if err != nil || result == nil {
		return ""
	}
	return strings.ToLower(result.Charset)
}

// leveledLogger adapts Logger to retryablehttp's LeveledLogger.
type leveledLogger struct {
	log logger.Logger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.log.Error(msg, fields(kv)...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.log.Info(msg, fields(kv)...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.log.Debug(msg, fields(kv)...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.log.Warn(msg, fields(kv)...) }

func fields(kv []interface{}) []logger.Field {
	out := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, logger.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return out
}
