// Package importer runs the fetch, extract and save pipeline for one URL
// or a batch of URLs.
package importer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/gaurav-prasanna/recipepipe/core/logger"
	"github.com/gaurav-prasanna/recipepipe/core/store"
)

// ErrInvalidURL is returned for input that is not an absolute http(s) URL.
var ErrInvalidURL = errors.New("invalid recipe URL")

const defaultConcurrency = 4

// Saver persists an extracted recipe. store.Repository implements it.
type Saver interface {
	Save(ctx context.Context, ownerID string, recipe *core.Recipe) (*store.Record, error)
}

// Recorder counts import outcomes. metrics.Metrics implements it.
type Recorder interface {
	ImportFinished(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ImportFinished(string) {}

// Importer ties a Fetcher, an Extractor and a Saver together.
type Importer struct {
	fetcher     core.Fetcher
	extractor   core.Extractor
	saver       Saver
	log         logger.Logger
	metrics     Recorder
	concurrency int
	limiter     *rate.Limiter
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(i *Importer) { i.log = l }
}

// WithMetrics sets the outcome recorder.
func WithMetrics(r Recorder) Option {
	return func(i *Importer) { i.metrics = r }
}

// WithConcurrency bounds the number of parallel imports in ImportAll.
func WithConcurrency(n int) Option {
	return func(i *Importer) {
		if n > 0 {
			i.concurrency = n
		}
	}
}

// WithRate caps fetches per second across all workers. Zero or less
// disables the cap.
func WithRate(perSecond float64) Option {
	return func(i *Importer) {
		if perSecond > 0 {
			i.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		} else {
			i.limiter = rate.NewLimiter(rate.Inf, 0)
		}
	}
}

// New creates an Importer.
func New(f core.Fetcher, e core.Extractor, s Saver, opts ...Option) *Importer {
	i := &Importer{
		fetcher:     f,
		extractor:   e,
		saver:       s,
		log:         logger.NewNop(),
		metrics:     nopRecorder{},
		concurrency: defaultConcurrency,
		limiter:     rate.NewLimiter(rate.Inf, 0),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ValidateURL checks that raw is an absolute http(s) URL and returns it
// trimmed.
func ValidateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return raw, nil
}

// Import fetches rawURL, extracts its recipe and saves it for ownerID.
func (i *Importer) Import(ctx context.Context, ownerID, rawURL string) (*store.Record, error) {
	target, err := ValidateURL(rawURL)
	if err != nil {
		i.metrics.ImportFinished("invalid_url")
		return nil, err
	}
	log := i.log.With(logger.String("url", target))

	if err := i.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	page, err := i.fetcher.Fetch(ctx, target)
	if err != nil {
		i.metrics.ImportFinished("fetch_error")
		return nil, err
	}

	recipe, err := i.extractor.Extract(page.HTML, target)
	if err != nil {
		i.metrics.ImportFinished("extract_error")
		return nil, err
	}

	rec, err := i.saver.Save(ctx, ownerID, recipe)
	if err != nil {
		i.metrics.ImportFinished("store_error")
		return nil, fmt.Errorf("saving recipe: %w", err)
	}

	i.metrics.ImportFinished("ok")
	log.Info("Imported recipe", logger.String("id", rec.ID), logger.String("title", rec.Title))
	return rec, nil
}

// Result is the outcome of one URL in a batch.
type Result struct {
	URL    string
	Record *store.Record
	Err    error
}

// ImportAll imports every URL with bounded concurrency. Results are in
// input order; a failed URL does not stop the batch. Only cancellation of
// ctx ends it early, and the remaining URLs then report ctx.Err().
func (i *Importer) ImportAll(ctx context.Context, ownerID string, urls []string) []Result {
	results := make([]Result, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.concurrency)

	for idx, u := range urls {
		results[idx].URL = u
		if err := gctx.Err(); err != nil {
			results[idx].Err = err
			continue
		}
		g.Go(func() error {
			rec, err := i.Import(gctx, ownerID, u)
			results[idx].Record = rec
			results[idx].Err = err
			if err != nil {
				i.log.Warn("Import failed", logger.String("url", u), logger.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
