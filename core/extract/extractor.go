// Package extract implements the Extractor interface.
// It recovers a recipe from a page by trying, in strict order:
//  1. JSON-LD structured data (schema.org Recipe nodes)
//  2. schema.org microdata (itemtype/itemprop markup)
//  3. heuristics over the raw DOM
//
// The first tier that yields a viable record wins outright; results are
// never merged across tiers. Extraction performs no I/O and holds no
// mutable state, so one Extractor may be shared across goroutines.
package extract

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/gaurav-prasanna/recipepipe/core/logger"
)

// ErrExtractionFailed is returned when no recipe could be recovered.
var ErrExtractionFailed = errors.New("failed to parse recipe from the provided URL, please try another recipe site")

// Tier names, as reported to the logger and metrics.
const (
	TierStructured = "structured"
	TierMicrodata  = "microdata"
	TierHeuristic  = "heuristic"
)

// Recorder receives extraction outcomes. metrics.Metrics implements it.
type Recorder interface {
	TierSucceeded(tier string)
	ExtractionFailed()
	JSONLDBlockFailed()
}

type nopRecorder struct{}

func (nopRecorder) TierSucceeded(string) {}
func (nopRecorder) ExtractionFailed()    {}
func (nopRecorder) JSONLDBlockFailed()   {}

// Extractor runs the tiered recipe extraction.
type Extractor struct {
	log     logger.Logger
	metrics Recorder
	now     func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for tier diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(e *Extractor) { e.log = l }
}

// WithMetrics sets the outcome recorder.
func WithMetrics(r Recorder) Option {
	return func(e *Extractor) { e.metrics = r }
}

// WithClock overrides the clock used for DateAdded.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		log:     logger.NewNop(),
		metrics: nopRecorder{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type tier struct {
	name string
	run  func(doc *goquery.Document, sourceURL string) *core.Recipe
	// terminal tiers are returned even when they are not viable.
	terminal bool
}

func (e *Extractor) tiers() []tier {
	return []tier{
		{name: TierStructured, run: e.extractStructured},
		{name: TierMicrodata, run: e.extractMicrodata},
		{name: TierHeuristic, run: e.extractHeuristic, terminal: true},
	}
}

// Extract parses raw markup and extracts a recipe from it.
func (e *Extractor) Extract(rawHTML string, sourceURL string) (*core.Recipe, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		e.metrics.ExtractionFailed()
		return nil, fmt.Errorf("%w: parsing HTML: %w", ErrExtractionFailed, err)
	}
	return e.ExtractDocument(doc, sourceURL)
}

// ExtractDocument extracts a recipe from an already-parsed document.
// The returned record's URL is always sourceURL.
func (e *Extractor) ExtractDocument(root *html.Node, sourceURL string) (*core.Recipe, error) {
	if root == nil {
		e.metrics.ExtractionFailed()
		return nil, fmt.Errorf("%w: empty document", ErrExtractionFailed)
	}
	doc := goquery.NewDocumentFromNode(root)
	log := e.log.With(logger.String("url", sourceURL))

	for _, t := range e.tiers() {
		candidate := t.run(doc, sourceURL)
		if candidate == nil {
			log.Debug("Tier found no recipe markup", logger.String("tier", t.name))
			continue
		}
		if !candidate.Viable() {
			if !t.terminal {
				log.Debug("Tier result not viable",
					logger.String("tier", t.name),
					logger.String("title", candidate.Title),
				)
				continue
			}
			log.Warn("No recipe content found, returning placeholders",
				logger.String("tier", t.name),
				logger.String("title", candidate.Title),
			)
		}

		candidate.Finalize(sourceURL, e.now())
		e.metrics.TierSucceeded(t.name)
		log.Debug("Recipe extracted",
			logger.String("tier", t.name),
			logger.String("title", candidate.Title),
			logger.Int("ingredients", len(candidate.Ingredients)),
			logger.Int("directions", len(candidate.Directions)),
		)
		return candidate, nil
	}

	e.metrics.ExtractionFailed()
	return nil, ErrExtractionFailed
}
