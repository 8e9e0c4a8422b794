// Package core defines the recipe record and the pipeline interfaces.
// Each stage of the pipeline sits behind a small interface so the
// commands, the importer and the API server can share them.
package core

import (
	"context"

	"golang.org/x/net/html"
)

// FetchResult holds the decoded page and response metadata from a fetch.
type FetchResult struct {
	URL         string
	StatusCode  int
	ContentType string
	// HTML is the response body transcoded to UTF-8.
	HTML string
}

// Fetcher retrieves a page from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Extractor recovers a recipe from raw markup or an already-parsed tree.
// Implementations perform no I/O.
type Extractor interface {
	Extract(rawHTML string, sourceURL string) (*Recipe, error)
	ExtractDocument(doc *html.Node, sourceURL string) (*Recipe, error)
}

// Renderer converts a recipe into a final output format.
type Renderer interface {
	Render(ctx context.Context, recipe *Recipe) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}

// Embedder generates a vector embedding for a text input.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}
