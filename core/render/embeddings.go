package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/gaurav-prasanna/recipepipe/core/chunk"
)

const (
	DefaultOllamaURL = "http://localhost:11434/api/embeddings"
	DefaultModel     = "nomic-embed-text"
	embeddingTimeout = 60 * time.Second
)

// OllamaEmbedder calls an Ollama-compatible embeddings endpoint.
type OllamaEmbedder struct {
	URL    string
	Model  string
	client *retryablehttp.Client
}

// NewOllamaEmbedder creates an OllamaEmbedder. Empty arguments take the
// local Ollama defaults.
func NewOllamaEmbedder(url, model string) *OllamaEmbedder {
	if url == "" {
		url = DefaultOllamaURL
	}
	if model == "" {
		model = DefaultModel
	}
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.Logger = nil
	client.HTTPClient.Timeout = embeddingTimeout
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return &OllamaEmbedder{URL: url, Model: model, client: client}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed returns the embedding vector for text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	body, err := json.Marshal(ollamaRequest{Model: e.Model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, e.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling embeddings API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("embeddings API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding embeddings response: %w", err)
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("embeddings API returned an empty vector")
	}
	return out.Embedding, nil
}

// EmbeddingsRenderer chunks the recipe text, embeds each chunk and writes
// a human-readable dump.
type EmbeddingsRenderer struct {
	embedder  core.Embedder
	model     string
	chunkSize int
}

// NewEmbeddingsRenderer creates an EmbeddingsRenderer. model is only
// recorded in the output header.
func NewEmbeddingsRenderer(embedder core.Embedder, model string, chunkSize int) *EmbeddingsRenderer {
	return &EmbeddingsRenderer{
		embedder:  embedder,
		model:     model,
		chunkSize: chunk.New(chunkSize).ChunkSize,
	}
}

// Render embeds every chunk of the recipe.
func (r *EmbeddingsRenderer) Render(ctx context.Context, recipe *core.Recipe) ([]byte, error) {
	chunks := chunk.New(r.chunkSize).Chunk(plainText(recipe))
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no content to embed")
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "# source: %s\n", recipe.URL)
	fmt.Fprintf(&buf, "# model: %s\n", r.model)
	fmt.Fprintf(&buf, "# chunk_size: %d\n\n", r.chunkSize)

	for i, text := range chunks {
		vec, err := r.embedder.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embedding chunk %d: %w", i+1, err)
		}

		fmt.Fprintf(&buf, "--- chunk %d ---\n", i+1)
		fmt.Fprintf(&buf, "TEXT:\n%s\n\n", text)

		vals := make([]string, len(vec))
		for j, v := range vec {
			vals[j] = fmt.Sprintf("%.4f", v)
		}
		fmt.Fprintf(&buf, "VECTOR:\n[%s]\n\n", strings.Join(vals, ", "))
	}
	return []byte(buf.String()), nil
}

// Extension returns the file extension for embeddings output.
func (r *EmbeddingsRenderer) Extension() string {
	return ".embeddings.txt"
}
