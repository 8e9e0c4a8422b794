package render_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/gaurav-prasanna/recipepipe/core/render"
)

func sampleRecipe() *core.Recipe {
	return &core.Recipe{
		ID:          "0f8c2a4e-1111-2222-3333-444455556666",
		URL:         "https://cook.example/pancakes",
		Title:       "Fluffy Pancakes",
		Description: "Weekend breakfast.",
		Image:       "https://cook.example/p.jpg",
		Ingredients: []string{"2 eggs", "1 cup flour"},
		Directions:  []string{"Whisk everything.", "Fry in butter."},
		Categories:  []string{"Breakfast"},
		PrepTime:    "PT10M",
		CookTime:    "PT1H5M",
		Yield:       "4 servings",
		DateAdded:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestJSONRenderer(t *testing.T) {
	t.Parallel()

	r := render.NewJSONRenderer()
	assert.Equal(t, ".json", r.Extension())

	data, err := r.Render(context.Background(), sampleRecipe())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Fluffy Pancakes", got["title"])
	assert.Equal(t, "PT1H5M", got["cookTime"])
	assert.Equal(t, map[string]any{
		"cookTime":         "1 hr 5 mins",
		"prepTime":         "10 mins",
		"placeholderImage": false,
	}, got["display"])
}

func TestMarkdownRenderer(t *testing.T) {
	t.Parallel()

	r := render.NewMarkdownRenderer()
	assert.Equal(t, ".md", r.Extension())

	data, err := r.Render(context.Background(), sampleRecipe())
	require.NoError(t, err)

	md := string(data)
	assert.Contains(t, md, "# Fluffy Pancakes")
	assert.Contains(t, md, "Weekend breakfast.")
	assert.Contains(t, md, "https://cook.example/p.jpg")
	assert.Contains(t, md, "2 eggs")
	assert.Contains(t, md, "Fry in butter.")
	assert.Contains(t, md, "Prep: 10 mins")
	assert.Contains(t, md, "Serves: 4 servings")
	assert.NotContains(t, md, "<li>")
}

func TestMarkdownRendererSkipsPlaceholderImage(t *testing.T) {
	t.Parallel()

	rec := sampleRecipe()
	rec.Image = core.PlaceholderImage(rec.Title)

	data, err := render.NewMarkdownRenderer().Render(context.Background(), rec)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "placeholder.svg")
}

func TestPDFRenderer(t *testing.T) {
	t.Parallel()

	r := render.NewPDFRenderer()
	assert.Equal(t, ".pdf", r.Extension())

	rec := sampleRecipe()
	rec.Title = "Crème Brûlée"
	data, err := r.Render(context.Background(), rec)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
}

type fakeEmbedder struct {
	calls []string
	err   error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	return []float64{0.5, -0.25}, nil
}

func TestEmbeddingsRenderer(t *testing.T) {
	t.Parallel()

	emb := &fakeEmbedder{}
	r := render.NewEmbeddingsRenderer(emb, "test-model", 8)
	assert.Equal(t, ".embeddings.txt", r.Extension())

	data, err := r.Render(context.Background(), sampleRecipe())
	require.NoError(t, err)

	out := string(data)
	assert.True(t, strings.HasPrefix(out, "# source: https://cook.example/pancakes\n# model: test-model\n# chunk_size: 8\n"))
	assert.Contains(t, out, "--- chunk 1 ---")
	assert.Contains(t, out, "[0.5000, -0.2500]")
	require.Greater(t, len(emb.calls), 1)
	for _, c := range emb.calls {
		assert.LessOrEqual(t, len(strings.Fields(c)), 8)
	}
}

func TestEmbeddingsRendererPropagatesErrors(t *testing.T) {
	t.Parallel()

	r := render.NewEmbeddingsRenderer(&fakeEmbedder{err: errors.New("down")}, "m", 0)
	_, err := r.Render(context.Background(), sampleRecipe())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding chunk 1")
}

func TestOllamaEmbedder(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		if req.Prompt == "bad" {
			http.Error(w, "model not loaded", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"embedding":[1,2,3]}`))
	}))
	defer srv.Close()

	e := render.NewOllamaEmbedder(srv.URL, "")
	vec, err := e.Embed(context.Background(), "2 eggs")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, vec)

	_, err = e.Embed(context.Background(), "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "model not loaded")
}
