package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/gaurav-prasanna/recipepipe/core"
)

var cardTemplate = template.Must(template.New("card").Parse(`<h1>{{.Recipe.Title}}</h1>
{{if .Recipe.Description}}<p>{{.Recipe.Description}}</p>{{end}}
{{if .Image}}<p><img src="{{.Image}}" alt="{{.Recipe.Title}}"></p>{{end}}
{{if .Meta}}<p><em>{{.Meta}}</em></p>{{end}}
<h2>Ingredients</h2>
<ul>{{range .Recipe.Ingredients}}<li>{{.}}</li>{{end}}</ul>
<h2>Directions</h2>
<ol>{{range .Recipe.Directions}}<li>{{.}}</li>{{end}}</ol>
{{if .Recipe.Categories}}<p><strong>Categories:</strong> {{range $i, $c := .Recipe.Categories}}{{if $i}}, {{end}}{{$c}}{{end}}</p>{{end}}
<p>Source: <a href="{{.Recipe.URL}}">{{.Recipe.URL}}</a></p>
`))

// MarkdownRenderer renders a recipe card. The card is built as HTML and
// converted, so escaping of recipe text is left to the converter.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render returns the recipe card as Markdown.
func (r *MarkdownRenderer) Render(_ context.Context, recipe *core.Recipe) ([]byte, error) {
	data := struct {
		Recipe *core.Recipe
		Image  string
		Meta   string
	}{Recipe: recipe, Meta: metaLine(recipe)}
	if !core.IsPlaceholderImage(recipe.Image) {
		data.Image = recipe.Image
	}

	var card bytes.Buffer
	if err := cardTemplate.Execute(&card, data); err != nil {
		return nil, fmt.Errorf("building recipe card: %w", err)
	}

	markdown, err := htmltomarkdown.ConvertString(card.String())
	if err != nil {
		return nil, fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return []byte(markdown + "\n"), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}
