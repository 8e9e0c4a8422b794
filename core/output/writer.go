// Package output writes rendered recipes to disk. File names are derived
// from the recipe title and id, e.g. fluffy-pancakes-0f8c2a4e.md.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/gaurav-prasanna/recipepipe/core"
)

const maxSlugLen = 60

// Writer writes rendered output to disk.
type Writer struct {
	OutputDir string
}

// New creates a Writer targeting outputDir, creating it if needed.
// An empty outputDir means the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Writer{OutputDir: outputDir}, nil
}

// Write stores data for recipe and returns the path written.
func (w *Writer) Write(recipe *core.Recipe, data []byte, ext string) (string, error) {
	path := filepath.Join(w.OutputDir, Filename(recipe)+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// Filename returns the extension-less file name for recipe.
func Filename(recipe *core.Recipe) string {
	name := Slug(recipe.Title)
	if name == "" {
		name = "recipe"
	}
	id := strings.ReplaceAll(recipe.ID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	if id != "" {
		name += "-" + id
	}
	return name
}

// Slug lowercases s, folds accents and joins alphanumeric runs with "-".
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, ch := range norm.NFKD.String(s) {
		switch {
		case unicode.Is(unicode.Mn, ch):
			continue
		case ch < unicode.MaxASCII && (unicode.IsLetter(ch) || unicode.IsDigit(ch)):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(unicode.ToLower(ch))
		default:
			dash = true
		}
		if b.Len() >= maxSlugLen {
			break
		}
	}
	return b.String()
}
