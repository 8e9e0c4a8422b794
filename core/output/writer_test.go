package output_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/gaurav-prasanna/recipepipe/core/output"
)

func TestSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Fluffy Pancakes", "fluffy-pancakes"},
		{"Crème Brûlée (Classic!)", "creme-brulee-classic"},
		{"  --Mac & Cheese--  ", "mac-cheese"},
		{"食べ物", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, output.Slug(tt.in), tt.in)
	}
}

func TestFilename(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "fluffy-pancakes-0f8c2a4e",
		output.Filename(&core.Recipe{Title: "Fluffy Pancakes", ID: "0f8c2a4e-1111-2222-3333-444455556666"}))
	assert.Equal(t, "recipe-abc", output.Filename(&core.Recipe{Title: "!!!", ID: "abc"}))
	assert.Equal(t, "soup", output.Filename(&core.Recipe{Title: "Soup"}))
}

func TestWriterWrite(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "out")
	w, err := output.New(dir)
	require.NoError(t, err)

	rec := &core.Recipe{Title: "Soup", ID: "12345678-90ab"}
	path, err := w.Write(rec, []byte("hot"), ".md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "soup-12345678.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hot", string(data))
}
