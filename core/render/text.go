package render

import (
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/gaurav-prasanna/recipepipe/core/normalize"
)

// plainText lays the recipe out one fact per line, which keeps chunk
// boundaries on ingredient and step boundaries.
func plainText(r *core.Recipe) string {
	var b strings.Builder
	b.WriteString(r.Title + "\n")
	if r.Description != "" {
		b.WriteString(r.Description + "\n")
	}
	if line := metaLine(r); line != "" {
		b.WriteString(line + "\n")
	}
	b.WriteString("Ingredients:\n")
	for _, ing := range r.Ingredients {
		b.WriteString("- " + ing + "\n")
	}
	b.WriteString("Directions:\n")
	for i, step := range r.Directions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	if len(r.Categories) > 0 {
		b.WriteString("Categories: " + strings.Join(r.Categories, ", ") + "\n")
	}
	return b.String()
}

// metaLine summarizes times and yield, e.g. "Prep: 10 mins | Serves: 4 servings".
func metaLine(r *core.Recipe) string {
	var parts []string
	for _, f := range []struct{ label, value string }{
		{"Prep", normalize.Duration(r.PrepTime)},
		{"Cook", normalize.Duration(r.CookTime)},
		{"Total", normalize.Duration(r.TotalTime)},
		{"Serves", r.Yield},
	} {
		if f.value != "" {
			parts = append(parts, f.label+": "+f.value)
		}
	}
	return strings.Join(parts, " | ")
}
