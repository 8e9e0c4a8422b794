package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/gaurav-prasanna/recipepipe/core/output"
	"github.com/gaurav-prasanna/recipepipe/core/render"
	"github.com/gaurav-prasanna/recipepipe/core/store"
)

var flagShowOutputDir string

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved recipe, or export it with a format flag",
	Long: `Show prints a saved recipe as Markdown. The id may be the full id or
a unique prefix, such as the 8 characters shown by list.

Examples:
  recipepipe show 0f8c2a4e
  recipepipe show 0f8c2a4e --json
  recipepipe show 0f8c2a4e --pdf --output_dir ./out`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	addFormatFlags(showCmd)
	showCmd.Flags().StringVar(&flagShowOutputDir, "output_dir", "", "Write the export here instead of printing it")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	if err := validateFlags(); err != nil {
		return err
	}

	ctx := cmd.Context()
	d, err := newDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	rec, err := resolveRecord(ctx, d, args[0])
	if err != nil {
		return err
	}

	var renderer core.Renderer = render.NewMarkdownRenderer()
	if selected := selectRenderer(d); selected != nil {
		renderer = selected
	}

	if flagShowOutputDir != "" || flagPDF {
		writer, err := output.New(flagShowOutputDir)
		if err != nil {
			return fmt.Errorf("initializing output writer: %w", err)
		}
		return export(ctx, &rec.Recipe, renderer, writer)
	}

	data, err := renderer.Render(ctx, &rec.Recipe)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	_, err = os.Stdout.Write(data)
	if err == nil && rec.Notes != "" {
		fmt.Fprintf(os.Stdout, "\nNotes: %s\n", rec.Notes)
	}
	return err
}

// resolveRecord finds a record by full id or unique id prefix.
func resolveRecord(ctx context.Context, d *deps, idOrPrefix string) (*store.Record, error) {
	rec, err := d.repo.Get(ctx, d.owner(), idOrPrefix)
	if err == nil || idOrPrefix == "" {
		return rec, err
	}

	all, listErr := d.repo.List(ctx, d.owner())
	if listErr != nil {
		return nil, listErr
	}
	var match *store.Record
	for _, r := range all {
		if strings.HasPrefix(r.ID, idOrPrefix) {
			if match != nil {
				return nil, fmt.Errorf("id prefix %q is ambiguous", idOrPrefix)
			}
			match = r
		}
	}
	if match == nil {
		return nil, err
	}
	return match, nil
}
