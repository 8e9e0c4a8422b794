package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/gaurav-prasanna/recipepipe/core/importer"
	"github.com/gaurav-prasanna/recipepipe/core/output"
	"github.com/gaurav-prasanna/recipepipe/core/render"
	"github.com/gaurav-prasanna/recipepipe/crawl"
)

// Flag variables.
var (
	flagAll        bool
	flagPDF        bool
	flagMarkdown   bool
	flagJSON       bool
	flagEmbeddings bool
	flagModel      string
	flagChunkSize  int
	flagOutputDir  string
	flagFilter     string
	flagMaxPages   int
)

var importCmd = &cobra.Command{
	Use:   "import <url>",
	Short: "Import a recipe from a URL",
	Long: `Import fetches a recipe page, extracts the recipe and saves it to the
collection. With an output format flag the recipe is also exported.

Examples:
  recipepipe import https://example.com/recipes/pancakes
  recipepipe import https://example.com/recipes/pancakes --markdown --output_dir ./out
  recipepipe import https://example.com --all --filter recipe
  recipepipe import https://example.com/recipes/pancakes --embeddings --model nomic-embed-text`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVar(&flagAll, "all", false, "Discover and import every recipe page on the site")

	addFormatFlags(importCmd)
	importCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory for exports (default: current directory)")

	importCmd.Flags().StringVar(&flagFilter, "filter", crawl.DefaultPathFilter, "With --all, only import URLs whose path contains this text")
	importCmd.Flags().IntVar(&flagMaxPages, "max_pages", 0, "With --all, maximum pages to visit (default import.max_pages)")
}

// addFormatFlags registers the mutually exclusive output format flags.
func addFormatFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&flagPDF, "pdf", false, "Export PDF")
	cmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "Export Markdown")
	cmd.Flags().BoolVar(&flagJSON, "json", false, "Export JSON")
	cmd.Flags().BoolVar(&flagEmbeddings, "embeddings", false, "Export embeddings")
	cmd.Flags().StringVar(&flagModel, "model", "", "Embedding model (default embeddings.model)")
	cmd.Flags().IntVar(&flagChunkSize, "chunk_size", 0, "Word chunk size for embeddings (default embeddings.chunk_size)")
}

func runImport(cmd *cobra.Command, args []string) error {
	if err := validateFlags(); err != nil {
		return err
	}
	rawURL, err := importer.ValidateURL(args[0])
	if err != nil {
		return fmt.Errorf("%w (must include scheme, e.g. https://example.com)", err)
	}

	ctx := cmd.Context()
	d, err := newDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	renderer := selectRenderer(d)
	var writer *output.Writer
	if renderer != nil {
		if writer, err = output.New(flagOutputDir); err != nil {
			return fmt.Errorf("initializing output writer: %w", err)
		}
	}

	if flagAll {
		return runAll(cmd, d, rawURL, renderer, writer)
	}

	rec, err := d.importer.Import(ctx, d.owner(), rawURL)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Imported %q (%s)\n", rec.Title, rec.ID)
	return export(ctx, &rec.Recipe, renderer, writer)
}

// runAll discovers recipe pages on the site and imports each one.
func runAll(cmd *cobra.Command, d *deps, rawURL string, renderer core.Renderer, writer *output.Writer) error {
	ctx := cmd.Context()
	maxPages := flagMaxPages
	if maxPages <= 0 {
		maxPages = d.cfg.Import.MaxPages
	}
	filter := pathFilter(cmd, d)

	fmt.Fprintf(os.Stdout, "Discovering pages from %s...\n", rawURL)
	discoverer := crawl.NewDiscoverer(d.fetcher,
		crawl.WithMaxPages(maxPages),
		crawl.WithPathFilter(filter),
		crawl.WithLogger(d.log),
	)
	urls, err := discoverer.Discover(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("discovering pages: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Found %d pages to import\n", len(urls))

	var errCount int
	for i, res := range d.importer.ImportAll(ctx, d.owner(), urls) {
		if res.Err != nil {
			fmt.Fprintf(os.Stderr, "[%d/%d] ✗ %s: %v\n", i+1, len(urls), res.URL, res.Err)
			errCount++
			continue
		}
		fmt.Fprintf(os.Stdout, "[%d/%d] ✓ %s: %q\n", i+1, len(urls), res.URL, res.Record.Title)
		if err := export(ctx, &res.Record.Recipe, renderer, writer); err != nil {
			fmt.Fprintf(os.Stderr, "  ✗ Export error: %v\n", err)
			errCount++
		}
	}

	if errCount > 0 {
		fmt.Fprintf(os.Stderr, "\n%d/%d pages failed\n", errCount, len(urls))
	}
	return nil
}

// pathFilter is --filter when given on the command line, else
// import.path_filter.
func pathFilter(cmd *cobra.Command, d *deps) string {
	if cmd.Flags().Changed("filter") {
		return flagFilter
	}
	return d.cfg.Import.PathFilter
}

// export renders and writes recipe when an output format was chosen.
func export(ctx context.Context, recipe *core.Recipe, renderer core.Renderer, writer *output.Writer) error {
	if renderer == nil {
		return nil
	}
	data, err := renderer.Render(ctx, recipe)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	path, err := writer.Write(recipe, data, renderer.Extension())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "  ✓ Written: %s\n", path)
	return nil
}

// validateFlags checks that at most one output format is chosen.
func validateFlags() error {
	formatCount := 0
	for _, set := range []bool{flagPDF, flagMarkdown, flagJSON, flagEmbeddings} {
		if set {
			formatCount++
		}
	}
	if formatCount > 1 {
		return fmt.Errorf("only one output format allowed per run (got %d)", formatCount)
	}
	if flagChunkSize < 0 {
		return fmt.Errorf("--chunk_size must not be negative")
	}
	if !flagEmbeddings && (flagModel != "" || flagChunkSize != 0) {
		return fmt.Errorf("--model and --chunk_size only apply with --embeddings")
	}
	return nil
}

// selectRenderer creates the Renderer for the chosen format, or nil when
// none was chosen.
func selectRenderer(d *deps) core.Renderer {
	switch {
	case flagMarkdown:
		return render.NewMarkdownRenderer()
	case flagJSON:
		return render.NewJSONRenderer()
	case flagPDF:
		return render.NewPDFRenderer()
	case flagEmbeddings:
		model := flagModel
		if model == "" {
			model = d.cfg.Embeddings.Model
		}
		size := flagChunkSize
		if size == 0 {
			size = d.cfg.Embeddings.ChunkSize
		}
		return render.NewEmbeddingsRenderer(render.NewOllamaEmbedder(d.cfg.Embeddings.URL, model), model, size)
	default:
		return nil
	}
}
