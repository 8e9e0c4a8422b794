package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/recipepipe/core/normalize"
	"github.com/gaurav-prasanna/recipepipe/core/store"
)

const (
	titleWidth      = 40
	categoriesWidth = 30
	defaultTopLimit = 5
)

var flagTopLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved recipes, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		d, err := newDeps(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		recs, err := d.repo.List(cmd.Context(), d.owner())
		if err != nil {
			return err
		}
		printRecords(recs)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search titles, ingredients, categories and notes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		recs, err := d.repo.Search(cmd.Context(), d.owner(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		printRecords(recs)
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Show the most used categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		d, err := newDeps(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		cats, err := d.repo.TopCategories(cmd.Context(), d.owner(), flagTopLimit)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Category", "Recipes"})
		for _, c := range cats {
			t.AppendRow(table.Row{c.Name, c.Count})
		}
		t.Render()
		return nil
	},
}

func init() {
	categoriesCmd.Flags().IntVar(&flagTopLimit, "limit", defaultTopLimit, "Number of categories to show")
	rootCmd.AddCommand(listCmd, searchCmd, categoriesCmd)
}

func printRecords(recs []*store.Record) {
	if len(recs) == 0 {
		fmt.Fprintln(os.Stdout, "No recipes found.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Title", "Categories", "Total", "Rating", "★", "Added"})
	for _, r := range recs {
		fav := ""
		if r.Favorite {
			fav = "★"
		}
		rating := ""
		if r.Rating > 0 {
			rating = strings.Repeat("*", r.Rating)
		}
		t.AppendRow(table.Row{
			shortID(r.ID),
			text.Trim(r.Title, titleWidth),
			text.Trim(strings.Join(r.Categories, ", "), categoriesWidth),
			normalize.Duration(r.TotalTime),
			rating,
			fav,
			r.DateAdded.Local().Format("2006-01-02"),
		})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d recipes", len(recs))})
	t.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
