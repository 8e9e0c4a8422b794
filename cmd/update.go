package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/recipepipe/core/store"
)

var (
	flagRating   int
	flagFavorite bool
	flagNotes    string
	flagTitle    string
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Rate, favorite, retitle or annotate a saved recipe",
	Long: `Update changes the fields you own on a saved recipe. Only the flags
you pass are changed.

Examples:
  recipepipe update 0f8c2a4e --rating 5 --favorite
  recipepipe update 0f8c2a4e --notes "Halve the sugar"
  recipepipe update 0f8c2a4e --favorite=false`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := patchFromFlags(cmd)
		if err != nil {
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
		updated, err := d.repo.Update(ctx, d.owner(), rec.ID, patch)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "✓ Updated %q\n", updated.Title)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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
		if err := d.repo.Delete(ctx, d.owner(), rec.ID); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "✓ Deleted %q\n", rec.Title)
		return nil
	},
}

func init() {
	updateCmd.Flags().IntVar(&flagRating, "rating", 0, "Rating from 1 to 5, or 0 to clear")
	updateCmd.Flags().BoolVar(&flagFavorite, "favorite", false, "Mark as favorite")
	updateCmd.Flags().StringVar(&flagNotes, "notes", "", "Personal notes")
	updateCmd.Flags().StringVar(&flagTitle, "title", "", "New title")
	rootCmd.AddCommand(updateCmd, deleteCmd)
}

// patchFromFlags builds a patch from the flags that were set.
func patchFromFlags(cmd *cobra.Command) (store.Patch, error) {
	var patch store.Patch
	flags := cmd.Flags()

	if flags.Changed("rating") {
		rating := flagRating
		patch.Rating = &rating
	}
	if flags.Changed("favorite") {
		fav := flagFavorite
		patch.Favorite = &fav
	}
	if flags.Changed("notes") {
		notes := flagNotes
		patch.Notes = &notes
	}
	if flags.Changed("title") {
		title := flagTitle
		patch.Title = &title
	}

	if patch.Rating == nil && patch.Favorite == nil && patch.Notes == nil && patch.Title == nil {
		return patch, fmt.Errorf("nothing to update: pass --rating, --favorite, --notes or --title")
	}
	return patch, nil
}
