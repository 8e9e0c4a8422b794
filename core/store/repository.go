package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/gaurav-prasanna/recipepipe/core/normalize"
)

const selectColumns = `id, owner_id, url, title, description, image, ingredients, directions,
	categories, cook_time, prep_time, total_time, yield, notes, rating, favorite, date_added, updated_at`

// Repository handles recipe persistence. Every operation is scoped to an
// owner; one owner cannot see another's recipes.
type Repository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewRepository creates a new recipe repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Save stores a freshly extracted recipe for ownerID.
func (r *Repository) Save(ctx context.Context, ownerID string, recipe *core.Recipe) (*Record, error) {
	rec := &Record{Recipe: *recipe, UpdatedAt: r.now().UTC()}
	if rec.DateAdded.IsZero() {
		rec.DateAdded = rec.UpdatedAt
	}

	query := `INSERT INTO recipes (` + selectColumns + `) VALUES (
		:id, :owner_id, :url, :title, :description, :image, :ingredients, :directions,
		:categories, :cook_time, :prep_time, :total_time, :yield, :notes, :rating, :favorite, :date_added, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, newRow(ownerID, rec)); err != nil {
		return nil, fmt.Errorf("failed to insert recipe: %w", err)
	}
	return rec, nil
}

// Get returns one recipe.
func (r *Repository) Get(ctx context.Context, ownerID, id string) (*Record, error) {
	query := `SELECT ` + selectColumns + ` FROM recipes WHERE owner_id = ? AND id = ?`

	var out row
	if err := r.db.GetContext(ctx, &out, query, ownerID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return out.record(), nil
}

// List returns the owner's recipes, newest first.
func (r *Repository) List(ctx context.Context, ownerID string) ([]*Record, error) {
	query := `SELECT ` + selectColumns + ` FROM recipes WHERE owner_id = ? ORDER BY date_added DESC, id`

	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	records := make([]*Record, len(rows))
	for i := range rows {
		records[i] = rows[i].record()
	}
	return records, nil
}

// Update applies patch and returns the updated record.
func (r *Repository) Update(ctx context.Context, ownerID, id string, patch Patch) (*Record, error) {
	rec, err := r.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := patch.apply(rec); err != nil {
		return nil, err
	}
	rec.UpdatedAt = r.now().UTC()

	query := `UPDATE recipes SET title = :title, description = :description, image = :image,
		ingredients = :ingredients, directions = :directions, categories = :categories,
		notes = :notes, rating = :rating, favorite = :favorite, updated_at = :updated_at
		WHERE owner_id = :owner_id AND id = :id`

	result, err := r.db.NamedExecContext(ctx, query, newRow(ownerID, rec))
	if err := execRequireRows(result, err, fmt.Errorf("%w: %s", ErrNotFound, id)); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes one recipe.
func (r *Repository) Delete(ctx context.Context, ownerID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE owner_id = ? AND id = ?`, ownerID, id)
	return execRequireRows(result, err, fmt.Errorf("%w: %s", ErrNotFound, id))
}

// Search returns recipes whose title, ingredients, categories or notes
// contain query, case-insensitively. An empty query lists everything.
func (r *Repository) Search(ctx context.Context, ownerID, query string) ([]*Record, error) {
	all, err := r.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	matches := make([]*Record, 0, len(all))
	for _, rec := range all {
		if rec.Matches(q) || (q != "" && strings.Contains(strings.ToLower(rec.Notes), q)) {
			matches = append(matches, rec)
		}
	}
	return matches, nil
}

// TopCategories counts lowercased categories across the owner's recipes
// and returns the n most common, ties broken alphabetically.
func (r *Repository) TopCategories(ctx context.Context, ownerID string, n int) ([]CategoryCount, error) {
	counts, err := r.categoryCounts(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	out := make([]CategoryCount, 0, len(counts))
	for name, c := range counts {
		out = append(out, CategoryCount{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// Tags returns every category the owner uses, lowercased and sorted.
func (r *Repository) Tags(ctx context.Context, ownerID string) ([]string, error) {
	counts, err := r.categoryCounts(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	tags := make([]string, 0, len(counts))
	for name := range counts {
		tags = append(tags, name)
	}
	sort.Strings(tags)
	return tags, nil
}

func (r *Repository) categoryCounts(ctx context.Context, ownerID string) (map[string]int, error) {
	var lists []stringList
	if err := r.db.SelectContext(ctx, &lists, `SELECT categories FROM recipes WHERE owner_id = ?`, ownerID); err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	counts := make(map[string]int)
	for _, list := range lists {
		// A recipe counts once per category.
		seen := make(map[string]bool, len(list))
		for _, c := range list {
			name := strings.ToLower(normalize.Text(c))
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			counts[name]++
		}
	}
	return counts, nil
}

func (p Patch) apply(rec *Record) error {
	if p.Title != nil {
		title := normalize.Text(*p.Title)
		if title == "" {
			return fmt.Errorf("%w: title must not be empty", ErrInvalid)
		}
		rec.Title = title
	}
	if p.Description != nil {
		rec.Description = normalize.Text(*p.Description)
	}
	if p.Image != nil {
		rec.Image = strings.TrimSpace(*p.Image)
		if rec.Image == "" {
			rec.Image = core.PlaceholderImage(rec.Title)
		}
	}
	if p.Ingredients != nil {
		rec.Ingredients = normalize.Unique(p.Ingredients)
		if len(rec.Ingredients) == 0 {
			rec.Ingredients = []string{core.PlaceholderIngredients}
		}
	}
	if p.Directions != nil {
		rec.Directions = normalize.Unique(p.Directions)
		if len(rec.Directions) == 0 {
			rec.Directions = []string{core.PlaceholderDirections}
		}
	}
	if p.Categories != nil {
		rec.Categories = normalize.Categories(p.Categories...)
		if len(rec.Categories) == 0 {
			rec.Categories = []string{core.DefaultCategory}
		}
	}
	if p.Notes != nil {
		rec.Notes = strings.TrimSpace(*p.Notes)
	}
	if p.Rating != nil {
		if *p.Rating < 0 || *p.Rating > 5 {
			return fmt.Errorf("%w: rating must be between 0 and 5, got %d", ErrInvalid, *p.Rating)
		}
		rec.Rating = *p.Rating
	}
	if p.Favorite != nil {
		rec.Favorite = *p.Favorite
	}
	return nil
}

// execRequireRows validates that an exec result affected at least one row.
func execRequireRows(result sql.Result, err, notFoundErr error) error {
	if err != nil {
		return fmt.Errorf("failed to write recipe: %w", err)
	}
	n, affectedErr := result.RowsAffected()
	if affectedErr != nil {
		return affectedErr
	}
	if n == 0 {
		return notFoundErr
	}
	return nil
}
