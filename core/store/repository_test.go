package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/recipepipe/core"
	"github.com/gaurav-prasanna/recipepipe/core/store"
)

const owner = "user-1"

func newRepo(t *testing.T) *store.Repository {
	t.Helper()

	db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "data", "recipes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return store.NewRepository(db)
}

func recipe(id, title string, added time.Time, categories ...string) *core.Recipe {
	return &core.Recipe{
		ID:          id,
		URL:         "https://r.example/" + id,
		Title:       title,
		Image:       core.PlaceholderImage(title),
		Ingredients: []string{"1 onion", "2 cloves garlic"},
		Directions:  []string{"Chop.", "Fry."},
		Categories:  categories,
		DateAdded:   added,
	}
}

func TestSaveAndGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newRepo(t)

	added := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	saved, err := repo.Save(ctx, owner, recipe("a1", "Onion Soup", added, "Soup"))
	require.NoError(t, err)
	assert.Equal(t, 0, saved.Rating)

	got, err := repo.Get(ctx, owner, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Onion Soup", got.Title)
	assert.Equal(t, []string{"1 onion", "2 cloves garlic"}, got.Ingredients)
	assert.Equal(t, []string{"Soup"}, got.Categories)
	assert.True(t, got.DateAdded.Equal(added))
	assert.False(t, got.Favorite)

	_, err = repo.Get(ctx, "someone-else", "a1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newRepo(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "new", "mid"} {
		offset := map[string]time.Duration{"old": 0, "mid": time.Hour, "new": 2 * time.Hour}[id]
		_, err := repo.Save(ctx, owner, recipe(id, "Dish "+string(rune('A'+i)), base.Add(offset)))
		require.NoError(t, err)
	}
	_, err := repo.Save(ctx, "other", recipe("x", "Hidden", base))
	require.NoError(t, err)

	list, err := repo.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "mid", list[1].ID)
	assert.Equal(t, "old", list[2].ID)
}

func TestUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newRepo(t)

	_, err := repo.Save(ctx, owner, recipe("u1", "Stew", time.Now(), "Dinner"))
	require.NoError(t, err)

	rating, fav, notes := 4, true, "  Add more salt. "
	title := "Beef  Stew"
	updated, err := repo.Update(ctx, owner, "u1", store.Patch{
		Title:      &title,
		Rating:     &rating,
		Favorite:   &fav,
		Notes:      &notes,
		Categories: []string{"winter", "Winter", " "},
	})
	require.NoError(t, err)
	assert.Equal(t, "Beef Stew", updated.Title)
	assert.Equal(t, []string{"winter"}, updated.Categories)

	got, err := repo.Get(ctx, owner, "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Rating)
	assert.True(t, got.Favorite)
	assert.Equal(t, "Add more salt.", got.Notes)
	assert.Equal(t, "Beef Stew", got.Title)
	assert.Equal(t, []string{"Chop.", "Fry."}, got.Directions)
}

func TestUpdateRejectsInvalidPatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newRepo(t)

	_, err := repo.Save(ctx, owner, recipe("v1", "Stew", time.Now()))
	require.NoError(t, err)

	bad := 6
	_, err = repo.Update(ctx, owner, "v1", store.Patch{Rating: &bad})
	require.ErrorIs(t, err, store.ErrInvalid)

	empty := "   "
	_, err = repo.Update(ctx, owner, "v1", store.Patch{Title: &empty})
	require.ErrorIs(t, err, store.ErrInvalid)

	_, err = repo.Update(ctx, owner, "missing", store.Patch{})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newRepo(t)

	_, err := repo.Save(ctx, owner, recipe("d1", "Toast", time.Now()))
	require.NoError(t, err)

	require.ErrorIs(t, repo.Delete(ctx, "other", "d1"), store.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, owner, "d1"))
	require.ErrorIs(t, repo.Delete(ctx, owner, "d1"), store.ErrNotFound)
}

func TestSearch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newRepo(t)

	now := time.Now()
	_, err := repo.Save(ctx, owner, recipe("s1", "Garlic Bread", now, "Side"))
	require.NoError(t, err)
	_, err = repo.Save(ctx, owner, recipe("s2", "Pancakes", now.Add(time.Minute), "Breakfast"))
	require.NoError(t, err)
	notes := "Great with maple syrup"
	_, err = repo.Update(ctx, owner, "s2", store.Patch{Notes: &notes})
	require.NoError(t, err)

	tests := []struct {
		query string
		want  []string
	}{
		{"bread", []string{"s1"}},
		{"BREAKFAST", []string{"s2"}},
		{"maple", []string{"s2"}},
		{"garlic", []string{"s2", "s1"}},
		{"", []string{"s2", "s1"}},
		{"tofu", []string{}},
	}
	for _, tt := range tests {
		got, err := repo.Search(ctx, owner, tt.query)
		require.NoError(t, err)
		ids := make([]string, 0, len(got))
		for _, r := range got {
			ids = append(ids, r.ID)
		}
		assert.Equal(t, tt.want, ids, tt.query)
	}
}

func TestTopCategoriesAndTags(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newRepo(t)

	now := time.Now()
	for i, cats := range [][]string{
		{"Dinner", "Chicken"},
		{"dinner", "Quick & Easy"},
		{"Dessert", "Quick & Easy", "quick & easy"},
		{"Dinner"},
	} {
		_, err := repo.Save(ctx, owner, recipe(string(rune('a'+i)), "Dish", now, cats...))
		require.NoError(t, err)
	}

	top, err := repo.TopCategories(ctx, owner, 3)
	require.NoError(t, err)
	assert.Equal(t, []store.CategoryCount{
		{Name: "dinner", Count: 3},
		{Name: "quick & easy", Count: 2},
		{Name: "chicken", Count: 1},
	}, top)

	tags, err := repo.Tags(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, []string{"chicken", "dessert", "dinner", "quick & easy"}, tags)

	empty, err := repo.Tags(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSaveReportsDriverErrors(t *testing.T) {
	t.Parallel()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectExec("INSERT INTO recipes").WillReturnError(errors.New("disk I/O error"))

	repo := store.NewRepository(sqlx.NewDb(mockDB, "sqlite3"))
	_, err = repo.Save(context.Background(), owner, recipe("e1", "Soup", time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert recipe")
	assert.NoError(t, mock.ExpectationsWereMet())
}
