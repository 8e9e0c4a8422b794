package store

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gaurav-prasanna/recipepipe/core"
)

// Record is a stored recipe plus the fields its owner maintains.
type Record struct {
	core.Recipe
	Notes     string    `json:"notes"`
	Rating    int       `json:"rating"`
	Favorite  bool      `json:"favorite"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Patch lists the fields an owner may change. Nil fields are left as is.
type Patch struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Image       *string  `json:"image,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
	Directions  []string `json:"directions,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
	Rating      *int     `json:"rating,omitempty"`
	Favorite    *bool    `json:"favorite,omitempty"`
}

// CategoryCount is one row of the category histogram.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// stringList is stored as a JSON array in a TEXT column.
type stringList []string

func (l stringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *stringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into string list", src)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("decoding string list: %w", err)
	}
	*l = out
	return nil
}

// row mirrors the recipes table.
type row struct {
	ID          string     `db:"id"`
	OwnerID     string     `db:"owner_id"`
	URL         string     `db:"url"`
	Title       string     `db:"title"`
	Description string     `db:"description"`
	Image       string     `db:"image"`
	Ingredients stringList `db:"ingredients"`
	Directions  stringList `db:"directions"`
	Categories  stringList `db:"categories"`
	CookTime    string     `db:"cook_time"`
	PrepTime    string     `db:"prep_time"`
	TotalTime   string     `db:"total_time"`
	Yield       string     `db:"yield"`
	Notes       string     `db:"notes"`
	Rating      int        `db:"rating"`
	Favorite    bool       `db:"favorite"`
	DateAdded   time.Time  `db:"date_added"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (r *row) record() *Record {
	return &Record{
		Recipe: core.Recipe{
			ID:          r.ID,
			URL:         r.URL,
			Title:       r.Title,
			Description: r.Description,
			Image:       r.Image,
			Ingredients: []string(r.Ingredients),
			Directions:  []string(r.Directions),
			Categories:  []string(r.Categories),
			CookTime:    r.CookTime,
			PrepTime:    r.PrepTime,
			TotalTime:   r.TotalTime,
			Yield:       r.Yield,
			DateAdded:   r.DateAdded.UTC(),
		},
		Notes:     r.Notes,
		Rating:    r.Rating,
		Favorite:  r.Favorite,
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

func newRow(ownerID string, rec *Record) *row {
	return &row{
		ID:          rec.ID,
		OwnerID:     ownerID,
		URL:         rec.URL,
		Title:       rec.Title,
		Description: rec.Description,
		Image:       rec.Image,
		Ingredients: stringList(rec.Ingredients),
		Directions:  stringList(rec.Directions),
		Categories:  stringList(rec.Categories),
		CookTime:    rec.CookTime,
		PrepTime:    rec.PrepTime,
		TotalTime:   rec.TotalTime,
		Yield:       rec.Yield,
		Notes:       rec.Notes,
		Rating:      rec.Rating,
		Favorite:    rec.Favorite,
		DateAdded:   rec.DateAdded.UTC(),
		UpdatedAt:   rec.UpdatedAt.UTC(),
	}
}
