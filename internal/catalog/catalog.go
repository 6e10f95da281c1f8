// internal/catalog/catalog.go
//
// Category catalog and daily selector for the Top 10 challenge.
//
// Responsibilities:
//   - Load the ordered list of Top 10 categories from an environment-provided
//     JSON file or fall back to the embedded default catalog.
//   - Map a calendar date onto exactly one catalog entry, deterministically
//     and identically for every client.
//
// Selection behavior:
//   The date is first reduced to its YYYY-MM-DD key in UTC. The index is the
//   sum of the key's character codes mod the catalog length. Two dates whose
//   character sums collide share a category; that is accepted — the only
//   requirement is that every client agrees on the day's list. Do not swap in
//   a stronger hash without versioning the catalog.
//
// Environment variables:
//   CATALOG_FILE=/path/to/categories.json
//
// Constraints:
//   • Catalog must be non-empty, every category must have items.
//   • Category IDs are unique.
//   • Initialization is run once (sync.Once).

package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/toptendaily/go-server/assets"
)

// Item is a single answer slot in a Top 10 list.
type Item struct {
	Name string `json:"name"`
	Hint string `json:"hint,omitempty"`
}

// Category is one immutable Top 10 list. Item order is significant: it
// defines ranking positions 1..N.
type Category struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Items       []Item `json:"items"`
}

// Catalog is an ordered, immutable collection of categories.
type Catalog []Category

var (
	initOnce   sync.Once
	defaultCat Catalog
	initialErr error
)

// Init loads the catalog exactly once, from CATALOG_FILE if set, otherwise
// from the embedded default data.
func Init() error {
	initOnce.Do(func() {
		var raw []byte
		var err error
		if path := os.Getenv("CATALOG_FILE"); path != "" {
			raw, err = os.ReadFile(path)
		} else {
			raw, err = assets.CategoriesJSON()
		}
		if err != nil {
			initialErr = fmt.Errorf("catalog: read: %w", err)
			return
		}
		defaultCat, initialErr = Parse(raw)
	})
	return initialErr
}

// Default returns the process-wide catalog. Call Init first.
func Default() Catalog { return defaultCat }

// Parse decodes and validates a JSON catalog.
func Parse(raw []byte) (Catalog, error) {
	var cat Catalog
	if err := json.Unmarshal(raw, &cat); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if len(cat) == 0 {
		return nil, errors.New("catalog: no categories")
	}
	seen := make(map[string]struct{}, len(cat))
	for _, c := range cat {
		if c.ID == "" {
			return nil, errors.New("catalog: category missing id")
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate id %q", c.ID)
		}
		seen[c.ID] = struct{}{}
		if len(c.Items) == 0 {
			return nil, fmt.Errorf("catalog: category %q has no items", c.ID)
		}
	}
	return cat, nil
}

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// IndexForDate returns the deterministic catalog index for a date:
// sum of the date key's character codes mod the catalog length.
func (c Catalog) IndexForDate(t time.Time) int {
	if len(c) == 0 {
		return 0
	}
	sum := 0
	for _, ch := range DateKey(t) {
		sum += int(ch)
	}
	return sum % len(c)
}

// ForDate returns the category for a calendar date. Total for any date on a
// non-empty catalog; the time-of-day and caller timezone never matter.
func (c Catalog) ForDate(t time.Time) Category {
	if len(c) == 0 {
		return Category{}
	}
	return c[c.IndexForDate(t)]
}
