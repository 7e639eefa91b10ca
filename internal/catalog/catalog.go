// Package catalog holds the ordered, read-only feature catalog.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PabloGalante/friday-agent/internal/domain"
)

var (
	ErrEmptyName     = errors.New("feature name is empty")
	ErrDuplicateName = errors.New("duplicate feature name")
	ErrDuplicateID   = errors.New("duplicate feature id")

	ErrUnknownCategory = domain.ErrUnknownCategory
)

// Catalog is an immutable, ordered collection of feature records.
// The order is the detection priority.
type Catalog struct {
	features []domain.FeatureRecord
	byName   map[string]int
}

// New validates records and builds a catalog preserving their order.
func New(records []domain.FeatureRecord) (*Catalog, error) {
	c := &Catalog{
		features: make([]domain.FeatureRecord, 0, len(records)),
		byName:   make(map[string]int, len(records)),
	}
	ids := make(map[domain.FeatureID]struct{}, len(records))

	for i, r := range records {
		r.Name = strings.TrimSpace(r.Name)
		if r.Name == "" {
			return nil, fmt.Errorf("feature #%d: %w", i, ErrEmptyName)
		}
		if _, ok := c.byName[r.Name]; ok {
			return nil, fmt.Errorf("feature %q: %w", r.Name, ErrDuplicateName)
		}
		if r.ID == "" {
			r.ID = domain.FeatureID(fmt.Sprintf("%d", i+1))
		}
		if _, ok := ids[r.ID]; ok {
			return nil, fmt.Errorf("feature %q id %q: %w", r.Name, r.ID, ErrDuplicateID)
		}
		cat, err := domain.ParseCategory(string(r.Category))
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", r.Name, err)
		}
		r.Category = cat

		ids[r.ID] = struct{}{}
		c.byName[r.Name] = len(c.features)
		c.features = append(c.features, r)
	}

	return c, nil
}

// Load reads the records from src and builds a catalog.
func Load(ctx context.Context, src domain.CatalogSource) (*Catalog, error) {
	records, err := src.LoadFeatures(ctx)
	if err != nil {
		return nil, fmt.Errorf("load features: %w", err)
	}
	return New(records)
}

// All returns a copy of the records in catalog order.
func (c *Catalog) All() []domain.FeatureRecord {
	out := make([]domain.FeatureRecord, len(c.features))
	copy(out, c.features)
	return out
}

// Each calls fn for every record in order until fn returns false.
func (c *Catalog) Each(fn func(domain.FeatureRecord) bool) {
	for _, f := range c.features {
		if !fn(f) {
			return
		}
	}
}

func (c *Catalog) Len() int {
	return len(c.features)
}

func (c *Catalog) ByName(name string) (domain.FeatureRecord, bool) {
	i, ok := c.byName[name]
	if !ok {
		return domain.FeatureRecord{}, false
	}
	return c.features[i], true
}

// Categories returns the categories that have at least one feature, in display order.
func (c *Catalog) Categories() []domain.Category {
	seen := make(map[domain.Category]bool)
	for _, f := range c.features {
		seen[f.Category] = true
	}

	var out []domain.Category
	for _, cat := range domain.Categories {
		if seen[cat] {
			out = append(out, cat)
		}
	}
	return out
}

// Search filters by case-insensitive substring over name, description and category.
// An empty query returns every record.
func (c *Catalog) Search(query string) []domain.FeatureRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.All()
	}

	var out []domain.FeatureRecord
	for _, f := range c.features {
		if strings.Contains(strings.ToLower(f.Name), q) ||
			strings.Contains(strings.ToLower(f.Description), q) ||
			strings.Contains(strings.ToLower(string(f.Category)), q) {
			out = append(out, f)
		}
	}
	return out
}
