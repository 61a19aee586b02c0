// Package catalog provides the read-only question catalog and the JSON
// importer that fills it.
package catalog

import (
	"context"
	"strings"

	"github.com/abhisek/gameiq/internal/store"
)

// Catalog serves questions for a (sport, position). It never mutates them.
type Catalog struct {
	store *store.Store
}

// New returns a Catalog backed by the given store.
func New(s *store.Store) *Catalog {
	return &Catalog{store: s}
}

// Questions returns every question for a sport and position in catalog
// order. The order is stable across calls.
func (c *Catalog) Questions(ctx context.Context, sport, position string) ([]store.Question, error) {
	return c.store.QuestionsFor(ctx, NormalizeKey(sport), NormalizeKey(position))
}

// QuestionsByID returns questions in the order of ids.
func (c *Catalog) QuestionsByID(ctx context.Context, ids []int64) ([]store.Question, error) {
	return c.store.QuestionsByID(ctx, ids)
}

// Categories lists the categories of a sport and position.
func (c *Catalog) Categories(ctx context.Context, sport, position string) ([]store.Category, error) {
	return c.store.Categories(ctx, NormalizeKey(sport), NormalizeKey(position))
}

// NormalizeKey maps user-facing names like "Point Guard" or "POINT_GUARD"
// to the catalog's lower-kebab keys ("point-guard").
func NormalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", "-", " ", "-").Replace(s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}

// DisplayName turns a catalog key back into a title ("point-guard" ->
// "Point Guard").
func DisplayName(key string) string {
	parts := strings.Split(key, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
