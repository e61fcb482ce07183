// Package images finds enrichment photos for a generated trip.
package images

import (
	"context"
	"strings"

	"github.com/samber/lo"
)

// Searcher returns image URLs for a free-text query. It never fails: any
// upstream problem degrades to an empty result.
type Searcher interface {
	Search(ctx context.Context, query string) []string
}

// Query builds the search text from the trip request fields, in order,
// separated by single spaces. Blank parts are skipped.
func Query(country string, interests []string, travelStyle string) string {
	parts := make([]string, 0, len(interests)+2)
	parts = append(parts, country)
	parts = append(parts, interests...)
	parts = append(parts, travelStyle)
	parts = lo.Filter(lo.Map(parts, func(p string, _ int) string {
		return strings.TrimSpace(p)
	}), func(p string, _ int) bool { return p != "" })
	return strings.Join(parts, " ")
}

// Noop is used when no image provider is configured.
type Noop struct{}

func (Noop) Search(context.Context, string) []string { return []string{} }
