package search

import (
	"strings"

	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/title"
	"github.com/samber/lo"
)

// QueryThreshold is the title similarity a filter query needs.
const QueryThreshold = 0.3

// Filter narrows a catalog. Every set clause must hold. Items missing a year or
// rating fail any bound on it.
type Filter struct {
	Query      string       `json:"query,omitempty" jsonschema:"description=Title text matched by similarity"`
	Type       content.Type `json:"type,omitempty" jsonschema:"enum=movie,enum=series,enum=anime,enum=documentary,enum=live"`
	Genres     []string     `json:"genres,omitempty" jsonschema:"description=Any of these must appear in a tag"`
	YearFrom   *int         `json:"yearFrom,omitempty"`
	YearTo     *int         `json:"yearTo,omitempty"`
	RatingFrom *float64     `json:"ratingFrom,omitempty"`
	RatingTo   *float64     `json:"ratingTo,omitempty"`
	MinSources int          `json:"minSources,omitempty" jsonschema:"default=1"`
	MaxSources int          `json:"maxSources,omitempty" jsonschema:"description=0 means unbounded"`
	Language   string       `json:"language,omitempty"`
	Quality    string       `json:"quality,omitempty"`
}

func DefaultFilter() Filter {
	return Filter{MinSources: 1}
}

// Match reports whether item satisfies every clause of f.
func (f Filter) Match(item *content.Item) bool {
	if strings.TrimSpace(f.Query) != "" {
		if !title.IsMatch(item.NormalizedTitle, f.Query, QueryThreshold) {
			return false
		}
	}

	if f.Type != "" && item.Type != f.Type {
		return false
	}

	if len(f.Genres) > 0 {
		hasGenre := lo.SomeBy(f.Genres, func(genre string) bool {
			return lo.SomeBy(item.Tags, func(tag string) bool {
				return containsFold(tag, genre)
			})
		})
		if !hasGenre {
			return false
		}
	}

	if f.YearFrom != nil && (item.Year == nil || *item.Year < *f.YearFrom) {
		return false
	}
	if f.YearTo != nil && (item.Year == nil || *item.Year > *f.YearTo) {
		return false
	}

	if f.RatingFrom != nil && (item.Rating == nil || *item.Rating < *f.RatingFrom) {
		return false
	}
	if f.RatingTo != nil && (item.Rating == nil || *item.Rating > *f.RatingTo) {
		return false
	}

	if len(item.Sources) < f.MinSources {
		return false
	}
	if f.MaxSources > 0 && len(item.Sources) > f.MaxSources {
		return false
	}

	if f.Language != "" && !lo.SomeBy(item.Sources, func(s *content.SourceEntry) bool {
		return containsFold(s.Language, f.Language)
	}) {
		return false
	}

	if f.Quality != "" && !lo.SomeBy(item.Sources, func(s *content.SourceEntry) bool {
		return containsFold(s.Quality, f.Quality)
	}) {
		return false
	}

	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
