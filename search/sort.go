package search

import (
	"fmt"
	"strings"

	"github.com/katalog-cli/katalog/content"
	"golang.org/x/exp/slices"
)

type Sort string

const (
	Relevance   Sort = "relevance"
	TitleAsc    Sort = "title_asc"
	TitleDesc   Sort = "title_desc"
	YearAsc     Sort = "year_asc"
	YearDesc    Sort = "year_desc"
	RatingAsc   Sort = "rating_asc"
	RatingDesc  Sort = "rating_desc"
	SourcesAsc  Sort = "sources_asc"
	SourcesDesc Sort = "sources_desc"
	Recent      Sort = "recent"
	Popular     Sort = "popular"
)

func Sorts() []Sort {
	return []Sort{
		Relevance,
		TitleAsc, TitleDesc,
		YearAsc, YearDesc,
		RatingAsc, RatingDesc,
		SourcesAsc, SourcesDesc,
		Recent, Popular,
	}
}

// ParseSort accepts sort names in any case with "_" or "-" separators, so
// "YEAR_DESC" and "year-desc" both work. The empty string is Relevance.
func ParseSort(s string) (Sort, error) {
	normalized := Sort(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if normalized == "" {
		return Relevance, nil
	}

	if slices.Contains(Sorts(), normalized) {
		return normalized, nil
	}

	return "", fmt.Errorf("unknown sort %q", s)
}

func compare[T int | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// comparator orders items ascending for the key of s. Missing years and ratings count as 0.
func (s Sort) comparator() (cmp func(a, b *content.Item) int, desc bool) {
	switch s {
	case TitleAsc, TitleDesc:
		cmp = func(a, b *content.Item) int {
			return strings.Compare(a.Title, b.Title)
		}
	case YearAsc, YearDesc:
		cmp = func(a, b *content.Item) int {
			return compare(a.YearOr(0), b.YearOr(0))
		}
	case RatingAsc, RatingDesc, Popular:
		cmp = func(a, b *content.Item) int {
			return compare(a.RatingOr(0), b.RatingOr(0))
		}
	case SourcesAsc, SourcesDesc:
		cmp = func(a, b *content.Item) int {
			return compare(len(a.Sources), len(b.Sources))
		}
	case Recent:
		cmp = func(a, b *content.Item) int {
			return a.LastUpdated.Compare(b.LastUpdated)
		}
	default:
		return nil, false
	}

	switch s {
	case TitleDesc, YearDesc, RatingDesc, SourcesDesc, Recent, Popular:
		desc = true
	}
	return cmp, desc
}

// Apply sorts items in place, keeping the order of equal items. Relevance keeps the input order.
func (s Sort) Apply(items []*content.Item) {
	cmp, desc := s.comparator()
	if cmp == nil {
		return
	}

	slices.SortStableFunc(items, func(a, b *content.Item) int {
		if desc {
			return cmp(b, a)
		}
		return cmp(a, b)
	})
}
