package search

import (
	"strings"
	"unicode/utf8"

	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/title"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

const (
	AutocompleteLimit  = 10
	PopularTermsLimit  = 10
	SimilarLimit       = 5
	autocompleteMinLen = 2
	similarThreshold   = 0.5
)

// orderedSet keeps the first occurrence of each value.
type orderedSet struct {
	seen   map[string]struct{}
	values []string
}

func (s *orderedSet) add(v string) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.values = append(s.values, v)
}

func (s *orderedSet) take(limit int) []string {
	if limit >= 0 && len(s.values) > limit {
		return s.values[:limit]
	}
	if s.values == nil {
		return []string{}
	}
	return s.values
}

// Autocomplete suggests titles whose normalized form contains the normalized
// query, and tags containing the query. Queries shorter than two characters give nothing.
func Autocomplete(query string, items []*content.Item, limit int) []string {
	var suggestions orderedSet
	if utf8.RuneCountInString(strings.TrimSpace(query)) < autocompleteMinLen {
		return suggestions.take(limit)
	}

	normalized := title.Normalize(query)
	for _, item := range items {
		if normalized != "" && strings.Contains(item.NormalizedTitle, normalized) {
			suggestions.add(item.Title)
		}
		for _, tag := range item.Tags {
			if containsFold(tag, query) {
				suggestions.add(tag)
			}
		}
	}

	return suggestions.take(limit)
}

// PopularTerms ranks title words longer than two characters and tags by how
// often they occur. Ties keep the order in which terms were first met.
func PopularTerms(items []*content.Item, limit int) []string {
	counts := make(map[string]int)
	var order orderedSet

	count := func(term string) {
		counts[term]++
		order.add(term)
	}

	for _, item := range items {
		for _, word := range strings.Fields(item.Title) {
			if utf8.RuneCountInString(word) > 2 {
				count(word)
			}
		}
		for _, tag := range item.Tags {
			count(tag)
		}
	}

	terms := append([]string(nil), order.values...)
	slices.SortStableFunc(terms, func(a, b string) int {
		return counts[b] - counts[a]
	})

	if limit >= 0 && len(terms) > limit {
		terms = terms[:limit]
	}
	return lo.Ternary(terms == nil, []string{}, terms)
}

// Similar lists titles more than half similar to query, excluding the query itself.
func Similar(query string, items []*content.Item, limit int) []string {
	var similar orderedSet
	normalized := title.Normalize(query)
	if normalized == "" {
		return similar.take(limit)
	}

	for _, item := range items {
		if item.Title == query {
			continue
		}
		if title.Similarity(normalized, item.NormalizedTitle) > similarThreshold {
			similar.add(item.Title)
		}
	}

	return similar.take(limit)
}
