package catalog

import (
	"sort"
	"strings"

	"github.com/katalog-cli/katalog/content"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// Count pairs a value with how often it occurs.
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// YearCount is the number of items released in Year.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

type Stats struct {
	TotalItems   int                  `json:"totalItems"`
	TotalSources int                  `json:"totalSources"`
	MultiSource  int                  `json:"multiSource"`
	ByType       map[content.Type]int `json:"byType"`
	TopTags      []Count              `json:"topTags"`
	ByYear       []YearCount          `json:"byYear"`
}

// Summarize counts items by type, year and tag. TopTags holds at most topN tags,
// most frequent first; tags are compared case-insensitively and reported in the
// spelling met first. ByYear is newest first and skips items without a year.
func Summarize(items []*content.Item, topN int) Stats {
	stats := Stats{
		TotalItems: len(items),
		ByType:     make(map[content.Type]int),
		TopTags:    []Count{},
		ByYear:     []YearCount{},
	}

	sources := make(map[string]struct{})
	years := make(map[int]int)
	tags := make(map[string]*Count)
	var tagOrder []string

	for _, item := range items {
		stats.ByType[item.Type]++

		if len(item.Sources) > 1 {
			stats.MultiSource++
		}
		for _, s := range item.Sources {
			sources[s.SourceName] = struct{}{}
		}

		if item.Year != nil {
			years[*item.Year]++
		}

		for _, tag := range lo.UniqBy(item.Tags, strings.ToLower) {
			k := strings.ToLower(tag)
			if c, ok := tags[k]; ok {
				c.Count++
				continue
			}
			tags[k] = &Count{Value: tag, Count: 1}
			tagOrder = append(tagOrder, k)
		}
	}

	stats.TotalSources = len(sources)

	for _, k := range tagOrder {
		stats.TopTags = append(stats.TopTags, *tags[k])
	}
	slices.SortStableFunc(stats.TopTags, func(a, b Count) int {
		return b.Count - a.Count
	})
	if topN >= 0 && len(stats.TopTags) > topN {
		stats.TopTags = stats.TopTags[:topN]
	}

	for year, n := range years {
		stats.ByYear = append(stats.ByYear, YearCount{Year: year, Count: n})
	}
	sort.Slice(stats.ByYear, func(i, j int) bool {
		return stats.ByYear[i].Year > stats.ByYear[j].Year
	})

	return stats
}
