// Package recommend picks items out of the catalog for browsing.
package recommend

import (
	"strings"
	"time"

	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/title"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

const (
	relatedThreshold = 0.3
	historyThreshold = 0.5

	typeWeight  = 0.3
	yearWeight  = 0.2
	tagWeight   = 0.3
	titleWeight = 0.2

	recentYears  = 2
	topRatedMin  = 7.0
	multiSources = 3
)

// Now is used to decide what counts as recent.
var Now = time.Now

type scored struct {
	item  *content.Item
	score float64
}

// Score is how related b is to a, between 0 and 1.
func Score(a, b *content.Item) float64 {
	var score float64

	if a.Type == b.Type {
		score += typeWeight
	}

	if a.Year != nil && b.Year != nil {
		score += yearCloseness(*a.Year, *b.Year) * yearWeight
	}

	score += tagOverlap(a.Tags, b.Tags) * tagWeight
	score += title.Similarity(a.NormalizedTitle, b.NormalizedTitle) * titleWeight

	return score
}

func yearCloseness(a, b int) float64 {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}

	switch {
	case diff == 0:
		return 1
	case diff <= 2:
		return 0.8
	case diff <= 5:
		return 0.6
	case diff <= 10:
		return 0.4
	default:
		return 0.2
	}
}

func tagOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	lower := func(tag string, _ int) string { return strings.ToLower(tag) }
	left, right := lo.Uniq(lo.Map(a, lower)), lo.Uniq(lo.Map(b, lower))
	common := lo.Intersect(left, right)

	return float64(len(common)) / float64(max(len(left), len(right)))
}

// Related ranks the other items of all by Score against item and keeps those scoring above 0.3.
func Related(item *content.Item, all []*content.Item, limit int) []*content.Item {
	var candidates []scored
	for _, other := range all {
		if other.ID == item.ID {
			continue
		}
		if s := Score(item, other); s > relatedThreshold {
			candidates = append(candidates, scored{item: other, score: s})
		}
	}

	slices.SortStableFunc(candidates, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return 0
		}
	})

	return take(lo.Map(candidates, func(s scored, _ int) *content.Item { return s.item }), limit)
}

// PopularGenres lists tags by how many items carry them.
func PopularGenres(all []*content.Item, limit int) []string {
	return rankTags(all, func(*content.Item) bool { return true }, limit)
}

// GenresFor lists the tags of items matching the given past queries, most frequent first.
func GenresFor(history []string, all []*content.Item, limit int) []string {
	return rankTags(all, func(item *content.Item) bool {
		return lo.ContainsBy(history, func(q string) bool {
			return title.IsMatch(q, item.NormalizedTitle, historyThreshold)
		})
	}, limit)
}

func rankTags(all []*content.Item, keep func(*content.Item) bool, limit int) []string {
	counts := make(map[string]int)
	spelling := make(map[string]string)
	var order []string

	for _, item := range all {
		if !keep(item) {
			continue
		}
		for _, tag := range item.Tags {
			key := strings.ToLower(tag)
			if _, ok := spelling[key]; !ok {
				spelling[key] = tag
				order = append(order, key)
			}
			counts[key]++
		}
	}

	slices.SortStableFunc(order, func(a, b string) int {
		return counts[b] - counts[a]
	})

	return take(lo.Map(order, func(key string, _ int) string { return spelling[key] }), limit)
}

// Recent is items released in the last two years, newest first.
func Recent(all []*content.Item, limit int) []*content.Item {
	since := Now().Year() - recentYears
	recent := lo.Filter(all, func(item *content.Item, _ int) bool {
		return item.YearOr(0) >= since
	})

	slices.SortStableFunc(recent, func(a, b *content.Item) int {
		return b.YearOr(0) - a.YearOr(0)
	})
	return take(recent, limit)
}

// TopRated is items rated 7 or more, best first.
func TopRated(all []*content.Item, limit int) []*content.Item {
	rated := lo.Filter(all, func(item *content.Item, _ int) bool {
		return item.RatingOr(0) >= topRatedMin
	})

	slices.SortStableFunc(rated, byRatingDesc)
	return take(rated, limit)
}

// MultiSource is items offered by three or more sources, most offered first.
func MultiSource(all []*content.Item, limit int) []*content.Item {
	shared := lo.Filter(all, func(item *content.Item, _ int) bool {
		return len(item.Sources) >= multiSources
	})

	slices.SortStableFunc(shared, func(a, b *content.Item) int {
		return len(b.Sources) - len(a.Sources)
	})
	return take(shared, limit)
}

// ByGenre is items with a tag containing genre, best rated first.
func ByGenre(genre string, all []*content.Item, limit int) []*content.Item {
	genre = strings.ToLower(genre)
	matched := lo.Filter(all, func(item *content.Item, _ int) bool {
		return lo.ContainsBy(item.Tags, func(tag string) bool {
			return strings.Contains(strings.ToLower(tag), genre)
		})
	})

	slices.SortStableFunc(matched, byRatingDesc)
	return take(matched, limit)
}

// ByYear is items released in year, best rated first.
func ByYear(year int, all []*content.Item, limit int) []*content.Item {
	matched := lo.Filter(all, func(item *content.Item, _ int) bool {
		return item.YearOr(0) == year
	})

	slices.SortStableFunc(matched, byRatingDesc)
	return take(matched, limit)
}

// Mixed fills limit slots with recent items (30%), then top rated (40%), then
// multi-source items, never repeating an item.
func Mixed(all []*content.Item, limit int) []*content.Item {
	var (
		mixed []*content.Item
		seen  = make(map[string]struct{})
	)

	add := func(items []*content.Item) {
		for _, item := range items {
			if _, ok := seen[item.ID]; ok {
				continue
			}
			seen[item.ID] = struct{}{}
			mixed = append(mixed, item)
		}
	}

	add(Recent(all, limit*3/10))
	add(TopRated(all, limit*4/10))
	if remaining := limit - len(mixed); remaining > 0 {
		add(MultiSource(all, remaining))
	}

	return take(mixed, limit)
}

func byRatingDesc(a, b *content.Item) int {
	ra, rb := a.RatingOr(0), b.RatingOr(0)
	switch {
	case ra > rb:
		return -1
	case ra < rb:
		return 1
	default:
		return 0
	}
}

func take[T any](s []T, limit int) []T {
	if limit >= 0 && len(s) > limit {
		s = s[:limit]
	}
	if s == nil {
		return []T{}
	}
	return s
}
