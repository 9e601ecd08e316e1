// Package query keeps the history of past searches and suggests queries from it.
package query

import (
	"strings"
	"sync"
	"time"

	"github.com/katalog-cli/katalog/filesystem"
	"github.com/katalog-cli/katalog/key"
	"github.com/katalog-cli/katalog/where"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"
)

const defaultHistorySize = 50

type queryRecord struct {
	Rank     int       `json:"rank"`
	Query    string    `json:"query"`
	LastUsed time.Time `json:"lastUsed"`
}

var (
	mu sync.Mutex

	cacher = gache.New[map[string]*queryRecord](
		&gache.Options{
			Path:       where.Queries(),
			FileSystem: &filesystem.GacheFs{},
		},
	)

	suggestionCache = make(map[string][]*queryRecord)

	now = time.Now
)

func load() map[string]*queryRecord {
	cached, expired, err := cacher.Get()
	if expired || err != nil || cached == nil {
		return make(map[string]*queryRecord)
	}
	return cached
}

func historySize() int {
	if size := viper.GetInt(key.SearchHistorySize); size > 0 {
		return size
	}
	return defaultHistorySize
}

// Remember records a search query or raises its rank by weight.
// The least recently used queries are forgotten once the history is full.
func Remember(q string, weight int) error {
	q = sanitize(q)
	if q == "" {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	cached := load()
	if record, ok := cached[q]; ok {
		record.Rank += weight
		record.LastUsed = now()
	} else {
		cached[q] = &queryRecord{Rank: weight, Query: q, LastUsed: now()}
	}

	if overflow := len(cached) - historySize(); overflow > 0 {
		for _, record := range byRecency(lo.Values(cached))[historySize():] {
			delete(cached, record.Query)
		}
	}

	suggestionCache = make(map[string][]*queryRecord)
	return cacher.Set(cached)
}

// Suggest returns the best ranked past query matching q.
func Suggest(q string) mo.Option[string] {
	suggestions := SuggestMany(q)
	if len(suggestions) == 0 {
		return mo.None[string]()
	}
	return mo.Some(suggestions[0])
}

// SuggestMany returns past queries fuzzily matching q, best ranked first.
func SuggestMany(q string) []string {
	if !viper.GetBool(key.SearchShowQuerySuggestions) {
		return []string{}
	}

	q = sanitize(q)

	mu.Lock()
	defer mu.Unlock()

	records, ok := suggestionCache[q]
	if !ok {
		for _, record := range load() {
			if fuzzy.Match(q, record.Query) {
				records = append(records, record)
			}
		}

		slices.SortFunc(records, byRank)
		suggestionCache[q] = records
	}

	return queries(records)
}

// Recent returns up to limit past queries, most recently used first.
func Recent(limit int) []string {
	mu.Lock()
	defer mu.Unlock()

	return queries(take(byRecency(lo.Values(load())), limit))
}

// Top returns up to limit past queries, best ranked first.
func Top(limit int) []string {
	mu.Lock()
	defer mu.Unlock()

	records := lo.Values(load())
	slices.SortFunc(records, byRank)
	return queries(take(records, limit))
}

// Clear forgets every past query.
func Clear() error {
	mu.Lock()
	defer mu.Unlock()

	suggestionCache = make(map[string][]*queryRecord)
	return cacher.Set(make(map[string]*queryRecord))
}

func byRank(a, b *queryRecord) int {
	if a.Rank != b.Rank {
		return b.Rank - a.Rank
	}
	return strings.Compare(a.Query, b.Query)
}

func byRecency(records []*queryRecord) []*queryRecord {
	slices.SortFunc(records, func(a, b *queryRecord) int {
		if c := b.LastUsed.Compare(a.LastUsed); c != 0 {
			return c
		}
		return strings.Compare(a.Query, b.Query)
	})
	return records
}

func take(records []*queryRecord, limit int) []*queryRecord {
	if limit >= 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}

func queries(records []*queryRecord) []string {
	return lo.Map(records, func(r *queryRecord, _ int) string {
		return r.Query
	})
}

func sanitize(q string) string {
	return strings.TrimSpace(strings.ToLower(q))
}

// History exposes the package level history as a value, for consumers that
// take their dependencies as interfaces.
type History struct{}

func (History) Remember(q string, weight int) error { return Remember(q, weight) }
func (History) Recent(limit int) []string           { return Recent(limit) }
func (History) Top(limit int) []string              { return Top(limit) }
