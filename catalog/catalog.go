// Package catalog caches merged search results per query and exposes the union of
// everything cached as the current catalog.
package catalog

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/key"
	"github.com/katalog-cli/katalog/metrics"
	"github.com/katalog-cli/katalog/title"
	gocache "github.com/patrickmn/go-cache"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

const keyPrefix = "search_"

const (
	DefaultTTL             = 24 * time.Hour
	DefaultCleanupInterval = 30 * time.Minute
)

type Options struct {
	// TTL is how long a cached query result lives.
	TTL time.Duration

	// CleanupInterval is how often expired entries are swept. Zero disables the sweep;
	// expired entries are then only dropped on access.
	CleanupInterval time.Duration
}

func DefaultOptions() Options {
	return Options{
		TTL:             DefaultTTL,
		CleanupInterval: DefaultCleanupInterval,
	}
}

// OptionsFromConfig reads cache.ttl (hours) and cache.sweep (minutes).
func OptionsFromConfig() Options {
	opts := DefaultOptions()
	if hours := viper.GetFloat64(key.CacheTTL); hours > 0 {
		opts.TTL = time.Duration(hours * float64(time.Hour))
	}
	if minutes := viper.GetFloat64(key.CacheSweep); viper.IsSet(key.CacheSweep) && minutes >= 0 {
		opts.CleanupInterval = time.Duration(minutes * float64(time.Minute))
	}
	return opts
}

// Cache maps queries to their merged items. It is safe for concurrent use.
//
// Cached slices and items are never modified in place: Update swaps in new
// values, so readers keep a consistent view of what they got.
type Cache struct {
	mu    sync.Mutex
	store *gocache.Cache
	ttl   time.Duration
}

func New(opts Options) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}

	store := gocache.New(opts.TTL, opts.CleanupInterval)
	c := &Cache{store: store, ttl: opts.TTL}
	store.OnEvicted(func(string, any) {
		metrics.CacheEntries.Set(float64(store.ItemCount()))
	})
	return c
}

// Key is the cache key of query. Queries that normalize alike share a key.
func Key(query string) string {
	return keyPrefix + title.GenerateID(query)
}

// Get returns the items cached for query, if present and not expired.
func (c *Cache) Get(query string) mo.Option[[]*content.Item] {
	value, ok := c.store.Get(Key(query))
	if !ok {
		metrics.CacheMissesTotal.Inc()
		return mo.None[[]*content.Item]()
	}

	metrics.CacheHitsTotal.Inc()
	return mo.Some(append([]*content.Item(nil), value.([]*content.Item)...))
}

// Put stores items for query, replacing any previous entry.
func (c *Cache) Put(query string, items []*content.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Set(Key(query), append([]*content.Item(nil), items...), c.ttl)
	metrics.CacheEntries.Set(float64(c.store.ItemCount()))
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Flush()
	metrics.CacheEntries.Set(0)
}

// Len is the number of cached queries, expired but unswept entries included.
func (c *Cache) Len() int {
	return c.store.ItemCount()
}

// Queries lists the cache keys of unexpired entries, sorted.
func (c *Cache) Queries() []string {
	keys := lo.Keys(c.store.Items())
	sort.Strings(keys)
	return keys
}

// All returns every cached item once. When several entries hold the same id
// the most recently updated copy wins; ties keep the entry met first in key order.
func (c *Cache) All() []*content.Item {
	entries := c.store.Items()
	keys := lo.Keys(entries)
	sort.Strings(keys)

	var (
		items []*content.Item
		index = make(map[string]int)
	)

	for _, k := range keys {
		for _, item := range entries[k].Object.([]*content.Item) {
			if i, seen := index[item.ID]; seen {
				if item.LastUpdated.After(items[i].LastUpdated) {
					items[i] = item
				}
				continue
			}
			index[item.ID] = len(items)
			items = append(items, item)
		}
	}

	return items
}

// GetByID finds an item in any cached entry.
func (c *Cache) GetByID(id string) mo.Option[*content.Item] {
	item, ok := lo.Find(c.All(), func(item *content.Item) bool {
		return item.ID == id
	})
	if !ok {
		return mo.None[*content.Item]()
	}
	return mo.Some(item)
}

// Update replaces the item with the same id in every entry holding it, keeping
// each entry's expiration. It reports whether any entry held the item.
func (c *Cache) Update(item *content.Item) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	updated := false
	for k, entry := range c.store.Items() {
		cached := entry.Object.([]*content.Item)
		_, i, found := lo.FindIndexOf(cached, func(it *content.Item) bool {
			return it.ID == item.ID
		})
		if !found {
			continue
		}

		replaced := append([]*content.Item(nil), cached...)
		replaced[i] = item

		ttl := time.Until(time.Unix(0, entry.Expiration))
		if ttl <= 0 {
			continue
		}
		c.store.Set(k, replaced, ttl)
		updated = true
	}

	return updated
}

// QueryOf recovers the normalized query from a cache key.
func QueryOf(cacheKey string) string {
	return strings.ReplaceAll(strings.TrimPrefix(cacheKey, keyPrefix), "_", " ")
}
