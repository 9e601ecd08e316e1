// Package pool is the catalog consumers talk to: it answers searches from the
// cache when it can, aggregates when it must, and runs queries over everything
// accumulated so far.
package pool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/katalog-cli/katalog/aggregator"
	"github.com/katalog-cli/katalog/catalog"
	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/log"
	"github.com/katalog-cli/katalog/provider"
	"github.com/katalog-cli/katalog/recommend"
	"github.com/katalog-cli/katalog/search"
	"github.com/katalog-cli/katalog/source"
	"github.com/katalog-cli/katalog/telemetry"
	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// ErrNotFound is returned for ids no cached entry holds.
var ErrNotFound = errors.New("content not found")

type Pool struct {
	registry   *provider.Registry
	aggregator *aggregator.Aggregator
	cache      *catalog.Cache
	now        func() time.Time
}

func New(registry *provider.Registry, agg *aggregator.Aggregator, cache *catalog.Cache) *Pool {
	return &Pool{
		registry:   registry,
		aggregator: agg,
		cache:      cache,
		now:        time.Now,
	}
}

func (p *Pool) Registry() *provider.Registry {
	return p.registry
}

func (p *Pool) Aggregator() *aggregator.Aggregator {
	return p.aggregator
}

// Search returns the cached items for query, aggregating on a miss.
func (p *Pool) Search(ctx context.Context, query string) []*content.Item {
	ctx, span := telemetry.Tracer("pool").Start(ctx, "pool.Search")
	defer span.End()

	if cached, ok := p.cache.Get(query).Get(); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		log.WithFields(logrus.Fields{"query": query, "items": len(cached)}).Debug("cache hit")
		return cached
	}

	span.SetAttributes(attribute.Bool("cache.hit", false))
	return p.aggregator.SearchAndMerge(ctx, query)
}

// Refresh aggregates query even when it is cached.
func (p *Pool) Refresh(ctx context.Context, query string) []*content.Item {
	return p.aggregator.SearchAndMerge(ctx, query)
}

func (p *Pool) GetByID(id string) mo.Option[*content.Item] {
	return p.cache.GetByID(id)
}

// GetAll is the accumulated catalog: every item of every unexpired cached search.
func (p *Pool) GetAll() []*content.Item {
	return p.cache.All()
}

func (p *Pool) AdvancedSearch(filter search.Filter, sort search.Sort, page, pageSize int) search.Page {
	return search.AdvancedSearch(p.GetAll(), filter, sort, page, pageSize)
}

func (p *Pool) Autocomplete(query string) []string {
	return search.Autocomplete(query, p.GetAll(), search.AutocompleteLimit)
}

func (p *Pool) PopularTerms() []string {
	return search.PopularTerms(p.GetAll(), search.PopularTermsLimit)
}

func (p *Pool) Similar(query string) []string {
	return search.Similar(query, p.GetAll(), search.SimilarLimit)
}

func (p *Pool) Stats(topTags int) catalog.Stats {
	return catalog.Summarize(p.GetAll(), topTags)
}

func (p *Pool) Related(id string, limit int) ([]*content.Item, error) {
	item, ok := p.GetByID(id).Get()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return recommend.Related(item, p.GetAll(), limit), nil
}

// Health reports how each source has been answering.
func (p *Pool) Health() []aggregator.SourceHealth {
	return p.aggregator.Health()
}

func (p *Pool) ClearCache() {
	p.cache.Clear()
	log.Info("catalog cache cleared")
}

// Enrich loads details for the item from every source that offers it, in source
// order, and stores the enriched copy back into the cache. Sources that cannot
// describe their pages are skipped; the item is returned even when all of them fail.
func (p *Pool) Enrich(ctx context.Context, id string) (*content.Item, error) {
	ctx, span := telemetry.Tracer("pool").Start(ctx, "pool.Enrich")
	defer span.End()

	cached, ok := p.GetByID(id).Get()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	item := cached.Clone()
	changed := false
	var failures []string

	for _, entry := range item.Sources {
		src, ok := p.registry.Get(entry.SourceName).Get()
		if !ok {
			continue
		}

		details, err := source.Details(ctx, src, entry.SourceURL)
		if errors.Is(err, source.ErrNotSupported) {
			continue
		}
		if err != nil {
			failures = append(failures, entry.SourceName)
			log.WithFields(logrus.Fields{"id": id, "source": entry.SourceName}).Warnf("loading details failed: %s", err)
			continue
		}

		changed = item.Fill(details) || changed
	}

	span.SetAttributes(
		attribute.Bool("changed", changed),
		attribute.String("failed", strings.Join(failures, ",")),
	)

	if changed {
		item.LastUpdated = p.now()
		p.cache.Update(item)
	}

	return item, nil
}
