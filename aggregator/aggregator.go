// Package aggregator fans a query out to every registered source, merges what
// comes back and stores the merge in the catalog cache.
//
// A failing, panicking, blocked or slow source contributes nothing; it never
// fails the aggregation or cancels its siblings.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/katalog-cli/katalog/catalog"
	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/log"
	"github.com/katalog-cli/katalog/metrics"
	"github.com/katalog-cli/katalog/provider"
	"github.com/katalog-cli/katalog/resolver"
	"github.com/katalog-cli/katalog/source"
	"github.com/katalog-cli/katalog/telemetry"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var errPanicked = errors.New("source panicked")

// Outcome is what one source produced for one query.
type Outcome struct {
	Source  string
	Results []*content.Raw
	Err     error
	Latency time.Duration

	// Skipped is set when the source was not queried because it is blocked.
	Skipped bool
}

// OK reports whether the source answered, possibly with nothing.
func (o Outcome) OK() bool {
	return o.Err == nil && !o.Skipped
}

type Aggregator struct {
	registry *provider.Registry
	resolver *resolver.Resolver
	cache    *catalog.Cache
	opts     Options
	health   *healthTracker
	now      func() time.Time

	limitersMu sync.Mutex
	limiters   map[string]*rate.Limiter
}

// New wires an aggregator. A nil cache disables result caching.
func New(registry *provider.Registry, res *resolver.Resolver, cache *catalog.Cache, opts Options) *Aggregator {
	if res == nil {
		res = resolver.New()
	}
	return &Aggregator{
		registry: registry,
		resolver: res,
		cache:    cache,
		opts:     opts,
		health:   newHealthTracker(),
		now:      time.Now,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (a *Aggregator) Registry() *provider.Registry {
	return a.registry
}

// SearchAndMerge queries every source, merges the results and caches them under query.
// It always returns a list, empty when nothing matched or nothing answered.
func (a *Aggregator) SearchAndMerge(ctx context.Context, query string) []*content.Item {
	ctx, span := telemetry.Tracer("aggregator").Start(ctx, "aggregator.SearchAndMerge")
	defer span.End()
	span.SetAttributes(attribute.String("query", query))

	if a.registry == nil || a.registry.Len() == 0 {
		log.Error("no sources registered, nothing to search")
		span.SetStatus(codes.Error, "no sources registered")
		return []*content.Item{}
	}

	outcomes := a.Fetch(ctx, query)

	var raws []*content.Raw
	for _, outcome := range outcomes {
		raws = append(raws, outcome.Results...)
	}

	items := a.resolver.Merge(raws)
	if items == nil {
		items = []*content.Item{}
	}

	answered := lo.CountBy(outcomes, Outcome.OK)
	span.SetAttributes(
		attribute.Int("sources.total", len(outcomes)),
		attribute.Int("sources.answered", answered),
		attribute.Int("results.raw", len(raws)),
		attribute.Int("results.items", len(items)),
	)
	metrics.MergedItems.Observe(float64(len(items)))

	log.WithFields(logrus.Fields{
		"query":    query,
		"sources":  len(outcomes),
		"answered": answered,
		"raw":      len(raws),
		"items":    len(items),
	}).Info("aggregation finished")

	// Nothing is cached when no source answered.
	if a.cache != nil && answered > 0 {
		a.cache.Put(query, items)
	}

	return items
}

// Fetch queries every registered source concurrently and returns one outcome per
// source in registration order, after all of them finished or the deadline passed.
func (a *Aggregator) Fetch(ctx context.Context, query string) []Outcome {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && a.opts.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Deadline)
		defer cancel()
	}

	sources := a.registry.All()
	outcomes := make([]Outcome, len(sources))

	var g errgroup.Group
	if a.opts.Concurrency > 0 {
		g.SetLimit(a.opts.Concurrency)
	}

	for i, src := range sources {
		g.Go(func() error {
			outcomes[i] = a.fetchOne(ctx, src, query)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (a *Aggregator) fetchOne(ctx context.Context, src source.Source, query string) Outcome {
	name := src.Name()
	outcome := Outcome{Source: name}

	ctx, span := telemetry.Tracer("aggregator").Start(ctx, "source.Search")
	defer span.End()
	span.SetAttributes(attribute.String("source", name))

	logger := log.WithFields(logrus.Fields{"source": name, "query": query})

	if blocked, until := a.health.blocked(name, a.now()); blocked {
		outcome.Skipped = true
		outcome.Err = fmt.Errorf("source %s is blocked until %s", name, until.Format(time.TimeOnly))
		metrics.SourceRequestsTotal.WithLabelValues(name, "skipped").Inc()
		logger.Debug("source skipped after repeated failures")
		return outcome
	}

	// Never queried: failed-empty for this run, but not held against the source.
	if err := ctx.Err(); err != nil {
		outcome.Err = err
		metrics.SourceRequestsTotal.WithLabelValues(name, "cancelled").Inc()
		logger.Debugf("source not queried: %s", err)
		return outcome
	}

	started := a.now()
	results, err := backoff.RetryNotifyWithData(
		func() ([]*content.Raw, error) {
			results, err := a.attempt(ctx, src, query)
			if err != nil && (errors.Is(err, errPanicked) || !isTransientError(err)) {
				return nil, backoff.Permanent(err)
			}
			return results, err
		},
		newBackOff(ctx, a.opts.Retries, a.opts.RetryDelay),
		func(err error, wait time.Duration) {
			logger.WithField("wait", wait).Warnf("retrying after transient error: %s", err)
		},
	)
	outcome.Latency = a.now().Sub(started)

	if err != nil {
		outcome.Err = err
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.health.record(name, err, outcome.Latency, a.now())
		logger.WithField("latency", outcome.Latency).Errorf("source search failed: %s", err)
		return outcome
	}

	results = lo.Filter(results, func(raw *content.Raw, _ int) bool {
		return raw != nil
	})
	for _, raw := range results {
		raw.SourceName = name
	}

	outcome.Results = results
	span.SetAttributes(attribute.Int("results", len(results)))
	metrics.SourceResults.WithLabelValues(name).Observe(float64(len(results)))
	a.health.record(name, nil, outcome.Latency, a.now())
	logger.WithFields(logrus.Fields{"latency": outcome.Latency, "results": len(results)}).Debug("source answered")

	return outcome
}

type attemptResult struct {
	results []*content.Raw
	err     error
}

// attempt runs one search. Sources that ignore ctx are abandoned when it expires;
// a panic is reported as an error.
func (a *Aggregator) attempt(ctx context.Context, src source.Source, query string) ([]*content.Raw, error) {
	if limiter := a.limiter(src.Name()); limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if a.opts.SourceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.SourceTimeout)
		defer cancel()
	}

	done := make(chan attemptResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(logrus.Fields{"source": src.Name(), "stack": string(debug.Stack())}).Error("source panicked")
				done <- attemptResult{err: fmt.Errorf("%w: %v", errPanicked, r)}
			}
		}()

		results, err := src.Search(ctx, query)
		done <- attemptResult{results: results, err: err}
	}()

	select {
	case r := <-done:
		return r.results, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (a *Aggregator) limiter(name string) *rate.Limiter {
	if a.opts.RatePerSecond <= 0 {
		return nil
	}

	a.limitersMu.Lock()
	defer a.limitersMu.Unlock()

	limiter, ok := a.limiters[name]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(a.opts.RatePerSecond), 1)
		a.limiters[name] = limiter
	}
	return limiter
}

// Health reports every registered source, sorted by name.
func (a *Aggregator) Health() []SourceHealth {
	return a.health.snapshot(a.registry.Names())
}
