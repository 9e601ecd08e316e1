// Package warmer refreshes frequently searched queries on a schedule so that
// their cache entries never expire while the API is running.
package warmer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/key"
	"github.com/katalog-cli/katalog/log"
	"github.com/katalog-cli/katalog/metrics"
	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const DefaultSchedule = "@every 6h"

// Refresher aggregates a query even when it is cached.
type Refresher interface {
	Refresh(ctx context.Context, query string) []*content.Item
}

// Ranked lists the most searched queries.
type Ranked interface {
	Top(limit int) []string
}

type Options struct {
	Schedule string
	Queries  []string
	Top      int
}

func OptionsFromConfig() Options {
	return Options{
		Schedule: lo.Ternary(viper.GetString(key.WarmerSchedule) == "", DefaultSchedule, viper.GetString(key.WarmerSchedule)),
		Queries:  viper.GetStringSlice(key.WarmerQueries),
		Top:      viper.GetInt(key.WarmerTop),
	}
}

type Warmer struct {
	cron      *cron.Cron
	refresher Refresher
	ranked    Ranked
	opts      Options

	// running keeps two runs from overlapping when one outlasts the schedule.
	running sync.Mutex
}

// New returns a warmer. ranked may be nil, in which case only the configured queries are refreshed.
func New(refresher Refresher, ranked Ranked, opts Options) *Warmer {
	if opts.Schedule == "" {
		opts.Schedule = DefaultSchedule
	}
	return &Warmer{
		cron:      cron.New(),
		refresher: refresher,
		ranked:    ranked,
		opts:      opts,
	}
}

// Start schedules the warm-up job. Runs use ctx and stop refreshing once it is done.
func (w *Warmer) Start(ctx context.Context) error {
	_, err := w.cron.AddFunc(w.opts.Schedule, func() {
		w.Run(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to add warm-up job: %w", err)
	}

	w.cron.Start()
	log.WithField("schedule", w.opts.Schedule).Info("cache warmer started")
	return nil
}

// Stop stops scheduling and waits for a running job to finish.
func (w *Warmer) Stop() {
	<-w.cron.Stop().Done()
	log.Info("cache warmer stopped")
}

// Queries lists what the next run refreshes: configured queries first, then the
// most searched ones, each once.
func (w *Warmer) Queries() []string {
	queries := w.opts.Queries
	if w.ranked != nil && w.opts.Top > 0 {
		queries = append(append([]string(nil), queries...), w.ranked.Top(w.opts.Top)...)
	}

	seen := make(map[string]struct{})
	return lo.Filter(queries, func(q string, _ int) bool {
		k := strings.ToLower(strings.TrimSpace(q))
		if k == "" {
			return false
		}
		if _, ok := seen[k]; ok {
			return false
		}
		seen[k] = struct{}{}
		return true
	})
}

// Run refreshes every query once and returns how many were refreshed.
// A run that finds another one in progress does nothing.
func (w *Warmer) Run(ctx context.Context) int {
	if !w.running.TryLock() {
		log.Warn("cache warmer still running, skipping")
		metrics.WarmerRunsTotal.WithLabelValues("skipped").Inc()
		return 0
	}
	defer w.running.Unlock()

	queries := w.Queries()
	log.WithField("queries", len(queries)).Info("warming cache")

	refreshed := 0
	for _, q := range queries {
		if ctx.Err() != nil {
			log.Warn("cache warmer interrupted")
			metrics.WarmerRunsTotal.WithLabelValues("interrupted").Inc()
			return refreshed
		}

		items := w.refresher.Refresh(ctx, q)
		refreshed++
		log.WithFields(logrus.Fields{"query": q, "items": len(items)}).Debug("query refreshed")
	}

	metrics.WarmerRunsTotal.WithLabelValues("ok").Inc()
	return refreshed
}
