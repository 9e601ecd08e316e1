package aggregator

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/katalog-cli/katalog/catalog"
	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/provider"
	"github.com/katalog-cli/katalog/resolver"
	"github.com/katalog-cli/katalog/source"
	"github.com/katalog-cli/katalog/title"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeSource struct {
	name   string
	titles []string
	err    error
	panics bool
	delay  time.Duration
	calls  atomic.Int32

	// failures makes the first n calls fail with err.
	failures int32
}

func (f *fakeSource) Name() string { return f.name }
func (f *fakeSource) ID() string   { return f.name + " fake" }

func (f *fakeSource) Search(ctx context.Context, query string) ([]*content.Raw, error) {
	call := f.calls.Add(1)

	if f.panics {
		panic("boom")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil && (f.failures == 0 || call <= f.failures) {
		return nil, f.err
	}

	var results []*content.Raw
	for _, t := range f.titles {
		if title.IsMatch(query, t, 0.3) {
			results = append(results, &content.Raw{Title: t, URL: "https://" + f.name + ".test/" + title.GenerateID(t), Type: content.Series})
		}
	}
	return results, nil
}

// stubborn ignores cancellation.
type stubborn struct{ fakeSource }

func (s *stubborn) Search(context.Context, string) ([]*content.Raw, error) {
	time.Sleep(200 * time.Millisecond)
	return []*content.Raw{{Title: "Too Late"}}, nil
}

func newAggregator(cache *catalog.Cache, opts Options, sources ...source.Source) *Aggregator {
	registry := provider.NewRegistry()
	for _, src := range sources {
		So(registry.Register(src), ShouldBeNil)
	}
	return New(registry, resolver.New(), cache, opts)
}

func fastOptions() Options {
	return Options{SourceTimeout: time.Second, Retries: 0}
}

func TestSearchAndMerge(t *testing.T) {
	Convey("Given several sources", t, func() {
		ctx := context.Background()
		cache := catalog.New(catalog.Options{TTL: time.Hour})

		a := &fakeSource{name: "a", titles: []string{"Breaking Bad (2008) HD Türkçe Dublaj", "Dark"}}
		b := &fakeSource{name: "b", titles: []string{"Breaking Bad 2008 Full HD"}}

		Convey("The same show from two sources becomes one item", func() {
			agg := newAggregator(cache, fastOptions(), a, b)

			items := agg.SearchAndMerge(ctx, "Breaking Bad")
			So(items, ShouldHaveLength, 1)
			So(items[0].Sources, ShouldHaveLength, 2)
			So(items[0].Sources[0].SourceName, ShouldEqual, "a")
			So(items[0].Sources[1].SourceName, ShouldEqual, "b")
			So(items[0].Title, ShouldNotContainSubstring, "2008")
			So(items[0].Title, ShouldNotContainSubstring, "HD")

			Convey("And the merge is cached under the query", func() {
				So(cache.Get("breaking bad").MustGet(), ShouldHaveLength, 1)
			})
		})

		Convey("A query nothing matches gives an empty list", func() {
			agg := newAggregator(cache, fastOptions(), a, b)

			items := agg.SearchAndMerge(ctx, "Xyzzy Nonexistent Title 9999")
			So(items, ShouldNotBeNil)
			So(items, ShouldBeEmpty)
		})

		Convey("One failing source out of three does not affect the others", func() {
			broken := &fakeSource{name: "broken", err: errors.New("unexpected markup")}
			agg := newAggregator(cache, fastOptions(), a, broken, b)

			items := agg.SearchAndMerge(ctx, "Breaking Bad")
			So(items, ShouldHaveLength, 1)
			So(items[0].Sources, ShouldHaveLength, 2)

			outcomes := agg.Fetch(ctx, "Breaking Bad")
			So(outcomes[1].Source, ShouldEqual, "broken")
			So(outcomes[1].Err, ShouldNotBeNil)
			So(outcomes[1].Results, ShouldBeEmpty)
		})

		Convey("A panicking source is recovered", func() {
			agg := newAggregator(cache, fastOptions(), &fakeSource{name: "panics", panics: true}, b)

			items := agg.SearchAndMerge(ctx, "Breaking Bad")
			So(items, ShouldHaveLength, 1)
			So(items[0].Sources[0].SourceName, ShouldEqual, "b")
		})

		Convey("A slow source times out without holding the others back", func() {
			slow := &fakeSource{name: "slow", titles: []string{"Breaking Bad"}, delay: time.Second}
			agg := newAggregator(cache, Options{SourceTimeout: 50 * time.Millisecond}, slow, b)

			started := time.Now()
			items := agg.SearchAndMerge(ctx, "Breaking Bad")
			So(time.Since(started), ShouldBeLessThan, 500*time.Millisecond)
			So(items, ShouldHaveLength, 1)
			So(items[0].Sources, ShouldHaveLength, 1)
		})

		Convey("A source ignoring cancellation is abandoned at the deadline", func() {
			agg := newAggregator(cache, Options{Deadline: 50 * time.Millisecond}, &stubborn{fakeSource{name: "stubborn"}}, b)

			started := time.Now()
			outcomes := agg.Fetch(ctx, "Breaking Bad")
			So(time.Since(started), ShouldBeLessThan, 150*time.Millisecond)
			So(errors.Is(outcomes[0].Err, context.DeadlineExceeded), ShouldBeTrue)
			So(outcomes[1].OK(), ShouldBeTrue)
		})

		Convey("Sources still waiting for a slot at the deadline are not counted as failing", func() {
			slow := &fakeSource{name: "slow", titles: []string{"Breaking Bad"}, delay: time.Second}
			agg := newAggregator(cache, Options{Deadline: 50 * time.Millisecond, Concurrency: 1}, slow, b)

			outcomes := agg.Fetch(ctx, "Breaking Bad")
			So(errors.Is(outcomes[1].Err, context.DeadlineExceeded), ShouldBeTrue)
			So(b.calls.Load(), ShouldEqual, 0)

			report := agg.Health()
			So(report[0].Name, ShouldEqual, "b")
			So(report[0].TotalRequests, ShouldEqual, 0)
			So(report[0].ConsecutiveFailures, ShouldEqual, 0)
			So(report[1].TotalFailures, ShouldEqual, 1)
		})

		Convey("Transient errors are retried", func() {
			flaky := &fakeSource{name: "flaky", titles: []string{"Breaking Bad"}, err: io.ErrUnexpectedEOF, failures: 1}
			agg := newAggregator(cache, Options{SourceTimeout: time.Second, Retries: 2, RetryDelay: time.Millisecond}, flaky)

			items := agg.SearchAndMerge(ctx, "Breaking Bad")
			So(items, ShouldHaveLength, 1)
			So(flaky.calls.Load(), ShouldEqual, 2)
		})

		Convey("Permanent errors are not retried", func() {
			broken := &fakeSource{name: "broken", err: errors.New("unexpected markup")}
			agg := newAggregator(cache, Options{Retries: 3, RetryDelay: time.Millisecond}, broken)

			agg.SearchAndMerge(ctx, "Breaking Bad")
			So(broken.calls.Load(), ShouldEqual, 1)
		})

		Convey("Nothing is cached when no source answered", func() {
			broken := &fakeSource{name: "broken", err: errors.New("unexpected markup")}
			agg := newAggregator(cache, fastOptions(), broken)

			So(agg.SearchAndMerge(ctx, "Breaking Bad"), ShouldBeEmpty)
			So(cache.Get("Breaking Bad").IsPresent(), ShouldBeFalse)
		})

		Convey("An empty registry gives an empty list", func() {
			agg := New(provider.NewRegistry(), nil, cache, fastOptions())
			So(agg.SearchAndMerge(ctx, "Breaking Bad"), ShouldBeEmpty)
		})
	})
}

func TestHealth(t *testing.T) {
	Convey("Given a source that keeps failing", t, func() {
		ctx := context.Background()
		broken := &fakeSource{name: "broken", err: errors.New("unexpected markup")}
		healthy := &fakeSource{name: "healthy", titles: []string{"Dark"}}
		agg := newAggregator(nil, fastOptions(), broken, healthy)

		now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
		agg.now = func() time.Time { return now }

		for i := 0; i < failureThreshold; i++ {
			agg.Fetch(ctx, "dark")
		}

		Convey("It is blocked after the threshold and skipped", func() {
			report := agg.Health()
			So(report[0].Name, ShouldEqual, "broken")
			So(report[0].ConsecutiveFailures, ShouldEqual, failureThreshold)
			So(report[0].BlockedUntil.Equal(now.Add(blockBase)), ShouldBeTrue)
			So(report[1].TotalRequests, ShouldEqual, failureThreshold)
			So(report[1].LastSuccessAt, ShouldNotBeNil)

			outcomes := agg.Fetch(ctx, "dark")
			So(outcomes[0].Skipped, ShouldBeTrue)
			So(broken.calls.Load(), ShouldEqual, failureThreshold)
		})

		Convey("It is queried again once the block expires", func() {
			now = now.Add(blockBase)
			agg.Fetch(ctx, "dark")
			So(broken.calls.Load(), ShouldEqual, failureThreshold+1)
		})
	})

	Convey("Block windows grow up to a cap", t, func() {
		So(blockDuration(3), ShouldEqual, 2*time.Minute)
		So(blockDuration(4), ShouldEqual, 4*time.Minute)
		So(blockDuration(5), ShouldEqual, 8*time.Minute)
		So(blockDuration(9), ShouldEqual, blockMax)
	})
}

func TestIsTransientError(t *testing.T) {
	Convey("Transient errors are recognised", t, func() {
		So(isTransientError(context.DeadlineExceeded), ShouldBeTrue)
		So(isTransientError(io.EOF), ShouldBeTrue)
		So(isTransientError(errors.New("read: connection reset by peer")), ShouldBeTrue)
		So(isTransientError(context.Canceled), ShouldBeFalse)
		So(isTransientError(errors.New("unexpected markup")), ShouldBeFalse)
		So(isTransientError(nil), ShouldBeFalse)
	})
}
