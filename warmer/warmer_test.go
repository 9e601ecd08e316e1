package warmer

import (
	"context"
	"sync"
	"testing"

	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

type recorder struct {
	mu      sync.Mutex
	queries []string
}

func (r *recorder) Refresh(_ context.Context, q string) []*content.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, q)
	return []*content.Item{{ID: q}}
}

type ranked []string

func (r ranked) Top(limit int) []string {
	return r[:min(limit, len(r))]
}

func TestWarmer(t *testing.T) {
	Convey("Given a warmer with configured and ranked queries", t, func() {
		refresher := &recorder{}
		w := New(refresher, ranked{"dark", "ozark", "lost"}, Options{
			Queries: []string{"Breaking Bad", "  ", "DARK"},
			Top:     2,
		})

		Convey("Queries are deduplicated, configured ones first", func() {
			So(w.Queries(), ShouldResemble, []string{"Breaking Bad", "DARK", "ozark"})
		})

		Convey("A run refreshes each query once", func() {
			before := testutil.ToFloat64(metrics.WarmerRunsTotal.WithLabelValues("ok"))
			So(w.Run(context.Background()), ShouldEqual, 3)
			So(refresher.queries, ShouldResemble, []string{"Breaking Bad", "DARK", "ozark"})
			So(testutil.ToFloat64(metrics.WarmerRunsTotal.WithLabelValues("ok")), ShouldEqual, before+1)
		})

		Convey("A cancelled run stops early", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			So(w.Run(ctx), ShouldEqual, 0)
			So(refresher.queries, ShouldBeEmpty)
		})

		Convey("Overlapping runs are skipped", func() {
			w.running.Lock()
			So(w.Run(context.Background()), ShouldEqual, 0)
			w.running.Unlock()
		})

		Convey("Without ranking only configured queries are used", func() {
			w := New(refresher, nil, Options{Queries: []string{"Dune"}, Top: 5})
			So(w.Queries(), ShouldResemble, []string{"Dune"})
		})

		Convey("The schedule is validated on start", func() {
			w := New(refresher, nil, Options{Schedule: "whenever"})
			So(w.Start(context.Background()), ShouldNotBeNil)

			w = New(refresher, nil, Options{})
			So(w.Start(context.Background()), ShouldBeNil)
			w.Stop()
		})
	})
}
