package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/katalog-cli/katalog/aggregator"
	"github.com/katalog-cli/katalog/catalog"
	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/provider"
	"github.com/katalog-cli/katalog/resolver"
	"github.com/katalog-cli/katalog/search"
	"github.com/katalog-cli/katalog/source"
	"github.com/katalog-cli/katalog/title"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeSource struct {
	name     string
	titles   []string
	searches atomic.Int32
}

func (f *fakeSource) Name() string { return f.name }
func (f *fakeSource) ID() string   { return f.name + " fake" }

func (f *fakeSource) Search(_ context.Context, query string) ([]*content.Raw, error) {
	f.searches.Add(1)
	var raws []*content.Raw
	for _, t := range f.titles {
		if title.IsMatch(query, t, 0.3) {
			raws = append(raws, &content.Raw{Title: t, URL: "https://" + f.name + ".test/" + title.GenerateID(t), Type: content.Series})
		}
	}
	return raws, nil
}

// detailed also describes its pages.
type detailed struct {
	fakeSource
	details *content.Details
	err     error
}

func (d *detailed) Details(context.Context, string) (*content.Details, error) {
	return d.details, d.err
}

var _ source.Detailer = (*detailed)(nil)

func newPool(sources ...source.Source) *Pool {
	registry := provider.NewRegistry()
	for _, src := range sources {
		So(registry.Register(src), ShouldBeNil)
	}
	cache := catalog.New(catalog.Options{TTL: time.Hour})
	agg := aggregator.New(registry, resolver.New(), cache, aggregator.Options{SourceTimeout: time.Second})
	return New(registry, agg, cache)
}

func TestPool(t *testing.T) {
	Convey("Given a pool over two sources", t, func() {
		ctx := context.Background()
		plain := &fakeSource{name: "plain", titles: []string{"Breaking Bad", "Dark"}}
		rich := &detailed{
			fakeSource: fakeSource{name: "rich", titles: []string{"Breaking Bad HD", "Better Call Saul"}},
			details: &content.Details{
				Description: "A chemistry teacher turns to crime.",
				Rating:      lo.ToPtr(9.5),
				Tags:        []string{"Crime", "Drama"},
			},
		}
		p := newPool(plain, rich)

		Convey("A repeated search is answered from the cache", func() {
			first := p.Search(ctx, "Breaking Bad")
			second := p.Search(ctx, "breaking  BAD")
			So(first, ShouldHaveLength, 1)
			So(second, ShouldHaveLength, 1)
			So(second[0].ID, ShouldEqual, first[0].ID)
			So(plain.searches.Load(), ShouldEqual, 1)

			Convey("Refresh goes back to the sources", func() {
				p.Refresh(ctx, "Breaking Bad")
				So(plain.searches.Load(), ShouldEqual, 2)
			})
		})

		Convey("Searched items are reachable by id and in the full catalog", func() {
			p.Search(ctx, "Breaking Bad")
			p.Search(ctx, "Dark")

			item, ok := p.GetByID("breaking_bad").Get()
			So(ok, ShouldBeTrue)
			So(item.Sources, ShouldHaveLength, 2)
			So(p.GetAll(), ShouldHaveLength, 2)
			So(p.GetByID("missing").IsAbsent(), ShouldBeTrue)

			stats := p.Stats(5)
			So(stats.TotalItems, ShouldEqual, 2)
			So(stats.MultiSource, ShouldEqual, 1)

			page := p.AdvancedSearch(search.DefaultFilter(), search.TitleAsc, 1, 10)
			So(page.TotalCount, ShouldEqual, 2)
			So(page.Items[0].Title, ShouldEqual, "Breaking Bad")

			So(p.Autocomplete("dar"), ShouldResemble, []string{"Dark"})
		})

		Convey("Enrich fills metadata from sources that offer details", func() {
			p.Search(ctx, "Breaking Bad")

			item, err := p.Enrich(ctx, "breaking_bad")
			So(err, ShouldBeNil)
			So(item.Description, ShouldEqual, "A chemistry teacher turns to crime.")
			So(*item.Rating, ShouldEqual, 9.5)
			So(item.Tags, ShouldResemble, []string{"Crime", "Drama"})

			cached := p.GetByID("breaking_bad").MustGet()
			So(cached.Description, ShouldEqual, item.Description)

			Convey("Enriching again changes nothing", func() {
				again, err := p.Enrich(ctx, "breaking_bad")
				So(err, ShouldBeNil)
				So(again.Tags, ShouldResemble, []string{"Crime", "Drama"})
			})
		})

		Convey("A failing detail source leaves the item as it was", func() {
			rich.details, rich.err = nil, errors.New("page moved")
			p.Search(ctx, "Breaking Bad")

			item, err := p.Enrich(ctx, "breaking_bad")
			So(err, ShouldBeNil)
			So(item.Description, ShouldBeEmpty)
		})

		Convey("Unknown ids are reported", func() {
			_, err := p.Enrich(ctx, "nope")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)

			_, err = p.Related("nope", 5)
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("Clearing the cache empties the catalog", func() {
			p.Search(ctx, "Breaking Bad")
			p.ClearCache()
			So(p.GetAll(), ShouldBeEmpty)
		})
	})
}
