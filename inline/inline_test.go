package inline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/search"
	"github.com/katalog-cli/katalog/title"
	"github.com/samber/lo"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeCatalog struct {
	items    []*content.Item
	enriched []string
}

func (f *fakeCatalog) Search(context.Context, string) []*content.Item {
	return f.items
}

func (f *fakeCatalog) AdvancedSearch(filter search.Filter, sort search.Sort, page, pageSize int) search.Page {
	return search.AdvancedSearch(f.items, filter, sort, page, pageSize)
}

func (f *fakeCatalog) Enrich(_ context.Context, id string) (*content.Item, error) {
	f.enriched = append(f.enriched, id)
	if id == "dark" {
		return nil, errors.New("no details")
	}
	item, _ := lo.Find(f.items, func(i *content.Item) bool { return i.ID == id })
	enriched := item.Clone()
	enriched.Description = "enriched"
	return enriched, nil
}

func item(name string, year int, urls ...string) *content.Item {
	i := &content.Item{
		ID:              title.GenerateID(name),
		Title:           name,
		NormalizedTitle: title.Normalize(name),
		Type:            content.Series,
	}
	if year > 0 {
		i.Year = lo.ToPtr(year)
	}
	for _, url := range urls {
		i.Sources = append(i.Sources, &content.SourceEntry{SourceName: url, SourceURL: url})
	}
	return i
}

func TestRun(t *testing.T) {
	Convey("Given a catalog", t, func() {
		ctx := context.Background()
		catalog := &fakeCatalog{items: []*content.Item{
			item("Breaking Bad", 2008, "https://a.test/bb", "https://b.test/bb"),
			item("Dark", 0, "https://a.test/dark"),
		}}

		Convey("Json output holds the query and every item", func() {
			var buf bytes.Buffer
			So(Run(ctx, &Options{Out: &buf, Catalog: catalog, Query: "test", Json: true}), ShouldBeNil)

			var output Output
			So(json.Unmarshal(buf.Bytes(), &output), ShouldBeNil)
			So(output.Query, ShouldEqual, "test")
			So(output.Result, ShouldHaveLength, 2)
			So(output.Page, ShouldBeNil)
		})

		Convey("An empty result is an empty list", func() {
			var buf bytes.Buffer
			empty := &fakeCatalog{}
			So(Run(ctx, &Options{Out: &buf, Catalog: empty, Query: "xyzzy", Json: true}), ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, `"result":[]`)
		})

		Convey("Plain output prints one line per item", func() {
			var buf bytes.Buffer
			So(Run(ctx, &Options{Out: &buf, Catalog: catalog, Query: "b"}), ShouldBeNil)

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			So(lines, ShouldHaveLength, 2)
			So(lines[0], ShouldEqual, "breaking_bad\tBreaking Bad\t2008\thttps://a.test/bb https://b.test/bb")
			So(lines[1], ShouldEqual, "dark\tDark\t-\thttps://a.test/dark")
		})

		Convey("A picker keeps a single item", func() {
			picker, err := ParsePicker("last", "")
			So(err, ShouldBeNil)

			var buf bytes.Buffer
			So(Run(ctx, &Options{Out: &buf, Catalog: catalog, Json: true, Picker: mo.Some(picker)}), ShouldBeNil)

			var output Output
			So(json.Unmarshal(buf.Bytes(), &output), ShouldBeNil)
			So(output.Result, ShouldHaveLength, 1)
			So(output.Result[0].ID, ShouldEqual, "dark")
		})

		Convey("Advanced options page the catalog", func() {
			filter := search.DefaultFilter()
			filter.MinSources = 2

			var buf bytes.Buffer
			So(Run(ctx, &Options{
				Out:      &buf,
				Catalog:  catalog,
				Json:     true,
				Advanced: mo.Some(Advanced{Filter: filter, Sort: search.TitleAsc, Page: 1, PageSize: 10}),
			}), ShouldBeNil)

			var output Output
			So(json.Unmarshal(buf.Bytes(), &output), ShouldBeNil)
			So(output.Page, ShouldNotBeNil)
			So(output.Page.TotalCount, ShouldEqual, 1)
			So(output.Result[0].ID, ShouldEqual, "breaking_bad")
		})

		Convey("Enriching keeps items whose details failed", func() {
			var buf bytes.Buffer
			So(Run(ctx, &Options{Out: &buf, Catalog: catalog, Json: true, Enrich: true}), ShouldBeNil)

			var output Output
			So(json.Unmarshal(buf.Bytes(), &output), ShouldBeNil)
			So(catalog.enriched, ShouldResemble, []string{"breaking_bad", "dark"})
			So(output.Result[0].Description, ShouldEqual, "enriched")
			So(output.Result[1].Description, ShouldBeEmpty)
		})
	})
}

func TestParsePicker(t *testing.T) {
	Convey("Pickers select from the results", t, func() {
		items := []*content.Item{item("Breaking Bad", 2008), item("Dark", 2017), item("Ozark", 2017)}

		for kind, want := range map[string]string{"first": "breaking_bad", "last": "ozark"} {
			picker, err := ParsePicker(kind, "")
			So(err, ShouldBeNil)
			So(picker(items).ID, ShouldEqual, want)
			So(picker(nil), ShouldBeNil)
		}

		picker, err := ParsePicker("exact", "DARK")
		So(err, ShouldBeNil)
		So(picker(items).ID, ShouldEqual, "dark")

		picker, err = ParsePicker("index", "10")
		So(err, ShouldBeNil)
		So(picker(items).ID, ShouldEqual, "ozark")

		_, err = ParsePicker("index", "x")
		So(err, ShouldNotBeNil)

		_, err = ParsePicker("random", "")
		So(err, ShouldNotBeNil)
	})
}
