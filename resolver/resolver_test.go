package resolver

import (
	"testing"
	"time"

	"github.com/katalog-cli/katalog/content"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func raw(source, t string) *content.Raw {
	return &content.Raw{SourceName: source, Title: t, URL: "https://" + source + ".test/" + t, Type: content.Series}
}

func TestExactMerge(t *testing.T) {
	Convey("Given a resolver with the exact strategy", t, func() {
		now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		r := New(WithClock(func() time.Time { return now }))

		Convey("Two sources offering the same show with different markers produce one item", func() {
			items := r.Merge([]*content.Raw{
				raw("a", "Breaking Bad (2008) HD Türkçe Dublaj"),
				raw("b", "Breaking Bad 2008 Full HD"),
			})

			So(items, ShouldHaveLength, 1)
			item := items[0]
			So(item.ID, ShouldEqual, "breaking_bad_2008")
			So(item.Sources, ShouldHaveLength, 2)
			So(item.Title, ShouldNotContainSubstring, "2008")
			So(item.Title, ShouldNotContainSubstring, "HD")
			So(*item.Year, ShouldEqual, 2008)
			So(item.Sources[0].Quality, ShouldEqual, "HD")
			So(item.Sources[0].Language, ShouldEqual, DefaultLanguage)
			So(item.Sources[0].Available, ShouldBeTrue)
			So(item.LastUpdated.Equal(now), ShouldBeTrue)
		})

		Convey("A source contributes at most one entry per item", func() {
			items := r.Merge([]*content.Raw{
				raw("a", "Dark"),
				raw("a", "DARK"),
			})
			So(items, ShouldHaveLength, 1)
			So(items[0].Sources, ShouldHaveLength, 1)
		})

		Convey("The first type wins", func() {
			movie := raw("b", "Dark")
			movie.Type = content.Movie
			items := r.Merge([]*content.Raw{raw("a", "Dark"), movie})
			So(items[0].Type, ShouldEqual, content.Series)
		})

		Convey("Missing year and poster are filled by later sources", func() {
			withPoster := raw("b", "Dark")
			withPoster.Poster = "https://img.test/dark.jpg"
			withPoster.Year = lo.ToPtr(2017)

			items := r.Merge([]*content.Raw{raw("a", "Dark"), withPoster})
			So(items[0].Poster, ShouldEqual, "https://img.test/dark.jpg")
			So(*items[0].Year, ShouldEqual, 2017)
		})

		Convey("Items are ranked by source count and ties keep their order", func() {
			items := r.Merge([]*content.Raw{
				raw("a", "Ozark"),
				raw("a", "Dark"),
				raw("a", "Lost"),
				raw("b", "Dark"),
			})
			ids := lo.Map(items, func(i *content.Item, _ int) string { return i.ID })
			So(ids, ShouldResemble, []string{"dark", "ozark", "lost"})
		})

		Convey("A title that is only a year keeps it for display", func() {
			items := r.Merge([]*content.Raw{raw("a", " 1917 ")})
			So(items, ShouldHaveLength, 1)
			So(items[0].Title, ShouldEqual, "1917")
			So(items[0].ID, ShouldEqual, "1917")
		})

		Convey("Nothing in gives nothing out", func() {
			So(r.Merge(nil), ShouldBeEmpty)
		})
	})
}

func TestSimilarityMerge(t *testing.T) {
	Convey("Given a resolver with the similarity strategy", t, func() {
		r := New(WithStrategy(Similarity), WithThreshold(0.6), WithLanguage("en"))

		Convey("Near-duplicate titles are joined", func() {
			items := r.Merge([]*content.Raw{
				raw("a", "Breaking Bad"),
				raw("b", "Breaking Bad 2008"),
			})
			So(items, ShouldHaveLength, 1)
			So(items[0].ID, ShouldEqual, "breaking_bad")
			So(items[0].Sources[1].Language, ShouldEqual, "en")
		})

		Convey("Dissimilar titles stay apart", func() {
			items := r.Merge([]*content.Raw{
				raw("a", "Breaking Bad"),
				raw("b", "Better Call Saul"),
			})
			So(items, ShouldHaveLength, 2)
		})

		Convey("Ids stay unique when titles below the threshold share one", func() {
			pass := r.NewPass()
			So(pass.Add(raw("a", "Çay")), ShouldEqual, "ay")
			So(pass.Add(raw("b", "Ay")), ShouldEqual, "ay_2")
			So(pass.Items(), ShouldHaveLength, 2)
		})
	})
}

func TestParseStrategy(t *testing.T) {
	Convey("Strategies are parsed case-insensitively", t, func() {
		s, err := ParseStrategy("SIMILARITY")
		So(err, ShouldBeNil)
		So(s, ShouldEqual, Similarity)

		s, err = ParseStrategy("")
		So(err, ShouldBeNil)
		So(s, ShouldEqual, Exact)

		_, err = ParseStrategy("fuzzy")
		So(err, ShouldNotBeNil)
	})
}
