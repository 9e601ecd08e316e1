package custom

import (
	"testing"

	"github.com/katalog-cli/katalog/content"
	. "github.com/smartystreets/goconvey/convey"
	lua "github.com/yuin/gopher-lua"
)

func TestRawFromTable(t *testing.T) {
	Convey("rawFromTable", t, func() {
		L := lua.NewState()
		defer L.Close()

		Convey("Should extract a result from a valid Lua table", func() {
			tbl := L.NewTable()
			tbl.RawSetString("title", lua.LString("Breaking Bad (2008)"))
			tbl.RawSetString("url", lua.LString("https://example.com/breaking-bad"))
			tbl.RawSetString("type", lua.LString("dizi"))
			tbl.RawSetString("poster", lua.LString("https://example.com/bb.jpg"))
			tbl.RawSetString("year", lua.LNumber(2008))

			raw, err := rawFromTable(tbl)
			So(err, ShouldBeNil)
			So(raw.Title, ShouldEqual, "Breaking Bad (2008)")
			So(raw.URL, ShouldEqual, "https://example.com/breaking-bad")
			So(raw.Type, ShouldEqual, content.Series)
			So(raw.Poster, ShouldEqual, "https://example.com/bb.jpg")
			So(*raw.Year, ShouldEqual, 2008)
		})

		Convey("Should default the type to movie", func() {
			tbl := L.NewTable()
			tbl.RawSetString("title", lua.LString("Dune"))
			tbl.RawSetString("url", lua.LString("https://example.com/dune"))

			raw, err := rawFromTable(tbl)
			So(err, ShouldBeNil)
			So(raw.Type, ShouldEqual, content.Movie)
			So(raw.Year, ShouldBeNil)
		})

		Convey("Should fail when the url is missing", func() {
			tbl := L.NewTable()
			tbl.RawSetString("title", lua.LString("Dune"))

			_, err := rawFromTable(tbl)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestDetailsFromTable(t *testing.T) {
	Convey("detailsFromTable", t, func() {
		L := lua.NewState()
		defer L.Close()

		Convey("Should read numbers given as strings", func() {
			tbl := L.NewTable()
			tbl.RawSetString("rating", lua.LString("8.9"))
			tbl.RawSetString("duration", lua.LNumber(47))

			details := detailsFromTable(tbl)
			So(*details.Rating, ShouldAlmostEqual, 8.9)
			So(*details.Duration, ShouldEqual, 47)
		})

		Convey("Should accept tags as a comma separated string", func() {
			tbl := L.NewTable()
			tbl.RawSetString("tags", lua.LString("Crime, Drama, ,Thriller"))

			So(detailsFromTable(tbl).Tags, ShouldResemble, []string{"Crime", "Drama", "Thriller"})
		})

		Convey("Should accept tags as a table", func() {
			tags := L.NewTable()
			tags.Append(lua.LString("Crime"))
			tags.Append(lua.LString("Drama"))
			tbl := L.NewTable()
			tbl.RawSetString("tags", tags)

			So(detailsFromTable(tbl).Tags, ShouldResemble, []string{"Crime", "Drama"})
		})

		Convey("Should leave missing values empty", func() {
			details := detailsFromTable(L.NewTable())
			So(details.Rating, ShouldBeNil)
			So(details.Duration, ShouldBeNil)
			So(details.Tags, ShouldBeEmpty)
		})
	})
}
