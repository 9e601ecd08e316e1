package query

import (
	"testing"
	"time"

	"github.com/katalog-cli/katalog/filesystem"
	"github.com/katalog-cli/katalog/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestQuery(t *testing.T) {
	Convey("Given an empty history", t, func() {
		viper.Set(key.SearchShowQuerySuggestions, true)
		So(Clear(), ShouldBeNil)

		clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		now = func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}
		Reset(func() { now = time.Now })

		Convey("When remembering queries", func() {
			So(Remember("breaking bad", 1), ShouldBeNil)
			So(Remember("better call saul", 10), ShouldBeNil)
			So(Remember("  BREAKING BAD ", 1), ShouldBeNil)

			Convey("Then suggestions are sorted by rank", func() {
				s := SuggestMany("b")
				So(s, ShouldResemble, []string{"better call saul", "breaking bad"})
				So(Suggest("brk").MustGet(), ShouldEqual, "breaking bad")
				So(Suggest("xyz").IsAbsent(), ShouldBeTrue)
			})

			Convey("Then recent queries come most recent first", func() {
				So(Recent(10), ShouldResemble, []string{"breaking bad", "better call saul"})
				So(Recent(1), ShouldResemble, []string{"breaking bad"})
				So(Top(1), ShouldResemble, []string{"better call saul"})
			})

			Convey("Then a new query invalidates cached suggestions", func() {
				So(SuggestMany("dark"), ShouldBeEmpty)
				So(Remember("dark", 1), ShouldBeNil)
				So(SuggestMany("dark"), ShouldResemble, []string{"dark"})
			})
		})

		Convey("The history is capped and forgets the least recently used", func() {
			viper.Set(key.SearchHistorySize, 2)
			Reset(func() { viper.Set(key.SearchHistorySize, defaultHistorySize) })

			So(Remember("dark", 5), ShouldBeNil)
			So(Remember("ozark", 1), ShouldBeNil)
			So(Remember("lost", 1), ShouldBeNil)
			So(Recent(10), ShouldResemble, []string{"lost", "ozark"})
		})

		Convey("Blank queries are ignored", func() {
			So(Remember("   ", 1), ShouldBeNil)
			So(Recent(10), ShouldBeEmpty)
		})

		Convey("Suggestions can be turned off", func() {
			So(Remember("dark", 1), ShouldBeNil)
			viper.Set(key.SearchShowQuerySuggestions, false)
			So(SuggestMany("dark"), ShouldBeEmpty)
		})

		Convey("It sanitizes input", func() {
			So(sanitize("  NARUTO  "), ShouldEqual, "naruto")
		})
	})
}
