package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/filesystem"
	"github.com/katalog-cli/katalog/internal/ui"
	"github.com/katalog-cli/katalog/key"
	"github.com/katalog-cli/katalog/query"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

type fakeCatalog struct {
	items []*content.Item
}

func (f *fakeCatalog) Search(context.Context, string) []*content.Item {
	return f.items
}

func (f *fakeCatalog) Enrich(_ context.Context, id string) (*content.Item, error) {
	item, ok := lo.Find(f.items, func(i *content.Item) bool { return i.ID == id })
	if !ok {
		return nil, errors.New("content not found")
	}
	enriched := item.Clone()
	enriched.Description = "A chemistry teacher turns to crime."
	enriched.Tags = []string{"Crime", "Drama"}
	return enriched, nil
}

func newTestBubble(catalog Catalog) *statefulBubble {
	b := newBubble(context.Background(), &Options{Catalog: catalog})
	b.newState(searchState)
	b.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return b
}

func press(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBubble(t *testing.T) {
	Convey("Given the interface over a catalog", t, func() {
		So(query.Clear(), ShouldBeNil)
		viper.Set(key.SearchShowQuerySuggestions, true)

		catalog := &fakeCatalog{items: []*content.Item{
			{
				ID:    "breaking_bad",
				Title: "Breaking Bad",
				Type:  content.Series,
				Year:  lo.ToPtr(2008),
				Sources: []*content.SourceEntry{
					{SourceName: "a", SourceURL: "https://a.test/bb", Available: true},
					{SourceName: "b", SourceURL: "https://b.test/bb", Available: true},
				},
			},
			{ID: "dark", Title: "Dark", Type: content.Series},
		}}
		b := newTestBubble(catalog)

		Convey("It starts on the search input", func() {
			So(b.state, ShouldEqual, searchState)
			So(b.View(), ShouldContainSubstring, "Search Catalog")
		})

		Convey("Submitting a query shows the loading view", func() {
			b.inputC.SetValue("breaking")
			_, cmd := b.Update(press(tea.KeyEnter))
			So(cmd, ShouldNotBeNil)
			So(b.state, ShouldEqual, loadingState)
			So(b.View(), ShouldContainSubstring, "Searching for breaking")

			Convey("Esc abandons the search", func() {
				b.Update(press(tea.KeyEsc))
				So(b.state, ShouldEqual, searchState)

				b.Update(searchDoneMsg{query: "breaking", items: catalog.items})
				So(b.state, ShouldEqual, searchState)
			})
		})

		Convey("When a search finishes", func() {
			b.startSearch("breaking")
			msg := b.search("breaking")()
			So(query.Recent(1), ShouldResemble, []string{"breaking"})

			b.Update(msg)
			So(b.state, ShouldEqual, itemsState)
			So(b.itemsC.Items(), ShouldHaveLength, 2)
			So(b.itemsC.Title, ShouldContainSubstring, "2 items")

			Convey("Selecting an item lists its sources", func() {
				b.Update(press(tea.KeyEnter))
				So(b.state, ShouldEqual, detailsState)
				So(b.selectedItem.ID, ShouldEqual, "breaking_bad")
				So(b.sourcesC.Items(), ShouldHaveLength, 2)
				So(b.View(), ShouldContainSubstring, "Breaking Bad")

				Convey("Loading details updates the view and the results", func() {
					b.Update(b.enrich(b.selectedItem)())
					So(b.selectedItem.Description, ShouldNotBeEmpty)
					So(b.View(), ShouldContainSubstring, "Crime, Drama")

					first := b.itemsC.Items()[0].(*listItem).internal.(*content.Item)
					So(first.Tags, ShouldResemble, []string{"Crime", "Drama"})
				})

				Convey("Esc goes back to the results and then the input", func() {
					b.Update(press(tea.KeyEsc))
					So(b.state, ShouldEqual, itemsState)
					b.Update(press(tea.KeyEsc))
					So(b.state, ShouldEqual, searchState)
				})
			})

			Convey("The cursor wraps around", func() {
				b.Update(press(tea.KeyUp))
				So(b.itemsC.Index(), ShouldEqual, 1)
				b.Update(press(tea.KeyDown))
				So(b.itemsC.Index(), ShouldEqual, 0)
			})
		})

		Convey("Failed details become a notice", func() {
			msg := b.enrich(&content.Item{ID: "nope"})()
			notice, ok := msg.(ui.Notice)
			So(ok, ShouldBeTrue)
			So(string(notice), ShouldContainSubstring, "content not found")
		})

		Convey("An empty result is announced", func() {
			b.startSearch("xyzzy")
			_, cmd := b.Update(searchDoneMsg{query: "xyzzy"})
			So(b.state, ShouldEqual, itemsState)
			So(cmd, ShouldNotBeNil)
		})

		Convey("Past queries are suggested", func() {
			So(query.Remember("better call saul", 1), ShouldBeNil)

			b.Update(runes("bet"))
			So(b.inputC.Value(), ShouldEqual, "bet")
			So(b.searchSuggestion.MustGet(), ShouldEqual, "better call saul")
			So(b.View(), ShouldContainSubstring, "better call saul")

			b.Update(press(tea.KeyTab))
			So(b.inputC.Value(), ShouldEqual, "better call saul")
			So(b.searchSuggestion.IsAbsent(), ShouldBeTrue)

			Convey("Esc clears the input before leaving", func() {
				b.Update(press(tea.KeyEsc))
				So(b.inputC.Value(), ShouldBeEmpty)
				So(b.state, ShouldEqual, searchState)
			})
		})

		Convey("Recent searches can be repeated", func() {
			So(query.Remember("dark", 1), ShouldBeNil)

			b.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
			So(b.state, ShouldEqual, historyState)
			So(b.historyC.Items(), ShouldHaveLength, 1)

			_, cmd := b.Update(press(tea.KeyEnter))
			So(cmd, ShouldNotBeNil)
			So(b.state, ShouldEqual, loadingState)
			So(b.inputC.Value(), ShouldEqual, "dark")
		})

		Convey("Errors have their own view", func() {
			b.Update(errors.New("boom"))
			So(b.state, ShouldEqual, errorState)
			So(b.View(), ShouldContainSubstring, "boom")

			b.Update(press(tea.KeyEsc))
			So(b.state, ShouldEqual, searchState)
		})
	})
}
