package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/internal/ui"
	"github.com/katalog-cli/katalog/log"
	"github.com/katalog-cli/katalog/open"
	"github.com/katalog-cli/katalog/query"
	"github.com/katalog-cli/katalog/util"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

const recentQueries = 50

type searchDoneMsg struct {
	query string
	items []*content.Item
}

type enrichDoneMsg struct {
	item *content.Item
}

// startSearch switches to the loading view and searches q in the background.
func (b *statefulBubble) startSearch(q string) tea.Cmd {
	b.startLoading(fmt.Sprintf("Searching for %s...", q))
	return tea.Batch(b.search(q), b.spinnerC.Tick)
}

// remember ranks q in the search history. Opened titles weigh more than typed queries.
func remember(q string, weight int) tea.Cmd {
	return func() tea.Msg {
		if err := query.Remember(q, weight); err != nil {
			log.WithField("query", q).Warnf("remembering query failed: %s", err)
		}
		return nil
	}
}

func (b *statefulBubble) search(q string) tea.Cmd {
	return func() tea.Msg {
		remember(q, 1)()

		items := b.options.Catalog.Search(b.ctx, q)
		log.WithFields(logrus.Fields{"query": q, "items": len(items)}).Info("search finished")
		return searchDoneMsg{query: q, items: items}
	}
}

func (b *statefulBubble) enrich(item *content.Item) tea.Cmd {
	return func() tea.Msg {
		enriched, err := b.options.Catalog.Enrich(b.ctx, item.ID)
		if err != nil {
			log.WithFields(logrus.Fields{"id": item.ID, "error": err}).Warn("loading details failed")
			return ui.Notice("Details unavailable: " + err.Error())
		}
		return enrichDoneMsg{item: enriched}
	}
}

func (b *statefulBubble) openURL(url string) tea.Cmd {
	return func() tea.Msg {
		if err := open.URL(url); err != nil {
			log.WithField("url", url).Warnf("open failed: %s", err)
			return ui.Notice("Could not open " + url)
		}
		return ui.Notice("Opened " + url)
	}
}

func (b *statefulBubble) loadHistory() tea.Cmd {
	items := lo.Map(query.Recent(recentQueries), func(q string, _ int) list.Item {
		return &listItem{internal: q}
	})
	return b.historyC.SetItems(items)
}

// selectItem shows item in the details view.
func (b *statefulBubble) selectItem(item *content.Item) tea.Cmd {
	b.selectedItem = item
	b.resizeSources()

	sources := lo.Map(item.Sources, func(s *content.SourceEntry, _ int) list.Item {
		return &listItem{internal: s}
	})
	b.sourcesC.ResetSelected()
	return b.sourcesC.SetItems(sources)
}

// replaceItem swaps the results entry with the same id for item.
func (b *statefulBubble) replaceItem(item *content.Item) tea.Cmd {
	_, index, ok := lo.FindIndexOf(b.itemsC.Items(), func(i list.Item) bool {
		e, isItem := i.(*listItem).internal.(*content.Item)
		return isItem && e.ID == item.ID
	})
	if !ok {
		return nil
	}
	return b.itemsC.SetItem(index, &listItem{internal: item})
}

func resultsTitle(q string, count int) string {
	return fmt.Sprintf("Results for %q (%s)", q, util.Quantify(count, "item", "items"))
}
