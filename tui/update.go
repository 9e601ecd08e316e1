package tui

import (
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/internal/ui"
	"github.com/katalog-cli/katalog/query"
	"github.com/samber/mo"
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if noticeCmd := b.notifier.Update(msg); noticeCmd != nil {
		cmd = noticeCmd
	}

	switch msg := msg.(type) {
	case error:
		b.stopLoading()
		b.raiseError(msg)
		return b, cmd
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if bubblesKey.Matches(msg, b.keymap.forceQuit) {
			return b, tea.Quit
		}

		if bubblesKey.Matches(msg, b.keymap.back) {
			var l *list.Model
			switch b.state {
			case searchState:
				if b.inputC.Value() != "" {
					b.inputC.SetValue("")
					b.searchSuggestion = mo.None[string]()
					return b, cmd
				}
			case itemsState:
				l = &b.itemsC
			case historyState:
				l = &b.historyC
			case loadingState:
				// results of the abandoned search are dropped on arrival
				b.stopLoading()
			}

			if l != nil && l.FilterState() != list.Unfiltered {
				*l, cmd = l.Update(msg)
				return b, cmd
			}

			if b.statesHistory.Len() == 0 {
				return b, tea.Quit
			}
			b.previousState()
			return b, cmd
		}
	}

	var stateCmd tea.Cmd
	switch b.state {
	case loadingState:
		_, stateCmd = b.updateLoading(msg)
	case searchState:
		_, stateCmd = b.updateSearch(msg)
	case historyState:
		_, stateCmd = b.updateHistory(msg)
	case itemsState:
		_, stateCmd = b.updateItems(msg)
	case detailsState:
		_, stateCmd = b.updateDetails(msg)
	case errorState:
		_, stateCmd = b.updateError(msg)
	}

	return b, tea.Batch(cmd, stateCmd)
}

func (b *statefulBubble) updateLoading(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case searchDoneMsg:
		b.stopLoading()
		b.itemsC.Title = resultsTitle(msg.query, len(msg.items))
		b.itemsC.ResetFilter()
		b.itemsC.ResetSelected()

		items := make([]list.Item, len(msg.items))
		for i, item := range msg.items {
			items[i] = &listItem{internal: item}
		}
		cmd = b.itemsC.SetItems(items)
		b.newState(itemsState)

		if len(items) == 0 {
			return b, tea.Batch(cmd, ui.Notify("Nothing found"))
		}
		return b, cmd
	}

	b.spinnerC, cmd = b.spinnerC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case searchDoneMsg:
		// a search abandoned with esc
		return b, nil
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.confirm) && b.inputC.Value() != "":
			return b, b.startSearch(b.inputC.Value())
		case bubblesKey.Matches(msg, b.keymap.acceptSearchSuggestion) && b.searchSuggestion.IsPresent():
			b.inputC.SetValue(b.searchSuggestion.MustGet())
			b.searchSuggestion = mo.None[string]()
			b.inputC.CursorEnd()
			return b, nil
		case bubblesKey.Matches(msg, b.keymap.history):
			cmd = b.loadHistory()
			b.newState(historyState)
			return b, cmd
		}
	}

	b.inputC, cmd = b.inputC.Update(msg)

	if b.inputC.Value() != "" {
		if suggestion, ok := query.Suggest(b.inputC.Value()).Get(); ok && suggestion != b.inputC.Value() {
			b.searchSuggestion = mo.Some(suggestion)
		} else {
			b.searchSuggestion = mo.None[string]()
		}
	} else if b.searchSuggestion.IsPresent() {
		b.searchSuggestion = mo.None[string]()
	}

	return b, cmd
}

func (b *statefulBubble) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if b.historyC.FilterState() == list.Filtering {
			break
		}

		switch {
		case bubblesKey.Matches(msg, b.keymap.confirm):
			selected, ok := b.historyC.SelectedItem().(*listItem)
			if !ok {
				break
			}
			q := selected.FilterValue()
			b.inputC.SetValue(q)
			return b, b.startSearch(q)
		}
	}

	b.historyC, cmd = b.historyC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateItems(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case enrichDoneMsg:
		return b, b.replaceItem(msg.item)
	case tea.KeyMsg:
		if b.itemsC.FilterState() == list.Filtering {
			break
		}

		switch {
		case bubblesKey.Matches(msg, b.keymap.up):
			if n := len(b.itemsC.Items()); n > 0 && b.itemsC.Index() == 0 {
				b.itemsC.Select(n - 1)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.down):
			if n := len(b.itemsC.Items()); n > 0 && b.itemsC.Index() == n-1 {
				b.itemsC.Select(0)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.confirm):
			selected, ok := b.itemsC.SelectedItem().(*listItem)
			if !ok {
				break
			}
			item := selected.internal.(*content.Item)
			cmd = b.selectItem(item)
			b.newState(detailsState)
			return b, tea.Batch(cmd, remember(item.Title, 2))
		}
	}

	b.itemsC, cmd = b.itemsC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateDetails(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case enrichDoneMsg:
		if b.selectedItem != nil && b.selectedItem.ID == msg.item.ID {
			cmd = b.selectItem(msg.item)
		}
		return b, tea.Batch(cmd, b.replaceItem(msg.item), ui.Notify("Details loaded"))
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.enrich) && b.selectedItem != nil:
			return b, tea.Batch(b.enrich(b.selectedItem), ui.Notify("Loading details..."))
		case bubblesKey.Matches(msg, b.keymap.confirm, b.keymap.openURL):
			selected, ok := b.sourcesC.SelectedItem().(*listItem)
			if !ok {
				break
			}
			return b, b.openURL(selected.internal.(*content.SourceEntry).SourceURL)
		}
	}

	b.sourcesC, cmd = b.sourcesC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateError(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if bubblesKey.Matches(msg, b.keymap.quit) {
			return b, tea.Quit
		}
	}
	return b, nil
}
