package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/katalog-cli/katalog/icon"
	"github.com/katalog-cli/katalog/style"
	"github.com/muesli/reflow/wrap"
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case loadingState:
		output = b.viewLoading()
	case searchState:
		output = b.viewSearch()
	case historyState:
		output = listExtraPaddingStyle.Render(b.historyC.View())
	case itemsState:
		output = listExtraPaddingStyle.Render(b.itemsC.View())
	case detailsState:
		output = b.viewDetails()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Loading"),
			"",
			b.spinnerC.View() + " " + b.progressStatus,
		},
	)
}

func (b *statefulBubble) viewSearch() string {
	lines := []string{
		style.Title("Search Catalog"),
		"",
		b.inputC.View(),
	}

	if suggestion, ok := b.searchSuggestion.Get(); ok {
		lines = append(lines, "", style.Faint(fmt.Sprintf("%s %s", icon.Get(icon.Search), suggestion)))
	}

	return b.renderLines(true, lines)
}

// detailsHeader renders everything known about the selected item above its sources.
func (b *statefulBubble) detailsHeader() string {
	item := b.selectedItem
	width := max(b.width, 20)

	lines := []string{
		style.Title(item.Title),
		"",
		strings.Join(itemFacts(item), " • "),
	}

	if item.Year != nil {
		lines[2] = fmt.Sprintf("%d • %s", *item.Year, lines[2])
	}

	if len(item.Tags) > 0 {
		lines = append(lines, style.Fg(style.SecondaryColor)(strings.Join(item.Tags, ", ")))
	}

	if item.Description != "" {
		lines = append(lines, "", wrap.String(item.Description, width))
	}

	return paddingStyle.Render(strings.Join(lines, "\n"))
}

func (b *statefulBubble) viewDetails() string {
	if b.selectedItem == nil {
		return listExtraPaddingStyle.Render(b.sourcesC.View())
	}
	return b.detailsHeader() + "\n" + listExtraPaddingStyle.Render(b.sourcesC.View())
}

func (b *statefulBubble) viewError() string {
	errorMsg := wrap.String(style.Fg(style.ErrorColor)(b.lastError.Error()), b.width)
	return b.renderLines(
		true,
		[]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " An error occurred:",
			"",
			errorMsg,
		},
	)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
