package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/katalog-cli/katalog/color"
	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/key"
	"github.com/katalog-cli/katalog/style"
	"github.com/katalog-cli/katalog/util"
	"github.com/spf13/viper"
)

// listItem adapts catalog items, source entries and past queries to list.Item.
type listItem struct {
	internal any
}

func (t *listItem) Title() (title string) {
	switch e := t.internal.(type) {
	case *content.Item:
		title = e.Title
		if e.Year != nil {
			title = fmt.Sprintf("%s %s", title, style.Faint(fmt.Sprint(*e.Year)))
		}
	case *content.SourceEntry:
		title = e.SourceName
		if !e.Available {
			title = fmt.Sprintf("%s %s", title, style.Faint("(unavailable)"))
		}
	default:
		title = t.FilterValue()
	}
	return
}

func (t *listItem) Description() (description string) {
	switch e := t.internal.(type) {
	case *content.Item:
		description = strings.Join(itemFacts(e), " • ")
	case *content.SourceEntry:
		if viper.GetBool(key.TUIShowURLs) {
			description = e.SourceURL
			break
		}

		var parts []string
		if e.OriginalTitle != "" {
			parts = append(parts, e.OriginalTitle)
		}
		if e.Quality != "" {
			parts = append(parts, e.Quality)
		}
		if e.Language != "" {
			parts = append(parts, strings.ToUpper(e.Language))
		}
		description = strings.Join(parts, " • ")
	}
	return
}

func (t *listItem) FilterValue() string {
	switch e := t.internal.(type) {
	case *content.Item:
		return e.Title
	case *content.SourceEntry:
		return e.SourceName
	case string:
		return e
	default:
		return ""
	}
}

// itemFacts lists the known metadata of an item, type first.
func itemFacts(item *content.Item) []string {
	parts := []string{
		lipgloss.NewStyle().Foreground(color.ForType(string(item.Type))).Render(string(item.Type)),
	}

	if item.Rating != nil {
		parts = append(parts, lipgloss.NewStyle().Foreground(style.AccentColor).Render(fmt.Sprintf("★ %.1f", *item.Rating)))
	}

	if item.Duration != nil {
		parts = append(parts, lipgloss.NewStyle().Foreground(style.FaintColor).Render(fmt.Sprintf("%d min", *item.Duration)))
	}

	parts = append(parts, lipgloss.NewStyle().Foreground(style.FaintColor).Render(util.Quantify(len(item.Sources), "source", "sources")))
	return parts
}
