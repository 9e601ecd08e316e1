// Package tui is the interactive terminal interface: search the catalog, browse
// the merged items and open any of their sources.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/katalog-cli/katalog/content"
)

// Catalog is what the interface searches and enriches.
type Catalog interface {
	Search(ctx context.Context, query string) []*content.Item
	Enrich(ctx context.Context, id string) (*content.Item, error)
}

type Options struct {
	Catalog Catalog

	// Query is searched right away when set.
	Query string

	// History starts from the list of recent queries.
	History bool
}

// Run starts the interface and blocks until it exits or ctx is done.
func Run(ctx context.Context, options *Options) error {
	bubble := newBubble(ctx, options)

	if options.History {
		bubble.loadHistory()
		bubble.newState(historyState)
	} else {
		bubble.newState(searchState)
	}

	_, err := tea.NewProgram(bubble, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
