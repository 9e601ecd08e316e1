package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func (b *statefulBubble) Init() tea.Cmd {
	if q := b.options.Query; q != "" && b.state != historyState {
		b.inputC.SetValue(q)
		return b.startSearch(q)
	}

	return textinput.Blink
}
