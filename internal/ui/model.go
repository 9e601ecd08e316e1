// Package ui renders short-lived notices under the main view of a bubbletea program.
package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/katalog-cli/katalog/style"
)

// NoticeLifetime is how long a notice stays visible.
const NoticeLifetime = 3 * time.Second

// Notice is a message shown next to the help line.
type Notice string

type clearNotice struct {
	id int
}

// Notify returns a command that shows text as a notice.
func Notify(text string) tea.Cmd {
	return func() tea.Msg {
		return Notice(text)
	}
}

// Model keeps the notice currently on screen.
type Model struct {
	notice string
	id     int
}

// Update shows incoming notices and clears them once their lifetime is over.
// A newer notice is never cleared by the timer of an older one.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case Notice:
		m.notice = string(msg)
		m.id++
		id := m.id
		return tea.Tick(NoticeLifetime, func(time.Time) tea.Msg {
			return clearNotice{id: id}
		})
	case clearNotice:
		if msg.id == m.id {
			m.notice = ""
		}
	}
	return nil
}

// Current returns the visible notice, or "" when there is none.
func (m *Model) Current() string {
	return m.notice
}

// View appends the notice to the last line of content.
func (m *Model) View(content string) string {
	if m.notice == "" {
		return content
	}

	lines := strings.Split(content, "\n")
	notice := lipgloss.NewStyle().Foreground(style.FaintColor).Render(m.notice)
	lines[len(lines)-1] += "  " + notice
	return strings.Join(lines, "\n")
}
