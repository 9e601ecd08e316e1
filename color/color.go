// Package color names the terminal colors used by CLI output.
package color

import "github.com/charmbracelet/lipgloss"

func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

// ANSI colors.
var (
	Red    = New("1")
	Green  = New("2")
	Yellow = New("3")
	Blue   = New("4")
	Purple = New("5")
	Cyan   = New("6")
	White  = New("7")
	Black  = New("8")
)

// Bright ANSI colors.
var (
	HiRed    = New("9")
	HiGreen  = New("10")
	HiYellow = New("11")
	HiBlue   = New("12")
	HiPurple = New("13")
	HiCyan   = New("14")
)

var (
	Orange = New("#ffb703")
	Gray   = New("#808080")
)

// ForType returns the badge color of a content type name.
func ForType(name string) lipgloss.Color {
	switch name {
	case "movie":
		return Blue
	case "series":
		return Purple
	case "anime":
		return Orange
	case "documentary":
		return Green
	case "live":
		return Red
	default:
		return Gray
	}
}
