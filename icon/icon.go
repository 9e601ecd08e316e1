// Package icon renders status symbols in the variant chosen by icons.variant.
package icon

import (
	"github.com/katalog-cli/katalog/key"
	"github.com/spf13/viper"
)

const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	kaomoji = "kaomoji"
	squares = "squares"
)

func AvailableVariants() []string {
	return []string{emoji, nerd, plain, kaomoji, squares}
}

// Icon identifies a symbol.
type Icon int

const (
	Success Icon = iota
	Fail
	Progress
	Search
	Cache
	Lua
	Static
	Warn
)

type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	kaomoji string
	squares string
}

func (d iconDef) get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	case kaomoji:
		return d.kaomoji
	case squares:
		return d.squares
	default:
		return ""
	}
}

var icons = map[Icon]iconDef{
	Success:  {emoji: "🎉", nerd: "", plain: "✓", kaomoji: "(ᵔ◡ᵔ)", squares: "🟩"},
	Fail:     {emoji: "💀", nerd: "", plain: "✖", kaomoji: "(×_×)", squares: "🟥"},
	Progress: {emoji: "⏳", nerd: "", plain: "…", kaomoji: "(・_・)", squares: "🟦"},
	Search:   {emoji: "🔎", nerd: "", plain: "?", kaomoji: "(¬_¬)", squares: "🟪"},
	Cache:    {emoji: "📦", nerd: "", plain: "#", kaomoji: "(￣▽￣)", squares: "🟫"},
	Lua:      {emoji: "🌙", nerd: "", plain: "lua", kaomoji: "(◕‿◕)", squares: "🟨"},
	Static:   {emoji: "📄", nerd: "", plain: "json", kaomoji: "(•‿•)", squares: "⬜"},
	Warn:     {emoji: "⚠️", nerd: "", plain: "!", kaomoji: "(°ロ°)", squares: "🟧"},
}

// Get renders i in the configured variant, or "" for an unknown variant.
func Get(i Icon) string {
	return icons[i].get()
}
