package version

import (
	"fmt"
	"io"

	"github.com/katalog-cli/katalog/color"
	"github.com/katalog-cli/katalog/constant"
	"github.com/katalog-cli/katalog/icon"
	"github.com/katalog-cli/katalog/key"
	"github.com/katalog-cli/katalog/log"
	"github.com/katalog-cli/katalog/style"
	"github.com/katalog-cli/katalog/util"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// Newer returns the latest release if it is ahead of current.
// Lookup failures are logged and reported as no newer release.
func Newer(current string) mo.Option[string] {
	latest, err := Latest()
	if err != nil {
		log.Warnf("release lookup failed: %s", err)
		return mo.None[string]()
	}

	comp, err := Compare(latest, current)
	if err != nil || comp <= 0 {
		return mo.None[string]()
	}
	return mo.Some(latest)
}

// Notify writes an upgrade notice to w when cli.version_check is on and a newer release exists.
func Notify(w io.Writer) {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	erase := util.PrintErasable(fmt.Sprintf("%s Looking for a newer release...", icon.Get(icon.Progress)))
	latest, ok := Newer(constant.Version).Get()
	erase()
	if !ok {
		return
	}

	_, _ = fmt.Fprintf(w, "\n%s %s %s %s\n%s\n\n",
		style.Fg(color.Green)("▇▇▇"),
		style.Bold("katalog "+latest),
		"is out",
		style.Faint("(running "+constant.Version+")"),
		style.Faint(ReleasePage(latest)),
	)
}

// ReleasePage links to the release notes of v.
func ReleasePage(v string) string {
	return "https://github.com/katalog-cli/katalog/releases/tag/v" + v
}
