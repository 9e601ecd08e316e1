// Package open launches source pages in the browser.
package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/katalog-cli/katalog/constant"
	"github.com/katalog-cli/katalog/key"
	"github.com/katalog-cli/katalog/log"
	"github.com/spf13/viper"
)

// URL opens url with the configured browser, or the system default when none is set.
// It does not wait for the browser to exit.
func URL(url string) error {
	cmd, err := Command(url, viper.GetString(key.CliBrowser), runtime.GOOS)
	if err != nil {
		return err
	}

	log.WithField("url", url).Debug("opening url")
	return cmd.Start()
}

// Command builds the command opening input with app on goos. An empty app uses
// the system handler.
func Command(input, app, goos string) (*exec.Cmd, error) {
	if app == "" {
		switch goos {
		case constant.Windows:
			rundll := filepath.Join(os.Getenv("SYSTEMROOT"), "System32", "rundll32.exe")
			return exec.Command(rundll, "url.dll,FileProtocolHandler", input), nil
		case constant.Darwin:
			return exec.Command("open", input), nil
		case constant.Linux:
			return exec.Command("xdg-open", input), nil
		case constant.Android:
			return exec.Command("termux-open", input), nil
		}
	} else {
		switch goos {
		case constant.Windows:
			// start treats & as a command separator
			escaped := strings.ReplaceAll(input, "&", "^&")
			return exec.Command("cmd", "/C", "start", "", app, escaped), nil
		case constant.Darwin:
			return exec.Command("open", "-a", app, input), nil
		case constant.Linux:
			return exec.Command(app, input), nil
		case constant.Android:
			return exec.Command("termux-open", "--choose", input), nil
		}
	}

	return nil, fmt.Errorf("unsupported OS: %s", goos)
}
