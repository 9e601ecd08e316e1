package cmd

import (
	"encoding/json"
	"os"
	"runtime"
	"strings"
	"text/template"

	"github.com/katalog-cli/katalog/color"
	"github.com/katalog-cli/katalog/constant"
	"github.com/katalog-cli/katalog/key"
	"github.com/katalog-cli/katalog/provider"
	"github.com/katalog-cli/katalog/style"
	"github.com/katalog-cli/katalog/version"
	"github.com/katalog-cli/katalog/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolP("short", "s", false, "Print the version number only")
	versionCmd.Flags().BoolP("json", "j", false, "Print build information as JSON")
	versionCmd.MarkFlagsMutuallyExclusive("short", "json")
	versionCmd.SetOut(os.Stdout)
}

type buildInfo struct {
	App       string `json:"app"`
	Version   string `json:"version"`
	Revision  string `json:"revision"`
	BuiltAt   string `json:"builtAt"`
	BuiltBy   string `json:"builtBy"`
	Go        string `json:"go"`
	Platform  string `json:"platform"`
	Sources   int    `json:"sources"`
	Strategy  string `json:"strategy"`
	SourceDir string `json:"sourceDir"`
}

var versionTemplate = template.Must(template.New("version").Funcs(template.FuncMap{
	"faint":   style.Faint,
	"bold":    style.Bold,
	"magenta": style.Fg(color.Purple),
}).Parse(`{{ magenta "▇▇▇" }} {{ magenta .App }} {{ bold .Version }}

  {{ faint "Git Commit" }}   {{ bold .Revision }}
  {{ faint "Build Date" }}   {{ bold .BuiltAt }}
  {{ faint "Built By" }}     {{ bold .BuiltBy }}
  {{ faint "Go" }}           {{ bold .Go }} {{ faint .Platform }}
  {{ faint "Sources" }}      {{ bold (printf "%d" .Sources) }} {{ faint .SourceDir }}
  {{ faint "Resolver" }}     {{ bold .Strategy }}
`))

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		installed, err := provider.CustomProviders()
		handleErr(err)

		info := buildInfo{
			App:       constant.Katalog,
			Version:   constant.Version,
			Revision:  constant.Revision,
			BuiltAt:   strings.TrimSpace(constant.BuiltAt),
			BuiltBy:   constant.BuiltBy,
			Go:        runtime.Version(),
			Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			Sources:   len(installed),
			Strategy:  viper.GetString(key.ResolverStrategy),
			SourceDir: where.Sources(),
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(info))
			return
		}

		handleErr(versionTemplate.Execute(cmd.OutOrStdout(), info))
		version.Notify(cmd.OutOrStdout())
	},
}
