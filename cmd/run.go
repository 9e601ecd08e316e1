package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/katalog-cli/katalog/provider"
	"github.com/katalog-cli/katalog/provider/custom"
	"github.com/katalog-cli/katalog/provider/static"
	"github.com/katalog-cli/katalog/source"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("query", "q", "", "Query to search the source for")
	runCmd.Flags().StringP("details", "d", "", "Load the details of this result url instead of searching")
	runCmd.MarkFlagsOneRequired("query", "details")
	runCmd.MarkFlagsMutuallyExclusive("query", "details")
}

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a source file that is not installed",
	Long: `Load a Lua script or a static JSON catalog and print what it returns as JSON.
Useful while writing a new source.`,
	Args:    cobra.ExactArgs(1),
	Example: "  katalog run ./mysite.lua -q dune",
	Run: func(cmd *cobra.Command, args []string) {
		path := args[0]

		var (
			src source.Source
			err error
		)
		switch filepath.Ext(path) {
		case provider.LuaExtension:
			src, err = custom.LoadSource(path)
		case provider.StaticExtension:
			src, err = static.LoadSource(path)
		default:
			err = fmt.Errorf("unsupported source file %s, expected %s or %s", path, provider.LuaExtension, provider.StaticExtension)
		}
		handleErr(err)

		if closer, ok := src.(source.Closer); ok {
			defer closer.Close()
		}

		var result any
		if url := lo.Must(cmd.Flags().GetString("details")); url != "" {
			result, err = source.Details(context.Background(), src, url)
		} else {
			result, err = src.Search(context.Background(), lo.Must(cmd.Flags().GetString("query")))
		}
		handleErr(err)

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		handleErr(encoder.Encode(result))
	},
}
