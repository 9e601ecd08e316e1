package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/pool"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().StringSliceP("query", "q", nil, "Queries to search before the lookup, defaults to the id itself")
	getCmd.Flags().BoolP("enrich", "e", false, "Load details from the sources that support them")
	getCmd.SetOut(os.Stdout)
}

var getCmd = &cobra.Command{
	Use:     "get <id>",
	Short:   "Print a single catalog item as JSON",
	Args:    cobra.ExactArgs(1),
	Example: `  katalog get breaking_bad --enrich`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		id := args[0]
		queries := lo.Must(cmd.Flags().GetStringSlice("query"))
		if len(queries) == 0 {
			queries = []string{strings.ReplaceAll(id, "_", " ")}
		}

		catalog := mustPool()
		defer catalog.Registry().Close()

		searchAll(ctx, catalog, queries)

		var (
			item *content.Item
			err  error
		)
		if lo.Must(cmd.Flags().GetBool("enrich")) {
			item, err = catalog.Enrich(ctx, id)
		} else {
			var ok bool
			if item, ok = catalog.GetByID(id).Get(); !ok {
				err = fmt.Errorf("%w: %s", pool.ErrNotFound, id)
			}
		}
		handleErr(err)

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		handleErr(encoder.Encode(item))
	},
}
