package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/katalog-cli/katalog/color"
	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/key"
	"github.com/katalog-cli/katalog/pool"
	"github.com/katalog-cli/katalog/recommend"
	"github.com/katalog-cli/katalog/style"
	"github.com/katalog-cli/katalog/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// searchAll fills the catalog with the results of every query.
func searchAll(ctx context.Context, catalog *pool.Pool, queries []string) {
	for _, q := range queries {
		if ctx.Err() != nil {
			return
		}
		e := util.PrintErasable(fmt.Sprintf("Searching for %s...", q))
		catalog.Search(ctx, q)
		e()
	}
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().BoolP("json", "j", false, "Print the statistics as JSON")
	statsCmd.Flags().IntP("top", "t", viper.GetInt(key.SearchTopTags), "Number of tags to list")
	statsCmd.SetOut(os.Stdout)
}

var statsCmd = &cobra.Command{
	Use:     "stats [query...]",
	Short:   "Search the queries and summarize the merged catalog",
	Args:    cobra.MinimumNArgs(1),
	Example: `  katalog stats "breaking bad" dark ozark`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		catalog := mustPool()
		defer catalog.Registry().Close()

		searchAll(ctx, catalog, args)
		stats := catalog.Stats(lo.Must(cmd.Flags().GetInt("top")))

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(stats))
			return
		}

		header := style.New().Bold(true).Foreground(color.HiPurple).Render
		cmd.Printf("%s %d\n", header("Items"), stats.TotalItems)
		cmd.Printf("%s %d\n", header("Source entries"), stats.TotalSources)
		cmd.Printf("%s %d\n", header("Offered by several sources"), stats.MultiSource)

		if len(stats.ByType) > 0 {
			cmd.Println()
			cmd.Println(header("Types"))
			for _, t := range content.Types() {
				if n := stats.ByType[t]; n > 0 {
					cmd.Printf("  %s %d\n", style.Fg(color.ForType(string(t)))(string(t)), n)
				}
			}
		}

		if len(stats.TopTags) > 0 {
			cmd.Println()
			cmd.Println(header("Tags"))
			for _, c := range stats.TopTags {
				cmd.Printf("  %s %d\n", c.Value, c.Count)
			}
		}

		if len(stats.ByYear) > 0 {
			cmd.Println()
			cmd.Println(header("Years"))
			for _, y := range stats.ByYear {
				cmd.Printf("  %d %d\n", y.Year, y.Count)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringP("kind", "k", "mixed", "Recommendation kind: mixed, recent, top_rated, multi_source, related")
	recommendCmd.Flags().String("id", "", "Item id for related recommendations")
	recommendCmd.Flags().IntP("limit", "l", 10, "Maximum number of recommendations")
	recommendCmd.Flags().BoolP("json", "j", false, "Print the recommendations as JSON")
	recommendCmd.SetOut(os.Stdout)

	lo.Must0(recommendCmd.RegisterFlagCompletionFunc("kind", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"mixed", "recent", "top_rated", "multi_source", "related"}, cobra.ShellCompDirectiveNoFileComp
	}))
}

var recommendCmd = &cobra.Command{
	Use:   "recommend [query...]",
	Short: "Search the queries and recommend items from the merged catalog",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		catalog := mustPool()
		defer catalog.Registry().Close()

		searchAll(ctx, catalog, args)

		var (
			all   = catalog.GetAll()
			limit = lo.Must(cmd.Flags().GetInt("limit"))
			items []*content.Item
		)

		switch kind := strings.ToLower(lo.Must(cmd.Flags().GetString("kind"))); kind {
		case "mixed":
			items = recommend.Mixed(all, limit)
		case "recent":
			items = recommend.Recent(all, limit)
		case "top_rated":
			items = recommend.TopRated(all, limit)
		case "multi_source":
			items = recommend.MultiSource(all, limit)
		case "related":
			related, err := catalog.Related(lo.Must(cmd.Flags().GetString("id")), limit)
			handleErr(err)
			items = related
		default:
			handleErr(fmt.Errorf("unknown recommendation kind %q", kind))
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(items))
			return
		}

		for _, item := range items {
			cmd.Printf("%s\t%s\n", style.Faint(item.ID), item.Title)
		}
	},
}
