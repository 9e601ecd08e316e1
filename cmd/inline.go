package cmd

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/katalog-cli/katalog/aggregator"
	"github.com/katalog-cli/katalog/catalog"
	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/filesystem"
	"github.com/katalog-cli/katalog/inline"
	"github.com/katalog-cli/katalog/key"
	"github.com/katalog-cli/katalog/query"
	"github.com/katalog-cli/katalog/search"
	"github.com/katalog-cli/katalog/util"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var advancedFlags = []string{"type", "year-from", "year-to", "rating-from", "rating-to", "genre", "language", "quality", "min-sources", "sort", "page", "page-size"}

func init() {
	rootCmd.AddCommand(inlineCmd)

	inlineCmd.Flags().StringP("query", "q", "", "Query to search for")
	inlineCmd.Flags().StringP("pick", "p", "", "Keep a single item: first, last, exact or index")
	inlineCmd.Flags().String("pick-value", "", "Title for the exact picker, position for the index picker")
	inlineCmd.Flags().BoolP("json", "j", false, "Print the output as JSON")
	inlineCmd.Flags().BoolP("enrich", "e", false, "Load details of every item from its sources")
	inlineCmd.Flags().StringP("output", "o", "", "Write the output to a file")

	inlineCmd.Flags().String("type", "", "Only items of this type: "+strings.Join(lo.Map(content.Types(), func(t content.Type, _ int) string { return string(t) }), ", "))
	inlineCmd.Flags().Int("year-from", 0, "Only items released in or after this year")
	inlineCmd.Flags().Int("year-to", 0, "Only items released in or before this year")
	inlineCmd.Flags().Float64("rating-from", 0, "Only items rated at least this")
	inlineCmd.Flags().Float64("rating-to", 0, "Only items rated at most this")
	inlineCmd.Flags().StringSlice("genre", []string{}, "Only items tagged with one of these genres")
	inlineCmd.Flags().String("language", "", "Only items offered in this language")
	inlineCmd.Flags().String("quality", "", "Only items offered in this quality")
	inlineCmd.Flags().Int("min-sources", 0, "Only items offered by at least this many sources")
	inlineCmd.Flags().String("sort", string(search.Relevance), "Sort order of the advanced search")
	inlineCmd.Flags().Int("page", 1, "Page of the advanced search")
	inlineCmd.Flags().Int("page-size", viper.GetInt(key.SearchPageSize), "Page size of the advanced search")

	lo.Must0(inlineCmd.RegisterFlagCompletionFunc("query", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return query.SuggestMany(toComplete), cobra.ShellCompDirectiveNoFileComp
	}))
	lo.Must0(inlineCmd.RegisterFlagCompletionFunc("pick", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"first", "last", "exact", "index"}, cobra.ShellCompDirectiveNoFileComp
	}))
	lo.Must0(inlineCmd.RegisterFlagCompletionFunc("sort", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return lo.Map(search.Sorts(), func(s search.Sort, _ int) string { return string(s) }), cobra.ShellCompDirectiveNoFileComp
	}))
}

var inlineCmd = &cobra.Command{
	Use:   "inline",
	Short: "Search without the interactive interface",
	Long: `Search every configured source, merge the results and print them.

Pickers:
  first - first item
  last - last item
  exact - item whose normalized title equals --pick-value
  index - item at position --pick-value, starting from 0

Filter or sort flags run an advanced search over the items found.
Without --query they search whatever the sources return for an empty query.`,
	Example: `  katalog inline -q "breaking bad" -j
  katalog inline -q dune --type movie --sort year-desc
  katalog inline -q dark --pick first --enrich -j`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		output := lo.Must(cmd.Flags().GetString("output"))
		var writer io.Writer = os.Stdout
		if output != "" {
			file, err := filesystem.API().Create(output)
			handleErr(err)
			defer util.Ignore(file.Close)
			writer = file
		}

		options := &inline.Options{
			Out:    writer,
			Query:  lo.Must(cmd.Flags().GetString("query")),
			Json:   lo.Must(cmd.Flags().GetBool("json")),
			Enrich: lo.Must(cmd.Flags().GetBool("enrich")),
		}

		if kind := lo.Must(cmd.Flags().GetString("pick")); kind != "" {
			picker, err := inline.ParsePicker(kind, lo.Must(cmd.Flags().GetString("pick-value")))
			handleErr(err)
			options.Picker = mo.Some(picker)
		}

		if lo.SomeBy(advancedFlags, cmd.Flags().Changed) {
			advanced, err := advancedFromFlags(cmd)
			handleErr(err)
			options.Advanced = mo.Some(advanced)
		}

		catalog := mustPool()
		defer catalog.Registry().Close()
		options.Catalog = catalog

		handleErr(inline.Run(ctx, options))
	},
}

func advancedFromFlags(cmd *cobra.Command) (inline.Advanced, error) {
	flags := cmd.Flags()
	filter := search.DefaultFilter()
	filter.Query = lo.Must(flags.GetString("query"))
	filter.Genres = lo.Must(flags.GetStringSlice("genre"))
	filter.Language = lo.Must(flags.GetString("language"))
	filter.Quality = lo.Must(flags.GetString("quality"))
	filter.MinSources = lo.Must(flags.GetInt("min-sources"))

	if raw := lo.Must(flags.GetString("type")); raw != "" {
		kind, err := content.ParseType(raw)
		if err != nil {
			return inline.Advanced{}, err
		}
		filter.Type = kind
	}

	if flags.Changed("year-from") {
		filter.YearFrom = lo.ToPtr(lo.Must(flags.GetInt("year-from")))
	}
	if flags.Changed("year-to") {
		filter.YearTo = lo.ToPtr(lo.Must(flags.GetInt("year-to")))
	}
	if flags.Changed("rating-from") {
		filter.RatingFrom = lo.ToPtr(lo.Must(flags.GetFloat64("rating-from")))
	}
	if flags.Changed("rating-to") {
		filter.RatingTo = lo.ToPtr(lo.Must(flags.GetFloat64("rating-to")))
	}

	sort, err := search.ParseSort(lo.Must(flags.GetString("sort")))
	if err != nil {
		return inline.Advanced{}, err
	}

	return inline.Advanced{
		Filter:   filter,
		Sort:     sort,
		Page:     max(lo.Must(flags.GetInt("page")), 1),
		PageSize: max(lo.Must(flags.GetInt("page-size")), 1),
	}, nil
}

func init() {
	inlineCmd.AddCommand(inlineSchemaCmd)

	inlineSchemaCmd.Flags().BoolP("item", "i", false, "Schema of a single catalog item")
	inlineSchemaCmd.Flags().BoolP("health", "H", false, "Schema of the source health report")
	inlineSchemaCmd.Flags().BoolP("stats", "s", false, "Schema of the catalog statistics")
	inlineSchemaCmd.MarkFlagsMutuallyExclusive("item", "health", "stats")
}

var inlineSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the inline output",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			name := t.Name()
			switch strings.ToLower(name) {
			case "item", "page", "output", "stats":
				return filepath.Base(t.PkgPath()) + "." + name
			}

			return name
		}

		var schema *jsonschema.Schema

		switch {
		case lo.Must(cmd.Flags().GetBool("item")):
			schema = reflector.Reflect(&content.Item{})
		case lo.Must(cmd.Flags().GetBool("health")):
			schema = reflector.Reflect([]aggregator.SourceHealth{})
		case lo.Must(cmd.Flags().GetBool("stats")):
			schema = reflector.Reflect(&catalog.Stats{})
		default:
			schema = reflector.Reflect(&inline.Output{})
		}

		handleErr(json.NewEncoder(os.Stdout).Encode(schema))
	},
}
