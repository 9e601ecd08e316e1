// Package inline runs a search without the TUI and prints the result for scripts.
package inline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/log"
	"github.com/katalog-cli/katalog/search"
	"github.com/samber/lo"
)

// Catalog is the part of the pool inline mode needs.
type Catalog interface {
	Search(ctx context.Context, query string) []*content.Item
	AdvancedSearch(filter search.Filter, sort search.Sort, page, pageSize int) search.Page
	Enrich(ctx context.Context, id string) (*content.Item, error)
}

// Output is what json mode writes.
type Output struct {
	Query  string          `json:"query"`
	Result []*content.Item `json:"result"`
	Page   *search.Page    `json:"page,omitempty"`
}

func Run(ctx context.Context, options *Options) error {
	if options.Out == nil {
		options.Out = os.Stdout
	}

	items := options.Catalog.Search(ctx, options.Query)
	output := Output{Query: options.Query, Result: items}

	if advanced, ok := options.Advanced.Get(); ok {
		if advanced.Filter.Query == "" {
			advanced.Filter.Query = options.Query
		}
		page := options.Catalog.AdvancedSearch(advanced.Filter, advanced.Sort, advanced.Page, advanced.PageSize)
		output.Result = page.Items
		output.Page = &page
	}

	if picker, ok := options.Picker.Get(); ok {
		output.Result = lo.Compact([]*content.Item{picker(output.Result)})
	}

	if options.Enrich {
		output.Result = lo.Map(output.Result, func(item *content.Item, _ int) *content.Item {
			enriched, err := options.Catalog.Enrich(ctx, item.ID)
			if err != nil {
				log.Warnf("failed to enrich %s: %s", item.ID, err)
				return item
			}
			return enriched
		})
	}

	if output.Result == nil {
		output.Result = []*content.Item{}
	}

	if options.Json {
		return writeJson(options.Out, &output)
	}
	return writePlain(options.Out, output.Result)
}

func writeJson(out io.Writer, output *Output) error {
	return json.NewEncoder(out).Encode(output)
}

// writePlain prints one line per item: id, title, year and the source URLs.
func writePlain(out io.Writer, items []*content.Item) error {
	for _, item := range items {
		year := "-"
		if item.Year != nil {
			year = fmt.Sprint(*item.Year)
		}

		urls := lo.Map(item.Sources, func(s *content.SourceEntry, _ int) string {
			return s.SourceURL
		})

		if _, err := fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", item.ID, item.Title, year, strings.Join(urls, " ")); err != nil {
			return err
		}
	}
	return nil
}
