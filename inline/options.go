package inline

import (
	"fmt"
	"io"
	"strconv"

	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/search"
	"github.com/katalog-cli/katalog/title"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Picker selects one item out of the results.
type Picker func([]*content.Item) *content.Item

type Options struct {
	Out      io.Writer
	Catalog  Catalog
	Query    string
	Json     bool
	Enrich   bool
	Picker   mo.Option[Picker]
	Advanced mo.Option[Advanced]
}

// Advanced narrows the accumulated catalog after the search ran.
type Advanced struct {
	Filter   search.Filter
	Sort     search.Sort
	Page     int
	PageSize int
}

// ParsePicker builds a picker. Kinds are first, last, exact and index; value
// is the title for exact and the position for index.
func ParsePicker(kind, value string) (Picker, error) {
	switch kind {
	case "first":
		return func(items []*content.Item) *content.Item {
			if len(items) == 0 {
				return nil
			}
			return items[0]
		}, nil
	case "last":
		return func(items []*content.Item) *content.Item {
			if len(items) == 0 {
				return nil
			}
			return items[len(items)-1]
		}, nil
	case "exact":
		normalized := title.Normalize(value)
		return func(items []*content.Item) *content.Item {
			item, _ := lo.Find(items, func(i *content.Item) bool {
				return i.NormalizedTitle == normalized
			})
			return item
		}, nil
	case "index":
		idx, err := strconv.ParseUint(value, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid index: %s", value)
		}
		return func(items []*content.Item) *content.Item {
			if len(items) == 0 {
				return nil
			}
			return items[min(int(idx), len(items)-1)]
		}, nil
	default:
		return nil, fmt.Errorf("unknown picker type: %s", kind)
	}
}
