// Package search filters, sorts and pages a catalog snapshot, and derives
// suggestions from it.
//
// Every function here is pure: it reads the items it is given and never
// modifies them or the slice holding them.
package search

import (
	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/log"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

const DefaultPageSize = 20

// Page is one page of a filtered and sorted catalog.
type Page struct {
	Items      []*content.Item `json:"items"`
	TotalCount int             `json:"totalCount"`
	TotalPages int             `json:"totalPages"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	Filter     Filter          `json:"filter"`
	Sort       Sort            `json:"sort"`
}

// AdvancedSearch filters items, sorts the matches and returns the requested 1-based page.
// A page outside [1, TotalPages] has no items. Page sizes below 1 use DefaultPageSize.
func AdvancedSearch(items []*content.Item, filter Filter, sort Sort, page, pageSize int) Page {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	matched := lo.Filter(items, func(item *content.Item, _ int) bool {
		return filter.Match(item)
	})
	sort.Apply(matched)

	result := Page{
		Items:      []*content.Item{},
		TotalCount: len(matched),
		TotalPages: (len(matched) + pageSize - 1) / pageSize,
		Page:       page,
		PageSize:   pageSize,
		Filter:     filter,
		Sort:       sort,
	}

	if page >= 1 && page <= result.TotalPages {
		start := (page - 1) * pageSize
		end := min(start+pageSize, len(matched))
		result.Items = matched[start:end]
	}

	log.WithFields(logrus.Fields{
		"sort":  sort,
		"page":  page,
		"total": result.TotalCount,
		"shown": len(result.Items),
	}).Debug("advanced search")

	return result
}
