package custom

import (
	"errors"
	"strconv"
	"strings"

	"github.com/katalog-cli/katalog/content"
	"github.com/samber/lo"
	lua "github.com/yuin/gopher-lua"
)

func getString(table *lua.LTable, key string) string {
	val := table.RawGetString(key)
	if val.Type() == lua.LTString {
		return strings.TrimSpace(val.String())
	}
	return ""
}

// getStringList accepts either a comma separated string or an array of strings.
func getStringList(table *lua.LTable, key string) []string {
	val := table.RawGetString(key)
	switch val.Type() {
	case lua.LTString:
		parts := lo.Map(strings.Split(val.String(), ","), func(s string, _ int) string {
			return strings.TrimSpace(s)
		})
		return lo.Compact(parts)
	case lua.LTTable:
		var list []string
		val.(*lua.LTable).ForEach(func(_, v lua.LValue) {
			if v.Type() == lua.LTString && strings.TrimSpace(v.String()) != "" {
				list = append(list, strings.TrimSpace(v.String()))
			}
		})
		return list
	default:
		return nil
	}
}

// getFloat reads numbers and numeric strings. ok is false for anything else.
func getFloat(table *lua.LTable, key string) (float64, bool) {
	val := table.RawGetString(key)
	switch val.Type() {
	case lua.LTNumber:
		return float64(val.(lua.LNumber)), true
	case lua.LTString:
		f, err := strconv.ParseFloat(strings.TrimSpace(val.String()), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func getInt(table *lua.LTable, key string) *int {
	f, ok := getFloat(table, key)
	if !ok || f <= 0 {
		return nil
	}
	return lo.ToPtr(int(f))
}

func rawFromTable(table *lua.LTable) (*content.Raw, error) {
	title := getString(table, "title")
	url := getString(table, "url")

	if title == "" || url == "" {
		return nil, errors.New("result must have title and url")
	}

	return &content.Raw{
		Title:  title,
		URL:    url,
		Type:   content.TypeOr(getString(table, "type"), content.Movie),
		Poster: getString(table, "poster"),
		Year:   getInt(table, "year"),
	}, nil
}

func detailsFromTable(table *lua.LTable) *content.Details {
	details := &content.Details{
		Description: getString(table, "description"),
		Duration:    getInt(table, "duration"),
		Tags:        getStringList(table, "tags"),
		Poster:      getString(table, "poster"),
		Year:        getInt(table, "year"),
	}

	if rating, ok := getFloat(table, "rating"); ok {
		details.Rating = lo.ToPtr(rating)
	}

	return details
}
