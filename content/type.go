package content

import (
	"fmt"
	"strings"
)

// Type is the kind of a content item.
type Type string

const (
	Movie       Type = "movie"
	Series      Type = "series"
	Anime       Type = "anime"
	Documentary Type = "documentary"
	Live        Type = "live"
)

// Types lists every known type in display order.
func Types() []Type {
	return []Type{Movie, Series, Anime, Documentary, Live}
}

var typeAliases = map[string]Type{
	"movie":       Movie,
	"film":        Movie,
	"series":      Series,
	"tvseries":    Series,
	"tv":          Series,
	"dizi":        Series,
	"anime":       Anime,
	"documentary": Documentary,
	"belgesel":    Documentary,
	"live":        Live,
	"canli":       Live,
}

// ParseType accepts type names in any case, including a few common aliases.
func ParseType(s string) (Type, error) {
	normalized := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	if t, ok := typeAliases[normalized]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown content type %q", s)
}

// TypeOr parses s, falling back to def when s is empty or unknown.
func TypeOr(s string, def Type) Type {
	if t, err := ParseType(s); err == nil {
		return t
	}
	return def
}
