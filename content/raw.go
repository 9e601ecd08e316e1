// Package content defines the entities that flow through the catalog:
// raw results produced by sources and the deduplicated items built from them.
package content

// Raw is one search result as reported by a single source.
type Raw struct {
	SourceName string `json:"source"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	Type       Type   `json:"type"`
	Poster     string `json:"poster,omitempty"`
	Year       *int   `json:"year,omitempty"`
}

// Details is the metadata a source can load for one of its result pages.
type Details struct {
	Description string   `json:"description,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	Duration    *int     `json:"durationMinutes,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Poster      string   `json:"poster,omitempty"`
	Year        *int     `json:"year,omitempty"`
}
