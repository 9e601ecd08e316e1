// Package static serves a content source from a JSON catalog file.
//
// The file looks like
//
//	{
//	  "name": "arsiv",
//	  "items": [
//	    {"title": "Breaking Bad (2008)", "url": "https://...", "type": "series", "tags": ["Crime"]}
//	  ]
//	}
//
// The name defaults to the file stem.
package static

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/filesystem"
	"github.com/katalog-cli/katalog/title"
	"github.com/katalog-cli/katalog/util"
	"github.com/samber/lo"
)

// MatchThreshold is the title similarity at which an entry matches a query.
const MatchThreshold = 0.3

type Entry struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Type        string   `json:"type,omitempty"`
	Poster      string   `json:"poster,omitempty"`
	Year        *int     `json:"year,omitempty"`
	Description string   `json:"description,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	Duration    *int     `json:"duration,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type Catalog struct {
	Name  string   `json:"name"`
	Items []*Entry `json:"items"`
}

type Source struct {
	name    string
	entries []*Entry
	byURL   map[string]*Entry
}

// IDfromName is the provider id of the catalog with the given name.
func IDfromName(name string) string {
	return name + " static"
}

// LoadSource reads the catalog at path.
func LoadSource(path string) (*Source, error) {
	data, err := filesystem.API().ReadFile(path)
	if err != nil {
		return nil, err
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if catalog.Name == "" {
		catalog.Name = util.FileStem(path)
	}

	return New(catalog), nil
}

// New builds a source from an in-memory catalog. Entries without a title or url are skipped.
func New(catalog Catalog) *Source {
	entries := lo.Filter(catalog.Items, func(e *Entry, _ int) bool {
		return e != nil && strings.TrimSpace(e.Title) != "" && e.URL != ""
	})

	return &Source{
		name:    catalog.Name,
		entries: entries,
		byURL: lo.SliceToMap(entries, func(e *Entry) (string, *Entry) {
			return e.URL, e
		}),
	}
}

func (s *Source) Name() string {
	return s.name
}

func (s *Source) ID() string {
	return IDfromName(s.name)
}

// Len is the number of usable entries.
func (s *Source) Len() int {
	return len(s.entries)
}

// Search returns the entries whose title is similar to query or contains it.
func (s *Source) Search(ctx context.Context, query string) ([]*content.Raw, error) {
	normalized := title.Normalize(query)
	if normalized == "" {
		return nil, nil
	}

	var results []*content.Raw
	for _, e := range s.entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !title.IsMatch(query, e.Title, MatchThreshold) && !strings.Contains(title.Normalize(e.Title), normalized) {
			continue
		}

		results = append(results, &content.Raw{
			SourceName: s.name,
			Title:      e.Title,
			URL:        e.URL,
			Type:       content.TypeOr(e.Type, content.Movie),
			Poster:     e.Poster,
			Year:       e.Year,
		})
	}

	return results, nil
}

func (s *Source) Details(_ context.Context, url string) (*content.Details, error) {
	e, ok := s.byURL[url]
	if !ok {
		return nil, fmt.Errorf("%s has no entry for %s", s.name, url)
	}

	return &content.Details{
		Description: e.Description,
		Rating:      e.Rating,
		Duration:    e.Duration,
		Tags:        e.Tags,
		Poster:      e.Poster,
		Year:        e.Year,
	}, nil
}
