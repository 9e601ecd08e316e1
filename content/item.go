package content

import (
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

// SourceEntry records one source offering an item.
type SourceEntry struct {
	SourceName    string    `json:"sourceName"`
	SourceURL     string    `json:"sourceUrl"`
	OriginalTitle string    `json:"originalTitle"`
	Quality       string    `json:"quality,omitempty"`
	Language      string    `json:"language,omitempty"`
	Available     bool      `json:"available"`
	LastChecked   time.Time `json:"lastChecked"`
}

// Item is one logical title with every source that offers it.
//
// Type is fixed by the first merge. Optional metadata keeps the first non-empty
// value it receives. Sources are unique by SourceName.
type Item struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	NormalizedTitle string         `json:"normalizedTitle"`
	Type            Type           `json:"type"`
	Year            *int           `json:"year,omitempty"`
	Poster          string         `json:"poster,omitempty"`
	Description     string         `json:"description,omitempty"`
	Rating          *float64       `json:"rating,omitempty"`
	Duration        *int           `json:"durationMinutes,omitempty"`
	Tags            []string       `json:"tags"`
	Sources         []*SourceEntry `json:"sources"`
	LastUpdated     time.Time      `json:"lastUpdated"`
}

func (i *Item) String() string {
	return i.Title
}

// Source returns the entry contributed by the named source.
func (i *Item) Source(name string) mo.Option[*SourceEntry] {
	entry, ok := lo.Find(i.Sources, func(e *SourceEntry) bool {
		return e.SourceName == name
	})
	if !ok {
		return mo.None[*SourceEntry]()
	}
	return mo.Some(entry)
}

// AddSource appends entry unless its source already contributed. It reports whether the item changed.
func (i *Item) AddSource(entry *SourceEntry) bool {
	if i.Source(entry.SourceName).IsPresent() {
		return false
	}
	i.Sources = append(i.Sources, entry)
	return true
}

// AddTags adds tags not yet present, compared case-insensitively.
func (i *Item) AddTags(tags ...string) bool {
	changed := false
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		exists := lo.ContainsBy(i.Tags, func(t string) bool {
			return strings.EqualFold(t, tag)
		})
		if !exists {
			i.Tags = append(i.Tags, tag)
			changed = true
		}
	}
	return changed
}

// SetYear sets the year if none is known yet.
func (i *Item) SetYear(year *int) bool {
	if i.Year != nil || year == nil {
		return false
	}
	i.Year = lo.ToPtr(*year)
	return true
}

// SetPoster sets the poster if none is known yet.
func (i *Item) SetPoster(poster string) bool {
	if i.Poster != "" || poster == "" {
		return false
	}
	i.Poster = poster
	return true
}

// Fill merges details into the item without overwriting known values. Tags are unioned.
func (i *Item) Fill(d *Details) bool {
	if d == nil {
		return false
	}

	changed := i.SetYear(d.Year)
	changed = i.SetPoster(d.Poster) || changed
	changed = i.AddTags(d.Tags...) || changed

	if i.Description == "" && d.Description != "" {
		i.Description = d.Description
		changed = true
	}
	if i.Rating == nil && d.Rating != nil {
		i.Rating = lo.ToPtr(*d.Rating)
		changed = true
	}
	if i.Duration == nil && d.Duration != nil {
		i.Duration = lo.ToPtr(*d.Duration)
		changed = true
	}

	return changed
}

// YearOr returns the year or def when unknown.
func (i *Item) YearOr(def int) int {
	if i.Year == nil {
		return def
	}
	return *i.Year
}

// RatingOr returns the rating or def when unknown.
func (i *Item) RatingOr(def float64) float64 {
	if i.Rating == nil {
		return def
	}
	return *i.Rating
}

// Clone returns a deep copy that can be modified without affecting readers of i.
func (i *Item) Clone() *Item {
	c := *i
	if i.Year != nil {
		c.Year = lo.ToPtr(*i.Year)
	}
	if i.Rating != nil {
		c.Rating = lo.ToPtr(*i.Rating)
	}
	if i.Duration != nil {
		c.Duration = lo.ToPtr(*i.Duration)
	}
	c.Tags = append([]string(nil), i.Tags...)
	c.Sources = lo.Map(i.Sources, func(e *SourceEntry, _ int) *SourceEntry {
		entry := *e
		return &entry
	})
	return &c
}
