// Package resolver decides which catalog item a raw result belongs to and merges it in.
//
// Two strategies exist and exactly one is used for a pass:
//
//   - Exact joins results whose generated ids are equal. It is the default.
//   - Similarity joins a result to the first item whose normalized title is
//     at least Threshold similar to it.
package resolver

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/log"
	"github.com/katalog-cli/katalog/title"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// Strategy selects how results are matched to items.
type Strategy string

const (
	Exact      Strategy = "exact"
	Similarity Strategy = "similarity"
)

// ParseStrategy accepts strategy names in any case.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case Exact, "":
		return Exact, nil
	case Similarity:
		return Similarity, nil
	default:
		return "", fmt.Errorf("unknown merge strategy %q, expected %s or %s", s, Exact, Similarity)
	}
}

// DefaultLanguage is recorded on source entries when none is configured.
const DefaultLanguage = "tr"

// Resolver holds the merge policy. It is safe to share; each Pass is not.
type Resolver struct {
	strategy  Strategy
	threshold float64
	language  string
	now       func() time.Time
}

type Option func(*Resolver)

func WithStrategy(s Strategy) Option {
	return func(r *Resolver) { r.strategy = s }
}

// WithThreshold sets the similarity threshold. Values outside (0, 1] are ignored.
func WithThreshold(t float64) Option {
	return func(r *Resolver) {
		if t > 0 && t <= 1 {
			r.threshold = t
		}
	}
}

// WithLanguage sets the language recorded on new source entries.
func WithLanguage(lang string) Option {
	return func(r *Resolver) { r.language = lang }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

func New(options ...Option) *Resolver {
	r := &Resolver{
		strategy:  Exact,
		threshold: title.DefaultThreshold,
		language:  DefaultLanguage,
		now:       time.Now,
	}
	for _, option := range options {
		option(r)
	}
	return r
}

func (r *Resolver) Strategy() Strategy {
	return r.strategy
}

// Merge runs one pass over raws in order and returns the items ranked by
// descending source count. Items with equal counts keep creation order.
func (r *Resolver) Merge(raws []*content.Raw) []*content.Item {
	pass := r.NewPass()
	for _, raw := range raws {
		pass.Add(raw)
	}
	return Rank(pass.Items())
}

// Rank sorts items by descending source count, keeping the order of ties.
func Rank(items []*content.Item) []*content.Item {
	slices.SortStableFunc(items, func(a, b *content.Item) int {
		return len(b.Sources) - len(a.Sources)
	})
	return items
}

// Pass accumulates items for a single aggregation. It must be used from one goroutine.
type Pass struct {
	resolver *Resolver
	items    []*content.Item
	byID     map[string]*content.Item
}

func (r *Resolver) NewPass() *Pass {
	return &Pass{
		resolver: r,
		byID:     make(map[string]*content.Item),
	}
}

// Items returns the items in creation order.
func (p *Pass) Items() []*content.Item {
	return p.items
}

// Add merges raw into the pass and returns the id of the item it landed in.
func (p *Pass) Add(raw *content.Raw) string {
	var (
		existing *content.Item
		found    bool
	)

	switch p.resolver.strategy {
	case Similarity:
		existing, found = lo.Find(p.items, func(item *content.Item) bool {
			return title.IsMatch(item.NormalizedTitle, raw.Title, p.resolver.threshold)
		})
	default:
		existing, found = p.byID[title.GenerateID(raw.Title)]
	}

	if found {
		p.merge(existing, raw)
		return existing.ID
	}

	item := p.create(raw)
	p.items = append(p.items, item)
	p.byID[item.ID] = item
	return item.ID
}

func (p *Pass) create(raw *content.Raw) *content.Item {
	now := p.resolver.now()
	item := &content.Item{
		ID:              p.uniqueID(title.GenerateID(raw.Title)),
		Title:           displayTitle(raw.Title),
		NormalizedTitle: title.Normalize(raw.Title),
		Type:            raw.Type,
		Poster:          raw.Poster,
		Tags:            []string{},
		Sources:         []*content.SourceEntry{p.entry(raw, now)},
		LastUpdated:     now,
	}
	item.SetYear(yearOf(raw))
	return item
}

// displayTitle strips markers from t, keeping t itself when nothing else is
// left, as with films named after a year.
func displayTitle(t string) string {
	if cleaned := title.Clean(t); cleaned != "" {
		return cleaned
	}
	return strings.TrimSpace(t)
}

// uniqueID keeps ids unique within the pass. Only the similarity strategy can
// produce two items whose first titles share an id.
func (p *Pass) uniqueID(id string) string {
	if _, taken := p.byID[id]; !taken {
		return id
	}
	for n := 2; ; n++ {
		candidate := id + "_" + strconv.Itoa(n)
		if _, taken := p.byID[candidate]; !taken {
			return candidate
		}
	}
}

func (p *Pass) merge(item *content.Item, raw *content.Raw) {
	now := p.resolver.now()

	changed := item.AddSource(p.entry(raw, now))
	changed = item.SetYear(yearOf(raw)) || changed
	changed = item.SetPoster(raw.Poster) || changed

	if raw.Type != "" && raw.Type != item.Type {
		log.WithFields(logrus.Fields{
			"id":     item.ID,
			"kept":   item.Type,
			"source": raw.SourceName,
			"type":   raw.Type,
		}).Debug("conflicting content type ignored")
	}

	if changed {
		item.LastUpdated = now
	}
}

func (p *Pass) entry(raw *content.Raw, now time.Time) *content.SourceEntry {
	quality, _ := title.ExtractQuality(raw.Title)
	return &content.SourceEntry{
		SourceName:    raw.SourceName,
		SourceURL:     raw.URL,
		OriginalTitle: raw.Title,
		Quality:       quality,
		Language:      p.resolver.language,
		Available:     true,
		LastChecked:   now,
	}
}

func yearOf(raw *content.Raw) *int {
	if raw.Year != nil {
		return raw.Year
	}
	if year, ok := title.ExtractYear(raw.Title); ok {
		return &year
	}
	return nil
}
