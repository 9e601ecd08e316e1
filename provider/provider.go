// Package provider discovers content sources on disk and keeps the registry the aggregator fans out to.
package provider

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/katalog-cli/katalog/filesystem"
	"github.com/katalog-cli/katalog/log"
	"github.com/katalog-cli/katalog/provider/custom"
	"github.com/katalog-cli/katalog/provider/static"
	"github.com/katalog-cli/katalog/source"
	"github.com/katalog-cli/katalog/util"
	"github.com/katalog-cli/katalog/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
)

const (
	LuaExtension    = ".lua"
	StaticExtension = ".json"
)

// ErrNotFound is returned when no provider or source has the requested name.
var ErrNotFound = errors.New("source not found")

// Kind is the format a provider is written in.
type Kind string

const (
	Lua    Kind = "lua"
	Static Kind = "static"
)

// Provider describes a source that can be created on demand.
type Provider struct {
	ID   string
	Name string
	Kind Kind
	Path string

	// UsesHeadless reports whether a Lua script requires a headless browser.
	UsesHeadless bool

	CreateSource func() (source.Source, error)
}

func (p *Provider) String() string {
	return p.Name
}

// Customs returns the providers found in where.Sources(), sorted by name.
// Unreadable directories give an empty list.
func Customs() []*Provider {
	providers, _ := CustomProviders()
	return providers
}

func CustomProviders() ([]*Provider, error) {
	dir := where.Sources()
	files, err := filesystem.API().ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var providers []*Provider
	for _, f := range files {
		if f.IsDir() {
			continue
		}

		path := filepath.Join(dir, f.Name())
		name := util.FileStem(f.Name())

		switch filepath.Ext(f.Name()) {
		case LuaExtension:
			providers = append(providers, &Provider{
				ID:           custom.IDfromName(name),
				Name:         name,
				Kind:         Lua,
				Path:         path,
				UsesHeadless: isHeadless(path),
				CreateSource: func() (source.Source, error) {
					return custom.LoadSource(path)
				},
			})
		case StaticExtension:
			providers = append(providers, &Provider{
				ID:   static.IDfromName(name),
				Name: name,
				Kind: Static,
				Path: path,
				CreateSource: func() (source.Source, error) {
					return static.LoadSource(path)
				},
			})
		}
	}

	sort.SliceStable(providers, func(i, j int) bool {
		return providers[i].Name < providers[j].Name
	})

	return providers, nil
}

// Get finds a provider by name.
func Get(name string) mo.Option[*Provider] {
	p, ok := lo.Find(Customs(), func(p *Provider) bool {
		return p.Name == name
	})
	if !ok {
		return mo.None[*Provider]()
	}
	return mo.Some(p)
}

// Names lists the names of every discovered provider.
func Names() []string {
	return lo.Map(Customs(), func(p *Provider, _ int) string {
		return p.Name
	})
}

// Closest returns the provider name nearest to name, if any are installed.
func Closest(name string) mo.Option[string] {
	names := Names()
	if len(names) == 0 {
		return mo.None[string]()
	}

	return mo.Some(lo.MinBy(names, func(a, b string) bool {
		return levenshtein.Distance(a, name) < levenshtein.Distance(b, name)
	}))
}

// Load creates a registry holding the named providers' sources in the given order.
// An empty list loads every discovered provider. Sources that fail to load or
// clash with an already registered name are logged and left out.
func Load(names []string) (*Registry, error) {
	providers := Customs()
	if len(names) > 0 {
		selected := make([]*Provider, 0, len(names))
		for _, name := range lo.Uniq(names) {
			p, ok := Get(name).Get()
			if !ok {
				return nil, notFound(name)
			}
			selected = append(selected, p)
		}
		providers = selected
	}

	registry := NewRegistry()
	for _, p := range providers {
		src, err := p.CreateSource()
		if err != nil {
			log.WithFields(logrus.Fields{"source": p.Name, "path": p.Path}).Errorf("skipping source: %s", err)
			continue
		}

		if err := registry.Register(src); err != nil {
			log.WithFields(logrus.Fields{"source": p.Name, "path": p.Path}).Errorf("skipping source: %s", err)
			if closer, ok := src.(source.Closer); ok {
				closer.Close()
			}
		}
	}

	return registry, nil
}

func notFound(name string) error {
	if closest, ok := Closest(name).Get(); ok {
		return fmt.Errorf("%w: %s, did you mean %s?", ErrNotFound, name, closest)
	}
	return fmt.Errorf("%w: %s", ErrNotFound, name)
}

func isHeadless(path string) bool {
	ok, err := filesystem.API().FileContainsAnyBytes(path, [][]byte{
		[]byte(`require("headless")`),
		[]byte(`require('headless')`),
	})
	return err == nil && ok
}
