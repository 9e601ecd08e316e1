package provider

import (
	"fmt"
	"sync"

	"github.com/katalog-cli/katalog/source"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Registry holds the sources a search fans out to, in registration order.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	sources []source.Source
}

// NewRegistry returns a registry holding sources. Duplicate names after the first are ignored.
func NewRegistry(sources ...source.Source) *Registry {
	r := &Registry{}
	for _, src := range sources {
		_ = r.Register(src)
	}
	return r
}

// Register appends src. Names are unique within a registry.
func (r *Registry) Register(src source.Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(src.Name()) >= 0 {
		return fmt.Errorf("source %s is already registered", src.Name())
	}

	r.sources = append(r.sources, src)
	return nil
}

// Unregister removes the named source and closes it if it holds resources.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	if closer, ok := r.sources[i].(source.Closer); ok {
		closer.Close()
	}

	r.sources = append(r.sources[:i:i], r.sources[i+1:]...)
	return nil
}

func (r *Registry) Get(name string) mo.Option[source.Source] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(name); i >= 0 {
		return mo.Some(r.sources[i])
	}
	return mo.None[source.Source]()
}

// All returns a snapshot of the registered sources.
func (r *Registry) All() []source.Source {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]source.Source(nil), r.sources...)
}

func (r *Registry) Names() []string {
	return lo.Map(r.All(), func(src source.Source, _ int) string {
		return src.Name()
	})
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sources)
}

// Close releases every source and empties the registry.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, src := range r.sources {
		if closer, ok := src.(source.Closer); ok {
			closer.Close()
		}
	}
	r.sources = nil
}

func (r *Registry) indexOf(name string) int {
	_, i, ok := lo.FindIndexOf(r.sources, func(src source.Source) bool {
		return src.Name() == name
	})
	if !ok {
		return -1
	}
	return i
}
