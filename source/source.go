// Package source defines the contract every content source adapter implements.
package source

import (
	"context"
	"errors"

	"github.com/katalog-cli/katalog/content"
)

// ErrNotSupported is returned by adapters for optional operations they do not implement.
var ErrNotSupported = errors.New("operation not supported by source")

// Source searches one external catalog.
type Source interface {
	// Name identifies the source. It is unique within a registry.
	Name() string

	// ID distinguishes sources of different kinds that share a name.
	ID() string

	// Search returns the raw results the source has for query.
	// Implementations should honour ctx cancellation.
	Search(ctx context.Context, query string) ([]*content.Raw, error)
}

// Detailer is implemented by sources that can load metadata for one of their result pages.
type Detailer interface {
	Details(ctx context.Context, url string) (*content.Details, error)
}

// Closer is implemented by sources holding resources such as interpreter state.
type Closer interface {
	Close()
}

// Details loads details through src if it supports them.
func Details(ctx context.Context, src Source, url string) (*content.Details, error) {
	detailer, ok := src.(Detailer)
	if !ok {
		return nil, ErrNotSupported
	}
	return detailer.Details(ctx, url)
}
