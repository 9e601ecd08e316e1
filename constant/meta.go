// Package constant defines immutable application-level identifiers and build metadata.
package constant

const (
	// Katalog is the canonical application identifier used for filesystem paths and CLI branding.
	Katalog = "katalog"

	// Version is the current application semantic version string.
	Version = "0.1.0"

	// UserAgent is sent with outgoing HTTP requests made by the application itself.
	UserAgent = "katalog/" + Version
)

// Build metadata, overridden with -ldflags at release time.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
