// Package key defines the configuration identifiers shared by the config registry, flags and readers.
package key

// Sources
const (
	DefaultSources     = "sources.default"
	SourcesTimeout     = "sources.timeout"
	SourcesDeadline    = "sources.deadline"
	SourcesConcurrency = "sources.concurrency"
	SourcesRetries     = "sources.retries"
	SourcesRetryDelay  = "sources.retry_delay"
	SourcesRate        = "sources.rate"
)

// Identity resolution
const (
	ResolverStrategy  = "resolver.strategy"
	ResolverThreshold = "resolver.threshold"
	ResolverLanguage  = "resolver.language"
)

// Catalog cache
const (
	CacheTTL   = "cache.ttl"
	CacheSweep = "cache.sweep"
)

// Search
const (
	SearchPageSize             = "search.page_size"
	SearchShowQuerySuggestions = "search.show_query_suggestions"
	SearchHistorySize          = "search.history_size"
	SearchTopTags              = "search.top_tags"
)

// HTTP server
const (
	ServerAddress   = "server.address"
	ServerRateLimit = "server.rate_limit"
)

// Warmer
const (
	WarmerEnabled  = "warmer.enabled"
	WarmerSchedule = "warmer.schedule"
	WarmerQueries  = "warmer.queries"
	WarmerTop      = "warmer.top"
)

const (
	IconsVariant = "icons.variant"
)

const (
	TUIItemSpacing        = "tui.item_spacing"
	TUISearchPromptString = "tui.search_prompt"
	TUIShowURLs           = "tui.show_urls"
)

const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
	CliBrowser      = "cli.browser"
)
