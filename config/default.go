package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/katalog-cli/katalog/color"
	"github.com/katalog-cli/katalog/constant"
	"github.com/katalog-cli/katalog/key"
	"github.com/katalog-cli/katalog/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field is a single registered configuration option.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty renders the field for "config info".
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env is the environment variable that overrides this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Katalog + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.TypeName(),
	})
}

// TypeName names the Go type of the default value.
func (f *Field) TypeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	default:
		return "unknown"
	}
}

// Default holds every registered field by key.
var Default = make(map[string]Field)

// EnvExposed lists the keys bound to environment variables.
var EnvExposed []string

func register(k string, v any, desc string) {
	if _, exists := Default[k]; exists {
		panic("duplicate config key: " + k)
	}
	Default[k] = Field{Key: k, Value: v, Description: desc}
	EnvExposed = append(EnvExposed, k)
}

func init() {
	register(key.DefaultSources, []string{}, "Sources to query.\nEmpty means every installed source.\nType \"katalog sources list\" to show available sources")
	register(key.SourcesTimeout, 15, "Timeout in seconds for a single source search")
	register(key.SourcesDeadline, 0, "Deadline in seconds for a whole aggregation.\n0 waits for the slowest source")
	register(key.SourcesConcurrency, 8, "Maximum number of sources queried at the same time.\n0 means unlimited")
	register(key.SourcesRetries, 2, "Retries for a source search that fails with a transient error")
	register(key.SourcesRetryDelay, 500, "Initial delay in milliseconds between retries")
	register(key.SourcesRate, 0.0, "Requests per second allowed for each source.\n0 disables rate limiting")
	register(key.ResolverStrategy, "exact", "How raw results are merged into items.\nAvailable options are: exact, similarity")
	register(key.ResolverThreshold, 0.7, "Similarity threshold used by the similarity strategy. From 0 to 1")
	register(key.ResolverLanguage, "tr", "Language recorded for sources that do not report one")
	register(key.CacheTTL, 24, "Hours a cached search stays valid")
	register(key.CacheSweep, 30, "Minutes between sweeps of expired cache entries")
	register(key.SearchPageSize, 20, "Default page size for advanced search")
	register(key.SearchShowQuerySuggestions, true, "Show query suggestions when searching")
	register(key.SearchHistorySize, 50, "Number of past queries to keep")
	register(key.SearchTopTags, 20, "Number of tags listed in statistics")
	register(key.ServerAddress, ":8080", "Address the HTTP API listens on")
	register(key.ServerRateLimit, 50, "Requests per second accepted by the HTTP API.\n0 disables rate limiting")
	register(key.WarmerEnabled, false, "Refresh popular searches in the background while serving")
	register(key.WarmerSchedule, "@every 6h", "Cron schedule of the cache warmer")
	register(key.WarmerQueries, []string{}, "Queries the warmer always refreshes")
	register(key.WarmerTop, 10, "Number of most searched queries the warmer refreshes")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
	register(key.TUIItemSpacing, 1, "Spacing between items in the TUI")
	register(key.TUISearchPromptString, "> ", "Search prompt string to use")
	register(key.TUIShowURLs, false, "Show source URLs under list items")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Enable automatic version check")
	register(key.CliBrowser, "", "Application used to open source pages.\nEmpty uses the system default")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
