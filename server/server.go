// Package server exposes the catalog over a small JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/katalog-cli/katalog/aggregator"
	"github.com/katalog-cli/katalog/catalog"
	"github.com/katalog-cli/katalog/constant"
	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/key"
	"github.com/katalog-cli/katalog/log"
	"github.com/katalog-cli/katalog/search"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Catalog is what the API serves.
type Catalog interface {
	Search(ctx context.Context, query string) []*content.Item
	GetAll() []*content.Item
	GetByID(id string) mo.Option[*content.Item]
	Related(id string, limit int) ([]*content.Item, error)
	Enrich(ctx context.Context, id string) (*content.Item, error)
	AdvancedSearch(filter search.Filter, sort search.Sort, page, pageSize int) search.Page
	Autocomplete(query string) []string
	PopularTerms() []string
	Similar(query string) []string
	Stats(topTags int) catalog.Stats
	Health() []aggregator.SourceHealth
	ClearCache()
}

// History records searches made through the API.
type History interface {
	Remember(q string, weight int) error
	Recent(limit int) []string
}

const (
	maxQueryLength  = 500
	shutdownTimeout = 10 * time.Second
)

type Options struct {
	Address   string
	RateLimit float64
	PageSize  int
	TopTags   int
}

func DefaultOptions() Options {
	return Options{
		Address:   ":8080",
		RateLimit: 50,
		PageSize:  search.DefaultPageSize,
		TopTags:   20,
	}
}

func OptionsFromConfig() Options {
	opts := DefaultOptions()
	if viper.IsSet(key.ServerAddress) {
		opts.Address = viper.GetString(key.ServerAddress)
	}
	if viper.IsSet(key.ServerRateLimit) {
		opts.RateLimit = viper.GetFloat64(key.ServerRateLimit)
	}
	if size := viper.GetInt(key.SearchPageSize); size > 0 {
		opts.PageSize = size
	}
	if top := viper.GetInt(key.SearchTopTags); top > 0 {
		opts.TopTags = top
	}
	return opts
}

type Server struct {
	catalog Catalog
	history History
	opts    Options
}

type Option func(*Server)

func WithHistory(history History) Option {
	return func(s *Server) {
		s.history = history
	}
}

func WithOptions(opts Options) Option {
	return func(s *Server) {
		s.opts = opts
	}
}

func New(c Catalog, options ...Option) *Server {
	s := &Server{
		catalog: c,
		opts:    DefaultOptions(),
	}
	for _, option := range options {
		if option != nil {
			option(s)
		}
	}
	if s.opts.PageSize < 1 {
		s.opts.PageSize = search.DefaultPageSize
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/items", s.handleItems)
	mux.HandleFunc("GET /api/items/{id}", s.handleItem)
	mux.HandleFunc("GET /api/items/{id}/related", s.handleRelated)
	mux.HandleFunc("POST /api/items/{id}/enrich", s.handleEnrich)
	mux.HandleFunc("GET /api/advanced", s.handleAdvanced)
	mux.HandleFunc("GET /api/autocomplete", s.handleAutocomplete)
	mux.HandleFunc("GET /api/popular", s.handlePopular)
	mux.HandleFunc("GET /api/similar", s.handleSimilar)
	mux.HandleFunc("GET /api/recommendations", s.handleRecommendations)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/sources", s.handleSources)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("DELETE /api/cache", s.handleClearCache)

	traced := otelhttp.NewHandler(loggingMiddleware(mux), constant.Katalog,
		otelhttp.WithFilter(func(r *http.Request) bool {
			p := r.URL.Path
			return p != "/metrics" && p != "/healthz"
		}),
	)

	var handler http.Handler = metricsMiddleware(traced)
	if s.opts.RateLimit > 0 {
		handler = rateLimitMiddleware(s.opts.RateLimit, int(s.opts.RateLimit)*2, handler)
	}
	return requestIDMiddleware(recoveryMiddleware(handler))
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.opts.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	log.WithField("addr", s.opts.Address).Info("http api started")

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("shutdown error: %s", err)
		return err
	}

	log.Info("http api stopped")
	return nil
}

type envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		log.WithFields(logrus.Fields{"status": status}).Warnf("writing response failed: %s", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: &apiError{Code: code, Message: message}})
}
