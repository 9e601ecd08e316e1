package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/log"
	"github.com/katalog-cli/katalog/pool"
	"github.com/katalog-cli/katalog/recommend"
	"github.com/katalog-cli/katalog/search"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query, ok := requireQuery(w, r)
	if !ok {
		return
	}

	items := s.catalog.Search(r.Context(), query)

	if s.history != nil {
		if err := s.history.Remember(query, 1); err != nil {
			log.WithField("query", query).Warnf("remembering query failed: %s", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query": query,
		"items": items,
		"count": len(items),
	})
}

func (s *Server) handleItems(w http.ResponseWriter, _ *http.Request) {
	items := s.catalog.GetAll()
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
	})
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	item, ok := s.catalog.GetByID(id).Get()
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("no item with id %q", id))
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleRelated(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid limit")
		return
	}

	related, err := s.catalog.Related(r.PathValue("id"), limit)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, related)
}

func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	item, err := s.catalog.Enrich(r.Context(), r.PathValue("id"))
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleAdvanced(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	sort, err := search.ParseSort(r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	page, err := parsePositiveInt(r, "page", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid page")
		return
	}
	pageSize, err := parsePositiveInt(r, "pageSize", s.opts.PageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid pageSize")
		return
	}

	writeJSON(w, http.StatusOK, s.catalog.AdvancedSearch(filter, sort, page, min(pageSize, maxLimit)))
}

func (s *Server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Autocomplete(r.URL.Query().Get("q")))
}

func (s *Server) handlePopular(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.PopularTerms())
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	query, ok := requireQuery(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.catalog.Similar(query))
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid limit")
		return
	}

	all := s.catalog.GetAll()
	kind := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("kind")))

	var items []*content.Item
	switch kind {
	case "", "mixed":
		items = recommend.Mixed(all, limit)
	case "recent":
		items = recommend.Recent(all, limit)
	case "top_rated", "top-rated":
		items = recommend.TopRated(all, limit)
	case "multi_source", "multi-source":
		items = recommend.MultiSource(all, limit)
	case "genres":
		writeJSON(w, http.StatusOK, recommend.PopularGenres(all, limit))
		return
	default:
		writeError(w, http.StatusBadRequest, "invalid_request", fmt.Sprintf("unknown recommendation kind %q", kind))
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Stats(s.opts.TopTags))
}

func (s *Server) handleSources(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Health())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid limit")
		return
	}
	if s.history == nil {
		writeJSON(w, http.StatusOK, []string{})
		return
	}
	writeJSON(w, http.StatusOK, s.history.Recent(limit))
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	s.catalog.ClearCache()
	log.WithField("request_id", RequestID(r.Context())).Info("cache cleared through the api")
	writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
}

func writeCatalogError(w http.ResponseWriter, err error) {
	if errors.Is(err, pool.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	log.WithFields(logrus.Fields{"error": err}).Error("catalog request failed")
	writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
}

func requireQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	switch {
	case query == "":
		writeError(w, http.StatusBadRequest, "invalid_request", "query is required")
		return "", false
	case len(query) > maxQueryLength:
		writeError(w, http.StatusBadRequest, "invalid_request", fmt.Sprintf("query too long (max %d characters)", maxQueryLength))
		return "", false
	}
	return query, true
}

func parseLimit(r *http.Request) (int, error) {
	limit, err := parsePositiveInt(r, "limit", defaultLimit)
	return min(limit, maxLimit), err
}

func parsePositiveInt(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return 0, errors.New("invalid value")
	}
	return parsed, nil
}

func parseOptionalInt(r *http.Request, key string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", key)
	}
	return &parsed, nil
}

func parseOptionalFloat(r *http.Request, key string) (*float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", key)
	}
	return &parsed, nil
}

func parseCSV(raw string) []string {
	return lo.Uniq(lo.Compact(lo.Map(strings.Split(raw, ","), func(part string, _ int) string {
		return strings.TrimSpace(part)
	})))
}

func parseFilter(r *http.Request) (search.Filter, error) {
	values := r.URL.Query()
	filter := search.DefaultFilter()
	filter.Query = strings.TrimSpace(values.Get("q"))
	filter.Language = strings.TrimSpace(values.Get("language"))
	filter.Quality = strings.TrimSpace(values.Get("quality"))
	filter.Genres = parseCSV(values.Get("genres"))

	if raw := strings.TrimSpace(values.Get("type")); raw != "" {
		kind, err := content.ParseType(raw)
		if err != nil {
			return filter, err
		}
		filter.Type = kind
	}

	var err error
	if filter.YearFrom, err = parseOptionalInt(r, "yearFrom"); err != nil {
		return filter, err
	}
	if filter.YearTo, err = parseOptionalInt(r, "yearTo"); err != nil {
		return filter, err
	}
	if filter.RatingFrom, err = parseOptionalFloat(r, "ratingFrom"); err != nil {
		return filter, err
	}
	if filter.RatingTo, err = parseOptionalFloat(r, "ratingTo"); err != nil {
		return filter, err
	}

	if sources, err := parseOptionalInt(r, "minSources"); err != nil {
		return filter, err
	} else if sources != nil {
		filter.MinSources = *sources
	}
	if sources, err := parseOptionalInt(r, "maxSources"); err != nil {
		return filter, err
	} else if sources != nil {
		filter.MaxSources = *sources
	}

	return filter, nil
}
