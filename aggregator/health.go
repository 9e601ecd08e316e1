package aggregator

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/katalog-cli/katalog/metrics"
)

const (
	failureThreshold = 3
	blockBase        = 2 * time.Minute
	blockMax         = 15 * time.Minute
)

// SourceHealth describes how a source has been behaving.
type SourceHealth struct {
	Name                string     `json:"name"`
	TotalRequests       int64      `json:"totalRequests"`
	TotalFailures       int64      `json:"totalFailures"`
	ConsecutiveFailures int        `json:"consecutiveFailures"`
	LastError           string     `json:"lastError,omitempty"`
	LastLatencyMS       int64      `json:"lastLatencyMs"`
	LastSuccessAt       *time.Time `json:"lastSuccessAt,omitempty"`
	LastFailureAt       *time.Time `json:"lastFailureAt,omitempty"`
	BlockedUntil        *time.Time `json:"blockedUntil,omitempty"`
	TimeoutCount        int64      `json:"timeoutCount"`
}

type sourceState struct {
	consecutiveFailures int
	blockedUntil        time.Time
	lastError           string
	lastSuccessAt       time.Time
	lastFailureAt       time.Time
	lastLatency         time.Duration
	totalRequests       int64
	totalFailures       int64
	timeoutCount        int64
}

type healthTracker struct {
	mu     sync.Mutex
	states map[string]*sourceState
}

func newHealthTracker() *healthTracker {
	return &healthTracker{states: make(map[string]*sourceState)}
}

func healthKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// blocked reports whether name is sitting out a block window at now.
func (h *healthTracker) blocked(name string, now time.Time) (bool, time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	state := h.states[healthKey(name)]
	if state == nil || state.blockedUntil.IsZero() || !now.Before(state.blockedUntil) {
		return false, time.Time{}
	}
	return true, state.blockedUntil
}

func (h *healthTracker) record(name string, err error, latency time.Duration, now time.Time) {
	k := healthKey(name)

	h.mu.Lock()
	defer h.mu.Unlock()

	state := h.states[k]
	if state == nil {
		state = &sourceState{}
		h.states[k] = state
	}

	state.totalRequests++
	if latency > 0 {
		state.lastLatency = latency
		metrics.SourceRequestDuration.WithLabelValues(name).Observe(latency.Seconds())
	}

	if err == nil {
		state.consecutiveFailures = 0
		state.blockedUntil = time.Time{}
		state.lastError = ""
		state.lastSuccessAt = now
		metrics.SourceRequestsTotal.WithLabelValues(name, "ok").Inc()
		metrics.SourceAvailable.WithLabelValues(name).Set(1)
		return
	}

	state.consecutiveFailures++
	state.totalFailures++
	state.lastFailureAt = now
	state.lastError = err.Error()

	status := "error"
	if isTimeout(err) {
		state.timeoutCount++
		status = "timeout"
	}
	metrics.SourceRequestsTotal.WithLabelValues(name, status).Inc()

	if state.consecutiveFailures >= failureThreshold {
		state.blockedUntil = now.Add(blockDuration(state.consecutiveFailures))
		metrics.SourceAvailable.WithLabelValues(name).Set(0)
	}
}

// blockDuration doubles the base block for every failure past the threshold, up to blockMax.
func blockDuration(consecutiveFailures int) time.Duration {
	d := blockBase
	for i := failureThreshold; i < consecutiveFailures; i++ {
		d *= 2
		if d >= blockMax {
			return blockMax
		}
	}
	return d
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "timeout") || strings.Contains(value, "deadline exceeded")
}

// snapshot reports the health of names in order. Sources never queried have zero counters.
func (h *healthTracker) snapshot(names []string) []SourceHealth {
	h.mu.Lock()
	defer h.mu.Unlock()

	stamp := func(t time.Time) *time.Time {
		if t.IsZero() {
			return nil
		}
		return &t
	}

	report := make([]SourceHealth, 0, len(names))
	for _, name := range names {
		item := SourceHealth{Name: name}
		if state := h.states[healthKey(name)]; state != nil {
			item.TotalRequests = state.totalRequests
			item.TotalFailures = state.totalFailures
			item.ConsecutiveFailures = state.consecutiveFailures
			item.LastError = state.lastError
			item.LastLatencyMS = state.lastLatency.Milliseconds()
			item.LastSuccessAt = stamp(state.lastSuccessAt)
			item.LastFailureAt = stamp(state.lastFailureAt)
			item.BlockedUntil = stamp(state.blockedUntil)
			item.TimeoutCount = state.timeoutCount
		}
		report = append(report, item)
	}

	sort.SliceStable(report, func(i, j int) bool {
		return healthKey(report[i].Name) < healthKey(report[j].Name)
	})
	return report
}
