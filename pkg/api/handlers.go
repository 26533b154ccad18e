package api

import (
	"context"
	"errors"
	"log"
	"math"
	"mime"
	"net/http"

	gojson "github.com/goccy/go-json"

	"map_matcher/pkg/geo"
	"map_matcher/pkg/matching"
)

const maxRequestBytes = 1 << 20 // generous for long traces

// RouteMatcher is the matching pipeline consumed by the handlers.
type RouteMatcher interface {
	Match(ctx context.Context, trace []geo.Coordinate) (*matching.Result, error)
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	matcher RouteMatcher
	stats   StatsResponse
}

// NewHandlers creates handlers with the given matcher.
func NewHandlers(matcher RouteMatcher, stats StatsResponse) *Handlers {
	return &Handlers{
		matcher: matcher,
		stats:   stats,
	}
}

// HandleMatch handles POST /api/v1/match.
func (h *Handlers) HandleMatch(w http.ResponseWriter, r *http.Request) {
	// Enforce Content-Type.
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid_input")
		return
	}

	var req MatchRequest
	if err := gojson.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid_input")
		return
	}

	// Non-finite values turn into garbage on the fixed-point conversion;
	// reject them here. Range checks belong to the pipeline.
	trace := make([]geo.Coordinate, len(req.Coordinates))
	for i, c := range req.Coordinates {
		if !isFinite(c.Lat) || !isFinite(c.Lng) {
			writeError(w, http.StatusBadRequest, "bad_request", "invalid_input")
			return
		}
		trace[i] = geo.NewCoordinate(c.Lat, c.Lng)
	}

	res, err := h.matcher.Match(r.Context(), trace)
	if err != nil {
		switch {
		case matching.IsMatchingError(err):
			// One uniform failure for all four kinds; the kind is
			// visible only in the diagnostics.
			writeError(w, http.StatusBadRequest, "bad_request", matching.Kind(err))
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusServiceUnavailable, "request_timeout", "")
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "")
		}
		return
	}

	renderer := RendererFor(req.OutputFormat)
	w.Header().Set("Content-Type", renderer.ContentType())
	if err := renderer.Render(w, &RenderDoc{Result: res, Options: req.renderOptions()}); err != nil {
		// Headers are gone; all we can do is log.
		log.Printf("render %s: %v", req.OutputFormat, err)
	}
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	gojson.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	gojson.NewEncoder(w).Encode(h.stats)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func writeError(w http.ResponseWriter, status int, code, kind string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := ErrorResponse{Error: code}
	if kind != "" {
		resp.Debug = &matching.DebugInfo{FailureKind: kind}
	}
	gojson.NewEncoder(w).Encode(resp)
}
