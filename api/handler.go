package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/poiesic/memlane/core"
	"github.com/poiesic/memlane/ingestion"
	"github.com/poiesic/memlane/search"
	"github.com/poiesic/memlane/storage"
)

const maxCaptureBodySize = 10 << 20 // 10MB

// Deps holds the services the HTTP layer exposes.
type Deps struct {
	Pipeline *ingestion.Pipeline
	Searcher *search.Searcher
	Logger   *slog.Logger
}

// NewHandler builds the /api router.
func NewHandler(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "api")

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(RequireUser)
			r.Post("/capture", handleCapture(deps, logger))
			r.Get("/search", handleSearch(deps, logger))
			r.Get("/status", handleStatus(deps, logger))
			r.Get("/items/{id}", handleGetItem(deps, logger))
			r.Delete("/items/{id}", handleDeleteItem(deps, logger))
			r.Get("/timeline", handleTimeline(deps, logger))
			r.Get("/insights", handleInsights(deps, logger))
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleCapture(deps Deps, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxCaptureBodySize)
		defer r.Body.Close()

		// An empty or unparseable body captures an untitled item.
		var req CaptureRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				httpError(w, http.StatusRequestEntityTooLarge, "invalid_request_error", "request body exceeds %d bytes", tooLarge.Limit)
				return
			}
			logger.Debug("ignoring unreadable capture body", "err", err, "request_id", requestIDFrom(r.Context()))
			req = CaptureRequest{}
		}

		item, queued, err := deps.Pipeline.Capture(r.Context(), userFrom(r.Context()), req.payload())
		if err != nil {
			serverError(w, r, logger, "failed to capture item", err)
			return
		}
		writeJSON(w, http.StatusCreated, captureResponse{Item: newItemView(item), Queued: queued})
	}
}

func handleSearch(deps Deps, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit, err := intParam(q.Get("limit"), search.DefaultLimit)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid limit: %v", err)
			return
		}
		semantic := false
		if raw := q.Get("semantic"); raw != "" {
			semantic, err = strconv.ParseBool(raw)
			if err != nil {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid semantic flag: %q", raw)
				return
			}
		}

		resp, err := deps.Searcher.Search(r.Context(), search.SearchRequest{
			UserId:      userFrom(r.Context()),
			Query:       q.Get("q"),
			Emotion:     q.Get("emotion"),
			Limit:       limit,
			UseSemantic: semantic,
		})
		if err != nil {
			serverError(w, r, logger, "failed to search items", err)
			return
		}
		writeJSON(w, http.StatusOK, searchResponse{Results: newItemViews(resp.Items), SemanticUsed: resp.SemanticUsed})
	}
}

func handleStatus(deps Deps, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pending, count, err := deps.Pipeline.ProcessingStatus(r.Context(), userFrom(r.Context()))
		if err != nil {
			serverError(w, r, logger, "failed to read processing status", err)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Pending: pending, Count: count})
	}
}

func handleGetItem(deps Deps, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := itemID(w, r)
		if !ok {
			return
		}
		item, err := deps.Pipeline.Get(r.Context(), userFrom(r.Context()), id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found_error", "item not found")
			return
		}
		if err != nil {
			serverError(w, r, logger, "failed to get item", err)
			return
		}
		writeJSON(w, http.StatusOK, itemResponse{Item: newItemView(item)})
	}
}

func handleDeleteItem(deps Deps, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := itemID(w, r)
		if !ok {
			return
		}
		err := deps.Pipeline.Delete(r.Context(), userFrom(r.Context()), id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found_error", "item not found")
			return
		}
		if err != nil {
			serverError(w, r, logger, "failed to delete item", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleTimeline(deps Deps, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := intParam(r.URL.Query().Get("limit"), ingestion.DefaultTimelineLimit)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid limit: %v", err)
			return
		}
		items, err := deps.Pipeline.Timeline(r.Context(), userFrom(r.Context()), limit)
		if err != nil {
			serverError(w, r, logger, "failed to list timeline", err)
			return
		}
		writeJSON(w, http.StatusOK, timelineResponse{Items: newItemViews(items)})
	}
}

func handleInsights(deps Deps, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		insights, err := deps.Pipeline.Insights(r.Context(), userFrom(r.Context()))
		if err != nil {
			serverError(w, r, logger, "failed to compute insights", err)
			return
		}
		writeJSON(w, http.StatusOK, newInsightsResponse(insights))
	}
}

func itemID(w http.ResponseWriter, r *http.Request) (core.ID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid item id %q", raw)
		return 0, false
	}
	return core.ID(id), true
}

// intParam parses a positive integer query parameter, returning def when it is absent.
func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func serverError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "err", err, "request_id", requestIDFrom(r.Context()))
	httpError(w, http.StatusInternalServerError, "api_error", "%s", msg)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf(format, args...),
			"type":    errType,
		},
	})
}
