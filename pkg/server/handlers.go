package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/runixlabs/runix/pkg/approval"
	"github.com/runixlabs/runix/pkg/engine"
	"github.com/runixlabs/runix/pkg/models"
	"github.com/runixlabs/runix/pkg/storage"
)

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := map[string]string{
		"status":     "healthy",
		"datasource": "unavailable",
		"storage":    "disabled",
	}
	if s.source != nil && s.source.IsAvailable(ctx) {
		health["datasource"] = s.source.Name()
	}
	if s.store != nil {
		health["storage"] = "unhealthy"
		if s.store.Ping(ctx) == nil {
			health["storage"] = "healthy"
		}
	}
	writeJSON(w, http.StatusOK, health)
}

type analyzeRequest struct {
	ResourceIDs []string `json:"resource_ids"`
	WindowHours int      `json:"window_hours"`
}

// handleAnalyze fetches sample windows for the requested resources, runs the
// pipeline and persists the record chain when storage is enabled. An empty
// resource list analyzes everything the datasource can discover.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.source == nil {
		writeError(w, http.StatusServiceUnavailable, "no datasource configured")
		return
	}

	var req analyzeRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}
	if req.WindowHours <= 0 {
		req.WindowHours = 7 * 24
	}

	ctx := r.Context()
	resources := req.ResourceIDs
	if len(resources) == 0 {
		var err error
		resources, err = s.source.ListResources(ctx)
		if err != nil {
			writeError(w, http.StatusBadGateway, "resource discovery failed: "+err.Error())
			return
		}
	}
	if len(resources) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"results": []any{}})
		return
	}

	windowEnd := time.Now().UTC().Truncate(time.Minute)
	windowStart := windowEnd.Add(-time.Duration(req.WindowHours) * time.Hour)

	inputs := make([]engine.Analysis, 0, len(resources))
	for _, resourceID := range resources {
		samples, err := s.source.FetchWindow(ctx, resourceID, windowStart, windowEnd)
		if err != nil {
			writeError(w, http.StatusBadGateway, "metric fetch failed for "+resourceID+": "+err.Error())
			return
		}
		inputs = append(inputs, engine.Analysis{
			ResourceID:          resourceID,
			ProjectID:           s.projectID,
			WindowStart:         windowStart,
			WindowEnd:           windowEnd,
			Samples:             samples,
			CurrentArchitecture: defaultArchitecture,
		})
	}

	results, err := s.engine.AnalyzeAll(ctx, inputs)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if s.store != nil {
		for i, res := range results {
			if err := s.persist(ctx, inputs[i].Samples, res); err != nil {
				s.logger.Error("failed to persist analysis",
					"resource_id", inputs[i].ResourceID, "error", err)
				writeError(w, http.StatusInternalServerError, "persistence failed: "+err.Error())
				return
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"window_start": windowStart,
		"window_end":   windowEnd,
		"results":      results,
	})
}

// defaultArchitecture stands in when the datasource cannot report the
// provisioned shape of a service.
var defaultArchitecture = models.Architecture{
	VCPU:             1,
	MemoryMB:         512,
	MinInstances:     1,
	MaxInstances:     10,
	ConcurrencyLimit: 80,
}

func (s *Server) persist(ctx context.Context, samples []models.MetricSample, res *engine.Result) error {
	if err := s.store.SaveSamples(ctx, samples); err != nil {
		return err
	}
	if err := s.store.SaveFeatureWindow(ctx, res.Features); err != nil {
		return err
	}
	if err := s.store.SaveClassification(ctx, res.Classification); err != nil {
		return err
	}
	return s.store.SaveRecommendation(ctx, res.Recommendation)
}

func (s *Server) handleListRecommendations(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage disabled")
		return
	}

	resourceID := r.URL.Query().Get("resource_id")
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	if resourceID != "" {
		recs, err := s.store.ListRecommendations(r.Context(), resourceID, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": recs, "total": len(recs)})
		return
	}

	latest, err := s.store.LatestRecommendations(r.Context(), s.projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": latest, "total": len(latest)})
}

func (s *Server) handleGetRecommendation(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage disabled")
		return
	}

	rec, err := s.store.GetRecommendation(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type decisionRequest struct {
	Decision approval.Decision `json:"decision"`
	Actor    string            `json:"actor"`
}

// handleDecision applies an operator decision. The in-memory transition
// validates the request; the storage write makes it atomic against races.
func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage disabled")
		return
	}

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	rec, err := s.store.GetRecommendation(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := approval.Transition(rec, req.Decision, req.Actor, time.Now()); err != nil {
		var invalid *approval.InvalidTransitionError
		if errors.As(err, &invalid) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.ApplyApproval(r.Context(), rec); err != nil {
		if errors.Is(err, storage.ErrNotPending) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Info("recommendation decided",
		"recommendation_id", id,
		"decision", req.Decision,
		"actor", req.Actor,
	)
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage disabled")
		return
	}

	rows, err := s.store.DashboardSummary(r.Context(), s.projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	stats, err := s.store.DashboardStats(r.Context(), s.projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stats":     stats,
		"resources": rows,
	})
}
