// Package handlers contains HTTP request handlers for the complaint API.
// Handlers parse requests, call services, and return JSON responses.
package handlers

import (
	"net/http"

	"github.com/aawaaz/complaint-desk/internal/middleware"
	"github.com/aawaaz/complaint-desk/internal/models"
	"github.com/aawaaz/complaint-desk/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ComplaintHandler handles complaint-related HTTP endpoints
type ComplaintHandler struct {
	complaintSvc *services.ComplaintService
	logger       *zap.SugaredLogger
}

// NewComplaintHandler creates a new complaint handler
func NewComplaintHandler(cs *services.ComplaintService, logger *zap.SugaredLogger) *ComplaintHandler {
	return &ComplaintHandler{complaintSvc: cs, logger: logger}
}

// Routes mounts the complaint endpoints
func (h *ComplaintHandler) Routes(r chi.Router) {
	// Identity and role are checked before ids, bodies or filters are parsed
	r.Use(h.require(services.RequirePrincipal))

	r.Post("/", h.Create)
	r.Get("/my", h.Mine)

	r.Route("/admin", func(r chi.Router) {
		r.Use(h.require(services.RequireAdmin))
		r.Get("/all", h.AdminList)
		r.Get("/count", h.AdminCount)
		r.Get("/stats/dashboard", h.Stats)
		r.Put("/{id}/status", h.UpdateStatus)
	})

	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// Create handles POST /api/complaints
func (h *ComplaintHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.ComplaintInput
	if !decodeJSON(w, r, &in) {
		return
	}

	complaint, err := h.complaintSvc.Create(r.Context(), middleware.PrincipalFrom(r.Context()), in)
	if err != nil {
		respondServiceError(w, h.logger, "create complaint", err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Complaint submitted successfully",
		"complaint": complaint,
	})
}

// Mine handles GET /api/complaints/my
func (h *ComplaintHandler) Mine(w http.ResponseWriter, r *http.Request) {
	list, err := h.complaintSvc.ListMine(r.Context(), middleware.PrincipalFrom(r.Context()))
	if err != nil {
		respondServiceError(w, h.logger, "list own complaints", err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// Get handles GET /api/complaints/{id}
func (h *ComplaintHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := complaintID(w, r)
	if !ok {
		return
	}

	complaint, err := h.complaintSvc.Get(r.Context(), middleware.PrincipalFrom(r.Context()), id)
	if err != nil {
		respondServiceError(w, h.logger, "get complaint", err)
		return
	}
	respondJSON(w, http.StatusOK, complaint)
}

// Update handles PUT /api/complaints/{id}
func (h *ComplaintHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := complaintID(w, r)
	if !ok {
		return
	}

	var in models.ComplaintInput
	if !decodeJSON(w, r, &in) {
		return
	}

	complaint, err := h.complaintSvc.Update(r.Context(), middleware.PrincipalFrom(r.Context()), id, in)
	if err != nil {
		respondServiceError(w, h.logger, "update complaint", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Complaint updated successfully",
		"complaint": complaint,
	})
}

// Delete handles DELETE /api/complaints/{id}
func (h *ComplaintHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := complaintID(w, r)
	if !ok {
		return
	}

	if err := h.complaintSvc.Delete(r.Context(), middleware.PrincipalFrom(r.Context()), id); err != nil {
		respondServiceError(w, h.logger, "delete complaint", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Complaint deleted successfully"})
}

// AdminList handles GET /api/complaints/admin/all?status=&category=
func (h *ComplaintHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseFilter(w, r)
	if !ok {
		return
	}

	list, err := h.complaintSvc.ListAll(r.Context(), middleware.PrincipalFrom(r.Context()), filter)
	if err != nil {
		respondServiceError(w, h.logger, "list complaints", err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// AdminCount handles GET /api/complaints/admin/count?status=&category=
func (h *ComplaintHandler) AdminCount(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseFilter(w, r)
	if !ok {
		return
	}

	count, err := h.complaintSvc.Count(r.Context(), middleware.PrincipalFrom(r.Context()), filter)
	if err != nil {
		respondServiceError(w, h.logger, "count complaints", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// UpdateStatus handles PUT /api/complaints/admin/{id}/status
func (h *ComplaintHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := complaintID(w, r)
	if !ok {
		return
	}

	var in models.StatusInput
	if !decodeJSON(w, r, &in) {
		return
	}

	complaint, err := h.complaintSvc.UpdateStatus(r.Context(), middleware.PrincipalFrom(r.Context()), id, in)
	if err != nil {
		respondServiceError(w, h.logger, "update complaint status", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Complaint status updated successfully",
		"complaint": complaint,
	})
}

// Stats handles GET /api/complaints/admin/stats/dashboard
func (h *ComplaintHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.complaintSvc.Statistics(r.Context(), middleware.PrincipalFrom(r.Context()))
	if err != nil {
		respondServiceError(w, h.logger, "complaint statistics", err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// require rejects the request unless check accepts the caller
func (h *ComplaintHandler) require(check func(*models.Principal) error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := check(middleware.PrincipalFrom(r.Context())); err != nil {
				respondServiceError(w, h.logger, "authorize", err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// complaintID parses the {id} URL parameter; ids that cannot exist are reported as not found
func complaintID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "Complaint not found")
		return uuid.Nil, false
	}
	return id, true
}

func parseFilter(w http.ResponseWriter, r *http.Request) (models.ComplaintFilter, bool) {
	var filter models.ComplaintFilter
	q := r.URL.Query()

	if raw := q.Get("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Unknown status filter")
			return filter, false
		}
		filter.Status = &status
	}
	if raw := q.Get("category"); raw != "" {
		category, err := models.ParseCategory(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Unknown category filter")
			return filter, false
		}
		filter.Category = &category
	}
	return filter, true
}
