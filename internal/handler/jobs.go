package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/recruiterops/backend/internal/contextkeys"
	"github.com/recruiterops/backend/internal/domain"
	"github.com/recruiterops/backend/internal/service"
)

// JobHandler handles job requisition HTTP endpoints.
type JobHandler struct {
	svc *service.PipelineService
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(svc *service.PipelineService) *JobHandler {
	return &JobHandler{svc: svc}
}

// Create handles POST /api/jobs.
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(contextkeys.UserID).(string)

	var req domain.CreateJobRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	job, err := h.svc.CreateJob(r.Context(), userID, &req)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"job":     job,
	})
}

// List handles GET /api/jobs. Archived requisitions are included only when
// ?archived=true is set.
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(contextkeys.UserID).(string)
	includeArchived := r.URL.Query().Get("archived") == "true"

	jobs, err := h.svc.ListJobs(r.Context(), userID, includeArchived)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, jobs)
}

// GetByID handles GET /api/jobs/{id}.
func (h *JobHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(contextkeys.UserID).(string)
	id := chi.URLParam(r, "id")

	job, err := h.svc.GetJob(r.Context(), id, userID)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, job)
}

// Update handles PUT /api/jobs/{id}.
func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(contextkeys.UserID).(string)
	id := chi.URLParam(r, "id")

	var req domain.UpdateJobRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	job, err := h.svc.UpdateJob(r.Context(), id, userID, &req)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"job":     job,
	})
}

// Delete handles DELETE /api/jobs/{id}.
func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(contextkeys.UserID).(string)
	id := chi.URLParam(r, "id")

	if err := h.svc.DeleteJob(r.Context(), id, userID); err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Candidates handles GET /api/jobs/{id}/candidates.
func (h *JobHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(contextkeys.UserID).(string)
	id := chi.URLParam(r, "id")

	candidates, err := h.svc.ListJobCandidates(r.Context(), id, userID)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, candidates)
}

// Stats handles GET /api/stats.
func (h *JobHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(contextkeys.UserID).(string)

	stats, err := h.svc.Stats(r.Context(), userID)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, stats)
}
