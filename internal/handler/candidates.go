package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/recruiterops/backend/internal/contextkeys"
	"github.com/recruiterops/backend/internal/domain"
	"github.com/recruiterops/backend/internal/service"
)

// CandidateHandler handles candidate HTTP endpoints.
type CandidateHandler struct {
	svc *service.PipelineService
}

// NewCandidateHandler creates a new CandidateHandler.
func NewCandidateHandler(svc *service.PipelineService) *CandidateHandler {
	return &CandidateHandler{svc: svc}
}

// Create handles POST /api/candidates.
func (h *CandidateHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(contextkeys.UserID).(string)

	var req domain.CreateCandidateRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	candidate, err := h.svc.CreateCandidate(r.Context(), userID, &req)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusCreated, map[string]interface{}{
		"success":   true,
		"candidate": candidate,
	})
}

// List handles GET /api/candidates.
func (h *CandidateHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(contextkeys.UserID).(string)

	candidates, err := h.svc.ListCandidates(r.Context(), userID)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, candidates)
}

// Update handles PUT /api/candidates/{id}. Stage moves land here, including
// the move into "placed" which records the placement.
func (h *CandidateHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(contextkeys.UserID).(string)
	id := chi.URLParam(r, "id")

	var req domain.UpdateCandidateRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	candidate, err := h.svc.UpdateCandidate(r.Context(), id, userID, &req)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"candidate": candidate,
	})
}

// Delete handles DELETE /api/candidates/{id}.
func (h *CandidateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(contextkeys.UserID).(string)
	id := chi.URLParam(r, "id")

	if err := h.svc.DeleteCandidate(r.Context(), id, userID); err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
