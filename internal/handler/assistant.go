package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/recruiterops/backend/internal/contextkeys"
	"github.com/recruiterops/backend/internal/metrics"
	"github.com/recruiterops/backend/internal/service"
)

// AssistantHandler handles AI drafting endpoints.
type AssistantHandler struct {
	svc *service.AssistantService
}

// NewAssistantHandler creates a new AssistantHandler.
func NewAssistantHandler(svc *service.AssistantService) *AssistantHandler {
	return &AssistantHandler{svc: svc}
}

type inviteRequest struct {
	Availability string `json:"availability"`
}

// Outreach handles POST /api/candidates/{id}/outreach.
func (h *AssistantHandler) Outreach(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(contextkeys.UserID).(string)
	id := chi.URLParam(r, "id")

	draft, err := h.svc.DraftOutreach(r.Context(), userID, id)
	if err != nil {
		metrics.AssistantCompletions.WithLabelValues("outreach", "error").Inc()
		Error(w, err)
		return
	}

	metrics.AssistantCompletions.WithLabelValues("outreach", "ok").Inc()
	JSON(w, http.StatusOK, map[string]string{"draft": draft})
}

// Invite handles POST /api/candidates/{id}/invite.
func (h *AssistantHandler) Invite(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(contextkeys.UserID).(string)
	id := chi.URLParam(r, "id")

	var req inviteRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	invite, err := h.svc.InterviewInvite(r.Context(), userID, id, req.Availability)
	if err != nil {
		metrics.AssistantCompletions.WithLabelValues("invite", "error").Inc()
		Error(w, err)
		return
	}

	metrics.AssistantCompletions.WithLabelValues("invite", "ok").Inc()
	JSON(w, http.StatusOK, map[string]string{"invite": invite})
}

// DailySummary handles GET /api/assistant/summary.
func (h *AssistantHandler) DailySummary(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(contextkeys.UserID).(string)

	summary, err := h.svc.DailySummary(r.Context(), userID)
	if err != nil {
		metrics.AssistantCompletions.WithLabelValues("summary", "error").Inc()
		Error(w, err)
		return
	}

	metrics.AssistantCompletions.WithLabelValues("summary", "ok").Inc()
	JSON(w, http.StatusOK, map[string]string{"summary": summary})
}
