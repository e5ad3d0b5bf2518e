package handler

import (
	"net/http"
	"strconv"

	"github.com/recruiterops/backend/internal/contextkeys"
	"github.com/recruiterops/backend/internal/domain"
	"github.com/recruiterops/backend/internal/repository"
)

// ActivityHandler serves the account activity feed backed by the usage log.
type ActivityHandler struct {
	audit *repository.AuditRepository
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(audit *repository.AuditRepository) *ActivityHandler {
	return &ActivityHandler{audit: audit}
}

// List handles GET /api/activity.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(contextkeys.UserID).(string)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			Error(w, domain.ErrBadRequest("limit must be a positive integer"))
			return
		}
		limit = n
	}

	entries, err := h.audit.ListUsageByUser(r.Context(), userID, limit)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, entries)
}
