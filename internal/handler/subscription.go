package handler

import (
	"net/http"

	"github.com/recruiterops/backend/internal/domain"
	"github.com/recruiterops/backend/internal/metrics"
	"github.com/recruiterops/backend/internal/service"
)

// SubscriptionHandler exposes the post-signup claim endpoint.
type SubscriptionHandler struct {
	claim *service.ClaimService
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(claim *service.ClaimService) *SubscriptionHandler {
	return &SubscriptionHandler{claim: claim}
}

// Confirm handles POST /api/subscription/confirm. Called right after a new
// account completes registration; a miss is a normal outcome.
func (h *SubscriptionHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req domain.ClaimRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if req.Email == "" || req.UserID == "" {
		JSON(w, http.StatusBadRequest, map[string]string{"error": "missing email or userId"})
		return
	}

	result, err := h.claim.Claim(r.Context(), req.UserID, req.Email)
	if err != nil {
		metrics.Claims.WithLabelValues("error").Inc()
		Error(w, err)
		return
	}

	if result.Activated {
		metrics.Claims.WithLabelValues("activated").Inc()
	} else {
		metrics.Claims.WithLabelValues("miss").Inc()
	}
	JSON(w, http.StatusOK, result)
}
