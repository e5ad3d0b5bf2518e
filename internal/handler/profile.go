package handler

import (
	"net/http"
	"time"

	"github.com/recruiterops/backend/internal/contextkeys"
	"github.com/recruiterops/backend/internal/domain"
	"github.com/recruiterops/backend/internal/repository"
	"github.com/recruiterops/backend/internal/service"
)

// ProfileHandler handles profile and entitlement endpoints.
type ProfileHandler struct {
	profiles *repository.ProfileRepository
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles *repository.ProfileRepository) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get handles GET /api/profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(contextkeys.UserID).(string)

	profile, err := h.profiles.FindByID(r.Context(), userID)
	if err != nil {
		Error(w, err)
		return
	}
	if profile == nil {
		Error(w, domain.ErrNotFound("account not found"))
		return
	}

	JSON(w, http.StatusOK, profile)
}

// Update handles PUT /api/profile. Only user-owned fields are writable here;
// subscription state belongs to the reconciler and cannot be touched through
// this endpoint.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(contextkeys.UserID).(string)

	var req domain.UpdateProfileRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	if err := h.profiles.UpdateDetails(r.Context(), userID, &req); err != nil {
		Error(w, domain.ErrInternal("failed to update profile", err))
		return
	}

	profile, err := h.profiles.FindByID(r.Context(), userID)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, profile)
}

// Entitlements handles GET /api/profile/entitlements — the gate summary the
// client uses to expose or hide paid features. Advisory for UX only; server
// routes enforce the same checks.
func (h *ProfileHandler) Entitlements(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(contextkeys.UserID).(string)

	profile, err := h.profiles.FindByID(r.Context(), userID)
	if err != nil {
		Error(w, err)
		return
	}
	if profile == nil {
		Error(w, domain.ErrNotFound("account not found"))
		return
	}

	JSON(w, http.StatusOK, service.Entitlements(profile, time.Now()))
}
