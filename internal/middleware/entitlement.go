package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/recruiterops/backend/internal/contextkeys"
	"github.com/recruiterops/backend/internal/domain"
	"github.com/recruiterops/backend/internal/handler"
	"github.com/recruiterops/backend/internal/service"
)

// ProfileLoader loads the authenticated user's profile for gating checks.
type ProfileLoader interface {
	FindByID(ctx context.Context, id string) (*domain.Profile, error)
}

// RequireActive rejects requests from accounts without an active or trialing
// subscription. Must be used after Auth.
func RequireActive(profiles ProfileLoader) func(next http.Handler) http.Handler {
	return requireEntitlement(profiles, "")
}

// RequireFeature rejects requests from accounts whose plan does not include
// the given feature. Must be used after Auth.
func RequireFeature(profiles ProfileLoader, feature string) func(next http.Handler) http.Handler {
	return requireEntitlement(profiles, feature)
}

func requireEntitlement(profiles ProfileLoader, feature string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := r.Context().Value(contextkeys.UserID).(string)
			if !ok || userID == "" {
				handler.JSON(w, http.StatusUnauthorized, map[string]string{"error": "no token provided"})
				return
			}

			profile, err := profiles.FindByID(r.Context(), userID)
			if err != nil {
				handler.Error(w, err)
				return
			}
			if profile == nil {
				handler.JSON(w, http.StatusUnauthorized, map[string]string{"error": "account not found"})
				return
			}

			now := time.Now()
			if !service.IsActive(profile, now) {
				handler.JSON(w, http.StatusForbidden, map[string]string{"error": "subscription inactive"})
				return
			}
			if feature != "" && !service.HasFeature(profile, feature, now) {
				handler.JSON(w, http.StatusForbidden, map[string]string{"error": "plan does not include this feature"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
