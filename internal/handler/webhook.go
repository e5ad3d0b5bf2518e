package handler

import (
	"errors"
	"net/http"

	"github.com/recruiterops/backend/internal/metrics"
	"github.com/recruiterops/backend/internal/service"
	"github.com/recruiterops/backend/pkg/gumroad"
)

// WebhookHandler receives payment-provider events. The endpoint is public:
// authenticity comes from the seller-id check inside the reconciler, and the
// provider retries on any non-2xx response.
type WebhookHandler struct {
	reconciler *service.Reconciler
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(reconciler *service.Reconciler) *WebhookHandler {
	return &WebhookHandler{reconciler: reconciler}
}

// HandleGumroad handles POST /api/webhooks/gumroad.
func (h *WebhookHandler) HandleGumroad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		Text(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	// A body that cannot be parsed as form data cannot even be audited;
	// rejecting it outright is the only option.
	if err := r.ParseForm(); err != nil {
		metrics.WebhookEvents.WithLabelValues("invalid", "rejected").Inc()
		JSON(w, http.StatusBadRequest, map[string]string{"error": "malformed form body"})
		return
	}

	ev := gumroad.Parse(r.PostForm)

	result, err := h.reconciler.Process(r.Context(), ev)
	if err != nil {
		if errors.Is(err, service.ErrSellerMismatch) {
			metrics.WebhookEvents.WithLabelValues(ev.AlertType, "unauthorized").Inc()
			Text(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		// Post-audit failure: answer 500 so the provider retries.
		metrics.WebhookEvents.WithLabelValues(ev.AlertType, "error").Inc()
		JSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if result.Ping {
		metrics.WebhookEvents.WithLabelValues(ev.AlertType, "ping").Inc()
		JSON(w, http.StatusOK, map[string]any{"success": true, "note": "ping logged"})
		return
	}

	metrics.WebhookEvents.WithLabelValues(ev.AlertType, result.Status).Inc()
	JSON(w, http.StatusOK, map[string]any{"success": true, "status": result.Status})
}
