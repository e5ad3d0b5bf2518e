// Package gumroad parses the form-encoded webhook payloads the payment
// provider posts on sales, refunds, cancellations and subscription endings.
package gumroad

import (
	"net/url"
	"strings"
	"time"

	"github.com/recruiterops/backend/internal/domain"
)

// Alert types the provider sends. Anything unrecognized is treated as a sale.
const (
	AlertSale              = "sale"
	AlertRefund            = "refund"
	AlertCancelled         = "cancellation"
	AlertSubscriptionEnded = "subscription_ended"
)

// Event is a parsed provider webhook payload.
type Event struct {
	AlertType        string
	SellerID         string
	Email            string
	SaleID           string
	SubscriberID     string
	ProductPermalink string
	Refunded         bool
	Cancelled        bool
	// OccurredAt is the provider's event timestamp when supplied; zero
	// otherwise (the receiver substitutes its wall clock).
	OccurredAt time.Time
	// Raw is the original form body, preserved for the audit log.
	Raw string
}

// Parse builds an Event from decoded form values. Emails are the reconciliation
// key and are compared case-insensitively, so they are lowercased here.
func Parse(values url.Values) Event {
	alertType := values.Get("alert_type")
	if alertType == "" {
		alertType = values.Get("type")
	}
	if alertType == "" {
		alertType = AlertSale
	}

	var occurredAt time.Time
	for _, key := range []string{"sale_timestamp", "timestamp"} {
		if raw := values.Get(key); raw != "" {
			if ts, err := time.Parse(time.RFC3339, raw); err == nil {
				occurredAt = ts
				break
			}
		}
	}

	return Event{
		AlertType:        alertType,
		SellerID:         values.Get("seller_id"),
		Email:            strings.ToLower(strings.TrimSpace(values.Get("email"))),
		SaleID:           values.Get("sale_id"),
		SubscriberID:     values.Get("subscriber_id"),
		ProductPermalink: values.Get("product_permalink"),
		Refunded:         values.Get("refunded") == "true",
		Cancelled:        values.Get("cancelled") == "true",
		OccurredAt:       occurredAt,
		Raw:              values.Encode(),
	}
}

// IsPing reports whether the event carries no reconcilable identity. The
// provider sends such payloads as liveness pings; they are logged but must not
// mutate entitlement state.
func (e Event) IsPing() bool {
	return e.Email == "" || e.SaleID == ""
}

// DerivedStatus maps the event's flags to a subscription status.
func (e Event) DerivedStatus() string {
	switch {
	case e.Refunded, e.Cancelled, e.AlertType == AlertRefund:
		return domain.StatusCancelled
	case e.AlertType == AlertSubscriptionEnded:
		return domain.StatusExpired
	default:
		return domain.StatusActive
	}
}

// VerifySeller reports whether the event's seller id matches the configured
// one. An empty expected id disables the check.
func (e Event) VerifySeller(expected string) bool {
	if expected == "" {
		return true
	}
	return e.SellerID == expected
}
