package domain

import "time"

// PendingSubscription stages a purchase for an email that has not completed
// signup yet. At most one per email; a later sale for the same email
// overwrites it. Consumed (read + deleted) by the first successful claim.
// Unclaimed records persist indefinitely.
type PendingSubscription struct {
	Email        string    `json:"email"`
	Plan         string    `json:"plan"`
	SaleID       string    `json:"saleId"`
	SubscriberID *string   `json:"subscriberId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ClaimRequest is the input for the post-signup claim endpoint.
type ClaimRequest struct {
	Email  string `json:"email"`
	UserID string `json:"userId"`
}

// ClaimResult reports whether a pending purchase was applied to the account.
type ClaimResult struct {
	Activated bool   `json:"activated"`
	Plan      string `json:"plan,omitempty"`
}

// WebhookLog is the unconditional audit record of a received provider event,
// persisted before any business logic runs.
type WebhookLog struct {
	ID         int64     `json:"id"`
	AlertType  string    `json:"alertType"`
	Email      string    `json:"email"`
	SaleID     string    `json:"saleId"`
	RawPayload string    `json:"rawPayload"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// UsageLog records a business-level event against an account (activation,
// cancellation cascade, claim) for support and the activity feed.
type UsageLog struct {
	ID        int64          `json:"id"`
	UserID    string         `json:"userId"`
	Action    string         `json:"action"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Usage-log action names.
const (
	ActionSubscriptionActivated = "subscription_activated"
	ActionSubscriptionCancelled = "subscription_cancelled"
	ActionSubscriptionClaimed   = "subscription_claimed"
	ActionCandidatePlaced       = "candidate_placed"
)

// ActivityEvent is the live-feed representation of a usage-log entry.
type ActivityEvent struct {
	Action   string         `json:"action"`
	Metadata map[string]any `json:"metadata,omitempty"`
	At       time.Time      `json:"at"`
}
