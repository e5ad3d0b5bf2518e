package domain

import (
	"time"

	"github.com/google/uuid"
)

// Subscription status values carried on a profile.
const (
	StatusTrialing  = "trialing"
	StatusActive    = "active"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
)

// Profile is the entitlement record for a user account: one row per account,
// carrying both the credentials and the subscription state reconciled from
// payment-provider webhooks.
//
// Subscription fields (Plan, SubscriptionStatus, GumroadSaleID,
// GumroadSubscriberID, LastEventAt) are owned by the webhook reconciler and
// the claim service; detail fields (FullName, webhook URLs) are owned by the
// user. The two sets are written through disjoint repository methods so one
// path can never clobber the other.
type Profile struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	Password            string     `json:"-"` // bcrypt hash, never serialized
	FullName            *string    `json:"fullName,omitempty"`
	Plan                string     `json:"plan"`
	SubscriptionStatus  string     `json:"subscriptionStatus"`
	TrialEndsAt         *time.Time `json:"trialEndsAt,omitempty"`
	GumroadSaleID       *string    `json:"gumroadSaleId,omitempty"`
	GumroadSubscriberID *string    `json:"gumroadSubscriberId,omitempty"`
	WebhookOutreach     *string    `json:"webhookOutreach,omitempty"`
	WebhookCalendar     *string    `json:"webhookCalendar,omitempty"`
	LastEventAt         *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// SubscriptionPatch is a field-scoped update of the subscription-owned columns
// of a profile. Plan is only set when non-nil (never downgraded on
// cancellation — plan is sticky so reactivation restores the prior tier).
// EventAt orders patches: a patch older than the row's last_event_at is
// skipped.
type SubscriptionPatch struct {
	Status       string
	Plan         *string
	SaleID       *string
	SubscriberID *string
	EventAt      time.Time
}

// UpdateProfileRequest is the validated input for editing user-owned fields.
type UpdateProfileRequest struct {
	FullName        *string `json:"fullName" validate:"omitempty,max=120"`
	WebhookOutreach *string `json:"webhookOutreach" validate:"omitempty,url"`
	WebhookCalendar *string `json:"webhookCalendar" validate:"omitempty,url"`
}

// SignupRequest is the validated input for account creation.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName" validate:"omitempty,max=120"`
}

// LoginRequest is the input for authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned after signup or login.
type LoginResponse struct {
	Token   string   `json:"token"`
	Profile *Profile `json:"profile"`
}

// JWTClaims represents the JWT payload.
type JWTClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
}

// EntitlementView is the client-facing gate summary for a profile.
type EntitlementView struct {
	Active   bool     `json:"active"`
	Plan     string   `json:"plan"`
	Features []string `json:"features"`
}

// NewProfileID generates a new UUID for a profile.
func NewProfileID() string {
	return uuid.New().String()
}
