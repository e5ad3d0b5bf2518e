package service

import (
	"time"

	"github.com/recruiterops/backend/internal/domain"
)

// The entitlement gate is a pure function of a fetched profile and the
// caller's wall clock. It decides what the UI exposes; server-side routes that
// mutate paid state enforce the same checks via middleware.

// IsActive reports whether paid features are exposed for a profile: status is
// active, or trialing with the trial end strictly in the future. Any other
// state — including a stale cached cancelled/expired record — never unlocks
// paid features.
func IsActive(p *domain.Profile, now time.Time) bool {
	if p == nil {
		return false
	}
	switch p.SubscriptionStatus {
	case domain.StatusActive:
		return true
	case domain.StatusTrialing:
		return p.TrialEndsAt != nil && p.TrialEndsAt.After(now)
	default:
		return false
	}
}

// HasFeature reports whether a profile's plan grants a feature right now.
// Unknown plan values fall back to the starter capability list.
func HasFeature(p *domain.Profile, feature string, now time.Time) bool {
	if !IsActive(p, now) {
		return false
	}
	for _, f := range domain.GetPlan(p.Plan).Features {
		if f == feature {
			return true
		}
	}
	return false
}

// Entitlements builds the client-facing gate summary for a profile.
func Entitlements(p *domain.Profile, now time.Time) domain.EntitlementView {
	view := domain.EntitlementView{Plan: domain.GetPlan(p.Plan).ID}
	if !IsActive(p, now) {
		return view
	}
	view.Active = true
	view.Features = domain.GetPlan(p.Plan).Features
	return view
}
