package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/recruiterops/backend/internal/domain"
)

var entNow = time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

func profileWith(status string, trialEndsAt *time.Time) *domain.Profile {
	return &domain.Profile{
		ID:                 "user-1",
		Email:              "user@example.com",
		Plan:               "pro",
		SubscriptionStatus: status,
		TrialEndsAt:        trialEndsAt,
	}
}

func TestIsActive(t *testing.T) {
	future := entNow.Add(24 * time.Hour)
	past := entNow.Add(-time.Minute)

	tests := []struct {
		name    string
		profile *domain.Profile
		want    bool
	}{
		{"active subscription", profileWith(domain.StatusActive, nil), true},
		{"trial still running", profileWith(domain.StatusTrialing, &future), true},
		{"trial expired", profileWith(domain.StatusTrialing, &past), false},
		{"trialing without end date", profileWith(domain.StatusTrialing, nil), false},
		{"cancelled", profileWith(domain.StatusCancelled, nil), false},
		{"expired", profileWith(domain.StatusExpired, nil), false},
		{"nil profile", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsActive(tt.profile, entNow))
		})
	}
}

func TestHasFeaturePerPlan(t *testing.T) {
	p := profileWith(domain.StatusActive, nil)

	p.Plan = "starter"
	assert.True(t, HasFeature(p, domain.FeatureJobTracking, entNow))
	assert.False(t, HasFeature(p, domain.FeatureOutreachDrafts, entNow))

	p.Plan = "pro"
	assert.True(t, HasFeature(p, domain.FeatureOutreachDrafts, entNow))
	assert.True(t, HasFeature(p, domain.FeatureStalledDetection, entNow))
	assert.False(t, HasFeature(p, domain.FeatureTeamSeats, entNow))

	p.Plan = "agency"
	assert.True(t, HasFeature(p, domain.FeatureTeamSeats, entNow))
	assert.True(t, HasFeature(p, domain.FeatureReporting, entNow))
}

func TestHasFeatureInactiveProfileGrantsNothing(t *testing.T) {
	p := profileWith(domain.StatusCancelled, nil)
	assert.False(t, HasFeature(p, domain.FeatureJobTracking, entNow))
}

func TestHasFeatureUnknownPlanFallsBackToStarter(t *testing.T) {
	p := profileWith(domain.StatusActive, nil)
	p.Plan = "enterprise-legacy"

	assert.True(t, HasFeature(p, domain.FeatureJobTracking, entNow))
	assert.False(t, HasFeature(p, domain.FeatureOutreachDrafts, entNow))
}

func TestEntitlementsView(t *testing.T) {
	p := profileWith(domain.StatusActive, nil)
	view := Entitlements(p, entNow)
	assert.True(t, view.Active)
	assert.Equal(t, "pro", view.Plan)
	assert.Contains(t, view.Features, domain.FeatureOutreachDrafts)

	p.SubscriptionStatus = domain.StatusExpired
	view = Entitlements(p, entNow)
	assert.False(t, view.Active)
	assert.Empty(t, view.Features)
}
