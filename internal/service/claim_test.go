package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/recruiterops/backend/internal/domain"
)

type pendingClaimStub struct {
	records map[string]*domain.PendingSubscription
	findErr error
	delErr  error
	deleted []string
}

func (s *pendingClaimStub) FindByEmail(_ context.Context, email string) (*domain.PendingSubscription, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.records[email], nil
}

func (s *pendingClaimStub) Delete(_ context.Context, email string) error {
	if s.delErr != nil {
		return s.delErr
	}
	s.deleted = append(s.deleted, email)
	delete(s.records, email)
	return nil
}

func newClaimFixture(pending *pendingClaimStub) (*ClaimService, *profileStoreStub, *auditStub) {
	profiles := &profileStoreStub{applied: true}
	audit := &auditStub{}
	svc := NewClaimService(profiles, pending, audit, &publisherStub{}, zap.NewNop())
	return svc, profiles, audit
}

func TestClaimActivatesPendingPurchase(t *testing.T) {
	sub := "sub-42"
	pending := &pendingClaimStub{records: map[string]*domain.PendingSubscription{
		"buyer@example.com": {
			Email:        "buyer@example.com",
			Plan:         "agency",
			SaleID:       "sale-7",
			SubscriberID: &sub,
		},
	}}
	svc, profiles, audit := newClaimFixture(pending)

	result, err := svc.Claim(context.Background(), "user-1", "buyer@example.com")
	require.NoError(t, err)

	assert.True(t, result.Activated)
	assert.Equal(t, "agency", result.Plan)

	assert.Equal(t, "user-1", profiles.lastID)
	assert.Equal(t, domain.StatusActive, profiles.lastPatch.Status)
	require.NotNil(t, profiles.lastPatch.Plan)
	assert.Equal(t, "agency", *profiles.lastPatch.Plan)
	require.NotNil(t, profiles.lastPatch.SaleID)
	assert.Equal(t, "sale-7", *profiles.lastPatch.SaleID)

	assert.Equal(t, []string{"buyer@example.com"}, pending.deleted)
	require.Len(t, audit.usageLogs, 1)
	assert.Equal(t, domain.ActionSubscriptionClaimed, audit.usageLogs[0].Action)
}

func TestClaimNormalizesEmail(t *testing.T) {
	pending := &pendingClaimStub{records: map[string]*domain.PendingSubscription{
		"buyer@example.com": {Email: "buyer@example.com", Plan: "pro", SaleID: "sale-1"},
	}}
	svc, _, _ := newClaimFixture(pending)

	result, err := svc.Claim(context.Background(), "user-1", "  Buyer@Example.COM ")
	require.NoError(t, err)
	assert.True(t, result.Activated)
}

func TestClaimMissIsSilent(t *testing.T) {
	pending := &pendingClaimStub{records: map[string]*domain.PendingSubscription{}}
	svc, profiles, audit := newClaimFixture(pending)

	result, err := svc.Claim(context.Background(), "user-1", "nobody@example.com")
	require.NoError(t, err)

	assert.False(t, result.Activated)
	assert.Empty(t, result.Plan)
	assert.Zero(t, profiles.updateCalls)
	assert.Empty(t, audit.usageLogs)
}

func TestClaimSecondCallIsNoOp(t *testing.T) {
	pending := &pendingClaimStub{records: map[string]*domain.PendingSubscription{
		"buyer@example.com": {Email: "buyer@example.com", Plan: "pro", SaleID: "sale-1"},
	}}
	svc, profiles, _ := newClaimFixture(pending)

	first, err := svc.Claim(context.Background(), "user-1", "buyer@example.com")
	require.NoError(t, err)
	require.True(t, first.Activated)

	second, err := svc.Claim(context.Background(), "user-1", "buyer@example.com")
	require.NoError(t, err)
	assert.False(t, second.Activated)
	assert.Equal(t, 1, profiles.updateCalls)
}

func TestClaimDeleteFailureSurfacesForRetry(t *testing.T) {
	pending := &pendingClaimStub{
		records: map[string]*domain.PendingSubscription{
			"buyer@example.com": {Email: "buyer@example.com", Plan: "pro", SaleID: "sale-1"},
		},
		delErr: errors.New("deadlock detected"),
	}
	svc, profiles, _ := newClaimFixture(pending)

	_, err := svc.Claim(context.Background(), "user-1", "buyer@example.com")
	require.Error(t, err)

	// The activation write already landed; a retry re-applies the same
	// values and finishes the delete.
	assert.Equal(t, 1, profiles.updateCalls)

	pending.delErr = nil
	result, err := svc.Claim(context.Background(), "user-1", "buyer@example.com")
	require.NoError(t, err)
	assert.True(t, result.Activated)
	assert.Equal(t, 2, profiles.updateCalls)
}

func TestClaimStoreErrorPropagates(t *testing.T) {
	pending := &pendingClaimStub{findErr: errors.New("connection refused")}
	svc, _, _ := newClaimFixture(pending)

	_, err := svc.Claim(context.Background(), "user-1", "buyer@example.com")
	require.Error(t, err)
}
