package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/recruiterops/backend/internal/domain"
)

// PendingClaimStore is the ledger surface the claim service needs.
type PendingClaimStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.PendingSubscription, error)
	Delete(ctx context.Context, email string) error
}

// ClaimService matches a freshly registered account to a purchase that
// arrived before signup. Invoked synchronously right after registration, and
// again via the confirm endpoint if that call was lost.
type ClaimService struct {
	profiles  ProfileStore
	pending   PendingClaimStore
	audit     AuditStore
	publisher ActivityPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewClaimService creates a ClaimService. publisher may be nil.
func NewClaimService(
	profiles ProfileStore,
	pending PendingClaimStore,
	audit AuditStore,
	publisher ActivityPublisher,
	logger *zap.Logger,
) *ClaimService {
	return &ClaimService{
		profiles:  profiles,
		pending:   pending,
		audit:     audit,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// SetPublisher installs the activity publisher after construction. The live
// feed authenticates with the auth service, which itself depends on this
// service, so the hub cannot exist yet when the claim service is built.
func (s *ClaimService) SetPublisher(p ActivityPublisher) {
	s.publisher = p
}

// Claim activates the account if a pending purchase exists for the email.
// A miss is a normal outcome, not an error: most signups have no prior
// purchase.
//
// Activation and ledger deletion are two writes, not one transaction. A crash
// between them leaves the pending record behind; the next claim re-applies the
// same values and deletes it, so the degraded path is idempotent.
func (s *ClaimService) Claim(ctx context.Context, userID, email string) (domain.ClaimResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	pending, err := s.pending.FindByEmail(ctx, email)
	if err != nil {
		return domain.ClaimResult{}, err
	}
	if pending == nil {
		return domain.ClaimResult{Activated: false}, nil
	}

	now := s.now()
	if _, err := s.profiles.UpdateSubscription(ctx, userID, domain.SubscriptionPatch{
		Status:       domain.StatusActive,
		Plan:         &pending.Plan,
		SaleID:       &pending.SaleID,
		SubscriberID: pending.SubscriberID,
		EventAt:      now,
	}); err != nil {
		return domain.ClaimResult{}, err
	}

	if err := s.pending.Delete(ctx, email); err != nil {
		// The account is already active; surfacing the error lets the
		// caller retry, and the retry re-applies the same values.
		return domain.ClaimResult{}, err
	}

	if err := s.audit.LogUsage(ctx, &domain.UsageLog{
		UserID: userID,
		Action: domain.ActionSubscriptionClaimed,
		Metadata: map[string]any{
			"email":   email,
			"plan":    pending.Plan,
			"sale_id": pending.SaleID,
		},
	}); err != nil {
		s.logger.Warn("claim usage log failed", zap.Error(err))
	}
	if s.publisher != nil {
		s.publisher.Publish(userID, domain.ActivityEvent{
			Action:   domain.ActionSubscriptionClaimed,
			Metadata: map[string]any{"plan": pending.Plan},
			At:       now,
		})
	}

	s.logger.Info("activated pending subscription",
		zap.String("email", email),
		zap.String("plan", pending.Plan))
	return domain.ClaimResult{Activated: true, Plan: pending.Plan}, nil
}
