package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/recruiterops/backend/internal/domain"
	"github.com/recruiterops/backend/pkg/gumroad"
)

// ErrSellerMismatch rejects an event whose seller id does not match the
// configured one. The provider must not retry these.
var ErrSellerMismatch = errors.New("seller id mismatch")

// ProfileStore is the entitlement-store surface the reconciler needs.
type ProfileStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.Profile, error)
	UpdateSubscription(ctx context.Context, id string, patch domain.SubscriptionPatch) (bool, error)
}

// PendingStore stages purchases for not-yet-registered buyers.
type PendingStore interface {
	Upsert(ctx context.Context, p *domain.PendingSubscription) error
}

// JobArchiver exposes the job side of the cancellation cascade.
type JobArchiver interface {
	ActiveIDsByUser(ctx context.Context, userID string) ([]string, error)
	ArchiveByIDs(ctx context.Context, ids []string, at time.Time) (int64, error)
}

// CandidateArchiver exposes the candidate side of the cancellation cascade.
type CandidateArchiver interface {
	ArchiveByJobIDs(ctx context.Context, jobIDs []string, at time.Time) (int64, error)
}

// AuditStore persists webhook and usage logs.
type AuditStore interface {
	LogWebhook(ctx context.Context, l *domain.WebhookLog) error
	LogUsage(ctx context.Context, l *domain.UsageLog) error
}

// ActivityPublisher pushes account events to connected activity feeds.
// Implementations must be non-blocking.
type ActivityPublisher interface {
	Publish(userID string, e domain.ActivityEvent)
}

// ReconcileResult reports what a processed event did.
type ReconcileResult struct {
	Status       string // derived subscription status ("" for pings)
	Ping         bool
	Stale        bool // event older than the profile's last reconciled event
	JobsArchived int64
}

// Reconciler merges payment-provider webhook events into entitlement state.
// It is stateless between invocations and idempotent under at-least-once
// delivery: the provider retries on any non-2xx response.
type Reconciler struct {
	sellerID   string
	profiles   ProfileStore
	pending    PendingStore
	jobs       JobArchiver
	candidates CandidateArchiver
	audit      AuditStore
	publisher  ActivityPublisher
	logger     *zap.Logger
	now        func() time.Time
}

// NewReconciler creates a Reconciler. An empty sellerID disables the
// authenticity check. publisher may be nil.
func NewReconciler(
	sellerID string,
	profiles ProfileStore,
	pending PendingStore,
	jobs JobArchiver,
	candidates CandidateArchiver,
	audit AuditStore,
	publisher ActivityPublisher,
	logger *zap.Logger,
) *Reconciler {
	return &Reconciler{
		sellerID:   sellerID,
		profiles:   profiles,
		pending:    pending,
		jobs:       jobs,
		candidates: candidates,
		audit:      audit,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

// Process reconciles one provider event. Errors after the audit-log step are
// returned so the transport layer answers 500 and the provider retries.
func (s *Reconciler) Process(ctx context.Context, ev gumroad.Event) (ReconcileResult, error) {
	// Audit log first, unconditionally. A failure here is swallowed: the
	// audit trail must never become a single point of failure for
	// entitlement correctness.
	if err := s.audit.LogWebhook(ctx, &domain.WebhookLog{
		AlertType:  ev.AlertType,
		Email:      ev.Email,
		SaleID:     ev.SaleID,
		RawPayload: ev.Raw,
	}); err != nil {
		s.logger.Warn("webhook audit log failed", zap.Error(err))
	}

	if !ev.VerifySeller(s.sellerID) {
		s.logger.Warn("rejected webhook with mismatched seller id",
			zap.String("seller_id", ev.SellerID))
		return ReconcileResult{}, ErrSellerMismatch
	}

	if ev.IsPing() {
		return ReconcileResult{Ping: true}, nil
	}

	status := ev.DerivedStatus()
	plan := domain.PlanForProduct(ev.ProductPermalink)

	eventAt := ev.OccurredAt
	if eventAt.IsZero() {
		eventAt = s.now()
	}

	profile, err := s.profiles.FindByEmail(ctx, ev.Email)
	if err != nil {
		return ReconcileResult{}, err
	}

	if profile == nil {
		return s.stagePending(ctx, ev, status, plan)
	}
	return s.applyToProfile(ctx, ev, profile, status, plan, eventAt)
}

func (s *Reconciler) applyToProfile(
	ctx context.Context,
	ev gumroad.Event,
	profile *domain.Profile,
	status, plan string,
	eventAt time.Time,
) (ReconcileResult, error) {
	patch := domain.SubscriptionPatch{
		Status:       status,
		SaleID:       &ev.SaleID,
		SubscriberID: optional(ev.SubscriberID),
		EventAt:      eventAt,
	}
	// Plan is only written on activation; a cancellation keeps the prior
	// tier so reactivating restores it.
	if status == domain.StatusActive {
		patch.Plan = &plan
	}

	applied, err := s.profiles.UpdateSubscription(ctx, profile.ID, patch)
	if err != nil {
		return ReconcileResult{}, err
	}
	if !applied {
		// A newer event already reconciled this profile; the delivery at
		// hand is a late retry and changes nothing.
		s.logger.Info("skipped stale webhook event",
			zap.String("email", ev.Email),
			zap.Time("event_at", eventAt))
		return ReconcileResult{Status: status, Stale: true}, nil
	}

	result := ReconcileResult{Status: status}

	if status == domain.StatusCancelled || status == domain.StatusExpired {
		archived, err := s.cascadeArchive(ctx, profile.ID)
		if err != nil {
			return ReconcileResult{}, err
		}
		result.JobsArchived = archived
		s.recordUsage(ctx, profile.ID, domain.ActionSubscriptionCancelled, map[string]any{
			"email":         ev.Email,
			"sale_id":       ev.SaleID,
			"jobs_archived": archived,
		})
	} else {
		s.recordUsage(ctx, profile.ID, domain.ActionSubscriptionActivated, map[string]any{
			"email":      ev.Email,
			"sale_id":    ev.SaleID,
			"alert_type": ev.AlertType,
		})
	}

	s.logger.Info("reconciled profile from webhook",
		zap.String("email", ev.Email),
		zap.String("status", status))
	return result, nil
}

// cascadeArchive marks the user's non-archived jobs and their candidates
// archived. Both updates skip already-archived rows, so a retried cascade is
// a no-op rather than a double count.
func (s *Reconciler) cascadeArchive(ctx context.Context, userID string) (int64, error) {
	jobIDs, err := s.jobs.ActiveIDsByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if len(jobIDs) == 0 {
		return 0, nil
	}

	at := s.now()
	archived, err := s.jobs.ArchiveByIDs(ctx, jobIDs, at)
	if err != nil {
		return 0, err
	}
	if _, err := s.candidates.ArchiveByJobIDs(ctx, jobIDs, at); err != nil {
		return 0, err
	}
	return archived, nil
}

// stagePending handles a sale for an email with no account yet. Refunds and
// cancellations for unknown emails have nothing to reconcile.
func (s *Reconciler) stagePending(ctx context.Context, ev gumroad.Event, status, plan string) (ReconcileResult, error) {
	if status != domain.StatusActive {
		return ReconcileResult{Status: status}, nil
	}

	err := s.pending.Upsert(ctx, &domain.PendingSubscription{
		Email:        ev.Email,
		Plan:         plan,
		SaleID:       ev.SaleID,
		SubscriberID: optional(ev.SubscriberID),
	})
	if err != nil {
		return ReconcileResult{}, err
	}

	s.logger.Info("staged pending subscription for unregistered buyer",
		zap.String("email", ev.Email),
		zap.String("plan", plan))
	return ReconcileResult{Status: status}, nil
}

func (s *Reconciler) recordUsage(ctx context.Context, userID, action string, metadata map[string]any) {
	if err := s.audit.LogUsage(ctx, &domain.UsageLog{
		UserID:   userID,
		Action:   action,
		Metadata: metadata,
	}); err != nil {
		s.logger.Warn("usage log failed", zap.String("action", action), zap.Error(err))
	}
	if s.publisher != nil {
		s.publisher.Publish(userID, domain.ActivityEvent{
			Action:   action,
			Metadata: metadata,
			At:       s.now(),
		})
	}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
