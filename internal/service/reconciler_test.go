package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/recruiterops/backend/internal/domain"
	"github.com/recruiterops/backend/pkg/gumroad"
)

type profileStoreStub struct {
	profile     *domain.Profile
	findErr     error
	applied     bool
	updateErr   error
	updateCalls int
	lastID      string
	lastPatch   domain.SubscriptionPatch
}

func (s *profileStoreStub) FindByEmail(_ context.Context, _ string) (*domain.Profile, error) {
	return s.profile, s.findErr
}

func (s *profileStoreStub) UpdateSubscription(_ context.Context, id string, patch domain.SubscriptionPatch) (bool, error) {
	s.updateCalls++
	s.lastID = id
	s.lastPatch = patch
	return s.applied, s.updateErr
}

type pendingStoreStub struct {
	upserts []*domain.PendingSubscription
	err     error
}

func (s *pendingStoreStub) Upsert(_ context.Context, p *domain.PendingSubscription) error {
	if s.err != nil {
		return s.err
	}
	s.upserts = append(s.upserts, p)
	return nil
}

type jobArchiverStub struct {
	activeIDs    []string
	archiveCalls int
	lastIDs      []string
}

func (s *jobArchiverStub) ActiveIDsByUser(_ context.Context, _ string) ([]string, error) {
	return s.activeIDs, nil
}

func (s *jobArchiverStub) ArchiveByIDs(_ context.Context, ids []string, _ time.Time) (int64, error) {
	s.archiveCalls++
	s.lastIDs = ids
	return int64(len(ids)), nil
}

type candidateArchiverStub struct {
	calls   int
	lastIDs []string
}

func (s *candidateArchiverStub) ArchiveByJobIDs(_ context.Context, jobIDs []string, _ time.Time) (int64, error) {
	s.calls++
	s.lastIDs = jobIDs
	return int64(len(jobIDs)), nil
}

type auditStub struct {
	webhookErr  error
	webhookLogs []*domain.WebhookLog
	usageLogs   []*domain.UsageLog
}

func (s *auditStub) LogWebhook(_ context.Context, l *domain.WebhookLog) error {
	if s.webhookErr != nil {
		return s.webhookErr
	}
	s.webhookLogs = append(s.webhookLogs, l)
	return nil
}

func (s *auditStub) LogUsage(_ context.Context, l *domain.UsageLog) error {
	s.usageLogs = append(s.usageLogs, l)
	return nil
}

type publisherStub struct {
	events []domain.ActivityEvent
	users  []string
}

func (s *publisherStub) Publish(userID string, e domain.ActivityEvent) {
	s.users = append(s.users, userID)
	s.events = append(s.events, e)
}

func newTestReconciler(profiles *profileStoreStub, pending *pendingStoreStub) (*Reconciler, *jobArchiverStub, *candidateArchiverStub, *auditStub) {
	jobs := &jobArchiverStub{}
	candidates := &candidateArchiverStub{}
	audit := &auditStub{}
	rec := NewReconciler("seller-1", profiles, pending, jobs, candidates, audit, &publisherStub{}, zap.NewNop())
	return rec, jobs, candidates, audit
}

func saleEvent(email string) gumroad.Event {
	return gumroad.Event{
		AlertType:        "sale",
		SellerID:         "seller-1",
		Email:            email,
		SaleID:           "sale-123",
		SubscriberID:     "sub-9",
		ProductPermalink: "recruiterops",
	}
}

func TestProcessRejectsMismatchedSeller(t *testing.T) {
	profiles := &profileStoreStub{}
	rec, _, _, audit := newTestReconciler(profiles, &pendingStoreStub{})

	ev := saleEvent("buyer@example.com")
	ev.SellerID = "someone-else"

	_, err := rec.Process(context.Background(), ev)
	require.ErrorIs(t, err, ErrSellerMismatch)

	// The event is still audit-logged before rejection.
	require.Len(t, audit.webhookLogs, 1)
	assert.Zero(t, profiles.updateCalls)
}

func TestProcessPingAcknowledgedWithoutSideEffects(t *testing.T) {
	profiles := &profileStoreStub{}
	pending := &pendingStoreStub{}
	rec, _, _, _ := newTestReconciler(profiles, pending)

	ev := saleEvent("")
	ev.SaleID = ""

	result, err := rec.Process(context.Background(), ev)
	require.NoError(t, err)
	assert.True(t, result.Ping)
	assert.Zero(t, profiles.updateCalls)
	assert.Empty(t, pending.upserts)
}

func TestProcessActivatesExistingProfile(t *testing.T) {
	profiles := &profileStoreStub{
		profile: &domain.Profile{ID: "user-1", Email: "buyer@example.com", Plan: "starter"},
		applied: true,
	}
	rec, _, _, audit := newTestReconciler(profiles, &pendingStoreStub{})

	result, err := rec.Process(context.Background(), saleEvent("buyer@example.com"))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusActive, result.Status)
	assert.Equal(t, "user-1", profiles.lastID)
	require.NotNil(t, profiles.lastPatch.Plan)
	assert.Equal(t, "pro", *profiles.lastPatch.Plan)
	assert.Equal(t, domain.StatusActive, profiles.lastPatch.Status)

	require.Len(t, audit.usageLogs, 1)
	assert.Equal(t, domain.ActionSubscriptionActivated, audit.usageLogs[0].Action)
}

func TestProcessCancellationKeepsPlan(t *testing.T) {
	profiles := &profileStoreStub{
		profile: &domain.Profile{ID: "user-1", Email: "buyer@example.com", Plan: "agency"},
		applied: true,
	}
	rec, _, _, _ := newTestReconciler(profiles, &pendingStoreStub{})

	ev := saleEvent("buyer@example.com")
	ev.AlertType = "cancellation"
	ev.Cancelled = true

	result, err := rec.Process(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelled, result.Status)
	// Plan must stay untouched so reactivation restores the prior tier.
	assert.Nil(t, profiles.lastPatch.Plan)
}

func TestProcessCancellationArchivesPipeline(t *testing.T) {
	profiles := &profileStoreStub{
		profile: &domain.Profile{ID: "user-1", Email: "buyer@example.com"},
		applied: true,
	}
	rec, jobs, candidates, audit := newTestReconciler(profiles, &pendingStoreStub{})
	jobs.activeIDs = []string{"job-a", "job-b"}

	ev := saleEvent("buyer@example.com")
	ev.AlertType = "refund"
	ev.Refunded = true

	result, err := rec.Process(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.JobsArchived)
	assert.Equal(t, []string{"job-a", "job-b"}, jobs.lastIDs)
	assert.Equal(t, 1, candidates.calls)
	assert.Equal(t, []string{"job-a", "job-b"}, candidates.lastIDs)

	require.Len(t, audit.usageLogs, 1)
	assert.Equal(t, domain.ActionSubscriptionCancelled, audit.usageLogs[0].Action)
	assert.Equal(t, int64(2), audit.usageLogs[0].Metadata["jobs_archived"])
}

func TestProcessCancellationWithNoJobsSkipsArchive(t *testing.T) {
	profiles := &profileStoreStub{
		profile: &domain.Profile{ID: "user-1", Email: "buyer@example.com"},
		applied: true,
	}
	rec, jobs, _, _ := newTestReconciler(profiles, &pendingStoreStub{})

	ev := saleEvent("buyer@example.com")
	ev.AlertType = "subscription_ended"

	result, err := rec.Process(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExpired, result.Status)
	assert.Zero(t, result.JobsArchived)
	assert.Zero(t, jobs.archiveCalls)
}

func TestProcessStaleEventSkipped(t *testing.T) {
	profiles := &profileStoreStub{
		profile: &domain.Profile{ID: "user-1", Email: "buyer@example.com"},
		applied: false, // a newer event already reconciled this row
	}
	rec, jobs, _, audit := newTestReconciler(profiles, &pendingStoreStub{})

	ev := saleEvent("buyer@example.com")
	ev.AlertType = "cancellation"
	ev.Cancelled = true
	ev.OccurredAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	result, err := rec.Process(context.Background(), ev)
	require.NoError(t, err)

	assert.True(t, result.Stale)
	// A skipped update must not cascade or record history.
	assert.Zero(t, jobs.archiveCalls)
	assert.Empty(t, audit.usageLogs)
}

func TestProcessStagesPendingForUnknownEmail(t *testing.T) {
	pending := &pendingStoreStub{}
	rec, _, _, _ := newTestReconciler(&profileStoreStub{}, pending)

	result, err := rec.Process(context.Background(), saleEvent("new@example.com"))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusActive, result.Status)
	require.Len(t, pending.upserts, 1)
	staged := pending.upserts[0]
	assert.Equal(t, "new@example.com", staged.Email)
	assert.Equal(t, "pro", staged.Plan)
	assert.Equal(t, "sale-123", staged.SaleID)
	require.NotNil(t, staged.SubscriberID)
	assert.Equal(t, "sub-9", *staged.SubscriberID)
}

// pendingLedgerStub keys records by email the way the real table does, so
// overwrite semantics are observable.
type pendingLedgerStub struct {
	records map[string]*domain.PendingSubscription
}

func (s *pendingLedgerStub) Upsert(_ context.Context, p *domain.PendingSubscription) error {
	if s.records == nil {
		s.records = make(map[string]*domain.PendingSubscription)
	}
	s.records[p.Email] = p
	return nil
}

func TestProcessSecondSaleOverwritesPending(t *testing.T) {
	ledger := &pendingLedgerStub{}
	rec := NewReconciler("seller-1", &profileStoreStub{}, ledger, &jobArchiverStub{}, &candidateArchiverStub{}, &auditStub{}, nil, zap.NewNop())

	first := saleEvent("new@example.com")
	first.SaleID = "sale-1"
	first.ProductPermalink = "recruiterops-solo"
	_, err := rec.Process(context.Background(), first)
	require.NoError(t, err)

	second := saleEvent("new@example.com")
	second.SaleID = "sale-2"
	second.ProductPermalink = "recruiterops-agency"
	_, err = rec.Process(context.Background(), second)
	require.NoError(t, err)

	require.Len(t, ledger.records, 1)
	staged := ledger.records["new@example.com"]
	require.NotNil(t, staged)
	assert.Equal(t, "agency", staged.Plan)
	assert.Equal(t, "sale-2", staged.SaleID)
}

func TestProcessRefundForUnknownEmailIsNoOp(t *testing.T) {
	pending := &pendingStoreStub{}
	rec, _, _, _ := newTestReconciler(&profileStoreStub{}, pending)

	ev := saleEvent("stranger@example.com")
	ev.AlertType = "refund"
	ev.Refunded = true

	result, err := rec.Process(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, result.Status)
	assert.Empty(t, pending.upserts)
}

func TestProcessAuditFailureDoesNotBlockReconciliation(t *testing.T) {
	profiles := &profileStoreStub{
		profile: &domain.Profile{ID: "user-1", Email: "buyer@example.com"},
		applied: true,
	}
	jobs := &jobArchiverStub{}
	candidates := &candidateArchiverStub{}
	audit := &auditStub{webhookErr: errors.New("log table gone")}
	rec := NewReconciler("seller-1", profiles, &pendingStoreStub{}, jobs, candidates, audit, nil, zap.NewNop())

	result, err := rec.Process(context.Background(), saleEvent("buyer@example.com"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, result.Status)
	assert.Equal(t, 1, profiles.updateCalls)
}

func TestProcessStoreErrorPropagates(t *testing.T) {
	profiles := &profileStoreStub{findErr: errors.New("connection reset")}
	rec, _, _, _ := newTestReconciler(profiles, &pendingStoreStub{})

	_, err := rec.Process(context.Background(), saleEvent("buyer@example.com"))
	require.Error(t, err)
}

func TestProcessLateRetryAfterNewerEvent(t *testing.T) {
	// A sale applies, a newer cancellation advances the ordering cursor, then
	// the sale is redelivered. The late retry must not resurrect the account.
	profiles := &profileStoreStub{
		profile: &domain.Profile{ID: "user-1", Email: "buyer@example.com"},
		applied: true,
	}
	rec, _, _, audit := newTestReconciler(profiles, &pendingStoreStub{})

	ev := saleEvent("buyer@example.com")
	ev.OccurredAt = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	_, err := rec.Process(context.Background(), ev)
	require.NoError(t, err)

	profiles.applied = false // cursor moved past this event
	result, err := rec.Process(context.Background(), ev)
	require.NoError(t, err)
	assert.True(t, result.Stale)
	require.Len(t, audit.usageLogs, 1)
}
