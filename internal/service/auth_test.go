package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/recruiterops/backend/internal/domain"
)

type accountStoreStub struct {
	byEmail map[string]*domain.Profile
	byID    map[string]*domain.Profile
	created []*domain.Profile
}

func newAccountStoreStub() *accountStoreStub {
	return &accountStoreStub{
		byEmail: make(map[string]*domain.Profile),
		byID:    make(map[string]*domain.Profile),
	}
}

func (s *accountStoreStub) Create(_ context.Context, p *domain.Profile) error {
	s.byEmail[p.Email] = p
	s.byID[p.ID] = p
	s.created = append(s.created, p)
	return nil
}

func (s *accountStoreStub) Exists(_ context.Context, email string) (bool, error) {
	_, ok := s.byEmail[email]
	return ok, nil
}

func (s *accountStoreStub) FindByEmail(_ context.Context, email string) (*domain.Profile, error) {
	return s.byEmail[email], nil
}

func (s *accountStoreStub) FindByID(_ context.Context, id string) (*domain.Profile, error) {
	return s.byID[id], nil
}

func newAuthFixture(claim *ClaimService) (*AuthService, *accountStoreStub) {
	accounts := newAccountStoreStub()
	svc := NewAuthService("test-secret", 14, accounts, claim, zap.NewNop())
	return svc, accounts
}

func TestSignupStartsTrial(t *testing.T) {
	svc, accounts := newAuthFixture(nil)

	resp, err := svc.Signup(context.Background(), &domain.SignupRequest{
		Email:    "New.User@Example.com",
		Password: "hunter22",
		FullName: "New User",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	require.Len(t, accounts.created, 1)
	created := accounts.created[0]
	assert.Equal(t, "new.user@example.com", created.Email)
	assert.Equal(t, "starter", created.Plan)
	assert.Equal(t, domain.StatusTrialing, created.SubscriptionStatus)
	require.NotNil(t, created.TrialEndsAt)
	assert.NotEqual(t, "hunter22", created.Password)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture(nil)

	_, err := svc.Signup(context.Background(), &domain.SignupRequest{
		Email: "user@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), &domain.SignupRequest{
		Email: "User@Example.com", Password: "other-pass",
	})
	require.Error(t, err)
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.Code)
}

func TestSignupValidatesInput(t *testing.T) {
	svc, _ := newAuthFixture(nil)

	_, err := svc.Signup(context.Background(), &domain.SignupRequest{
		Email: "not-an-email", Password: "hunter22",
	})
	require.Error(t, err)

	_, err = svc.Signup(context.Background(), &domain.SignupRequest{
		Email: "user@example.com", Password: "short",
	})
	require.Error(t, err)
}

func TestSignupClaimsPendingPurchase(t *testing.T) {
	pending := &pendingClaimStub{records: map[string]*domain.PendingSubscription{
		"buyer@example.com": {Email: "buyer@example.com", Plan: "pro", SaleID: "sale-1"},
	}}
	profiles := &profileStoreStub{applied: true}
	claim := NewClaimService(profiles, pending, &auditStub{}, nil, zap.NewNop())
	svc, _ := newAuthFixture(claim)

	resp, err := svc.Signup(context.Background(), &domain.SignupRequest{
		Email: "buyer@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	assert.Equal(t, "pro", resp.Profile.Plan)
	assert.Equal(t, domain.StatusActive, resp.Profile.SubscriptionStatus)
	assert.Empty(t, pending.records)
}

func TestSignupSurvivesClaimFailure(t *testing.T) {
	pending := &pendingClaimStub{findErr: assert.AnError}
	claim := NewClaimService(&profileStoreStub{}, pending, &auditStub{}, nil, zap.NewNop())
	svc, accounts := newAuthFixture(claim)

	resp, err := svc.Signup(context.Background(), &domain.SignupRequest{
		Email: "buyer@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	// The account lands on the trial; the confirm endpoint retries the claim.
	assert.Equal(t, domain.StatusTrialing, resp.Profile.SubscriptionStatus)
	assert.Len(t, accounts.created, 1)
}

func TestLoginAndVerifyToken(t *testing.T) {
	svc, accounts := newAuthFixture(nil)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	accounts.byEmail["user@example.com"] = &domain.Profile{
		ID:       "user-1",
		Email:    "user@example.com",
		Password: string(hash),
	}

	resp, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email: "user@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	claims, err := svc.VerifyToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Sub)
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	svc, accounts := newAuthFixture(nil)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	accounts.byEmail["user@example.com"] = &domain.Profile{
		ID: "user-1", Email: "user@example.com", Password: string(hash),
	}

	_, err = svc.Login(context.Background(), &domain.LoginRequest{
		Email: "user@example.com", Password: "wrong",
	})
	require.Error(t, err)
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 401, appErr.Code)
}

func TestLoginUnknownEmailIndistinguishable(t *testing.T) {
	svc, _ := newAuthFixture(nil)

	_, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email: "nobody@example.com", Password: "whatever",
	})
	require.Error(t, err)
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 401, appErr.Code)
}

func TestVerifyTokenRejectsTampering(t *testing.T) {
	svc, accounts := newAuthFixture(nil)
	other := NewAuthService("different-secret", 14, accounts, nil, zap.NewNop())

	resp, err := svc.Signup(context.Background(), &domain.SignupRequest{
		Email: "user@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	_, err = other.VerifyToken(resp.Token)
	require.Error(t, err)

	_, err = svc.VerifyToken(resp.Token + "x")
	require.Error(t, err)
}
