package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/recruiterops/backend/internal/domain"
)

// AccountStore is the profile surface the auth service needs.
type AccountStore interface {
	Create(ctx context.Context, p *domain.Profile) error
	Exists(ctx context.Context, email string) (bool, error)
	FindByEmail(ctx context.Context, email string) (*domain.Profile, error)
	FindByID(ctx context.Context, id string) (*domain.Profile, error)
}

// AuthService handles registration, login and JWT verification. Registration
// ends with a synchronous claim so a buyer who paid before signing up is
// activated immediately.
type AuthService struct {
	jwtSecret string
	trialDays int
	profiles  AccountStore
	claim     *ClaimService
	validate  *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(jwtSecret string, trialDays int, profiles AccountStore, claim *ClaimService, logger *zap.Logger) *AuthService {
	return &AuthService{
		jwtSecret: jwtSecret,
		trialDays: trialDays,
		profiles:  profiles,
		claim:     claim,
		validate:  validator.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// Signup registers a new account on the starter trial, then claims any
// pending purchase for the email. A claim failure does not fail the signup:
// the confirm endpoint can re-run it.
func (s *AuthService) Signup(ctx context.Context, req *domain.SignupRequest) (*domain.LoginResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.profiles.Exists(ctx, email)
	if err != nil {
		return nil, domain.ErrInternal("failed to check account", err)
	}
	if exists {
		return nil, domain.ErrBadRequest("email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.ErrInternal("failed to hash password", err)
	}

	now := s.now()
	trialEnds := now.AddDate(0, 0, s.trialDays)
	profile := &domain.Profile{
		ID:                 domain.NewProfileID(),
		Email:              email,
		Password:           string(hashedPassword),
		Plan:               "starter",
		SubscriptionStatus: domain.StatusTrialing,
		TrialEndsAt:        &trialEnds,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if req.FullName != "" {
		profile.FullName = &req.FullName
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, domain.ErrInternal("failed to create account", err)
	}

	if s.claim != nil {
		if result, err := s.claim.Claim(ctx, profile.ID, email); err != nil {
			s.logger.Warn("post-signup claim failed", zap.String("email", email), zap.Error(err))
		} else if result.Activated {
			profile.Plan = result.Plan
			profile.SubscriptionStatus = domain.StatusActive
		}
	}

	token, err := s.signToken(profile)
	if err != nil {
		return nil, err
	}
	return &domain.LoginResponse{Token: token, Profile: profile}, nil
}

// Login validates credentials and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	profile, err := s.profiles.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, domain.ErrInternal("failed to find account", err)
	}
	if profile == nil {
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(req.Password)); err != nil {
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	token, err := s.signToken(profile)
	if err != nil {
		return nil, err
	}
	return &domain.LoginResponse{Token: token, Profile: profile}, nil
}

// GetProfile returns the profile for an authenticated user.
func (s *AuthService) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, domain.ErrInternal("failed to find account", err)
	}
	if profile == nil {
		return nil, domain.ErrNotFound("account not found")
	}
	return profile, nil
}

func (s *AuthService) signToken(profile *domain.Profile) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   profile.ID,
		"email": profile.Email,
		"exp":   now.Add(7 * 24 * time.Hour).Unix(),
		"iat":   now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", domain.ErrInternal("failed to sign token", err)
	}
	return signed, nil
}

// VerifyToken validates a JWT token and returns the claims.
func (s *AuthService) VerifyToken(tokenStr string) (*domain.JWTClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, domain.ErrUnauthorized("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrUnauthorized("invalid token claims")
	}

	return &domain.JWTClaims{
		Sub:   getClaimString(claims, "sub"),
		Email: getClaimString(claims, "email"),
	}, nil
}

func getClaimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
