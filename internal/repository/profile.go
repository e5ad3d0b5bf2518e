package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/recruiterops/backend/internal/domain"
)

const profileColumns = `id, email, password, full_name, plan, subscription_status,
	trial_ends_at, gumroad_sale_id, gumroad_subscriber_id, webhook_outreach,
	webhook_calendar, last_event_at, created_at, updated_at`

// ProfileRepository handles database operations for entitlement records.
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts a new profile.
func (r *ProfileRepository) Create(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (id, email, password, full_name, plan, subscription_status, trial_ends_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, strings.ToLower(p.Email), p.Password, p.FullName,
		p.Plan, p.SubscriptionStatus, p.TrialEndsAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// FindByEmail returns a profile by case-normalized email, or nil if none.
func (r *ProfileRepository) FindByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

// FindByID returns a profile by ID, or nil if none.
func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// Exists checks if a profile with the given email already exists.
func (r *ProfileRepository) Exists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM profiles WHERE email = $1)`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check profile existence: %w", err)
	}
	return exists, nil
}

// UpdateSubscription applies a field-scoped patch to the subscription-owned
// columns only. The plan column is left untouched when patch.Plan is nil.
// The patch is skipped (returning false) when the row already carries a newer
// last_event_at, so a retried stale delivery cannot clobber later state.
func (r *ProfileRepository) UpdateSubscription(ctx context.Context, id string, patch domain.SubscriptionPatch) (bool, error) {
	query := `
		UPDATE profiles
		SET subscription_status = $2,
		    plan = COALESCE($3, plan),
		    gumroad_sale_id = COALESCE($4, gumroad_sale_id),
		    gumroad_subscriber_id = COALESCE($5, gumroad_subscriber_id),
		    last_event_at = $6,
		    updated_at = NOW()
		WHERE id = $1
		  AND (last_event_at IS NULL OR last_event_at <= $6)
	`
	tag, err := r.db.Exec(ctx, query,
		id, patch.Status, patch.Plan, patch.SaleID, patch.SubscriberID, patch.EventAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update subscription fields: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateDetails applies a field-scoped patch to the user-owned columns only.
// Subscription columns are never written here.
func (r *ProfileRepository) UpdateDetails(ctx context.Context, id string, req *domain.UpdateProfileRequest) error {
	query := `
		UPDATE profiles
		SET full_name = COALESCE($2, full_name),
		    webhook_outreach = COALESCE($3, webhook_outreach),
		    webhook_calendar = COALESCE($4, webhook_calendar),
		    updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id, req.FullName, req.WebhookOutreach, req.WebhookCalendar)
	if err != nil {
		return fmt.Errorf("failed to update profile details: %w", err)
	}
	return nil
}

func (r *ProfileRepository) scanOne(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(
		&p.ID, &p.Email, &p.Password, &p.FullName, &p.Plan, &p.SubscriptionStatus,
		&p.TrialEndsAt, &p.GumroadSaleID, &p.GumroadSubscriberID, &p.WebhookOutreach,
		&p.WebhookCalendar, &p.LastEventAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return &p, nil
}
