package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/recruiterops/backend/internal/domain"
)

// PendingRepository handles the staging table of purchases awaiting signup.
type PendingRepository struct {
	db *pgxpool.Pool
}

// NewPendingRepository creates a new PendingRepository.
func NewPendingRepository(db *pgxpool.Pool) *PendingRepository {
	return &PendingRepository{db: db}
}

// Upsert stores a pending purchase keyed by email. A later sale for the same
// email overwrites the earlier one — last sale wins.
func (r *PendingRepository) Upsert(ctx context.Context, p *domain.PendingSubscription) error {
	query := `
		INSERT INTO pending_subscriptions (email, plan, gumroad_sale_id, gumroad_subscriber_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (email) DO UPDATE
		SET plan = EXCLUDED.plan,
		    gumroad_sale_id = EXCLUDED.gumroad_sale_id,
		    gumroad_subscriber_id = EXCLUDED.gumroad_subscriber_id,
		    updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query,
		strings.ToLower(p.Email), p.Plan, p.SaleID, p.SubscriberID,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert pending subscription: %w", err)
	}
	return nil
}

// FindByEmail returns the pending purchase for an email, or nil if none.
func (r *PendingRepository) FindByEmail(ctx context.Context, email string) (*domain.PendingSubscription, error) {
	query := `
		SELECT email, plan, gumroad_sale_id, gumroad_subscriber_id, created_at, updated_at
		FROM pending_subscriptions WHERE email = $1
	`
	row := r.db.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email)))

	var p domain.PendingSubscription
	err := row.Scan(&p.Email, &p.Plan, &p.SaleID, &p.SubscriberID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find pending subscription: %w", err)
	}
	return &p, nil
}

// Delete removes the pending purchase for an email.
func (r *PendingRepository) Delete(ctx context.Context, email string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM pending_subscriptions WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	)
	if err != nil {
		return fmt.Errorf("failed to delete pending subscription: %w", err)
	}
	return nil
}
