package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/recruiterops/backend/internal/domain"
)

// AuditRepository persists webhook and usage logs.
type AuditRepository struct {
	db *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

// LogWebhook records a raw provider event. Callers treat failures as
// non-fatal: the audit trail must never block reconciliation.
func (r *AuditRepository) LogWebhook(ctx context.Context, l *domain.WebhookLog) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO webhook_logs (alert_type, email, sale_id, raw_payload) VALUES ($1, $2, $3, $4)`,
		l.AlertType, l.Email, l.SaleID, l.RawPayload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert webhook log: %w", err)
	}
	return nil
}

// LogUsage records a business-level event against an account.
func (r *AuditRepository) LogUsage(ctx context.Context, l *domain.UsageLog) error {
	metadata, err := json.Marshal(l.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal usage metadata: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO usage_logs (user_id, action, metadata) VALUES ($1, $2, $3)`,
		l.UserID, l.Action, metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage log: %w", err)
	}
	return nil
}

// ListUsageByUser returns a user's most recent usage-log entries.
func (r *AuditRepository) ListUsageByUser(ctx context.Context, userID string, limit int) ([]*domain.UsageLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, action, metadata, created_at
		 FROM usage_logs WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage logs: %w", err)
	}
	defer rows.Close()

	var logs []*domain.UsageLog
	for rows.Next() {
		var l domain.UsageLog
		var metadata []byte
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &metadata, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan usage log: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &l.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal usage metadata: %w", err)
			}
		}
		logs = append(logs, &l)
	}
	return logs, nil
}
