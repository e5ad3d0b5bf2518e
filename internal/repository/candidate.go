package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/recruiterops/backend/internal/domain"
)

const candidateColumns = `id, job_id, user_id, name, title, company, linkedin_url,
	email, phone, stage, notes, outreach_draft, last_activity_at, archived_at, created_at`

// CandidateRepository handles database operations for candidates.
type CandidateRepository struct {
	db *pgxpool.Pool
}

// NewCandidateRepository creates a new CandidateRepository.
func NewCandidateRepository(db *pgxpool.Pool) *CandidateRepository {
	return &CandidateRepository{db: db}
}

// Create inserts a new candidate.
func (r *CandidateRepository) Create(ctx context.Context, c *domain.Candidate) error {
	query := `
		INSERT INTO candidates (id, job_id, user_id, name, title, company, linkedin_url, email, phone, stage, notes, last_activity_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.Exec(ctx, query,
		c.ID, c.JobID, c.UserID, c.Name, c.Title, c.Company, c.LinkedInURL,
		c.Email, c.Phone, c.Stage, c.Notes, c.LastActivityAt, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

// FindByID returns a candidate owned by the given user, or nil if none.
func (r *CandidateRepository) FindByID(ctx context.Context, id, userID string) (*domain.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id = $1 AND user_id = $2`
	row := r.db.QueryRow(ctx, query, id, userID)

	c, err := scanCandidate(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find candidate: %w", err)
	}
	return c, nil
}

// ListByUser returns a user's non-archived candidates, newest activity first.
func (r *CandidateRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Candidate, error) {
	query := `SELECT ` + candidateColumns + `
		FROM candidates WHERE user_id = $1 AND archived_at IS NULL
		ORDER BY last_activity_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*domain.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// ListByJob returns the non-archived candidates attached to a job.
func (r *CandidateRepository) ListByJob(ctx context.Context, jobID, userID string) ([]*domain.Candidate, error) {
	query := `SELECT ` + candidateColumns + `
		FROM candidates WHERE job_id = $1 AND user_id = $2 AND archived_at IS NULL
		ORDER BY last_activity_at DESC`

	rows, err := r.db.Query(ctx, query, jobID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list job candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*domain.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// Update applies a partial update and touches last_activity_at.
func (r *CandidateRepository) Update(ctx context.Context, id, userID string, req *domain.UpdateCandidateRequest) error {
	query := `
		UPDATE candidates
		SET name = COALESCE($3, name),
		    title = COALESCE($4, title),
		    company = COALESCE($5, company),
		    linkedin_url = COALESCE($6, linkedin_url),
		    email = COALESCE($7, email),
		    phone = COALESCE($8, phone),
		    stage = COALESCE($9, stage),
		    notes = COALESCE($10, notes),
		    last_activity_at = NOW()
		WHERE id = $1 AND user_id = $2
	`
	_, err := r.db.Exec(ctx, query,
		id, userID, req.Name, req.Title, req.Company, req.LinkedInURL,
		req.Email, req.Phone, req.Stage, req.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to update candidate: %w", err)
	}
	return nil
}

// SetOutreachDraft stores a generated outreach draft on a candidate.
func (r *CandidateRepository) SetOutreachDraft(ctx context.Context, id, userID, draft string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE candidates SET outreach_draft = $3, last_activity_at = NOW() WHERE id = $1 AND user_id = $2`,
		id, userID, draft,
	)
	if err != nil {
		return fmt.Errorf("failed to set outreach draft: %w", err)
	}
	return nil
}

// ArchiveByJobIDs marks all candidates attached to the given jobs archived.
// Already-archived rows are skipped, keeping the cascade idempotent.
func (r *CandidateRepository) ArchiveByJobIDs(ctx context.Context, jobIDs []string, at time.Time) (int64, error) {
	if len(jobIDs) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE candidates SET archived_at = $2 WHERE job_id = ANY($1) AND archived_at IS NULL`,
		jobIDs, at,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to archive candidates: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Delete removes a candidate owned by the given user.
func (r *CandidateRepository) Delete(ctx context.Context, id, userID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM candidates WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	return nil
}

func scanCandidate(row pgx.Row) (*domain.Candidate, error) {
	var c domain.Candidate
	err := row.Scan(
		&c.ID, &c.JobID, &c.UserID, &c.Name, &c.Title, &c.Company, &c.LinkedInURL,
		&c.Email, &c.Phone, &c.Stage, &c.Notes, &c.OutreachDraft,
		&c.LastActivityAt, &c.ArchivedAt, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
