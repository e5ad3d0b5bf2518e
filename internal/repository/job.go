package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/recruiterops/backend/internal/domain"
)

const jobColumns = `id, user_id, title, client, salary, location, status,
	description, contact_name, contact_email, archived_at, created_at`

// JobRepository handles database operations for job orders.
type JobRepository struct {
	db *pgxpool.Pool
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(db *pgxpool.Pool) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new job order.
func (r *JobRepository) Create(ctx context.Context, j *domain.Job) error {
	query := `
		INSERT INTO jobs (id, user_id, title, client, salary, location, status, description, contact_name, contact_email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		j.ID, j.UserID, j.Title, j.Client, j.Salary, j.Location,
		j.Status, j.Description, j.ContactName, j.ContactEmail, j.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// FindByID returns a job owned by the given user, or nil if none.
func (r *JobRepository) FindByID(ctx context.Context, id, userID string) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1 AND user_id = $2`
	row := r.db.QueryRow(ctx, query, id, userID)

	var j domain.Job
	err := row.Scan(
		&j.ID, &j.UserID, &j.Title, &j.Client, &j.Salary, &j.Location,
		&j.Status, &j.Description, &j.ContactName, &j.ContactEmail, &j.ArchivedAt, &j.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find job: %w", err)
	}
	return &j, nil
}

// ListByUser returns a user's jobs, optionally including archived ones.
func (r *JobRepository) ListByUser(ctx context.Context, userID string, includeArchived bool) ([]*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE user_id = $1`
	if !includeArchived {
		query += ` AND archived_at IS NULL`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*domain.Job
	for rows.Next() {
		var j domain.Job
		if err := rows.Scan(
			&j.ID, &j.UserID, &j.Title, &j.Client, &j.Salary, &j.Location,
			&j.Status, &j.Description, &j.ContactName, &j.ContactEmail, &j.ArchivedAt, &j.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, &j)
	}
	return jobs, nil
}

// Update applies a partial update to a job owned by the given user.
func (r *JobRepository) Update(ctx context.Context, id, userID string, req *domain.UpdateJobRequest) error {
	query := `
		UPDATE jobs
		SET title = COALESCE($3, title),
		    client = COALESCE($4, client),
		    salary = COALESCE($5, salary),
		    location = COALESCE($6, location),
		    status = COALESCE($7, status),
		    description = COALESCE($8, description),
		    contact_name = COALESCE($9, contact_name),
		    contact_email = COALESCE($10, contact_email)
		WHERE id = $1 AND user_id = $2
	`
	_, err := r.db.Exec(ctx, query,
		id, userID, req.Title, req.Client, req.Salary, req.Location,
		req.Status, req.Description, req.ContactName, req.ContactEmail,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	return nil
}

// CountActiveByUser counts a user's non-archived jobs.
func (r *JobRepository) CountActiveByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM jobs WHERE user_id = $1 AND archived_at IS NULL`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active jobs: %w", err)
	}
	return count, nil
}

// ActiveIDsByUser returns the IDs of a user's non-archived jobs.
func (r *JobRepository) ActiveIDsByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id FROM jobs WHERE user_id = $1 AND archived_at IS NULL`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list active job ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan job id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ArchiveByIDs marks the given jobs archived. Only rows not already archived
// are touched, so re-running the cascade on a retry cannot double-count.
func (r *JobRepository) ArchiveByIDs(ctx context.Context, ids []string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE jobs SET archived_at = $2 WHERE id = ANY($1) AND archived_at IS NULL`,
		ids, at,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to archive jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Delete removes a job owned by the given user.
func (r *JobRepository) Delete(ctx context.Context, id, userID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}
