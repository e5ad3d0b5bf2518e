package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/recruiterops/backend/internal/domain"
)

// ProfileFinder looks up a profile by account id.
type ProfileFinder interface {
	FindByID(ctx context.Context, id string) (*domain.Profile, error)
}

// JobStore is the job-order surface of the pipeline.
type JobStore interface {
	Create(ctx context.Context, j *domain.Job) error
	FindByID(ctx context.Context, id, userID string) (*domain.Job, error)
	ListByUser(ctx context.Context, userID string, includeArchived bool) ([]*domain.Job, error)
	Update(ctx context.Context, id, userID string, req *domain.UpdateJobRequest) error
	CountActiveByUser(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, id, userID string) error
}

// CandidateStore is the candidate surface of the pipeline.
type CandidateStore interface {
	Create(ctx context.Context, c *domain.Candidate) error
	FindByID(ctx context.Context, id, userID string) (*domain.Candidate, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Candidate, error)
	ListByJob(ctx context.Context, jobID, userID string) ([]*domain.Candidate, error)
	Update(ctx context.Context, id, userID string, req *domain.UpdateCandidateRequest) error
	Delete(ctx context.Context, id, userID string) error
}

// PipelineService handles job orders and candidates. Plan limits are enforced
// here, server-side — the client gate only hides buttons.
type PipelineService struct {
	jobs       JobStore
	candidates CandidateStore
	profiles   ProfileFinder
	audit      AuditStore
	publisher  ActivityPublisher
	validate   *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewPipelineService creates a new PipelineService. publisher may be nil.
func NewPipelineService(
	jobs JobStore,
	candidates CandidateStore,
	profiles ProfileFinder,
	audit AuditStore,
	publisher ActivityPublisher,
	logger *zap.Logger,
) *PipelineService {
	return &PipelineService{
		jobs:       jobs,
		candidates: candidates,
		profiles:   profiles,
		audit:      audit,
		publisher:  publisher,
		validate:   validator.New(),
		logger:     logger,
		now:        time.Now,
	}
}

// SetPublisher installs the activity publisher after construction, once the
// live feed hub exists.
func (s *PipelineService) SetPublisher(p ActivityPublisher) {
	s.publisher = p
}

// CreateJob creates a job order, enforcing the plan's active-job limit.
func (s *PipelineService) CreateJob(ctx context.Context, userID string, req *domain.CreateJobRequest) (*domain.Job, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		return nil, domain.ErrInternal("failed to load profile", err)
	}
	if profile == nil {
		return nil, domain.ErrNotFound("account not found")
	}
	if !IsActive(profile, s.now()) {
		return nil, domain.ErrForbidden("subscription inactive")
	}

	count, err := s.jobs.CountActiveByUser(ctx, userID)
	if err != nil {
		return nil, domain.ErrInternal("failed to count jobs", err)
	}
	if limit := domain.GetPlan(profile.Plan).JobLimit; count >= limit {
		return nil, domain.ErrForbidden("active job limit reached for plan")
	}

	job := &domain.Job{
		ID:           domain.NewJobID(),
		UserID:       userID,
		Title:        req.Title,
		Client:       req.Client,
		Salary:       optional(req.Salary),
		Location:     optional(req.Location),
		Status:       domain.JobActive,
		Description:  optional(req.Description),
		ContactName:  optional(req.ContactName),
		ContactEmail: optional(req.ContactEmail),
		CreatedAt:    s.now(),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, domain.ErrInternal("failed to create job", err)
	}
	return job, nil
}

// ListJobs returns the user's jobs.
func (s *PipelineService) ListJobs(ctx context.Context, userID string, includeArchived bool) ([]*domain.Job, error) {
	jobs, err := s.jobs.ListByUser(ctx, userID, includeArchived)
	if err != nil {
		return nil, domain.ErrInternal("failed to list jobs", err)
	}
	return jobs, nil
}

// GetJob returns one job owned by the user.
func (s *PipelineService) GetJob(ctx context.Context, id, userID string) (*domain.Job, error) {
	job, err := s.jobs.FindByID(ctx, id, userID)
	if err != nil {
		return nil, domain.ErrInternal("failed to find job", err)
	}
	if job == nil {
		return nil, domain.ErrNotFound("job not found")
	}
	return job, nil
}

// UpdateJob applies a partial update to a job.
func (s *PipelineService) UpdateJob(ctx context.Context, id, userID string, req *domain.UpdateJobRequest) (*domain.Job, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if _, err := s.GetJob(ctx, id, userID); err != nil {
		return nil, err
	}
	if err := s.jobs.Update(ctx, id, userID, req); err != nil {
		return nil, domain.ErrInternal("failed to update job", err)
	}
	return s.GetJob(ctx, id, userID)
}

// DeleteJob removes a job.
func (s *PipelineService) DeleteJob(ctx context.Context, id, userID string) error {
	if _, err := s.GetJob(ctx, id, userID); err != nil {
		return err
	}
	if err := s.jobs.Delete(ctx, id, userID); err != nil {
		return domain.ErrInternal("failed to delete job", err)
	}
	return nil
}

// CreateCandidate attaches a candidate to one of the user's jobs.
func (s *PipelineService) CreateCandidate(ctx context.Context, userID string, req *domain.CreateCandidateRequest) (*domain.Candidate, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	job, err := s.jobs.FindByID(ctx, req.JobID, userID)
	if err != nil {
		return nil, domain.ErrInternal("failed to find job", err)
	}
	if job == nil {
		return nil, domain.ErrNotFound("job not found")
	}
	if job.ArchivedAt != nil {
		return nil, domain.ErrBadRequest("cannot add candidates to an archived job")
	}

	now := s.now()
	candidate := &domain.Candidate{
		ID:             domain.NewCandidateID(),
		JobID:          req.JobID,
		UserID:         userID,
		Name:           req.Name,
		Title:          optional(req.Title),
		Company:        optional(req.Company),
		LinkedInURL:    optional(req.LinkedInURL),
		Email:          optional(req.Email),
		Phone:          optional(req.Phone),
		Stage:          domain.StageSourced,
		Notes:          optional(req.Notes),
		LastActivityAt: now,
		CreatedAt:      now,
	}
	if err := s.candidates.Create(ctx, candidate); err != nil {
		return nil, domain.ErrInternal("failed to create candidate", err)
	}
	return candidate, nil
}

// ListCandidates returns the user's candidates, newest activity first.
func (s *PipelineService) ListCandidates(ctx context.Context, userID string) ([]*domain.Candidate, error) {
	candidates, err := s.candidates.ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.ErrInternal("failed to list candidates", err)
	}
	return candidates, nil
}

// ListJobCandidates returns the candidates attached to one job.
func (s *PipelineService) ListJobCandidates(ctx context.Context, jobID, userID string) ([]*domain.Candidate, error) {
	candidates, err := s.candidates.ListByJob(ctx, jobID, userID)
	if err != nil {
		return nil, domain.ErrInternal("failed to list candidates", err)
	}
	return candidates, nil
}

// UpdateCandidate applies a partial update (stage moves touch activity).
// Moving a candidate to placed records a placement on the activity feed.
func (s *PipelineService) UpdateCandidate(ctx context.Context, id, userID string, req *domain.UpdateCandidateRequest) (*domain.Candidate, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	existing, err := s.candidates.FindByID(ctx, id, userID)
	if err != nil {
		return nil, domain.ErrInternal("failed to find candidate", err)
	}
	if existing == nil {
		return nil, domain.ErrNotFound("candidate not found")
	}
	// The store may hand back a pointer it keeps mutating; snapshot the stage
	// before the write or the transition check compares post-update state.
	wasPlaced := existing.Stage == domain.StagePlaced

	if err := s.candidates.Update(ctx, id, userID, req); err != nil {
		return nil, domain.ErrInternal("failed to update candidate", err)
	}

	if req.Stage != nil && *req.Stage == domain.StagePlaced && !wasPlaced {
		s.recordPlacement(ctx, userID, existing)
	}

	updated, err := s.candidates.FindByID(ctx, id, userID)
	if err != nil {
		return nil, domain.ErrInternal("failed to reload candidate", err)
	}
	return updated, nil
}

// DeleteCandidate removes a candidate.
func (s *PipelineService) DeleteCandidate(ctx context.Context, id, userID string) error {
	existing, err := s.candidates.FindByID(ctx, id, userID)
	if err != nil {
		return domain.ErrInternal("failed to find candidate", err)
	}
	if existing == nil {
		return domain.ErrNotFound("candidate not found")
	}
	if err := s.candidates.Delete(ctx, id, userID); err != nil {
		return domain.ErrInternal("failed to delete candidate", err)
	}
	return nil
}

// Stats builds the dashboard summary for a user.
func (s *PipelineService) Stats(ctx context.Context, userID string) (*domain.PipelineStats, error) {
	jobs, err := s.jobs.ListByUser(ctx, userID, false)
	if err != nil {
		return nil, domain.ErrInternal("failed to list jobs", err)
	}
	candidates, err := s.candidates.ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.ErrInternal("failed to list candidates", err)
	}

	stats := &domain.PipelineStats{TotalJobs: len(jobs)}
	stalledBefore := s.now().Add(-48 * time.Hour)
	for _, c := range candidates {
		switch c.Stage {
		case domain.StagePlaced:
			stats.Placements++
		case domain.StageRejected:
			// terminal, not active
		default:
			stats.ActiveCandidates++
			if c.LastActivityAt.Before(stalledBefore) {
				stats.StalledItems++
			}
		}
	}
	return stats, nil
}

func (s *PipelineService) recordPlacement(ctx context.Context, userID string, c *domain.Candidate) {
	metadata := map[string]any{"candidate": c.Name, "job_id": c.JobID}
	if err := s.audit.LogUsage(ctx, &domain.UsageLog{
		UserID:   userID,
		Action:   domain.ActionCandidatePlaced,
		Metadata: metadata,
	}); err != nil {
		s.logger.Warn("placement usage log failed", zap.Error(err))
	}
	if s.publisher != nil {
		s.publisher.Publish(userID, domain.ActivityEvent{
			Action:   domain.ActionCandidatePlaced,
			Metadata: metadata,
			At:       s.now(),
		})
	}
}
