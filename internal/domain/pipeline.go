package domain

import (
	"time"

	"github.com/google/uuid"
)

// Job statuses.
const (
	JobActive = "active"
	JobPaused = "paused"
	JobFilled = "filled"
)

// Candidate pipeline stages, in funnel order.
const (
	StageSourced      = "sourced"
	StageContacted    = "contacted"
	StageResponded    = "responded"
	StageScreened     = "screened"
	StageInterviewing = "interviewing"
	StagePresented    = "presented"
	StagePlaced       = "placed"
	StageRejected     = "rejected"
)

// CandidateStages lists all valid stages.
func CandidateStages() []string {
	return []string{
		StageSourced, StageContacted, StageResponded, StageScreened,
		StageInterviewing, StagePresented, StagePlaced, StageRejected,
	}
}

// Job is a client job order owned by a recruiter.
type Job struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	Title        string     `json:"title"`
	Client       string     `json:"client"`
	Salary       *string    `json:"salary,omitempty"`
	Location     *string    `json:"location,omitempty"`
	Status       string     `json:"status"`
	Description  *string    `json:"description,omitempty"`
	ContactName  *string    `json:"contactName,omitempty"`
	ContactEmail *string    `json:"contactEmail,omitempty"`
	ArchivedAt   *time.Time `json:"archivedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Candidate is a person attached to a job order.
type Candidate struct {
	ID             string     `json:"id"`
	JobID          string     `json:"jobId"`
	UserID         string     `json:"userId"`
	Name           string     `json:"name"`
	Title          *string    `json:"title,omitempty"`
	Company        *string    `json:"company,omitempty"`
	LinkedInURL    *string    `json:"linkedInUrl,omitempty"`
	Email          *string    `json:"email,omitempty"`
	Phone          *string    `json:"phone,omitempty"`
	Stage          string     `json:"stage"`
	Notes          *string    `json:"notes,omitempty"`
	OutreachDraft  *string    `json:"outreachDraft,omitempty"`
	LastActivityAt time.Time  `json:"lastActivityAt"`
	ArchivedAt     *time.Time `json:"archivedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// CreateJobRequest is the validated input for creating a job order.
type CreateJobRequest struct {
	Title        string `json:"title" validate:"required,min=1,max=200"`
	Client       string `json:"client" validate:"required,min=1,max=200"`
	Salary       string `json:"salary" validate:"omitempty,max=100"`
	Location     string `json:"location" validate:"omitempty,max=200"`
	Description  string `json:"description" validate:"omitempty,max=5000"`
	ContactName  string `json:"contactName" validate:"omitempty,max=120"`
	ContactEmail string `json:"contactEmail" validate:"omitempty,email"`
}

// UpdateJobRequest is the validated input for editing a job order.
type UpdateJobRequest struct {
	Title        *string `json:"title" validate:"omitempty,min=1,max=200"`
	Client       *string `json:"client" validate:"omitempty,min=1,max=200"`
	Salary       *string `json:"salary" validate:"omitempty,max=100"`
	Location     *string `json:"location" validate:"omitempty,max=200"`
	Status       *string `json:"status" validate:"omitempty,oneof=active paused filled"`
	Description  *string `json:"description" validate:"omitempty,max=5000"`
	ContactName  *string `json:"contactName" validate:"omitempty,max=120"`
	ContactEmail *string `json:"contactEmail" validate:"omitempty,email"`
}

// CreateCandidateRequest is the validated input for adding a candidate.
type CreateCandidateRequest struct {
	JobID       string `json:"jobId" validate:"required,uuid4"`
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Title       string `json:"title" validate:"omitempty,max=200"`
	Company     string `json:"company" validate:"omitempty,max=200"`
	LinkedInURL string `json:"linkedInUrl" validate:"omitempty,url"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"omitempty,max=40"`
	Notes       string `json:"notes" validate:"omitempty,max=5000"`
}

// UpdateCandidateRequest is the validated input for editing a candidate.
type UpdateCandidateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Company     *string `json:"company" validate:"omitempty,max=200"`
	LinkedInURL *string `json:"linkedInUrl" validate:"omitempty,url"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone" validate:"omitempty,max=40"`
	Stage       *string `json:"stage" validate:"omitempty,oneof=sourced contacted responded screened interviewing presented placed rejected"`
	Notes       *string `json:"notes" validate:"omitempty,max=5000"`
}

// PipelineStats is the dashboard summary for one recruiter.
type PipelineStats struct {
	TotalJobs        int `json:"totalJobs"`
	ActiveCandidates int `json:"activeCandidates"`
	Placements       int `json:"placements"`
	StalledItems     int `json:"stalledItems"`
}

// NewJobID generates a new UUID for a job.
func NewJobID() string {
	return uuid.New().String()
}

// NewCandidateID generates a new UUID for a candidate.
func NewCandidateID() string {
	return uuid.New().String()
}
