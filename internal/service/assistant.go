package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/recruiterops/backend/internal/domain"
)

const assistantInstruction = `You are RecruiterOps, an operations accelerator for independent recruiters.
You draft high-conversion outreach and interview-invite messages, summarize daily
pipeline health with actionable next steps, and flag stalled candidates. Your tone
is professional, urgent, and operations-focused. You do not source, vet, or score
candidates.`

// TextCompleter is the opaque text-generation collaborator.
type TextCompleter interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// CandidateDraftStore persists generated outreach drafts.
type CandidateDraftStore interface {
	SetOutreachDraft(ctx context.Context, id, userID, draft string) error
}

// AssistantService wraps the language-model collaborator. Every failure
// degrades to an empty result — generated text is a convenience and must
// never block pipeline or entitlement logic.
type AssistantService struct {
	completer TextCompleter
	drafts    CandidateDraftStore
	pipeline  *PipelineService
	logger    *zap.Logger
}

// NewAssistantService creates a new AssistantService.
func NewAssistantService(completer TextCompleter, drafts CandidateDraftStore, pipeline *PipelineService, logger *zap.Logger) *AssistantService {
	return &AssistantService{
		completer: completer,
		drafts:    drafts,
		pipeline:  pipeline,
		logger:    logger,
	}
}

// DraftOutreach generates and stores an outreach draft for a candidate.
func (s *AssistantService) DraftOutreach(ctx context.Context, userID, candidateID string) (string, error) {
	candidate, err := s.pipeline.candidates.FindByID(ctx, candidateID, userID)
	if err != nil {
		return "", domain.ErrInternal("failed to find candidate", err)
	}
	if candidate == nil {
		return "", domain.ErrNotFound("candidate not found")
	}

	job, err := s.pipeline.jobs.FindByID(ctx, candidate.JobID, userID)
	if err != nil {
		return "", domain.ErrInternal("failed to find job", err)
	}

	prompt := fmt.Sprintf(
		"Draft a short, personalized outreach message to %s (%s at %s) about the %s role at %s. Keep it under 120 words.",
		candidate.Name, deref(candidate.Title), deref(candidate.Company),
		jobTitle(job), jobClient(job),
	)

	draft := s.complete(ctx, prompt)
	if draft == "" {
		return "", nil
	}

	if err := s.drafts.SetOutreachDraft(ctx, candidateID, userID, draft); err != nil {
		s.logger.Warn("failed to store outreach draft", zap.Error(err))
	}
	return draft, nil
}

// InterviewInvite generates interview-invite copy for a candidate.
func (s *AssistantService) InterviewInvite(ctx context.Context, userID, candidateID, availability string) (string, error) {
	candidate, err := s.pipeline.candidates.FindByID(ctx, candidateID, userID)
	if err != nil {
		return "", domain.ErrInternal("failed to find candidate", err)
	}
	if candidate == nil {
		return "", domain.ErrNotFound("candidate not found")
	}

	prompt := fmt.Sprintf(
		"Write a concise interview-invitation email to %s. Offered availability: %s. Ask them to confirm one slot.",
		candidate.Name, availability,
	)
	return s.complete(ctx, prompt), nil
}

// DailySummary generates a pipeline briefing from the user's jobs and
// candidates.
func (s *AssistantService) DailySummary(ctx context.Context, userID string) (string, error) {
	jobs, err := s.pipeline.ListJobs(ctx, userID, false)
	if err != nil {
		return "", err
	}
	candidates, err := s.pipeline.ListCandidates(ctx, userID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Provide a concise daily briefing for this pipeline.\nJOBS:\n")
	for _, j := range jobs {
		fmt.Fprintf(&b, "- %s at %s (%s)\n", j.Title, j.Client, j.Status)
	}
	b.WriteString("CANDIDATES:\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "- %s, stage %s, last activity %s\n", c.Name, c.Stage, c.LastActivityAt.Format("2006-01-02"))
	}
	b.WriteString("Identify active roles, today's interviews, the top 3 stalled candidates, and one next action per job.")

	return s.complete(ctx, b.String()), nil
}

// complete calls the collaborator and degrades any failure to "".
func (s *AssistantService) complete(ctx context.Context, prompt string) string {
	text, err := s.completer.Complete(ctx, assistantInstruction, prompt)
	if err != nil {
		s.logger.Warn("text generation failed", zap.Error(err))
		return ""
	}
	return text
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func jobTitle(j *domain.Job) string {
	if j == nil {
		return "an open"
	}
	return j.Title
}

func jobClient(j *domain.Job) string {
	if j == nil {
		return "the client"
	}
	return j.Client
}
