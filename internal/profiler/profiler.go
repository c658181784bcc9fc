// Package profiler turns an applicant's interview transcript into a short
// written profile using a language model. Work is queued through
// internal/jobs so request handlers never wait on the model.
package profiler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/garnizeh/vagas/internal/jobs"
	"github.com/garnizeh/vagas/pkg/models"
	"github.com/garnizeh/vagas/pkg/ollama"
	"github.com/garnizeh/vagas/pkg/repository"
)

// JobType is the jobs.Job type handled by Profiler.
const JobType = "applicant.profile"

var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger sets the logger used by the profiler. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// Payload is the JSON body of an applicant.profile job.
type Payload struct {
	ApplicantID int64 `json:"applicant_id"`
}

// Generator produces text for a prompt. *ollama.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (ollama.GenerateResult, error)
}

// Records is the subset of the record store the profiler reads and writes.
type Records interface {
	GetApplicant(ctx context.Context, id int64) (*models.Applicant, error)
	GetPosting(ctx context.Context, id int64) (*models.Posting, error)
	UpdateApplicant(ctx context.Context, id int64, patch models.ApplicantPatch) (*models.Applicant, error)
}

// PromptData is the value the prompt template is executed against.
type PromptData struct {
	Applicant *models.Applicant
	Posting   *models.Posting
}

type Profiler struct {
	records  Records
	gen      Generator
	model    string
	template string
}

func New(records Records, gen Generator, model, template string) *Profiler {
	return &Profiler{records: records, gen: gen, model: model, template: template}
}

// Prompt renders the prompt for an applicant and its posting.
func (p *Profiler) Prompt(a *models.Applicant, posting *models.Posting) (string, error) {
	if posting == nil {
		posting = &models.Posting{}
	}
	return ollama.RenderTemplate(p.template, PromptData{Applicant: a, Posting: posting})
}

// Profile generates and stores the profile for one applicant. It returns the
// stored text, or "" when the applicant has no transcript.
func (p *Profiler) Profile(ctx context.Context, applicantID int64) (string, error) {
	a, err := p.records.GetApplicant(ctx, applicantID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(a.Transcript) == "" {
		logger.Info("profiler: applicant has no transcript, skipping", slog.Int64("applicant_id", applicantID))
		return "", nil
	}

	posting, err := p.records.GetPosting(ctx, a.PostingID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	prompt, err := p.Prompt(a, posting)
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}

	res, err := p.gen.Generate(ctx, p.model, prompt)
	if err != nil {
		return "", fmt.Errorf("generate profile: %w", err)
	}

	text := strings.TrimSpace(res.Text)
	if text == "" {
		return "", errors.New("generate profile: model returned empty text")
	}
	if _, err := p.records.UpdateApplicant(ctx, applicantID, models.ApplicantPatch{Profile: &text}); err != nil {
		return "", fmt.Errorf("store profile: %w", err)
	}

	logger.Info("profiler: profile stored",
		slog.Int64("applicant_id", applicantID),
		slog.String("model", p.model),
		slog.Int("chars", len(text)),
	)
	return text, nil
}

// Handle is the jobs.Handler for JobType. Malformed payloads and applicants
// that no longer exist are permanent failures.
func (p *Profiler) Handle(ctx context.Context, j *jobs.Job) error {
	var payload Payload
	if err := json.Unmarshal(j.Payload, &payload); err != nil || payload.ApplicantID <= 0 {
		return fmt.Errorf("invalid payload %q: %w", string(j.Payload), jobs.ErrPermanent)
	}

	_, err := p.Profile(ctx, payload.ApplicantID)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("applicant %d: %w", payload.ApplicantID, jobs.ErrPermanent)
	}

	return err
}

// Handlers returns the handler map to register with a jobs.WorkerPool.
func (p *Profiler) Handlers() map[string]jobs.Handler {
	return map[string]jobs.Handler{JobType: p.Handle}
}

// JobStore persists jobs. *jobs.Repository satisfies it.
type JobStore interface {
	Enqueue(ctx context.Context, j *jobs.Job) (int64, error)
}

// Enqueuer schedules profile jobs for the record store.
type Enqueuer struct {
	jobs        JobStore
	maxAttempts int
}

func NewEnqueuer(store JobStore, maxAttempts int) *Enqueuer {
	return &Enqueuer{jobs: store, maxAttempts: maxAttempts}
}

func (e *Enqueuer) EnqueueProfile(ctx context.Context, applicantID int64) (int64, error) {
	b, err := json.Marshal(Payload{ApplicantID: applicantID})
	if err != nil {
		return 0, err
	}

	return e.jobs.Enqueue(ctx, &jobs.Job{Type: JobType, Payload: b, Priority: 100, MaxAttempts: e.maxAttempts})
}
