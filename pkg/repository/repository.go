package repository

import (
	"context"
	"errors"

	"github.com/garnizeh/vagas/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

var (
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateSlug is returned when storage rejects a posting because its
	// slug is already taken.
	ErrDuplicateSlug = errors.New("duplicate slug")
	// ErrSlugExhausted wraps ErrDuplicateSlug once every generation attempt collided.
	ErrSlugExhausted = errors.New("slug attempts exhausted")
	// ErrInvalidReference is returned when an applicant points at a missing posting.
	ErrInvalidReference = errors.New("referenced posting does not exist")
)

type PostingRepo interface {
	CreatePosting(ctx context.Context, p *models.Posting) (int64, error)
	GetPosting(ctx context.Context, id int64) (*models.Posting, error)
	GetPostingBySlug(ctx context.Context, slug string) (*models.Posting, error)
	ListPostings(ctx context.Context, limit, offset int) ([]models.Posting, error)
	CountPostings(ctx context.Context) (int64, error)
	UpdatePosting(ctx context.Context, id int64, patch models.PostingPatch) (*models.Posting, error)
	DeletePosting(ctx context.Context, id int64) error
}

type ApplicantRepo interface {
	CreateApplicant(ctx context.Context, a *models.Applicant) (int64, error)
	GetApplicant(ctx context.Context, id int64) (*models.Applicant, error)
	ListApplicants(ctx context.Context, limit, offset int) ([]models.Applicant, error)
	CountApplicants(ctx context.Context) (int64, error)
	ListApplicantsByPosting(ctx context.Context, postingID int64, limit, offset int) ([]models.Applicant, error)
	CountApplicantsByPosting(ctx context.Context, postingID int64) (int64, error)
	UpdateApplicant(ctx context.Context, id int64, patch models.ApplicantPatch) (*models.Applicant, error)
	DeleteApplicant(ctx context.Context, id int64) error
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}
