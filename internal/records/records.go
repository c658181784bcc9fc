// Package records maps the create, read, update and delete operations for
// postings and applicants onto the repositories, and owns slug assignment.
package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/garnizeh/vagas/internal/slug"
	"github.com/garnizeh/vagas/pkg/models"
	"github.com/garnizeh/vagas/pkg/repository"
)

const (
	// DefaultLimit is the page size used when none is requested.
	DefaultLimit = 100
	// MaxLimit caps any requested page size.
	MaxLimit = 500
	// DefaultMaxAttempts is how many slugs CreatePosting tries by default.
	DefaultMaxAttempts = 5
)

var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger installs a logger for the records package. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// SlugGenerator produces a candidate slug for a display name.
type SlugGenerator interface {
	Generate(name string) string
}

// ProfileEnqueuer schedules profile generation for an applicant.
type ProfileEnqueuer interface {
	EnqueueProfile(ctx context.Context, applicantID int64) (int64, error)
}

// ErrProfilesDisabled is returned by RequestProfile when no enqueuer is configured.
var ErrProfilesDisabled = errors.New("profile generation disabled")

// Page is an offset/limit window.
type Page struct {
	Offset int
	Limit  int
}

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// List is one page of records plus the total count across all pages.
type List[T any] struct {
	Items []T
	Total int64
	Page  Page
}

// Store is the record store for postings and applicants.
type Store struct {
	postings    repository.PostingRepo
	applicants  repository.ApplicantRepo
	slugs       SlugGenerator
	maxAttempts int
	profiles    ProfileEnqueuer
}

// Option configures a Store.
type Option func(*Store)

// WithSlugGenerator replaces the default generator.
func WithSlugGenerator(g SlugGenerator) Option {
	return func(s *Store) {
		if g != nil {
			s.slugs = g
		}
	}
}

// WithMaxSlugAttempts bounds how many slugs CreatePosting tries.
func WithMaxSlugAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithProfileEnqueuer enables profile generation for new and existing applicants.
func WithProfileEnqueuer(e ProfileEnqueuer) Option {
	return func(s *Store) { s.profiles = e }
}

// NewStore builds a Store over the posting and applicant repositories.
func NewStore(pr repository.PostingRepo, ar repository.ApplicantRepo, opts ...Option) *Store {
	s := &Store{
		postings:    pr,
		applicants:  ar,
		slugs:       slug.New(nil),
		maxAttempts: DefaultMaxAttempts,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CreatePosting assigns a fresh slug and stores the posting. When storage
// reports the slug as taken, a new suffix is drawn, up to maxAttempts times.
func (s *Store) CreatePosting(ctx context.Context, p *models.Posting) (*models.Posting, error) {
	if p == nil {
		return nil, fmt.Errorf("posting is nil")
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		candidate := *p
		candidate.ID = 0
		candidate.Slug = s.slugs.Generate(p.Name)

		if _, err := s.postings.CreatePosting(ctx, &candidate); err != nil {
			if errors.Is(err, repository.ErrDuplicateSlug) {
				logger.Warn("slug collision", "slug", candidate.Slug, "attempt", attempt)
				continue
			}
			return nil, err
		}

		*p = candidate
		return p, nil
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", repository.ErrSlugExhausted, s.maxAttempts, repository.ErrDuplicateSlug)
}

func (s *Store) GetPosting(ctx context.Context, id int64) (*models.Posting, error) {
	return s.postings.GetPosting(ctx, id)
}

func (s *Store) GetPostingBySlug(ctx context.Context, slug string) (*models.Posting, error) {
	return s.postings.GetPostingBySlug(ctx, slug)
}

func (s *Store) ListPostings(ctx context.Context, page Page) (List[models.Posting], error) {
	page = page.Normalize()
	items, err := s.postings.ListPostings(ctx, page.Limit, page.Offset)
	if err != nil {
		return List[models.Posting]{}, err
	}
	total, err := s.postings.CountPostings(ctx)
	if err != nil {
		return List[models.Posting]{}, err
	}
	if items == nil {
		items = []models.Posting{}
	}
	return List[models.Posting]{Items: items, Total: total, Page: page}, nil
}

func (s *Store) UpdatePosting(ctx context.Context, id int64, patch models.PostingPatch) (*models.Posting, error) {
	return s.postings.UpdatePosting(ctx, id, patch)
}

func (s *Store) DeletePosting(ctx context.Context, id int64) error {
	return s.postings.DeletePosting(ctx, id)
}

// ListApplicantsForPosting returns ErrNotFound when the posting itself does not exist.
func (s *Store) ListApplicantsForPosting(ctx context.Context, postingID int64, page Page) (List[models.Applicant], error) {
	if _, err := s.postings.GetPosting(ctx, postingID); err != nil {
		return List[models.Applicant]{}, err
	}

	page = page.Normalize()
	items, err := s.applicants.ListApplicantsByPosting(ctx, postingID, page.Limit, page.Offset)
	if err != nil {
		return List[models.Applicant]{}, err
	}
	total, err := s.applicants.CountApplicantsByPosting(ctx, postingID)
	if err != nil {
		return List[models.Applicant]{}, err
	}
	if items == nil {
		items = []models.Applicant{}
	}
	return List[models.Applicant]{Items: items, Total: total, Page: page}, nil
}
