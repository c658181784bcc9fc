package records

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/garnizeh/vagas/pkg/models"
	"github.com/garnizeh/vagas/pkg/repository"
)

// CreateApplicant stores a and, when a transcript is present and profile
// generation is configured, schedules a profile for it. A failed enqueue is
// logged and does not fail the creation.
func (s *Store) CreateApplicant(ctx context.Context, a *models.Applicant) (*models.Applicant, error) {
	if a == nil {
		return nil, fmt.Errorf("applicant is nil")
	}

	if _, err := s.postings.GetPosting(ctx, a.PostingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("posting %d: %w", a.PostingID, repository.ErrInvalidReference)
		}
		return nil, err
	}

	if _, err := s.applicants.CreateApplicant(ctx, a); err != nil {
		return nil, err
	}

	if s.profiles != nil && strings.TrimSpace(a.Transcript) != "" && strings.TrimSpace(a.Profile) == "" {
		if _, err := s.profiles.EnqueueProfile(ctx, a.ID); err != nil {
			logger.Warn("failed to enqueue profile generation", "applicant_id", a.ID, "err", err)
		}
	}

	return a, nil
}

func (s *Store) GetApplicant(ctx context.Context, id int64) (*models.Applicant, error) {
	return s.applicants.GetApplicant(ctx, id)
}

func (s *Store) ListApplicants(ctx context.Context, page Page) (List[models.Applicant], error) {
	page = page.Normalize()
	items, err := s.applicants.ListApplicants(ctx, page.Limit, page.Offset)
	if err != nil {
		return List[models.Applicant]{}, err
	}
	total, err := s.applicants.CountApplicants(ctx)
	if err != nil {
		return List[models.Applicant]{}, err
	}
	if items == nil {
		items = []models.Applicant{}
	}
	return List[models.Applicant]{Items: items, Total: total, Page: page}, nil
}

func (s *Store) UpdateApplicant(ctx context.Context, id int64, patch models.ApplicantPatch) (*models.Applicant, error) {
	return s.applicants.UpdateApplicant(ctx, id, patch)
}

func (s *Store) DeleteApplicant(ctx context.Context, id int64) error {
	return s.applicants.DeleteApplicant(ctx, id)
}

// RequestProfile schedules profile generation for an existing applicant.
func (s *Store) RequestProfile(ctx context.Context, id int64) (int64, error) {
	if s.profiles == nil {
		return 0, ErrProfilesDisabled
	}
	if _, err := s.applicants.GetApplicant(ctx, id); err != nil {
		return 0, err
	}
	return s.profiles.EnqueueProfile(ctx, id)
}
