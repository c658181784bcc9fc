package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/garnizeh/vagas/pkg/models"
	"github.com/garnizeh/vagas/pkg/repository"
)

// Test helpers and mocks
type Mocks struct {
	Postings   *PostingRepo
	Applicants *ApplicantRepo
}

func NewMocks() *Mocks {
	p := &PostingRepo{rows: map[int64]models.Posting{}}
	return &Mocks{
		Postings:   p,
		Applicants: &ApplicantRepo{postings: p, rows: map[int64]models.Applicant{}},
	}
}

// PostingRepo is an in-memory PostingRepo. It enforces slug uniqueness the
// way the SQLite schema does.
type PostingRepo struct {
	mu     sync.Mutex
	rows   map[int64]models.Posting
	nextID int64

	CreateErr error
	// Creates counts CreatePosting calls, including rejected ones.
	Creates int
}

var _ repository.PostingRepo = (*PostingRepo)(nil)
var _ repository.ApplicantRepo = (*ApplicantRepo)(nil)

func (m *PostingRepo) CreatePosting(ctx context.Context, p *models.Posting) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Creates++
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	for _, row := range m.rows {
		if row.Slug == p.Slug {
			return 0, repository.ErrDuplicateSlug
		}
	}
	m.nextID++
	stored := *p
	stored.ID = m.nextID
	stored.CreatedAt = time.Now().UTC()
	m.rows[stored.ID] = stored
	p.ID, p.CreatedAt = stored.ID, stored.CreatedAt
	return stored.ID, nil
}

func (m *PostingRepo) GetPosting(ctx context.Context, id int64) (*models.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *PostingRepo) GetPostingBySlug(ctx context.Context, slug string) (*models.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.rows {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *PostingRepo) ListPostings(ctx context.Context, limit, offset int) ([]models.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Posting, 0, len(m.rows))
	for _, p := range m.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, limit, offset), nil
}

func (m *PostingRepo) CountPostings(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.rows)), nil
}

func (m *PostingRepo) UpdatePosting(ctx context.Context, id int64, patch models.PostingPatch) (*models.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	patch.Apply(&p)
	m.rows[id] = p
	return &p, nil
}

func (m *PostingRepo) DeletePosting(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *PostingRepo) exists(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[id]
	return ok
}

type ApplicantRepo struct {
	mu       sync.Mutex
	postings *PostingRepo
	rows     map[int64]models.Applicant
	nextID   int64

	CreateErr error
}

func (m *ApplicantRepo) CreateApplicant(ctx context.Context, a *models.Applicant) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	if !m.postings.exists(a.PostingID) {
		return 0, repository.ErrInvalidReference
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	stored := *a
	stored.ID = m.nextID
	stored.CreatedAt = time.Now().UTC()
	m.rows[stored.ID] = stored
	a.ID, a.CreatedAt = stored.ID, stored.CreatedAt
	return stored.ID, nil
}

func (m *ApplicantRepo) GetApplicant(ctx context.Context, id int64) (*models.Applicant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (m *ApplicantRepo) list(filter func(models.Applicant) bool) []models.Applicant {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Applicant, 0, len(m.rows))
	for _, a := range m.rows {
		if filter(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *ApplicantRepo) ListApplicants(ctx context.Context, limit, offset int) ([]models.Applicant, error) {
	return page(m.list(func(models.Applicant) bool { return true }), limit, offset), nil
}

func (m *ApplicantRepo) CountApplicants(ctx context.Context) (int64, error) {
	return int64(len(m.list(func(models.Applicant) bool { return true }))), nil
}

func (m *ApplicantRepo) ListApplicantsByPosting(ctx context.Context, postingID int64, limit, offset int) ([]models.Applicant, error) {
	return page(m.list(func(a models.Applicant) bool { return a.PostingID == postingID }), limit, offset), nil
}

func (m *ApplicantRepo) CountApplicantsByPosting(ctx context.Context, postingID int64) (int64, error) {
	return int64(len(m.list(func(a models.Applicant) bool { return a.PostingID == postingID }))), nil
}

func (m *ApplicantRepo) UpdateApplicant(ctx context.Context, id int64, patch models.ApplicantPatch) (*models.Applicant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	patch.Apply(&a)
	m.rows[id] = a
	return &a, nil
}

func (m *ApplicantRepo) DeleteApplicant(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func page[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
