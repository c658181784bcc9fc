package records_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/garnizeh/vagas/internal/records"
	"github.com/garnizeh/vagas/internal/slug"
	"github.com/garnizeh/vagas/pkg/models"
	"github.com/garnizeh/vagas/pkg/repository"
	"github.com/garnizeh/vagas/pkg/repository/mock"
)

// fixedSlugs hands out the given slugs in order, repeating the last one.
type fixedSlugs struct {
	mu    sync.Mutex
	slugs []string
	calls int
}

func (f *fixedSlugs) Generate(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	if i >= len(f.slugs) {
		i = len(f.slugs) - 1
	}
	f.calls++
	return f.slugs[i]
}

type recordingEnqueuer struct {
	ids []int64
	err error
}

func (r *recordingEnqueuer) EnqueueProfile(ctx context.Context, applicantID int64) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.ids = append(r.ids, applicantID)
	return int64(len(r.ids)), nil
}

func ptr[T any](v T) *T { return &v }

func TestCreatePosting_AssignsSlug(t *testing.T) {
	m := mock.NewMocks()
	s := records.NewStore(m.Postings, m.Applicants)
	ctx := context.Background()

	p, err := s.CreatePosting(ctx, &models.Posting{Name: "Backend Developer", Description: "d", Available: true})
	if err != nil {
		t.Fatalf("CreatePosting error: %v", err)
	}
	prefix, _, ok := slug.Split(p.Slug)
	if !ok || prefix != "backend-developer" {
		t.Fatalf("unexpected slug %q", p.Slug)
	}

	got, err := s.GetPostingBySlug(ctx, p.Slug)
	if err != nil {
		t.Fatalf("GetPostingBySlug error: %v", err)
	}
	if got.ID != p.ID {
		t.Fatalf("lookup by slug returned %#v", got)
	}
	if _, err := s.GetPostingBySlug(ctx, p.Slug+"x"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other slug, got %v", err)
	}
}

func TestCreatePosting_RetriesOnCollision(t *testing.T) {
	m := mock.NewMocks()
	gen := &fixedSlugs{slugs: []string{"developer-1111", "developer-1111", "developer-2222"}}
	s := records.NewStore(m.Postings, m.Applicants, records.WithSlugGenerator(gen))
	ctx := context.Background()

	first, err := s.CreatePosting(ctx, &models.Posting{Name: "Developer"})
	if err != nil {
		t.Fatalf("first CreatePosting error: %v", err)
	}
	second, err := s.CreatePosting(ctx, &models.Posting{Name: "Developer"})
	if err != nil {
		t.Fatalf("second CreatePosting error: %v", err)
	}

	if first.Slug == second.Slug {
		t.Fatalf("duplicate slugs stored: %q", first.Slug)
	}
	if second.Slug != "developer-2222" {
		t.Fatalf("expected retry slug, got %q", second.Slug)
	}
	if m.Postings.Creates != 3 {
		t.Fatalf("expected 3 insert attempts, got %d", m.Postings.Creates)
	}
}

func TestCreatePosting_ExhaustedAttempts(t *testing.T) {
	m := mock.NewMocks()
	gen := &fixedSlugs{slugs: []string{"developer-0000"}}
	s := records.NewStore(m.Postings, m.Applicants, records.WithSlugGenerator(gen), records.WithMaxSlugAttempts(3))
	ctx := context.Background()

	if _, err := s.CreatePosting(ctx, &models.Posting{Name: "Developer"}); err != nil {
		t.Fatalf("first CreatePosting error: %v", err)
	}
	_, err := s.CreatePosting(ctx, &models.Posting{Name: "Developer"})
	if !errors.Is(err, repository.ErrDuplicateSlug) || !errors.Is(err, repository.ErrSlugExhausted) {
		t.Fatalf("expected exhausted duplicate slug error, got %v", err)
	}
	if m.Postings.Creates != 4 {
		t.Fatalf("expected 1+3 insert attempts, got %d", m.Postings.Creates)
	}
}

func TestCreatePosting_ConcurrentCollisionsSingleWinner(t *testing.T) {
	m := mock.NewMocks()
	gen := &fixedSlugs{slugs: []string{"developer-0000"}}
	s := records.NewStore(m.Postings, m.Applicants, records.WithSlugGenerator(gen), records.WithMaxSlugAttempts(1))
	ctx := context.Background()

	var ok, dup atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreatePosting(ctx, &models.Posting{Name: "Developer"})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, repository.ErrDuplicateSlug):
				dup.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok.Load() != 1 || dup.Load() != 15 {
		t.Fatalf("expected 1 success and 15 rejections, got %d/%d", ok.Load(), dup.Load())
	}
}

func TestCreatePosting_OtherErrorsPropagate(t *testing.T) {
	m := mock.NewMocks()
	boom := errors.New("disk on fire")
	m.Postings.CreateErr = boom
	s := records.NewStore(m.Postings, m.Applicants)

	if _, err := s.CreatePosting(context.Background(), &models.Posting{Name: "Developer"}); !errors.Is(err, boom) {
		t.Fatalf("expected storage error to propagate, got %v", err)
	}
	if m.Postings.Creates != 1 {
		t.Fatalf("expected no retry on unrelated error, got %d attempts", m.Postings.Creates)
	}
}

func TestUpdateAndDeletePosting(t *testing.T) {
	m := mock.NewMocks()
	s := records.NewStore(m.Postings, m.Applicants)
	ctx := context.Background()

	p, err := s.CreatePosting(ctx, &models.Posting{Name: "Developer", Description: "keep", WorkMode: "remote", Available: true})
	if err != nil {
		t.Fatalf("CreatePosting error: %v", err)
	}

	u, err := s.UpdatePosting(ctx, p.ID, models.PostingPatch{Name: ptr("Lead")})
	if err != nil {
		t.Fatalf("UpdatePosting error: %v", err)
	}
	if u.Name != "Lead" || u.Description != "keep" || u.WorkMode != "remote" || u.Slug != p.Slug {
		t.Fatalf("unexpected posting after patch: %#v", u)
	}

	if err := s.DeletePosting(ctx, p.ID); err != nil {
		t.Fatalf("DeletePosting error: %v", err)
	}
	if err := s.DeletePosting(ctx, p.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListPostings_PageNormalized(t *testing.T) {
	m := mock.NewMocks()
	s := records.NewStore(m.Postings, m.Applicants)
	ctx := context.Background()

	for range 3 {
		if _, err := s.CreatePosting(ctx, &models.Posting{Name: "Dev"}); err != nil {
			t.Fatalf("CreatePosting error: %v", err)
		}
	}

	res, err := s.ListPostings(ctx, records.Page{Offset: -3, Limit: 10_000})
	if err != nil {
		t.Fatalf("ListPostings error: %v", err)
	}
	if res.Page.Offset != 0 || res.Page.Limit != records.MaxLimit {
		t.Fatalf("page not normalized: %#v", res.Page)
	}
	if res.Total != 3 || len(res.Items) != 3 {
		t.Fatalf("unexpected list: total=%d items=%d", res.Total, len(res.Items))
	}
}

func TestCreateApplicant(t *testing.T) {
	m := mock.NewMocks()
	enq := &recordingEnqueuer{}
	s := records.NewStore(m.Postings, m.Applicants, records.WithProfileEnqueuer(enq))
	ctx := context.Background()

	if _, err := s.CreateApplicant(ctx, &models.Applicant{PostingID: 42, FullName: "Ghost"}); !errors.Is(err, repository.ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}

	p, err := s.CreatePosting(ctx, &models.Posting{Name: "Developer"})
	if err != nil {
		t.Fatalf("CreatePosting error: %v", err)
	}

	withTranscript, err := s.CreateApplicant(ctx, &models.Applicant{PostingID: p.ID, FullName: "Ana", Transcript: "I build APIs"})
	if err != nil {
		t.Fatalf("CreateApplicant error: %v", err)
	}
	if _, err := s.CreateApplicant(ctx, &models.Applicant{PostingID: p.ID, FullName: "Bia"}); err != nil {
		t.Fatalf("CreateApplicant error: %v", err)
	}

	if len(enq.ids) != 1 || enq.ids[0] != withTranscript.ID {
		t.Fatalf("expected one profile job for %d, got %v", withTranscript.ID, enq.ids)
	}

	list, err := s.ListApplicantsForPosting(ctx, p.ID, records.Page{})
	if err != nil {
		t.Fatalf("ListApplicantsForPosting error: %v", err)
	}
	if list.Total != 2 || len(list.Items) != 2 {
		t.Fatalf("unexpected applicants list: %#v", list)
	}

	if _, err := s.ListApplicantsForPosting(ctx, 999, records.Page{}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing posting, got %v", err)
	}
}

func TestCreateApplicant_EnqueueFailureIsNotFatal(t *testing.T) {
	m := mock.NewMocks()
	s := records.NewStore(m.Postings, m.Applicants, records.WithProfileEnqueuer(&recordingEnqueuer{err: errors.New("queue down")}))
	ctx := context.Background()

	p, err := s.CreatePosting(ctx, &models.Posting{Name: "Developer"})
	if err != nil {
		t.Fatalf("CreatePosting error: %v", err)
	}
	if _, err := s.CreateApplicant(ctx, &models.Applicant{PostingID: p.ID, FullName: "Ana", Transcript: "t"}); err != nil {
		t.Fatalf("CreateApplicant should succeed, got %v", err)
	}
}

func TestRequestProfile(t *testing.T) {
	m := mock.NewMocks()
	ctx := context.Background()

	disabled := records.NewStore(m.Postings, m.Applicants)
	if _, err := disabled.RequestProfile(ctx, 1); !errors.Is(err, records.ErrProfilesDisabled) {
		t.Fatalf("expected ErrProfilesDisabled, got %v", err)
	}

	enq := &recordingEnqueuer{}
	s := records.NewStore(m.Postings, m.Applicants, records.WithProfileEnqueuer(enq))
	if _, err := s.RequestProfile(ctx, 77); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	p, _ := s.CreatePosting(ctx, &models.Posting{Name: "Developer"})
	a, err := s.CreateApplicant(ctx, &models.Applicant{PostingID: p.ID, FullName: "Ana"})
	if err != nil {
		t.Fatalf("CreateApplicant error: %v", err)
	}
	if _, err := s.RequestProfile(ctx, a.ID); err != nil {
		t.Fatalf("RequestProfile error: %v", err)
	}
	if len(enq.ids) != 1 || enq.ids[0] != a.ID {
		t.Fatalf("unexpected enqueued ids %v", enq.ids)
	}
}

func TestApplicantUpdateDelete(t *testing.T) {
	m := mock.NewMocks()
	s := records.NewStore(m.Postings, m.Applicants)
	ctx := context.Background()

	p, _ := s.CreatePosting(ctx, &models.Posting{Name: "Developer"})
	a, err := s.CreateApplicant(ctx, &models.Applicant{PostingID: p.ID, FullName: "Ana", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("CreateApplicant error: %v", err)
	}

	u, err := s.UpdateApplicant(ctx, a.ID, models.ApplicantPatch{Skills: ptr("go")})
	if err != nil {
		t.Fatalf("UpdateApplicant error: %v", err)
	}
	if u.Skills != "go" || u.Email != "ana@example.com" {
		t.Fatalf("unexpected applicant %#v", u)
	}

	all, err := s.ListApplicants(ctx, records.Page{Limit: 1})
	if err != nil {
		t.Fatalf("ListApplicants error: %v", err)
	}
	if all.Total != 1 || len(all.Items) != 1 {
		t.Fatalf("unexpected list %#v", all)
	}

	if err := s.DeleteApplicant(ctx, a.ID); err != nil {
		t.Fatalf("DeleteApplicant error: %v", err)
	}
	if _, err := s.GetApplicant(ctx, a.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !strings.HasPrefix(p.Slug, "developer-") {
		t.Fatalf("unexpected slug %q", p.Slug)
	}
}
