package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/garnizeh/vagas/pkg/models"
	"github.com/garnizeh/vagas/pkg/repository"
)

const applicantColumns = `id, posting_id, full_name, phone, email, skills, video_ref, transcript, profile, video_url, created_at`

func scanApplicant(s rowScanner) (*models.Applicant, error) {
	var (
		a       models.Applicant
		created int64
	)
	if err := s.Scan(&a.ID, &a.PostingID, &a.FullName, &a.Phone, &a.Email, &a.Skills, &a.VideoRef, &a.Transcript, &a.Profile, &a.VideoURL, &created); err != nil {
		return nil, err
	}
	a.CreatedAt = fromMillis(created)
	return &a, nil
}

func (r *SQLiteRepo) CreateApplicant(ctx context.Context, a *models.Applicant) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("applicant is nil")
	}

	created := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO applicants (posting_id, full_name, phone, email, skills, video_ref, transcript, profile, video_url, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.PostingID, a.FullName, a.Phone, a.Email, a.Skills, a.VideoRef, a.Transcript, a.Profile, a.VideoURL, created.UnixMilli())
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("insert applicant for posting %d: %w", a.PostingID, repository.ErrInvalidReference)
		}
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	a.ID = id
	a.CreatedAt = created

	return id, nil
}

func (r *SQLiteRepo) GetApplicant(ctx context.Context, id int64) (*models.Applicant, error) {
	a, err := scanApplicant(r.conn.QueryRow(ctx, `SELECT `+applicantColumns+` FROM applicants WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return a, nil
}

func (r *SQLiteRepo) listApplicants(ctx context.Context, query string, args ...any) ([]models.Applicant, error) {
	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Applicant
	for rows.Next() {
		a, err := scanApplicant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) ListApplicants(ctx context.Context, limit, offset int) ([]models.Applicant, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	return r.listApplicants(ctx, `SELECT `+applicantColumns+` FROM applicants ORDER BY id ASC LIMIT ? OFFSET ?`, limit, offset)
}

func (r *SQLiteRepo) CountApplicants(ctx context.Context) (int64, error) {
	var cnt int64
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM applicants`).Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *SQLiteRepo) ListApplicantsByPosting(ctx context.Context, postingID int64, limit, offset int) ([]models.Applicant, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	return r.listApplicants(ctx, `SELECT `+applicantColumns+` FROM applicants WHERE posting_id = ? ORDER BY id ASC LIMIT ? OFFSET ?`, postingID, limit, offset)
}

func (r *SQLiteRepo) CountApplicantsByPosting(ctx context.Context, postingID int64) (int64, error) {
	var cnt int64
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM applicants WHERE posting_id = ?`, postingID).Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *SQLiteRepo) UpdateApplicant(ctx context.Context, id int64, patch models.ApplicantPatch) (*models.Applicant, error) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, *v)
		}
	}
	add("full_name", patch.FullName)
	add("phone", patch.Phone)
	add("email", patch.Email)
	add("skills", patch.Skills)
	add("video_ref", patch.VideoRef)
	add("transcript", patch.Transcript)
	add("profile", patch.Profile)
	add("video_url", patch.VideoURL)

	if len(sets) == 0 {
		return r.GetApplicant(ctx, id)
	}

	res, err := r.conn.Exec(ctx, `UPDATE applicants SET `+strings.Join(sets, ", ")+` WHERE id = ?`, append(args, id)...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, repository.ErrNotFound
	}

	return r.GetApplicant(ctx, id)
}

func (r *SQLiteRepo) DeleteApplicant(ctx context.Context, id int64) error {
	res, err := r.conn.Exec(ctx, `DELETE FROM applicants WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}

	return nil
}
