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

const postingColumns = `id, name, description, work_mode, contract_mode, available, slug, created_at`

func scanPosting(s rowScanner) (*models.Posting, error) {
	var (
		p       models.Posting
		created int64
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Description, &p.WorkMode, &p.ContractMode, &p.Available, &p.Slug, &created); err != nil {
		return nil, err
	}
	p.CreatedAt = fromMillis(created)
	return &p, nil
}

// CreatePosting inserts p and fills in its ID and CreatedAt. A slug that is
// already taken yields repository.ErrDuplicateSlug.
func (r *SQLiteRepo) CreatePosting(ctx context.Context, p *models.Posting) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("posting is nil")
	}

	created := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO postings (name, description, work_mode, contract_mode, available, slug, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Description, p.WorkMode, p.ContractMode, p.Available, p.Slug, created.UnixMilli())
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert posting %q: %w", p.Slug, repository.ErrDuplicateSlug)
		}
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	p.ID = id
	p.CreatedAt = created

	return id, nil
}

func (r *SQLiteRepo) GetPosting(ctx context.Context, id int64) (*models.Posting, error) {
	p, err := scanPosting(r.conn.QueryRow(ctx, `SELECT `+postingColumns+` FROM postings WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

// GetPostingBySlug is an exact, case-sensitive match.
func (r *SQLiteRepo) GetPostingBySlug(ctx context.Context, slug string) (*models.Posting, error) {
	p, err := scanPosting(r.conn.QueryRow(ctx, `SELECT `+postingColumns+` FROM postings WHERE slug = ?`, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

func (r *SQLiteRepo) ListPostings(ctx context.Context, limit, offset int) ([]models.Posting, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.conn.QueryRows(ctx, `SELECT `+postingColumns+` FROM postings ORDER BY id ASC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Posting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) CountPostings(ctx context.Context) (int64, error) {
	var cnt int64
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM postings`).Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

// UpdatePosting writes only the fields present in patch and returns the
// stored row.
func (r *SQLiteRepo) UpdatePosting(ctx context.Context, id int64, patch models.PostingPatch) (*models.Posting, error) {
	var (
		sets []string
		args []any
	)
	if patch.Name != nil {
		sets, args = append(sets, "name = ?"), append(args, *patch.Name)
	}
	if patch.Description != nil {
		sets, args = append(sets, "description = ?"), append(args, *patch.Description)
	}
	if patch.WorkMode != nil {
		sets, args = append(sets, "work_mode = ?"), append(args, *patch.WorkMode)
	}
	if patch.ContractMode != nil {
		sets, args = append(sets, "contract_mode = ?"), append(args, *patch.ContractMode)
	}
	if patch.Available != nil {
		sets, args = append(sets, "available = ?"), append(args, *patch.Available)
	}

	if len(sets) == 0 {
		return r.GetPosting(ctx, id)
	}

	res, err := r.conn.Exec(ctx, `UPDATE postings SET `+strings.Join(sets, ", ")+` WHERE id = ?`, append(args, id)...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, repository.ErrNotFound
	}

	return r.GetPosting(ctx, id)
}

func (r *SQLiteRepo) DeletePosting(ctx context.Context, id int64) error {
	res, err := r.conn.Exec(ctx, `DELETE FROM postings WHERE id = ?`, id)
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

	r.logger.Debug("posting deleted", "id", id)
	return nil
}

func (r *SQLiteRepo) Ping(ctx context.Context) error {
	var one int
	return r.conn.QueryRow(ctx, `SELECT 1`).Scan(&one)
}
