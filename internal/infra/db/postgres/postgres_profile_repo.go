package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"digital-storefront/internal/domain"
	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/domain/ports/repository"
)

var _ repository.ProfileRepository = (*profileRepo)(nil)

type profileRepo struct{ pool *pgxpool.Pool }

func NewProfileRepo(pool *pgxpool.Pool) *profileRepo {
	return &profileRepo{pool: pool}
}

const profileColumns = `id, email, full_name, is_admin, is_banned, created_at, updated_at`

func (r *profileRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Profile, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+profileColumns+` FROM profiles WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	p, err := scanProfile(row)
	if err != nil {
		return nil, mapScanErr(err, domain.ErrNotFound)
	}
	return p, nil
}

func (r *profileRepo) List(ctx context.Context, tx repository.Tx, limit int) ([]*model.Profile, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := queryRows(ctx, r.pool, tx, `SELECT `+profileColumns+` FROM profiles ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, mapExecErr(err)
	}
	defer rows.Close()

	var out []*model.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *profileRepo) Count(ctx context.Context, tx repository.Tx, since time.Time) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM profiles WHERE created_at >= $1`, sinceOrEpoch(since))
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *profileRepo) SetBanned(ctx context.Context, tx repository.Tx, id string, banned bool) error {
	return r.setFlag(ctx, tx, `UPDATE profiles SET is_banned=$2, updated_at=NOW() WHERE id=$1`, id, banned)
}

func (r *profileRepo) SetAdmin(ctx context.Context, tx repository.Tx, id string, admin bool) error {
	return r.setFlag(ctx, tx, `UPDATE profiles SET is_admin=$2, updated_at=NOW() WHERE id=$1`, id, admin)
}

func (r *profileRepo) setFlag(ctx context.Context, tx repository.Tx, q, id string, v bool) error {
	cmd, err := execSQL(ctx, r.pool, tx, q, id, v)
	if err != nil {
		return mapExecErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanProfile(row rowScanner) (*model.Profile, error) {
	var p model.Profile
	if err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.IsAdmin, &p.IsBanned, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert keeps the stored full name when the token does not carry one.
func (r *profileRepo) Upsert(ctx context.Context, tx repository.Tx, p *model.Profile) error {
	const q = `
INSERT INTO profiles (id, email, full_name, created_at, updated_at)
VALUES ($1, $2, $3, NOW(), NOW())
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email,
  full_name = COALESCE(EXCLUDED.full_name, profiles.full_name),
  updated_at = NOW()`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.Email, p.FullName)
	return mapExecErr(err)
}
