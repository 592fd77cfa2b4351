package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"digital-storefront/internal/domain"
	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/domain/ports/repository"
)

var _ repository.PromoCodeRepository = (*promoCodeRepo)(nil)

type promoCodeRepo struct{ pool *pgxpool.Pool }

func NewPromoCodeRepo(pool *pgxpool.Pool) *promoCodeRepo {
	return &promoCodeRepo{pool: pool}
}

const promoColumns = `id, code, discount_percent, max_uses, used_count, is_active, expires_at, created_at`

func (r *promoCodeRepo) Save(ctx context.Context, tx repository.Tx, p *model.PromoCode) error {
	const q = `
INSERT INTO promo_codes (` + promoColumns + `)
VALUES ($1, UPPER($2), $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
  code=UPPER($2), discount_percent=$3, max_uses=$4, is_active=$6, expires_at=$7;`

	_, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.Code, p.DiscountPercent, p.MaxUses, p.UsedCount, p.IsActive, p.ExpiresAt, p.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return mapExecErr(err)
}

func (r *promoCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.PromoCode, error) {
	q := forUpdate(`SELECT `+promoColumns+` FROM promo_codes WHERE UPPER(code)=UPPER($1)`, tx)
	row, err := pickRow(ctx, r.pool, tx, q, model.NormalizePromoCode(code))
	if err != nil {
		return nil, err
	}
	p, err := scanPromo(row)
	if err != nil {
		return nil, mapScanErr(err, domain.ErrPromoInvalid)
	}
	return p, nil
}

func (r *promoCodeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PromoCode, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+promoColumns+` FROM promo_codes WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	p, err := scanPromo(row)
	if err != nil {
		return nil, mapScanErr(err, domain.ErrNotFound)
	}
	return p, nil
}

func (r *promoCodeRepo) List(ctx context.Context, tx repository.Tx) ([]*model.PromoCode, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT `+promoColumns+` FROM promo_codes ORDER BY created_at DESC`)
	if err != nil {
		return nil, mapExecErr(err)
	}
	defer rows.Close()

	var out []*model.PromoCode
	for rows.Next() {
		p, err := scanPromo(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *promoCodeRepo) SetActive(ctx context.Context, tx repository.Tx, id string, active bool) error {
	cmd, err := execSQL(ctx, r.pool, tx, `UPDATE promo_codes SET is_active=$2 WHERE id=$1`, id, active)
	if err != nil {
		return mapExecErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *promoCodeRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	cmd, err := execSQL(ctx, r.pool, tx, `DELETE FROM promo_codes WHERE id=$1`, id)
	if err != nil {
		return mapExecErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Redeem re-checks usability in the same statement that increments, so two
// concurrent redemptions of the last use cannot both succeed.
func (r *promoCodeRepo) Redeem(ctx context.Context, tx repository.Tx, id string, now time.Time) (bool, error) {
	const q = `
UPDATE promo_codes
   SET used_count = used_count + 1
 WHERE id = $1
   AND is_active
   AND (expires_at IS NULL OR expires_at > $2)
   AND (max_uses IS NULL OR used_count < max_uses)`

	cmd, err := execSQL(ctx, r.pool, tx, q, id, now)
	if err != nil {
		return false, mapExecErr(err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *promoCodeRepo) Release(ctx context.Context, tx repository.Tx, id string) error {
	_, err := execSQL(ctx, r.pool, tx, `UPDATE promo_codes SET used_count = used_count - 1 WHERE id=$1 AND used_count > 0`, id)
	return mapExecErr(err)
}

func scanPromo(row rowScanner) (*model.PromoCode, error) {
	var p model.PromoCode
	if err := row.Scan(&p.ID, &p.Code, &p.DiscountPercent, &p.MaxUses, &p.UsedCount, &p.IsActive, &p.ExpiresAt, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
