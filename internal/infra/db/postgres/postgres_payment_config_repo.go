package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"digital-storefront/internal/domain"
	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/domain/ports/repository"
)

var _ repository.PaymentConfigRepository = (*paymentConfigRepo)(nil)

type paymentConfigRepo struct{ pool *pgxpool.Pool }

func NewPaymentConfigRepo(pool *pgxpool.Pool) *paymentConfigRepo {
	return &paymentConfigRepo{pool: pool}
}

func (r *paymentConfigRepo) Get(ctx context.Context, tx repository.Tx, key string) (string, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT value FROM payment_config WHERE key=$1`, key)
	if err != nil {
		return "", err
	}
	var v string
	if err := row.Scan(&v); err != nil {
		return "", mapScanErr(err, domain.ErrNotFound)
	}
	return v, nil
}

func (r *paymentConfigRepo) Set(ctx context.Context, tx repository.Tx, key, value string) error {
	const q = `
INSERT INTO payment_config (key, value, updated_at) VALUES ($1, $2, NOW())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	_, err := execSQL(ctx, r.pool, tx, q, key, value)
	return mapExecErr(err)
}

func (r *paymentConfigRepo) List(ctx context.Context, tx repository.Tx) ([]*model.PaymentConfigEntry, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT key, value, updated_at FROM payment_config ORDER BY key`)
	if err != nil {
		return nil, mapExecErr(err)
	}
	defer rows.Close()

	var out []*model.PaymentConfigEntry
	for rows.Next() {
		var e model.PaymentConfigEntry
		if err := rows.Scan(&e.Key, &e.Value, &e.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
