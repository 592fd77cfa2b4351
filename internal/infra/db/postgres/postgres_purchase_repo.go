package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"digital-storefront/internal/domain"
	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/domain/ports/repository"
)

var _ repository.PurchaseRepository = (*purchaseRepo)(nil)

type purchaseRepo struct{ pool *pgxpool.Pool }

func NewPurchaseRepo(pool *pgxpool.Pool) *purchaseRepo {
	return &purchaseRepo{pool: pool}
}

func (r *purchaseRepo) Exists(ctx context.Context, tx repository.Tx, userID, productID string) (bool, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT EXISTS (SELECT 1 FROM user_purchases WHERE user_id=$1 AND product_id=$2)`, userID, productID)
	if err != nil {
		return false, err
	}
	var ok bool
	if err := row.Scan(&ok); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return ok, nil
}

// Insert relies on user_purchases_user_product_uq; a lost race reports false.
func (r *purchaseRepo) Insert(ctx context.Context, tx repository.Tx, p *model.UserPurchase) (bool, error) {
	const q = `
INSERT INTO user_purchases (id, user_id, product_id, access_link, purchased_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (user_id, product_id) DO NOTHING`

	cmd, err := execSQL(ctx, r.pool, tx, q, p.ID, p.UserID, p.ProductID, p.AccessLink, p.PurchasedAt)
	if err != nil {
		return false, mapExecErr(err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *purchaseRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.UserPurchase, error) {
	const q = `
SELECT up.id, up.user_id, up.product_id, up.access_link, up.purchased_at, p.name, p.type
  FROM user_purchases up
  JOIN products p ON p.id = up.product_id
 WHERE up.user_id = $1
 ORDER BY up.purchased_at DESC`

	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, mapExecErr(err)
	}
	defer rows.Close()

	var out []*model.UserPurchase
	for rows.Next() {
		var pu model.UserPurchase
		var typ string
		if err := rows.Scan(&pu.ID, &pu.UserID, &pu.ProductID, &pu.AccessLink, &pu.PurchasedAt, &pu.ProductName, &typ); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		pu.ProductType = model.ProductType(typ)
		out = append(out, &pu)
	}
	return out, rows.Err()
}
