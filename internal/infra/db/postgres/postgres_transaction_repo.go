package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"digital-storefront/internal/domain"
	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/domain/ports/repository"
)

var _ repository.TransactionRepository = (*transactionRepo)(nil)

type transactionRepo struct{ pool *pgxpool.Pool }

func NewTransactionRepo(pool *pgxpool.Pool) *transactionRepo {
	return &transactionRepo{pool: pool}
}

const txnColumns = `id, user_id, product_id, amount, discount_amount, currency, promo_code_id, status,
  gateway_order_id, gateway_payment_id, gateway_signature, created_at, updated_at`

func (r *transactionRepo) Create(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	const q = `
INSERT INTO transactions (` + txnColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13);`

	_, err := execSQL(ctx, r.pool, tx, q,
		t.ID, t.UserID, t.ProductID, t.Amount, t.DiscountAmount, t.Currency, t.PromoCodeID, string(t.Status),
		t.GatewayOrderID, t.GatewayPaymentID, t.GatewaySignature, t.CreatedAt, t.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return mapExecErr(err)
}

func (r *transactionRepo) FindByOrderID(ctx context.Context, tx repository.Tx, orderID string) (*model.Transaction, error) {
	q := forUpdate(`SELECT `+txnColumns+` FROM transactions WHERE gateway_order_id=$1`, tx)
	row, err := pickRow(ctx, r.pool, tx, q, orderID)
	if err != nil {
		return nil, err
	}
	t, err := scanTransaction(row)
	if err != nil {
		return nil, mapScanErr(err, domain.ErrTransactionNotFound)
	}
	return t, nil
}

func (r *transactionRepo) List(ctx context.Context, tx repository.Tx, status model.TransactionStatus, limit int) ([]*model.Transaction, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := `SELECT ` + txnColumns + ` FROM transactions WHERE ($1::text = '' OR status = $1::text) ORDER BY created_at DESC LIMIT $2`
	rows, err := queryRows(ctx, r.pool, tx, q, string(status), limit)
	if err != nil {
		return nil, mapExecErr(err)
	}
	defer rows.Close()

	var out []*model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MarkSuccess never touches a row that is already success, so concurrent
// callers learn from the boolean which one performed the transition.
func (r *transactionRepo) MarkSuccess(ctx context.Context, tx repository.Tx, orderID, paymentID string, signature *string) (bool, error) {
	const q = `
UPDATE transactions
   SET status = 'success',
       gateway_payment_id = $2,
       gateway_signature = COALESCE($3, gateway_signature),
       updated_at = NOW()
 WHERE gateway_order_id = $1
   AND status <> 'success'`

	cmd, err := execSQL(ctx, r.pool, tx, q, orderID, paymentID, signature)
	if err != nil {
		return false, mapExecErr(err)
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *transactionRepo) MarkFailed(ctx context.Context, tx repository.Tx, orderID string, paymentID *string) (bool, error) {
	const q = `
UPDATE transactions
   SET status = 'failed',
       gateway_payment_id = COALESCE($2, gateway_payment_id),
       updated_at = NOW()
 WHERE gateway_order_id = $1
   AND status = 'pending'`

	cmd, err := execSQL(ctx, r.pool, tx, q, orderID, paymentID)
	if err != nil {
		return false, mapExecErr(err)
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *transactionRepo) FailPendingOlderThan(ctx context.Context, tx repository.Tx, cutoff time.Time) (int64, error) {
	const q = `UPDATE transactions SET status = 'failed', updated_at = NOW() WHERE status = 'pending' AND created_at < $1`
	cmd, err := execSQL(ctx, r.pool, tx, q, cutoff)
	if err != nil {
		return 0, mapExecErr(err)
	}
	return cmd.RowsAffected(), nil
}

// SumSuccess mirrors the dashboard revenue cards; the store charges a single currency.
func (r *transactionRepo) SumSuccess(ctx context.Context, tx repository.Tx, since time.Time) (model.RevenueTotal, error) {
	const q = `SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM transactions WHERE status = 'success' AND created_at >= $1`
	row, err := pickRow(ctx, r.pool, tx, q, sinceOrEpoch(since))
	if err != nil {
		return model.RevenueTotal{}, err
	}
	var total model.RevenueTotal
	if err := row.Scan(&total.Sales, &total.Amount); err != nil {
		return model.RevenueTotal{}, domain.ErrReadDatabaseRow
	}
	return total, nil
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var t model.Transaction
	var status string
	if err := row.Scan(&t.ID, &t.UserID, &t.ProductID, &t.Amount, &t.DiscountAmount, &t.Currency, &t.PromoCodeID, &status,
		&t.GatewayOrderID, &t.GatewayPaymentID, &t.GatewaySignature, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Status = model.TransactionStatus(status)
	return &t, nil
}
