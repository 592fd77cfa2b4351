package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"digital-storefront/internal/domain"
	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/domain/ports/repository"
)

var _ repository.InvoiceRepository = (*invoiceRepo)(nil)

type invoiceRepo struct{ pool *pgxpool.Pool }

func NewInvoiceRepo(pool *pgxpool.Pool) *invoiceRepo {
	return &invoiceRepo{pool: pool}
}

const invoiceColumns = `id, invoice_number, transaction_id, user_id, product_id, product_name, customer_email,
  customer_name, amount, discount_amount, currency, promo_code, gateway_payment_id, created_at`

func (r *invoiceRepo) NextSequence(ctx context.Context, tx repository.Tx) (int64, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT nextval('invoice_number_seq')`)
	if err != nil {
		return 0, err
	}
	var seq int64
	if err := row.Scan(&seq); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return seq, nil
}

func (r *invoiceRepo) Insert(ctx context.Context, tx repository.Tx, inv *model.Invoice) (bool, error) {
	const q = `
INSERT INTO invoices (` + invoiceColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
ON CONFLICT (transaction_id) DO NOTHING`

	cmd, err := execSQL(ctx, r.pool, tx, q,
		inv.ID, inv.InvoiceNumber, inv.TransactionID, inv.UserID, inv.ProductID, inv.ProductName, inv.CustomerEmail,
		inv.CustomerName, inv.Amount, inv.DiscountAmount, inv.Currency, inv.PromoCode, inv.GatewayPaymentID, inv.CreatedAt)
	if err != nil {
		return false, mapExecErr(err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *invoiceRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Invoice, error) {
	return r.findOne(ctx, tx, `SELECT `+invoiceColumns+` FROM invoices WHERE id=$1`, id)
}

func (r *invoiceRepo) FindByTransactionID(ctx context.Context, tx repository.Tx, transactionID string) (*model.Invoice, error) {
	return r.findOne(ctx, tx, `SELECT `+invoiceColumns+` FROM invoices WHERE transaction_id=$1`, transactionID)
}

func (r *invoiceRepo) findOne(ctx context.Context, tx repository.Tx, q string, arg string) (*model.Invoice, error) {
	row, err := pickRow(ctx, r.pool, tx, q, arg)
	if err != nil {
		return nil, err
	}
	var inv model.Invoice
	if err := row.Scan(&inv.ID, &inv.InvoiceNumber, &inv.TransactionID, &inv.UserID, &inv.ProductID, &inv.ProductName,
		&inv.CustomerEmail, &inv.CustomerName, &inv.Amount, &inv.DiscountAmount, &inv.Currency, &inv.PromoCode,
		&inv.GatewayPaymentID, &inv.CreatedAt); err != nil {
		return nil, mapScanErr(err, domain.ErrInvoiceNotFound)
	}
	return &inv, nil
}
