package repository

import (
	"context"

	"digital-storefront/internal/domain/model"
)

// -----------------------------
// Invoices
// -----------------------------

type InvoiceRepository interface {
	NextSequence(ctx context.Context, tx Tx) (int64, error)
	// Insert is insert-or-noop on transaction_id.
	Insert(ctx context.Context, tx Tx, inv *model.Invoice) (bool, error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.Invoice, error)
	FindByTransactionID(ctx context.Context, tx Tx, transactionID string) (*model.Invoice, error)
}
