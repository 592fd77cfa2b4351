package repository

import (
	"context"
	"time"

	"digital-storefront/internal/domain/model"
)

// -----------------------------
// Payment transactions
// -----------------------------

// TransactionRepository persists payment attempts. All status writes are
// conditional on the current status and report whether a row changed.
type TransactionRepository interface {
	Create(ctx context.Context, tx Tx, t *model.Transaction) error
	FindByOrderID(ctx context.Context, tx Tx, orderID string) (*model.Transaction, error)
	List(ctx context.Context, tx Tx, status model.TransactionStatus, limit int) ([]*model.Transaction, error)

	// MarkSuccess moves a non-success transaction to success.
	MarkSuccess(ctx context.Context, tx Tx, orderID, paymentID string, signature *string) (bool, error)
	// MarkFailed moves a pending transaction to failed.
	MarkFailed(ctx context.Context, tx Tx, orderID string, paymentID *string) (bool, error)
	// SumSuccess totals successful transactions created at or after since;
	// a zero since covers all time.
	SumSuccess(ctx context.Context, tx Tx, since time.Time) (model.RevenueTotal, error)
	// FailPendingOlderThan fails abandoned attempts and returns how many were changed.
	FailPendingOlderThan(ctx context.Context, tx Tx, cutoff time.Time) (int64, error)
}
