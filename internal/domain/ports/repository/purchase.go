package repository

import (
	"context"

	"digital-storefront/internal/domain/model"
)

// -----------------------------
// Purchases
// -----------------------------

type PurchaseRepository interface {
	Exists(ctx context.Context, tx Tx, userID, productID string) (bool, error)
	// Insert is insert-or-noop on (user_id, product_id); false means the grant already existed.
	Insert(ctx context.Context, tx Tx, p *model.UserPurchase) (bool, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.UserPurchase, error)
}
