package repository

import (
	"context"

	"digital-storefront/internal/domain/model"
)

// PaymentConfigRepository stores admin-editable gateway settings.
type PaymentConfigRepository interface {
	Get(ctx context.Context, tx Tx, key string) (string, error)
	Set(ctx context.Context, tx Tx, key, value string) error
	List(ctx context.Context, tx Tx) ([]*model.PaymentConfigEntry, error)
}
