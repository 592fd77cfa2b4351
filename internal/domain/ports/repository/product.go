package repository

import (
	"context"

	"digital-storefront/internal/domain/model"
)

// ProductRepository is the port for catalog persistence.
type ProductRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Product) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Product, error)
	List(ctx context.Context, tx Tx, onlyActive bool) ([]*model.Product, error)
	Count(ctx context.Context, tx Tx) (int, error)
}
