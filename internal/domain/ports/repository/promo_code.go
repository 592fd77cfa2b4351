package repository

import (
	"context"
	"time"

	"digital-storefront/internal/domain/model"
)

// -----------------------------
// Promo codes
// -----------------------------

type PromoCodeRepository interface {
	Save(ctx context.Context, tx Tx, p *model.PromoCode) error
	FindByCode(ctx context.Context, tx Tx, code string) (*model.PromoCode, error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.PromoCode, error)
	List(ctx context.Context, tx Tx) ([]*model.PromoCode, error)
	SetActive(ctx context.Context, tx Tx, id string, active bool) error
	Delete(ctx context.Context, tx Tx, id string) error

	// Redeem increments used_count only while the code is usable at now.
	// It reports false when no row qualified.
	Redeem(ctx context.Context, tx Tx, id string, now time.Time) (bool, error)
	// Release gives back one use after a failed issuance.
	Release(ctx context.Context, tx Tx, id string) error
}
