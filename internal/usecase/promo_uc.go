package usecase

import (
	"context"
	"errors"
	"time"

	"digital-storefront/internal/domain"
	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/domain/ports/repository"
	"digital-storefront/internal/infra/logging"
	"digital-storefront/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ PromoUseCase = (*promoUC)(nil)

type PromoUseCase interface {
	// Validate is a read-only pre-check; it never consumes a use.
	Validate(ctx context.Context, code string) (*model.PromoCode, error)
	// Redeem validates and atomically consumes one use.
	Redeem(ctx context.Context, code string) (*model.PromoCode, error)
	// Release returns a use consumed by Redeem when the order could not be issued.
	Release(ctx context.Context, id string) error

	Create(ctx context.Context, code string, discountPercent int, maxUses *int, expiresAt *time.Time) (*model.PromoCode, error)
	List(ctx context.Context) ([]*model.PromoCode, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

type promoUC struct {
	promos repository.PromoCodeRepository
	now    func() time.Time
	log    *zerolog.Logger
}

func NewPromoUseCase(promos repository.PromoCodeRepository, logger *zerolog.Logger) *promoUC {
	return &promoUC{promos: promos, now: time.Now, log: logger}
}

func (u *promoUC) Validate(ctx context.Context, code string) (*model.PromoCode, error) {
	defer logging.TraceDuration(u.log, "PromoUC.Validate")()

	promo, err := u.lookup(ctx, code)
	if err != nil {
		metrics.IncPromoValidation(promoResult(err))
		return nil, err
	}
	if err := promo.Check(u.now()); err != nil {
		metrics.IncPromoValidation(promoResult(err))
		return nil, err
	}
	metrics.IncPromoValidation("valid")
	return promo, nil
}

func (u *promoUC) Redeem(ctx context.Context, code string) (*model.PromoCode, error) {
	defer logging.TraceDuration(u.log, "PromoUC.Redeem")()

	promo, err := u.lookup(ctx, code)
	if err != nil {
		metrics.IncPromoRedemption(promoResult(err))
		return nil, err
	}
	now := u.now()
	if err := promo.Check(now); err != nil {
		metrics.IncPromoRedemption(promoResult(err))
		return nil, err
	}
	ok, err := u.promos.Redeem(ctx, repository.NoTX, promo.ID, now)
	if err != nil {
		metrics.IncPromoRedemption("error")
		return nil, err
	}
	if !ok {
		// Lost the race for the last use, or the code changed since the read.
		metrics.IncPromoRedemption("exhausted")
		return nil, domain.ErrPromoExhausted
	}
	promo.UsedCount++
	metrics.IncPromoRedemption("redeemed")
	return promo, nil
}

func (u *promoUC) Release(ctx context.Context, id string) error {
	if err := u.promos.Release(ctx, repository.NoTX, id); err != nil {
		return err
	}
	metrics.IncPromoRedemption("released")
	return nil
}

func (u *promoUC) lookup(ctx context.Context, code string) (*model.PromoCode, error) {
	code = model.NormalizePromoCode(code)
	if code == "" {
		return nil, domain.ErrInvalidArgument
	}
	promo, err := u.promos.FindByCode(ctx, repository.NoTX, code)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrPromoInvalid
	}
	return promo, err
}

func (u *promoUC) Create(ctx context.Context, code string, discountPercent int, maxUses *int, expiresAt *time.Time) (*model.PromoCode, error) {
	defer logging.TraceDuration(u.log, "PromoUC.Create")()

	promo, err := model.NewPromoCode(code, discountPercent, maxUses, expiresAt)
	if err != nil {
		return nil, err
	}
	if err := u.promos.Save(ctx, repository.NoTX, promo); err != nil {
		return nil, err
	}
	u.log.Info().Str("code", promo.Code).Int("percent", promo.DiscountPercent).Msg("promo code created")
	return promo, nil
}

func (u *promoUC) List(ctx context.Context) ([]*model.PromoCode, error) {
	return u.promos.List(ctx, repository.NoTX)
}

func (u *promoUC) SetActive(ctx context.Context, id string, active bool) error {
	return u.promos.SetActive(ctx, repository.NoTX, id, active)
}

func (u *promoUC) Delete(ctx context.Context, id string) error {
	return u.promos.Delete(ctx, repository.NoTX, id)
}

func promoResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrPromoExpired):
		return "expired"
	case errors.Is(err, domain.ErrPromoExhausted):
		return "exhausted"
	case errors.Is(err, domain.ErrPromoInvalid), errors.Is(err, domain.ErrInvalidArgument):
		return "invalid"
	default:
		return "error"
	}
}
