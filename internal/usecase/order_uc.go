package usecase

import (
	"context"
	"errors"
	"strings"

	"digital-storefront/internal/domain"
	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/domain/ports/adapter"
	"digital-storefront/internal/domain/ports/repository"
	"digital-storefront/internal/infra/logging"
	"digital-storefront/internal/infra/metrics"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ OrderUseCase = (*orderUC)(nil)

// OrderResult initialises the hosted checkout widget.
type OrderResult struct {
	OrderID       string
	TransactionID string
	Amount        int64 // minor units
	Currency      string
	GatewayKeyID  string
	CustomerEmail string
	Pricing       model.Pricing
	PromoCode     string // applied code, empty when none
}

type OrderUseCase interface {
	CreateOrder(ctx context.Context, principal model.Principal, productID, promoCode string) (*OrderResult, error)
}

type orderUC struct {
	products     repository.ProductRepository
	purchases    repository.PurchaseRepository
	transactions repository.TransactionRepository
	profiles     repository.ProfileRepository
	promos       PromoUseCase
	gateway      adapter.PaymentGateway
	gwConfig     GatewayConfigUseCase
	currency     string
	log          *zerolog.Logger
}

func NewOrderUseCase(
	products repository.ProductRepository,
	purchases repository.PurchaseRepository,
	transactions repository.TransactionRepository,
	profiles repository.ProfileRepository,
	promos PromoUseCase,
	gateway adapter.PaymentGateway,
	gwConfig GatewayConfigUseCase,
	currency string,
	logger *zerolog.Logger,
) *orderUC {
	if currency == "" {
		currency = "INR"
	}
	return &orderUC{
		products:     products,
		purchases:    purchases,
		transactions: transactions,
		profiles:     profiles,
		promos:       promos,
		gateway:      gateway,
		gwConfig:     gwConfig,
		currency:     currency,
		log:          logger,
	}
}

// CreateOrder prices the product, opens a gateway order and records a pending transaction.
// An unusable promo code is ignored and the full price is charged.
func (u *orderUC) CreateOrder(ctx context.Context, principal model.Principal, productID, promoCode string) (*OrderResult, error) {
	defer logging.TraceDuration(u.log, "OrderUC.CreateOrder")()

	if principal.IsZero() {
		return nil, domain.ErrUnauthorized
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, domain.ErrInvalidArgument
	}
	// Catalog ids are UUIDs; anything else cannot name a product.
	if _, err := uuid.Parse(productID); err != nil {
		return nil, domain.ErrProductNotFound
	}
	log := logging.With(logging.WithUserID(ctx, principal.UserID), u.log)

	product, err := u.products.FindByID(ctx, repository.NoTX, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, domain.ErrProductNotFound
	}

	owned, err := u.purchases.Exists(ctx, repository.NoTX, principal.UserID, product.ID)
	if err != nil {
		return nil, err
	}
	if owned {
		return nil, domain.ErrAlreadyPurchased
	}

	switch prof, err := u.profiles.FindByID(ctx, repository.NoTX, principal.UserID); {
	case err == nil && prof.IsBanned:
		log.Warn().Msg("order refused for banned customer")
		return nil, domain.ErrUserBanned
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}
	if err := u.profiles.Upsert(ctx, repository.NoTX, principal.Profile()); err != nil {
		return nil, err
	}

	// Resolve credentials before consuming a promo use.
	creds, err := u.gwConfig.Credentials(ctx)
	if err != nil {
		return nil, err
	}

	pricing := model.FullPrice(product.Price)
	var promo *model.PromoCode
	if strings.TrimSpace(promoCode) != "" {
		promo, err = u.promos.Redeem(ctx, promoCode)
		if err != nil {
			log.Info().Err(err).Str("promo_code", model.NormalizePromoCode(promoCode)).Msg("promo code ignored, charging full price")
			promo = nil
		} else {
			pricing = model.ApplyDiscount(product.Price, promo.DiscountPercent)
		}
	}

	release := func(cause error) {
		if promo == nil {
			return
		}
		if err := u.promos.Release(context.WithoutCancel(ctx), promo.ID); err != nil {
			log.Error().Err(err).AnErr("cause", cause).Str("promo_id", promo.ID).Msg("failed to release promo use")
		}
	}

	order, err := u.gateway.CreateOrder(ctx, creds, adapter.CreateOrderRequest{
		Amount:   model.ToMinorUnits(pricing.FinalPrice),
		Currency: u.currency,
		Receipt:  "rcpt_" + ulid.Make().String(),
		Notes: map[string]string{
			"product_id": product.ID,
			"user_id":    principal.UserID,
		},
	})
	if err != nil {
		release(err)
		return nil, err
	}

	var promoID *string
	if promo != nil {
		promoID = &promo.ID
	}
	txn, err := model.NewPendingTransaction(principal.UserID, product.ID, order.ID, u.currency, pricing, promoID)
	if err == nil {
		err = u.transactions.Create(ctx, repository.NoTX, txn)
	}
	if err != nil {
		release(err)
		if errors.Is(err, domain.ErrAlreadyExists) {
			log.Error().Str("order_id", order.ID).Msg("gateway returned a reused order id")
		}
		return nil, err
	}

	metrics.IncOrderCreated(promo != nil)
	log.Info().
		Str("order_id", order.ID).
		Str("product_id", product.ID).
		Str("amount", pricing.FinalPrice.String()).
		Bool("promo", promo != nil).
		Msg("order created")

	res := &OrderResult{
		OrderID:       order.ID,
		TransactionID: txn.ID,
		Amount:        model.ToMinorUnits(pricing.FinalPrice),
		Currency:      u.currency,
		GatewayKeyID:  creds.KeyID,
		CustomerEmail: principal.Email,
		Pricing:       pricing,
	}
	if promo != nil {
		res.PromoCode = promo.Code
	}
	return res, nil
}
