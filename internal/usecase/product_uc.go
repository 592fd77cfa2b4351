package usecase

import (
	"context"
	"strings"
	"time"

	"digital-storefront/internal/domain"
	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/domain/ports/repository"
	"digital-storefront/internal/infra/logging"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Compile-time check
var _ ProductUseCase = (*productUC)(nil)

// ProductInput carries admin edits. Nil pointers leave the field unchanged on update.
type ProductInput struct {
	Name           *string
	Description    *string
	Price          *decimal.Decimal
	Type           *model.ProductType
	Payload        *string
	TelegramChatID *int64
	ImageURL       *string
	IsActive       *bool
}

type ProductUseCase interface {
	List(ctx context.Context, onlyActive bool) ([]*model.Product, error)
	Get(ctx context.Context, id string) (*model.Product, error)
	Create(ctx context.Context, in ProductInput) (*model.Product, error)
	Update(ctx context.Context, id string, in ProductInput) (*model.Product, error)
	ListPurchases(ctx context.Context, userID string) ([]*model.UserPurchase, error)
}

type productUC struct {
	products  repository.ProductRepository
	purchases repository.PurchaseRepository
	log       *zerolog.Logger
}

func NewProductUseCase(products repository.ProductRepository, purchases repository.PurchaseRepository, logger *zerolog.Logger) *productUC {
	return &productUC{products: products, purchases: purchases, log: logger}
}

func (u *productUC) List(ctx context.Context, onlyActive bool) ([]*model.Product, error) {
	defer logging.TraceDuration(u.log, "ProductUC.List")()
	return u.products.List(ctx, repository.NoTX, onlyActive)
}

func (u *productUC) Get(ctx context.Context, id string) (*model.Product, error) {
	return u.products.FindByID(ctx, repository.NoTX, id)
}

func (u *productUC) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	defer logging.TraceDuration(u.log, "ProductUC.Create")()

	if in.Name == nil || in.Price == nil || in.Type == nil {
		return nil, domain.ErrInvalidArgument
	}
	p, err := model.NewProduct(*in.Name, deref(in.Description), *in.Price, *in.Type, deref(in.Payload))
	if err != nil {
		return nil, err
	}
	p.TelegramChatID = in.TelegramChatID
	p.ImageURL = in.ImageURL
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if err := u.products.Save(ctx, repository.NoTX, p); err != nil {
		return nil, err
	}
	u.log.Info().Str("product_id", p.ID).Str("type", string(p.Type)).Msg("product created")
	return p, nil
}

// Update applies the non-nil fields. Existing transactions keep the price they were issued at.
func (u *productUC) Update(ctx context.Context, id string, in ProductInput) (*model.Product, error) {
	defer logging.TraceDuration(u.log, "ProductUC.Update")()

	p, err := u.products.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Type != nil && *in.Type != p.Type {
		p.Type = *in.Type
		p.FileURL, p.TelegramLink = nil, nil
	}
	if in.Payload != nil {
		p.SetPayload(*in.Payload)
	}
	if in.TelegramChatID != nil {
		p.TelegramChatID = in.TelegramChatID
	}
	if in.ImageURL != nil {
		p.ImageURL = in.ImageURL
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now()
	if err := u.products.Save(ctx, repository.NoTX, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (u *productUC) ListPurchases(ctx context.Context, userID string) ([]*model.UserPurchase, error) {
	defer logging.TraceDuration(u.log, "ProductUC.ListPurchases")()
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	return u.purchases.ListByUser(ctx, repository.NoTX, userID)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
