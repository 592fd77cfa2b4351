package usecase

import (
	"context"
	"errors"

	"digital-storefront/internal/domain"
	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ InvoiceUseCase = (*invoiceUC)(nil)

// InvoiceUseCase serves invoices by id; knowing the id is the access control.
type InvoiceUseCase interface {
	Get(ctx context.Context, id string) (*model.Invoice, error)
}

type invoiceUC struct {
	invoices repository.InvoiceRepository
	log      *zerolog.Logger
}

func NewInvoiceUseCase(invoices repository.InvoiceRepository, logger *zerolog.Logger) *invoiceUC {
	return &invoiceUC{invoices: invoices, log: logger}
}

func (u *invoiceUC) Get(ctx context.Context, id string) (*model.Invoice, error) {
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	inv, err := u.invoices.FindByID(ctx, repository.NoTX, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvoiceNotFound
	}
	return inv, err
}
