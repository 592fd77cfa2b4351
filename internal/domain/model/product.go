package model

import (
	"strings"
	"time"

	"digital-storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductType string

const (
	ProductTypePDF      ProductType = "pdf"
	ProductTypeTelegram ProductType = "telegram"
)

func (t ProductType) Valid() bool {
	return t == ProductTypePDF || t == ProductTypeTelegram
}

// Product is a sellable digital good. Price is in whole currency units.
type Product struct {
	ID             string
	Name           string
	Description    string
	Price          decimal.Decimal
	Type           ProductType
	FileURL        *string
	TelegramLink   *string
	TelegramChatID *int64 // set when invite links are minted per purchase
	ImageURL       *string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewProduct validates and constructs an active product.
func NewProduct(name, description string, price decimal.Decimal, typ ProductType, payload string) (*Product, error) {
	p := &Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(name),
		Description: description,
		Price:       price,
		Type:        typ,
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	p.SetPayload(payload)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Product) Validate() error {
	if p == nil || p.Name == "" || !p.Type.Valid() || !p.Price.IsPositive() {
		return domain.ErrInvalidArgument
	}
	return nil
}

// SetPayload stores the fulfillment payload in the field that matches the product type.
func (p *Product) SetPayload(payload string) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return
	}
	switch p.Type {
	case ProductTypePDF:
		p.FileURL = &payload
	case ProductTypeTelegram:
		p.TelegramLink = &payload
	}
}

// AccessPayload returns the static access link granted on purchase.
func (p *Product) AccessPayload() string {
	switch p.Type {
	case ProductTypePDF:
		if p.FileURL != nil {
			return *p.FileURL
		}
	case ProductTypeTelegram:
		if p.TelegramLink != nil {
			return *p.TelegramLink
		}
	}
	return ""
}
