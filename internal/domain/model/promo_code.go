package model

import (
	"strings"
	"time"

	"digital-storefront/internal/domain"

	"github.com/google/uuid"
)

// PromoCode is a percentage discount. Code is stored uppercase.
type PromoCode struct {
	ID              string
	Code            string
	DiscountPercent int
	MaxUses         *int // nil = unlimited
	UsedCount       int
	IsActive        bool
	ExpiresAt       *time.Time
	CreatedAt       time.Time
}

func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func NewPromoCode(code string, discountPercent int, maxUses *int, expiresAt *time.Time) (*PromoCode, error) {
	code = NormalizePromoCode(code)
	if code == "" || discountPercent < 1 || discountPercent > 100 {
		return nil, domain.ErrInvalidArgument
	}
	if maxUses != nil && *maxUses < 1 {
		return nil, domain.ErrInvalidArgument
	}
	return &PromoCode{
		ID:              uuid.NewString(),
		Code:            code,
		DiscountPercent: discountPercent,
		MaxUses:         maxUses,
		IsActive:        true,
		ExpiresAt:       expiresAt,
		CreatedAt:       time.Now(),
	}, nil
}

// Check reports why the code cannot be redeemed at now, or nil when it is usable.
func (p *PromoCode) Check(now time.Time) error {
	if p == nil || !p.IsActive {
		return domain.ErrPromoInvalid
	}
	if p.ExpiresAt != nil && !p.ExpiresAt.After(now) {
		return domain.ErrPromoExpired
	}
	if p.MaxUses != nil && p.UsedCount >= *p.MaxUses {
		return domain.ErrPromoExhausted
	}
	return nil
}

func (p *PromoCode) Usable(now time.Time) bool { return p.Check(now) == nil }
