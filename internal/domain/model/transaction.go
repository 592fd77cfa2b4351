package model

import (
	"time"

	"digital-storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionPending TransactionStatus = "pending" // gateway order opened, awaiting payment
	TransactionSuccess TransactionStatus = "success" // terminal
	TransactionFailed  TransactionStatus = "failed"  // rejected signature, gateway failure or reaped
)

func (s TransactionStatus) Valid() bool {
	return s == TransactionPending || s == TransactionSuccess || s == TransactionFailed
}

// Transaction is a single payment attempt, keyed by the gateway order id.
type Transaction struct {
	ID               string
	UserID           string
	ProductID        string
	Amount           decimal.Decimal // final price charged
	DiscountAmount   decimal.Decimal
	Currency         string
	PromoCodeID      *string
	Status           TransactionStatus
	GatewayOrderID   string
	GatewayPaymentID *string
	GatewaySignature *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func NewPendingTransaction(userID, productID, orderID, currency string, pricing Pricing, promoCodeID *string) (*Transaction, error) {
	if userID == "" || productID == "" || orderID == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Transaction{
		ID:             uuid.NewString(),
		UserID:         userID,
		ProductID:      productID,
		Amount:         pricing.FinalPrice,
		DiscountAmount: pricing.DiscountAmount,
		Currency:       currency,
		PromoCodeID:    promoCodeID,
		Status:         TransactionPending,
		GatewayOrderID: orderID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// CanTransitionTo encodes the status machine: success is absorbing, and a
// captured payment may still move a failed attempt to success.
func (t *Transaction) CanTransitionTo(next TransactionStatus) bool {
	switch t.Status {
	case TransactionPending:
		return next == TransactionSuccess || next == TransactionFailed
	case TransactionFailed:
		return next == TransactionSuccess
	default:
		return false
	}
}
