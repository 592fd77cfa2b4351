package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"digital-storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultInvoiceNumberTemplate renders e.g. INV-20250314-000042.
const DefaultInvoiceNumberTemplate = "INV-{YYYY}{MM}{DD}-{SEQ6}"

var seqPadRe = regexp.MustCompile(`\{SEQ(\d+)\}`)

// Invoice snapshots what was sold, to whom, at which price. One per transaction.
type Invoice struct {
	ID               string
	InvoiceNumber    string
	TransactionID    string
	UserID           string
	ProductID        string
	ProductName      string
	CustomerEmail    string
	CustomerName     *string
	Amount           decimal.Decimal // charged
	DiscountAmount   decimal.Decimal
	Currency         string
	PromoCode        *string
	GatewayPaymentID *string
	CreatedAt        time.Time
}

// Subtotal is the list price before discount.
func (i *Invoice) Subtotal() decimal.Decimal {
	return i.Amount.Add(i.DiscountAmount)
}

// NewInvoice snapshots a successful transaction.
func NewInvoice(number string, txn *Transaction, product *Product, customer *Profile, promoCode *string) (*Invoice, error) {
	if number == "" || txn == nil || product == nil {
		return nil, domain.ErrInvalidArgument
	}
	inv := &Invoice{
		ID:               uuid.NewString(),
		InvoiceNumber:    number,
		TransactionID:    txn.ID,
		UserID:           txn.UserID,
		ProductID:        product.ID,
		ProductName:      product.Name,
		Amount:           txn.Amount,
		DiscountAmount:   txn.DiscountAmount,
		Currency:         txn.Currency,
		PromoCode:        promoCode,
		GatewayPaymentID: txn.GatewayPaymentID,
		CreatedAt:        time.Now(),
	}
	if customer != nil {
		inv.CustomerEmail = customer.Email
		inv.CustomerName = customer.FullName
	}
	return inv, nil
}

// FormatInvoiceNumber expands {YYYY} {YY} {MM} {DD} {SEQ} and {SEQn} (zero padded to n).
func FormatInvoiceNumber(template string, issuedAt time.Time, seq int64) (string, error) {
	if template == "" {
		return "", fmt.Errorf("invoice number template is empty")
	}
	if seq <= 0 {
		return "", fmt.Errorf("invalid invoice sequence: %d", seq)
	}

	out := strings.NewReplacer(
		"{YYYY}", issuedAt.Format("2006"),
		"{YY}", issuedAt.Format("06"),
		"{MM}", issuedAt.Format("01"),
		"{DD}", issuedAt.Format("02"),
		"{SEQ}", strconv.FormatInt(seq, 10),
	).Replace(template)

	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		width, err := strconv.Atoi(seqPadRe.FindStringSubmatch(m)[1])
		if err != nil || width <= 0 {
			return m
		}
		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.ContainsAny(out, "{}") {
		return "", fmt.Errorf("unresolved token in invoice format: %s", out)
	}
	return out, nil
}
