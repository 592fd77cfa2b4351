package adapter

import (
	"context"
	"time"
)

// PurchaseEmail confirms access to a purchased product.
type PurchaseEmail struct {
	To           string
	CustomerName string
	ProductName  string
	ProductType  string
	AccessLink   string
	Amount       string
	Currency     string
	DashboardURL string
}

// InvoiceEmail carries the invoice summary and a link to the rendered document.
type InvoiceEmail struct {
	To             string
	CustomerName   string
	InvoiceNumber  string
	ProductName    string
	Subtotal       string
	DiscountAmount string
	PromoCode      string
	Amount         string
	Currency       string
	PaymentID      string
	IssuedAt       time.Time
	InvoiceURL     string
}

// Mailer delivers transactional email. Callers treat failures as non-fatal.
type Mailer interface {
	SendPurchaseEmail(ctx context.Context, msg PurchaseEmail) error
	SendInvoiceEmail(ctx context.Context, msg InvoiceEmail) error
}
