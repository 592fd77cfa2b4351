package invoice

import (
	"digital-storefront/internal/domain/model"
)

// Seller identifies the store printed on every invoice.
type Seller struct {
	Name  string
	Email string
	URL   string
}

type document struct {
	Seller        Seller
	Number        string
	IssuedOn      string
	CustomerName  string
	CustomerEmail string
	ProductName   string
	Currency      string
	Subtotal      string
	Discount      string
	PromoCode     string
	Total         string
	PaymentID     string
	HasDiscount   bool
}

func newDocument(seller Seller, inv *model.Invoice) document {
	d := document{
		Seller:        seller,
		Number:        inv.InvoiceNumber,
		IssuedOn:      inv.CreatedAt.Format("02 Jan 2006"),
		CustomerName:  inv.CustomerEmail,
		CustomerEmail: inv.CustomerEmail,
		ProductName:   inv.ProductName,
		Currency:      inv.Currency,
		Subtotal:      inv.Subtotal().StringFixed(2),
		Discount:      inv.DiscountAmount.StringFixed(2),
		Total:         inv.Amount.StringFixed(2),
		HasDiscount:   inv.DiscountAmount.IsPositive(),
	}
	if inv.CustomerName != nil && *inv.CustomerName != "" {
		d.CustomerName = *inv.CustomerName
	}
	if inv.PromoCode != nil {
		d.PromoCode = *inv.PromoCode
	}
	if inv.GatewayPaymentID != nil {
		d.PaymentID = *inv.GatewayPaymentID
	}
	return d
}
