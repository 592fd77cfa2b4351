package invoice

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"digital-storefront/internal/domain/model"
)

// RenderPDF builds a single-page A4 invoice.
func RenderPDF(seller Seller, inv *model.Invoice) ([]byte, error) {
	d := newDocument(seller, inv)

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()
	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(8, "Invoice", props.Text{Size: 20, Style: fontstyle.Bold, Align: align.Left}),
		text.NewCol(4, d.Number, props.Text{Size: 10, Align: align.Right, Top: 4}),
	)
	m.AddRow(8,
		col.New(8),
		text.NewCol(4, "Issued "+d.IssuedOn, props.Text{Size: 9, Align: align.Right}),
	)

	m.AddRow(30,
		col.New(6).Add(
			text.New(d.Seller.Name, props.Text{Style: fontstyle.Bold}),
			text.New(d.Seller.Email, props.Text{Top: 5, Size: 9}),
			text.New(d.Seller.URL, props.Text{Top: 10, Size: 9}),
		),
		col.New(6).Add(
			text.New("Billed to", props.Text{Style: fontstyle.Bold, Align: align.Right}),
			text.New(d.CustomerName, props.Text{Top: 5, Size: 9, Align: align.Right}),
			text.New(d.CustomerEmail, props.Text{Top: 10, Size: 9, Align: align.Right}),
		),
	)

	m.AddRow(10,
		text.NewCol(8, "Item", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(4, fmt.Sprintf("Amount (%s)", d.Currency), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		text.NewCol(8, d.ProductName, props.Text{Size: 9}),
		text.NewCol(4, d.Subtotal, props.Text{Size: 9, Align: align.Right}),
	)
	if d.HasDiscount {
		label := "Discount"
		if d.PromoCode != "" {
			label += " (" + d.PromoCode + ")"
		}
		m.AddRow(10,
			text.NewCol(8, label, props.Text{Size: 9}),
			text.NewCol(4, "-"+d.Discount, props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(12,
		col.New(6),
		text.NewCol(3, "Total paid", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(3, d.Total, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)
	if d.PaymentID != "" {
		m.AddRow(10, text.NewCol(12, "Payment reference: "+d.PaymentID, props.Text{Size: 8, Top: 4}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate invoice pdf: %w", err)
	}
	return doc.GetBytes(), nil
}
