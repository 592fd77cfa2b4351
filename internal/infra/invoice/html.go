package invoice

import (
	"html/template"
	"io"

	"digital-storefront/internal/domain/model"
)

var page = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Invoice {{.Number}}</title>
<style>
body{font-family:Arial,Helvetica,sans-serif;color:#1f2937;max-width:720px;margin:40px auto;padding:0 16px}
h1{font-size:28px;margin:0}
.meta,.parties{display:flex;justify-content:space-between;margin:24px 0}
table{width:100%;border-collapse:collapse;margin-top:16px}
th,td{padding:10px;border-bottom:1px solid #e5e7eb;text-align:left}
td.num,th.num{text-align:right}
tfoot td{font-weight:bold}
.muted{color:#6b7280;font-size:13px}
@media print{.noprint{display:none}}
</style>
</head>
<body>
<div class="meta">
  <div><h1>Invoice</h1><div class="muted">{{.Number}}</div></div>
  <div class="muted">Issued {{.IssuedOn}}</div>
</div>
<div class="parties">
  <div><strong>{{.Seller.Name}}</strong>{{if .Seller.Email}}<br>{{.Seller.Email}}{{end}}{{if .Seller.URL}}<br>{{.Seller.URL}}{{end}}</div>
  <div><strong>Billed to</strong><br>{{.CustomerName}}<br>{{.CustomerEmail}}</div>
</div>
<table>
  <thead><tr><th>Item</th><th class="num">Amount ({{.Currency}})</th></tr></thead>
  <tbody>
    <tr><td>{{.ProductName}}</td><td class="num">{{.Subtotal}}</td></tr>
    {{if .HasDiscount}}<tr><td>Discount{{if .PromoCode}} ({{.PromoCode}}){{end}}</td><td class="num">-{{.Discount}}</td></tr>{{end}}
  </tbody>
  <tfoot><tr><td>Total paid</td><td class="num">{{.Total}}</td></tr></tfoot>
</table>
{{if .PaymentID}}<p class="muted">Payment reference: {{.PaymentID}}</p>{{end}}
<p class="noprint"><a href="?format=pdf">Download PDF</a></p>
</body>
</html>`))

// RenderHTML writes a printable HTML invoice.
func RenderHTML(w io.Writer, seller Seller, inv *model.Invoice) error {
	return page.Execute(w, newDocument(seller, inv))
}
