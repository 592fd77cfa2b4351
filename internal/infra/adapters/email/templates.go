package email

import (
	"bytes"
	htmltemplate "html/template"
	"text/template"

	"digital-storefront/internal/domain/ports/adapter"
)

type purchaseView struct {
	adapter.PurchaseEmail
	StoreName  string
	IsTelegram bool
}

type invoiceView struct {
	adapter.InvoiceEmail
	StoreName string
	IssuedOn  string
}

var purchaseText = template.Must(template.New("purchase.txt").Parse(`Hi {{.CustomerName}},

Thank you for your purchase from {{.StoreName}}.

Product: {{.ProductName}}
Amount paid: {{.Currency}} {{.Amount}}

{{if .IsTelegram}}Join the group: {{.AccessLink}}{{else}}Download: {{.AccessLink}}{{end}}
{{if .DashboardURL}}
Your purchases are always available at {{.DashboardURL}}
{{end}}`))

var purchaseHTML = htmltemplate.Must(htmltemplate.New("purchase.html").Parse(`<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#222">
<h2>Thank you for your purchase!</h2>
<p>Hi {{.CustomerName}},</p>
<p>Your order from <strong>{{.StoreName}}</strong> is complete.</p>
<table cellpadding="6">
<tr><td>Product</td><td><strong>{{.ProductName}}</strong></td></tr>
<tr><td>Amount paid</td><td>{{.Currency}} {{.Amount}}</td></tr>
</table>
<p><a href="{{.AccessLink}}" style="background:#2563eb;color:#fff;padding:10px 18px;border-radius:6px;text-decoration:none">{{if .IsTelegram}}Join Telegram group{{else}}Download now{{end}}</a></p>
{{if .DashboardURL}}<p>You can find all your purchases in your <a href="{{.DashboardURL}}">dashboard</a>.</p>{{end}}
</body></html>`))

var invoiceText = template.Must(template.New("invoice.txt").Parse(`Invoice {{.InvoiceNumber}}
{{.StoreName}}
Date: {{.IssuedOn}}

Billed to: {{.CustomerName}} <{{.To}}>

{{.ProductName}}
Subtotal: {{.Currency}} {{.Subtotal}}
{{if .PromoCode}}Discount ({{.PromoCode}}): -{{.Currency}} {{.DiscountAmount}}
{{end}}Total paid: {{.Currency}} {{.Amount}}
{{if .PaymentID}}Payment ID: {{.PaymentID}}
{{end}}{{if .InvoiceURL}}
View online: {{.InvoiceURL}}
{{end}}`))

var invoiceHTML = htmltemplate.Must(htmltemplate.New("invoice.html").Parse(`<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#222">
<h2>Invoice {{.InvoiceNumber}}</h2>
<p>{{.StoreName}} &middot; {{.IssuedOn}}</p>
<p>Billed to: {{.CustomerName}} &lt;{{.To}}&gt;</p>
<table cellpadding="6" style="border-collapse:collapse">
<tr><td>{{.ProductName}}</td><td align="right">{{.Currency}} {{.Subtotal}}</td></tr>
{{if .PromoCode}}<tr><td>Discount ({{.PromoCode}})</td><td align="right">-{{.Currency}} {{.DiscountAmount}}</td></tr>{{end}}
<tr><td><strong>Total paid</strong></td><td align="right"><strong>{{.Currency}} {{.Amount}}</strong></td></tr>
</table>
{{if .PaymentID}}<p>Payment ID: {{.PaymentID}}</p>{{end}}
{{if .InvoiceURL}}<p><a href="{{.InvoiceURL}}">View or download this invoice</a></p>{{end}}
</body></html>`))

// renderPurchase returns the subject, plain-text and HTML bodies.
func renderPurchase(storeName string, msg adapter.PurchaseEmail) (string, string, string, error) {
	v := purchaseView{PurchaseEmail: msg, StoreName: storeName, IsTelegram: msg.ProductType == "telegram"}
	var txt, html bytes.Buffer
	if err := purchaseText.Execute(&txt, v); err != nil {
		return "", "", "", err
	}
	if err := purchaseHTML.Execute(&html, v); err != nil {
		return "", "", "", err
	}
	return "Your purchase: " + msg.ProductName, txt.String(), html.String(), nil
}

func renderInvoice(storeName string, msg adapter.InvoiceEmail) (string, string, string, error) {
	v := invoiceView{InvoiceEmail: msg, StoreName: storeName, IssuedOn: msg.IssuedAt.Format("02 Jan 2006")}
	var txt, html bytes.Buffer
	if err := invoiceText.Execute(&txt, v); err != nil {
		return "", "", "", err
	}
	if err := invoiceHTML.Execute(&html, v); err != nil {
		return "", "", "", err
	}
	return "Invoice " + msg.InvoiceNumber + " from " + storeName, txt.String(), html.String(), nil
}
