package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"digital-storefront/internal/domain"
	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/infra/invoice"
	"digital-storefront/internal/infra/logging"
)

type productView struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Type        string  `json:"type"`
	ImageURL    *string `json:"imageUrl,omitempty"`
}

func toProductView(p *model.Product) productView {
	return productView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Type:        string(p.Type),
		ImageURL:    p.ImageURL,
	}
}

// handleListProducts never exposes fulfillment payloads.
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.deps.Products.List(r.Context(), true)
	if err != nil {
		s.logFailure(r, err, "list products failed")
		writeError(w, err)
		return
	}
	items := make([]productView, 0, len(products))
	for _, p := range products {
		items = append(items, toProductView(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type promoValidateRequest struct {
	Code string `json:"code"`
}

type promoValidateResponse struct {
	Valid           bool   `json:"valid"`
	Code            string `json:"code,omitempty"`
	DiscountPercent int    `json:"discountPercent,omitempty"`
	Message         string `json:"message"`
}

// handlePromoValidate is informational only; it never consumes a use.
func (s *Server) handlePromoValidate(w http.ResponseWriter, r *http.Request) {
	var req promoValidateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	promo, err := s.deps.Promos.Validate(r.Context(), req.Code)
	if err != nil {
		status, msg := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logFailure(r, err, "promo validation failed")
		}
		if errors.Is(err, domain.ErrInvalidArgument) {
			msg = "promo code is required"
		}
		writeJSON(w, status, promoValidateResponse{Valid: false, Message: msg})
		return
	}
	writeJSON(w, http.StatusOK, promoValidateResponse{
		Valid:           true,
		Code:            promo.Code,
		DiscountPercent: promo.DiscountPercent,
		Message:         fmt.Sprintf("%d%% discount applied!", promo.DiscountPercent),
	})
}

// handleInvoice serves HTML by default and a PDF with ?format=pdf.
// The invoice id is the only access control, so malformed ids are plain 404s.
func (s *Server) handleInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, domain.ErrInvoiceNotFound)
	if !ok {
		return
	}

	inv, err := s.deps.Invoices.Get(r.Context(), id)
	if err != nil {
		s.logFailure(r, err, "invoice lookup failed")
		writeError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "pdf" {
		doc, err := invoice.RenderPDF(s.opts.Seller, inv)
		if err != nil {
			logging.With(r.Context(), s.log).Error().Err(err).Str("invoice", inv.InvoiceNumber).Msg("pdf render failed")
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", inv.InvoiceNumber+".pdf"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(doc)
		return
	}

	var buf bytes.Buffer
	if err := invoice.RenderHTML(&buf, s.opts.Seller, inv); err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Str("invoice", inv.InvoiceNumber).Msg("html render failed")
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type purchaseView struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	ProductType string    `json:"productType"`
	AccessLink  string    `json:"accessLink"`
	PurchasedAt time.Time `json:"purchasedAt"`
}

func (s *Server) handlePurchases(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	purchases, err := s.deps.Products.ListPurchases(ctx, PrincipalFrom(ctx).UserID)
	if err != nil {
		s.logFailure(r, err, "list purchases failed")
		writeError(w, err)
		return
	}
	items := make([]purchaseView, 0, len(purchases))
	for _, p := range purchases {
		items = append(items, purchaseView{
			ID:          p.ID,
			ProductID:   p.ProductID,
			ProductName: p.ProductName,
			ProductType: string(p.ProductType),
			AccessLink:  p.AccessLink,
			PurchasedAt: p.PurchasedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"purchases": items})
}
