package web

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"digital-storefront/internal/domain"
	"digital-storefront/internal/infra/logging"
	"digital-storefront/internal/infra/metrics"
)

// WebhookSignatureHeader carries the hex HMAC of the raw webhook body.
const WebhookSignatureHeader = "X-Razorpay-Signature"

type createOrderRequest struct {
	ProductID string `json:"productId"`
	PromoCode string `json:"promoCode,omitempty"`
}

type createOrderResponse struct {
	OrderID         string  `json:"orderId"`
	Amount          int64   `json:"amount"`
	Currency        string  `json:"currency"`
	KeyID           string  `json:"keyId"`
	CustomerEmail   string  `json:"customerEmail"`
	OriginalPrice   float64 `json:"originalPrice"`
	FinalPrice      float64 `json:"finalPrice"`
	DiscountAmount  float64 `json:"discountAmount"`
	DiscountPercent int     `json:"discountPercent,omitempty"`
	PromoCode       string  `json:"promoCode,omitempty"`
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "productId is required"})
		return
	}

	res, err := s.deps.Orders.CreateOrder(ctx, PrincipalFrom(ctx), req.ProductID, req.PromoCode)
	if err != nil {
		s.logFailure(r, err, "create order failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, createOrderResponse{
		OrderID:         res.OrderID,
		Amount:          res.Amount,
		Currency:        res.Currency,
		KeyID:           res.GatewayKeyID,
		CustomerEmail:   res.CustomerEmail,
		OriginalPrice:   res.Pricing.OriginalPrice.InexactFloat64(),
		FinalPrice:      res.Pricing.FinalPrice.InexactFloat64(),
		DiscountAmount:  res.Pricing.DiscountAmount.InexactFloat64(),
		DiscountPercent: res.Pricing.DiscountPercent,
		PromoCode:       res.PromoCode,
	})
}

// verifyRequest accepts the checkout widget's razorpay_* names as well.
type verifyRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`

	GatewayOrderID   string `json:"razorpay_order_id"`
	GatewayPaymentID string `json:"razorpay_payment_id"`
	GatewaySignature string `json:"razorpay_signature"`
}

func (v verifyRequest) fields() (orderID, paymentID, signature string) {
	return firstNonEmpty(v.OrderID, v.GatewayOrderID),
		firstNonEmpty(v.PaymentID, v.GatewayPaymentID),
		firstNonEmpty(v.Signature, v.GatewaySignature)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	fail := func(reason string, err error) {
		metrics.PaymentVerifyRequests.WithLabelValues("fail", reason).Inc()
		metrics.PaymentVerifyDuration.WithLabelValues("fail").Observe(time.Since(start).Seconds())
		writeError(w, err)
	}

	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		fail("bad_json", err)
		return
	}
	orderID, paymentID, signature := req.fields()
	if orderID == "" || paymentID == "" || signature == "" {
		fail("missing_fields", domain.ErrInvalidArgument)
		return
	}

	res, err := s.deps.Payments.Verify(ctx, PrincipalFrom(ctx), orderID, paymentID, signature)
	if err != nil {
		s.logFailure(r, err, "payment verification failed")
		fail(verifyReason(err), err)
		return
	}

	metrics.PaymentVerifyRequests.WithLabelValues("ok", "").Inc()
	metrics.PaymentVerifyDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	body := map[string]any{"success": true, "orderId": res.Transaction.GatewayOrderID}
	if f := res.Fulfillment; f != nil && f.Invoice != nil {
		body["invoiceId"] = f.Invoice.ID
		body["invoiceNumber"] = f.Invoice.InvoiceNumber
	}
	writeJSON(w, http.StatusOK, body)
}

func verifyReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidSignature):
		return "bad_signature"
	case errors.Is(err, domain.ErrTransactionNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrGatewayNotConfigured):
		return "not_configured"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "missing_fields"
	default:
		return "internal"
	}
}

// handleWebhook answers 400 on a bad signature and 500 when no secret is configured.
// Everything else is acknowledged so the gateway stops retrying.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logging.With(ctx, s.log)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "unreadable body"})
		return
	}

	outcome, err := s.deps.Webhooks.Handle(ctx, body, r.Header.Get(WebhookSignatureHeader))
	switch {
	case errors.Is(err, domain.ErrInvalidSignature):
		log.Warn().Str("remote", clientIP(r)).Msg("webhook signature rejected")
		writeError(w, err)
		return
	case errors.Is(err, domain.ErrWebhookNotConfigured):
		log.Error().Msg("webhook received but no webhook secret is configured")
		writeError(w, err)
		return
	case err != nil:
		log.Error().Err(err).Msg("webhook processing failed, acknowledging")
	default:
		log.Debug().Str("outcome", string(outcome)).Msg("webhook processed")
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (s *Server) logFailure(r *http.Request, err error, msg string) {
	status, _ := statusFor(err)
	ev := logging.With(r.Context(), s.log).Warn()
	if status >= http.StatusInternalServerError {
		ev = logging.With(r.Context(), s.log).Error()
	}
	ev.Err(err).Int("status", status).Msg(msg)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
