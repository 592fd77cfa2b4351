package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"digital-storefront/internal/domain"
	"digital-storefront/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*RazorpayGateway)(nil)

// RazorpayGateway opens orders through the Orders REST API. Credentials are
// supplied per call so rotated keys apply without a restart.
type RazorpayGateway struct {
	baseURL string
	client  *http.Client
}

func NewRazorpayGateway(baseURL string, timeout time.Duration) *RazorpayGateway {
	if baseURL == "" {
		baseURL = "https://api.razorpay.com"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RazorpayGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *RazorpayGateway) Name() string { return "razorpay" }

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder calls POST /v1/orders with basic auth (key id, key secret).
func (g *RazorpayGateway) CreateOrder(ctx context.Context, creds adapter.GatewayCredentials, in adapter.CreateOrderRequest) (*adapter.GatewayOrder, error) {
	if !creds.Complete() {
		return nil, domain.ErrGatewayNotConfigured
	}
	if in.Amount <= 0 || in.Currency == "" {
		return nil, domain.ErrInvalidArgument
	}

	payload := map[string]any{
		"amount":   in.Amount,
		"currency": in.Currency,
		"receipt":  in.Receipt,
	}
	if len(in.Notes) > 0 {
		payload["notes"] = in.Notes
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/orders", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(creds.KeyID, creds.KeySecret)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrGatewayUnavailable, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: gateway rejected credentials", domain.ErrGatewayNotConfigured)
	}
	if resp.StatusCode/100 != 2 {
		var e razorpayError
		_ = json.Unmarshal(body, &e)
		return nil, fmt.Errorf("%w: status %d: %s %s", domain.ErrGatewayUnavailable, resp.StatusCode, e.Error.Code, e.Error.Description)
	}

	var out struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Receipt  string `json:"receipt"`
		Status   string `json:"status"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: decode order: %v", domain.ErrGatewayUnavailable, err)
	}
	if out.ID == "" {
		return nil, errors.New("razorpay: order id missing in response")
	}
	return &adapter.GatewayOrder{
		ID:       out.ID,
		Amount:   out.Amount,
		Currency: out.Currency,
		Receipt:  out.Receipt,
		Status:   out.Status,
	}, nil
}
