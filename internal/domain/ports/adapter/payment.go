package adapter

import "context"

// GatewayCredentials are resolved per request; the admin may rotate them at runtime.
type GatewayCredentials struct {
	KeyID     string // public, handed to the checkout widget
	KeySecret string // signs payment results
}

func (c GatewayCredentials) Complete() bool { return c.KeyID != "" && c.KeySecret != "" }

// CreateOrderRequest opens a remote order. Amount is in minor units.
type CreateOrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// GatewayOrder is the remote order handle returned to the checkout widget.
type GatewayOrder struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
}

// PaymentGateway is the hex port for payment providers.
type PaymentGateway interface {
	Name() string

	// CreateOrder opens a remote order the hosted checkout will collect against.
	CreateOrder(ctx context.Context, creds GatewayCredentials, req CreateOrderRequest) (*GatewayOrder, error)
}
