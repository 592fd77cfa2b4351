package payment

import (
	"context"
	"fmt"
	"sync"

	"digital-storefront/internal/domain"
	"digital-storefront/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopPaymentGateway)(nil)

// NoopPaymentGateway is a simple in-memory gateway for dev mode and tests.
type NoopPaymentGateway struct {
	mu     sync.Mutex
	seq    int64
	orders map[string]adapter.GatewayOrder
}

func NewNoopPaymentGateway() *NoopPaymentGateway {
	return &NoopPaymentGateway{
		orders: make(map[string]adapter.GatewayOrder),
	}
}

func (g *NoopPaymentGateway) Name() string { return "noop" }

func (g *NoopPaymentGateway) next() string {
	g.seq++
	return fmt.Sprintf("order_noop%d", g.seq)
}

func (g *NoopPaymentGateway) CreateOrder(ctx context.Context, creds adapter.GatewayCredentials, in adapter.CreateOrderRequest) (*adapter.GatewayOrder, error) {
	if !creds.Complete() {
		return nil, domain.ErrGatewayNotConfigured
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	o := adapter.GatewayOrder{
		ID:       g.next(),
		Amount:   in.Amount,
		Currency: in.Currency,
		Receipt:  in.Receipt,
		Status:   "created",
	}
	g.orders[o.ID] = o
	return &o, nil
}

// Order returns a previously created order, for assertions.
func (g *NoopPaymentGateway) Order(id string) (adapter.GatewayOrder, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	o, ok := g.orders[id]
	return o, ok
}
