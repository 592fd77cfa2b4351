//go:build !integration

package web

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"digital-storefront/internal/domain"
	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/infra/invoice"
	"digital-storefront/internal/usecase"
)

const (
	testJWTSecret = "test-session-secret"
	testAdminKey  = "admin-key"
)

var buyer = model.Principal{UserID: "user-1", Email: "buyer@example.com", Name: "Asha"}

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// ---- Use case fakes ----

type fakeOrders struct {
	mu  sync.Mutex
	got []model.Principal

	CreateFunc func(ctx context.Context, p model.Principal, productID, promo string) (*usecase.OrderResult, error)
}

func (f *fakeOrders) CreateOrder(ctx context.Context, p model.Principal, productID, promo string) (*usecase.OrderResult, error) {
	f.mu.Lock()
	f.got = append(f.got, p)
	f.mu.Unlock()
	return f.CreateFunc(ctx, p, productID, promo)
}

type fakePayments struct {
	usecase.PaymentUseCase

	verified [][3]string
	VerifyErr error
	Listed    model.TransactionStatus
}

func (f *fakePayments) Verify(ctx context.Context, p model.Principal, orderID, paymentID, signature string) (*usecase.VerifyResult, error) {
	f.verified = append(f.verified, [3]string{orderID, paymentID, signature})
	if f.VerifyErr != nil {
		return nil, f.VerifyErr
	}
	return &usecase.VerifyResult{
		Transaction: &model.Transaction{GatewayOrderID: orderID, Status: model.TransactionSuccess},
		Fulfillment: &usecase.FulfillmentResult{Invoice: &model.Invoice{ID: "inv-1", InvoiceNumber: "INV-20260101-000001"}},
	}, nil
}

func (f *fakePayments) ListTransactions(ctx context.Context, status model.TransactionStatus, limit int) ([]*model.Transaction, error) {
	f.Listed = status
	return []*model.Transaction{{ID: "t1", Status: model.TransactionPending, GatewayOrderID: "order_1"}}, nil
}

type fakeWebhooks struct {
	Body      []byte
	Signature string
	Outcome   usecase.WebhookOutcome
	Err       error
}

func (f *fakeWebhooks) Handle(ctx context.Context, body []byte, signature string) (usecase.WebhookOutcome, error) {
	f.Body, f.Signature = body, signature
	return f.Outcome, f.Err
}

type fakePromos struct {
	usecase.PromoUseCase

	codes   map[string]*model.PromoCode
	Created []string
}

func (f *fakePromos) Validate(ctx context.Context, code string) (*model.PromoCode, error) {
	code = model.NormalizePromoCode(code)
	if code == "" {
		return nil, domain.ErrInvalidArgument
	}
	p, ok := f.codes[code]
	if !ok {
		return nil, domain.ErrPromoInvalid
	}
	if err := p.Check(time.Now()); err != nil {
		return nil, err
	}
	return p, nil
}

func (f *fakePromos) Create(ctx context.Context, code string, pct int, maxUses *int, expiresAt *time.Time) (*model.PromoCode, error) {
	p, err := model.NewPromoCode(code, pct, maxUses, expiresAt)
	if err != nil {
		return nil, err
	}
	f.Created = append(f.Created, p.Code)
	return p, nil
}

type fakeProducts struct {
	usecase.ProductUseCase

	items     []*model.Product
	purchases map[string][]*model.UserPurchase
	lastInput usecase.ProductInput
}

func (f *fakeProducts) List(ctx context.Context, onlyActive bool) ([]*model.Product, error) {
	var out []*model.Product
	for _, p := range f.items {
		if onlyActive && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProducts) Create(ctx context.Context, in usecase.ProductInput) (*model.Product, error) {
	f.lastInput = in
	if in.Name == nil || in.Price == nil || in.Type == nil {
		return nil, domain.ErrInvalidArgument
	}
	var payload string
	if in.Payload != nil {
		payload = *in.Payload
	}
	return model.NewProduct(*in.Name, "", *in.Price, *in.Type, payload)
}

func (f *fakeProducts) ListPurchases(ctx context.Context, userID string) ([]*model.UserPurchase, error) {
	return f.purchases[userID], nil
}

type fakeInvoices struct {
	byID map[string]*model.Invoice
}

func (f *fakeInvoices) Get(ctx context.Context, id string) (*model.Invoice, error) {
	inv, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrInvoiceNotFound
	}
	return inv, nil
}

type fakeGateway struct {
	usecase.GatewayConfigUseCase

	stored map[string]string
}

func (f *fakeGateway) Store(ctx context.Context, key, value string) error {
	if !model.IsKnownPaymentConfigKey(key) || value == "" {
		return domain.ErrInvalidArgument
	}
	f.stored[key] = value
	return nil
}

func (f *fakeGateway) List(ctx context.Context) ([]*model.PaymentConfigEntry, error) {
	var out []*model.PaymentConfigEntry
	for k := range f.stored {
		out = append(out, &model.PaymentConfigEntry{Key: k, Value: "********"})
	}
	return out, nil
}

type fakeUsers struct {
	profiles map[string]*model.Profile
	updated  []string
}

func (f *fakeUsers) List(ctx context.Context, limit int) ([]*model.Profile, error) {
	var out []*model.Profile
	for _, p := range f.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeUsers) Update(ctx context.Context, id string, banned, admin *bool) (*model.Profile, error) {
	f.updated = append(f.updated, id)
	p, ok := f.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if banned == nil && admin == nil {
		return nil, domain.ErrInvalidArgument
	}
	if banned != nil {
		p.IsBanned = *banned
	}
	if admin != nil {
		p.IsAdmin = *admin
	}
	return p, nil
}

type fakeStats struct {
	Stats *model.DashboardStats
}

func (f *fakeStats) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	return f.Stats, nil
}

// countingLimiter allows the first limit hits per key.
type countingLimiter struct {
	mu   sync.Mutex
	hits map[string]int
	Err  error
}

func (l *countingLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if l.Err != nil {
		return false, l.Err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hits[key]++
	return l.hits[key] <= limit, nil
}

// ---- Harness ----

type testAPI struct {
	orders   *fakeOrders
	payments *fakePayments
	webhooks *fakeWebhooks
	promos   *fakePromos
	products *fakeProducts
	invoices *fakeInvoices
	gateway  *fakeGateway
	users    *fakeUsers
	stats    *fakeStats
	limiter  *countingLimiter
	auth     *AuthManager
	server   *Server
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	api := &testAPI{
		orders:   &fakeOrders{},
		payments: &fakePayments{},
		webhooks: &fakeWebhooks{Outcome: usecase.WebhookFulfilled},
		promos:   &fakePromos{codes: map[string]*model.PromoCode{}},
		products: &fakeProducts{purchases: map[string][]*model.UserPurchase{}},
		invoices: &fakeInvoices{byID: map[string]*model.Invoice{}},
		gateway:  &fakeGateway{stored: map[string]string{}},
		users:    &fakeUsers{profiles: map[string]*model.Profile{}},
		stats:    &fakeStats{Stats: &model.DashboardStats{Currency: "INR"}},
		limiter:  &countingLimiter{hits: map[string]int{}},
		auth:     NewAuthManager(testJWTSecret, "session"),
	}
	api.server = NewServer(Deps{
		Orders:   api.orders,
		Payments: api.payments,
		Webhooks: api.webhooks,
		Promos:   api.promos,
		Products: api.products,
		Invoices: api.invoices,
		Gateway:  api.gateway,
		Users:    api.users,
		Stats:    api.stats,
	}, Options{
		AdminAPIKey: testAdminKey,
		Seller:      invoice.Seller{Name: "Test Store", Email: "billing@test.store"},
		PromoLimit:  3,
		PromoWindow: time.Minute,
	}, api.auth, api.limiter, newTestLogger())
	return api
}

func (a *testAPI) token(t *testing.T) string {
	t.Helper()
	tok, err := a.auth.Mint(buyer, time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return tok
}
