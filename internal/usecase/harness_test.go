//go:build !integration

package usecase_test

import (
	"context"
	"testing"

	"digital-storefront/internal/config"
	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/usecase"
)

const (
	testKeyID         = "rzp_test_key"
	testKeySecret     = "rzp_test_secret"
	testWebhookSecret = "whsec_test"
)

var buyer = model.Principal{UserID: "user-1", Email: "buyer@example.com", Name: "Asha"}

// storefront wires every payment use case over the in-memory mocks.
type storefront struct {
	products     *MockProductRepo
	promos       *MockPromoRepo
	transactions *MockTransactionRepo
	purchases    *MockPurchaseRepo
	invoices     *MockInvoiceRepo
	profiles     *MockProfileRepo
	stored       *MockPaymentConfigRepo
	gateway      *MockPaymentGateway
	bot          *MockTelegramBot
	mailer       *MockMailer
	locker       *MockLocker
	tm           *MockTxManager

	gwConfig    usecase.GatewayConfigUseCase
	promoUC     usecase.PromoUseCase
	orders      usecase.OrderUseCase
	fulfillment usecase.FulfillmentUseCase
	payments    usecase.PaymentUseCase
	webhooks    usecase.WebhookUseCase
}

func newStorefront(t *testing.T, payCfg config.PaymentConfig) *storefront {
	t.Helper()
	logger := newTestLogger()
	s := &storefront{
		products:     NewMockProductRepo(),
		promos:       NewMockPromoRepo(),
		transactions: NewMockTransactionRepo(),
		purchases:    NewMockPurchaseRepo(),
		invoices:     NewMockInvoiceRepo(),
		profiles:     NewMockProfileRepo(),
		stored:       NewMockPaymentConfigRepo(),
		gateway:      &MockPaymentGateway{},
		bot:          &MockTelegramBot{},
		mailer:       &MockMailer{},
		locker:       NewMockLocker(),
		tm:           &MockTxManager{},
	}
	s.gwConfig = usecase.NewGatewayConfigUseCase(payCfg, s.stored, nil, logger)
	s.promoUC = usecase.NewPromoUseCase(s.promos, logger)
	s.orders = usecase.NewOrderUseCase(s.products, s.purchases, s.transactions, s.profiles, s.promoUC, s.gateway, s.gwConfig, "INR", logger)
	s.fulfillment = usecase.NewFulfillmentUseCase(
		s.products, s.profiles, s.purchases, s.invoices, s.promos, s.tm,
		s.locker, s.bot, s.mailer, nil,
		usecase.FulfillmentConfig{PublicURL: "https://shop.example/", AdminChatID: 42},
		logger,
	)
	s.payments = usecase.NewPaymentUseCase(s.transactions, s.gwConfig, s.fulfillment, logger)
	s.webhooks = usecase.NewWebhookUseCase(s.transactions, s.gwConfig, s.fulfillment, logger)
	return s
}

func configuredPayments() config.PaymentConfig {
	return config.PaymentConfig{KeyID: testKeyID, KeySecret: testKeySecret, WebhookSecret: testWebhookSecret}
}

func (s *storefront) addProduct(t *testing.T, p *model.Product) *model.Product {
	t.Helper()
	if err := s.products.Save(context.Background(), nil, p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func (s *storefront) addPromo(t *testing.T, code string, percent int, maxUses *int, used int) *model.PromoCode {
	t.Helper()
	p, err := model.NewPromoCode(code, percent, maxUses, nil)
	if err != nil {
		t.Fatalf("new promo: %v", err)
	}
	p.UsedCount = used
	if err := s.promos.Save(context.Background(), nil, p); err != nil {
		t.Fatalf("seed promo: %v", err)
	}
	return p
}

// order issues a pending transaction for buyer and returns its gateway order id.
func (s *storefront) order(t *testing.T, productID, promo string) *usecase.OrderResult {
	t.Helper()
	res, err := s.orders.CreateOrder(context.Background(), buyer, productID, promo)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return res
}
