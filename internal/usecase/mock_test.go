//go:build !integration

package usecase_test

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"digital-storefront/internal/domain"
	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/domain/ports/adapter"
	"digital-storefront/internal/domain/ports/repository"
	"digital-storefront/internal/infra/worker"
)

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }

// =============================
// Repositories
// =============================

// ---- Products ----

type MockProductRepo struct {
	mu   sync.Mutex
	data map[string]*model.Product

	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Product, error)
}

var _ repository.ProductRepository = (*MockProductRepo)(nil)

func NewMockProductRepo() *MockProductRepo {
	return &MockProductRepo{data: map[string]*model.Product{}}
}

func (r *MockProductRepo) Save(ctx context.Context, tx repository.Tx, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.data[p.ID] = &cp
	return nil
}

func (r *MockProductRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data), nil
}

func (r *MockProductRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Product, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MockProductRepo) List(ctx context.Context, tx repository.Tx, onlyActive bool) ([]*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Product
	for _, p := range r.data {
		if onlyActive && !p.IsActive {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ---- Promo codes ----

type MockPromoRepo struct {
	mu   sync.Mutex
	data map[string]*model.PromoCode

	RedeemFunc func(ctx context.Context, tx repository.Tx, id string, now time.Time) (bool, error)
}

var _ repository.PromoCodeRepository = (*MockPromoRepo)(nil)

func NewMockPromoRepo() *MockPromoRepo {
	return &MockPromoRepo{data: map[string]*model.PromoCode{}}
}

func (r *MockPromoRepo) Save(ctx context.Context, tx repository.Tx, p *model.PromoCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.data {
		if existing.Code == p.Code && existing.ID != p.ID {
			return domain.ErrAlreadyExists
		}
	}
	cp := *p
	r.data[p.ID] = &cp
	return nil
}

func (r *MockPromoRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.PromoCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.data {
		if strings.EqualFold(p.Code, code) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrPromoInvalid
}

func (r *MockPromoRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PromoCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MockPromoRepo) List(ctx context.Context, tx repository.Tx) ([]*model.PromoCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.PromoCode
	for _, p := range r.data {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MockPromoRepo) SetActive(ctx context.Context, tx repository.Tx, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.IsActive = active
	return nil
}

func (r *MockPromoRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.data, id)
	return nil
}

func (r *MockPromoRepo) Redeem(ctx context.Context, tx repository.Tx, id string, now time.Time) (bool, error) {
	if r.RedeemFunc != nil {
		return r.RedeemFunc(ctx, tx, id, now)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[id]
	if !ok || !p.Usable(now) {
		return false, nil
	}
	p.UsedCount++
	return true, nil
}

func (r *MockPromoRepo) Release(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.data[id]; ok && p.UsedCount > 0 {
		p.UsedCount--
	}
	return nil
}

func (r *MockPromoRepo) UsedCount(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data[id].UsedCount
}

// ---- Transactions ----

type MockTransactionRepo struct {
	mu   sync.Mutex
	data map[string]*model.Transaction // by order id

	CreateFunc func(ctx context.Context, tx repository.Tx, t *model.Transaction) error
}

var _ repository.TransactionRepository = (*MockTransactionRepo)(nil)

func NewMockTransactionRepo() *MockTransactionRepo {
	return &MockTransactionRepo{data: map[string]*model.Transaction{}}
}

func (r *MockTransactionRepo) Create(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	if r.CreateFunc != nil {
		return r.CreateFunc(ctx, tx, t)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[t.GatewayOrderID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *t
	r.data[t.GatewayOrderID] = &cp
	return nil
}

func (r *MockTransactionRepo) FindByOrderID(ctx context.Context, tx repository.Tx, orderID string) (*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.data[orderID]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *MockTransactionRepo) List(ctx context.Context, tx repository.Tx, status model.TransactionStatus, limit int) ([]*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Transaction
	for _, t := range r.data {
		if status != "" && t.Status != status {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MockTransactionRepo) MarkSuccess(ctx context.Context, tx repository.Tx, orderID, paymentID string, signature *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.data[orderID]
	if !ok || t.Status == model.TransactionSuccess {
		return false, nil
	}
	t.Status = model.TransactionSuccess
	t.GatewayPaymentID = &paymentID
	if signature != nil {
		t.GatewaySignature = signature
	}
	return true, nil
}

func (r *MockTransactionRepo) MarkFailed(ctx context.Context, tx repository.Tx, orderID string, paymentID *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.data[orderID]
	if !ok || t.Status != model.TransactionPending {
		return false, nil
	}
	t.Status = model.TransactionFailed
	if paymentID != nil {
		t.GatewayPaymentID = paymentID
	}
	return true, nil
}

func (r *MockTransactionRepo) SumSuccess(ctx context.Context, tx repository.Tx, since time.Time) (model.RevenueTotal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := model.RevenueTotal{Amount: decimal.Zero}
	for _, t := range r.data {
		if t.Status != model.TransactionSuccess || t.CreatedAt.Before(since) {
			continue
		}
		total.Sales++
		total.Amount = total.Amount.Add(t.Amount)
	}
	return total, nil
}

func (r *MockTransactionRepo) FailPendingOlderThan(ctx context.Context, tx repository.Tx, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.data {
		if t.Status == model.TransactionPending && t.CreatedAt.Before(cutoff) {
			t.Status = model.TransactionFailed
			n++
		}
	}
	return n, nil
}

func (r *MockTransactionRepo) Status(orderID string) model.TransactionStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.data[orderID]; ok {
		return t.Status
	}
	return ""
}

func (r *MockTransactionRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data)
}

// ---- Purchases ----

// MockPurchaseRepo enforces the (user_id, product_id) uniqueness like the real table.
type MockPurchaseRepo struct {
	mu   sync.Mutex
	data map[string]*model.UserPurchase // key user|product

	ExistsFunc func(ctx context.Context, tx repository.Tx, userID, productID string) (bool, error)
}

var _ repository.PurchaseRepository = (*MockPurchaseRepo)(nil)

func NewMockPurchaseRepo() *MockPurchaseRepo {
	return &MockPurchaseRepo{data: map[string]*model.UserPurchase{}}
}

func purchaseKey(userID, productID string) string { return userID + "|" + productID }

func (r *MockPurchaseRepo) Exists(ctx context.Context, tx repository.Tx, userID, productID string) (bool, error) {
	if r.ExistsFunc != nil {
		return r.ExistsFunc(ctx, tx, userID, productID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.data[purchaseKey(userID, productID)]
	return ok, nil
}

func (r *MockPurchaseRepo) Insert(ctx context.Context, tx repository.Tx, p *model.UserPurchase) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := purchaseKey(p.UserID, p.ProductID)
	if _, ok := r.data[k]; ok {
		return false, nil
	}
	cp := *p
	r.data[k] = &cp
	return true, nil
}

func (r *MockPurchaseRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.UserPurchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.UserPurchase
	for _, p := range r.data {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockPurchaseRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data)
}

// ---- Invoices ----

type MockInvoiceRepo struct {
	mu   sync.Mutex
	seq  int64
	data map[string]*model.Invoice // by id

	InsertFunc func(ctx context.Context, tx repository.Tx, inv *model.Invoice) (bool, error)
}

var _ repository.InvoiceRepository = (*MockInvoiceRepo)(nil)

func NewMockInvoiceRepo() *MockInvoiceRepo {
	return &MockInvoiceRepo{data: map[string]*model.Invoice{}}
}

func (r *MockInvoiceRepo) NextSequence(ctx context.Context, tx repository.Tx) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return r.seq, nil
}

func (r *MockInvoiceRepo) Insert(ctx context.Context, tx repository.Tx, inv *model.Invoice) (bool, error) {
	if r.InsertFunc != nil {
		return r.InsertFunc(ctx, tx, inv)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.data {
		if existing.TransactionID == inv.TransactionID {
			return false, nil
		}
		if existing.InvoiceNumber == inv.InvoiceNumber {
			return false, domain.ErrAlreadyExists
		}
	}
	cp := *inv
	r.data[inv.ID] = &cp
	return true, nil
}

func (r *MockInvoiceRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.data[id]
	if !ok {
		return nil, domain.ErrInvoiceNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *MockInvoiceRepo) FindByTransactionID(ctx context.Context, tx repository.Tx, transactionID string) (*model.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.data {
		if inv.TransactionID == transactionID {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, domain.ErrInvoiceNotFound
}

func (r *MockInvoiceRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data)
}

// ---- Profiles ----

type MockProfileRepo struct {
	mu   sync.Mutex
	data map[string]*model.Profile
}

var _ repository.ProfileRepository = (*MockProfileRepo)(nil)

func NewMockProfileRepo() *MockProfileRepo {
	return &MockProfileRepo{data: map[string]*model.Profile{}}
}

func (r *MockProfileRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MockProfileRepo) Upsert(ctx context.Context, tx repository.Tx, p *model.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	if existing, ok := r.data[p.ID]; ok {
		if cp.FullName == nil {
			cp.FullName = existing.FullName
		}
		cp.IsAdmin, cp.IsBanned, cp.CreatedAt = existing.IsAdmin, existing.IsBanned, existing.CreatedAt
	} else if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.data[p.ID] = &cp
	return nil
}

func (r *MockProfileRepo) List(ctx context.Context, tx repository.Tx, limit int) ([]*model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Profile, 0, len(r.data))
	for _, p := range r.data {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MockProfileRepo) Count(ctx context.Context, tx repository.Tx, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.data {
		if !p.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *MockProfileRepo) SetBanned(ctx context.Context, tx repository.Tx, id string, banned bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.IsBanned = banned
	return nil
}

func (r *MockProfileRepo) SetAdmin(ctx context.Context, tx repository.Tx, id string, admin bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.IsAdmin = admin
	return nil
}

// ---- Payment config ----

type MockPaymentConfigRepo struct {
	mu   sync.Mutex
	data map[string]string

	GetErr error
}

var _ repository.PaymentConfigRepository = (*MockPaymentConfigRepo)(nil)

func NewMockPaymentConfigRepo() *MockPaymentConfigRepo {
	return &MockPaymentConfigRepo{data: map[string]string{}}
}

func (r *MockPaymentConfigRepo) Get(ctx context.Context, tx repository.Tx, key string) (string, error) {
	if r.GetErr != nil {
		return "", r.GetErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.data[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (r *MockPaymentConfigRepo) Set(ctx context.Context, tx repository.Tx, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = value
	return nil
}

func (r *MockPaymentConfigRepo) List(ctx context.Context, tx repository.Tx) ([]*model.PaymentConfigEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.PaymentConfigEntry
	for k, v := range r.data {
		out = append(out, &model.PaymentConfigEntry{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// ---- Tx manager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs fn immediately with NoTX unless WithTxFunc is set.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// =============================
// Adapters
// =============================

// ---- In-memory Locker (implements redis.Locker port) ----

type MockLocker struct {
	mu    sync.Mutex
	held  map[string]string
	seq   int
	ErrOn map[string]error
}

func NewMockLocker() *MockLocker {
	return &MockLocker{held: map[string]string{}, ErrOn: map[string]error{}}
}

func (l *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err, bad := l.ErrOn[key]; bad {
		return "", err
	}
	if _, busy := l.held[key]; busy {
		return "", domain.ErrLockNotAcquired
	}
	l.seq++
	token := fmt.Sprintf("tok-%d", l.seq)
	l.held[key] = token
	return token, nil
}

func (l *MockLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
	}
	return nil
}

// ---- Payment gateway ----

type MockPaymentGateway struct {
	mu       sync.Mutex
	seq      int
	Requests []adapter.CreateOrderRequest

	CreateOrderFunc func(ctx context.Context, creds adapter.GatewayCredentials, req adapter.CreateOrderRequest) (*adapter.GatewayOrder, error)
}

var _ adapter.PaymentGateway = (*MockPaymentGateway)(nil)

func (g *MockPaymentGateway) Name() string { return "mock" }

func (g *MockPaymentGateway) CreateOrder(ctx context.Context, creds adapter.GatewayCredentials, req adapter.CreateOrderRequest) (*adapter.GatewayOrder, error) {
	g.mu.Lock()
	g.Requests = append(g.Requests, req)
	g.seq++
	id := fmt.Sprintf("order_mock%d", g.seq)
	g.mu.Unlock()
	if g.CreateOrderFunc != nil {
		return g.CreateOrderFunc(ctx, creds, req)
	}
	return &adapter.GatewayOrder{ID: id, Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt, Status: "created"}, nil
}

// ---- Telegram ----

type MockTelegramBot struct {
	mu      sync.Mutex
	Sent    []string
	Invites int

	InviteErr error
}

var _ adapter.TelegramBotAdapter = (*MockTelegramBot)(nil)

func (m *MockTelegramBot) SendMessage(ctx context.Context, chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, text)
	return nil
}

func (m *MockTelegramBot) CreateInviteLink(ctx context.Context, chatID int64, name string) (string, error) {
	if m.InviteErr != nil {
		return "", m.InviteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Invites++
	return fmt.Sprintf("https://t.me/+invite%d", m.Invites), nil
}

// ---- Mailer ----

type MockMailer struct {
	mu        sync.Mutex
	Purchases []adapter.PurchaseEmail
	Invoices  []adapter.InvoiceEmail

	Err error
}

var _ adapter.Mailer = (*MockMailer)(nil)

func (m *MockMailer) SendPurchaseEmail(ctx context.Context, msg adapter.PurchaseEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Purchases = append(m.Purchases, msg)
	return m.Err
}

func (m *MockMailer) SendInvoiceEmail(ctx context.Context, msg adapter.InvoiceEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Invoices = append(m.Invoices, msg)
	return m.Err
}

func (m *MockMailer) Counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Purchases), len(m.Invoices)
}

// ---- Dispatcher ----

// MockDispatcher queues tasks so tests can run them on demand.
type MockDispatcher struct {
	mu    sync.Mutex
	tasks []worker.Task
	Full  bool
}

func (d *MockDispatcher) Submit(task worker.Task) error {
	if d.Full {
		return worker.ErrQueueFull
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tasks = append(d.tasks, task)
	return nil
}

func (d *MockDispatcher) RunAll(ctx context.Context) {
	d.mu.Lock()
	tasks := d.tasks
	d.tasks = nil
	d.mu.Unlock()
	for _, t := range tasks {
		_ = t(ctx)
	}
}

// =============================
// Fixtures
// =============================

func newPDFProduct(price int64) *model.Product {
	p, err := model.NewProduct("Go Handbook", "", decimal.NewFromInt(price), model.ProductTypePDF, "https://cdn.example/book.pdf")
	if err != nil {
		panic(err)
	}
	return p
}
