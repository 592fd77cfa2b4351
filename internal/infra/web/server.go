package web

import (
	"net/http"
	"time"

	"digital-storefront/internal/infra/invoice"
	"digital-storefront/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Deps are the use cases behind the HTTP surface.
type Deps struct {
	Orders   usecase.OrderUseCase
	Payments usecase.PaymentUseCase
	Webhooks usecase.WebhookUseCase
	Promos   usecase.PromoUseCase
	Products usecase.ProductUseCase
	Invoices usecase.InvoiceUseCase
	Gateway  usecase.GatewayConfigUseCase
	Users    usecase.UserUseCase
	Stats    usecase.StatsUseCase
}

type Options struct {
	AdminAPIKey    string
	Seller         invoice.Seller
	RequestTimeout time.Duration
	PromoLimit     int // per client per window; 0 disables throttling
	PromoWindow    time.Duration
}

type Server struct {
	deps    Deps
	opts    Options
	auth    *AuthManager
	limiter Limiter
	log     *zerolog.Logger
}

// NewServer wires the storefront API. limiter may be nil.
func NewServer(deps Deps, opts Options, auth *AuthManager, limiter Limiter, logger *zerolog.Logger) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 20 * time.Second
	}
	if opts.PromoWindow <= 0 {
		opts.PromoWindow = time.Minute
	}
	l := logger.With().Str("component", "http").Logger()
	return &Server{deps: deps, opts: opts, auth: auth, limiter: limiter, log: &l}
}

// Router builds the chi mux with every route and the shared middleware chain.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RealIP,
		TraceID(),
		RequestLog(s.log),
		Recover(s.log),
		Timeout(s.opts.RequestTimeout),
	)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", s.handleListProducts)
		r.Post("/payment/webhook", s.handleWebhook)
		r.With(s.rateLimit("promo_validate")).Post("/promo/validate", s.handlePromoValidate)
		r.Get("/invoice/{id}", s.handleInvoice)

		r.Group(func(r chi.Router) {
			r.Use(s.requireCustomer)
			r.Post("/payment/create-order", s.handleCreateOrder)
			r.Post("/payment/verify", s.handleVerify)
			r.Get("/purchases", s.handlePurchases)
		})

		r.Route("/v1/admin", func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/products", s.handleAdminListProducts)
			r.Post("/products", s.handleAdminCreateProduct)
			r.Patch("/products/{id}", s.handleAdminUpdateProduct)

			r.Get("/promos", s.handleAdminListPromos)
			r.Post("/promos", s.handleAdminCreatePromo)
			r.Patch("/promos/{id}", s.handleAdminTogglePromo)
			r.Delete("/promos/{id}", s.handleAdminDeletePromo)

			r.Get("/stats", s.handleAdminStats)
			r.Get("/users", s.handleAdminListUsers)
			r.Patch("/users/{id}", s.handleAdminUpdateUser)

			r.Get("/transactions", s.handleAdminListTransactions)

			r.Get("/payment-settings", s.handleAdminListPaymentSettings)
			r.Put("/payment-settings", s.handleAdminStorePaymentSetting)
		})
	})
	return r
}
