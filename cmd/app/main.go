// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"digital-storefront/internal/config"
	"digital-storefront/internal/domain/ports/adapter"
	"digital-storefront/internal/domain/ports/repository"
	emailAdapters "digital-storefront/internal/infra/adapters/email"
	payAdapters "digital-storefront/internal/infra/adapters/payment"
	tele "digital-storefront/internal/infra/adapters/telegram"
	"digital-storefront/internal/infra/db/migrations"
	pg "digital-storefront/internal/infra/db/postgres"
	"digital-storefront/internal/infra/invoice"
	"digital-storefront/internal/infra/logging"
	"digital-storefront/internal/infra/metrics"
	red "digital-storefront/internal/infra/redis"
	"digital-storefront/internal/infra/sched"
	"digital-storefront/internal/infra/security"
	"digital-storefront/internal/infra/web"
	"digital-storefront/internal/infra/worker"
	"digital-storefront/internal/usecase"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if cfg.Database.AutoMigrate {
		if err := migrations.UpWithPool(pool); err != nil {
			logger.Fatal().Err(err).Msg("migrations")
		}
		logger.Info().Msg("database migrations applied")
	}
	go reportPoolStats(ctx, pool)

	// ---- Redis (optional) ----
	var (
		redisClient *red.Client
		locker      red.Locker
		limiter     web.Limiter
	)
	if cfg.Redis.URL != "" {
		redisClient, err = red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		locker = red.NewLocker(redisClient)
		limiter = red.NewRateLimiter(redisClient)
	} else {
		logger.Warn().Msg("redis.url not set; product cache, fulfillment lock and promo throttling disabled")
	}

	// ---- Encryption ----
	var sealer usecase.Sealer
	if cfg.Security.EncryptionKey != "" {
		encSvc, err := security.NewEncryptionService(cfg.Security.EncryptionKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("encryption")
		}
		sealer = encSvc
	} else {
		logger.Warn().Msg("security.encryption_key not set; stored gateway secrets are kept in plain text")
	}

	// ---- Repositories ----
	var productRepo repository.ProductRepository = pg.NewProductRepo(pool)
	if redisClient != nil {
		productRepo = pg.NewProductRepoCacheDecorator(productRepo, redisClient, cfg.Redis.TTL, logger)
	}
	promoRepo := pg.NewPromoCodeRepo(pool)
	txnRepo := pg.NewTransactionRepo(pool)
	purchaseRepo := pg.NewPurchaseRepo(pool)
	invoiceRepo := pg.NewInvoiceRepo(pool)
	profileRepo := pg.NewProfileRepo(pool)
	payCfgRepo := pg.NewPaymentConfigRepo(pool)
	tm := pg.NewTxManager(pool)

	// ---- Adapters ----
	var gateway adapter.PaymentGateway
	switch cfg.Payment.Provider {
	case "noop":
		gateway = payAdapters.NewNoopPaymentGateway()
		logger.Warn().Msg("payment provider is noop; orders are not sent to a real gateway")
	default:
		gateway = payAdapters.NewRazorpayGateway(cfg.Payment.BaseURL, cfg.Payment.HTTPTimeout)
	}

	var mailer adapter.Mailer
	if cfg.Email.Enabled() {
		smtp, err := emailAdapters.NewSMTPMailer(cfg.Email, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("smtp mailer")
		}
		mailer = smtp
	} else {
		logger.Warn().Msg("email.host not set; emails are logged instead of sent")
		mailer = emailAdapters.NewNoopMailer(cfg.Email.StoreName, logger)
	}

	var bot adapter.TelegramBotAdapter
	if cfg.Telegram.BotToken != "" {
		tg, err := tele.NewRealTelegramBotAdapter(cfg.Telegram.BotToken, 0, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram")
		}
		bot = tg
	} else if cfg.Runtime.Dev {
		bot = tele.NewNoopBotAdapter(logger)
	}

	// ---- Worker pool for post-commit side effects ----
	jobs := worker.NewPool(cfg.Worker.Workers, logger)
	jobs.Start(ctx)

	// ---- Use cases ----
	gwConfigUC := usecase.NewGatewayConfigUseCase(cfg.Payment, payCfgRepo, sealer, logger)
	promoUC := usecase.NewPromoUseCase(promoRepo, logger)
	productUC := usecase.NewProductUseCase(productRepo, purchaseRepo, logger)
	orderUC := usecase.NewOrderUseCase(productRepo, purchaseRepo, txnRepo, profileRepo, promoUC, gateway, gwConfigUC, cfg.Payment.Currency, logger)
	fulfillmentUC := usecase.NewFulfillmentUseCase(
		productRepo, profileRepo, purchaseRepo, invoiceRepo, promoRepo, tm,
		locker, bot, mailer, jobs,
		usecase.FulfillmentConfig{
			InvoiceTemplate: cfg.Payment.InvoiceTemplate,
			PublicURL:       cfg.HTTP.PublicURL,
			AdminChatID:     cfg.Telegram.AdminChatID,
		},
		logger,
	)
	paymentUC := usecase.NewPaymentUseCase(txnRepo, gwConfigUC, fulfillmentUC, logger)
	webhookUC := usecase.NewWebhookUseCase(txnRepo, gwConfigUC, fulfillmentUC, logger)
	invoiceUC := usecase.NewInvoiceUseCase(invoiceRepo, logger)
	userUC := usecase.NewUserUseCase(profileRepo, logger)
	statsUC := usecase.NewStatsUseCase(profileRepo, productRepo, txnRepo, cfg.Payment.Currency, logger)

	// ---- Pending reaper ----
	reaper := sched.NewPendingReaper(cfg.Payment.ReaperInterval, cfg.Payment.PendingTTL, paymentUC, logger)
	go func() {
		if err := reaper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("pending reaper stopped")
		}
	}()

	// ---- HTTP ----
	if cfg.Auth.JWTSecret == "" {
		logger.Warn().Msg("auth.jwt_secret not set; customer endpoints will reject every session")
	}
	api := web.NewServer(web.Deps{
		Orders:   orderUC,
		Payments: paymentUC,
		Webhooks: webhookUC,
		Promos:   promoUC,
		Products: productUC,
		Invoices: invoiceUC,
		Gateway:  gwConfigUC,
		Users:    userUC,
		Stats:    statsUC,
	}, web.Options{
		AdminAPIKey:    cfg.Admin.APIKey,
		Seller:         invoice.Seller{Name: cfg.Email.StoreName, Email: cfg.Email.From, URL: cfg.HTTP.PublicURL},
		RequestTimeout: cfg.HTTP.RequestTimeout,
		PromoLimit:     cfg.Promo.ValidateLimit,
		PromoWindow:    cfg.Promo.ValidateWindow,
	}, web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.CookieName), limiter, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      api.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Str("provider", gateway.Name()).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	// Drain queued emails before the root context goes away.
	jobs.Stop()
	cancel()
	logger.Info().Msg("bye")
}

func reportPoolStats(ctx context.Context, pool *pgxpool.Pool) {
	t := time.NewTicker(15 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s := pool.Stat()
			metrics.SetDBPoolStats(s.TotalConns(), s.IdleConns(), s.AcquiredConns(), s.EmptyAcquireCount())
		}
	}
}
