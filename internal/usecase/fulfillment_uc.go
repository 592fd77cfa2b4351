package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"digital-storefront/internal/domain"
	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/domain/ports/adapter"
	"digital-storefront/internal/domain/ports/repository"
	"digital-storefront/internal/infra/logging"
	"digital-storefront/internal/infra/metrics"
	"digital-storefront/internal/infra/redis"
	"digital-storefront/internal/infra/worker"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ FulfillmentUseCase = (*fulfillmentUC)(nil)

const fulfillmentLockTTL = 30 * time.Second

type FulfillmentConfig struct {
	InvoiceTemplate string
	PublicURL       string
	AdminChatID     int64 // 0 disables sale alerts
}

type FulfillmentResult struct {
	Purchase         *model.UserPurchase
	Invoice          *model.Invoice
	AlreadyFulfilled bool
}

// FulfillmentUseCase grants access for a successful transaction exactly once.
// It is shared by the client verification path and the webhook path.
type FulfillmentUseCase interface {
	Fulfill(ctx context.Context, txn *model.Transaction) (*FulfillmentResult, error)
}

// Dispatcher runs post-commit side effects; *worker.Pool implements it.
type Dispatcher interface {
	Submit(task worker.Task) error
}

type fulfillmentUC struct {
	products  repository.ProductRepository
	profiles  repository.ProfileRepository
	purchases repository.PurchaseRepository
	invoices  repository.InvoiceRepository
	promos    repository.PromoCodeRepository
	tm        repository.TransactionManager
	locker    redis.Locker
	bot       adapter.TelegramBotAdapter
	mailer    adapter.Mailer
	jobs      Dispatcher
	cfg       FulfillmentConfig
	log       *zerolog.Logger
}

// NewFulfillmentUseCase wires the trigger. locker, bot and jobs are optional.
func NewFulfillmentUseCase(
	products repository.ProductRepository,
	profiles repository.ProfileRepository,
	purchases repository.PurchaseRepository,
	invoices repository.InvoiceRepository,
	promos repository.PromoCodeRepository,
	tm repository.TransactionManager,
	locker redis.Locker,
	bot adapter.TelegramBotAdapter,
	mailer adapter.Mailer,
	jobs Dispatcher,
	cfg FulfillmentConfig,
	logger *zerolog.Logger,
) *fulfillmentUC {
	if cfg.InvoiceTemplate == "" {
		cfg.InvoiceTemplate = model.DefaultInvoiceNumberTemplate
	}
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")
	return &fulfillmentUC{
		products:  products,
		profiles:  profiles,
		purchases: purchases,
		invoices:  invoices,
		promos:    promos,
		tm:        tm,
		locker:    locker,
		bot:       bot,
		mailer:    mailer,
		jobs:      jobs,
		cfg:       cfg,
		log:       logger,
	}
}

func (u *fulfillmentUC) Fulfill(ctx context.Context, txn *model.Transaction) (*FulfillmentResult, error) {
	defer logging.TraceDuration(u.log, "FulfillmentUC.Fulfill")()

	if txn == nil || txn.Status != model.TransactionSuccess {
		return nil, domain.ErrInvalidArgument
	}
	log := logging.With(logging.WithOrderID(logging.WithUserID(ctx, txn.UserID), txn.GatewayOrderID), u.log)

	// The lock only narrows the race; the unique (user_id, product_id) constraint decides.
	if u.locker != nil {
		key := redis.FulfillmentLockKey(txn.UserID, txn.ProductID)
		token, err := u.locker.TryLock(ctx, key, fulfillmentLockTTL)
		if err != nil {
			log.Debug().Err(err).Msg("fulfillment lock not acquired, relying on storage constraint")
		} else {
			defer func() {
				if err := u.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
					log.Warn().Err(err).Msg("fulfillment unlock failed")
				}
			}()
		}
	}

	owned, err := u.purchases.Exists(ctx, repository.NoTX, txn.UserID, txn.ProductID)
	if err != nil {
		metrics.IncFulfillment("error")
		return nil, err
	}
	if owned {
		metrics.IncFulfillment("duplicate")
		return &FulfillmentResult{AlreadyFulfilled: true}, nil
	}

	product, err := u.products.FindByID(ctx, repository.NoTX, txn.ProductID)
	if err != nil {
		metrics.IncFulfillment("error")
		return nil, err
	}
	customer, err := u.profiles.FindByID(ctx, repository.NoTX, txn.UserID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		metrics.IncFulfillment("error")
		return nil, err
	}
	promoCode := u.promoCode(ctx, txn, log)

	link, err := u.accessLink(ctx, product, txn, log)
	if err != nil {
		metrics.IncFulfillment("error")
		return nil, err
	}

	res := &FulfillmentResult{}
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		purchase := model.NewUserPurchase(txn.UserID, product.ID, link)
		inserted, err := u.purchases.Insert(ctx, tx, purchase)
		if err != nil {
			return err
		}
		if !inserted {
			res.AlreadyFulfilled = true
			return nil
		}
		res.Purchase = purchase

		inv, err := u.issueInvoice(ctx, tx, txn, product, customer, promoCode)
		if err != nil {
			return err
		}
		res.Invoice = inv
		return nil
	})
	if err != nil {
		metrics.IncFulfillment("error")
		log.Error().Err(err).Msg("fulfillment failed")
		return nil, err
	}
	if res.AlreadyFulfilled {
		metrics.IncFulfillment("duplicate")
		log.Info().Msg("purchase already granted by a concurrent path")
		return res, nil
	}

	metrics.IncFulfillment("fulfilled")
	log.Info().Str("product_id", product.ID).Str("invoice", res.Invoice.InvoiceNumber).Msg("purchase fulfilled")

	u.notify(ctx, product, customer, res)
	return res, nil
}

// issueInvoice is insert-or-noop on transaction_id; an existing invoice is returned as is.
func (u *fulfillmentUC) issueInvoice(ctx context.Context, tx repository.Tx, txn *model.Transaction, product *model.Product, customer *model.Profile, promoCode *string) (*model.Invoice, error) {
	seq, err := u.invoices.NextSequence(ctx, tx)
	if err != nil {
		return nil, err
	}
	number, err := model.FormatInvoiceNumber(u.cfg.InvoiceTemplate, time.Now(), seq)
	if err != nil {
		return nil, err
	}
	inv, err := model.NewInvoice(number, txn, product, customer, promoCode)
	if err != nil {
		return nil, err
	}
	inserted, err := u.invoices.Insert(ctx, tx, inv)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return u.invoices.FindByTransactionID(ctx, tx, txn.ID)
	}
	return inv, nil
}

func (u *fulfillmentUC) promoCode(ctx context.Context, txn *model.Transaction, log *zerolog.Logger) *string {
	if txn.PromoCodeID == nil || u.promos == nil {
		return nil
	}
	promo, err := u.promos.FindByID(ctx, repository.NoTX, *txn.PromoCodeID)
	if err != nil {
		// The code may have been deleted since the order; the invoice still records the discount.
		log.Warn().Err(err).Str("promo_id", *txn.PromoCodeID).Msg("promo code for invoice not found")
		return nil
	}
	return &promo.Code
}

// accessLink mints a single-use invite for telegram products bound to a chat,
// falling back to the product's static payload.
func (u *fulfillmentUC) accessLink(ctx context.Context, product *model.Product, txn *model.Transaction, log *zerolog.Logger) (string, error) {
	if product.Type == model.ProductTypeTelegram && product.TelegramChatID != nil && u.bot != nil {
		link, err := u.bot.CreateInviteLink(ctx, *product.TelegramChatID, txn.GatewayOrderID)
		if err == nil {
			metrics.IncTelegramInvite("created")
			return link, nil
		}
		metrics.IncTelegramInvite("failed")
		log.Warn().Err(err).Int64("chat_id", *product.TelegramChatID).Msg("invite link creation failed, using static link")
	}
	if link := product.AccessPayload(); link != "" {
		return link, nil
	}
	return "", fmt.Errorf("product %s has no access link: %w", product.ID, domain.ErrOperationFailed)
}

// notify sends emails and the sale alert after commit. Failures are logged only.
func (u *fulfillmentUC) notify(ctx context.Context, product *model.Product, customer *model.Profile, res *FulfillmentResult) {
	var tasks []worker.Task
	inv := res.Invoice

	if customer != nil && customer.Email != "" && u.mailer != nil {
		purchaseMsg := adapter.PurchaseEmail{
			To:           customer.Email,
			CustomerName: customer.DisplayName(),
			ProductName:  product.Name,
			ProductType:  string(product.Type),
			AccessLink:   res.Purchase.AccessLink,
			Amount:       inv.Amount.StringFixed(2),
			Currency:     inv.Currency,
			DashboardURL: u.cfg.PublicURL + "/dashboard",
		}
		invoiceMsg := adapter.InvoiceEmail{
			To:             customer.Email,
			CustomerName:   customer.DisplayName(),
			InvoiceNumber:  inv.InvoiceNumber,
			ProductName:    inv.ProductName,
			Subtotal:       inv.Subtotal().StringFixed(2),
			DiscountAmount: inv.DiscountAmount.StringFixed(2),
			Amount:         inv.Amount.StringFixed(2),
			Currency:       inv.Currency,
			IssuedAt:       inv.CreatedAt,
			InvoiceURL:     u.cfg.PublicURL + "/api/invoice/" + inv.ID,
		}
		if inv.PromoCode != nil {
			invoiceMsg.PromoCode = *inv.PromoCode
		}
		if inv.GatewayPaymentID != nil {
			invoiceMsg.PaymentID = *inv.GatewayPaymentID
		}
		tasks = append(tasks,
			u.emailTask("purchase", func(ctx context.Context) error { return u.mailer.SendPurchaseEmail(ctx, purchaseMsg) }),
			u.emailTask("invoice", func(ctx context.Context) error { return u.mailer.SendInvoiceEmail(ctx, invoiceMsg) }),
		)
	}

	if u.bot != nil && u.cfg.AdminChatID != 0 {
		text := fmt.Sprintf("New sale: %s\nAmount: %s %s\nInvoice: %s", product.Name, inv.Currency, inv.Amount.StringFixed(2), inv.InvoiceNumber)
		tasks = append(tasks, func(ctx context.Context) error {
			if err := u.bot.SendMessage(ctx, u.cfg.AdminChatID, text); err != nil {
				u.log.Warn().Err(err).Msg("sale alert failed")
			}
			return nil
		})
	}

	for _, task := range tasks {
		if u.jobs != nil && u.jobs.Submit(task) == nil {
			continue
		}
		_ = task(context.WithoutCancel(ctx))
	}
}

func (u *fulfillmentUC) emailTask(kind string, send func(ctx context.Context) error) worker.Task {
	return func(ctx context.Context) error {
		if err := send(ctx); err != nil {
			metrics.IncEmail(kind, "failed")
			u.log.Warn().Err(err).Str("kind", kind).Msg("email delivery failed")
			return nil
		}
		metrics.IncEmail(kind, "sent")
		return nil
	}
}
