package usecase

import (
	"context"
	"errors"

	"digital-storefront/internal/domain"
	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/domain/ports/repository"
	"digital-storefront/internal/infra/logging"
	"digital-storefront/internal/infra/metrics"
	"digital-storefront/internal/infra/payment"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ WebhookUseCase = (*webhookUC)(nil)

type WebhookOutcome string

const (
	WebhookFulfilled WebhookOutcome = "fulfilled"
	WebhookDuplicate WebhookOutcome = "duplicate"
	WebhookFailed    WebhookOutcome = "failed"
	WebhookIgnored   WebhookOutcome = "ignored"
	WebhookNotFound  WebhookOutcome = "not_found"
	WebhookMalformed WebhookOutcome = "malformed"
)

// WebhookUseCase reconciles gateway push notifications. Only ErrWebhookNotConfigured
// and ErrInvalidSignature are meant to reach the gateway; everything else is acknowledged.
type WebhookUseCase interface {
	Handle(ctx context.Context, body []byte, signature string) (WebhookOutcome, error)
}

type webhookUC struct {
	transactions repository.TransactionRepository
	gwConfig     GatewayConfigUseCase
	fulfillment  FulfillmentUseCase
	log          *zerolog.Logger
}

func NewWebhookUseCase(transactions repository.TransactionRepository, gwConfig GatewayConfigUseCase, fulfillment FulfillmentUseCase, logger *zerolog.Logger) *webhookUC {
	return &webhookUC{transactions: transactions, gwConfig: gwConfig, fulfillment: fulfillment, log: logger}
}

func (u *webhookUC) Handle(ctx context.Context, body []byte, signature string) (WebhookOutcome, error) {
	defer logging.TraceDuration(u.log, "WebhookUC.Handle")()

	secret, err := u.gwConfig.WebhookSecret(ctx)
	if err != nil {
		return "", err
	}
	if signature == "" || !payment.VerifyWebhookSignature(secret, body, signature) {
		metrics.IncWebhookEvent("unknown", "bad_signature")
		u.log.Warn().Int("body_bytes", len(body)).Msg("webhook signature mismatch")
		return "", domain.ErrInvalidSignature
	}

	event, err := payment.ParseWebhookEvent(body)
	if err != nil {
		metrics.IncWebhookEvent("unknown", string(WebhookMalformed))
		u.log.Warn().Err(err).Msg("webhook body could not be parsed")
		return WebhookMalformed, nil
	}

	var outcome WebhookOutcome
	switch event.Event {
	case payment.EventPaymentCaptured:
		outcome, err = u.captured(ctx, event.Payment())
	case payment.EventPaymentFailed:
		outcome, err = u.failed(ctx, event.Payment())
	default:
		outcome = WebhookIgnored
	}
	if err != nil {
		metrics.IncWebhookEvent(event.Event, "error")
		return "", err
	}
	metrics.IncWebhookEvent(event.Event, string(outcome))
	return outcome, nil
}

func (u *webhookUC) captured(ctx context.Context, p payment.PaymentEntity) (WebhookOutcome, error) {
	log := logging.With(logging.WithOrderID(ctx, p.OrderID), u.log)

	txn, err := u.transactions.FindByOrderID(ctx, repository.NoTX, p.OrderID)
	if errors.Is(err, domain.ErrTransactionNotFound) || errors.Is(err, domain.ErrNotFound) {
		log.Warn().Str("payment_id", p.ID).Msg("captured payment for unknown order")
		return WebhookNotFound, nil
	}
	if err != nil {
		return "", err
	}
	if want := model.ToMinorUnits(txn.Amount); p.Amount != 0 && p.Amount != want {
		log.Warn().Int64("captured", p.Amount).Int64("expected", want).Msg("captured amount differs from order amount")
	}

	outcome := WebhookFulfilled
	if txn.Status == model.TransactionSuccess {
		outcome = WebhookDuplicate
	} else {
		changed, err := u.transactions.MarkSuccess(ctx, repository.NoTX, p.OrderID, p.ID, nil)
		if err != nil {
			return "", err
		}
		if changed {
			recordCapture(txn)
		} else {
			outcome = WebhookDuplicate
		}
		txn.Status = model.TransactionSuccess
		if txn.GatewayPaymentID == nil {
			txn.GatewayPaymentID = &p.ID
		}
	}

	// Fulfill is idempotent; on a duplicate it only heals a grant a crashed path left behind.
	res, err := u.fulfillment.Fulfill(ctx, txn)
	if err != nil {
		return "", err
	}
	if outcome == WebhookFulfilled && res.AlreadyFulfilled {
		outcome = WebhookDuplicate
	}
	log.Info().Str("outcome", string(outcome)).Msg("payment captured")
	return outcome, nil
}

// failed never downgrades: MarkFailed only matches pending rows.
func (u *webhookUC) failed(ctx context.Context, p payment.PaymentEntity) (WebhookOutcome, error) {
	changed, err := u.transactions.MarkFailed(ctx, repository.NoTX, p.OrderID, &p.ID)
	if err != nil {
		return "", err
	}
	if !changed {
		return WebhookIgnored, nil
	}
	metrics.IncPayment("failed")
	u.log.Info().Str("order_id", p.OrderID).Str("reason", p.ErrorDescription).Msg("payment failed")
	return WebhookFailed, nil
}
