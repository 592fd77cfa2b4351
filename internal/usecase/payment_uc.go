package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"digital-storefront/internal/domain"
	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/domain/ports/repository"
	"digital-storefront/internal/domain/ports/usecase"
	"digital-storefront/internal/infra/logging"
	"digital-storefront/internal/infra/metrics"
	"digital-storefront/internal/infra/payment"

	"github.com/rs/zerolog"
)

// Compile-time check
var (
	_ PaymentUseCase        = (*paymentUC)(nil)
	_ usecase.PendingReaper = (*paymentUC)(nil)
)

type VerifyResult struct {
	Transaction *model.Transaction
	Fulfillment *FulfillmentResult
}

type PaymentUseCase interface {
	// Verify checks the client-reported checkout result and fulfills on a valid signature.
	Verify(ctx context.Context, principal model.Principal, orderID, paymentID, signature string) (*VerifyResult, error)
	ListTransactions(ctx context.Context, status model.TransactionStatus, limit int) ([]*model.Transaction, error)
	FailStalePending(ctx context.Context, olderThan time.Duration) (int64, error)
}

type paymentUC struct {
	transactions repository.TransactionRepository
	gwConfig     GatewayConfigUseCase
	fulfillment  FulfillmentUseCase
	log          *zerolog.Logger
}

func NewPaymentUseCase(transactions repository.TransactionRepository, gwConfig GatewayConfigUseCase, fulfillment FulfillmentUseCase, logger *zerolog.Logger) *paymentUC {
	return &paymentUC{transactions: transactions, gwConfig: gwConfig, fulfillment: fulfillment, log: logger}
}

func (u *paymentUC) Verify(ctx context.Context, principal model.Principal, orderID, paymentID, signature string) (*VerifyResult, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.Verify")()

	if principal.IsZero() {
		return nil, domain.ErrUnauthorized
	}
	// The signature is compared verbatim.
	orderID, paymentID = strings.TrimSpace(orderID), strings.TrimSpace(paymentID)
	if orderID == "" || paymentID == "" || signature == "" {
		return nil, domain.ErrInvalidArgument
	}
	log := logging.With(logging.WithOrderID(logging.WithUserID(ctx, principal.UserID), orderID), u.log)

	creds, err := u.gwConfig.Credentials(ctx)
	if err != nil {
		return nil, err
	}

	if !payment.VerifyPaymentSignature(creds.KeySecret, orderID, paymentID, signature) {
		log.Warn().Str("payment_id", paymentID).Msg("payment signature mismatch")
		if changed, err := u.transactions.MarkFailed(ctx, repository.NoTX, orderID, &paymentID); err != nil {
			log.Error().Err(err).Msg("failed to mark transaction failed")
		} else if changed {
			metrics.IncPayment("failed")
		}
		return nil, domain.ErrInvalidSignature
	}

	txn, err := u.transactions.FindByOrderID(ctx, repository.NoTX, orderID)
	if err != nil {
		return nil, err
	}
	if txn.UserID != principal.UserID {
		log.Warn().Str("owner_id", txn.UserID).Msg("verify called for another user's order")
		return nil, domain.ErrTransactionNotFound
	}

	changed, err := u.transactions.MarkSuccess(ctx, repository.NoTX, orderID, paymentID, &signature)
	if err != nil {
		return nil, err
	}
	if changed {
		recordCapture(txn)
		txn.Status = model.TransactionSuccess
		txn.GatewayPaymentID = &paymentID
		txn.GatewaySignature = &signature
	} else if txn, err = u.transactions.FindByOrderID(ctx, repository.NoTX, orderID); err != nil {
		return nil, err
	}

	res, err := u.fulfillment.Fulfill(ctx, txn)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{Transaction: txn, Fulfillment: res}, nil
}

func (u *paymentUC) ListTransactions(ctx context.Context, status model.TransactionStatus, limit int) ([]*model.Transaction, error) {
	if status != "" && !status.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return u.transactions.List(ctx, repository.NoTX, status, limit)
}

func (u *paymentUC) FailStalePending(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("olderThan must be positive")
	}
	return u.transactions.FailPendingOlderThan(ctx, repository.NoTX, time.Now().Add(-olderThan))
}

// recordCapture counts a transaction the first time it reaches success.
func recordCapture(txn *model.Transaction) {
	metrics.IncPayment("success")
	amount, _ := txn.Amount.Float64()
	metrics.AddPaymentRevenue(txn.Currency, amount)
}
