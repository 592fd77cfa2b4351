//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"digital-storefront/internal/domain"
	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/domain/ports/repository"
)

func TestTransactionRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepo(testPool)

	t.Run("create and find by order id", func(t *testing.T) {
		cleanup(t)
		user, product := seedProfile(t), seedProduct(t)
		created := seedTransaction(t, user, product, "order_A")

		got, err := repo.FindByOrderID(ctx, repository.NoTX, "order_A")
		if err != nil {
			t.Fatalf("FindByOrderID: %v", err)
		}
		if got.ID != created.ID || got.Status != model.TransactionPending {
			t.Errorf("unexpected transaction %+v", got)
		}
		if !got.Amount.Equal(decimal.NewFromInt(400)) || !got.DiscountAmount.Equal(decimal.NewFromInt(100)) {
			t.Errorf("amounts not persisted: %s / %s", got.Amount, got.DiscountAmount)
		}
	})

	t.Run("duplicate order id is rejected", func(t *testing.T) {
		cleanup(t)
		user, product := seedProfile(t), seedProduct(t)
		seedTransaction(t, user, product, "order_dup")
		txn, _ := model.NewPendingTransaction(user.ID, product.ID, "order_dup", "INR", model.FullPrice(product.Price), nil)
		if err := repo.Create(ctx, repository.NoTX, txn); !errors.Is(err, domain.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("missing order maps to ErrTransactionNotFound", func(t *testing.T) {
		cleanup(t)
		if _, err := repo.FindByOrderID(ctx, repository.NoTX, "nope"); !errors.Is(err, domain.ErrTransactionNotFound) {
			t.Errorf("expected ErrTransactionNotFound, got %v", err)
		}
	})

	t.Run("success is absorbing", func(t *testing.T) {
		cleanup(t)
		user, product := seedProfile(t), seedProduct(t)
		seedTransaction(t, user, product, "order_B")

		changed, err := repo.MarkSuccess(ctx, repository.NoTX, "order_B", "pay_1", nil)
		if err != nil || !changed {
			t.Fatalf("first MarkSuccess: changed=%v err=%v", changed, err)
		}
		changed, err = repo.MarkSuccess(ctx, repository.NoTX, "order_B", "pay_2", nil)
		if err != nil || changed {
			t.Errorf("second MarkSuccess must be a no-op: changed=%v err=%v", changed, err)
		}
		changed, err = repo.MarkFailed(ctx, repository.NoTX, "order_B", nil)
		if err != nil || changed {
			t.Errorf("MarkFailed must not downgrade success: changed=%v err=%v", changed, err)
		}

		got, _ := repo.FindByOrderID(ctx, repository.NoTX, "order_B")
		if got.Status != model.TransactionSuccess || got.GatewayPaymentID == nil || *got.GatewayPaymentID != "pay_1" {
			t.Errorf("unexpected final state %+v", got)
		}
	})

	t.Run("captured payment recovers a failed attempt", func(t *testing.T) {
		cleanup(t)
		user, product := seedProfile(t), seedProduct(t)
		seedTransaction(t, user, product, "order_C")

		if changed, _ := repo.MarkFailed(ctx, repository.NoTX, "order_C", nil); !changed {
			t.Fatal("expected pending -> failed")
		}
		if changed, _ := repo.MarkSuccess(ctx, repository.NoTX, "order_C", "pay_9", nil); !changed {
			t.Fatal("expected failed -> success")
		}
	})

	t.Run("reaper fails only stale pending rows", func(t *testing.T) {
		cleanup(t)
		user, product := seedProfile(t), seedProduct(t)
		seedTransaction(t, user, product, "order_old")
		seedTransaction(t, user, product, "order_paid")
		_, _ = repo.MarkSuccess(ctx, repository.NoTX, "order_paid", "pay_x", nil)
		_, _ = testPool.Exec(ctx, `UPDATE transactions SET created_at = NOW() - INTERVAL '2 days'`)
		seedTransaction(t, user, product, "order_fresh")

		n, err := repo.FailPendingOlderThan(ctx, repository.NoTX, time.Now().Add(-24*time.Hour))
		if err != nil {
			t.Fatalf("FailPendingOlderThan: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 reaped row, got %d", n)
		}
		fresh, _ := repo.FindByOrderID(ctx, repository.NoTX, "order_fresh")
		if fresh.Status != model.TransactionPending {
			t.Errorf("fresh transaction must stay pending, got %s", fresh.Status)
		}

		failed, err := repo.List(ctx, repository.NoTX, model.TransactionFailed, 10)
		if err != nil || len(failed) != 1 || failed[0].GatewayOrderID != "order_old" {
			t.Errorf("unexpected failed listing: %v (%v)", failed, err)
		}
	})
}
