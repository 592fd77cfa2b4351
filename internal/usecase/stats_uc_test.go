//go:build !integration

package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/usecase"
)

func TestStatsUseCase_Dashboard(t *testing.T) {
	ctx := context.Background()
	lastMonth := model.StartOfMonth(time.Now()).Add(-time.Hour)

	seedTxn := func(t *testing.T, s *storefront, orderID string, amount int64, status model.TransactionStatus, at time.Time) {
		t.Helper()
		txn, err := model.NewPendingTransaction("user-1", "product-1", orderID, "INR", model.Pricing{FinalPrice: decimal.NewFromInt(amount)}, nil)
		if err != nil {
			t.Fatalf("new transaction: %v", err)
		}
		txn.Status, txn.CreatedAt = status, at
		if err := s.transactions.Create(ctx, nil, txn); err != nil {
			t.Fatalf("seed transaction: %v", err)
		}
	}

	t.Run("should count customers and products and sum only successful sales", func(t *testing.T) {
		// --- Arrange ---
		s := newStorefront(t, configuredPayments())
		stats := usecase.NewStatsUseCase(s.profiles, s.products, s.transactions, "INR", newTestLogger())
		s.addProduct(t, newPDFProduct(500))
		s.addProduct(t, newPDFProduct(250))
		_ = s.profiles.Upsert(ctx, nil, &model.Profile{ID: "old", Email: "old@example.com", CreatedAt: lastMonth})
		_ = s.profiles.Upsert(ctx, nil, &model.Profile{ID: "new", Email: "new@example.com"})
		seedTxn(t, s, "order_old", 300, model.TransactionSuccess, lastMonth)
		seedTxn(t, s, "order_new", 500, model.TransactionSuccess, time.Now())
		seedTxn(t, s, "order_pending", 900, model.TransactionPending, time.Now())
		seedTxn(t, s, "order_failed", 700, model.TransactionFailed, time.Now())

		// --- Act ---
		got, err := stats.Dashboard(ctx)

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Users != 2 || got.NewUsersInMonth != 1 || got.Products != 2 {
			t.Errorf("unexpected counts %+v", got)
		}
		if got.Revenue.Sales != 2 || !got.Revenue.Amount.Equal(decimal.NewFromInt(800)) {
			t.Errorf("expected 2 sales worth 800, got %d / %s", got.Revenue.Sales, got.Revenue.Amount)
		}
		if got.MonthRevenue.Sales != 1 || !got.MonthRevenue.Amount.Equal(decimal.NewFromInt(500)) {
			t.Errorf("expected 1 sale worth 500 this month, got %d / %s", got.MonthRevenue.Sales, got.MonthRevenue.Amount)
		}
		if got.Currency != "INR" || got.MonthStart.Day() != 1 || got.MonthStart.Hour() != 0 {
			t.Errorf("unexpected currency or month start: %s %s", got.Currency, got.MonthStart)
		}
	})

	t.Run("should report zeros for an empty store", func(t *testing.T) {
		s := newStorefront(t, configuredPayments())
		stats := usecase.NewStatsUseCase(s.profiles, s.products, s.transactions, "INR", newTestLogger())

		got, err := stats.Dashboard(ctx)

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Users != 0 || got.Products != 0 || got.Revenue.Sales != 0 || !got.Revenue.Amount.IsZero() {
			t.Errorf("expected zeros, got %+v", got)
		}
	})
}
