//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/domain/ports/repository"
)

func seedProfile(t *testing.T) *model.Profile {
	t.Helper()
	p := &model.Profile{ID: uuid.NewString(), Email: "buyer@example.com"}
	if err := NewProfileRepo(testPool).Upsert(context.Background(), repository.NoTX, p); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return p
}

func seedProduct(t *testing.T) *model.Product {
	t.Helper()
	p, err := model.NewProduct("Go Handbook", "", decimal.NewFromInt(500), model.ProductTypePDF, "https://cdn.example/book.pdf")
	if err != nil {
		t.Fatalf("new product: %v", err)
	}
	if err := NewProductRepo(testPool).Save(context.Background(), repository.NoTX, p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func seedTransaction(t *testing.T, user *model.Profile, product *model.Product, orderID string) *model.Transaction {
	t.Helper()
	txn, err := model.NewPendingTransaction(user.ID, product.ID, orderID, "INR", model.ApplyDiscount(product.Price, 20), nil)
	if err != nil {
		t.Fatalf("new transaction: %v", err)
	}
	if err := NewTransactionRepo(testPool).Create(context.Background(), repository.NoTX, txn); err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	return txn
}
