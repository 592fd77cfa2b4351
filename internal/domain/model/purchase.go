package model

import (
	"time"

	"github.com/google/uuid"
)

// UserPurchase is the durable access grant; at most one per (user, product).
type UserPurchase struct {
	ID          string
	UserID      string
	ProductID   string
	AccessLink  string
	PurchasedAt time.Time

	// ProductName and ProductType are filled by listing queries only.
	ProductName string
	ProductType ProductType
}

func NewUserPurchase(userID, productID, accessLink string) *UserPurchase {
	return &UserPurchase{
		ID:          uuid.NewString(),
		UserID:      userID,
		ProductID:   productID,
		AccessLink:  accessLink,
		PurchasedAt: time.Now(),
	}
}
