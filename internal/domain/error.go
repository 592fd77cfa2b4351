package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnauthorized       = errors.New("authentication required")
	ErrLockNotAcquired    = errors.New("lock is held by another worker")
	ErrRateLimited        = errors.New("too many requests")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid execution context")

	// Catalog
	ErrProductNotFound  = errors.New("product not found")
	ErrAlreadyPurchased = errors.New("you have already purchased this product")

	// Customers
	ErrUserBanned = errors.New("this account has been suspended")

	// Promo codes
	ErrPromoInvalid   = errors.New("invalid promo code")
	ErrPromoExpired   = errors.New("this promo code has expired")
	ErrPromoExhausted = errors.New("this promo code has reached its usage limit")

	// Payments
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrInvalidSignature     = errors.New("invalid payment signature")
	ErrGatewayNotConfigured = errors.New("payment gateway not configured")
	ErrWebhookNotConfigured = errors.New("webhook secret not configured")
	ErrGatewayUnavailable   = errors.New("payment gateway request failed")

	// Invoices
	ErrInvoiceNotFound = errors.New("invoice not found")
)
