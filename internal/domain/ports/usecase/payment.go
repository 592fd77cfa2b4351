package usecase

import (
	"context"
	"time"
)

// PendingReaper defines the payment operation needed by background workers.
type PendingReaper interface {
	FailStalePending(ctx context.Context, olderThan time.Duration) (int64, error)
}
