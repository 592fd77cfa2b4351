package repository

import (
	"context"
	"time"

	"digital-storefront/internal/domain/model"
)

type ProfileRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.Profile, error)
	// Upsert records the identity carried by a session token.
	Upsert(ctx context.Context, tx Tx, p *model.Profile) error

	// List returns the newest profiles first.
	List(ctx context.Context, tx Tx, limit int) ([]*model.Profile, error)
	// Count counts profiles created at or after since; a zero since counts all.
	Count(ctx context.Context, tx Tx, since time.Time) (int, error)
	SetBanned(ctx context.Context, tx Tx, id string, banned bool) error
	SetAdmin(ctx context.Context, tx Tx, id string, admin bool) error
}
