package usecase

import (
	"context"
	"strings"

	"digital-storefront/internal/domain"
	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/domain/ports/repository"
	"digital-storefront/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase exposes customer management for the admin API.
type UserUseCase interface {
	List(ctx context.Context, limit int) ([]*model.Profile, error)
	// Update applies the non-nil flags and returns the stored profile.
	Update(ctx context.Context, id string, banned, admin *bool) (*model.Profile, error)
}

type userUC struct {
	profiles repository.ProfileRepository
	log      *zerolog.Logger
}

func NewUserUseCase(profiles repository.ProfileRepository, logger *zerolog.Logger) *userUC {
	return &userUC{profiles: profiles, log: logger}
}

func (u *userUC) List(ctx context.Context, limit int) ([]*model.Profile, error) {
	defer logging.TraceDuration(u.log, "UserUC.List")()
	return u.profiles.List(ctx, repository.NoTX, limit)
}

func (u *userUC) Update(ctx context.Context, id string, banned, admin *bool) (*model.Profile, error) {
	defer logging.TraceDuration(u.log, "UserUC.Update")()

	id = strings.TrimSpace(id)
	if id == "" || (banned == nil && admin == nil) {
		return nil, domain.ErrInvalidArgument
	}
	if banned != nil {
		if err := u.profiles.SetBanned(ctx, repository.NoTX, id, *banned); err != nil {
			return nil, err
		}
		u.log.Info().Str("user_id", id).Bool("banned", *banned).Msg("customer ban flag changed")
	}
	if admin != nil {
		if err := u.profiles.SetAdmin(ctx, repository.NoTX, id, *admin); err != nil {
			return nil, err
		}
		u.log.Info().Str("user_id", id).Bool("admin", *admin).Msg("customer admin flag changed")
	}
	return u.profiles.FindByID(ctx, repository.NoTX, id)
}
