package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"digital-storefront/internal/config"
	"digital-storefront/internal/domain"
	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/domain/ports/adapter"
	"digital-storefront/internal/domain/ports/repository"
	"digital-storefront/internal/infra/logging"
	"digital-storefront/internal/infra/security"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ GatewayConfigUseCase = (*gatewayConfigUC)(nil)

// GatewayConfigUseCase resolves gateway credentials with one precedence:
// process configuration, then stored payment_config rows, then absent.
type GatewayConfigUseCase interface {
	Credentials(ctx context.Context) (adapter.GatewayCredentials, error)
	WebhookSecret(ctx context.Context) (string, error)
	// Store upserts an admin-editable key. Secret keys are sealed when a sealer is configured.
	Store(ctx context.Context, key, value string) error
	// List returns stored keys with secret values masked.
	List(ctx context.Context) ([]*model.PaymentConfigEntry, error)
}

// Sealer encrypts values at rest; *security.EncryptionService implements it.
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(value string) (string, error)
}

type gatewayConfigUC struct {
	static config.PaymentConfig
	stored repository.PaymentConfigRepository
	sealer Sealer
	log    *zerolog.Logger
}

func NewGatewayConfigUseCase(static config.PaymentConfig, stored repository.PaymentConfigRepository, sealer Sealer, logger *zerolog.Logger) *gatewayConfigUC {
	return &gatewayConfigUC{static: static, stored: stored, sealer: sealer, log: logger}
}

func (u *gatewayConfigUC) Credentials(ctx context.Context) (adapter.GatewayCredentials, error) {
	defer logging.TraceDuration(u.log, "GatewayConfigUC.Credentials")()

	keyID, err := u.resolve(ctx, u.static.KeyID, model.PaymentConfigKeyID)
	if err != nil {
		return adapter.GatewayCredentials{}, err
	}
	secret, err := u.resolve(ctx, u.static.KeySecret, model.PaymentConfigKeySecret)
	if err != nil {
		return adapter.GatewayCredentials{}, err
	}
	creds := adapter.GatewayCredentials{KeyID: keyID, KeySecret: secret}
	if !creds.Complete() {
		return creds, domain.ErrGatewayNotConfigured
	}
	return creds, nil
}

func (u *gatewayConfigUC) WebhookSecret(ctx context.Context) (string, error) {
	secret, err := u.resolve(ctx, u.static.WebhookSecret, model.PaymentConfigWebhookSecret)
	if err != nil {
		return "", err
	}
	if secret == "" {
		return "", domain.ErrWebhookNotConfigured
	}
	return secret, nil
}

// resolve returns the configured value, else the stored one, else "".
func (u *gatewayConfigUC) resolve(ctx context.Context, configured, key string) (string, error) {
	if v := strings.TrimSpace(configured); v != "" {
		return v, nil
	}
	if u.stored == nil {
		return "", nil
	}
	v, err := u.stored.Get(ctx, repository.NoTX, key)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load %s: %w", key, err)
	}
	if u.sealer == nil && strings.HasPrefix(v, security.SealedPrefix) {
		u.log.Error().Str("key", key).Msg("stored gateway secret is encrypted but no encryption key is configured")
		return "", domain.ErrGatewayNotConfigured
	}
	if u.sealer != nil {
		if v, err = u.sealer.Open(v); err != nil {
			u.log.Error().Err(err).Str("key", key).Msg("stored gateway secret cannot be decrypted")
			return "", domain.ErrGatewayNotConfigured
		}
	}
	return strings.TrimSpace(v), nil
}

func (u *gatewayConfigUC) Store(ctx context.Context, key, value string) error {
	defer logging.TraceDuration(u.log, "GatewayConfigUC.Store")()

	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if !model.IsKnownPaymentConfigKey(key) || value == "" {
		return domain.ErrInvalidArgument
	}
	if model.IsSecretPaymentConfigKey(key) && u.sealer != nil {
		sealed, err := u.sealer.Seal(value)
		if err != nil {
			return fmt.Errorf("seal %s: %w", key, err)
		}
		value = sealed
	}
	if err := u.stored.Set(ctx, repository.NoTX, key, value); err != nil {
		return err
	}
	u.log.Info().Str("key", key).Msg("payment setting updated")
	return nil
}

func (u *gatewayConfigUC) List(ctx context.Context) ([]*model.PaymentConfigEntry, error) {
	entries, err := u.stored.List(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if model.IsSecretPaymentConfigKey(e.Key) {
			e.Value = "********"
		}
	}
	return entries, nil
}
