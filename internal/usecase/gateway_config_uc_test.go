//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"digital-storefront/internal/config"
	"digital-storefront/internal/domain"
	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/infra/security"
	"digital-storefront/internal/usecase"
)

const testEncryptionKey = "0123456789abcdef0123456789abcdef"

func TestGatewayConfigUseCase_Credentials(t *testing.T) {
	ctx := context.Background()

	t.Run("configuration wins over stored rows", func(t *testing.T) {
		stored := NewMockPaymentConfigRepo()
		_ = stored.Set(ctx, nil, model.PaymentConfigKeyID, "rzp_stored")
		_ = stored.Set(ctx, nil, model.PaymentConfigKeySecret, "stored_secret")
		uc := usecase.NewGatewayConfigUseCase(config.PaymentConfig{KeyID: "rzp_env"}, stored, nil, newTestLogger())

		creds, err := uc.Credentials(ctx)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if creds.KeyID != "rzp_env" || creds.KeySecret != "stored_secret" {
			t.Errorf("unexpected precedence result %+v", creds)
		}
	})

	t.Run("nothing configured", func(t *testing.T) {
		uc := usecase.NewGatewayConfigUseCase(config.PaymentConfig{}, NewMockPaymentConfigRepo(), nil, newTestLogger())
		if _, err := uc.Credentials(ctx); !errors.Is(err, domain.ErrGatewayNotConfigured) {
			t.Errorf("expected ErrGatewayNotConfigured, got %v", err)
		}
		if _, err := uc.WebhookSecret(ctx); !errors.Is(err, domain.ErrWebhookNotConfigured) {
			t.Errorf("expected ErrWebhookNotConfigured, got %v", err)
		}
	})

	t.Run("storage errors propagate", func(t *testing.T) {
		stored := NewMockPaymentConfigRepo()
		stored.GetErr = errors.New("connection reset")
		uc := usecase.NewGatewayConfigUseCase(config.PaymentConfig{}, stored, nil, newTestLogger())
		_, err := uc.Credentials(ctx)
		if err == nil || errors.Is(err, domain.ErrGatewayNotConfigured) {
			t.Errorf("expected the storage error, got %v", err)
		}
	})

	t.Run("sealed secrets round trip", func(t *testing.T) {
		enc, err := security.NewEncryptionService(testEncryptionKey)
		if err != nil {
			t.Fatal(err)
		}
		stored := NewMockPaymentConfigRepo()
		uc := usecase.NewGatewayConfigUseCase(config.PaymentConfig{}, stored, enc, newTestLogger())

		if err := uc.Store(ctx, model.PaymentConfigKeyID, "rzp_live_1"); err != nil {
			t.Fatal(err)
		}
		if err := uc.Store(ctx, model.PaymentConfigKeySecret, "live_secret"); err != nil {
			t.Fatal(err)
		}

		raw, _ := stored.Get(ctx, nil, model.PaymentConfigKeySecret)
		if !strings.HasPrefix(raw, security.SealedPrefix) || strings.Contains(raw, "live_secret") {
			t.Errorf("secret must be sealed at rest, got %q", raw)
		}
		raw, _ = stored.Get(ctx, nil, model.PaymentConfigKeyID)
		if raw != "rzp_live_1" {
			t.Errorf("key id is not secret and must stay plain, got %q", raw)
		}

		creds, err := uc.Credentials(ctx)
		if err != nil || creds.KeySecret != "live_secret" {
			t.Errorf("expected decrypted secret, got %+v, %v", creds, err)
		}

		noKey := usecase.NewGatewayConfigUseCase(config.PaymentConfig{}, stored, nil, newTestLogger())
		if _, err := noKey.Credentials(ctx); !errors.Is(err, domain.ErrGatewayNotConfigured) {
			t.Errorf("sealed value without a key must be unusable, got %v", err)
		}
	})
}

func TestGatewayConfigUseCase_StoreAndList(t *testing.T) {
	ctx := context.Background()
	stored := NewMockPaymentConfigRepo()
	uc := usecase.NewGatewayConfigUseCase(config.PaymentConfig{}, stored, nil, newTestLogger())

	if err := uc.Store(ctx, "currency", "USD"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected unknown key rejected, got %v", err)
	}
	if err := uc.Store(ctx, model.PaymentConfigKeyID, "  "); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected empty value rejected, got %v", err)
	}
	_ = uc.Store(ctx, model.PaymentConfigKeyID, "rzp_test_1")
	_ = uc.Store(ctx, model.PaymentConfigWebhookSecret, "whsec")

	entries, err := uc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]string{}
	for _, e := range entries {
		got[e.Key] = e.Value
	}
	if got[model.PaymentConfigKeyID] != "rzp_test_1" {
		t.Errorf("key id must be listed in clear, got %q", got[model.PaymentConfigKeyID])
	}
	if got[model.PaymentConfigWebhookSecret] != "********" {
		t.Errorf("webhook secret must be masked, got %q", got[model.PaymentConfigWebhookSecret])
	}

	secret, err := uc.WebhookSecret(ctx)
	if err != nil || secret != "whsec" {
		t.Errorf("expected stored webhook secret, got %q, %v", secret, err)
	}
}
