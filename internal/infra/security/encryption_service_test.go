//go:build !integration

package security

import (
	"strings"
	"testing"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestEncryptionService_RoundTrip(t *testing.T) {
	svc, err := NewEncryptionService(testKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ct, err := svc.Encrypt("rzp_secret")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if ct == "rzp_secret" {
		t.Fatal("ciphertext must differ from plaintext")
	}
	pt, err := svc.Decrypt(ct)
	if err != nil || pt != "rzp_secret" {
		t.Fatalf("decrypt: %q %v", pt, err)
	}

	other, _ := svc.Encrypt("rzp_secret")
	if other == ct {
		t.Error("expected a fresh nonce per message")
	}
}

func TestEncryptionService_SealOpen(t *testing.T) {
	svc, _ := NewEncryptionService(testKey)

	sealed, err := svc.Seal("whsec_1")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if !strings.HasPrefix(sealed, SealedPrefix) {
		t.Fatalf("expected %q prefix, got %q", SealedPrefix, sealed)
	}
	if got, err := svc.Open(sealed); err != nil || got != "whsec_1" {
		t.Errorf("open: %q %v", got, err)
	}
	if got, err := svc.Open("plain-value"); err != nil || got != "plain-value" {
		t.Errorf("plain values must pass through: %q %v", got, err)
	}
	if _, err := svc.Open(SealedPrefix + "not-base64!"); err == nil {
		t.Error("expected error for corrupt sealed value")
	}
}

func TestNewEncryptionService_KeyLength(t *testing.T) {
	if _, err := NewEncryptionService("short"); err == nil {
		t.Error("expected error for invalid key length")
	}
}
