package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"digital-storefront/internal/domain/model"

	"github.com/golang-jwt/jwt/v5"
)

// ===== Session/JWT primitives =====

type AuthConfig struct {
	HMACSecret []byte
	CookieName string
}

// AuthManager verifies customer sessions issued by the identity provider.
type AuthManager struct{ cfg AuthConfig }

func NewAuthManager(secret, cookieName string) *AuthManager {
	if cookieName == "" {
		cookieName = "session"
	}
	return &AuthManager{cfg: AuthConfig{HMACSecret: []byte(secret), CookieName: cookieName}}
}

type CustomerClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Mint signs a session token for p. Used by local tooling and tests.
func (a *AuthManager) Mint(p model.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := CustomerClaims{
		Email: p.Email,
		Name:  p.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   p.UserID,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.cfg.HMACSecret)
}

func (a *AuthManager) ParseFromRequest(r *http.Request) (model.Principal, error) {
	// Authorization: Bearer <jwt>
	if hdr := r.Header.Get("Authorization"); hdr != "" {
		if strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
			return a.parse(strings.TrimSpace(hdr[7:]))
		}
	}
	// Cookie
	if c, err := r.Cookie(a.cfg.CookieName); err == nil {
		return a.parse(c.Value)
	}
	return model.Principal{}, errors.New("missing token")
}

func (a *AuthManager) parse(tok string) (model.Principal, error) {
	if len(a.cfg.HMACSecret) == 0 {
		return model.Principal{}, errors.New("session secret not configured")
	}
	claims := &CustomerClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.cfg.HMACSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tkn.Valid {
		return model.Principal{}, errors.New("invalid token")
	}
	if claims.Subject == "" || claims.Email == "" {
		return model.Principal{}, errors.New("token lacks subject or email")
	}
	return model.Principal{UserID: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}

type principalKey struct{}

func withPrincipal(ctx context.Context, p model.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the authenticated customer, or a zero Principal.
func PrincipalFrom(ctx context.Context) model.Principal {
	p, _ := ctx.Value(principalKey{}).(model.Principal)
	return p
}
