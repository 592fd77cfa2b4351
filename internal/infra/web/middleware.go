package web

import (
	"context"
	"crypto/subtle"
	"net"
	"net/http"
	"strings"
	"time"

	"digital-storefront/internal/domain"
	"digital-storefront/internal/infra/logging"
	"digital-storefront/internal/infra/metrics"
	"digital-storefront/internal/infra/redis"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Middleware func(http.Handler) http.Handler

func TraceID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tid := r.Header.Get("X-Request-Id")
			if tid == "" || len(tid) > 64 {
				tid = uuid.NewString()
			}
			w.Header().Set("X-Request-Id", tid)
			ctx := logging.WithTraceID(r.Context(), tid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequestLog(logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: 200}
			next.ServeHTTP(ww, r)
			// user_id is only known after auth ran, so read it from the wrapped request.
			l := logging.With(ww.ctx(r), logger)
			l.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.status).
				Dur("duration", time.Since(start)).
				Msg("http_request")
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
	userID string
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *respWriter) ctx(r *http.Request) context.Context {
	if w.userID == "" {
		return r.Context()
	}
	return logging.WithUserID(r.Context(), w.userID)
}

func Recover(logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					l := logging.With(r.Context(), logger)
					l.Error().Interface("panic", rec).Msg("panic recovered")
					writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireCustomer rejects requests without a valid session and stores the principal.
func (s *Server) requireCustomer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := s.auth.ParseFromRequest(r)
		if err != nil {
			logging.With(r.Context(), s.log).Debug().Err(err).Msg("session rejected")
			writeError(w, domain.ErrUnauthorized)
			return
		}
		if rw, ok := w.(*respWriter); ok {
			rw.userID = p.UserID
		}
		ctx := logging.WithUserID(withPrincipal(r.Context(), p), p.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin provides simple Bearer token authentication for the admin API.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.AdminAPIKey == "" {
			s.log.Error().Msg("admin API key is not configured")
			metrics.IncAdminRequest("forbidden")
			writeJSON(w, http.StatusForbidden, errorBody{Error: "forbidden"})
			return
		}

		authHeader := r.Header.Get("Authorization")
		tokenParts := strings.SplitN(authHeader, " ", 2)
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			metrics.IncAdminRequest("unauthorized")
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
			return
		}
		if subtle.ConstantTimeCompare([]byte(tokenParts[1]), []byte(s.opts.AdminAPIKey)) != 1 {
			metrics.IncAdminRequest("forbidden")
			writeJSON(w, http.StatusForbidden, errorBody{Error: "forbidden"})
			return
		}

		metrics.IncAdminRequest("authorized")
		next.ServeHTTP(w, r)
	})
}

// Limiter is the fixed-window counter behind per-client throttling; *redis.RateLimiter implements it.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// rateLimit throttles by client IP. Limiter errors fail open.
func (s *Server) rateLimit(scope string) Middleware {
	return func(next http.Handler) http.Handler {
		if s.limiter == nil || s.opts.PromoLimit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := redis.ClientKey(scope, clientIP(r))
			ok, err := s.limiter.Allow(r.Context(), key, s.opts.PromoLimit, s.opts.PromoWindow)
			if err != nil {
				logging.With(r.Context(), s.log).Warn().Err(err).Str("scope", scope).Msg("rate limiter unavailable")
			} else if !ok {
				metrics.IncRateLimitTriggered(scope)
				writeError(w, domain.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP expects chi's RealIP to have rewritten RemoteAddr already.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
