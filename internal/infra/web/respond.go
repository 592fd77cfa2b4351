package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"digital-storefront/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor is the single mapping from domain errors to HTTP status codes.
// Unknown errors become 500 with a generic message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrUserBanned):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrInvoiceNotFound):
		return http.StatusNotFound, rootMessage(err)
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrAlreadyPurchased),
		errors.Is(err, domain.ErrPromoInvalid),
		errors.Is(err, domain.ErrPromoExpired),
		errors.Is(err, domain.ErrPromoExhausted),
		errors.Is(err, domain.ErrInvalidSignature):
		return http.StatusBadRequest, rootMessage(err)
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, "already exists"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, err.Error()
	case errors.Is(err, domain.ErrGatewayNotConfigured),
		errors.Is(err, domain.ErrWebhookNotConfigured):
		return http.StatusInternalServerError, rootMessage(err)
	case errors.Is(err, domain.ErrGatewayUnavailable):
		return http.StatusBadGateway, domain.ErrGatewayUnavailable.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// rootMessage strips wrapping context so internal details stay in the logs.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, msg := statusFor(err)
	writeJSON(w, status, errorBody{Error: msg})
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return domain.ErrInvalidArgument
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return domain.ErrInvalidArgument
	}
	return nil
}

// pathUUID binds the {id} route parameter. Every stored id is a UUID, so a
// malformed one is answered with notFound instead of reaching the database.
func pathUUID(w http.ResponseWriter, r *http.Request, notFound error) (string, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, notFound)
		return "", false
	}
	return id.String(), true
}
