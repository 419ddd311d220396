package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/rabetweb/internal/common"
	"github.com/dmitrijs2005/rabetweb/internal/logging"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error to its HTTP status and the message shown to the
// caller. Server-side failures get a generic message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrNoSession):
		return http.StatusUnauthorized, common.ErrNoSession.Error()
	case errors.Is(err, common.ErrInvalidSession):
		return http.StatusUnauthorized, common.ErrInvalidSession.Error()
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, common.ErrInvalidToken.Error()
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, common.ErrInvalidCredentials.Error()
	case errors.Is(err, common.ErrAccountDisabled):
		return http.StatusUnauthorized, common.ErrAccountDisabled.Error()
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, common.ErrForbidden.Error()
	case errors.Is(err, common.ErrAlreadyExists):
		return http.StatusBadRequest, common.ErrAlreadyExists.Error()
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, common.ErrTooManyAttempts):
		return http.StatusTooManyRequests, common.ErrTooManyAttempts.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	} else {
		logger.Debug(r.Context(), "request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

// decodeJSON reads a JSON body into v. Malformed bodies are validation
// errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body", common.ErrValidation)
	}
	return nil
}
