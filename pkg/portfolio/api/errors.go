package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
)

// Error codes used in API error bodies.
const (
	CodeValidation     = "validation_error"
	CodeInvalidJSON    = "invalid_json"
	CodeInvalidID      = "invalid_id"
	CodeNotFound       = "not_found"
	CodeConflict       = "conflict"
	CodeTooLarge       = "payload_too_large"
	CodeRateLimited    = "rate_limit_exceeded"
	CodeAssetsDisabled = "assets_disabled"
	CodeInternal       = "internal_error"
)

// APIError represents a JSON error response for the API.
type APIError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// WriteAPIError writes a JSON error response.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	apiErr := APIError{}
	apiErr.Error.Code = code
	apiErr.Error.Message = message
	apiErr.Error.Details = details

	_ = json.NewEncoder(w).Encode(apiErr)
}

// writeError maps a service error onto a status code and error body.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verrs  portfolio.ValidationErrors
		verr   *portfolio.ValidationError
		tooBig *http.MaxBytesError
	)

	switch {
	case errors.As(err, &verrs):
		WriteAPIError(w, http.StatusBadRequest, CodeValidation, "Validation failed", verrs.Fields())
	case errors.As(err, &verr):
		WriteAPIError(w, http.StatusBadRequest, CodeValidation, "Validation failed", map[string]string{verr.Field: verr.Message})
	case errors.Is(err, portfolio.ErrInvalidID):
		WriteAPIError(w, http.StatusBadRequest, CodeInvalidID, err.Error(), nil)
	case errors.Is(err, portfolio.ErrNotFound):
		WriteAPIError(w, http.StatusNotFound, CodeNotFound, err.Error(), nil)
	case errors.Is(err, portfolio.ErrConflict):
		WriteAPIError(w, http.StatusConflict, CodeConflict, err.Error(), nil)
	case errors.Is(err, portfolio.ErrValidation):
		WriteAPIError(w, http.StatusBadRequest, CodeValidation, err.Error(), nil)
	case errors.Is(err, portfolio.ErrAssetsDisabled):
		WriteAPIError(w, http.StatusNotImplemented, CodeAssetsDisabled, "Asset storage is not configured", nil)
	case errors.As(err, &tooBig):
		WriteAPIError(w, http.StatusRequestEntityTooLarge, CodeTooLarge, "Request body too large", nil)
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"err", err,
		)
		WriteAPIError(w, http.StatusInternalServerError, CodeInternal, "An internal server error occurred", nil)
	}
}

// writeDecodeError reports a body that could not be parsed as JSON.
func (h *Handler) writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		WriteAPIError(w, http.StatusRequestEntityTooLarge, CodeTooLarge, "Request body too large", nil)
		return
	}
	slog.DebugContext(r.Context(), "invalid request body", "err", err)
	WriteAPIError(w, http.StatusBadRequest, CodeInvalidJSON, "Request body must be valid JSON", nil)
}
