// Package httputil writes the storefront's JSON response envelope.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/Nehra4u/Crystal-Ecommerce/pkg/errors"
	"github.com/Nehra4u/Crystal-Ecommerce/pkg/logger"
	"github.com/Nehra4u/Crystal-Ecommerce/pkg/validator"
)

// Response is the envelope every JSON endpoint answers with. Exactly one of
// Data and Error is set.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON encodes v with the given status. Encoding failures are dropped
// since the status line has already been sent.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err onto a status and error body. Validation failures are
// reported per field. 5xx responses are logged with the request-scoped
// logger when RequestLogger is mounted, else with fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteValidationError(w, r, err)
		return
	}

	status, code, message := apperrors.Classify(err)
	if status >= http.StatusInternalServerError {
		l := logger.FromContext(r.Context())
		if l == slog.Default() && fallback != nil {
			l = fallback
		}
		l.ErrorContext(r.Context(), "request failed",
			slog.String("code", code),
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, Response{Error: &ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: logger.CorrelationIDFromContext(r.Context()),
	}})
}

// WriteValidationError answers 400. A validator.ValidationError is expanded
// into field messages; any other err (typically a body decode failure) is
// reported as invalid input with its text.
func WriteValidationError(w http.ResponseWriter, r *http.Request, err error) {
	body := &ErrorResponse{
		Code:      "INVALID_INPUT",
		Message:   err.Error(),
		RequestID: logger.CorrelationIDFromContext(r.Context()),
	}
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		body.Code = "VALIDATION_ERROR"
		body.Message = "request validation failed"
		body.Fields = valErr.Fields()
	}
	WriteJSON(w, http.StatusBadRequest, Response{Error: body})
}
