package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Nehra4u/Crystal-Ecommerce/pkg/errors"
	"github.com/Nehra4u/Crystal-Ecommerce/pkg/logger"
	"github.com/Nehra4u/Crystal-Ecommerce/pkg/validator"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, nil)), &buf
}

// --- WriteJSON ---

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, Response{Data: map[string]string{"reference": "ord-1"}})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"reference":"ord-1"}}`, rec.Body.String())
}

// --- WriteError ---

func TestWriteError_AppError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/99", nil)
	WriteError(rec, req, apperrors.NotFound("catalog item", "99"), slog.Default())

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "catalog item with id 99 not found", resp.Error.Message)
}

func TestWriteError_WrappedSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("lookup: %w", apperrors.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("insert: %w", apperrors.ErrAlreadyExists), http.StatusConflict, "ALREADY_EXISTS"},
		{fmt.Errorf("parse: %w", apperrors.ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err, slog.Default())

		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
		assert.Equal(t, tc.code, decode(t, rec).Error.Code)
	}
}

func TestWriteError_UnknownErrorIsLoggedAndHidden(t *testing.T) {
	l, buf := bufferLogger()
	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", nil), errors.New("slot exploded"), l)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "slot exploded")
	assert.Contains(t, buf.String(), "slot exploded")
}

func TestWriteError_ServerAppErrorIsLogged(t *testing.T) {
	l, buf := bufferLogger()
	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil), apperrors.Internal(errors.New("db gone")), l)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "db gone")
}

func TestWriteError_ValidationError(t *testing.T) {
	type body struct {
		Email string `json:"email" validate:"required,email"`
	}
	err := validator.Validate(body{Email: "nope"})
	require.Error(t, err)

	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodPost, "/", nil), fmt.Errorf("place order: %w", err), slog.Default())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "must be a valid email address", resp.Error.Fields["email"])
}

func TestWriteError_RequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(logger.WithCorrelationID(req.Context(), "corr-42"))

	rec := httptest.NewRecorder()
	WriteError(rec, req, apperrors.Conflict("checkout is at the cart step"), slog.Default())
	assert.Equal(t, "corr-42", decode(t, rec).Error.RequestID)

	rec = httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), apperrors.ErrNotFound, slog.Default())
	assert.NotContains(t, rec.Body.String(), "request_id")
}

// --- WriteValidationError ---

func TestWriteValidationError_NonValidationError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", nil)
	req = req.WithContext(logger.WithCorrelationID(req.Context(), "corr-7"))
	rec := httptest.NewRecorder()
	WriteValidationError(rec, req, errors.New("decode request body: unexpected EOF"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "unexpected EOF")
	assert.Equal(t, "corr-7", resp.Error.RequestID)
}

func TestWriteError_ScopedLoggerPreferred(t *testing.T) {
	scoped, scopedBuf := bufferLogger()
	fallback, fallbackBuf := bufferLogger()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	req = req.WithContext(logger.NewContext(req.Context(), scoped))
	WriteError(httptest.NewRecorder(), req, errors.New("pool closed"), fallback)

	assert.Contains(t, scopedBuf.String(), "pool closed")
	assert.Zero(t, fallbackBuf.Len())
}

func TestWriteError_ClientErrorsNotLogged(t *testing.T) {
	l, buf := bufferLogger()
	WriteError(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), apperrors.NotFound("cart item", "3"), l)

	assert.Zero(t, buf.Len())
}
