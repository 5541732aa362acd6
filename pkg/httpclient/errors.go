package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/Nehra4u/Crystal-Ecommerce/pkg/errors"
)

const maxErrorBody = 1 << 20

// errorEnvelope is the {"error":{...}} body written by httputil.WriteError.
type errorEnvelope struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError consumes and closes the body of a non-2xx response from
// upstream and converts it to an error. Structured bodies keep their status
// semantics as an *AppError; anything else becomes a plain error carrying the
// status and raw body.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("%s returned status %d (read body: %w)", upstream, resp.StatusCode, err)
	}

	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil && env.Error != nil {
		return upstreamError(resp.StatusCode, env.Error.Code, env.Error.Message, upstream)
	}
	return fmt.Errorf("%s returned status %d: %s", upstream, resp.StatusCode, string(body))
}

func upstreamError(status int, code, message, upstream string) error {
	msg := upstream + ": " + message

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(upstream, message)
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(msg)
	case status == http.StatusConflict:
		return apperrors.Conflict(msg)
	case status == http.StatusUnprocessableEntity:
		return apperrors.Unprocessable(msg)
	case status == http.StatusServiceUnavailable:
		return apperrors.Unavailable(msg)
	case status >= 500:
		return fmt.Errorf("%s server error (%d/%s): %s", upstream, status, code, message)
	default:
		return &apperrors.AppError{Code: code, Message: msg, Status: status}
	}
}
