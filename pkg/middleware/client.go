package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

// ClientIDHeader carries the opaque identifier a browser uses to address its
// own cart and wishlist slots.
const ClientIDHeader = "X-Client-ID"

type contextKeyType string

const clientIDKey contextKeyType = "client_id"

var clientIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ClientID resolves the calling client's identifier from the X-Client-ID
// header. Missing or malformed values are replaced with a fresh UUID, which is
// echoed back so the caller can reuse it on subsequent requests.
func ClientID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(ClientIDHeader)
			if !clientIDPattern.MatchString(id) {
				id = uuid.New().String()
			}
			w.Header().Set(ClientIDHeader, id)

			ctx := context.WithValue(r.Context(), clientIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIDFromContext extracts the client ID set by ClientID.
func ClientIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(clientIDKey).(string); ok {
		return id
	}
	return ""
}
