package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Nehra4u/Crystal-Ecommerce/pkg/logger"
)

// RequestLogger stores a logger carrying the request's correlation and client
// ids in the context, retrievable with logger.FromContext. Mount it after
// RequestLogging and ClientID.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			id := ClientIDFromContext(ctx)
			if id == "" {
				id = r.Header.Get(ClientIDHeader)
			}
			if id != "" {
				ctx = logger.WithClientID(ctx, id)
			}
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
