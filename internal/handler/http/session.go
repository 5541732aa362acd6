package http

import (
	"context"
	"net/http"

	"github.com/Nehra4u/Crystal-Ecommerce/internal/session"
	"github.com/Nehra4u/Crystal-Ecommerce/pkg/middleware"
)

// Sessions resolves the stores of a client. *session.Registry satisfies it.
type Sessions interface {
	Get(ctx context.Context, clientID string) *session.Session
}

func sessionFor(sessions Sessions, r *http.Request) *session.Session {
	return sessions.Get(r.Context(), middleware.ClientIDFromContext(r.Context()))
}
