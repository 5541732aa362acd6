package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheControl(t *testing.T) {
	tests := []struct {
		name   string
		method string
		status int
		want   string
	}{
		{"successful get", http.MethodGet, http.StatusOK, "public, max-age=60"},
		{"successful head", http.MethodHead, http.StatusOK, "public, max-age=60"},
		{"not found", http.MethodGet, http.StatusNotFound, "no-store"},
		{"upstream failure", http.MethodGet, http.StatusBadGateway, "no-store"},
		{"post untouched", http.MethodPost, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			CacheControl(60)(statusHandler(tt.status)).ServeHTTP(rec, httptest.NewRequest(tt.method, "/api/v1/catalog/", nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Cache-Control"))
		})
	}
}

func TestCacheControl_ImplicitOK(t *testing.T) {
	rec := httptest.NewRecorder()
	handler := CacheControl(30)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "public, max-age=30", rec.Header().Get("Cache-Control"))
}
