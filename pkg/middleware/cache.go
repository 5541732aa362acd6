package middleware

import (
	"net/http"
	"strconv"
)

// CacheControl marks successful GET and HEAD responses as publicly cacheable
// for maxAge seconds. Error responses are sent with no-store so a transient
// failure is never cached.
func CacheControl(maxAge int) func(http.Handler) http.Handler {
	public := "public, max-age=" + strconv.Itoa(maxAge)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			rw := newStatusRecorder(w)
			rw.beforeHeader = func(status int) {
				if status >= 200 && status < 300 {
					w.Header().Set("Cache-Control", public)
				} else {
					w.Header().Set("Cache-Control", "no-store")
				}
			}
			next.ServeHTTP(rw, r)
		})
	}
}
