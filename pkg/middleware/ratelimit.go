package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// bucketSet holds one token bucket per caller key and forgets callers that
// have been idle for longer than ttl.
type bucketSet struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	now     func() time.Time
}

func newBucketSet(rps float64, burst int, ttl time.Duration) *bucketSet {
	return &bucketSet{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(rps),
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *bucketSet) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.buckets[key] = b
	}
	b.lastSeen = s.now()
	return b.limiter
}

func (s *bucketSet) evict() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, b := range s.buckets {
		if now.Sub(b.lastSeen) > s.ttl {
			delete(s.buckets, key)
		}
	}
}

func (s *bucketSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

func (s *bucketSet) evictLoop(ctx context.Context) {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evict()
		}
	}
}

// ipShare scales the per-address bucket, since several browsers may sit
// behind one address.
const ipShare = 4

// RateLimit enforces token buckets per caller. Every request draws from a
// bucket for its remote IP, sized ipShare times the per-client limit. A
// request that sent its own client ID also draws from that client's bucket,
// so rotating IDs cannot get past the address budget. Idle buckets are
// evicted until ctx is cancelled. Exceeding either limit yields 429.
func RateLimit(ctx context.Context, rps float64, burst int, logger *slog.Logger) func(http.Handler) http.Handler {
	clients := newBucketSet(rps, burst, 3*time.Minute)
	addrs := newBucketSet(rps*ipShare, burst*ipShare, 3*time.Minute)
	go clients.evictLoop(ctx)
	go addrs.evictLoop(ctx)
	return rateLimit(clients, addrs, logger)
}

func rateLimit(clients, addrs *bucketSet, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := remoteIP(r)
			allowed := addrs.get(key).Allow()
			// A generated ID is new on every request and would always get a
			// full bucket.
			if id := ClientIDFromContext(r.Context()); id != "" && id == r.Header.Get(ClientIDHeader) {
				key = id
				allowed = allowed && clients.get(id).Allow()
			}

			if !allowed {
				logger.WarnContext(r.Context(), "rate limit exceeded",
					slog.String("caller", key),
					slog.String("path", r.URL.Path),
				)
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{
						"code":    "RATE_LIMITED",
						"message": "too many requests",
					},
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// remoteIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// connection address.
func remoteIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(strings.TrimSpace(xri)); ip != nil {
			return ip.String()
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
