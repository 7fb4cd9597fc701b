// Package ratelimit provides per-client request throttling for the HTTP API.
package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter hands out one token bucket per client key and evicts buckets
// idle longer than the window. Defaults mirror the service's historical
// budget of 100 requests per 15 minutes.
type Limiter struct {
	mu        sync.Mutex
	clients   map[string]*client
	limit     rate.Limit
	burst     int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type client struct {
	bucket *rate.Limiter
	seen   time.Time
}

// New creates a limiter allowing perWindow requests per window per client.
func New(perWindow int, window time.Duration) *Limiter {
	if perWindow <= 0 {
		perWindow = 100
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &Limiter{
		clients: make(map[string]*client),
		limit:   rate.Limit(float64(perWindow) / window.Seconds()),
		burst:   perWindow,
		window:  window,
		now:     time.Now,
	}
}

// Allow reports whether the client identified by key may proceed.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.window {
		l.sweep(now)
	}

	c := l.clients[key]
	if c == nil {
		c = &client{bucket: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.seen = now
	return c.bucket.Allow()
}

// sweep drops buckets not seen within the window. Caller holds l.mu.
func (l *Limiter) sweep(now time.Time) {
	for key, c := range l.clients {
		if now.Sub(c.seen) > l.window {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}

// Middleware throttles requests by client IP, answering 429 when the
// budget is exhausted.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientIP(r)) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"success":false,"error":"Too many requests"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the peer address, ignoring the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
