// Package middleware provides the HTTP middleware stack of the storefront API.
package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/furnivision/pkg/auth"
	"github.com/shashiranjanraj/furnivision/pkg/response"
)

// window counts requests of one client in a fixed window.
type window struct {
	count   int
	resetAt time.Time
}

// limiter holds the windows of one RateLimit middleware.
type limiter struct {
	mu      sync.Mutex
	max     int
	size    time.Duration
	clients map[string]*window
	swept   time.Time
}

func (l *limiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.swept) > l.size {
		for k, w := range l.clients {
			if now.After(w.resetAt) {
				delete(l.clients, k)
			}
		}
		l.swept = now
	}

	w, ok := l.clients[key]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(l.size)}
		l.clients[key] = w
	}
	w.count++
	return w.count <= l.max
}

// clientKey is the signed-in user when Authenticate ran, else the client IP.
func clientKey(r *http.Request) string {
	if id, ok := auth.FromContext(r.Context()); ok {
		return "user:" + id.ID
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return "ip:" + strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// RateLimit allows each client max requests per window and answers 429
// with Retry-After beyond that.
func RateLimit(max int, size time.Duration) func(http.Handler) http.Handler {
	l := &limiter{max: max, size: size, clients: map[string]*window{}, swept: time.Now()}
	retry := strconv.Itoa(int(size.Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(clientKey(r), time.Now()) {
				w.Header().Set("Retry-After", retry)
				response.TooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
