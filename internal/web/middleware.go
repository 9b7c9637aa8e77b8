package web

import (
	"log"
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimit rejects requests beyond the limiter's budget with 429. The
// limiter is shared across all clients: it protects the completion API quota,
// not per-user fairness.
func RateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.Printf("⚠️ Rate limit hit: %s %s", r.Method, r.URL.Path)
				http.Error(w, "Too many requests, slow down.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
