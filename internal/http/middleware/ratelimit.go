package middleware

import (
	"net/http"
	"sync"
	"time"
)

// RateLimiter throttles widget rendering per client IP with a token
// bucket. Rendering a widget fans out catalog requests to tenant
// backends, so one hot client must not amplify into backend load.
type RateLimiter struct {
	mu    sync.Mutex
	seen  map[string]*tokenBucket
	rate  float64
	burst float64
	now   func() time.Time
}

type tokenBucket struct {
	tokens float64
	last   time.Time
}

// NewRateLimiter allows rate requests per second with the given burst
// per IP. A background sweep evicts idle buckets.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		seen:  make(map[string]*tokenBucket),
		rate:  rate,
		burst: float64(burst),
		now:   time.Now,
	}
	go rl.sweep()
	return rl
}

// Allow reports whether a request from ip fits the budget, consuming
// one token when it does.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.seen[ip]
	if !ok {
		b = &tokenBucket{tokens: rl.burst, last: now}
		rl.seen[ip] = b
	}

	b.tokens += now.Sub(b.last).Seconds() * rl.rate
	if b.tokens > rl.burst {
		b.tokens = rl.burst
	}
	b.last = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		rl.mu.Lock()
		cutoff := rl.now().Add(-10 * time.Minute)
		for ip, b := range rl.seen {
			if b.last.Before(cutoff) {
				delete(rl.seen, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit rejects requests over the per-IP budget with 429.
func RateLimit(rate float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(rate, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			// RealIP runs earlier in the chain and sets this header.
			if xri := r.Header.Get("X-Real-Ip"); xri != "" {
				ip = xri
			}
			if !limiter.Allow(ip) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
