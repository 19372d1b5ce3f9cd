package server

import (
	"net/http"
	"sync"
	"time"

	"luxury-tycoon/internal/errors"
)

// rateLimiter is a token bucket. A nil limiter allows everything.
type rateLimiter struct {
	rate       float64 // tokens per second
	burst      int     // max tokens
	now        func() time.Time
	mu         sync.Mutex
	tokens     float64
	lastUpdate time.Time
}

// newRateLimiter returns nil when rate is not positive. A burst below one
// is raised to one.
func newRateLimiter(rate float64, burst int, now func() time.Time) *rateLimiter {
	if rate <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	if now == nil {
		now = time.Now
	}
	return &rateLimiter{
		rate:       rate,
		burst:      burst,
		now:        now,
		tokens:     float64(burst),
		lastUpdate: now(),
	}
}

// Allow takes a token if one is available.
func (r *rateLimiter) Allow() bool {
	if r == nil {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.tokens += now.Sub(r.lastUpdate).Seconds() * r.rate
	r.lastUpdate = now
	if r.tokens > float64(r.burst) {
		r.tokens = float64(r.burst)
	}

	if r.tokens >= 1 {
		r.tokens--
		return true
	}
	return false
}

// limited rejects requests with 429 once the server-wide action budget is
// spent.
func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			s.writeError(w, http.StatusTooManyRequests, errors.ErrRateLimited)
			return
		}
		next(w, r)
	}
}
