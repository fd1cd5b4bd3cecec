package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"consulting-os/internal/config"
)

// RateLimiter implements fixed-window rate limiting with two budgets:
// a per-IP budget for the whole API and a tighter per-user budget for
// the AI drafting endpoints.
type RateLimiter struct {
	enabled bool

	requests int
	duration time.Duration

	draftingRequests int
	draftingDuration time.Duration

	buckets map[string]*bucket
	mu      sync.Mutex
}

type bucket struct {
	windowStart time.Time
	count       int
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(cfg *config.RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		enabled:          cfg.Enabled,
		requests:         cfg.Requests,
		duration:         cfg.Duration,
		draftingRequests: cfg.DraftingRequests,
		draftingDuration: cfg.DraftingDuration,
		buckets:          make(map[string]*bucket),
	}

	go rl.cleanupBuckets()

	return rl
}

// allow counts a request against the keyed window and reports whether it
// fits, returning the wait until the window resets when it does not.
func (rl *RateLimiter) allow(key string, limit int, window time.Duration) (bool, time.Duration) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[key]
	if !exists || now.Sub(b.windowStart) >= window {
		rl.buckets[key] = &bucket{windowStart: now, count: 1}
		return true, 0
	}

	if b.count < limit {
		b.count++
		return true, 0
	}

	return false, window - now.Sub(b.windowStart)
}

// Limit rate limits requests based on IP address
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.enabled {
			next.ServeHTTP(w, r)
			return
		}

		ok, retryAfter := rl.allow("ip:"+clientIP(r), rl.requests, rl.duration)
		if !ok {
			rejectRateLimited(w, retryAfter)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// LimitDrafting applies the drafting budget per authenticated user. It
// must run after Authenticate so the user ID is on the context; requests
// without one fall back to the IP key.
func (rl *RateLimiter) LimitDrafting(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.enabled {
			next.ServeHTTP(w, r)
			return
		}

		key := "draft-ip:" + clientIP(r)
		if userID, found := GetUserID(r); found {
			key = "draft-user:" + userID.String()
		}

		ok, retryAfter := rl.allow(key, rl.draftingRequests, rl.draftingDuration)
		if !ok {
			rejectRateLimited(w, retryAfter)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func rejectRateLimited(w http.ResponseWriter, retryAfter time.Duration) {
	seconds := int(retryAfter.Seconds()) + 1
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	w.WriteHeader(http.StatusTooManyRequests)
	w.Write([]byte(`{"error":"Rate limit exceeded. Please try again later."}`))
}

// cleanupBuckets removes stale windows from the map
func (rl *RateLimiter) cleanupBuckets() {
	for {
		time.Sleep(1 * time.Minute)

		rl.mu.Lock()
		for key, b := range rl.buckets {
			if time.Since(b.windowStart) > 3*time.Minute {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

// clientIP gets the client IP address from the request
func clientIP(r *http.Request) string {
	// X-Forwarded-For may carry a chain; the first entry is the client
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.Index(forwarded, ","); idx != -1 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return forwarded
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	return r.RemoteAddr
}
