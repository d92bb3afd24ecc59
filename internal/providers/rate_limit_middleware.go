package providers

import (
	"net"
	"net/http"
	"studymail/internal/structures"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterSweepEvery = time.Minute

// RateLimiter hands out one token bucket per client IP. Buckets that have
// refilled completely are dropped on the next sweep; a fresh bucket starts
// full, so eviction never changes a decision.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	rate      rate.Limit
	burst     int
	enabled   bool
	lastSweep time.Time
	now       func() time.Time
}

func NewRateLimiter(conf *structures.Config) *RateLimiter {
	burst := conf.RateLimit.Burst
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters:  make(map[string]*rate.Limiter),
		rate:      rate.Limit(conf.RateLimit.RequestsPerSecond),
		burst:     burst,
		enabled:   conf.RateLimit.Enabled && conf.RateLimit.RequestsPerSecond > 0,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *RateLimiter) getLimiter(ip string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= limiterSweepEvery {
		l.sweep(now)
	}
	if limiter, ok := l.limiters[ip]; ok {
		return limiter
	}
	limiter := rate.NewLimiter(l.rate, l.burst)
	l.limiters[ip] = limiter
	return limiter
}

// sweep must be called with mu held.
func (l *RateLimiter) sweep(now time.Time) {
	for ip, limiter := range l.limiters {
		if limiter.TokensAt(now) >= float64(l.burst) {
			delete(l.limiters, ip)
		}
	}
	l.lastSweep = now
}

// Tracked reports how many client buckets are held.
func (l *RateLimiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func (l *RateLimiter) Wrap(next http.Handler) http.Handler {
	if !l.enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, _ := net.SplitHostPort(r.RemoteAddr)
		if ip == "" {
			ip = r.RemoteAddr
		}
		now := l.now()
		if !l.getLimiter(ip, now).AllowN(now, 1) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
