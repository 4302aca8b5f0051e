package httpserver

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/arielallagbe23/mealprep/internal/config"
	"golang.org/x/time/rate"
)

// sweepEvery is the number of lookups between two sweeps of idle clients.
const sweepEvery = 1000

type clientLimiters struct {
	mu      sync.Mutex
	byIP    map[string]*rate.Limiter
	rps     rate.Limit
	burst   int
	lookups int
}

func newClientLimiters(rps, burst int) *clientLimiters {
	return &clientLimiters{
		byIP:  make(map[string]*rate.Limiter),
		rps:   rate.Limit(rps),
		burst: burst,
	}
}

func (c *clientLimiters) allow(ip string) bool {
	c.mu.Lock()
	limiter, ok := c.byIP[ip]
	if !ok {
		limiter = rate.NewLimiter(c.rps, c.burst)
		c.byIP[ip] = limiter
	}
	c.lookups++
	if c.lookups%sweepEvery == 0 {
		c.sweep()
	}
	c.mu.Unlock()

	return limiter.Allow()
}

// sweep drops clients whose bucket has refilled. Callers hold mu.
func (c *clientLimiters) sweep() {
	for ip, limiter := range c.byIP {
		if limiter.Tokens() >= float64(c.burst) {
			delete(c.byIP, ip)
		}
	}
}

// RateLimitMiddleware enforces a per-client token bucket.
// RATE_LIMIT_RPS <= 0 turns it off.
func RateLimitMiddleware(cfg *config.Config, next http.Handler) http.Handler {
	if cfg.RateLimitRPS <= 0 {
		return next
	}

	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = cfg.RateLimitRPS
	}
	limiters := newClientLimiters(cfg.RateLimitRPS, burst)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiters.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP prefers the first X-Forwarded-For hop over RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
