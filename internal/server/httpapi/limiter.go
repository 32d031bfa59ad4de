package httpapi

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/sparkbytes/internal/logging"
	"golang.org/x/time/rate"
)

// IPRateLimiter keeps a token bucket per client address.
type IPRateLimiter struct {
	mu     sync.RWMutex
	limits map[string]*rate.Limiter
	r      rate.Limit
	b      int
	log    logging.Logger
}

// NewIPRateLimiter allows r events per second with bursts of b per address.
// Idle buckets are dropped every few minutes until ctx is done.
func NewIPRateLimiter(ctx context.Context, r rate.Limit, b int, log logging.Logger) *IPRateLimiter {
	i := &IPRateLimiter{
		limits: make(map[string]*rate.Limiter),
		r:      r,
		b:      b,
		log:    log,
	}

	go i.cleanUpVisitors(ctx, 3*time.Minute)

	return i
}

func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.RLock()
	limiter, exists := i.limits[ip]
	i.mu.RUnlock()

	if !exists {
		i.mu.Lock()
		limiter, exists = i.limits[ip]
		if !exists {
			limiter = rate.NewLimiter(i.r, i.b)
			i.limits[ip] = limiter
		}
		i.mu.Unlock()
	}

	return limiter
}

func (i *IPRateLimiter) cleanUpVisitors(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			i.removeIdle(time.Now())
		}
	}
}

// removeIdle drops buckets that are full again, i.e. unused for a while.
func (i *IPRateLimiter) removeIdle(now time.Time) int {
	i.mu.Lock()
	defer i.mu.Unlock()

	count := 0
	for ip, limiter := range i.limits {
		if limiter.TokensAt(now) >= float64(limiter.Burst()) {
			delete(i.limits, ip)
			count++
		}
	}
	if count > 0 {
		i.log.Debug(context.Background(), "rate limiter cleanup", "removed", count, "active", len(i.limits))
	}
	return count
}

// Middleware answers 429 once an address has used up its bucket.
func (i *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if ip == "" {
			ip = "unknown_ip"
		}

		if !i.GetLimiter(ip).Allow() {
			writeDetail(w, r, http.StatusTooManyRequests, "Too many requests, try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}
