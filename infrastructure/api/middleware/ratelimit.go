package middleware

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// TenantLimiter keeps one token bucket per tenant.
type TenantLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewTenantLimiter allows perSecond requests per tenant with the given burst.
// A burst below one defaults to one.
func NewTenantLimiter(perSecond float64, burst int) *TenantLimiter {
	if burst < 1 {
		burst = 1
	}
	return &TenantLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether tenant may make a request now.
func (l *TenantLimiter) Allow(tenant string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[tenant]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[tenant] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

// RateLimit rejects requests with 429 once the tenant's bucket is empty. It
// must run after RequireTenant. A nil limiter disables limiting.
func RateLimit(l *TenantLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(TenantID(r)) {
				WriteError(w, r, NewRateLimitError(), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
