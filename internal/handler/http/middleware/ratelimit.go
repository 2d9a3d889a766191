package middleware

import (
	"net/http"
	"sync"

	"github.com/cmlabs-hris/hris-ledger/internal/handler/http/response"
	"golang.org/x/time/rate"
)

// UserRateLimiter keeps one token bucket per key.
type UserRateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	r        rate.Limit
	b        int
}

func NewUserRateLimiter(r rate.Limit, b int) *UserRateLimiter {
	return &UserRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		r:        r,
		b:        b,
	}
}

func (l *UserRateLimiter) GetLimiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(l.r, l.b)
		l.limiters[key] = limiter
	}
	return limiter
}

// RateLimitByUser throttles authenticated callers by user id and anonymous ones by remote address.
// r is requests per second, b the burst.
func RateLimitByUser(r rate.Limit, b int) func(http.Handler) http.Handler {
	limiter := NewUserRateLimiter(r, b)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			key := req.RemoteAddr
			if p, ok := PrincipalFromContext(req.Context()); ok {
				key = "user:" + p.UserID
			}

			if !limiter.GetLimiter(key).Allow() {
				response.TooManyRequests(w, "Too many requests")
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}
