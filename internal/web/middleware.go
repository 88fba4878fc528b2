package web

import (
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"f1league-app/internal/auth"
	"f1league-app/internal/model"

	"golang.org/x/time/rate"
)

const sessionCookieName = "f1league_session"

// WithRole resolves the session cookie into a role on the request context.
// Requests without a valid session are viewers.
func WithRole(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := model.RoleViewer
			if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
				if tokens != nil {
					if claims, err := tokens.Validate(cookie.Value); err == nil {
						role = claims.Role
					}
				}
				if role != model.RoleAdmin {
					clearSessionCookie(w)
				}
			}
			next.ServeHTTP(w, r.WithContext(auth.WithRole(r.Context(), role)))
		})
	}
}

// RequireAdmin sends non-admin callers to the login page.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsAdmin(r.Context()) {
			target := "/admin/login?error=login_required&next=" + url.QueryEscape(refererPath(r))
			redirect(w, r, target)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func refererPath(r *http.Request) string {
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Path != "" && ref.Host == r.Host {
		return ref.Path
	}
	return "/"
}

const (
	cleanupThreshold = 500
	maxIdleAge       = 10 * time.Minute
)

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter hands out one token bucket per client IP and prunes idle
// entries once the map grows past cleanupThreshold.
type IPRateLimiter struct {
	ips map[string]*ipEntry
	mu  sync.Mutex
	r   rate.Limit
	b   int
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips: make(map[string]*ipEntry),
		r:   r,
		b:   b,
	}
}

func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	if len(i.ips) > cleanupThreshold {
		cutoff := time.Now().Add(-maxIdleAge)
		for k, e := range i.ips {
			if e.lastSeen.Before(cutoff) {
				delete(i.ips, k)
			}
		}
	}

	e, exists := i.ips[ip]
	if !exists {
		e = &ipEntry{limiter: rate.NewLimiter(i.r, i.b)}
		i.ips[ip] = e
	}
	e.lastSeen = time.Now()
	return e.limiter
}

func RateLimitMiddleware(limiter *IPRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			if !limiter.GetLimiter(ip).Allow() {
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
