package middleware

import (
	"net"
	"net/http"

	"github.com/skyhaventravel/skyhaven-backend/api/responses"
	"github.com/skyhaventravel/skyhaven-backend/pkg/config"
	pkgerrors "github.com/skyhaventravel/skyhaven-backend/pkg/errors"
	"github.com/skyhaventravel/skyhaven-backend/pkg/logger"
	pkgredis "github.com/skyhaventravel/skyhaven-backend/pkg/redis"
)

// RateLimit applies a fixed-window request limit per authenticated user,
// falling back to the caller's IP for anonymous traffic.
func RateLimit(cfg config.RateLimitConfig, client *pkgredis.Client, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if client == nil || cfg.RequestsPerWindow <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			scope := UserIDFromContext(r.Context())
			if scope == "" {
				scope = clientIP(r)
			}

			allowed, _, err := client.FixedWindowAllow(r.Context(), scope, cfg.RequestsPerWindow, cfg.Window)
			if err != nil {
				// rate limiting is advisory; a redis hiccup should not 500 traffic
				if logg != nil {
					logg.Warn(r.Context(), "rate limit check failed")
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
