package api

import (
	"net"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/nexogroup/nexo-server/internal/errors"
	"github.com/nexogroup/nexo-server/internal/ratelimit"
)

// rateLimit returns an operation middleware that limits requests per client
// IP. Requests over the limit get 429 RATE_LIMITED.
func (s *Server) rateLimit(limiter *ratelimit.KeyedRateLimiter, route string) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if limiter == nil {
			next(ctx)
			return
		}

		key := clientIP(ctx.RemoteAddr())
		if !limiter.Allow(key) {
			s.logger.Warn("Rate limit exceeded", "ip", key, "route", route)
			if s.metrics != nil {
				s.metrics.RateLimited(route)
			}
			_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests,
				"too many requests", domainerrors.RateLimited("too many requests, try again later"))
			return
		}

		next(ctx)
	}
}

// clientIP strips the port from a remote address. RealIP middleware has
// already applied X-Forwarded-For and X-Real-IP.
func clientIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
