package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nexogroup/nexo-server/internal/auth"
	"github.com/nexogroup/nexo-server/internal/domain"
	domainerrors "github.com/nexogroup/nexo-server/internal/errors"
	"github.com/nexogroup/nexo-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// callerKey is the context key for the resolved request caller.
const callerKey ctxKey = "caller"

// AdminKeyHeader carries the shared admin secret.
const AdminKeyHeader = "x-admin-key"

// CallerFrom returns the caller resolved for the request. Anonymous requests
// are GUEST.
func CallerFrom(ctx context.Context) service.Caller {
	if caller, ok := ctx.Value(callerKey).(service.Caller); ok {
		return caller
	}
	return service.Caller{Role: domain.RoleGuest}
}

// resolveRole is middleware that resolves the caller's role and stores it in
// context. A matching x-admin-key makes the caller ADMIN; otherwise a valid
// bearer session makes them MEMBER. It never rejects a request: handlers
// decide what each role may do.
func (s *Server) resolveRole(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := service.Caller{Role: domain.RoleGuest}

		if key := r.Header.Get(AdminKeyHeader); key != "" {
			if auth.AdminKeyMatches(s.adminKey, key) {
				caller = service.Admin()
			} else {
				s.logger.Warn("Rejected admin key", "path", r.URL.Path)
			}
		}

		if !caller.IsAdmin() {
			if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
				if resolved, err := s.services.Auth.ResolveSession(r.Context(), token); err == nil {
					caller = resolved
				}
			}
		}

		ctx := context.WithValue(r.Context(), callerKey, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireAdmin returns the caller if it holds the admin key. Any other
// caller, member sessions included, is 401.
func RequireAdmin(ctx context.Context) (service.Caller, error) {
	caller := CallerFrom(ctx)
	if !caller.IsAdmin() {
		return service.Caller{}, domainerrors.Unauthorized("admin key required")
	}
	return caller, nil
}

// adminOnly is an operation middleware for admin routes. It runs before
// huma reads the body, so rejected callers never see validation errors.
func (s *Server) adminOnly(ctx huma.Context, next func(huma.Context)) {
	if _, err := RequireAdmin(ctx.Context()); err != nil {
		_ = huma.WriteErr(s.api, ctx, http.StatusUnauthorized, err.Error(), err)
		return
	}
	next(ctx)
}

// RequireMember returns the caller if it is a signed-in member or an admin.
func RequireMember(ctx context.Context) (service.Caller, error) {
	caller := CallerFrom(ctx)
	if caller.Role == domain.RoleGuest {
		return service.Caller{}, domainerrors.Unauthorized("authentication required")
	}
	return caller, nil
}
