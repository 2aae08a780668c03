package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/nexogroup/nexo-server/internal/api"
	"github.com/nexogroup/nexo-server/internal/config"
	"github.com/nexogroup/nexo-server/internal/logger"
	"github.com/nexogroup/nexo-server/internal/metrics"
	"github.com/nexogroup/nexo-server/internal/ratelimit"
	"github.com/nexogroup/nexo-server/internal/service"
)

// RateLimitersHandle holds the per-IP limiters of the public endpoints.
type RateLimitersHandle struct {
	Intake *ratelimit.KeyedRateLimiter
	Login  *ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimitersHandle) Shutdown() error {
	h.Intake.Stop()
	h.Login.Stop()
	return nil
}

// ProvideRateLimiters provides the intake and login rate limiters.
func ProvideRateLimiters(i do.Injector) (*RateLimitersHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return &RateLimitersHandle{
		Intake: ratelimit.PerMinute(cfg.RateLimit.IntakePerMinute, cfg.RateLimit.IntakeBurst),
		Login:  ratelimit.PerMinute(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst),
	}, nil
}

// ProvideAPIServer provides the HTTP handler with every route registered.
func ProvideAPIServer(i do.Injector) (*api.Server, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	limiters := do.MustInvoke[*RateLimitersHandle](i)

	services := &api.Services{
		Intention:    do.MustInvoke[*service.IntentionService](i),
		Registration: do.MustInvoke[*service.RegistrationService](i),
		Member:       do.MustInvoke[*service.MemberService](i),
		Auth:         do.MustInvoke[*service.AuthService](i),
		Meeting:      do.MustInvoke[*service.MeetingService](i),
		Membership:   do.MustInvoke[*service.MembershipService](i),
		Dashboard:    do.MustInvoke[*service.DashboardService](i),
		Notice:       do.MustInvoke[*service.NoticeService](i),
		Thank:        do.MustInvoke[*service.ThankService](i),
		EmailLog:     do.MustInvoke[*service.EmailLogService](i),
	}

	return api.NewServer(storeHandle.Store, services, indexHandle.MemberIndex, m, api.Options{
		AdminKey:           cfg.Auth.AdminKey,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		IntakeLimiter:      limiters.Intake,
		LoginLimiter:       limiters.Login,
	}, log.Logger), nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server and starts it in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	handler := do.MustInvoke[*api.Server](i)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
