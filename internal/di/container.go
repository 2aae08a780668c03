// Package di provides dependency injection configuration for the Nexo server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/nexogroup/nexo-server/internal/api"
	"github.com/nexogroup/nexo-server/internal/auth"
	"github.com/nexogroup/nexo-server/internal/config"
	"github.com/nexogroup/nexo-server/internal/di/providers"
	"github.com/nexogroup/nexo-server/internal/logger"
	"github.com/nexogroup/nexo-server/internal/metrics"
	"github.com/nexogroup/nexo-server/internal/notify"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideMetrics)

	// Storage and search
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Auth
	do.Provide(injector, providers.ProvideSessionTokens)
	do.Provide(injector, providers.ProvideInviteTokens)

	// Notifications
	do.Provide(injector, providers.ProvideNotifier)

	// Business services
	do.Provide(injector, providers.ProvideIntentionService)
	do.Provide(injector, providers.ProvideRegistrationService)
	do.Provide(injector, providers.ProvideMemberService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideMeetingService)
	do.Provide(injector, providers.ProvideMembershipService)
	do.Provide(injector, providers.ProvideDashboardService)
	do.Provide(injector, providers.ProvideNoticeService)
	do.Provide(injector, providers.ProvideThankService)
	do.Provide(injector, providers.ProvideEmailLogService)

	// Server
	do.Provide(injector, providers.ProvideRateLimiters)
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
// Invoking the server handle resolves the rest of the graph.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*metrics.Metrics](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*auth.SessionTokens](injector)
	_ = do.MustInvoke[*notify.Notifier](injector)
	_ = do.MustInvoke[*api.Server](injector)

	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}
