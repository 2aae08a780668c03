package providers

import (
	"github.com/samber/do/v2"

	"github.com/nexogroup/nexo-server/internal/auth"
	"github.com/nexogroup/nexo-server/internal/config"
	"github.com/nexogroup/nexo-server/internal/logger"
	"github.com/nexogroup/nexo-server/internal/metrics"
	"github.com/nexogroup/nexo-server/internal/notify"
	"github.com/nexogroup/nexo-server/internal/service"
)

// ProvideMetrics provides the Prometheus collectors.
func ProvideMetrics(i do.Injector) (*metrics.Metrics, error) {
	return metrics.New(), nil
}

// ProvideNotifier provides the email renderer backed by the email log.
func ProvideNotifier(i do.Injector) (*notify.Notifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return notify.New(storeHandle.Store, notify.Config{
		PublicURL: cfg.Server.PublicURL,
		GroupName: cfg.App.GroupName,
	}, log.Logger)
}

// ProvideIntentionService provides the intention service.
func ProvideIntentionService(i do.Injector) (*service.IntentionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.InviteTokens](i)
	notifier := do.MustInvoke[*notify.Notifier](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewIntentionService(storeHandle.Store, tokens, notifier, indexHandle.MemberIndex, m, log.Logger), nil
}

// ProvideRegistrationService provides the registration service.
func ProvideRegistrationService(i do.Injector) (*service.RegistrationService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.InviteTokens](i)
	notifier := do.MustInvoke[*notify.Notifier](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRegistrationService(storeHandle.Store, tokens, notifier, indexHandle.MemberIndex, m, log.Logger), nil
}

// ProvideMemberService provides the member service.
func ProvideMemberService(i do.Injector) (*service.MemberService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMemberService(storeHandle.Store, indexHandle.MemberIndex, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sessions := do.MustInvoke[*auth.SessionTokens](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, sessions, log.Logger), nil
}

// ProvideMeetingService provides the meeting service.
func ProvideMeetingService(i do.Injector) (*service.MeetingService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMeetingService(storeHandle.Store, m, log.Logger), nil
}

// ProvideMembershipService provides the dues service.
func ProvideMembershipService(i do.Injector) (*service.MembershipService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMembershipService(storeHandle.Store, m, log.Logger), nil
}

// ProvideDashboardService provides the dashboard service.
func ProvideDashboardService(i do.Injector) (*service.DashboardService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	return service.NewDashboardService(storeHandle.Store), nil
}

// ProvideNoticeService provides the notice service.
func ProvideNoticeService(i do.Injector) (*service.NoticeService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewNoticeService(storeHandle.Store, log.Logger), nil
}

// ProvideThankService provides the thank service.
func ProvideThankService(i do.Injector) (*service.ThankService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewThankService(storeHandle.Store, log.Logger), nil
}

// ProvideEmailLogService provides the email log service.
func ProvideEmailLogService(i do.Injector) (*service.EmailLogService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	return service.NewEmailLogService(storeHandle.Store), nil
}
