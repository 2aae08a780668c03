package api

import "github.com/nexogroup/nexo-server/internal/service"

// Services groups all business logic services used by the API server.
type Services struct {
	Intention    *service.IntentionService
	Registration *service.RegistrationService
	Member       *service.MemberService
	Auth         *service.AuthService
	Meeting      *service.MeetingService
	Membership   *service.MembershipService
	Dashboard    *service.DashboardService
	Notice       *service.NoticeService
	Thank        *service.ThankService
	EmailLog     *service.EmailLogService
}
