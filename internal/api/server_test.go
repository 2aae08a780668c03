package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexogroup/nexo-server/internal/auth"
	"github.com/nexogroup/nexo-server/internal/logger"
	"github.com/nexogroup/nexo-server/internal/metrics"
	"github.com/nexogroup/nexo-server/internal/notify"
	"github.com/nexogroup/nexo-server/internal/ratelimit"
	"github.com/nexogroup/nexo-server/internal/search"
	"github.com/nexogroup/nexo-server/internal/service"
	"github.com/nexogroup/nexo-server/internal/store/sqlite"
)

const testAdminKey = "test-admin-key"

// testServer wraps the API server with a humatest client.
type testServer struct {
	*Server
	client humatest.TestAPI
}

func setupTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	log := logger.Discard().Logger

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "nexo.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	idx, err := search.NewMemberIndex(log)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	notifier, err := notify.New(st, notify.Config{PublicURL: "https://nexo.example.com", GroupName: "Nexo"}, log)
	require.NoError(t, err)

	sessions, err := auth.NewSessionTokens(make([]byte, 32), time.Hour)
	require.NoError(t, err)

	tokens := auth.NewInviteTokens(auth.DefaultInviteTTL, nil)
	m := metrics.New()

	services := &Services{
		Intention:    service.NewIntentionService(st, tokens, notifier, idx, m, log),
		Registration: service.NewRegistrationService(st, tokens, notifier, idx, m, log),
		Member:       service.NewMemberService(st, idx, log),
		Auth:         service.NewAuthService(st, sessions, log),
		Meeting:      service.NewMeetingService(st, m, log),
		Membership:   service.NewMembershipService(st, m, log),
		Dashboard:    service.NewDashboardService(st),
		Notice:       service.NewNoticeService(st, log),
		Thank:        service.NewThankService(st, log),
		EmailLog:     service.NewEmailLogService(st),
	}

	if opts.AdminKey == "" {
		opts.AdminKey = testAdminKey
	}
	s := NewServer(st, services, idx, m, opts, log)

	return &testServer{Server: s, client: humatest.Wrap(t, s.API())}
}

// envelope mirrors response.Envelope with the payload left raw.
type envelope struct {
	V       int             `json:"v"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"details"`
}

func decode(t *testing.T, body []byte, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data), string(body))
	}
	return env
}

func adminHeader() string { return AdminKeyHeader + ": " + testAdminKey }

func bearer(token string) string { return "Authorization: Bearer " + token }

// register walks an applicant through submit, approve and register over
// HTTP and returns the new member's ID.
func (ts *testServer) register(t *testing.T, name, email, password string) string {
	t.Helper()

	resp := ts.client.Post("/api/v1/intentions", map[string]any{"name": name, "email": email})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var in struct {
		ID string `json:"id"`
	}
	decode(t, resp.Body.Bytes(), &in)

	resp = ts.client.Post("/api/v1/intentions/approve", adminHeader(), map[string]any{"intentionId": in.ID})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var approval struct {
		InviteURL string `json:"inviteUrl"`
	}
	decode(t, resp.Body.Bytes(), &approval)

	u, err := url.Parse(approval.InviteURL)
	require.NoError(t, err)
	token := u.Query().Get("token")
	require.Len(t, token, auth.InviteTokenLength)

	resp = ts.client.Post("/api/v1/members/register", map[string]any{"token": token, "password": password})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var member struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decode(t, resp.Body.Bytes(), &member)
	require.Equal(t, "ACTIVE", member.Status)
	return member.ID
}

func (ts *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	resp := ts.client.Post("/api/v1/auth/login", map[string]any{"email": email, "password": password})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	decode(t, resp.Body.Bytes(), &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.client.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var health HealthResponse
	env := decode(t, resp.Body.Bytes(), &health)
	assert.Equal(t, 1, env.V)
	assert.True(t, env.Success)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Components["database"].Status)
	assert.Equal(t, "healthy", health.Components["search"].Status)
}

func TestSubmitIntention_CreatedThenConflict(t *testing.T) {
	ts := setupTestServer(t, Options{})
	body := map[string]any{"name": "Ana Souza", "email": "ana@example.com", "company": "Souza Advocacia"}

	resp := ts.client.Post("/api/v1/intentions", body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var in struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	env := decode(t, resp.Body.Bytes(), &in)
	assert.True(t, env.Success)
	assert.NotEmpty(t, in.ID)
	assert.Equal(t, "PENDING", in.Status)

	resp = ts.client.Post("/api/v1/intentions", body)
	require.Equal(t, http.StatusConflict, resp.Code)
	env = decode(t, resp.Body.Bytes(), nil)
	assert.False(t, env.Success)
	assert.Equal(t, "CONFLICT", env.Code)
}

func TestSubmitIntention_ValidationDetails(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.client.Post("/api/v1/intentions", map[string]any{"name": "Ana Souza"})
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

	env := decode(t, resp.Body.Bytes(), nil)
	assert.False(t, env.Success)
	assert.Equal(t, "VALIDATION", env.Code)
	require.NotEmpty(t, env.Details)

	fields := make([]string, 0, len(env.Details))
	for _, d := range env.Details {
		fields = append(fields, d.Field)
	}
	assert.Contains(t, fields, "email")
}

func TestIntentionStatus_Public(t *testing.T) {
	ts := setupTestServer(t, Options{})
	resp := ts.client.Post("/api/v1/intentions", map[string]any{"name": "Bruno Lima", "email": "bruno@example.com"})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = ts.client.Get("/api/v1/intentions/status?email=BRUNO@example.com")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var view struct {
		Status string `json:"status"`
	}
	decode(t, resp.Body.Bytes(), &view)
	assert.Equal(t, "PENDING", view.Status)

	resp = ts.client.Get("/api/v1/intentions/status?email=nobody@example.com")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAdminRoutes_RoleResolution(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.register(t, "Carla Dias", "carla@example.com", "correct-horse")
	token := ts.login(t, "carla@example.com", "correct-horse")

	tests := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"no credentials", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong admin key", AdminKeyHeader + ": nope", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"member session", bearer(token), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"admin key", adminHeader(), http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var args []any
			if tt.header != "" {
				args = append(args, tt.header)
			}
			resp := ts.client.Get("/api/v1/intentions", args...)
			require.Equal(t, tt.status, resp.Code, resp.Body.String())
			if tt.code != "" {
				env := decode(t, resp.Body.Bytes(), nil)
				assert.Equal(t, tt.code, env.Code)
			}
		})
	}
}

func TestAdminRoutes_MemberSessionIsUnauthorized(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.register(t, "Carla Dias", "carla@example.com", "correct-horse")
	token := ts.login(t, "carla@example.com", "correct-horse")

	for _, path := range []string{"/api/v1/emails", "/api/v1/members"} {
		resp := ts.client.Get(path, bearer(token))
		require.Equal(t, http.StatusUnauthorized, resp.Code, path)
		env := decode(t, resp.Body.Bytes(), nil)
		assert.False(t, env.Success)
		assert.Equal(t, "UNAUTHORIZED", env.Code)
	}
}

func TestAdminRoutes_RejectBeforeBodyValidation(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.client.Post("/api/v1/intentions/approve", map[string]any{})
	require.Equal(t, http.StatusUnauthorized, resp.Code, resp.Body.String())
	env := decode(t, resp.Body.Bytes(), nil)
	assert.Equal(t, "UNAUTHORIZED", env.Code)
	assert.Empty(t, env.Details)

	resp = ts.client.Post("/api/v1/intentions/approve", adminHeader(), map[string]any{})
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
	assert.Equal(t, "VALIDATION", decode(t, resp.Body.Bytes(), nil).Code)
}

func TestRegisterAndLogin_MemberAccess(t *testing.T) {
	ts := setupTestServer(t, Options{})
	carla := ts.register(t, "Carla Dias", "carla@example.com", "correct-horse")
	diego := ts.register(t, "Diego Reis", "diego@example.com", "battery-staple")
	token := ts.login(t, "carla@example.com", "correct-horse")

	resp := ts.client.Get("/api/v1/members/"+carla, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var m struct {
		Email string `json:"email"`
	}
	decode(t, resp.Body.Bytes(), &m)
	assert.Equal(t, "carla@example.com", m.Email)
	assert.NotContains(t, resp.Body.String(), "passwordHash")

	resp = ts.client.Get("/api/v1/members/"+diego, bearer(token))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.client.Get("/api/v1/members/"+carla, bearer("not-a-token"))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.register(t, "Carla Dias", "carla@example.com", "correct-horse")

	for _, body := range []map[string]any{
		{"email": "carla@example.com", "password": "wrong-password"},
		{"email": "ghost@example.com", "password": "correct-horse"},
	} {
		resp := ts.client.Post("/api/v1/auth/login", body)
		require.Equal(t, http.StatusUnauthorized, resp.Code, resp.Body.String())
		env := decode(t, resp.Body.Bytes(), nil)
		assert.Equal(t, "INVALID_CREDENTIALS", env.Code)
	}
}

func TestRegister_TokenReuse(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.client.Post("/api/v1/intentions", map[string]any{"name": "Eva Prado", "email": "eva@example.com"})
	var in struct {
		ID string `json:"id"`
	}
	decode(t, resp.Body.Bytes(), &in)
	resp = ts.client.Post("/api/v1/intentions/approve", adminHeader(), map[string]any{"intentionId": in.ID})
	var approval struct {
		InviteURL string `json:"inviteUrl"`
	}
	decode(t, resp.Body.Bytes(), &approval)
	u, err := url.Parse(approval.InviteURL)
	require.NoError(t, err)
	token := u.Query().Get("token")

	resp = ts.client.Get("/api/v1/members/validate-token?token=" + url.QueryEscape(token))
	var check struct {
		Valid bool `json:"valid"`
	}
	decode(t, resp.Body.Bytes(), &check)
	assert.True(t, check.Valid)

	resp = ts.client.Post("/api/v1/members/register", map[string]any{"token": token})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.client.Post("/api/v1/members/register", map[string]any{"token": token})
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
	env := decode(t, resp.Body.Bytes(), nil)
	assert.Equal(t, "ALREADY_REGISTERED", env.Code)

	resp = ts.client.Post("/api/v1/members/register", map[string]any{"token": "bogus"})
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
	env = decode(t, resp.Body.Bytes(), nil)
	assert.Equal(t, "INVALID_TOKEN", env.Code)
}

func TestMeetingCheckIn_AndDashboard(t *testing.T) {
	ts := setupTestServer(t, Options{})
	carla := ts.register(t, "Carla Dias", "carla@example.com", "correct-horse")
	token := ts.login(t, "carla@example.com", "correct-horse")

	resp := ts.client.Post("/api/v1/meetings", adminHeader(), map[string]any{
		"title": "Weekly breakfast",
		"date":  "2026-03-18T07:00:00Z",
		"type":  "REGULAR",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var mt struct {
		ID string `json:"id"`
	}
	decode(t, resp.Body.Bytes(), &mt)

	for range 2 {
		resp = ts.client.Post("/api/v1/meetings/"+mt.ID+"/check-in", bearer(token), map[string]any{})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	}

	resp = ts.client.Get("/api/v1/meetings/"+mt.ID+"/attendances", adminHeader())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var rows []struct {
		MemberID string `json:"memberId"`
	}
	decode(t, resp.Body.Bytes(), &rows)
	require.Len(t, rows, 1, "repeat check-in must not duplicate the row")
	assert.Equal(t, carla, rows[0].MemberID)

	resp = ts.client.Get("/api/v1/meetings?from=yesterday", bearer(token))
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.client.Get("/api/v1/dashboard/group", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var stats struct {
		TotalMembers      int     `json:"totalMembers"`
		TotalMeetings     int     `json:"totalMeetings"`
		AverageAttendance float64 `json:"averageAttendance"`
	}
	decode(t, resp.Body.Bytes(), &stats)
	assert.Equal(t, 1, stats.TotalMembers)
	assert.Equal(t, 1, stats.TotalMeetings)
	assert.InDelta(t, 100.0, stats.AverageAttendance, 0.001)
}

func TestMembershipPay_Once(t *testing.T) {
	ts := setupTestServer(t, Options{})
	carla := ts.register(t, "Carla Dias", "carla@example.com", "correct-horse")
	token := ts.login(t, "carla@example.com", "correct-horse")

	resp := ts.client.Post("/api/v1/memberships", adminHeader(), map[string]any{
		"memberId":    carla,
		"dueDate":     "2026-04-01T00:00:00Z",
		"amountCents": 15000,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var ms struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decode(t, resp.Body.Bytes(), &ms)
	assert.Equal(t, "PENDING", ms.Status)

	pay := map[string]any{"paymentMethod": "PIX", "paidAt": "2026-03-20T10:00:00Z"}
	resp = ts.client.Post("/api/v1/memberships/"+ms.ID+"/pay", bearer(token), pay)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	decode(t, resp.Body.Bytes(), &ms)
	assert.Equal(t, "PAID", ms.Status)

	resp = ts.client.Post("/api/v1/memberships/"+ms.ID+"/pay", bearer(token), pay)
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
	env := decode(t, resp.Body.Bytes(), nil)
	assert.Equal(t, "ALREADY_PAID", env.Code)
}

func TestNoticesAndThanks(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.register(t, "Carla Dias", "carla@example.com", "correct-horse")
	diego := ts.register(t, "Diego Reis", "diego@example.com", "battery-staple")
	token := ts.login(t, "carla@example.com", "correct-horse")

	resp := ts.client.Post("/api/v1/notices", adminHeader(), map[string]any{"title": "Venue change", "content": "We meet at the club."})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var notice struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}
	decode(t, resp.Body.Bytes(), &notice)
	assert.Equal(t, "GENERAL", notice.Type)

	resp = ts.client.Delete("/api/v1/notices/"+notice.ID, adminHeader())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.client.Get("/api/v1/notices", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	var notices []any
	decode(t, resp.Body.Bytes(), &notices)
	assert.Empty(t, notices)

	resp = ts.client.Post("/api/v1/thanks", bearer(token), map[string]any{
		"toMemberId":         diego,
		"message":            "Thanks for the referral",
		"businessValueCents": 250000,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = ts.client.Get("/api/v1/thanks?memberId="+diego, bearer(token))
	var thanks []struct {
		ToMemberID string `json:"toMemberId"`
	}
	decode(t, resp.Body.Bytes(), &thanks)
	require.Len(t, thanks, 1)
	assert.Equal(t, diego, thanks[0].ToMemberID)
}

func TestEmailLog_AdminOnly(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.register(t, "Carla Dias", "carla@example.com", "correct-horse")

	resp := ts.client.Get("/api/v1/emails?to=carla@example.com", adminHeader())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var emails []struct {
		Kind string `json:"kind"`
	}
	decode(t, resp.Body.Bytes(), &emails)
	require.Len(t, emails, 2)
	kinds := []string{emails[0].Kind, emails[1].Kind}
	assert.ElementsMatch(t, []string{"INVITE", "WELCOME"}, kinds)

	resp = ts.client.Get("/api/v1/emails")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestIntakeRateLimit(t *testing.T) {
	limiter := ratelimit.PerMinute(1, 1)
	t.Cleanup(limiter.Stop)
	ts := setupTestServer(t, Options{IntakeLimiter: limiter})

	resp := ts.client.Post("/api/v1/intentions", map[string]any{"name": "Fabio Melo", "email": "fabio@example.com"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = ts.client.Post("/api/v1/intentions", map[string]any{"name": "Gina Melo", "email": "gina@example.com"})
	require.Equal(t, http.StatusTooManyRequests, resp.Code, resp.Body.String())
	env := decode(t, resp.Body.Bytes(), nil)
	assert.False(t, env.Success)
	assert.Equal(t, "RATE_LIMITED", env.Code)

	resp = ts.client.Get("/metrics")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "nexo_http_rate_limited_total")
	assert.Contains(t, resp.Body.String(), `nexo_intentions_total{outcome="submitted"} 1`)
}

func TestCallerFrom_DefaultsToGuest(t *testing.T) {
	caller := CallerFrom(context.Background())
	assert.False(t, caller.IsAdmin())
	_, err := RequireMember(context.Background())
	assert.Error(t, err)
}

func TestPanicReturnsInternalEnvelope(t *testing.T) {
	ts := setupTestServer(t, Options{})
	huma.Get(ts.API(), "/api/v1/boom", func(context.Context, *struct{}) (*struct{}, error) {
		panic("secret stack detail")
	})

	resp := ts.client.Get("/api/v1/boom")
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	env := decode(t, resp.Body.Bytes(), nil)
	assert.False(t, env.Success)
	assert.Equal(t, "INTERNAL", env.Code)
	assert.NotContains(t, resp.Body.String(), "secret stack detail")
}

func TestUnknownRoute_NotFoundEnvelope(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.client.Get("/api/v1/nope")
	require.Equal(t, http.StatusNotFound, resp.Code)
	env := decode(t, resp.Body.Bytes(), nil)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
}
