package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nexogroup/nexo-server/internal/auth"
	"github.com/nexogroup/nexo-server/internal/domain"
	"github.com/nexogroup/nexo-server/internal/id"
	"github.com/nexogroup/nexo-server/internal/logger"
	"github.com/nexogroup/nexo-server/internal/metrics"
	"github.com/nexogroup/nexo-server/internal/notify"
	"github.com/nexogroup/nexo-server/internal/search"
	"github.com/nexogroup/nexo-server/internal/store/sqlite"
)

var baseTime = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

// testClock is a settable clock shared by every service in a fixture.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store   *sqlite.Store
	clock   *testClock
	index   *search.MemberIndex
	metrics *metrics.Metrics

	intentions   *IntentionService
	registration *RegistrationService
	members      *MemberService
	auth         *AuthService
	meetings     *MeetingService
	memberships  *MembershipService
	dashboard    *DashboardService
	notices      *NoticeService
	thanks       *ThankService
	emails       *EmailLogService
}

func newFixture(t *testing.T) *fixture {
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

	clock := &testClock{now: baseTime}
	tokens := auth.NewInviteTokens(auth.DefaultInviteTTL, clock.Now)
	m := metrics.New()

	f := &fixture{
		store:        st,
		clock:        clock,
		index:        idx,
		metrics:      m,
		intentions:   NewIntentionService(st, tokens, notifier, idx, m, log),
		registration: NewRegistrationService(st, tokens, notifier, idx, m, log),
		members:      NewMemberService(st, idx, log),
		auth:         NewAuthService(st, sessions, log),
		meetings:     NewMeetingService(st, m, log),
		memberships:  NewMembershipService(st, m, log),
		dashboard:    NewDashboardService(st),
		notices:      NewNoticeService(st, log),
		thanks:       NewThankService(st, log),
		emails:       NewEmailLogService(st),
	}
	f.intentions.now = clock.Now
	f.registration.now = clock.Now
	f.members.now = clock.Now
	f.meetings.now = clock.Now
	f.memberships.now = clock.Now
	f.dashboard.now = clock.Now
	f.notices.now = clock.Now
	f.thanks.now = clock.Now
	return f
}

// activeMember runs a full submit, approve and register cycle.
func (f *fixture) activeMember(t *testing.T, name, email, password string) *domain.Member {
	t.Helper()
	ctx := context.Background()

	in, err := f.intentions.Submit(ctx, SubmitIntentionRequest{Name: name, Email: email})
	require.NoError(t, err)
	res, err := f.intentions.Approve(ctx, in.ID)
	require.NoError(t, err)

	req := RegisterRequest{Token: res.Member.InviteToken}
	if password != "" {
		req.Password = &password
	}
	m, err := f.registration.Redeem(ctx, req)
	require.NoError(t, err)
	return m
}

// insertMember writes a member row directly, bypassing the workflow.
func (f *fixture) insertMember(t *testing.T, email string, status domain.MemberStatus, createdAt time.Time) *domain.Member {
	t.Helper()
	m := &domain.Member{Name: "Member " + email, Email: email, Status: status}
	m.ID = id.MustGenerate(id.PrefixMember)
	m.InitTimestamps(createdAt)
	require.NoError(t, f.store.CreateMember(context.Background(), m))
	return m
}

func strPtr(s string) *string { return &s }
