package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexogroup/nexo-server/internal/domain"
	"github.com/nexogroup/nexo-server/internal/logger"
)

type memRecorder struct {
	mu   sync.Mutex
	logs []*domain.EmailLog
	err  error
}

func (r *memRecorder) CreateEmailLog(_ context.Context, log *domain.EmailLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.logs = append(r.logs, log)
	return nil
}

func newTestNotifier(t *testing.T, rec Recorder) *Notifier {
	t.Helper()
	n, err := New(rec, Config{PublicURL: "https://nexo.example.com/", GroupName: "Nexo SP"}, logger.Discard().Logger)
	require.NoError(t, err)
	return n
}

func TestInvite(t *testing.T) {
	rec := &memRecorder{}
	n := newTestNotifier(t, rec)

	expiry := time.Date(2026, 5, 8, 10, 0, 0, 0, time.UTC)
	m := &domain.Member{Name: "Ana Souza", Email: "ana@example.com", InviteToken: "abcDEF123", TokenExpiry: &expiry}

	entry, err := n.Invite(context.Background(), m)
	require.NoError(t, err)
	require.Len(t, rec.logs, 1)
	assert.Same(t, entry, rec.logs[0])

	link := "https://nexo.example.com/register?token=abcDEF123"
	assert.Equal(t, domain.EmailInvite, entry.Kind)
	assert.Equal(t, domain.EmailStatusLogged, entry.Status)
	assert.Equal(t, "ana@example.com", entry.To)
	assert.Equal(t, "Your invitation to Nexo SP", entry.Subject)
	assert.Contains(t, entry.HTMLBody, `href="`+link+`"`)
	assert.Contains(t, entry.HTMLBody, "May 8, 2026")
	assert.Contains(t, entry.TextBody, link)
	assert.NotContains(t, entry.TextBody, "<p>")
	assert.True(t, strings.HasPrefix(entry.ID, "eml-"))
	assert.True(t, strings.HasPrefix(entry.MessageID, "<"))
	assert.True(t, strings.HasSuffix(entry.MessageID, "@nexo.example.com>"))
}

func TestRejection_ReasonIsOptional(t *testing.T) {
	rec := &memRecorder{}
	n := newTestNotifier(t, rec)
	in := &domain.Intention{Name: "Bia", Email: "bia@example.com"}

	withReason, err := n.Rejection(context.Background(), in, "  group is full  ")
	require.NoError(t, err)
	assert.Contains(t, withReason.HTMLBody, "Reason: group is full")
	assert.Contains(t, withReason.TextBody, "group is full")

	without, err := n.Rejection(context.Background(), in, "")
	require.NoError(t, err)
	assert.NotContains(t, without.HTMLBody, "Reason:")
	assert.Equal(t, domain.EmailRejection, without.Kind)
}

func TestWelcome(t *testing.T) {
	rec := &memRecorder{}
	n := newTestNotifier(t, rec)

	entry, err := n.Welcome(context.Background(), &domain.Member{Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)
	assert.Equal(t, domain.EmailWelcome, entry.Kind)
	assert.Contains(t, entry.HTMLBody, "https://nexo.example.com/login")
}

func TestTemplatesEscapeUserInput(t *testing.T) {
	rec := &memRecorder{}
	n := newTestNotifier(t, rec)

	entry, err := n.Rejection(context.Background(),
		&domain.Intention{Name: `<script>alert(1)</script>`, Email: "x@example.com"}, "")
	require.NoError(t, err)
	assert.NotContains(t, entry.HTMLBody, "<script>")
	assert.Contains(t, entry.HTMLBody, "&lt;script&gt;")
}

func TestMessageIDsAreUnique(t *testing.T) {
	rec := &memRecorder{}
	n := newTestNotifier(t, rec)
	m := &domain.Member{Name: "Ana", Email: "ana@example.com"}

	a, err := n.Welcome(context.Background(), m)
	require.NoError(t, err)
	b, err := n.Welcome(context.Background(), m)
	require.NoError(t, err)
	assert.NotEqual(t, a.MessageID, b.MessageID)
}

func TestRecorderFailure(t *testing.T) {
	boom := errors.New("disk full")
	n := newTestNotifier(t, &memRecorder{err: boom})

	_, err := n.Welcome(context.Background(), &domain.Member{Name: "Ana", Email: "ana@example.com"})
	assert.ErrorIs(t, err, boom)
}

func TestRegistrationURL_EscapesToken(t *testing.T) {
	n := newTestNotifier(t, &memRecorder{})
	assert.Equal(t, "https://nexo.example.com/register?token=a%2Bb", n.RegistrationURL("a+b"))
}
