package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexogroup/nexo-server/internal/domain"
	domainerrors "github.com/nexogroup/nexo-server/internal/errors"
)

func TestNoticeService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	general, err := f.notices.Create(ctx, CreateNoticeRequest{Title: "Welcome", Content: "New season starts"})
	require.NoError(t, err)
	assert.Equal(t, domain.NoticeGeneral, general.Type)
	assert.True(t, general.Active)

	f.clock.Advance(time.Minute)
	urgent, err := f.notices.Create(ctx, CreateNoticeRequest{Title: "Venue change", Content: "Room B", Type: domain.NoticeUrgent})
	require.NoError(t, err)

	_, err = f.notices.Create(ctx, CreateNoticeRequest{Title: "Bad", Content: "x", Type: "INFO"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	deactivated, err := f.notices.Deactivate(ctx, general.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.Active)

	_, err = f.notices.Deactivate(ctx, general.ID)
	require.NoError(t, err, "deactivating twice is a no-op")

	_, err = f.notices.Deactivate(ctx, "ntc-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	visible, err := f.notices.List(ctx, MemberCaller("mem-x"), true)
	require.NoError(t, err)
	require.Len(t, visible, 1, "members never see inactive notices")
	assert.Equal(t, urgent.ID, visible[0].ID)

	all, err := f.notices.List(ctx, Admin(), true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestThankService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ana := f.activeMember(t, "Ana Souza", "ana@example.com", "")
	bruno := f.activeMember(t, "Bruno Lima", "bruno@example.com", "")
	carla := approveFor(t, f, "Carla Dias", "carla@example.com").Member

	th, err := f.thanks.Create(ctx, MemberCaller(ana.ID), CreateThankRequest{
		FromMemberID:       bruno.ID,
		ToMemberID:         bruno.ID,
		Message:            "Great referral",
		BusinessValueCents: 500000,
	})
	require.NoError(t, err, "members always thank as themselves")
	assert.Equal(t, ana.ID, th.FromMemberID)
	assert.Equal(t, bruno.ID, th.ToMemberID)

	_, err = f.thanks.Create(ctx, MemberCaller(ana.ID), CreateThankRequest{ToMemberID: ana.ID, Message: "me"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = f.thanks.Create(ctx, MemberCaller(ana.ID), CreateThankRequest{ToMemberID: carla.ID, Message: "early"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidState)

	_, err = f.thanks.Create(ctx, MemberCaller(ana.ID), CreateThankRequest{ToMemberID: "mem-missing", Message: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = f.thanks.Create(ctx, MemberCaller(ana.ID), CreateThankRequest{ToMemberID: bruno.ID, Message: "x", BusinessValueCents: -1})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = f.thanks.Create(ctx, Admin(), CreateThankRequest{ToMemberID: bruno.ID, Message: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation, "admins must name the sender")

	f.clock.Advance(time.Minute)
	byAdmin, err := f.thanks.Create(ctx, Admin(), CreateThankRequest{FromMemberID: bruno.ID, ToMemberID: ana.ID, Message: "Thanks back"})
	require.NoError(t, err)

	list, err := f.thanks.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, byAdmin.ID, list[0].ID)

	forCarla, err := f.thanks.List(ctx, carla.ID)
	require.NoError(t, err)
	assert.Empty(t, forCarla)
}

func TestEmailLogService_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.activeMember(t, "Ana Souza", "ana@example.com", "")

	all, err := f.emails.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	for _, e := range all {
		assert.Equal(t, domain.EmailStatusLogged, e.Status)
		assert.NotEmpty(t, e.TextBody)
		assert.NotEmpty(t, e.MessageID)
	}

	_, err = f.emails.List(ctx, "", "SPAM")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}
