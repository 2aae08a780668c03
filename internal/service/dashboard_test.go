package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexogroup/nexo-server/internal/domain"
	"github.com/nexogroup/nexo-server/internal/id"
)

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name       string
		counts     domain.GroupCounts
		attendance float64
		growth     float64
	}{
		{
			name:       "ten members two meetings five check-ins",
			counts:     domain.GroupCounts{TotalMembers: 10, TotalMeetings: 2, CheckedInRows: 5},
			attendance: 25.00,
		},
		{
			name:   "no meetings",
			counts: domain.GroupCounts{TotalMembers: 10, CheckedInRows: 3},
		},
		{
			name:   "no members last month",
			counts: domain.GroupCounts{CurrentMonthMembers: 4},
		},
		{
			name:   "growth rounds to two decimals",
			counts: domain.GroupCounts{CurrentMonthMembers: 4, LastMonthMembers: 3},
			growth: 33.33,
		},
		{
			name:   "shrinking",
			counts: domain.GroupCounts{CurrentMonthMembers: 1, LastMonthMembers: 4},
			growth: -75,
		},
		{
			name:       "attendance rounds to two decimals",
			counts:     domain.GroupCounts{TotalMembers: 3, TotalMeetings: 1, CheckedInRows: 2},
			attendance: 66.67,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := computeStats(&tt.counts)
			assert.InDelta(t, tt.attendance, stats.AverageAttendance, 1e-9)
			assert.InDelta(t, tt.growth, stats.MonthlyGrowth, 1e-9)
		})
	}
}

func TestDashboardService_GroupStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lastMonth := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	var members []*domain.Member
	for i := range 10 {
		createdAt := baseTime
		if i < 4 {
			createdAt = lastMonth
		}
		members = append(members, f.insertMember(t, fmt.Sprintf("m%d@example.com", i), domain.MemberActive, createdAt))
	}

	m1 := createMeeting(t, f, baseTime)
	m2 := createMeeting(t, f, baseTime.Add(7*24*time.Hour))

	for i := range 3 {
		_, err := f.meetings.CheckIn(ctx, Admin(), m1.ID, CheckInRequest{MemberID: members[i].ID})
		require.NoError(t, err)
	}
	for i := range 2 {
		_, err := f.meetings.CheckIn(ctx, Admin(), m2.ID, CheckInRequest{MemberID: members[i].ID})
		require.NoError(t, err)
	}
	// A repeated check-in does not add a row.
	_, err := f.meetings.CheckIn(ctx, Admin(), m2.ID, CheckInRequest{MemberID: members[0].ID})
	require.NoError(t, err)

	th := &domain.Thank{
		ID:                 id.MustGenerate(id.PrefixThank),
		FromMemberID:       members[0].ID,
		ToMemberID:         members[1].ID,
		Message:            "referral",
		BusinessValueCents: 150000,
		CreatedAt:          baseTime,
	}
	require.NoError(t, f.store.CreateThank(ctx, th))

	_, err = f.intentions.Submit(ctx, SubmitIntentionRequest{Name: "Pending Person", Email: "pending@example.com"})
	require.NoError(t, err)

	stats, err := f.dashboard.GroupStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 10, stats.TotalMembers)
	assert.Equal(t, 10, stats.ActiveMembers)
	assert.Equal(t, 2, stats.TotalMeetings)
	assert.InDelta(t, 25.00, stats.AverageAttendance, 1e-9)
	assert.Equal(t, 6, stats.CurrentMonthMembers)
	assert.Equal(t, 4, stats.LastMonthMembers)
	assert.InDelta(t, 50.00, stats.MonthlyGrowth, 1e-9)
	assert.Equal(t, 1, stats.PendingIntentions)
	assert.Equal(t, 1, stats.TotalThanks)
	assert.Equal(t, int64(150000), stats.TotalBusinessValue)
}

func TestDashboardService_Empty(t *testing.T) {
	f := newFixture(t)

	stats, err := f.dashboard.GroupStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.AverageAttendance)
	assert.Zero(t, stats.MonthlyGrowth)
	assert.Zero(t, stats.TotalMembers)
}
