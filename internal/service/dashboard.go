package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/nexogroup/nexo-server/internal/domain"
	"github.com/nexogroup/nexo-server/internal/store"
)

// DashboardService computes group summary statistics.
type DashboardService struct {
	store store.Store
	now   func() time.Time
}

// NewDashboardService creates a dashboard service.
func NewDashboardService(store store.Store) *DashboardService {
	return &DashboardService{store: store, now: time.Now}
}

// GroupStats reads the current counts and derives the dashboard ratios.
func (s *DashboardService) GroupStats(ctx context.Context) (*domain.GroupStats, error) {
	counts, err := s.store.GroupCounts(ctx, store.MonthWindowAt(s.now()))
	if err != nil {
		return nil, fmt.Errorf("group counts: %w", err)
	}
	return computeStats(counts), nil
}

func computeStats(c *domain.GroupCounts) *domain.GroupStats {
	stats := &domain.GroupStats{
		TotalMembers:        c.TotalMembers,
		ActiveMembers:       c.ActiveMembers,
		TotalMeetings:       c.TotalMeetings,
		CurrentMonthMembers: c.CurrentMonthMembers,
		LastMonthMembers:    c.LastMonthMembers,
		PendingIntentions:   c.PendingIntentions,
		TotalThanks:         c.TotalThanks,
		TotalBusinessValue:  c.TotalBusinessValue,
	}

	// Every member is counted against every meeting, including meetings held
	// before they joined.
	if slots := c.TotalMembers * c.TotalMeetings; slots > 0 {
		stats.AverageAttendance = round2(float64(c.CheckedInRows) / float64(slots) * 100)
	}

	if c.LastMonthMembers > 0 {
		delta := float64(c.CurrentMonthMembers - c.LastMonthMembers)
		stats.MonthlyGrowth = round2(delta / float64(c.LastMonthMembers) * 100)
	}

	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
