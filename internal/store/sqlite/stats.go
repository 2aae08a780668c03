package sqlite

import (
	"context"
	"fmt"

	"github.com/nexogroup/nexo-server/internal/domain"
	"github.com/nexogroup/nexo-server/internal/store"
)

// GroupCounts reads every dashboard count in a single statement so the
// numbers come from one consistent snapshot.
func (s *Store) GroupCounts(ctx context.Context, window store.MonthWindow) (*domain.GroupCounts, error) {
	var c domain.GroupCounts

	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM members),
			(SELECT COUNT(*) FROM members WHERE status = ?),
			(SELECT COUNT(*) FROM meetings),
			(SELECT COUNT(*) FROM attendances WHERE checked_in = 1),
			(SELECT COUNT(*) FROM members WHERE created_at >= ?),
			(SELECT COUNT(*) FROM members WHERE created_at >= ? AND created_at < ?),
			(SELECT COUNT(*) FROM intentions WHERE status = ?),
			(SELECT COUNT(*) FROM thanks),
			(SELECT COALESCE(SUM(business_value_cents), 0) FROM thanks)`,
		string(domain.MemberActive),
		formatTime(window.Current),
		formatTime(window.Last), formatTime(window.Current),
		string(domain.IntentionPending),
	).Scan(
		&c.TotalMembers,
		&c.ActiveMembers,
		&c.TotalMeetings,
		&c.CheckedInRows,
		&c.CurrentMonthMembers,
		&c.LastMonthMembers,
		&c.PendingIntentions,
		&c.TotalThanks,
		&c.TotalBusinessValue,
	)
	if err != nil {
		return nil, fmt.Errorf("group counts: %w", err)
	}
	return &c, nil
}
