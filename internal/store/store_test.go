package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthWindowAt(t *testing.T) {
	tests := []struct {
		name        string
		now         time.Time
		wantLast    time.Time
		wantCurrent time.Time
	}{
		{
			name:        "mid month",
			now:         time.Date(2026, 5, 17, 15, 4, 5, 0, time.UTC),
			wantLast:    time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			wantCurrent: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "january rolls back a year",
			now:         time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC),
			wantLast:    time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
			wantCurrent: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "non-UTC input uses the UTC month",
			now:         time.Date(2026, 3, 31, 22, 0, 0, 0, time.FixedZone("BRT", -3*3600)),
			wantLast:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			wantCurrent: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := MonthWindowAt(tt.now)
			assert.Equal(t, tt.wantLast, w.Last)
			assert.Equal(t, tt.wantCurrent, w.Current)
		})
	}
}
