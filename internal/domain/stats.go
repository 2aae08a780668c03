package domain

// GroupCounts are the raw table counts behind the dashboard.
type GroupCounts struct {
	TotalMembers        int
	ActiveMembers       int
	TotalMeetings       int
	CheckedInRows       int
	CurrentMonthMembers int
	LastMonthMembers    int
	PendingIntentions   int
	TotalThanks         int
	TotalBusinessValue  int64
}

// GroupStats is the dashboard summary.
type GroupStats struct {
	TotalMembers        int     `json:"totalMembers"`
	ActiveMembers       int     `json:"activeMembers"`
	TotalMeetings       int     `json:"totalMeetings"`
	AverageAttendance   float64 `json:"averageAttendance"`
	MonthlyGrowth       float64 `json:"monthlyGrowth"`
	CurrentMonthMembers int     `json:"currentMonthMembers"`
	LastMonthMembers    int     `json:"lastMonthMembers"`
	PendingIntentions   int     `json:"pendingIntentions"`
	TotalThanks         int     `json:"totalThanks"`
	TotalBusinessValue  int64   `json:"totalBusinessValueCents"`
}
