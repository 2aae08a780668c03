package domain

import "time"

// MeetingType classifies a meeting.
type MeetingType string

// Meeting types.
const (
	MeetingRegular  MeetingType = "REGULAR"
	MeetingSpecial  MeetingType = "SPECIAL"
	MeetingTraining MeetingType = "TRAINING"
	MeetingSocial   MeetingType = "SOCIAL"
)

// Valid reports whether t is a known meeting type.
func (t MeetingType) Valid() bool {
	switch t {
	case MeetingRegular, MeetingSpecial, MeetingTraining, MeetingSocial:
		return true
	}
	return false
}

// Meeting is a scheduled group gathering.
type Meeting struct {
	Entity
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Date        time.Time   `json:"date"`
	Type        MeetingType `json:"type"`
	Location    string      `json:"location,omitempty"`

	// AttendanceCount is derived on read: checked-in attendance rows.
	AttendanceCount int `json:"attendanceCount"`
}

// Attendance records a member's presence at a meeting.
// There is at most one row per (member, meeting) pair.
type Attendance struct {
	Entity
	MemberID  string     `json:"memberId"`
	MeetingID string     `json:"meetingId"`
	CheckedIn bool       `json:"checkedIn"`
	CheckInAt *time.Time `json:"checkInAt,omitempty"`
}

// CheckIn marks the attendance as present at now.
// Repeating it only refreshes the timestamp.
func (a *Attendance) CheckIn(now time.Time) {
	a.CheckedIn = true
	a.CheckInAt = &now
	a.Touch(now)
}
