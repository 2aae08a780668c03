package sqlite

import (
	"context"
	"database/sql"

	"github.com/nexogroup/nexo-server/internal/domain"
	"github.com/nexogroup/nexo-server/internal/store"
)

// meetingColumns must match the scan order in scanMeeting. The trailing
// column is the checked-in attendance count.
const meetingColumns = `m.id, m.created_at, m.updated_at, m.title, m.description,
	m.date, m.type, m.location,
	(SELECT COUNT(*) FROM attendances a WHERE a.meeting_id = m.id AND a.checked_in = 1)`

func scanMeeting(sc scanner) (*domain.Meeting, error) {
	var (
		mt          domain.Meeting
		createdAt   string
		updatedAt   string
		description sql.NullString
		date        string
		meetingType string
		location    sql.NullString
	)

	err := sc.Scan(&mt.ID, &createdAt, &updatedAt, &mt.Title, &description,
		&date, &meetingType, &location, &mt.AttendanceCount)
	if err != nil {
		return nil, err
	}

	if mt.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if mt.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if mt.Date, err = parseTime(date); err != nil {
		return nil, err
	}

	mt.Description = description.String
	mt.Location = location.String
	mt.Type = domain.MeetingType(meetingType)

	return &mt, nil
}

// CreateMeeting inserts a meeting.
func (s *Store) CreateMeeting(ctx context.Context, mt *domain.Meeting) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meetings (id, created_at, updated_at, title, description, date, type, location)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		mt.ID,
		formatTime(mt.CreatedAt),
		formatTime(mt.UpdatedAt),
		mt.Title,
		nullString(mt.Description),
		formatTime(mt.Date),
		string(mt.Type),
		nullString(mt.Location),
	)
	return mapWriteErr(err)
}

// GetMeeting returns the meeting with its attendance count.
func (s *Store) GetMeeting(ctx context.Context, id string) (*domain.Meeting, error) {
	mt, err := scanMeeting(s.db.QueryRowContext(ctx, `SELECT `+meetingColumns+` FROM meetings m WHERE m.id = ?`, id))
	return mt, mapReadErr(err)
}

// ListMeetings returns meetings by date, most recent first.
func (s *Store) ListMeetings(ctx context.Context, filter store.MeetingFilter) ([]*domain.Meeting, error) {
	var w whereBuilder
	if filter.From != nil {
		w.add("m.date >= ?", formatTime(*filter.From))
	}
	if filter.To != nil {
		w.add("m.date < ?", formatTime(*filter.To))
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+meetingColumns+` FROM meetings m`+w.String()+` ORDER BY m.date DESC, m.id DESC`,
		w.args...)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, scanMeeting)
}

// attendanceColumns must match the scan order in scanAttendance.
const attendanceColumns = `id, created_at, updated_at, member_id, meeting_id, checked_in, check_in_at`

func scanAttendance(sc scanner) (*domain.Attendance, error) {
	var (
		a         domain.Attendance
		createdAt string
		updatedAt string
		checkedIn int
		checkInAt sql.NullString
	)

	if err := sc.Scan(&a.ID, &createdAt, &updatedAt, &a.MemberID, &a.MeetingID, &checkedIn, &checkInAt); err != nil {
		return nil, err
	}

	var err error
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if a.CheckInAt, err = parseNullableTime(checkInAt); err != nil {
		return nil, err
	}
	a.CheckedIn = checkedIn != 0

	return &a, nil
}

// UpsertAttendance records a check-in for the (member, meeting) pair. An
// existing row keeps its id and createdAt; checked-in state and time are
// overwritten. Returns the stored row.
func (s *Store) UpsertAttendance(ctx context.Context, a *domain.Attendance) (*domain.Attendance, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO attendances (`+attendanceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (member_id, meeting_id) DO UPDATE SET
			checked_in = excluded.checked_in,
			check_in_at = excluded.check_in_at,
			updated_at = excluded.updated_at
		RETURNING `+attendanceColumns,
		a.ID,
		formatTime(a.CreatedAt),
		formatTime(a.UpdatedAt),
		a.MemberID,
		a.MeetingID,
		boolToInt(a.CheckedIn),
		nullTimeString(a.CheckInAt),
	)
	out, err := scanAttendance(row)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	return out, nil
}

// ListAttendances returns a meeting's attendance rows in check-in order.
func (s *Store) ListAttendances(ctx context.Context, meetingID string) ([]*domain.Attendance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendances WHERE meeting_id = ? ORDER BY check_in_at, id`,
		meetingID)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, scanAttendance)
}
