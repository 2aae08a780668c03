package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nexogroup/nexo-server/internal/domain"
	domainerrors "github.com/nexogroup/nexo-server/internal/errors"
	"github.com/nexogroup/nexo-server/internal/id"
	"github.com/nexogroup/nexo-server/internal/normalize"
	"github.com/nexogroup/nexo-server/internal/store"
)

// MeetingService schedules meetings and records check-ins.
type MeetingService struct {
	store   store.Store
	metrics Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewMeetingService creates a meeting service.
func NewMeetingService(store store.Store, metrics Recorder, logger *slog.Logger) *MeetingService {
	return &MeetingService{
		store:   store,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// CreateMeetingRequest schedules a meeting.
type CreateMeetingRequest struct {
	Title       string             `json:"title" validate:"required,min=2,max=200"`
	Description string             `json:"description,omitempty" validate:"omitempty,max=4000"`
	Date        time.Time          `json:"date"`
	Type        domain.MeetingType `json:"type" validate:"required,oneof=REGULAR SPECIAL TRAINING SOCIAL"`
	Location    string             `json:"location,omitempty" validate:"omitempty,max=200"`
}

// CheckInRequest names the member checking in. Members may leave it empty
// to check themselves in.
type CheckInRequest struct {
	MemberID string `json:"memberId,omitempty"`
}

// Create schedules a new meeting.
func (s *MeetingService) Create(ctx context.Context, req CreateMeetingRequest) (*domain.Meeting, error) {
	req.Title = normalize.Text(req.Title)
	req.Location = normalize.Text(req.Location)
	req.Description = strings.TrimSpace(req.Description)

	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if req.Date.IsZero() {
		return nil, domainerrors.ValidationWithDetails("validation failed", []domainerrors.FieldError{
			{Field: "date", Message: "is required"},
		})
	}

	meetingID, err := id.Generate(id.PrefixMeeting)
	if err != nil {
		return nil, fmt.Errorf("generate meeting ID: %w", err)
	}

	mt := &domain.Meeting{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date.UTC(),
		Type:        req.Type,
		Location:    req.Location,
	}
	mt.ID = meetingID
	mt.InitTimestamps(utcNow(s.now))

	if err := s.store.CreateMeeting(ctx, mt); err != nil {
		return nil, fmt.Errorf("create meeting: %w", err)
	}

	s.logger.Info("meeting created", "meeting_id", mt.ID, "date", mt.Date)
	return mt, nil
}

// List returns meetings most recent first, optionally bounded to [from, to).
func (s *MeetingService) List(ctx context.Context, from, to *time.Time) ([]*domain.Meeting, error) {
	if from != nil && to != nil && !from.Before(*to) {
		return nil, domainerrors.Validation("from must be before to")
	}
	list, err := s.store.ListMeetings(ctx, store.MeetingFilter{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	return list, nil
}

// Get returns a meeting with its attendance count.
func (s *MeetingService) Get(ctx context.Context, meetingID string) (*domain.Meeting, error) {
	mt, err := s.store.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, notFound(err, "meeting", meetingID)
	}
	return mt, nil
}

// CheckIn marks a member present at a meeting. Repeating the call keeps a
// single attendance row and refreshes its check-in time.
func (s *MeetingService) CheckIn(ctx context.Context, caller Caller, meetingID string, req CheckInRequest) (*domain.Attendance, error) {
	memberID := strings.TrimSpace(req.MemberID)
	if memberID == "" && !caller.IsAdmin() {
		memberID = caller.MemberID
	}
	if memberID == "" {
		return nil, domainerrors.ValidationWithDetails("validation failed", []domainerrors.FieldError{
			{Field: "memberId", Message: "is required"},
		})
	}
	if !caller.CanActFor(memberID) {
		return nil, domainerrors.Forbidden("members may only check themselves in")
	}

	if _, err := s.store.GetMeeting(ctx, meetingID); err != nil {
		return nil, notFound(err, "meeting", meetingID)
	}
	if _, err := s.store.GetMember(ctx, memberID); err != nil {
		return nil, notFound(err, "member", memberID)
	}

	attendanceID, err := id.Generate(id.PrefixAttendance)
	if err != nil {
		return nil, fmt.Errorf("generate attendance ID: %w", err)
	}

	now := utcNow(s.now)
	a := &domain.Attendance{MemberID: memberID, MeetingID: meetingID}
	a.ID = attendanceID
	a.InitTimestamps(now)
	a.CheckIn(now)

	stored, err := s.store.UpsertAttendance(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("record attendance: %w", err)
	}

	s.metrics.CheckedIn()
	s.logger.Info("member checked in", "meeting_id", meetingID, "member_id", memberID)

	return stored, nil
}

// Attendances lists a meeting's attendance rows.
func (s *MeetingService) Attendances(ctx context.Context, meetingID string) ([]*domain.Attendance, error) {
	if _, err := s.store.GetMeeting(ctx, meetingID); err != nil {
		return nil, notFound(err, "meeting", meetingID)
	}
	list, err := s.store.ListAttendances(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("list attendances: %w", err)
	}
	return list, nil
}
