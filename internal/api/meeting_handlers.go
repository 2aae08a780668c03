package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nexogroup/nexo-server/internal/domain"
	domainerrors "github.com/nexogroup/nexo-server/internal/errors"
	"github.com/nexogroup/nexo-server/internal/service"
)

func (s *Server) registerMeetingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createMeeting",
		Method:        http.MethodPost,
		Path:          "/api/v1/meetings",
		Summary:       "Create meeting",
		Tags:          []string{"Meetings"},
		Security:      adminSecurity,
		Middlewares:   huma.Middlewares{s.adminOnly},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateMeeting)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMeetings",
		Method:      http.MethodGet,
		Path:        "/api/v1/meetings",
		Summary:     "List meetings",
		Description: "Returns meetings most recent first, optionally within [from, to)",
		Tags:        []string{"Meetings"},
		Security:    memberSecurity,
	}, s.handleListMeetings)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMeeting",
		Method:      http.MethodGet,
		Path:        "/api/v1/meetings/{id}",
		Summary:     "Get meeting",
		Tags:        []string{"Meetings"},
		Security:    memberSecurity,
	}, s.handleGetMeeting)

	huma.Register(s.api, huma.Operation{
		OperationID: "listAttendances",
		Method:      http.MethodGet,
		Path:        "/api/v1/meetings/{id}/attendances",
		Summary:     "List attendances",
		Tags:        []string{"Meetings"},
		Security:    adminSecurity,
		Middlewares: huma.Middlewares{s.adminOnly},
	}, s.handleListAttendances)

	huma.Register(s.api, huma.Operation{
		OperationID: "checkIn",
		Method:      http.MethodPost,
		Path:        "/api/v1/meetings/{id}/check-in",
		Summary:     "Check in",
		Description: "Marks a member present. Repeating it refreshes the check-in time.",
		Tags:        []string{"Meetings"},
		Security:    memberSecurity,
	}, s.handleCheckIn)
}

// === DTOs ===

// CreateMeetingRequest is the request body for scheduling a meeting.
type CreateMeetingRequest struct {
	Title       string    `json:"title" minLength:"2" maxLength:"200" doc:"Meeting title"`
	Description string    `json:"description,omitempty" maxLength:"4000" doc:"Agenda or notes"`
	Date        time.Time `json:"date" doc:"Start time (RFC 3339)"`
	Type        string    `json:"type" enum:"REGULAR,SPECIAL,TRAINING,SOCIAL" doc:"Meeting type"`
	Location    string    `json:"location,omitempty" maxLength:"200" doc:"Venue"`
}

// CreateMeetingInput wraps the create request for Huma.
type CreateMeetingInput struct {
	Body CreateMeetingRequest
}

// MeetingOutput wraps a meeting for Huma.
type MeetingOutput struct {
	Body *domain.Meeting
}

// ListMeetingsInput contains the optional date range.
type ListMeetingsInput struct {
	From string `query:"from" doc:"Inclusive lower bound (RFC 3339)"`
	To   string `query:"to" doc:"Exclusive upper bound (RFC 3339)"`
}

// ListMeetingsOutput wraps the meeting list for Huma.
type ListMeetingsOutput struct {
	Body []*domain.Meeting
}

// MeetingIDInput identifies a meeting.
type MeetingIDInput struct {
	ID string `path:"id" doc:"Meeting ID"`
}

// AttendancesOutput wraps attendance rows for Huma.
type AttendancesOutput struct {
	Body []*domain.Attendance
}

// CheckInInput wraps the check-in request for Huma.
type CheckInInput struct {
	ID   string `path:"id" doc:"Meeting ID"`
	Body struct {
		MemberID string `json:"memberId,omitempty" doc:"Member checking in; members may omit it to check themselves in"`
	} `required:"false"`
}

// AttendanceOutput wraps an attendance row for Huma.
type AttendanceOutput struct {
	Body *domain.Attendance
}

// === Handlers ===

func (s *Server) handleCreateMeeting(ctx context.Context, input *CreateMeetingInput) (*MeetingOutput, error) {
	b := input.Body
	mt, err := s.services.Meeting.Create(ctx, service.CreateMeetingRequest{
		Title:       b.Title,
		Description: b.Description,
		Date:        b.Date,
		Type:        domain.MeetingType(b.Type),
		Location:    b.Location,
	})
	if err != nil {
		return nil, err
	}
	return &MeetingOutput{Body: mt}, nil
}

func (s *Server) handleListMeetings(ctx context.Context, input *ListMeetingsInput) (*ListMeetingsOutput, error) {
	if _, err := RequireMember(ctx); err != nil {
		return nil, err
	}

	from, err := parseTimeParam("from", input.From)
	if err != nil {
		return nil, err
	}
	to, err := parseTimeParam("to", input.To)
	if err != nil {
		return nil, err
	}

	list, err := s.services.Meeting.List(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &ListMeetingsOutput{Body: nonNil(list)}, nil
}

func (s *Server) handleGetMeeting(ctx context.Context, input *MeetingIDInput) (*MeetingOutput, error) {
	if _, err := RequireMember(ctx); err != nil {
		return nil, err
	}

	mt, err := s.services.Meeting.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &MeetingOutput{Body: mt}, nil
}

func (s *Server) handleListAttendances(ctx context.Context, input *MeetingIDInput) (*AttendancesOutput, error) {
	list, err := s.services.Meeting.Attendances(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &AttendancesOutput{Body: nonNil(list)}, nil
}

func (s *Server) handleCheckIn(ctx context.Context, input *CheckInInput) (*AttendanceOutput, error) {
	caller, err := RequireMember(ctx)
	if err != nil {
		return nil, err
	}

	a, err := s.services.Meeting.CheckIn(ctx, caller, input.ID, service.CheckInRequest{MemberID: input.Body.MemberID})
	if err != nil {
		return nil, err
	}
	return &AttendanceOutput{Body: a}, nil
}

// parseTimeParam parses an optional RFC 3339 query parameter.
func parseTimeParam(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, domainerrors.ValidationWithDetails("validation failed", []domainerrors.FieldError{
			{Field: name, Message: "must be an RFC 3339 timestamp"},
		})
	}
	return &t, nil
}
