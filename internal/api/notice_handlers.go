package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nexogroup/nexo-server/internal/domain"
	"github.com/nexogroup/nexo-server/internal/service"
)

func (s *Server) registerNoticeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createNotice",
		Method:        http.MethodPost,
		Path:          "/api/v1/notices",
		Summary:       "Post notice",
		Tags:          []string{"Notices"},
		Security:      adminSecurity,
		Middlewares:   huma.Middlewares{s.adminOnly},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateNotice)

	huma.Register(s.api, huma.Operation{
		OperationID: "listNotices",
		Method:      http.MethodGet,
		Path:        "/api/v1/notices",
		Summary:     "List notices",
		Description: "Active notices, newest first. Admins may include deactivated ones.",
		Tags:        []string{"Notices"},
		Security:    memberSecurity,
	}, s.handleListNotices)

	huma.Register(s.api, huma.Operation{
		OperationID: "deactivateNotice",
		Method:      http.MethodDelete,
		Path:        "/api/v1/notices/{id}",
		Summary:     "Deactivate notice",
		Description: "Hides a notice from the board. The row is kept.",
		Tags:        []string{"Notices"},
		Security:    adminSecurity,
		Middlewares: huma.Middlewares{s.adminOnly},
	}, s.handleDeactivateNotice)
}

// CreateNoticeRequest is the request body for posting a notice.
type CreateNoticeRequest struct {
	Title      string `json:"title" minLength:"2" maxLength:"200" doc:"Notice title"`
	Content    string `json:"content" minLength:"1" maxLength:"10000" doc:"Notice body"`
	Type       string `json:"type,omitempty" enum:"GENERAL,MEETING,EVENT,URGENT" doc:"Notice type (default GENERAL)"`
	AuthorName string `json:"authorName,omitempty" maxLength:"120" doc:"Display name of the author"`
}

// CreateNoticeInput wraps the notice request for Huma.
type CreateNoticeInput struct {
	Body CreateNoticeRequest
}

// NoticeOutput wraps a notice for Huma.
type NoticeOutput struct {
	Body *domain.Notice
}

// ListNoticesInput contains list options.
type ListNoticesInput struct {
	IncludeInactive bool `query:"includeInactive" doc:"Include deactivated notices (admin only)"`
}

// ListNoticesOutput wraps the notice list for Huma.
type ListNoticesOutput struct {
	Body []*domain.Notice
}

// NoticeIDInput identifies a notice.
type NoticeIDInput struct {
	ID string `path:"id" doc:"Notice ID"`
}

func (s *Server) handleCreateNotice(ctx context.Context, input *CreateNoticeInput) (*NoticeOutput, error) {
	b := input.Body
	n, err := s.services.Notice.Create(ctx, service.CreateNoticeRequest{
		Title:      b.Title,
		Content:    b.Content,
		Type:       domain.NoticeType(b.Type),
		AuthorName: b.AuthorName,
	})
	if err != nil {
		return nil, err
	}
	return &NoticeOutput{Body: n}, nil
}

func (s *Server) handleListNotices(ctx context.Context, input *ListNoticesInput) (*ListNoticesOutput, error) {
	caller, err := RequireMember(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.services.Notice.List(ctx, caller, input.IncludeInactive)
	if err != nil {
		return nil, err
	}
	return &ListNoticesOutput{Body: nonNil(list)}, nil
}

func (s *Server) handleDeactivateNotice(ctx context.Context, input *NoticeIDInput) (*NoticeOutput, error) {
	n, err := s.services.Notice.Deactivate(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &NoticeOutput{Body: n}, nil
}
