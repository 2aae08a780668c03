package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nexogroup/nexo-server/internal/domain"
	"github.com/nexogroup/nexo-server/internal/service"
)

func (s *Server) registerThankRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createThank",
		Method:        http.MethodPost,
		Path:          "/api/v1/thanks",
		Summary:       "Thank a member",
		Description:   "Members thank on their own behalf; admins must name the sender.",
		Tags:          []string{"Thanks"},
		Security:      memberSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateThank)

	huma.Register(s.api, huma.Operation{
		OperationID: "listThanks",
		Method:      http.MethodGet,
		Path:        "/api/v1/thanks",
		Summary:     "List thanks",
		Tags:        []string{"Thanks"},
		Security:    memberSecurity,
	}, s.handleListThanks)
}

// CreateThankRequest is the request body for a thank-you.
type CreateThankRequest struct {
	FromMemberID       string `json:"fromMemberId,omitempty" doc:"Sender (admin only; members always send as themselves)"`
	ToMemberID         string `json:"toMemberId" minLength:"1" doc:"Recipient"`
	Message            string `json:"message" minLength:"1" maxLength:"2000" doc:"Message"`
	BusinessValueCents int64  `json:"businessValueCents,omitempty" minimum:"0" doc:"Business value generated, in cents"`
}

// CreateThankInput wraps the thank request for Huma.
type CreateThankInput struct {
	Body CreateThankRequest
}

// ThankOutput wraps a thank-you for Huma.
type ThankOutput struct {
	Body *domain.Thank
}

// ListThanksInput contains list filters.
type ListThanksInput struct {
	MemberID string `query:"memberId" doc:"Only thanks sent or received by this member"`
}

// ListThanksOutput wraps the thank list for Huma.
type ListThanksOutput struct {
	Body []*domain.Thank
}

func (s *Server) handleCreateThank(ctx context.Context, input *CreateThankInput) (*ThankOutput, error) {
	caller, err := RequireMember(ctx)
	if err != nil {
		return nil, err
	}

	b := input.Body
	th, err := s.services.Thank.Create(ctx, caller, service.CreateThankRequest{
		FromMemberID:       b.FromMemberID,
		ToMemberID:         b.ToMemberID,
		Message:            b.Message,
		BusinessValueCents: b.BusinessValueCents,
	})
	if err != nil {
		return nil, err
	}
	return &ThankOutput{Body: th}, nil
}

func (s *Server) handleListThanks(ctx context.Context, input *ListThanksInput) (*ListThanksOutput, error) {
	if _, err := RequireMember(ctx); err != nil {
		return nil, err
	}

	list, err := s.services.Thank.List(ctx, input.MemberID)
	if err != nil {
		return nil, err
	}
	return &ListThanksOutput{Body: nonNil(list)}, nil
}
