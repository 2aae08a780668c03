package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nexogroup/nexo-server/internal/domain"
	"github.com/nexogroup/nexo-server/internal/service"
)

func (s *Server) registerMemberRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "registerMember",
		Method:      http.MethodPost,
		Path:        "/api/v1/members/register",
		Summary:     "Register",
		Description: "Redeems an invite token, completing the member's profile",
		Tags:        []string{"Members"},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "validateInviteToken",
		Method:      http.MethodGet,
		Path:        "/api/v1/members/validate-token",
		Summary:     "Validate invite token",
		Description: "Reports whether an invite token can still be redeemed",
		Tags:        []string{"Members"},
	}, s.handleValidateToken)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMembers",
		Method:      http.MethodGet,
		Path:        "/api/v1/members",
		Summary:     "List members",
		Description: "Lists the member directory. With q, results are ordered by relevance.",
		Tags:        []string{"Members"},
		Security:    adminSecurity,
		Middlewares: huma.Middlewares{s.adminOnly},
	}, s.handleListMembers)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMember",
		Method:      http.MethodGet,
		Path:        "/api/v1/members/{id}",
		Summary:     "Get member",
		Tags:        []string{"Members"},
		Security:    memberSecurity,
	}, s.handleGetMember)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateMemberStatus",
		Method:      http.MethodPatch,
		Path:        "/api/v1/members/{id}/status",
		Summary:     "Update member status",
		Description: "Administrative override between ACTIVE, INACTIVE and SUSPENDED",
		Tags:        []string{"Members"},
		Security:    adminSecurity,
		Middlewares: huma.Middlewares{s.adminOnly},
	}, s.handleUpdateMemberStatus)
}

// === DTOs ===

// RegisterRequest is the request body for redeeming an invite.
type RegisterRequest struct {
	Token    string  `json:"token" minLength:"1" doc:"Invite token from the registration link"`
	Phone    *string `json:"phone,omitempty" maxLength:"32" doc:"Phone number"`
	Company  *string `json:"company,omitempty" maxLength:"120" doc:"Company name"`
	Position *string `json:"position,omitempty" maxLength:"120" doc:"Job title"`
	Segment  *string `json:"segment,omitempty" maxLength:"80" doc:"Business segment"`
	Bio      *string `json:"bio,omitempty" maxLength:"2000" doc:"Short bio"`
	LinkedIn *string `json:"linkedin,omitempty" maxLength:"255" doc:"LinkedIn profile URL"`
	Website  *string `json:"website,omitempty" maxLength:"255" doc:"Website URL"`
	Password *string `json:"password,omitempty" minLength:"8" maxLength:"1024" doc:"Optional password for member login"`
}

// RegisterInput wraps the registration request for Huma.
type RegisterInput struct {
	Body RegisterRequest
}

// MemberOutput wraps a member for Huma.
type MemberOutput struct {
	Body *domain.Member
}

// ValidateTokenInput contains the token to check.
type ValidateTokenInput struct {
	Token string `query:"token" doc:"Invite token"`
}

// ValidateTokenOutput wraps the token check for Huma.
type ValidateTokenOutput struct {
	Body *service.TokenCheck
}

// ListMembersInput contains parameters for listing members.
type ListMembersInput struct {
	Status  string `query:"status" enum:"INVITED,ACTIVE,INACTIVE,SUSPENDED" doc:"Filter by status"`
	Query   string `query:"q" maxLength:"200" doc:"Free-text search over name, company, email and segment"`
	Segment string `query:"segment" maxLength:"80" doc:"Filter by business segment"`
	Limit   int    `query:"limit" minimum:"0" maximum:"200" doc:"Maximum search results"`
}

// ListMembersOutput wraps the member list for Huma.
type ListMembersOutput struct {
	Body []*domain.Member
}

// GetMemberInput contains parameters for getting a member.
type GetMemberInput struct {
	ID string `path:"id" doc:"Member ID"`
}

// UpdateMemberStatusInput wraps the status override for Huma.
type UpdateMemberStatusInput struct {
	ID   string `path:"id" doc:"Member ID"`
	Body struct {
		Status string `json:"status" enum:"ACTIVE,INACTIVE,SUSPENDED" doc:"New status"`
	}
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*MemberOutput, error) {
	b := input.Body
	m, err := s.services.Registration.Redeem(ctx, service.RegisterRequest{
		Token:    b.Token,
		Phone:    b.Phone,
		Company:  b.Company,
		Position: b.Position,
		Segment:  b.Segment,
		Bio:      b.Bio,
		LinkedIn: b.LinkedIn,
		Website:  b.Website,
		Password: b.Password,
	})
	if err != nil {
		return nil, err
	}
	return &MemberOutput{Body: m}, nil
}

func (s *Server) handleValidateToken(ctx context.Context, input *ValidateTokenInput) (*ValidateTokenOutput, error) {
	check, err := s.services.Registration.ValidateToken(ctx, input.Token)
	if err != nil {
		return nil, err
	}
	return &ValidateTokenOutput{Body: check}, nil
}

func (s *Server) handleListMembers(ctx context.Context, input *ListMembersInput) (*ListMembersOutput, error) {
	list, err := s.services.Member.List(ctx, service.ListMembersRequest{
		Status:  domain.MemberStatus(input.Status),
		Query:   input.Query,
		Segment: input.Segment,
		Limit:   input.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &ListMembersOutput{Body: nonNil(list)}, nil
}

func (s *Server) handleGetMember(ctx context.Context, input *GetMemberInput) (*MemberOutput, error) {
	caller, err := RequireMember(ctx)
	if err != nil {
		return nil, err
	}

	m, err := s.services.Member.Get(ctx, caller, input.ID)
	if err != nil {
		return nil, err
	}
	return &MemberOutput{Body: m}, nil
}

func (s *Server) handleUpdateMemberStatus(ctx context.Context, input *UpdateMemberStatusInput) (*MemberOutput, error) {
	m, err := s.services.Member.UpdateStatus(ctx, input.ID, service.UpdateStatusRequest{
		Status: domain.MemberStatus(input.Body.Status),
	})
	if err != nil {
		return nil, err
	}
	return &MemberOutput{Body: m}, nil
}
