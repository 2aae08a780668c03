package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nexogroup/nexo-server/internal/domain"
	"github.com/nexogroup/nexo-server/internal/service"
)

func (s *Server) registerMembershipRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createMembership",
		Method:        http.MethodPost,
		Path:          "/api/v1/memberships",
		Summary:       "Create dues",
		Tags:          []string{"Memberships"},
		Security:      adminSecurity,
		Middlewares:   huma.Middlewares{s.adminOnly},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateMembership)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMemberships",
		Method:      http.MethodGet,
		Path:        "/api/v1/memberships",
		Summary:     "List dues",
		Description: "Members see only their own dues; admins may filter by member",
		Tags:        []string{"Memberships"},
		Security:    memberSecurity,
	}, s.handleListMemberships)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMembership",
		Method:      http.MethodGet,
		Path:        "/api/v1/memberships/{id}",
		Summary:     "Get dues",
		Tags:        []string{"Memberships"},
		Security:    memberSecurity,
	}, s.handleGetMembership)

	huma.Register(s.api, huma.Operation{
		OperationID: "payMembership",
		Method:      http.MethodPost,
		Path:        "/api/v1/memberships/{id}/pay",
		Summary:     "Pay dues",
		Description: "Records payment of pending dues. Payment fields are written once.",
		Tags:        []string{"Memberships"},
		Security:    memberSecurity,
	}, s.handlePayMembership)
}

// === DTOs ===

// CreateMembershipRequest is the request body for new dues.
type CreateMembershipRequest struct {
	MemberID    string    `json:"memberId" minLength:"1" doc:"Member who owes the dues"`
	DueDate     time.Time `json:"dueDate" doc:"Due date (RFC 3339)"`
	AmountCents int64     `json:"amountCents" minimum:"1" doc:"Amount in cents"`
	Notes       string    `json:"notes,omitempty" maxLength:"1000" doc:"Notes"`
}

// CreateMembershipInput wraps the create request for Huma.
type CreateMembershipInput struct {
	Body CreateMembershipRequest
}

// MembershipOutput wraps dues for Huma.
type MembershipOutput struct {
	Body *domain.Membership
}

// ListMembershipsInput contains list filters.
type ListMembershipsInput struct {
	MemberID string `query:"memberId" doc:"Filter by member (admin only for other members)"`
	Status   string `query:"status" enum:"PENDING,PAID" doc:"Filter by status"`
}

// ListMembershipsOutput wraps the dues list for Huma.
type ListMembershipsOutput struct {
	Body []*domain.Membership
}

// MembershipIDInput identifies dues.
type MembershipIDInput struct {
	ID string `path:"id" doc:"Membership ID"`
}

// PayMembershipRequest is the request body for paying dues.
type PayMembershipRequest struct {
	PaymentMethod string    `json:"paymentMethod" enum:"PIX,CASH,CARD,TRANSFER,BOLETO" doc:"How the dues were paid"`
	PaidAt        time.Time `json:"paidAt" doc:"When the payment was made (RFC 3339)"`
	Notes         string    `json:"notes,omitempty" maxLength:"1000" doc:"Notes"`
}

// PayMembershipInput wraps the payment request for Huma.
type PayMembershipInput struct {
	ID   string `path:"id" doc:"Membership ID"`
	Body PayMembershipRequest
}

// === Handlers ===

func (s *Server) handleCreateMembership(ctx context.Context, input *CreateMembershipInput) (*MembershipOutput, error) {
	b := input.Body
	ms, err := s.services.Membership.Create(ctx, service.CreateMembershipRequest{
		MemberID:    b.MemberID,
		DueDate:     b.DueDate,
		AmountCents: b.AmountCents,
		Notes:       b.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &MembershipOutput{Body: ms}, nil
}

func (s *Server) handleListMemberships(ctx context.Context, input *ListMembershipsInput) (*ListMembershipsOutput, error) {
	caller, err := RequireMember(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.services.Membership.List(ctx, caller, service.ListMembershipsRequest{
		MemberID: input.MemberID,
		Status:   domain.MembershipStatus(input.Status),
	})
	if err != nil {
		return nil, err
	}
	return &ListMembershipsOutput{Body: nonNil(list)}, nil
}

func (s *Server) handleGetMembership(ctx context.Context, input *MembershipIDInput) (*MembershipOutput, error) {
	caller, err := RequireMember(ctx)
	if err != nil {
		return nil, err
	}

	ms, err := s.services.Membership.Get(ctx, caller, input.ID)
	if err != nil {
		return nil, err
	}
	return &MembershipOutput{Body: ms}, nil
}

func (s *Server) handlePayMembership(ctx context.Context, input *PayMembershipInput) (*MembershipOutput, error) {
	caller, err := RequireMember(ctx)
	if err != nil {
		return nil, err
	}

	b := input.Body
	ms, err := s.services.Membership.Pay(ctx, caller, input.ID, service.PayRequest{
		PaymentMethod: domain.PaymentMethod(b.PaymentMethod),
		PaidAt:        b.PaidAt,
		Notes:         b.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &MembershipOutput{Body: ms}, nil
}
