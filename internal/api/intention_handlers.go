package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nexogroup/nexo-server/internal/domain"
	"github.com/nexogroup/nexo-server/internal/service"
)

func (s *Server) registerIntentionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "submitIntention",
		Method:        http.MethodPost,
		Path:          "/api/v1/intentions",
		Summary:       "Submit intention",
		Description:   "Public application to join the group. One per email, ever.",
		Tags:          []string{"Intentions"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   huma.Middlewares{s.rateLimit(s.intakeLimiter, "/api/v1/intentions")},
	}, s.handleSubmitIntention)

	huma.Register(s.api, huma.Operation{
		OperationID: "listIntentions",
		Method:      http.MethodGet,
		Path:        "/api/v1/intentions",
		Summary:     "List intentions",
		Description: "Returns intentions newest first, optionally filtered by status",
		Tags:        []string{"Intentions"},
		Security:    adminSecurity,
		Middlewares: huma.Middlewares{s.adminOnly},
	}, s.handleListIntentions)

	huma.Register(s.api, huma.Operation{
		OperationID: "getIntentionStatus",
		Method:      http.MethodGet,
		Path:        "/api/v1/intentions/status",
		Summary:     "Intention status",
		Description: "Public lookup of an application's status by email",
		Tags:        []string{"Intentions"},
	}, s.handleIntentionStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "getIntention",
		Method:      http.MethodGet,
		Path:        "/api/v1/intentions/{id}",
		Summary:     "Get intention",
		Tags:        []string{"Intentions"},
		Security:    adminSecurity,
		Middlewares: huma.Middlewares{s.adminOnly},
	}, s.handleGetIntention)

	huma.Register(s.api, huma.Operation{
		OperationID: "approveIntention",
		Method:      http.MethodPost,
		Path:        "/api/v1/intentions/approve",
		Summary:     "Approve intention",
		Description: "Approves a pending intention and invites the applicant as a member",
		Tags:        []string{"Intentions"},
		Security:    adminSecurity,
		Middlewares: huma.Middlewares{s.adminOnly},
	}, s.handleApproveIntention)

	huma.Register(s.api, huma.Operation{
		OperationID: "rejectIntention",
		Method:      http.MethodPost,
		Path:        "/api/v1/intentions/reject",
		Summary:     "Reject intention",
		Tags:        []string{"Intentions"},
		Security:    adminSecurity,
		Middlewares: huma.Middlewares{s.adminOnly},
	}, s.handleRejectIntention)
}

// === DTOs ===

// SubmitIntentionRequest is the request body for a new application.
type SubmitIntentionRequest struct {
	Name    string `json:"name" minLength:"2" maxLength:"120" doc:"Applicant full name"`
	Email   string `json:"email" format:"email" maxLength:"254" doc:"Applicant email"`
	Phone   string `json:"phone,omitempty" maxLength:"32" doc:"Phone number"`
	Company string `json:"company,omitempty" maxLength:"120" doc:"Company name"`
	Message string `json:"message,omitempty" maxLength:"2000" doc:"Why the applicant wants to join"`
}

// SubmitIntentionInput wraps the submit request for Huma.
type SubmitIntentionInput struct {
	Body SubmitIntentionRequest
}

// IntentionOutput wraps an intention for Huma.
type IntentionOutput struct {
	Body *domain.Intention
}

// ListIntentionsInput contains parameters for listing intentions.
type ListIntentionsInput struct {
	Status string `query:"status" enum:"PENDING,APPROVED,REJECTED" doc:"Filter by status"`
}

// ListIntentionsOutput wraps the intention list for Huma.
type ListIntentionsOutput struct {
	Body []*domain.Intention
}

// IntentionStatusInput contains the email to look up.
type IntentionStatusInput struct {
	Email string `query:"email" doc:"Applicant email"`
}

// IntentionStatusOutput wraps the status view for Huma.
type IntentionStatusOutput struct {
	Body *service.IntentionStatusView
}

// GetIntentionInput contains parameters for getting an intention.
type GetIntentionInput struct {
	ID string `path:"id" doc:"Intention ID"`
}

// ApproveIntentionInput wraps the approval request for Huma.
type ApproveIntentionInput struct {
	Body struct {
		IntentionID string `json:"intentionId" minLength:"1" doc:"Intention to approve"`
	}
}

// ApproveIntentionOutput wraps the approval result for Huma.
type ApproveIntentionOutput struct {
	Body *service.ApprovalResult
}

// RejectIntentionInput wraps the rejection request for Huma.
type RejectIntentionInput struct {
	Body struct {
		IntentionID string `json:"intentionId" minLength:"1" doc:"Intention to reject"`
		Reason      string `json:"reason,omitempty" maxLength:"2000" doc:"Optional reason included in the email"`
	}
}

// === Handlers ===

func (s *Server) handleSubmitIntention(ctx context.Context, input *SubmitIntentionInput) (*IntentionOutput, error) {
	in, err := s.services.Intention.Submit(ctx, service.SubmitIntentionRequest{
		Name:    input.Body.Name,
		Email:   input.Body.Email,
		Phone:   input.Body.Phone,
		Company: input.Body.Company,
		Message: input.Body.Message,
	})
	if err != nil {
		return nil, err
	}
	return &IntentionOutput{Body: in}, nil
}

func (s *Server) handleListIntentions(ctx context.Context, input *ListIntentionsInput) (*ListIntentionsOutput, error) {
	list, err := s.services.Intention.List(ctx, domain.IntentionStatus(input.Status))
	if err != nil {
		return nil, err
	}
	return &ListIntentionsOutput{Body: nonNil(list)}, nil
}

func (s *Server) handleIntentionStatus(ctx context.Context, input *IntentionStatusInput) (*IntentionStatusOutput, error) {
	view, err := s.services.Intention.Status(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	return &IntentionStatusOutput{Body: view}, nil
}

func (s *Server) handleGetIntention(ctx context.Context, input *GetIntentionInput) (*IntentionOutput, error) {
	in, err := s.services.Intention.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &IntentionOutput{Body: in}, nil
}

func (s *Server) handleApproveIntention(ctx context.Context, input *ApproveIntentionInput) (*ApproveIntentionOutput, error) {
	res, err := s.services.Intention.Approve(ctx, input.Body.IntentionID)
	if err != nil {
		return nil, err
	}
	return &ApproveIntentionOutput{Body: res}, nil
}

func (s *Server) handleRejectIntention(ctx context.Context, input *RejectIntentionInput) (*IntentionOutput, error) {
	in, err := s.services.Intention.Reject(ctx, input.Body.IntentionID, input.Body.Reason)
	if err != nil {
		return nil, err
	}
	return &IntentionOutput{Body: in}, nil
}
