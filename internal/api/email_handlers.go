package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nexogroup/nexo-server/internal/domain"
)

func (s *Server) registerEmailRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listEmails",
		Method:      http.MethodGet,
		Path:        "/api/v1/emails",
		Summary:     "List email log",
		Description: "Notifications rendered by the server, newest first. Nothing is delivered.",
		Tags:        []string{"Emails"},
		Security:    adminSecurity,
		Middlewares: huma.Middlewares{s.adminOnly},
	}, s.handleListEmails)
}

// ListEmailsInput contains list filters.
type ListEmailsInput struct {
	To   string `query:"to" doc:"Filter by recipient address"`
	Kind string `query:"kind" enum:"INVITE,REJECTION,WELCOME" doc:"Filter by template"`
}

// ListEmailsOutput wraps the email log for Huma.
type ListEmailsOutput struct {
	Body []*domain.EmailLog
}

func (s *Server) handleListEmails(ctx context.Context, input *ListEmailsInput) (*ListEmailsOutput, error) {
	list, err := s.services.EmailLog.List(ctx, input.To, domain.EmailKind(input.Kind))
	if err != nil {
		return nil, err
	}
	return &ListEmailsOutput{Body: nonNil(list)}, nil
}
