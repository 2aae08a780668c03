package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nexogroup/nexo-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Login",
		Description: "Exchanges member credentials for a PASETO session token",
		Tags:        []string{"Auth"},
		Middlewares: huma.Middlewares{s.rateLimit(s.loginLimiter, "/api/v1/auth/login")},
	}, s.handleLogin)
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" format:"email" doc:"Member email"`
	Password string `json:"password" minLength:"1" doc:"Member password"`
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body LoginRequest
}

// LoginOutput wraps the session for Huma.
type LoginOutput struct {
	Body *service.LoginResponse
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}
	return &LoginOutput{Body: resp}, nil
}
