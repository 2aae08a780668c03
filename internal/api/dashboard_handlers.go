package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nexogroup/nexo-server/internal/domain"
)

func (s *Server) registerDashboardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getGroupStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/dashboard/group",
		Summary:     "Group statistics",
		Description: "Member, meeting, attendance and referral totals for the dashboard",
		Tags:        []string{"Dashboard"},
		Security:    memberSecurity,
	}, s.handleGroupStats)
}

// GroupStatsOutput wraps the dashboard for Huma.
type GroupStatsOutput struct {
	Body *domain.GroupStats
}

func (s *Server) handleGroupStats(ctx context.Context, _ *struct{}) (*GroupStatsOutput, error) {
	if _, err := RequireMember(ctx); err != nil {
		return nil, err
	}

	stats, err := s.services.Dashboard.GroupStats(ctx)
	if err != nil {
		return nil, err
	}
	return &GroupStatsOutput{Body: stats}, nil
}
