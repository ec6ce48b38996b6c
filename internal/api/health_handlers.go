package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth reports one dependency's status.
type ComponentHealth struct {
	Status  string `json:"status" doc:"healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Time the component check took"`
	Message string `json:"message,omitempty" doc:"Detail when not healthy"`
}

// HealthResponse contains server health information.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall server status"`
	Components map[string]ComponentHealth `json:"components,omitempty" doc:"Per-component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	db := s.checkDatabase(ctx)

	overall := "healthy"
	if db.Status != "healthy" {
		overall = db.Status
	}

	return &HealthOutput{Body: HealthResponse{
		Status:     overall,
		Components: map[string]ComponentHealth{"database": db},
	}}, nil
}

func (s *Server) checkDatabase(ctx context.Context) ComponentHealth {
	if s.store == nil {
		return ComponentHealth{Status: "degraded", Message: "database not configured"}
	}

	start := time.Now()
	err := s.store.Ping(ctx)
	latency := time.Since(start).String()

	if err != nil {
		return ComponentHealth{Status: "unhealthy", Latency: latency, Message: "database ping failed"}
	}
	return ComponentHealth{Status: "healthy", Latency: latency}
}
