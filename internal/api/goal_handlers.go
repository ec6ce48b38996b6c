package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readloopapp/readloop-server/internal/domain"
)

func (s *Server) registerGoalRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "setReadingGoal",
		Method:      http.MethodPut,
		Path:        "/api/v1/goals/{year}",
		Summary:     "Set a reading goal",
		Description: "Sets or overwrites the current user's book target for a year",
		Tags:        []string{"Goals"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetReadingGoal)

	huma.Register(s.api, huma.Operation{
		OperationID: "getReadingGoal",
		Method:      http.MethodGet,
		Path:        "/api/v1/goals/{year}",
		Summary:     "Get goal progress",
		Description: "Returns the current user's goal for a year with live progress",
		Tags:        []string{"Goals"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetReadingGoal)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteReadingGoal",
		Method:      http.MethodDelete,
		Path:        "/api/v1/goals/{year}",
		Summary:     "Delete a reading goal",
		Description: "Removes the current user's goal for a year. Deleting a missing goal is a no-op.",
		Tags:        []string{"Goals"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteReadingGoal)
}

// === DTOs ===

// SetGoalRequest is the request body for setting a goal.
type SetGoalRequest struct {
	TargetBooks int `json:"target_books" minimum:"1" doc:"Books to finish in the year"`
}

// SetGoalInput wraps the set goal request for Huma.
type SetGoalInput struct {
	Authorization string `header:"Authorization"`
	Year          int    `path:"year" doc:"Goal year"`
	Body          SetGoalRequest
}

// GoalOutput wraps a reading goal for Huma.
type GoalOutput struct {
	Body *domain.ReadingGoal
}

// GetGoalInput contains parameters for reading goal progress.
type GetGoalInput struct {
	Authorization string `header:"Authorization"`
	Year          int    `path:"year" doc:"Goal year"`
}

// GoalProgressOutput wraps goal progress for Huma.
type GoalProgressOutput struct {
	Body *domain.GoalProgress
}

// DeleteGoalInput contains parameters for deleting a goal.
type DeleteGoalInput struct {
	Authorization string `header:"Authorization"`
	Year          int    `path:"year" doc:"Goal year"`
}

// === Handlers ===

func (s *Server) handleSetReadingGoal(ctx context.Context, input *SetGoalInput) (*GoalOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	goal, err := s.services.Goal.SetGoal(ctx, userID, input.Year, input.Body.TargetBooks)
	if err != nil {
		return nil, err
	}

	return &GoalOutput{Body: goal}, nil
}

func (s *Server) handleGetReadingGoal(ctx context.Context, input *GetGoalInput) (*GoalProgressOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	progress, err := s.services.Goal.GetGoalProgress(ctx, userID, input.Year)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		return nil, huma.Error404NotFound("No goal set for this year")
	}

	return &GoalProgressOutput{Body: progress}, nil
}

func (s *Server) handleDeleteReadingGoal(ctx context.Context, input *DeleteGoalInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Goal.DeleteGoal(ctx, userID, input.Year); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Goal deleted"}}, nil
}
