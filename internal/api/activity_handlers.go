package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readloopapp/readloop-server/internal/domain"
	"github.com/readloopapp/readloop-server/internal/store"
)

func (s *Server) registerActivityRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getFeed",
		Method:      http.MethodGet,
		Path:        "/api/v1/feed",
		Summary:     "Get activity feed",
		Description: "Returns activities by the current user and everyone they follow, newest first, keyset-paginated",
		Tags:        []string{"Activities"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetFeed)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUserActivities",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/activities",
		Summary:     "List a user's activities",
		Description: "Returns one user's activities, newest first, keyset-paginated",
		Tags:        []string{"Activities"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListUserActivities)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUserStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/stats",
		Summary:     "Get a user's stats",
		Description: "Returns a user's aggregate reading and social numbers, with current-year goal progress",
		Tags:        []string{"Activities"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetUserStats)
}

// === DTOs ===

// FeedInput contains pagination parameters for the activity feed.
type FeedInput struct {
	Authorization string `header:"Authorization"`
	Cursor        string `query:"cursor" doc:"Opaque pagination cursor from a previous page"`
	Limit         int    `query:"limit" default:"25" minimum:"1" maximum:"100" doc:"Items per page"`
}

// UserActivitiesInput contains parameters for one user's activities.
type UserActivitiesInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"User ID"`
	Cursor        string `query:"cursor" doc:"Opaque pagination cursor from a previous page"`
	Limit         int    `query:"limit" default:"25" minimum:"1" maximum:"100" doc:"Items per page"`
}

// FeedResponse contains a page of activities.
type FeedResponse struct {
	Activities []*domain.Activity `json:"activities" doc:"Activities, newest first"`
	NextCursor string             `json:"next_cursor,omitempty" doc:"Cursor for the next page"`
	HasMore    bool               `json:"has_more" doc:"Whether more pages exist"`
}

// FeedOutput wraps the feed response for Huma.
type FeedOutput struct {
	Body FeedResponse
}

// GetUserStatsInput contains parameters for a user's stats.
type GetUserStatsInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"User ID"`
}

// UserStatsOutput wraps user stats for Huma.
type UserStatsOutput struct {
	Body *domain.UserStats
}

// === Handlers ===

func (s *Server) handleGetFeed(ctx context.Context, input *FeedInput) (*FeedOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.services.Activity.Feed(ctx, userID, store.PaginationParams{
		Limit:  input.Limit,
		Cursor: input.Cursor,
	})
	if err != nil {
		return nil, err
	}

	return &FeedOutput{Body: mapFeedResponse(page)}, nil
}

func (s *Server) handleListUserActivities(ctx context.Context, input *UserActivitiesInput) (*FeedOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	page, err := s.services.Activity.UserActivities(ctx, input.ID, store.PaginationParams{
		Limit:  input.Limit,
		Cursor: input.Cursor,
	})
	if err != nil {
		return nil, err
	}

	return &FeedOutput{Body: mapFeedResponse(page)}, nil
}

func (s *Server) handleGetUserStats(ctx context.Context, input *GetUserStatsInput) (*UserStatsOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	stats, err := s.services.Stats.GetUserStats(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &UserStatsOutput{Body: stats}, nil
}

// === Mappers ===

func mapFeedResponse(page *store.PaginatedResult[*domain.Activity]) FeedResponse {
	activities := page.Items
	if activities == nil {
		activities = []*domain.Activity{}
	}
	return FeedResponse{
		Activities: activities,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}
}
