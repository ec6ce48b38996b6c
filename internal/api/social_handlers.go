package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readloopapp/readloop-server/internal/domain"
)

func (s *Server) registerSocialRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "followUser",
		Method:      http.MethodPut,
		Path:        "/api/v1/users/{id}/follow",
		Summary:     "Follow a user",
		Description: "Adds a follow edge from the current user. Following again is a no-op.",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleFollowUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "unfollowUser",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/{id}/follow",
		Summary:     "Unfollow a user",
		Description: "Removes the follow edge. Unfollowing a user you don't follow is a no-op.",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUnfollowUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFollowers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/followers",
		Summary:     "List followers",
		Description: "Returns the users following the given user",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListFollowers)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFollowing",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/following",
		Summary:     "List following",
		Description: "Returns the users the given user follows",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListFollowing)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCommunity",
		Method:      http.MethodGet,
		Path:        "/api/v1/community",
		Summary:     "Community page",
		Description: "Returns users with their reading stats, most followed first",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListCommunity)
}

// === DTOs ===

// FollowInput contains parameters for follow and unfollow.
type FollowInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"User ID to follow or unfollow"`
}

// FollowResponse reports follow state and counts after a change.
type FollowResponse struct {
	Following bool                `json:"following" doc:"Whether the caller now follows the user"`
	Counts    domain.FollowCounts `json:"counts" doc:"The target user's follower and following counts"`
}

// FollowOutput wraps the follow response for Huma.
type FollowOutput struct {
	Body FollowResponse
}

// PublicUserResponse is the minimal public identity used in social lists.
type PublicUserResponse struct {
	ID          string `json:"id" doc:"User ID"`
	Username    string `json:"username" doc:"Unique handle"`
	DisplayName string `json:"display_name,omitempty" doc:"Display name"`
}

// ListFollowsInput contains parameters for listing followers or following.
type ListFollowsInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"User ID"`
	Limit         int    `query:"limit" default:"50" minimum:"1" maximum:"200" doc:"Items per page"`
	Offset        int    `query:"offset" default:"0" minimum:"0" doc:"Items to skip"`
}

// ListUsersResponse contains a page of public user identities.
type ListUsersResponse struct {
	Users []PublicUserResponse `json:"users" doc:"Users"`
}

// ListUsersOutput wraps the users response for Huma.
type ListUsersOutput struct {
	Body ListUsersResponse
}

// ListCommunityInput contains parameters for the community page.
type ListCommunityInput struct {
	Authorization string `header:"Authorization"`
	Limit         int    `query:"limit" default:"25" minimum:"1" maximum:"100" doc:"Items per page"`
	Offset        int    `query:"offset" default:"0" minimum:"0" doc:"Items to skip"`
}

// CommunityResponse contains users with their reading stats.
type CommunityResponse struct {
	Users []*domain.UserWithStats `json:"users" doc:"Users with stats, most followed first"`
}

// CommunityOutput wraps the community response for Huma.
type CommunityOutput struct {
	Body CommunityResponse
}

// === Handlers ===

func (s *Server) handleFollowUser(ctx context.Context, input *FollowInput) (*FollowOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Social.Follow(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	counts, err := s.services.Social.FollowCounts(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &FollowOutput{Body: FollowResponse{Following: true, Counts: counts}}, nil
}

func (s *Server) handleUnfollowUser(ctx context.Context, input *FollowInput) (*FollowOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Social.Unfollow(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	counts, err := s.services.Social.FollowCounts(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &FollowOutput{Body: FollowResponse{Following: false, Counts: counts}}, nil
}

func (s *Server) handleListFollowers(ctx context.Context, input *ListFollowsInput) (*ListUsersOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	users, err := s.services.Social.ListFollowers(ctx, input.ID, input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}

	return &ListUsersOutput{Body: ListUsersResponse{Users: mapPublicUsers(users)}}, nil
}

func (s *Server) handleListFollowing(ctx context.Context, input *ListFollowsInput) (*ListUsersOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	users, err := s.services.Social.ListFollowing(ctx, input.ID, input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}

	return &ListUsersOutput{Body: ListUsersResponse{Users: mapPublicUsers(users)}}, nil
}

func (s *Server) handleListCommunity(ctx context.Context, input *ListCommunityInput) (*CommunityOutput, error) {
	viewerID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.services.Stats.ListUsersWithStats(ctx, viewerID, input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}

	if users == nil {
		users = []*domain.UserWithStats{}
	}

	return &CommunityOutput{Body: CommunityResponse{Users: users}}, nil
}

// === Mappers ===

// mapPublicUsers strips accounts down to their public identity.
func mapPublicUsers(users []*domain.User) []PublicUserResponse {
	resp := make([]PublicUserResponse, len(users))
	for i, u := range users {
		resp[i] = PublicUserResponse{
			ID:          u.ID,
			Username:    u.Username,
			DisplayName: u.DisplayName,
		}
	}
	return resp
}
