package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readloopapp/readloop-server/internal/domain"
	"github.com/readloopapp/readloop-server/internal/service"
)

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getMyProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/profile",
		Summary:     "Get my profile",
		Description: "Returns the current user's profile, creating the default one on first access",
		Tags:        []string{"Profiles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetMyProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateMyProfile",
		Method:      http.MethodPatch,
		Path:        "/api/v1/profile",
		Summary:     "Update my profile",
		Description: "Updates display name, tagline and favorite genres. Omitted fields are left untouched.",
		Tags:        []string{"Profiles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateMyProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPublicProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{username}/profile",
		Summary:     "Get a public profile",
		Description: "Returns a user's profile as other users see it, with stats and follow state",
		Tags:        []string{"Profiles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetPublicProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/search",
		Summary:     "Search users",
		Description: "Finds users by username or display name substring",
		Tags:        []string{"Profiles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchUsers)
}

// === DTOs ===

// GetMyProfileInput contains parameters for reading the caller's profile.
type GetMyProfileInput struct {
	Authorization string `header:"Authorization"`
}

// ProfileOutput wraps a profile for Huma.
type ProfileOutput struct {
	Body *domain.UserProfile
}

// UpdateProfileRequest carries the editable profile fields.
// Omitted fields are left untouched.
type UpdateProfileRequest struct {
	DisplayName    *string  `json:"display_name,omitempty" doc:"New display name"`
	Tagline        *string  `json:"tagline,omitempty" doc:"New tagline (max 60 characters)"`
	FavoriteGenres []string `json:"favorite_genres,omitempty" doc:"New favorite genres"`
}

// UpdateProfileInput wraps the profile update request for Huma.
type UpdateProfileInput struct {
	Authorization string `header:"Authorization"`
	Body          UpdateProfileRequest
}

// GetPublicProfileInput contains parameters for reading a public profile.
type GetPublicProfileInput struct {
	Authorization string `header:"Authorization"`
	Username      string `path:"username" doc:"Username"`
}

// PublicProfileOutput wraps a public profile for Huma.
type PublicProfileOutput struct {
	Body *service.PublicProfile
}

// SearchUsersInput contains query parameters for user search.
type SearchUsersInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Substring to match against usernames and display names"`
	Limit         int    `query:"limit" default:"25" minimum:"1" maximum:"100" doc:"Max results"`
}

// === Handlers ===

func (s *Server) handleGetMyProfile(ctx context.Context, _ *GetMyProfileInput) (*ProfileOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Profile.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: profile}, nil
}

func (s *Server) handleUpdateMyProfile(ctx context.Context, input *UpdateProfileInput) (*ProfileOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Profile.UpdateProfile(ctx, userID, service.ProfileUpdate{
		DisplayName:    input.Body.DisplayName,
		Tagline:        input.Body.Tagline,
		FavoriteGenres: input.Body.FavoriteGenres,
	})
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: profile}, nil
}

func (s *Server) handleGetPublicProfile(ctx context.Context, input *GetPublicProfileInput) (*PublicProfileOutput, error) {
	viewerID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Profile.GetPublicProfile(ctx, input.Username, viewerID, s.services.Stats, s.services.Social)
	if err != nil {
		return nil, err
	}

	return &PublicProfileOutput{Body: profile}, nil
}

func (s *Server) handleSearchUsers(ctx context.Context, input *SearchUsersInput) (*ListUsersOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	users, err := s.services.Profile.SearchUsers(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, err
	}

	return &ListUsersOutput{Body: ListUsersResponse{Users: mapPublicUsers(users)}}, nil
}
