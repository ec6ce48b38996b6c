package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readloopapp/readloop-server/internal/domain"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "upsertReview",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}/review",
		Summary:     "Write or update a review",
		Description: "Creates or replaces the current user's review for a book. One review per user per book.",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpsertReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMyReview",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/review",
		Summary:     "Get my review",
		Description: "Returns the current user's review for a book, if any",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetMyReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBookReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/reviews",
		Summary:     "List a book's reviews",
		Description: "Returns reviews for a book, newest first, with per-viewer like flags",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBookReviews)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUserReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/reviews",
		Summary:     "List a user's reviews",
		Description: "Returns one user's reviews, newest first",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListUserReviews)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteReview",
		Method:      http.MethodDelete,
		Path:        "/api/v1/reviews/{id}",
		Summary:     "Delete a review",
		Description: "Deletes a review. Only the author or an admin may delete.",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleReviewLike",
		Method:      http.MethodPost,
		Path:        "/api/v1/reviews/{id}/like",
		Summary:     "Toggle a review like",
		Description: "Likes a review, or removes the like if already present",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleReviewLike)
}

// === DTOs ===

// UpsertReviewRequest is the request body for writing a review.
type UpsertReviewRequest struct {
	Rating  int    `json:"rating" minimum:"1" maximum:"5" doc:"Whole stars, 1-5"`
	Body    string `json:"body,omitempty" doc:"Optional review text"`
	Spoiler bool   `json:"spoiler,omitempty" doc:"Marks the review text as containing spoilers"`
}

// UpsertReviewInput wraps the review request for Huma.
type UpsertReviewInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	Body          UpsertReviewRequest
}

// ReviewOutput wraps a single review for Huma.
type ReviewOutput struct {
	Body *domain.Review
}

// GetMyReviewInput contains parameters for reading the caller's review.
type GetMyReviewInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// ListBookReviewsInput contains parameters for listing a book's reviews.
type ListBookReviewsInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	Limit         int    `query:"limit" default:"25" minimum:"1" maximum:"100" doc:"Items per page"`
	Offset        int    `query:"offset" default:"0" minimum:"0" doc:"Items to skip"`
}

// ListUserReviewsInput contains parameters for listing a user's reviews.
type ListUserReviewsInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"User ID"`
	Limit         int    `query:"limit" default:"25" minimum:"1" maximum:"100" doc:"Items per page"`
	Offset        int    `query:"offset" default:"0" minimum:"0" doc:"Items to skip"`
}

// ListReviewsResponse contains a page of reviews.
type ListReviewsResponse struct {
	Reviews []*domain.Review `json:"reviews" doc:"Reviews, newest first"`
}

// ListReviewsOutput wraps the reviews response for Huma.
type ListReviewsOutput struct {
	Body ListReviewsResponse
}

// DeleteReviewInput contains parameters for deleting a review.
type DeleteReviewInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Review ID"`
}

// ToggleReviewLikeInput contains parameters for toggling a like.
type ToggleReviewLikeInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Review ID"`
}

// ReviewLikeResponse reports the like state after a toggle.
type ReviewLikeResponse struct {
	Liked bool `json:"liked" doc:"Whether the caller now likes the review"`
	Likes int  `json:"likes" doc:"Total like count"`
}

// ReviewLikeOutput wraps the like response for Huma.
type ReviewLikeOutput struct {
	Body ReviewLikeResponse
}

// === Handlers ===

func (s *Server) handleUpsertReview(ctx context.Context, input *UpsertReviewInput) (*ReviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Review.UpsertReview(ctx, userID, input.ID, input.Body.Rating, input.Body.Body, input.Body.Spoiler)
	if err != nil {
		return nil, err
	}

	return &ReviewOutput{Body: review}, nil
}

func (s *Server) handleGetMyReview(ctx context.Context, input *GetMyReviewInput) (*ReviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Review.GetUserReview(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, huma.Error404NotFound("No review for this book")
	}

	return &ReviewOutput{Body: review}, nil
}

func (s *Server) handleListBookReviews(ctx context.Context, input *ListBookReviewsInput) (*ListReviewsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	reviews, err := s.services.Review.ListBookReviews(ctx, input.ID, userID, input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}

	if reviews == nil {
		reviews = []*domain.Review{}
	}

	return &ListReviewsOutput{Body: ListReviewsResponse{Reviews: reviews}}, nil
}

func (s *Server) handleListUserReviews(ctx context.Context, input *ListUserReviewsInput) (*ListReviewsOutput, error) {
	viewerID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	reviews, err := s.services.Review.ListUserReviews(ctx, input.ID, viewerID, input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}

	if reviews == nil {
		reviews = []*domain.Review{}
	}

	return &ListReviewsOutput{Body: ListReviewsResponse{Reviews: reviews}}, nil
}

func (s *Server) handleDeleteReview(ctx context.Context, input *DeleteReviewInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	// Re-read the admin flag from the store rather than trusting token
	// claims, matching RequireAdmin.
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, huma.Error401Unauthorized("User not found")
	}

	if err := s.services.Review.DeleteReview(ctx, input.ID, userID, user.IsAdmin); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Review deleted"}}, nil
}

func (s *Server) handleToggleReviewLike(ctx context.Context, input *ToggleReviewLikeInput) (*ReviewLikeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	liked, likes, err := s.services.Review.ToggleLike(ctx, input.ID, userID)
	if err != nil {
		return nil, err
	}

	return &ReviewLikeOutput{Body: ReviewLikeResponse{Liked: liked, Likes: likes}}, nil
}
