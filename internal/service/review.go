package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/readloopapp/readloop-server/internal/domain"
	domainerrors "github.com/readloopapp/readloop-server/internal/errors"
	"github.com/readloopapp/readloop-server/internal/id"
	"github.com/readloopapp/readloop-server/internal/sse"
	"github.com/readloopapp/readloop-server/internal/store"
)

// ReviewService manages star reviews, likes, and the rating aggregates
// the store maintains alongside them.
type ReviewService struct {
	store      *store.Store
	sseManager *sse.Manager
	logger     *slog.Logger
	activities *ActivityService
}

// NewReviewService creates a new review service.
func NewReviewService(store *store.Store, sseManager *sse.Manager, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		store:      store,
		sseManager: sseManager,
		logger:     logger,
	}
}

// SetActivityRecorder wires the activity service after construction.
func (s *ReviewService) SetActivityRecorder(activities *ActivityService) {
	s.activities = activities
}

// UpsertReview creates or replaces the user's review for a book. One
// review per user per book; writing again overwrites rating, body, and
// the spoiler flag but keeps the review's identity and likes. The book's
// average_rating and ratings_count update in the same transaction as the
// review row.
func (s *ReviewService) UpsertReview(ctx context.Context, userID, bookID string, rating int, body string, spoiler bool) (*domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !domain.RatingValid(rating) {
		return nil, domainerrors.Validationf("rating must be between %d and %d stars", domain.MinRating, domain.MaxRating)
	}
	body = strings.TrimSpace(body)
	if len(body) > domain.MaxReviewBodyLength {
		return nil, domainerrors.Validationf("review body exceeds %d characters", domain.MaxReviewBodyLength)
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	reviewID, err := id.Generate("rev")
	if err != nil {
		return nil, fmt.Errorf("generate review ID: %w", err)
	}

	review := &domain.Review{
		UserID:  userID,
		BookID:  bookID,
		Rating:  rating,
		Body:    body,
		Spoiler: spoiler,
	}
	review.ID = reviewID
	review.InitTimestamps()

	if err := s.store.UpsertReview(ctx, review); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("save review: %w", err)
	}

	s.logger.Info("review saved",
		"user_id", userID,
		"book_id", bookID,
		"review_id", review.ID,
		"rating", rating,
	)

	if s.activities != nil {
		if err := s.activities.RecordBookReviewed(ctx, userID, book, rating); err != nil {
			s.logger.Error("failed to record review activity", "error", err, "user_id", userID)
		}
	}

	return review, nil
}

// DeleteReview removes a review. Only the review's author or an admin may
// delete it. The book's aggregates recompute in the same transaction.
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID, actorID string, actorIsAdmin bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	review, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("review not found")
		}
		return fmt.Errorf("get review: %w", err)
	}

	if review.UserID != actorID && !actorIsAdmin {
		return domainerrors.Forbidden("you can only delete your own reviews")
	}

	if err := s.store.DeleteReview(ctx, reviewID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("review not found")
		}
		return fmt.Errorf("delete review: %w", err)
	}

	s.logger.Info("review deleted",
		"review_id", reviewID,
		"actor_id", actorID,
	)
	return nil
}

// ToggleLike likes a review, or removes the like if the user already
// liked it. Returns the resulting state and like count.
func (s *ReviewService) ToggleLike(ctx context.Context, reviewID, userID string) (liked bool, likes int, err error) {
	if err := ctx.Err(); err != nil {
		return false, 0, err
	}

	liked, likes, err = s.store.ToggleReviewLike(ctx, reviewID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, 0, domainerrors.NotFound("review not found")
		}
		return false, 0, fmt.Errorf("toggle like: %w", err)
	}

	s.logger.Info("review like toggled",
		"review_id", reviewID,
		"user_id", userID,
		"liked", liked,
		"likes", likes,
	)

	s.sseManager.Publish(sse.NewReviewLikedEvent(reviewID, likes))

	return liked, likes, nil
}

// GetUserReview returns the viewer-agnostic review one user wrote for a
// book, or nil if they have not reviewed it.
func (s *ReviewService) GetUserReview(ctx context.Context, userID, bookID string) (*domain.Review, error) {
	review, err := s.store.GetUserReview(ctx, userID, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return review, nil
}

// ListBookReviews returns a book's reviews newest first. viewerID marks
// LikedByMe on each review; pass "" for anonymous listings.
func (s *ReviewService) ListBookReviews(ctx context.Context, bookID, viewerID string, limit, offset int) ([]*domain.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	reviews, err := s.store.ListBookReviews(ctx, bookID, viewerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list book reviews: %w", err)
	}
	return reviews, nil
}

// ListUserReviews returns the reviews a user has written, newest first.
func (s *ReviewService) ListUserReviews(ctx context.Context, userID, viewerID string, limit, offset int) ([]*domain.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	reviews, err := s.store.ListUserReviews(ctx, userID, viewerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list user reviews: %w", err)
	}
	return reviews, nil
}
