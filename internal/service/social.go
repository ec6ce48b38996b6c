package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/readloopapp/readloop-server/internal/domain"
	domainerrors "github.com/readloopapp/readloop-server/internal/errors"
	"github.com/readloopapp/readloop-server/internal/sse"
	"github.com/readloopapp/readloop-server/internal/store"
)

// SocialService manages the follow graph.
type SocialService struct {
	store      *store.Store
	sseManager *sse.Manager
	logger     *slog.Logger
	activities *ActivityService
}

// NewSocialService creates a new social service.
func NewSocialService(store *store.Store, sseManager *sse.Manager, logger *slog.Logger) *SocialService {
	return &SocialService{
		store:      store,
		sseManager: sseManager,
		logger:     logger,
	}
}

// SetActivityRecorder wires the activity service after construction.
func (s *SocialService) SetActivityRecorder(activities *ActivityService) {
	s.activities = activities
}

// Follow adds a follow edge from follower to followee. Following someone
// already followed is a no-op so retried requests stay safe; self-follows
// are rejected.
func (s *SocialService) Follow(ctx context.Context, followerID, followeeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if followerID == followeeID {
		return domainerrors.Validation("you cannot follow yourself")
	}

	followee, err := s.store.GetUser(ctx, followeeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("user not found")
		}
		return fmt.Errorf("get user: %w", err)
	}

	follow := &domain.Follow{
		FollowerID: followerID,
		FolloweeID: followeeID,
		CreatedAt:  time.Now(),
	}
	if err := s.store.CreateFollow(ctx, follow); err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyExists):
			return nil
		case errors.Is(err, store.ErrNotFound):
			return domainerrors.NotFound("user not found")
		case errors.Is(err, store.ErrInvalidInput):
			return domainerrors.Validation("invalid follow")
		default:
			return fmt.Errorf("create follow: %w", err)
		}
	}

	s.logger.Info("user followed",
		"follower_id", followerID,
		"followee_id", followeeID,
	)

	if s.activities != nil {
		if err := s.activities.RecordUserFollowed(ctx, followerID, followee); err != nil {
			s.logger.Error("failed to record follow activity", "error", err, "follower_id", followerID)
		}
	}

	follower, err := s.store.GetUser(ctx, followerID)
	if err == nil {
		s.sseManager.PublishToUser(followeeID,
			sse.NewFollowerAddedEvent(followeeID, followerID, follower.Name()))
	}

	return nil
}

// Unfollow removes a follow edge. Unfollowing someone not followed is a
// no-op.
func (s *SocialService) Unfollow(ctx context.Context, followerID, followeeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.store.DeleteFollow(ctx, followerID, followeeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("delete follow: %w", err)
	}

	s.logger.Info("user unfollowed",
		"follower_id", followerID,
		"followee_id", followeeID,
	)
	return nil
}

// IsFollowing reports whether follower currently follows followee.
func (s *SocialService) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	following, err := s.store.IsFollowing(ctx, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	return following, nil
}

// FollowCounts returns a user's follower and following totals.
func (s *SocialService) FollowCounts(ctx context.Context, userID string) (domain.FollowCounts, error) {
	counts, err := s.store.CountFollows(ctx, userID)
	if err != nil {
		return domain.FollowCounts{}, fmt.Errorf("count follows: %w", err)
	}
	return counts, nil
}

// ListFollowers returns the users following userID, most recent first.
func (s *SocialService) ListFollowers(ctx context.Context, userID string, limit, offset int) ([]*domain.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	users, err := s.store.ListFollowers(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	return users, nil
}

// ListFollowing returns the users userID follows, most recent first.
func (s *SocialService) ListFollowing(ctx context.Context, userID string, limit, offset int) ([]*domain.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	users, err := s.store.ListFollowing(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	return users, nil
}
