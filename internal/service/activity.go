// Package service contains the business logic layer: shelf management,
// reviews and rating aggregation, the social graph, goals, stats, the
// activity feed, authentication, and catalogue operations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/readloopapp/readloop-server/internal/domain"
	"github.com/readloopapp/readloop-server/internal/id"
	"github.com/readloopapp/readloop-server/internal/store"
)

// ActivityService records social activities and serves the feed.
//
// Activities are denormalized at write time (actor name, avatar, book
// title) so the feed renders without joins and survives later renames
// the way the user remembers them.
type ActivityService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewActivityService creates a new activity service.
func NewActivityService(store *store.Store, logger *slog.Logger) *ActivityService {
	return &ActivityService{
		store:  store,
		logger: logger,
	}
}

// newActivity builds an activity skeleton with the actor's denormalized info.
func (s *ActivityService) newActivity(ctx context.Context, userID string, typ domain.ActivityType) (*domain.Activity, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	activityID, err := id.Generate("act")
	if err != nil {
		return nil, fmt.Errorf("generate activity ID: %w", err)
	}

	activity := &domain.Activity{
		ID:              activityID,
		UserID:          userID,
		Type:            typ,
		CreatedAt:       time.Now(),
		UserDisplayName: user.Name(),
	}

	// Avatar info comes from the profile; a missing profile means the
	// default auto avatar.
	if profile, err := s.store.GetProfile(ctx, userID); err == nil && profile != nil {
		activity.UserAvatarType = string(profile.AvatarType)
		activity.UserAvatarValue = profile.AvatarValue
	} else {
		activity.UserAvatarType = string(domain.AvatarTypeAuto)
	}

	return activity, nil
}

// attachBook copies the book's denormalized fields onto an activity.
func attachBook(activity *domain.Activity, book *domain.Book) {
	activity.BookID = book.ID
	activity.BookTitle = book.Title
	activity.BookAuthorName = book.AuthorName()
	if book.CoverImage != nil {
		activity.BookCoverPath = book.CoverImage.ThumbnailPath
		if activity.BookCoverPath == "" {
			activity.BookCoverPath = book.CoverImage.Path
		}
	}
}

// record persists an activity. The store fans it out to SSE clients.
func (s *ActivityService) record(ctx context.Context, activity *domain.Activity) error {
	if err := s.store.CreateActivity(ctx, activity); err != nil {
		return fmt.Errorf("create activity: %w", err)
	}

	s.logger.Info("activity recorded",
		"type", activity.Type,
		"user_id", activity.UserID,
		"activity_id", activity.ID,
	)

	return nil
}

// RecordBookShelved creates an activity when a user adds a book to their
// want-to-read shelf.
func (s *ActivityService) RecordBookShelved(ctx context.Context, userID string, book *domain.Book) error {
	activity, err := s.newActivity(ctx, userID, domain.ActivityShelvedBook)
	if err != nil {
		return err
	}
	attachBook(activity, book)

	return s.record(ctx, activity)
}

// RecordBookStarted creates an activity when a user starts reading a book.
// isReread distinguishes first-time reads from re-reads after completion.
func (s *ActivityService) RecordBookStarted(ctx context.Context, userID string, book *domain.Book, isReread bool) error {
	activity, err := s.newActivity(ctx, userID, domain.ActivityStartedBook)
	if err != nil {
		return err
	}
	attachBook(activity, book)
	activity.IsReread = isReread

	return s.record(ctx, activity)
}

// RecordBookFinished creates an activity when a user completes a book.
func (s *ActivityService) RecordBookFinished(ctx context.Context, userID string, book *domain.Book) error {
	activity, err := s.newActivity(ctx, userID, domain.ActivityFinishedBook)
	if err != nil {
		return err
	}
	attachBook(activity, book)

	return s.record(ctx, activity)
}

// RecordBookReviewed creates an activity when a user posts or updates a review.
func (s *ActivityService) RecordBookReviewed(ctx context.Context, userID string, book *domain.Book, rating int) error {
	activity, err := s.newActivity(ctx, userID, domain.ActivityReviewedBook)
	if err != nil {
		return err
	}
	attachBook(activity, book)
	activity.Rating = rating

	return s.record(ctx, activity)
}

// RecordUserFollowed creates an activity when a user follows another user.
func (s *ActivityService) RecordUserFollowed(ctx context.Context, userID string, target *domain.User) error {
	activity, err := s.newActivity(ctx, userID, domain.ActivityFollowedUser)
	if err != nil {
		return err
	}
	activity.TargetUserID = target.ID
	activity.TargetUserDisplayName = target.Name()

	return s.record(ctx, activity)
}

// RecordGoalReached creates an activity when a finished book completes a
// yearly reading goal.
func (s *ActivityService) RecordGoalReached(ctx context.Context, userID string, goal *domain.ReadingGoal) error {
	activity, err := s.newActivity(ctx, userID, domain.ActivityGoalReached)
	if err != nil {
		return err
	}
	activity.GoalYear = goal.Year
	activity.GoalTarget = goal.TargetBooks

	return s.record(ctx, activity)
}

// Feed returns the user's activity feed: their own activity plus that of
// everyone they follow, newest first, keyset-paginated.
func (s *ActivityService) Feed(ctx context.Context, userID string, params store.PaginationParams) (*store.PaginatedResult[*domain.Activity], error) {
	params.Validate()

	followingIDs, err := s.store.ListFollowingIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	actorIDs := append(followingIDs, userID)

	opts := store.ActivityFeedOptions{
		UserIDs: actorIDs,
		// Fetch one extra row to learn whether another page exists.
		Limit: params.Limit + 1,
	}
	if params.Cursor != "" {
		before, beforeID, err := store.DecodeFeedCursor(params.Cursor)
		if err != nil {
			return nil, err
		}
		opts.Before = before
		opts.BeforeID = beforeID
	}

	activities, err := s.store.ListActivities(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	result := &store.PaginatedResult[*domain.Activity]{Items: activities}
	if len(activities) > params.Limit {
		result.Items = activities[:params.Limit]
		result.HasMore = true
		last := result.Items[len(result.Items)-1]
		result.NextCursor = store.EncodeFeedCursor(last.CreatedAt, last.ID)
	}

	return result, nil
}

// UserActivities returns one user's own recent activity, for profile pages.
func (s *ActivityService) UserActivities(ctx context.Context, userID string, params store.PaginationParams) (*store.PaginatedResult[*domain.Activity], error) {
	params.Validate()

	opts := store.ActivityFeedOptions{
		UserIDs: []string{userID},
		Limit:   params.Limit + 1,
	}
	if params.Cursor != "" {
		before, beforeID, err := store.DecodeFeedCursor(params.Cursor)
		if err != nil {
			return nil, err
		}
		opts.Before = before
		opts.BeforeID = beforeID
	}

	activities, err := s.store.ListActivities(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	result := &store.PaginatedResult[*domain.Activity]{Items: activities}
	if len(activities) > params.Limit {
		result.Items = activities[:params.Limit]
		result.HasMore = true
		last := result.Items[len(result.Items)-1]
		result.NextCursor = store.EncodeFeedCursor(last.CreatedAt, last.ID)
	}

	return result, nil
}
