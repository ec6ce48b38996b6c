package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/readloopapp/readloop-server/internal/domain"
	domainerrors "github.com/readloopapp/readloop-server/internal/errors"
	"github.com/readloopapp/readloop-server/internal/store"
)

// StatsService serves per-user reading statistics and the community listing.
type StatsService struct {
	store  *store.Store
	goals  *GoalService
	logger *slog.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(store *store.Store, goals *GoalService, logger *slog.Logger) *StatsService {
	return &StatsService{
		store:  store,
		goals:  goals,
		logger: logger,
	}
}

// GetUserStats returns a user's aggregate shelf, review and social
// numbers, with current-year goal progress attached when a goal is set.
func (s *StatsService) GetUserStats(ctx context.Context, userID string) (*domain.UserStats, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	stats, err := s.store.GetUserStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user stats: %w", err)
	}

	goal, err := s.goals.GetGoalProgress(ctx, userID, time.Now().Year())
	if err != nil {
		return nil, err
	}
	stats.Goal = goal

	return stats, nil
}

// ListUsersWithStats returns the community page: every user with their
// read counts, review counts and followers, ordered by books read.
// viewerID marks IsFollowedByMe; pass "" for anonymous listings.
func (s *StatsService) ListUsersWithStats(ctx context.Context, viewerID string, limit, offset int) ([]*domain.UserWithStats, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	users, err := s.store.ListUsersWithStats(ctx, viewerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users with stats: %w", err)
	}
	return users, nil
}
