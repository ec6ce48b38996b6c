package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/readloopapp/readloop-server/internal/domain"
	domainerrors "github.com/readloopapp/readloop-server/internal/errors"
	"github.com/readloopapp/readloop-server/internal/id"
	"github.com/readloopapp/readloop-server/internal/sse"
	"github.com/readloopapp/readloop-server/internal/store"
)

// GoalService manages yearly reading goals and their progress.
type GoalService struct {
	store      *store.Store
	sseManager *sse.Manager
	logger     *slog.Logger
	activities *ActivityService
}

// NewGoalService creates a new goal service.
func NewGoalService(store *store.Store, sseManager *sse.Manager, logger *slog.Logger) *GoalService {
	return &GoalService{
		store:      store,
		sseManager: sseManager,
		logger:     logger,
	}
}

// SetActivityRecorder wires the activity service after construction.
func (s *GoalService) SetActivityRecorder(activities *ActivityService) {
	s.activities = activities
}

// SetGoal creates or replaces the user's goal for a year. There is at
// most one goal per user per year; setting it again overwrites the target.
func (s *GoalService) SetGoal(ctx context.Context, userID string, year, targetBooks int) (*domain.ReadingGoal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !domain.YearValid(year) {
		return nil, domainerrors.Validationf("invalid goal year %d", year)
	}
	if targetBooks < 1 {
		return nil, domainerrors.Validation("goal target must be at least 1 book")
	}

	goalID, err := id.Generate("goal")
	if err != nil {
		return nil, fmt.Errorf("generate goal ID: %w", err)
	}
	goal := &domain.ReadingGoal{
		UserID:      userID,
		Year:        year,
		TargetBooks: targetBooks,
	}
	goal.ID = goalID
	goal.InitTimestamps()
	if err := s.store.UpsertReadingGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("save goal: %w", err)
	}

	s.logger.Info("reading goal set",
		"user_id", userID,
		"year", year,
		"target", targetBooks,
	)

	progress, err := s.progressFor(ctx, goal)
	if err == nil {
		s.sseManager.PublishToUser(userID, sse.NewGoalProgressEvent(userID, progress))
	}

	return goal, nil
}

// DeleteGoal removes the user's goal for a year. Deleting a goal that
// does not exist is a no-op.
func (s *GoalService) DeleteGoal(ctx context.Context, userID string, year int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.store.DeleteReadingGoal(ctx, userID, year); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("delete goal: %w", err)
	}

	s.logger.Info("reading goal deleted", "user_id", userID, "year", year)
	return nil
}

// GetGoalProgress returns the user's goal for a year together with how
// many books they have finished in it. Returns nil when no goal is set.
func (s *GoalService) GetGoalProgress(ctx context.Context, userID string, year int) (*domain.GoalProgress, error) {
	goal, err := s.store.GetReadingGoal(ctx, userID, year)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get goal: %w", err)
	}

	progress, err := s.progressFor(ctx, goal)
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (s *GoalService) progressFor(ctx context.Context, goal *domain.ReadingGoal) (domain.GoalProgress, error) {
	finished, err := s.store.CountFinishedInYear(ctx, goal.UserID, goal.Year)
	if err != nil {
		return domain.GoalProgress{}, fmt.Errorf("count finished books: %w", err)
	}
	return domain.NewGoalProgress(*goal, finished), nil
}

// checkGoalReached runs after a book lands on the read shelf. It pushes a
// live progress update and, exactly when the finished count meets the
// target, records a goal_reached activity. Failures are logged only; the
// shelf write has already committed.
func (s *GoalService) checkGoalReached(ctx context.Context, userID string, entry *domain.UserBook) {
	if entry.FinishedAt == nil {
		return
	}
	year := entry.FinishedAt.Year()

	goal, err := s.store.GetReadingGoal(ctx, userID, year)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("failed to check reading goal", "error", err, "user_id", userID)
		}
		return
	}

	progress, err := s.progressFor(ctx, goal)
	if err != nil {
		s.logger.Error("failed to compute goal progress", "error", err, "user_id", userID)
		return
	}

	s.sseManager.PublishToUser(userID, sse.NewGoalProgressEvent(userID, progress))

	// Fire the celebration once, on the book that crosses the line.
	if progress.FinishedBooks == goal.TargetBooks && s.activities != nil {
		if err := s.activities.RecordGoalReached(ctx, userID, goal); err != nil {
			s.logger.Error("failed to record goal activity", "error", err, "user_id", userID)
			return
		}
		s.logger.Info("reading goal reached",
			"user_id", userID,
			"year", goal.Year,
			"target", goal.TargetBooks,
		)
	}
}
