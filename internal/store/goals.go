package store

import (
	"context"
	"database/sql"

	"github.com/readloopapp/readloop-server/internal/domain"
)

// UpsertReadingGoal writes a user's goal for a year, replacing any previous
// target. The original goal ID and created_at survive a target change.
func (s *Store) UpsertReadingGoal(ctx context.Context, goal *domain.ReadingGoal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reading_goals (id, user_id, year, target_books, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, year) DO UPDATE SET
			target_books = excluded.target_books,
			updated_at = excluded.updated_at`,
		goal.ID,
		goal.UserID,
		goal.Year,
		goal.TargetBooks,
		formatTime(goal.CreatedAt),
		formatTime(goal.UpdatedAt),
	)
	return err
}

// GetReadingGoal retrieves a user's goal for a year.
// Returns ErrNotFound if no goal is set.
func (s *Store) GetReadingGoal(ctx context.Context, userID string, year int) (*domain.ReadingGoal, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, year, target_books, created_at, updated_at
		FROM reading_goals WHERE user_id = ? AND year = ?`,
		userID, year)

	goal, err := scanReadingGoal(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return goal, nil
}

// DeleteReadingGoal removes a user's goal for a year.
// Returns ErrNotFound if no goal was set.
func (s *Store) DeleteReadingGoal(ctx context.Context, userID string, year int) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM reading_goals WHERE user_id = ? AND year = ?`, userID, year)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanReadingGoal(scanner interface{ Scan(dest ...any) error }) (*domain.ReadingGoal, error) {
	var g domain.ReadingGoal
	var createdAt, updatedAt string

	err := scanner.Scan(&g.ID, &g.UserID, &g.Year, &g.TargetBooks, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	g.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	g.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}
