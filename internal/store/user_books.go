package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/readloopapp/readloop-server/internal/domain"
)

// userBookColumns is the ordered list of columns selected in shelf queries.
// Must match the scan order in scanUserBook.
const userBookColumns = `user_id, book_id, shelf, started_at, finished_at, created_at, updated_at`

// scanUserBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.UserBook.
func scanUserBook(scanner interface{ Scan(dest ...any) error }) (*domain.UserBook, error) {
	var ub domain.UserBook

	var (
		shelf      string
		startedAt  sql.NullString
		finishedAt sql.NullString
		createdAt  string
		updatedAt  string
	)

	err := scanner.Scan(
		&ub.UserID,
		&ub.BookID,
		&shelf,
		&startedAt,
		&finishedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	ub.Shelf = domain.Shelf(shelf)

	ub.StartedAt, err = parseNullableTime(startedAt)
	if err != nil {
		return nil, err
	}
	ub.FinishedAt, err = parseNullableTime(finishedAt)
	if err != nil {
		return nil, err
	}
	ub.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	ub.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &ub, nil
}

// UpsertUserBook writes a shelf entry, inserting or replacing on the
// (user_id, book_id) key. The caller is responsible for applying the
// timestamp rules via domain.UserBook.MoveTo before persisting; the store
// writes exactly what it is given.
func (s *Store) UpsertUserBook(ctx context.Context, ub *domain.UserBook) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_books (user_id, book_id, shelf, started_at, finished_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, book_id) DO UPDATE SET
			shelf = excluded.shelf,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			updated_at = excluded.updated_at`,
		ub.UserID,
		ub.BookID,
		string(ub.Shelf),
		nullTimeString(ub.StartedAt),
		nullTimeString(ub.FinishedAt),
		formatTime(ub.CreatedAt),
		formatTime(ub.UpdatedAt),
	)
	return err
}

// GetUserBook retrieves a user's shelf entry for a book.
// Returns ErrNotFound if the book is not on any of the user's shelves.
func (s *Store) GetUserBook(ctx context.Context, userID, bookID string) (*domain.UserBook, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userBookColumns+` FROM user_books WHERE user_id = ? AND book_id = ?`,
		userID, bookID)

	ub, err := scanUserBook(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ub, nil
}

// DeleteUserBook removes a book from the user's shelves entirely.
// Returns ErrNotFound if the book was not shelved.
func (s *Store) DeleteUserBook(ctx context.Context, userID, bookID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM user_books WHERE user_id = ? AND book_id = ?`, userID, bookID)
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

// ListUserBooks returns a user's shelf entries, most recently updated first.
// An empty shelf lists all three shelves.
func (s *Store) ListUserBooks(ctx context.Context, userID string, shelf domain.Shelf, limit, offset int) ([]*domain.UserBook, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `SELECT ` + userBookColumns + ` FROM user_books WHERE user_id = ?`
	args := []any{userID}

	if shelf != "" {
		query += ` AND shelf = ?`
		args = append(args, string(shelf))
	}

	query += ` ORDER BY updated_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.UserBook
	for rows.Next() {
		ub, err := scanUserBook(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ub)
	}
	return entries, rows.Err()
}

// CountUserShelves returns the number of books on each of a user's shelves.
func (s *Store) CountUserShelves(ctx context.Context, userID string) (domain.ShelfCounts, error) {
	var counts domain.ShelfCounts

	rows, err := s.db.QueryContext(ctx,
		`SELECT shelf, COUNT(*) FROM user_books WHERE user_id = ? GROUP BY shelf`, userID)
	if err != nil {
		return counts, err
	}
	defer rows.Close()

	for rows.Next() {
		var shelf string
		var count int
		if err := rows.Scan(&shelf, &count); err != nil {
			return counts, err
		}
		switch domain.Shelf(shelf) {
		case domain.ShelfWantToRead:
			counts.WantToRead = count
		case domain.ShelfCurrentlyReading:
			counts.CurrentlyReading = count
		case domain.ShelfRead:
			counts.Read = count
		}
	}
	return counts, rows.Err()
}

// CountFinishedInYear returns how many books the user finished in a calendar
// year, for reading-goal progress. Finished timestamps are stored as RFC 3339
// UTC strings so a prefix match on the year is exact.
func (s *Store) CountFinishedInYear(ctx context.Context, userID string, year int) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM user_books
		WHERE user_id = ? AND shelf = ? AND finished_at LIKE ?`,
		userID, string(domain.ShelfRead), fmt.Sprintf("%04d-%%", year)).Scan(&count)
	return count, err
}
