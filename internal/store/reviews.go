package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/readloopapp/readloop-server/internal/domain"
)

// reviewColumns is the ordered list of review columns, joined with the
// reviewer's display name and the book title for rendering without a second
// round trip. Must match the scan order in scanReview.
const reviewColumns = `r.id, r.created_at, r.updated_at,
	r.user_id, r.book_id, r.rating, r.body, r.spoiler, r.likes_count,
	u.display_name, u.username, b.title`

const reviewJoins = `
	JOIN users u ON u.id = r.user_id
	JOIN books b ON b.id = r.book_id`

// scanReview scans a sql.Row (or sql.Rows via its Scan method) into a domain.Review.
func scanReview(scanner interface{ Scan(dest ...any) error }) (*domain.Review, error) {
	var r domain.Review

	var (
		createdAt   string
		updatedAt   string
		spoiler     int
		displayName string
		username    string
	)

	err := scanner.Scan(
		&r.ID,
		&createdAt,
		&updatedAt,
		&r.UserID,
		&r.BookID,
		&r.Rating,
		&r.Body,
		&spoiler,
		&r.LikesCount,
		&displayName,
		&username,
		&r.BookTitle,
	)
	if err != nil {
		return nil, err
	}

	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	r.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	r.Spoiler = spoiler != 0

	r.UserDisplayName = displayName
	if r.UserDisplayName == "" {
		r.UserDisplayName = username
	}

	return &r, nil
}

// recomputeBookRating recalculates a book's rating aggregates from the full
// set of its reviews, inside the caller's transaction. Books with no reviews
// reset to zero. Runs against the same tx as the review write so a reader
// never observes a review without its effect on the average.
func (s *Store) recomputeBookRating(ctx context.Context, tx *sql.Tx, bookID string) (avg float64, count int, err error) {
	rows, err := tx.QueryContext(ctx, `SELECT rating FROM reviews WHERE book_id = ?`, bookID)
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()

	var ratings []int
	for rows.Next() {
		var rating int
		if err := rows.Scan(&rating); err != nil {
			return 0, 0, err
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return 0, 0, err
	}

	count = len(ratings)
	if count > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r
		}
		avg = domain.RoundRating(float64(sum) / float64(count))
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE books SET average_rating = ?, ratings_count = ?, updated_at = ?
		WHERE id = ?`,
		avg, count, formatTime(time.Now()), bookID)
	if err != nil {
		return 0, 0, err
	}
	return avg, count, nil
}

// UpsertReview writes a user's review for a book, overwriting any previous
// one, and recomputes the book's rating aggregates in the same transaction.
// A re-review keeps the original review's ID, created_at and likes; the
// caller's review gets its ID rewritten to the stored one.
func (s *Store) UpsertReview(ctx context.Context, review *domain.Review) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reviews (id, user_id, book_id, rating, body, spoiler, likes_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT(user_id, book_id) DO UPDATE SET
			rating = excluded.rating,
			body = excluded.body,
			spoiler = excluded.spoiler,
			updated_at = excluded.updated_at`,
		review.ID,
		review.UserID,
		review.BookID,
		review.Rating,
		review.Body,
		boolToInt(review.Spoiler),
		formatTime(review.CreatedAt),
		formatTime(review.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return ErrNotFound
		}
		return err
	}

	// The upsert may have hit an existing row; read back the canonical state.
	var createdAt string
	err = tx.QueryRowContext(ctx,
		`SELECT id, created_at, likes_count FROM reviews WHERE user_id = ? AND book_id = ?`,
		review.UserID, review.BookID).Scan(&review.ID, &createdAt, &review.LikesCount)
	if err != nil {
		return err
	}
	review.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return err
	}

	avg, count, err := s.recomputeBookRating(ctx, tx, review.BookID)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.emitter.Emit("book.rating_changed", map[string]any{
		"book_id":        review.BookID,
		"average_rating": avg,
		"ratings_count":  count,
	})
	return nil
}

// DeleteReview removes a review by ID and recomputes the book's rating
// aggregates in the same transaction. Likes cascade with the row.
// Returns ErrNotFound if the review does not exist.
func (s *Store) DeleteReview(ctx context.Context, reviewID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var bookID string
	err = tx.QueryRowContext(ctx, `SELECT book_id FROM reviews WHERE id = ?`, reviewID).Scan(&bookID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, reviewID); err != nil {
		return err
	}

	avg, count, err := s.recomputeBookRating(ctx, tx, bookID)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.emitter.Emit("book.rating_changed", map[string]any{
		"book_id":        bookID,
		"average_rating": avg,
		"ratings_count":  count,
	})
	return nil
}

// GetReview retrieves a review by ID.
// Returns ErrNotFound if the review does not exist.
func (s *Store) GetReview(ctx context.Context, reviewID string) (*domain.Review, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews r`+reviewJoins+` WHERE r.id = ?`, reviewID)

	r, err := scanReview(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// GetUserReview retrieves a user's review for a specific book.
// Returns ErrNotFound if the user has not reviewed the book.
func (s *Store) GetUserReview(ctx context.Context, userID, bookID string) (*domain.Review, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews r`+reviewJoins+` WHERE r.user_id = ? AND r.book_id = ?`,
		userID, bookID)

	r, err := scanReview(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListBookReviews returns reviews for a book, newest first. When viewerID is
// non-empty each review's LikedByMe reflects that viewer's likes.
func (s *Store) ListBookReviews(ctx context.Context, bookID, viewerID string, limit, offset int) ([]*domain.Review, error) {
	return s.listReviews(ctx, `r.book_id = ?`, bookID, viewerID, limit, offset)
}

// ListUserReviews returns a user's reviews, newest first.
func (s *Store) ListUserReviews(ctx context.Context, userID, viewerID string, limit, offset int) ([]*domain.Review, error) {
	return s.listReviews(ctx, `r.user_id = ?`, userID, viewerID, limit, offset)
}

func (s *Store) listReviews(ctx context.Context, where, whereArg, viewerID string, limit, offset int) ([]*domain.Review, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews r`+reviewJoins+`
		WHERE `+where+`
		ORDER BY r.created_at DESC
		LIMIT ? OFFSET ?`,
		whereArg, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if viewerID != "" && len(reviews) > 0 {
		if err := s.markLikedBy(ctx, reviews, viewerID); err != nil {
			return nil, err
		}
	}
	return reviews, nil
}

// markLikedBy sets LikedByMe on each review the viewer has liked.
func (s *Store) markLikedBy(ctx context.Context, reviews []*domain.Review, viewerID string) error {
	placeholders := strings.Repeat("?,", len(reviews))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(reviews)+1)
	args = append(args, viewerID)
	for _, r := range reviews {
		args = append(args, r.ID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT review_id FROM review_likes WHERE user_id = ? AND review_id IN (`+placeholders+`)`,
		args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	liked := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		liked[id] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, r := range reviews {
		r.LikedByMe = liked[r.ID]
	}
	return nil
}

// ToggleReviewLike flips a user's like on a review and recounts likes_count
// in the same transaction. Returns the resulting liked state and like count.
// Returns ErrNotFound if the review does not exist.
func (s *Store) ToggleReviewLike(ctx context.Context, reviewID, userID string) (liked bool, likes int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM reviews WHERE id = ?`, reviewID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, 0, ErrNotFound
	}
	if err != nil {
		return false, 0, err
	}

	var hasLike int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM review_likes WHERE review_id = ? AND user_id = ?`,
		reviewID, userID).Scan(&hasLike)
	if err != nil {
		return false, 0, err
	}

	if hasLike > 0 {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM review_likes WHERE review_id = ? AND user_id = ?`, reviewID, userID)
	} else {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO review_likes (review_id, user_id, created_at) VALUES (?, ?, ?)`,
			reviewID, userID, formatTime(time.Now()))
		liked = true
	}
	if err != nil {
		return false, 0, err
	}

	// Recount rather than increment so the counter can never drift.
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM review_likes WHERE review_id = ?`, reviewID).Scan(&likes)
	if err != nil {
		return false, 0, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE reviews SET likes_count = ? WHERE id = ?`, likes, reviewID)
	if err != nil {
		return false, 0, err
	}

	if err := tx.Commit(); err != nil {
		return false, 0, err
	}
	return liked, likes, nil
}
