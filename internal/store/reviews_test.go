package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/readloopapp/readloop-server/internal/domain"
)

func makeTestReview(id, userID, bookID string, rating int) *domain.Review {
	now := time.Now()
	return &domain.Review{
		Entity: domain.Entity{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID: userID,
		BookID: bookID,
		Rating: rating,
		Body:   "Solid read.",
	}
}

// bookAggregates reads a book's stored rating aggregates directly.
func bookAggregates(t *testing.T, s *Store, bookID string) (avg float64, count int) {
	t.Helper()
	err := s.db.QueryRow(
		`SELECT average_rating, ratings_count FROM books WHERE id = ?`, bookID).Scan(&avg, &count)
	if err != nil {
		t.Fatalf("read aggregates: %v", err)
	}
	return avg, count
}

func TestUpsertReview_UpdatesBookAggregates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "usr-1")
	mustCreateUser(t, s, "usr-2")
	mustCreateBook(t, s, "book-1")

	if err := s.UpsertReview(ctx, makeTestReview("rev-1", "usr-1", "book-1", 5)); err != nil {
		t.Fatalf("UpsertReview rev-1: %v", err)
	}

	avg, count := bookAggregates(t, s, "book-1")
	if avg != 5.0 || count != 1 {
		t.Errorf("after first review: avg=%v count=%d, want 5.0/1", avg, count)
	}

	if err := s.UpsertReview(ctx, makeTestReview("rev-2", "usr-2", "book-1", 3)); err != nil {
		t.Fatalf("UpsertReview rev-2: %v", err)
	}

	// Two reviews, 5 and 3 stars: the average is exactly 4.00.
	avg, count = bookAggregates(t, s, "book-1")
	if avg != 4.0 || count != 2 {
		t.Errorf("after second review: avg=%v count=%d, want 4.0/2", avg, count)
	}
}

func TestUpsertReview_RereviewOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "usr-1")
	mustCreateBook(t, s, "book-1")

	first := makeTestReview("rev-1", "usr-1", "book-1", 4)
	if err := s.UpsertReview(ctx, first); err != nil {
		t.Fatalf("UpsertReview first: %v", err)
	}

	// Re-reviewing the same book overwrites rather than adding a row,
	// and keeps the original review's ID.
	second := makeTestReview("rev-2", "usr-1", "book-1", 2)
	second.Body = "On reflection, not great."
	second.Spoiler = true
	if err := s.UpsertReview(ctx, second); err != nil {
		t.Fatalf("UpsertReview second: %v", err)
	}
	if second.ID != "rev-1" {
		t.Errorf("re-review ID: got %q, want original %q", second.ID, "rev-1")
	}

	avg, count := bookAggregates(t, s, "book-1")
	if avg != 2.0 || count != 1 {
		t.Errorf("after re-review: avg=%v count=%d, want 2.0/1", avg, count)
	}

	got, err := s.GetUserReview(ctx, "usr-1", "book-1")
	if err != nil {
		t.Fatalf("GetUserReview: %v", err)
	}
	if got.Rating != 2 {
		t.Errorf("Rating: got %d, want 2", got.Rating)
	}
	if got.Body != "On reflection, not great." {
		t.Errorf("Body: got %q", got.Body)
	}
	if !got.Spoiler {
		t.Error("Spoiler flag not persisted")
	}
}

func TestDeleteReview_ResetsAggregatesWhenLast(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "usr-1")
	mustCreateBook(t, s, "book-1")

	review := makeTestReview("rev-1", "usr-1", "book-1", 5)
	if err := s.UpsertReview(ctx, review); err != nil {
		t.Fatalf("UpsertReview: %v", err)
	}
	if err := s.DeleteReview(ctx, review.ID); err != nil {
		t.Fatalf("DeleteReview: %v", err)
	}

	// Deleting the only review resets the aggregates to zero.
	avg, count := bookAggregates(t, s, "book-1")
	if avg != 0 || count != 0 {
		t.Errorf("after delete: avg=%v count=%d, want 0/0", avg, count)
	}

	if err := s.DeleteReview(ctx, review.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestDeleteReview_RecomputesRemaining(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "usr-1")
	mustCreateUser(t, s, "usr-2")
	mustCreateUser(t, s, "usr-3")
	mustCreateBook(t, s, "book-1")

	for i, rating := range []int{5, 4, 2} {
		userID := []string{"usr-1", "usr-2", "usr-3"}[i]
		reviewID := []string{"rev-1", "rev-2", "rev-3"}[i]
		if err := s.UpsertReview(ctx, makeTestReview(reviewID, userID, "book-1", rating)); err != nil {
			t.Fatalf("UpsertReview %s: %v", reviewID, err)
		}
	}

	// (5+4+2)/3 rounds to 3.67.
	avg, count := bookAggregates(t, s, "book-1")
	if avg != 3.67 || count != 3 {
		t.Errorf("before delete: avg=%v count=%d, want 3.67/3", avg, count)
	}

	if err := s.DeleteReview(ctx, "rev-3"); err != nil {
		t.Fatalf("DeleteReview: %v", err)
	}

	// (5+4)/2 = 4.5.
	avg, count = bookAggregates(t, s, "book-1")
	if avg != 4.5 || count != 2 {
		t.Errorf("after delete: avg=%v count=%d, want 4.5/2", avg, count)
	}
}

func TestListBookReviews(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "usr-alice")
	mustCreateUser(t, s, "usr-bob")
	book := mustCreateBook(t, s, "book-1")

	if err := s.UpsertReview(ctx, makeTestReview("rev-1", alice.ID, book.ID, 5)); err != nil {
		t.Fatalf("UpsertReview: %v", err)
	}
	if err := s.UpsertReview(ctx, makeTestReview("rev-2", "usr-bob", book.ID, 3)); err != nil {
		t.Fatalf("UpsertReview: %v", err)
	}

	reviews, err := s.ListBookReviews(ctx, book.ID, "", 0, 0)
	if err != nil {
		t.Fatalf("ListBookReviews: %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("ListBookReviews: got %d, want 2", len(reviews))
	}

	// Joined fields come back populated for rendering.
	for _, r := range reviews {
		if r.UserDisplayName == "" {
			t.Errorf("review %s: UserDisplayName empty", r.ID)
		}
		if r.BookTitle != book.Title {
			t.Errorf("review %s: BookTitle got %q, want %q", r.ID, r.BookTitle, book.Title)
		}
		if r.LikedByMe {
			t.Errorf("review %s: LikedByMe set without viewer", r.ID)
		}
	}
}

func TestToggleReviewLike(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "usr-author")
	mustCreateUser(t, s, "usr-liker")
	mustCreateBook(t, s, "book-1")

	review := makeTestReview("rev-1", "usr-author", "book-1", 4)
	if err := s.UpsertReview(ctx, review); err != nil {
		t.Fatalf("UpsertReview: %v", err)
	}

	// First toggle likes.
	liked, likes, err := s.ToggleReviewLike(ctx, review.ID, "usr-liker")
	if err != nil {
		t.Fatalf("ToggleReviewLike: %v", err)
	}
	if !liked || likes != 1 {
		t.Errorf("first toggle: liked=%v likes=%d, want true/1", liked, likes)
	}

	// Second toggle unlikes.
	liked, likes, err = s.ToggleReviewLike(ctx, review.ID, "usr-liker")
	if err != nil {
		t.Fatalf("ToggleReviewLike: %v", err)
	}
	if liked || likes != 0 {
		t.Errorf("second toggle: liked=%v likes=%d, want false/0", liked, likes)
	}

	// Third toggle likes again.
	liked, likes, err = s.ToggleReviewLike(ctx, review.ID, "usr-liker")
	if err != nil {
		t.Fatalf("ToggleReviewLike: %v", err)
	}
	if !liked || likes != 1 {
		t.Errorf("third toggle: liked=%v likes=%d, want true/1", liked, likes)
	}

	// The viewer sees their like on listings.
	reviews, err := s.ListBookReviews(ctx, "book-1", "usr-liker", 0, 0)
	if err != nil {
		t.Fatalf("ListBookReviews: %v", err)
	}
	if len(reviews) != 1 || !reviews[0].LikedByMe {
		t.Error("expected LikedByMe for the liking viewer")
	}
	if reviews[0].LikesCount != 1 {
		t.Errorf("LikesCount: got %d, want 1", reviews[0].LikesCount)
	}
}

func TestToggleReviewLike_ReviewNotFound(t *testing.T) {
	s := newTestStore(t)

	mustCreateUser(t, s, "usr-1")

	_, _, err := s.ToggleReviewLike(context.Background(), "rev-ghost", "usr-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteReview_LikesCascade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "usr-author")
	mustCreateUser(t, s, "usr-liker")
	mustCreateBook(t, s, "book-1")

	review := makeTestReview("rev-1", "usr-author", "book-1", 4)
	if err := s.UpsertReview(ctx, review); err != nil {
		t.Fatalf("UpsertReview: %v", err)
	}
	if _, _, err := s.ToggleReviewLike(ctx, review.ID, "usr-liker"); err != nil {
		t.Fatalf("ToggleReviewLike: %v", err)
	}
	if err := s.DeleteReview(ctx, review.ID); err != nil {
		t.Fatalf("DeleteReview: %v", err)
	}

	var likeRows int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM review_likes`).Scan(&likeRows); err != nil {
		t.Fatalf("count review_likes: %v", err)
	}
	if likeRows != 0 {
		t.Errorf("review_likes rows: got %d, want 0 after review delete", likeRows)
	}
}
