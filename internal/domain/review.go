package domain

import "time"

// Rating bounds for reviews. Whole stars only.
const (
	MinRating = 1
	MaxRating = 5

	// MaxReviewBodyLength caps review text to keep payloads and
	// feed rendering sane.
	MaxReviewBodyLength = 20_000
)

// Review represents a user's star rating and optional text for a book.
// A user has at most one review per book; writing again overwrites it.
type Review struct {
	Entity
	UserID     string `json:"user_id"`
	BookID     string `json:"book_id"`
	Rating     int    `json:"rating"` // 1-5 whole stars
	Body       string `json:"body,omitempty"`
	Spoiler    bool   `json:"spoiler,omitempty"` // Clients hide the body behind a warning
	LikesCount int    `json:"likes_count"`

	// Denormalized for feed and book-page rendering without joins.
	UserDisplayName string `json:"user_display_name,omitempty"`
	BookTitle       string `json:"book_title,omitempty"`

	// LikedByMe is set per-viewer when serving lists, never stored.
	LikedByMe bool `json:"liked_by_me,omitempty"`
}

// RatingValid reports whether a rating is a whole star between 1 and 5.
func RatingValid(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

// ReviewLike represents one user's like on a review.
// The (review, user) pair is unique; liking again toggles the like off.
type ReviewLike struct {
	ReviewID  string    `json:"review_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
