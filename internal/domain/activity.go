package domain

import "time"

// ActivityType represents the type of social activity.
type ActivityType string

const (
	// ActivityShelvedBook is recorded when a user adds a book to want_to_read.
	ActivityShelvedBook ActivityType = "shelved_book"

	// ActivityStartedBook is recorded when a user moves a book to currently_reading.
	// IsReread distinguishes first read from re-reads after completion.
	ActivityStartedBook ActivityType = "started_book"

	// ActivityFinishedBook is recorded when a user moves a book to read.
	ActivityFinishedBook ActivityType = "finished_book"

	// ActivityReviewedBook is recorded when a user posts or updates a review.
	ActivityReviewedBook ActivityType = "reviewed_book"

	// ActivityFollowedUser is recorded when a user follows another user.
	ActivityFollowedUser ActivityType = "followed_user"

	// ActivityGoalReached is recorded when a finished book completes a yearly goal.
	ActivityGoalReached ActivityType = "goal_reached"
)

// Activity represents a social activity event.
// Activities are immutable once created.
// User and book info is denormalized for fast feed rendering without joins.
type Activity struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	Type      ActivityType `json:"type"`
	CreatedAt time.Time    `json:"created_at"`

	// Denormalized user info for immediate rendering
	UserDisplayName string `json:"user_display_name"`
	UserAvatarType  string `json:"user_avatar_type,omitempty"`  // "auto" or "image"
	UserAvatarValue string `json:"user_avatar_value,omitempty"` // Image path for "image" type

	// Book activities (shelved_book, started_book, finished_book, reviewed_book)
	BookID         string `json:"book_id,omitempty"`
	BookTitle      string `json:"book_title,omitempty"`
	BookAuthorName string `json:"book_author_name,omitempty"`
	BookCoverPath  string `json:"book_cover_path,omitempty"`
	IsReread       bool   `json:"is_reread,omitempty"`

	// Review activities
	Rating int `json:"rating,omitempty"`

	// Follow activities
	TargetUserID          string `json:"target_user_id,omitempty"`
	TargetUserDisplayName string `json:"target_user_display_name,omitempty"`

	// Goal activities
	GoalYear   int `json:"goal_year,omitempty"`
	GoalTarget int `json:"goal_target,omitempty"`
}
