// Package sse implements Server-Sent Events for real-time feed and catalogue updates.
package sse

import (
	"time"

	"github.com/readloopapp/readloop-server/internal/domain"
)

// EventType represents the type of SSE event.
type EventType string

const (
	// EventActivityCreated announces a new activity for feed updates.
	// Emitted by the store when an activity row is written; the payload
	// is the activity itself with its denormalized user and book fields.
	EventActivityCreated EventType = "activity.created"

	// EventBookRatingChanged announces new rating aggregates for a book.
	// Emitted by the store after a review transaction commits, carrying
	// book_id, average_rating, and ratings_count.
	EventBookRatingChanged EventType = "book.rating_changed"

	// EventBookCreated represents a book being added to the catalogue.
	EventBookCreated EventType = "book.created"
	// EventBookUpdated represents a catalogue book update.
	EventBookUpdated EventType = "book.updated"
	// EventBookDeleted represents a book removal.
	EventBookDeleted EventType = "book.deleted"

	// EventShelfUpdated represents a change to the recipient's own shelves,
	// so a user's other open tabs stay in sync.
	EventShelfUpdated EventType = "shelf.updated"

	// EventReviewLiked represents a like count change on a review.
	EventReviewLiked EventType = "review.liked"

	// EventFollowerAdded tells a user someone started following them.
	EventFollowerAdded EventType = "follower.added"

	// EventGoalProgress tells a user their yearly goal progress changed.
	EventGoalProgress EventType = "goal.progress"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// When set, the event is only delivered to the matching user's
	// connections. Empty string broadcasts to everyone.
	UserID string `json:"-"`
}

// BookEventData is the data payload for catalogue book events.
type BookEventData struct {
	Book *domain.Book `json:"book"`
}

// BookDeletedEventData is the data payload for book delete events.
type BookDeletedEventData struct {
	DeletedAt time.Time `json:"deleted_at"`
	BookID    string    `json:"book_id"`
}

// ShelfEventData is the data payload for shelf.updated events.
type ShelfEventData struct {
	Entry *domain.UserBook `json:"entry"`
}

// ReviewLikedEventData is the data payload for review.liked events.
type ReviewLikedEventData struct {
	ReviewID   string `json:"review_id"`
	LikesCount int    `json:"likes_count"`
}

// FollowerEventData is the data payload for follower.added events.
type FollowerEventData struct {
	FollowerID          string `json:"follower_id"`
	FollowerDisplayName string `json:"follower_display_name"`
}

// GoalProgressEventData is the data payload for goal.progress events.
type GoalProgressEventData struct {
	Year          int     `json:"year"`
	TargetBooks   int     `json:"target_books"`
	FinishedBooks int     `json:"finished_books"`
	Percent       float64 `json:"percent"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewBookCreatedEvent creates a book.created event.
func NewBookCreatedEvent(book *domain.Book) Event {
	return Event{
		Type:      EventBookCreated,
		Data:      BookEventData{Book: book},
		Timestamp: time.Now(),
	}
}

// NewBookUpdatedEvent creates a book.updated event.
func NewBookUpdatedEvent(book *domain.Book) Event {
	return Event{
		Type:      EventBookUpdated,
		Data:      BookEventData{Book: book},
		Timestamp: time.Now(),
	}
}

// NewBookDeletedEvent creates a book.deleted event.
func NewBookDeletedEvent(bookID string, deletedAt time.Time) Event {
	return Event{
		Type: EventBookDeleted,
		Data: BookDeletedEventData{
			BookID:    bookID,
			DeletedAt: deletedAt,
		},
		Timestamp: time.Now(),
	}
}

// NewShelfUpdatedEvent creates a shelf.updated event targeted at the
// shelf owner.
func NewShelfUpdatedEvent(entry *domain.UserBook) Event {
	return Event{
		Type:      EventShelfUpdated,
		Data:      ShelfEventData{Entry: entry},
		Timestamp: time.Now(),
		UserID:    entry.UserID,
	}
}

// NewReviewLikedEvent creates a review.liked event.
func NewReviewLikedEvent(reviewID string, likes int) Event {
	return Event{
		Type: EventReviewLiked,
		Data: ReviewLikedEventData{
			ReviewID:   reviewID,
			LikesCount: likes,
		},
		Timestamp: time.Now(),
	}
}

// NewFollowerAddedEvent creates a follower.added event targeted at the
// followed user.
func NewFollowerAddedEvent(followeeID, followerID, followerName string) Event {
	return Event{
		Type: EventFollowerAdded,
		Data: FollowerEventData{
			FollowerID:          followerID,
			FollowerDisplayName: followerName,
		},
		Timestamp: time.Now(),
		UserID:    followeeID,
	}
}

// NewGoalProgressEvent creates a goal.progress event targeted at the goal owner.
func NewGoalProgressEvent(userID string, progress domain.GoalProgress) Event {
	return Event{
		Type: EventGoalProgress,
		Data: GoalProgressEventData{
			Year:          progress.Year,
			TargetBooks:   progress.TargetBooks,
			FinishedBooks: progress.FinishedBooks,
			Percent:       progress.Percent,
		},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}
