package domain

import "time"

// Shelf represents one of the three exclusive reading shelves.
// A book sits on at most one shelf per user.
type Shelf string

const (
	// ShelfWantToRead marks a book the user intends to read.
	ShelfWantToRead Shelf = "want_to_read"
	// ShelfCurrentlyReading marks a book the user is actively reading.
	ShelfCurrentlyReading Shelf = "currently_reading"
	// ShelfRead marks a book the user has finished.
	ShelfRead Shelf = "read"
)

// Valid returns true if the shelf is a recognized value.
func (s Shelf) Valid() bool {
	switch s {
	case ShelfWantToRead, ShelfCurrentlyReading, ShelfRead:
		return true
	default:
		return false
	}
}

// UserBook represents a book's placement on a user's shelf, with reading timestamps.
type UserBook struct {
	UserID     string     `json:"user_id"`
	BookID     string     `json:"book_id"`
	Shelf      Shelf      `json:"shelf"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewUserBook creates a shelf entry and applies the timestamp rules for
// the initial shelf.
func NewUserBook(userID, bookID string, shelf Shelf) *UserBook {
	now := time.Now()
	ub := &UserBook{
		UserID:    userID,
		BookID:    bookID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	ub.MoveTo(shelf)
	return ub
}

// MoveTo places the entry on a shelf and applies the reading-timestamp rules:
// StartedAt is set the first time the book reaches currently_reading,
// FinishedAt the first time it reaches read. Timestamps are additive - moving
// a book back off a shelf never clears them, so reading history survives
// reshelving. Any shelf can move to any other shelf.
func (ub *UserBook) MoveTo(shelf Shelf) {
	now := time.Now()
	ub.Shelf = shelf
	ub.UpdatedAt = now

	switch shelf {
	case ShelfCurrentlyReading:
		if ub.StartedAt == nil {
			ub.StartedAt = &now
		}
	case ShelfRead:
		if ub.FinishedAt == nil {
			ub.FinishedAt = &now
		}
	case ShelfWantToRead:
		// No timestamps on the backlog shelf.
	}
}

// IsReread reports whether moving to currently_reading is a re-read,
// i.e. the book was already finished once.
func (ub *UserBook) IsReread() bool {
	return ub.FinishedAt != nil
}
