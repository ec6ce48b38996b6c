package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/readloopapp/readloop-server/internal/domain"
	domainerrors "github.com/readloopapp/readloop-server/internal/errors"
	"github.com/readloopapp/readloop-server/internal/sse"
	"github.com/readloopapp/readloop-server/internal/store"
)

// ShelfService manages the three exclusive reading shelves.
type ShelfService struct {
	store      *store.Store
	sseManager *sse.Manager
	logger     *slog.Logger
	activities *ActivityService
	goals      *GoalService
}

// NewShelfService creates a new shelf service.
func NewShelfService(store *store.Store, sseManager *sse.Manager, logger *slog.Logger) *ShelfService {
	return &ShelfService{
		store:      store,
		sseManager: sseManager,
		logger:     logger,
	}
}

// SetActivityRecorder wires the activity service after construction,
// avoiding a circular dependency between the two.
func (s *ShelfService) SetActivityRecorder(activities *ActivityService) {
	s.activities = activities
}

// SetGoalChecker wires the goal service used to detect goal completion
// when a book reaches the read shelf.
func (s *ShelfService) SetGoalChecker(goals *GoalService) {
	s.goals = goals
}

// ShelfEntry pairs a shelf placement with its book for listing responses.
type ShelfEntry struct {
	Book       *domain.Book `json:"book"`
	Shelf      domain.Shelf `json:"shelf"`
	StartedAt  *time.Time   `json:"started_at,omitempty"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// SetShelf places a book on one of the user's shelves, moving it off any
// other shelf. First arrival on currently_reading stamps StartedAt, first
// arrival on read stamps FinishedAt; the timestamps are never cleared.
func (s *ShelfService) SetShelf(ctx context.Context, userID, bookID string, shelf domain.Shelf) (*domain.UserBook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !shelf.Valid() {
		return nil, domainerrors.Validationf("invalid shelf %q", shelf)
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	entry, err := s.store.GetUserBook(ctx, userID, bookID)
	isNew := false
	switch {
	case err == nil:
		if entry.Shelf == shelf {
			// Already there; nothing to move or announce.
			return entry, nil
		}
		entry.MoveTo(shelf)
	case errors.Is(err, store.ErrNotFound):
		entry = domain.NewUserBook(userID, bookID, shelf)
		isNew = true
	default:
		return nil, fmt.Errorf("get shelf entry: %w", err)
	}

	if err := s.store.UpsertUserBook(ctx, entry); err != nil {
		return nil, fmt.Errorf("save shelf entry: %w", err)
	}

	s.logger.Info("book shelved",
		"user_id", userID,
		"book_id", bookID,
		"shelf", shelf,
	)

	s.recordShelfActivity(ctx, userID, book, entry, shelf, isNew)

	if shelf == domain.ShelfRead && s.goals != nil {
		s.goals.checkGoalReached(ctx, userID, entry)
	}

	s.sseManager.Publish(sse.NewShelfUpdatedEvent(entry))

	return entry, nil
}

// recordShelfActivity records the activity matching a shelf move. Activity
// failures are logged, not returned: the shelf write already committed.
func (s *ShelfService) recordShelfActivity(ctx context.Context, userID string, book *domain.Book, entry *domain.UserBook, shelf domain.Shelf, isNew bool) {
	if s.activities == nil {
		return
	}

	var err error
	switch shelf {
	case domain.ShelfWantToRead:
		if !isNew {
			// Moving a book back to the backlog is not feed-worthy.
			return
		}
		err = s.activities.RecordBookShelved(ctx, userID, book)
	case domain.ShelfCurrentlyReading:
		err = s.activities.RecordBookStarted(ctx, userID, book, entry.IsReread())
	case domain.ShelfRead:
		err = s.activities.RecordBookFinished(ctx, userID, book)
	}
	if err != nil {
		s.logger.Error("failed to record shelf activity",
			"error", err,
			"user_id", userID,
			"book_id", book.ID,
			"shelf", shelf,
		)
	}
}

// RemoveFromShelf deletes the user's shelf entry for a book. Removing a
// book that is not shelved is a no-op.
func (s *ShelfService) RemoveFromShelf(ctx context.Context, userID, bookID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.store.DeleteUserBook(ctx, userID, bookID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("remove shelf entry: %w", err)
	}

	s.logger.Info("book unshelved", "user_id", userID, "book_id", bookID)
	return nil
}

// GetShelfEntry returns the user's placement for one book, or nil when
// the book is not on any shelf.
func (s *ShelfService) GetShelfEntry(ctx context.Context, userID, bookID string) (*domain.UserBook, error) {
	entry, err := s.store.GetUserBook(ctx, userID, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shelf entry: %w", err)
	}
	return entry, nil
}

// ListShelf returns the books on one of a user's shelves with their
// reading timestamps, most recently updated first.
func (s *ShelfService) ListShelf(ctx context.Context, userID string, shelf domain.Shelf, limit, offset int) ([]*ShelfEntry, error) {
	if !shelf.Valid() {
		return nil, domainerrors.Validationf("invalid shelf %q", shelf)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	placements, err := s.store.ListUserBooks(ctx, userID, shelf, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list shelf: %w", err)
	}
	if len(placements) == 0 {
		return []*ShelfEntry{}, nil
	}

	ids := make([]string, len(placements))
	for i, p := range placements {
		ids[i] = p.BookID
	}
	books, err := s.store.GetBooksByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load shelf books: %w", err)
	}
	byID := make(map[string]*domain.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}

	entries := make([]*ShelfEntry, 0, len(placements))
	for _, p := range placements {
		book, ok := byID[p.BookID]
		if !ok {
			// Book deleted between queries; skip the orphan.
			continue
		}
		entries = append(entries, &ShelfEntry{
			Book:       book,
			Shelf:      p.Shelf,
			StartedAt:  p.StartedAt,
			FinishedAt: p.FinishedAt,
			UpdatedAt:  p.UpdatedAt,
		})
	}
	return entries, nil
}

// ShelfCounts returns how many books sit on each of a user's shelves.
func (s *ShelfService) ShelfCounts(ctx context.Context, userID string) (domain.ShelfCounts, error) {
	counts, err := s.store.CountUserShelves(ctx, userID)
	if err != nil {
		return domain.ShelfCounts{}, fmt.Errorf("count shelves: %w", err)
	}
	return counts, nil
}
