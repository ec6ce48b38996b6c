package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/readloopapp/readloop-server/internal/domain"
)

// makeShelfEntry creates a shelf entry the way the service layer does,
// through the domain constructor so timestamp rules apply.
func makeShelfEntry(userID, bookID string, shelf domain.Shelf) *domain.UserBook {
	return domain.NewUserBook(userID, bookID, shelf)
}

func TestUpsertAndGetUserBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "usr-1")
	mustCreateBook(t, s, "book-1")

	entry := makeShelfEntry("usr-1", "book-1", domain.ShelfWantToRead)
	if err := s.UpsertUserBook(ctx, entry); err != nil {
		t.Fatalf("UpsertUserBook: %v", err)
	}

	got, err := s.GetUserBook(ctx, "usr-1", "book-1")
	if err != nil {
		t.Fatalf("GetUserBook: %v", err)
	}
	if got.Shelf != domain.ShelfWantToRead {
		t.Errorf("Shelf: got %q, want %q", got.Shelf, domain.ShelfWantToRead)
	}
	if got.StartedAt != nil {
		t.Error("StartedAt: expected nil on want_to_read")
	}
	if got.FinishedAt != nil {
		t.Error("FinishedAt: expected nil on want_to_read")
	}
}

func TestUpsertUserBook_MovePreservesTimestamps(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "usr-1")
	mustCreateBook(t, s, "book-1")

	// want_to_read -> currently_reading -> read -> want_to_read.
	entry := makeShelfEntry("usr-1", "book-1", domain.ShelfWantToRead)
	if err := s.UpsertUserBook(ctx, entry); err != nil {
		t.Fatalf("UpsertUserBook: %v", err)
	}

	entry.MoveTo(domain.ShelfCurrentlyReading)
	if err := s.UpsertUserBook(ctx, entry); err != nil {
		t.Fatalf("UpsertUserBook to currently_reading: %v", err)
	}
	startedAt := entry.StartedAt

	entry.MoveTo(domain.ShelfRead)
	if err := s.UpsertUserBook(ctx, entry); err != nil {
		t.Fatalf("UpsertUserBook to read: %v", err)
	}

	entry.MoveTo(domain.ShelfWantToRead)
	if err := s.UpsertUserBook(ctx, entry); err != nil {
		t.Fatalf("UpsertUserBook back to want_to_read: %v", err)
	}

	got, err := s.GetUserBook(ctx, "usr-1", "book-1")
	if err != nil {
		t.Fatalf("GetUserBook: %v", err)
	}
	if got.Shelf != domain.ShelfWantToRead {
		t.Errorf("Shelf: got %q, want %q", got.Shelf, domain.ShelfWantToRead)
	}
	if got.StartedAt == nil {
		t.Fatal("StartedAt: expected preserved after reshelving")
	}
	if got.StartedAt.Unix() != startedAt.Unix() {
		t.Errorf("StartedAt: got %v, want %v", got.StartedAt, startedAt)
	}
	if got.FinishedAt == nil {
		t.Error("FinishedAt: expected preserved after reshelving")
	}
}

func TestDeleteUserBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "usr-1")
	mustCreateBook(t, s, "book-1")

	if err := s.UpsertUserBook(ctx, makeShelfEntry("usr-1", "book-1", domain.ShelfRead)); err != nil {
		t.Fatalf("UpsertUserBook: %v", err)
	}
	if err := s.DeleteUserBook(ctx, "usr-1", "book-1"); err != nil {
		t.Fatalf("DeleteUserBook: %v", err)
	}
	_, err := s.GetUserBook(ctx, "usr-1", "book-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Removing an unshelved book reports not found.
	if err := s.DeleteUserBook(ctx, "usr-1", "book-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestListUserBooks_ByShelf(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "usr-1")
	for _, id := range []string{"book-1", "book-2", "book-3"} {
		mustCreateBook(t, s, id)
	}

	shelves := map[string]domain.Shelf{
		"book-1": domain.ShelfWantToRead,
		"book-2": domain.ShelfCurrentlyReading,
		"book-3": domain.ShelfRead,
	}
	for bookID, shelf := range shelves {
		if err := s.UpsertUserBook(ctx, makeShelfEntry("usr-1", bookID, shelf)); err != nil {
			t.Fatalf("UpsertUserBook(%s): %v", bookID, err)
		}
	}

	all, err := s.ListUserBooks(ctx, "usr-1", "", 0, 0)
	if err != nil {
		t.Fatalf("ListUserBooks: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListUserBooks: got %d entries, want 3", len(all))
	}

	reading, err := s.ListUserBooks(ctx, "usr-1", domain.ShelfCurrentlyReading, 0, 0)
	if err != nil {
		t.Fatalf("ListUserBooks(currently_reading): %v", err)
	}
	if len(reading) != 1 || reading[0].BookID != "book-2" {
		t.Errorf("ListUserBooks(currently_reading): got %v, want [book-2]", reading)
	}
}

func TestCountUserShelves(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "usr-1")
	for i, shelf := range []domain.Shelf{
		domain.ShelfWantToRead, domain.ShelfWantToRead,
		domain.ShelfCurrentlyReading,
		domain.ShelfRead, domain.ShelfRead, domain.ShelfRead,
	} {
		bookID := "book-" + string(rune('a'+i))
		mustCreateBook(t, s, bookID)
		if err := s.UpsertUserBook(ctx, makeShelfEntry("usr-1", bookID, shelf)); err != nil {
			t.Fatalf("UpsertUserBook(%s): %v", bookID, err)
		}
	}

	counts, err := s.CountUserShelves(ctx, "usr-1")
	if err != nil {
		t.Fatalf("CountUserShelves: %v", err)
	}
	if counts.WantToRead != 2 {
		t.Errorf("WantToRead: got %d, want 2", counts.WantToRead)
	}
	if counts.CurrentlyReading != 1 {
		t.Errorf("CurrentlyReading: got %d, want 1", counts.CurrentlyReading)
	}
	if counts.Read != 3 {
		t.Errorf("Read: got %d, want 3", counts.Read)
	}
	if counts.Total() != 6 {
		t.Errorf("Total: got %d, want 6", counts.Total())
	}
}

func TestCountFinishedInYear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "usr-1")
	mustCreateBook(t, s, "book-1")
	mustCreateBook(t, s, "book-2")

	// One book finished this year, one finished in 2001.
	thisYear := makeShelfEntry("usr-1", "book-1", domain.ShelfRead)
	if err := s.UpsertUserBook(ctx, thisYear); err != nil {
		t.Fatalf("UpsertUserBook: %v", err)
	}

	old := makeShelfEntry("usr-1", "book-2", domain.ShelfRead)
	past := time.Date(2001, 6, 1, 12, 0, 0, 0, time.UTC)
	old.FinishedAt = &past
	if err := s.UpsertUserBook(ctx, old); err != nil {
		t.Fatalf("UpsertUserBook: %v", err)
	}

	count, err := s.CountFinishedInYear(ctx, "usr-1", time.Now().UTC().Year())
	if err != nil {
		t.Fatalf("CountFinishedInYear: %v", err)
	}
	if count != 1 {
		t.Errorf("CountFinishedInYear(current): got %d, want 1", count)
	}

	count, err = s.CountFinishedInYear(ctx, "usr-1", 2001)
	if err != nil {
		t.Fatalf("CountFinishedInYear(2001): %v", err)
	}
	if count != 1 {
		t.Errorf("CountFinishedInYear(2001): got %d, want 1", count)
	}

	count, err = s.CountFinishedInYear(ctx, "usr-1", 1999)
	if err != nil {
		t.Fatalf("CountFinishedInYear(1999): %v", err)
	}
	if count != 0 {
		t.Errorf("CountFinishedInYear(1999): got %d, want 0", count)
	}
}
