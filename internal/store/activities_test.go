package store

import (
	"context"
	"testing"
	"time"

	"github.com/readloopapp/readloop-server/internal/domain"
)

func makeTestActivity(id, userID string, actType domain.ActivityType, createdAt time.Time) *domain.Activity {
	return &domain.Activity{
		ID:              id,
		UserID:          userID,
		Type:            actType,
		CreatedAt:       createdAt,
		UserDisplayName: "Test User",
		BookID:          "book-1",
		BookTitle:       "Book book-1",
		BookAuthorName:  "Test Author",
	}
}

func TestCreateAndListActivities(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "usr-1")
	mustCreateUser(t, s, "usr-2")

	base := time.Now().Add(-time.Hour)
	acts := []*domain.Activity{
		makeTestActivity("act-1", "usr-1", domain.ActivityShelvedBook, base),
		makeTestActivity("act-2", "usr-1", domain.ActivityStartedBook, base.Add(time.Minute)),
		makeTestActivity("act-3", "usr-2", domain.ActivityFinishedBook, base.Add(2*time.Minute)),
	}
	for _, a := range acts {
		if err := s.CreateActivity(ctx, a); err != nil {
			t.Fatalf("CreateActivity(%s): %v", a.ID, err)
		}
	}

	// Feed over both actors, newest first.
	feed, err := s.ListActivities(ctx, ActivityFeedOptions{UserIDs: []string{"usr-1", "usr-2"}})
	if err != nil {
		t.Fatalf("ListActivities: %v", err)
	}
	if len(feed) != 3 {
		t.Fatalf("feed length: got %d, want 3", len(feed))
	}
	if feed[0].ID != "act-3" || feed[1].ID != "act-2" || feed[2].ID != "act-1" {
		t.Errorf("feed order: got [%s %s %s], want [act-3 act-2 act-1]",
			feed[0].ID, feed[1].ID, feed[2].ID)
	}

	// Filtering to one actor drops the other's events.
	feed, err = s.ListActivities(ctx, ActivityFeedOptions{UserIDs: []string{"usr-2"}})
	if err != nil {
		t.Fatalf("ListActivities: %v", err)
	}
	if len(feed) != 1 || feed[0].ID != "act-3" {
		t.Errorf("filtered feed: got %v, want [act-3]", feed)
	}

	// Denormalized fields round-trip.
	if feed[0].Type != domain.ActivityFinishedBook {
		t.Errorf("Type: got %q, want %q", feed[0].Type, domain.ActivityFinishedBook)
	}
	if feed[0].BookTitle != "Book book-1" {
		t.Errorf("BookTitle: got %q", feed[0].BookTitle)
	}
}

func TestListActivities_CursorPaging(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "usr-1")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		a := makeTestActivity(
			"act-"+string(rune('a'+i)), "usr-1",
			domain.ActivityShelvedBook, base.Add(time.Duration(i)*time.Minute))
		if err := s.CreateActivity(ctx, a); err != nil {
			t.Fatalf("CreateActivity: %v", err)
		}
	}

	// First page of two.
	page1, err := s.ListActivities(ctx, ActivityFeedOptions{
		UserIDs: []string{"usr-1"},
		Limit:   2,
	})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(page1) != 2 {
		t.Fatalf("first page length: got %d, want 2", len(page1))
	}

	// Second page resumes strictly after the last row of the first.
	last := page1[len(page1)-1]
	page2, err := s.ListActivities(ctx, ActivityFeedOptions{
		UserIDs:  []string{"usr-1"},
		Before:   last.CreatedAt,
		BeforeID: last.ID,
		Limit:    2,
	})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(page2) != 2 {
		t.Fatalf("second page length: got %d, want 2", len(page2))
	}
	for _, a := range page2 {
		if !a.CreatedAt.Before(last.CreatedAt) {
			t.Errorf("activity %s: created %v, expected before %v", a.ID, a.CreatedAt, last.CreatedAt)
		}
	}

	// No overlap between pages.
	seen := map[string]bool{}
	for _, a := range append(page1, page2...) {
		if seen[a.ID] {
			t.Errorf("activity %s returned twice", a.ID)
		}
		seen[a.ID] = true
	}
}

func TestListActivities_EmptyActors(t *testing.T) {
	s := newTestStore(t)

	feed, err := s.ListActivities(context.Background(), ActivityFeedOptions{})
	if err != nil {
		t.Fatalf("ListActivities: %v", err)
	}
	if feed != nil {
		t.Errorf("expected nil feed for no actors, got %v", feed)
	}
}

func TestFeedCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	cursor := EncodeFeedCursor(at, "act-42")
	if cursor == "" {
		t.Fatal("expected non-empty cursor")
	}

	gotAt, gotID, err := DecodeFeedCursor(cursor)
	if err != nil {
		t.Fatalf("DecodeFeedCursor: %v", err)
	}
	if !gotAt.Equal(at) {
		t.Errorf("time: got %v, want %v", gotAt, at)
	}
	if gotID != "act-42" {
		t.Errorf("id: got %q, want %q", gotID, "act-42")
	}

	// Empty cursor means first page, not an error.
	gotAt, gotID, err = DecodeFeedCursor("")
	if err != nil || !gotAt.IsZero() || gotID != "" {
		t.Errorf("empty cursor: got (%v, %q, %v), want zero values", gotAt, gotID, err)
	}

	// Garbage is rejected.
	if _, _, err := DecodeFeedCursor("not-base64!"); err == nil {
		t.Error("expected error for malformed cursor")
	}
}
