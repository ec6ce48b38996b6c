package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readloopapp/readloop-server/internal/domain"
	"github.com/readloopapp/readloop-server/internal/store"
)

func TestShelfService_SetShelf_Lifecycle(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	ts.seedUser(t, "usr-1", "alice")
	ts.seedBook(t, "book-1", "The Hobbit")

	// Backlog first: no reading timestamps.
	entry, err := ts.shelves.SetShelf(ctx, "usr-1", "book-1", domain.ShelfWantToRead)
	require.NoError(t, err)
	assert.Equal(t, domain.ShelfWantToRead, entry.Shelf)
	assert.Nil(t, entry.StartedAt)
	assert.Nil(t, entry.FinishedAt)

	// Starting stamps StartedAt.
	entry, err = ts.shelves.SetShelf(ctx, "usr-1", "book-1", domain.ShelfCurrentlyReading)
	require.NoError(t, err)
	require.NotNil(t, entry.StartedAt)
	assert.Nil(t, entry.FinishedAt)
	startedAt := *entry.StartedAt

	// Finishing stamps FinishedAt and keeps StartedAt.
	entry, err = ts.shelves.SetShelf(ctx, "usr-1", "book-1", domain.ShelfRead)
	require.NoError(t, err)
	require.NotNil(t, entry.FinishedAt)
	require.NotNil(t, entry.StartedAt)
	assert.Equal(t, startedAt.Unix(), entry.StartedAt.Unix())

	// Moving back to the backlog keeps both timestamps.
	entry, err = ts.shelves.SetShelf(ctx, "usr-1", "book-1", domain.ShelfWantToRead)
	require.NoError(t, err)
	assert.NotNil(t, entry.StartedAt)
	assert.NotNil(t, entry.FinishedAt)
}

func TestShelfService_SetShelf_SameShelfIsNoop(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	ts.seedUser(t, "usr-1", "alice")
	ts.seedBook(t, "book-1", "Dune")

	first, err := ts.shelves.SetShelf(ctx, "usr-1", "book-1", domain.ShelfCurrentlyReading)
	require.NoError(t, err)

	second, err := ts.shelves.SetShelf(ctx, "usr-1", "book-1", domain.ShelfCurrentlyReading)
	require.NoError(t, err)
	assert.Equal(t, first.UpdatedAt.Unix(), second.UpdatedAt.Unix())

	// Only the one started_book activity exists.
	feed, err := ts.activity.Feed(ctx, "usr-1", store.PaginationParams{})
	require.NoError(t, err)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, domain.ActivityStartedBook, feed.Items[0].Type)
}

func TestShelfService_SetShelf_InvalidInput(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	ts.seedUser(t, "usr-1", "alice")
	ts.seedBook(t, "book-1", "Dune")

	_, err := ts.shelves.SetShelf(ctx, "usr-1", "book-1", "favorites")
	assert.Error(t, err)

	_, err = ts.shelves.SetShelf(ctx, "usr-1", "book-missing", domain.ShelfRead)
	assert.Error(t, err)
}

func TestShelfService_SetShelf_RereadActivity(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	ts.seedUser(t, "usr-1", "alice")
	ts.seedBook(t, "book-1", "Dune")

	for _, shelf := range []domain.Shelf{
		domain.ShelfCurrentlyReading,
		domain.ShelfRead,
		domain.ShelfCurrentlyReading,
	} {
		_, err := ts.shelves.SetShelf(ctx, "usr-1", "book-1", shelf)
		require.NoError(t, err)
	}

	feed, err := ts.activity.Feed(ctx, "usr-1", store.PaginationParams{})
	require.NoError(t, err)
	require.Len(t, feed.Items, 3)

	// Newest first: the second start is flagged as a re-read.
	assert.Equal(t, domain.ActivityStartedBook, feed.Items[0].Type)
	assert.True(t, feed.Items[0].IsReread)
	assert.Equal(t, domain.ActivityFinishedBook, feed.Items[1].Type)
	assert.Equal(t, domain.ActivityStartedBook, feed.Items[2].Type)
	assert.False(t, feed.Items[2].IsReread)
}

func TestShelfService_RemoveFromShelf(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	ts.seedUser(t, "usr-1", "alice")
	ts.seedBook(t, "book-1", "Dune")

	_, err := ts.shelves.SetShelf(ctx, "usr-1", "book-1", domain.ShelfWantToRead)
	require.NoError(t, err)

	require.NoError(t, ts.shelves.RemoveFromShelf(ctx, "usr-1", "book-1"))

	entry, err := ts.shelves.GetShelfEntry(ctx, "usr-1", "book-1")
	require.NoError(t, err)
	assert.Nil(t, entry)

	// Removing again stays silent.
	require.NoError(t, ts.shelves.RemoveFromShelf(ctx, "usr-1", "book-1"))
}

func TestShelfService_ListShelf(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	ts.seedUser(t, "usr-1", "alice")
	ts.seedBook(t, "book-1", "Dune")
	ts.seedBook(t, "book-2", "Hyperion")
	ts.seedBook(t, "book-3", "Solaris")

	for _, id := range []string{"book-1", "book-2"} {
		_, err := ts.shelves.SetShelf(ctx, "usr-1", id, domain.ShelfRead)
		require.NoError(t, err)
	}
	_, err := ts.shelves.SetShelf(ctx, "usr-1", "book-3", domain.ShelfWantToRead)
	require.NoError(t, err)

	entries, err := ts.shelves.ListShelf(ctx, "usr-1", domain.ShelfRead, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.NotNil(t, e.Book)
		assert.NotNil(t, e.FinishedAt)
	}

	counts, err := ts.shelves.ShelfCounts(ctx, "usr-1")
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Read)
	assert.Equal(t, 1, counts.WantToRead)
	assert.Equal(t, 0, counts.CurrentlyReading)
}

func TestShelfService_FinishTriggersGoal(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	ts.seedUser(t, "usr-1", "alice")
	ts.seedBook(t, "book-1", "Dune")
	ts.seedBook(t, "book-2", "Hyperion")

	year := time.Now().Year()
	_, err := ts.goals.SetGoal(ctx, "usr-1", year, 2)
	require.NoError(t, err)

	_, err = ts.shelves.SetShelf(ctx, "usr-1", "book-1", domain.ShelfRead)
	require.NoError(t, err)

	progress, err := ts.goals.GetGoalProgress(ctx, "usr-1", year)
	require.NoError(t, err)
	require.NotNil(t, progress)
	assert.Equal(t, 1, progress.FinishedBooks)
	assert.InDelta(t, 50.0, progress.Percent, 0.01)

	// The second finish crosses the line and records goal_reached.
	_, err = ts.shelves.SetShelf(ctx, "usr-1", "book-2", domain.ShelfRead)
	require.NoError(t, err)

	feed, err := ts.activity.Feed(ctx, "usr-1", store.PaginationParams{})
	require.NoError(t, err)

	var goalActivities int
	for _, a := range feed.Items {
		if a.Type == domain.ActivityGoalReached {
			goalActivities++
			assert.Equal(t, year, a.GoalYear)
			assert.Equal(t, 2, a.GoalTarget)
		}
	}
	assert.Equal(t, 1, goalActivities)
}
