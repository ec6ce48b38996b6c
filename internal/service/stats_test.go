package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readloopapp/readloop-server/internal/domain"
	domainerrors "github.com/readloopapp/readloop-server/internal/errors"
)

func TestStatsService_GetUserStats(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	ts.seedUser(t, "usr-1", "alice")
	ts.seedUser(t, "usr-2", "bob")
	ts.seedBook(t, "book-1", "Dune")
	ts.seedBook(t, "book-2", "Hyperion")

	_, err := ts.shelves.SetShelf(ctx, "usr-1", "book-1", domain.ShelfRead)
	require.NoError(t, err)
	_, err = ts.shelves.SetShelf(ctx, "usr-1", "book-2", domain.ShelfCurrentlyReading)
	require.NoError(t, err)

	_, err = ts.reviews.UpsertReview(ctx, "usr-1", "book-1", 5, "", false)
	require.NoError(t, err)
	_, err = ts.reviews.UpsertReview(ctx, "usr-1", "book-2", 4, "", false)
	require.NoError(t, err)

	require.NoError(t, ts.social.Follow(ctx, "usr-2", "usr-1"))

	stats, err := ts.stats.GetUserStats(ctx, "usr-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Shelves.Read)
	assert.Equal(t, 1, stats.Shelves.CurrentlyReading)
	assert.Equal(t, 2, stats.ReviewsCount)
	assert.Equal(t, 4.5, stats.AverageRatingGiven)
	assert.Equal(t, 1, stats.FollowersCount)
	assert.Equal(t, 0, stats.FollowingCount)
	assert.Nil(t, stats.Goal)
}

func TestStatsService_GetUserStats_AttachesGoal(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	ts.seedUser(t, "usr-1", "alice")
	ts.seedBook(t, "book-1", "Dune")

	year := time.Now().Year()
	_, err := ts.goals.SetGoal(ctx, "usr-1", year, 4)
	require.NoError(t, err)
	_, err = ts.shelves.SetShelf(ctx, "usr-1", "book-1", domain.ShelfRead)
	require.NoError(t, err)

	stats, err := ts.stats.GetUserStats(ctx, "usr-1")
	require.NoError(t, err)
	require.NotNil(t, stats.Goal)
	assert.Equal(t, year, stats.Goal.Year)
	assert.Equal(t, 1, stats.Goal.FinishedBooks)
	assert.InDelta(t, 25.0, stats.Goal.Percent, 0.01)
}

func TestStatsService_GetUserStats_UnknownUser(t *testing.T) {
	ts := newTestServices(t)

	_, err := ts.stats.GetUserStats(context.Background(), "usr-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestStatsService_ListUsersWithStats(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	ts.seedUser(t, "usr-1", "alice")
	ts.seedUser(t, "usr-2", "bob")
	ts.seedBook(t, "book-1", "Dune")
	ts.seedBook(t, "book-2", "Hyperion")

	for _, id := range []string{"book-1", "book-2"} {
		_, err := ts.shelves.SetShelf(ctx, "usr-1", id, domain.ShelfRead)
		require.NoError(t, err)
	}
	require.NoError(t, ts.social.Follow(ctx, "usr-2", "usr-1"))

	users, err := ts.stats.ListUsersWithStats(ctx, "usr-2", 10, 0)
	require.NoError(t, err)
	require.Len(t, users, 2)

	// Ordered by books read; alice leads.
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, 2, users[0].BooksRead)
	assert.Equal(t, 1, users[0].FollowersCount)
	assert.True(t, users[0].IsFollowedByMe)
	assert.False(t, users[1].IsFollowedByMe)
}
