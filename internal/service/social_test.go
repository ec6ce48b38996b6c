package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readloopapp/readloop-server/internal/domain"
	domainerrors "github.com/readloopapp/readloop-server/internal/errors"
	"github.com/readloopapp/readloop-server/internal/store"
)

func TestSocialService_FollowAndCounts(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	ts.seedUser(t, "usr-1", "alice")
	ts.seedUser(t, "usr-2", "bob")
	ts.seedUser(t, "usr-3", "carol")

	require.NoError(t, ts.social.Follow(ctx, "usr-1", "usr-2"))
	require.NoError(t, ts.social.Follow(ctx, "usr-3", "usr-2"))

	counts, err := ts.social.FollowCounts(ctx, "usr-2")
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Followers)
	assert.Equal(t, 0, counts.Following)

	following, err := ts.social.IsFollowing(ctx, "usr-1", "usr-2")
	require.NoError(t, err)
	assert.True(t, following)

	followers, err := ts.social.ListFollowers(ctx, "usr-2", 10, 0)
	require.NoError(t, err)
	assert.Len(t, followers, 2)
}

func TestSocialService_Follow_Idempotent(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	ts.seedUser(t, "usr-1", "alice")
	ts.seedUser(t, "usr-2", "bob")

	require.NoError(t, ts.social.Follow(ctx, "usr-1", "usr-2"))
	require.NoError(t, ts.social.Follow(ctx, "usr-1", "usr-2"))

	counts, err := ts.social.FollowCounts(ctx, "usr-2")
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Followers)

	// Only the first follow recorded an activity.
	feed, err := ts.activity.Feed(ctx, "usr-1", store.PaginationParams{})
	require.NoError(t, err)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, domain.ActivityFollowedUser, feed.Items[0].Type)
	assert.Equal(t, "usr-2", feed.Items[0].TargetUserID)
}

func TestSocialService_Follow_Invalid(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	ts.seedUser(t, "usr-1", "alice")

	err := ts.social.Follow(ctx, "usr-1", "usr-1")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	err = ts.social.Follow(ctx, "usr-1", "usr-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestSocialService_Unfollow(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	ts.seedUser(t, "usr-1", "alice")
	ts.seedUser(t, "usr-2", "bob")

	require.NoError(t, ts.social.Follow(ctx, "usr-1", "usr-2"))
	require.NoError(t, ts.social.Unfollow(ctx, "usr-1", "usr-2"))

	following, err := ts.social.IsFollowing(ctx, "usr-1", "usr-2")
	require.NoError(t, err)
	assert.False(t, following)

	// Unfollowing again is a no-op.
	require.NoError(t, ts.social.Unfollow(ctx, "usr-1", "usr-2"))
}

func TestSocialService_FollowFeedsActivities(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	ts.seedUser(t, "usr-1", "alice")
	ts.seedUser(t, "usr-2", "bob")
	ts.seedBook(t, "book-1", "Dune")

	// Bob shelves a book before Alice follows him.
	_, err := ts.shelves.SetShelf(ctx, "usr-2", "book-1", domain.ShelfCurrentlyReading)
	require.NoError(t, err)

	feed, err := ts.activity.Feed(ctx, "usr-1", store.PaginationParams{})
	require.NoError(t, err)
	assert.Empty(t, feed.Items)

	require.NoError(t, ts.social.Follow(ctx, "usr-1", "usr-2"))

	feed, err = ts.activity.Feed(ctx, "usr-1", store.PaginationParams{})
	require.NoError(t, err)
	require.Len(t, feed.Items, 2)

	types := []domain.ActivityType{feed.Items[0].Type, feed.Items[1].Type}
	assert.Contains(t, types, domain.ActivityFollowedUser)
	assert.Contains(t, types, domain.ActivityStartedBook)
}
