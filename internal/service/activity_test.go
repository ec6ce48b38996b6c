package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readloopapp/readloop-server/internal/domain"
	"github.com/readloopapp/readloop-server/internal/store"
)

func TestActivityService_Feed_Pagination(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	ts.seedUser(t, "usr-1", "alice")

	for i := range 7 {
		id := fmt.Sprintf("book-%d", i)
		ts.seedBook(t, id, fmt.Sprintf("Book %d", i))
		_, err := ts.shelves.SetShelf(ctx, "usr-1", id, domain.ShelfWantToRead)
		require.NoError(t, err)
	}

	page1, err := ts.activity.Feed(ctx, "usr-1", store.PaginationParams{Limit: 3})
	require.NoError(t, err)
	require.Len(t, page1.Items, 3)
	assert.True(t, page1.HasMore)
	require.NotEmpty(t, page1.NextCursor)

	page2, err := ts.activity.Feed(ctx, "usr-1", store.PaginationParams{Limit: 3, Cursor: page1.NextCursor})
	require.NoError(t, err)
	require.Len(t, page2.Items, 3)
	assert.True(t, page2.HasMore)

	page3, err := ts.activity.Feed(ctx, "usr-1", store.PaginationParams{Limit: 3, Cursor: page2.NextCursor})
	require.NoError(t, err)
	require.Len(t, page3.Items, 1)
	assert.False(t, page3.HasMore)
	assert.Empty(t, page3.NextCursor)

	// No overlap between pages, newest first throughout.
	seen := map[string]bool{}
	var all []*domain.Activity
	all = append(all, page1.Items...)
	all = append(all, page2.Items...)
	all = append(all, page3.Items...)
	for _, a := range all {
		assert.False(t, seen[a.ID], "activity %s served twice", a.ID)
		seen[a.ID] = true
	}
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt))
	}
}

func TestActivityService_Feed_BadCursor(t *testing.T) {
	ts := newTestServices(t)
	ts.seedUser(t, "usr-1", "alice")

	_, err := ts.activity.Feed(context.Background(), "usr-1", store.PaginationParams{Cursor: "not-a-cursor"})
	assert.Error(t, err)
}

func TestActivityService_Feed_IncludesSelfAndFollowed(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	ts.seedUser(t, "usr-1", "alice")
	ts.seedUser(t, "usr-2", "bob")
	ts.seedUser(t, "usr-3", "carol")
	ts.seedBook(t, "book-1", "Dune")

	// Bob and Carol both act; Alice follows only Bob.
	_, err := ts.shelves.SetShelf(ctx, "usr-2", "book-1", domain.ShelfWantToRead)
	require.NoError(t, err)
	_, err = ts.shelves.SetShelf(ctx, "usr-3", "book-1", domain.ShelfWantToRead)
	require.NoError(t, err)
	require.NoError(t, ts.social.Follow(ctx, "usr-1", "usr-2"))

	feed, err := ts.activity.Feed(ctx, "usr-1", store.PaginationParams{})
	require.NoError(t, err)
	for _, a := range feed.Items {
		assert.NotEqual(t, "usr-3", a.UserID, "unfollowed user leaked into feed")
	}
	// Alice's own follow plus Bob's shelving.
	require.Len(t, feed.Items, 2)
}

func TestActivityService_UserActivities(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	ts.seedUser(t, "usr-1", "alice")
	ts.seedUser(t, "usr-2", "bob")
	ts.seedBook(t, "book-1", "Dune")

	_, err := ts.shelves.SetShelf(ctx, "usr-1", "book-1", domain.ShelfWantToRead)
	require.NoError(t, err)
	_, err = ts.shelves.SetShelf(ctx, "usr-2", "book-1", domain.ShelfWantToRead)
	require.NoError(t, err)

	activities, err := ts.activity.UserActivities(ctx, "usr-1", store.PaginationParams{})
	require.NoError(t, err)
	require.Len(t, activities.Items, 1)
	assert.Equal(t, "usr-1", activities.Items[0].UserID)
}

func TestActivityService_DenormalizedFields(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	user := ts.seedUser(t, "usr-1", "alice")
	ts.seedBook(t, "book-1", "Dune")

	_, err := ts.shelves.SetShelf(ctx, "usr-1", "book-1", domain.ShelfWantToRead)
	require.NoError(t, err)

	feed, err := ts.activity.Feed(ctx, "usr-1", store.PaginationParams{})
	require.NoError(t, err)
	require.Len(t, feed.Items, 1)

	a := feed.Items[0]
	assert.Equal(t, user.Name(), a.UserDisplayName)
	assert.Equal(t, string(domain.AvatarTypeAuto), a.UserAvatarType)
	assert.Equal(t, "book-1", a.BookID)
	assert.Equal(t, "Dune", a.BookTitle)
	assert.Equal(t, "Test Author", a.BookAuthorName)
}
