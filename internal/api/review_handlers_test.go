package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readloopapp/readloop-server/internal/domain"
)

func (ts *testServer) putReview(t *testing.T, token, bookID string, rating int, body string) domain.Review {
	t.Helper()

	resp := ts.api.Put("/api/v1/books/"+bookID+"/review",
		bearer(token),
		map[string]any{"rating": rating, "body": body},
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[domain.Review]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

func (ts *testServer) getBook(t *testing.T, token, bookID string) domain.Book {
	t.Helper()

	resp := ts.api.Get("/api/v1/books/"+bookID, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[domain.Book]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestUpsertReview(t *testing.T) {
	ts := newTestServer(t)
	token, userID := ts.registerUser(t, "alice")
	ts.createBook(t, "book-1", "Book One")

	review := ts.putReview(t, token, "book-1", 4, "Loved it.")
	assert.Equal(t, userID, review.UserID)
	assert.Equal(t, "book-1", review.BookID)
	assert.Equal(t, 4, review.Rating)
	assert.Equal(t, "Loved it.", review.Body)

	// Writing again overwrites, never duplicates.
	again := ts.putReview(t, token, "book-1", 2, "")
	assert.Equal(t, review.ID, again.ID)
	assert.Equal(t, 2, again.Rating)
}

func TestUpsertReview_UpdatesBookAggregates(t *testing.T) {
	ts := newTestServer(t)
	alice, _ := ts.registerUser(t, "alice")
	bob, _ := ts.registerUser(t, "bob")
	ts.createBook(t, "book-1", "Book One")

	ts.putReview(t, alice, "book-1", 5, "")
	ts.putReview(t, bob, "book-1", 3, "")

	book := ts.getBook(t, alice, "book-1")
	assert.Equal(t, 2, book.RatingsCount)
	assert.InDelta(t, 4.0, book.AverageRating, 0.001)

	// Rounding to two decimals: (5+3+3)/3 = 3.67.
	carol, _ := ts.registerUser(t, "carol")
	ts.putReview(t, carol, "book-1", 3, "")

	book = ts.getBook(t, alice, "book-1")
	assert.Equal(t, 3, book.RatingsCount)
	assert.InDelta(t, 3.67, book.AverageRating, 0.001)
}

func TestUpsertReview_RatingOutOfRange(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.registerUser(t, "alice")
	ts.createBook(t, "book-1", "Book One")

	resp := ts.api.Put("/api/v1/books/book-1/review", bearer(token),
		map[string]any{"rating": 6})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = ts.api.Put("/api/v1/books/book-1/review", bearer(token),
		map[string]any{"rating": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestUpsertReview_SpoilerFlag(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.registerUser(t, "alice")
	ts.createBook(t, "book-1", "Book One")

	resp := ts.api.Put("/api/v1/books/book-1/review",
		bearer(token),
		map[string]any{"rating": 5, "body": "The twist in chapter 12.", "spoiler": true},
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[domain.Review]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Spoiler)

	// Survives the round trip through storage.
	resp = ts.api.Get("/api/v1/books/book-1/review", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Spoiler)
}

func TestGetMyReview_None(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.registerUser(t, "alice")
	ts.createBook(t, "book-1", "Book One")

	resp := ts.api.Get("/api/v1/books/book-1/review", bearer(token))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteReview_ResetsAggregates(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.registerUser(t, "alice")
	ts.createBook(t, "book-1", "Book One")

	review := ts.putReview(t, token, "book-1", 5, "")

	resp := ts.api.Delete("/api/v1/reviews/"+review.ID, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	book := ts.getBook(t, token, "book-1")
	assert.Equal(t, 0, book.RatingsCount)
	assert.Zero(t, book.AverageRating)
}

func TestDeleteReview_OnlyAuthorOrAdmin(t *testing.T) {
	ts := newTestServer(t)
	alice, _ := ts.registerUser(t, "alice")
	bob, _ := ts.registerUser(t, "bob")

	ts.createBook(t, "book-1", "Book One")
	review := ts.putReview(t, alice, "book-1", 4, "")

	resp := ts.api.Delete("/api/v1/reviews/"+review.ID, bearer(bob))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	admin, _ := ts.registerAdmin(t, "root")
	resp = ts.api.Delete("/api/v1/reviews/"+review.ID, bearer(admin))
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestToggleReviewLike(t *testing.T) {
	ts := newTestServer(t)
	alice, _ := ts.registerUser(t, "alice")
	bob, _ := ts.registerUser(t, "bob")

	ts.createBook(t, "book-1", "Book One")
	review := ts.putReview(t, alice, "book-1", 4, "")

	resp := ts.api.Post("/api/v1/reviews/"+review.ID+"/like", bearer(bob))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var liked testEnvelope[ReviewLikeResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &liked))
	assert.True(t, liked.Data.Liked)
	assert.Equal(t, 1, liked.Data.Likes)

	// Liking again toggles the like off.
	resp = ts.api.Post("/api/v1/reviews/"+review.ID+"/like", bearer(bob))
	require.Equal(t, http.StatusOK, resp.Code)

	var unliked testEnvelope[ReviewLikeResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &unliked))
	assert.False(t, unliked.Data.Liked)
	assert.Equal(t, 0, unliked.Data.Likes)
}

func TestListBookReviews_MarksViewerLikes(t *testing.T) {
	ts := newTestServer(t)
	alice, _ := ts.registerUser(t, "alice")
	bob, _ := ts.registerUser(t, "bob")

	ts.createBook(t, "book-1", "Book One")
	review := ts.putReview(t, alice, "book-1", 5, "Great stuff.")
	ts.api.Post("/api/v1/reviews/"+review.ID+"/like", bearer(bob))

	resp := ts.api.Get("/api/v1/books/book-1/reviews", bearer(bob))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ListReviewsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Reviews, 1)
	assert.Equal(t, 1, envelope.Data.Reviews[0].LikesCount)
	assert.True(t, envelope.Data.Reviews[0].LikedByMe)
}
