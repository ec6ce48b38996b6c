package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readloopapp/readloop-server/internal/domain"
	"github.com/readloopapp/readloop-server/internal/service"
)

func TestGetMyProfile_DefaultOnFirstAccess(t *testing.T) {
	ts := newTestServer(t)
	token, userID := ts.registerUser(t, "alice")

	resp := ts.api.Get("/api/v1/profile", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[domain.UserProfile]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, userID, envelope.Data.UserID)
	assert.Equal(t, domain.AvatarTypeAuto, envelope.Data.AvatarType)
}

func TestUpdateProfile(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.registerUser(t, "alice")

	resp := ts.api.Patch("/api/v1/profile", bearer(token), map[string]any{
		"display_name":    "Alice A.",
		"tagline":         "Reading through the backlog",
		"favorite_genres": []string{"science fiction", "history"},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[domain.UserProfile]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "Reading through the backlog", envelope.Data.Tagline)
	assert.Equal(t, []string{"science fiction", "history"}, envelope.Data.FavoriteGenres)

	// Display name lives on the user record.
	meResp := ts.api.Get("/api/v1/users/me", bearer(token))
	require.Equal(t, http.StatusOK, meResp.Code)

	var me testEnvelope[UserResponse]
	require.NoError(t, json.Unmarshal(meResp.Body.Bytes(), &me))
	assert.Equal(t, "Alice A.", me.Data.DisplayName)
}

func TestUpdateProfile_TaglineTooLong(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.registerUser(t, "alice")

	long := make([]byte, 0, 80)
	for range 80 {
		long = append(long, 'x')
	}

	resp := ts.api.Patch("/api/v1/profile", bearer(token), map[string]any{
		"tagline": string(long),
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetPublicProfile(t *testing.T) {
	ts := newTestServer(t)
	alice, aliceID := ts.registerUser(t, "alice")
	bob, _ := ts.registerUser(t, "bob")

	ts.createBook(t, "book-1", "Book One")
	ts.api.Put("/api/v1/books/book-1/shelf", bearer(alice), map[string]any{"shelf": "read"})

	resp := ts.api.Get("/api/v1/users/alice/profile", bearer(bob))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[service.PublicProfile]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, aliceID, envelope.Data.UserID)
	assert.Equal(t, "alice", envelope.Data.Username)
	require.NotNil(t, envelope.Data.Stats)
	assert.Equal(t, 1, envelope.Data.Stats.Shelves.Read)

	assert.NotContains(t, resp.Body.String(), "password")
}

func TestGetPublicProfile_Unknown(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.registerUser(t, "alice")

	resp := ts.api.Get("/api/v1/users/nobody/profile", bearer(token))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSearchUsers(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.registerUser(t, "alice")
	ts.registerUser(t, "bob")
	ts.registerUser(t, "bobby")

	resp := ts.api.Get("/api/v1/users/search?q=bob", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[ListUsersResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Users, 2)
}
