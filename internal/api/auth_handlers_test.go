package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_ReturnsTokensAndUser(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        "alice@test.com",
		"username":     "alice",
		"password":     "TestPassword123!",
		"display_name": "Alice",
		"device_info": map[string]any{
			"device_type": "web",
			"client_name": "ReadLoop Web",
		},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.V)
	assert.True(t, envelope.Success)
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.NotEmpty(t, envelope.Data.RefreshToken)
	assert.NotEmpty(t, envelope.Data.SessionID)
	assert.Equal(t, "Bearer", envelope.Data.TokenType)
	assert.Equal(t, "alice", envelope.Data.User.Username)
	assert.Equal(t, "Alice", envelope.Data.User.DisplayName)
	// The first account on a fresh server administers the catalogue.
	assert.True(t, envelope.Data.User.IsAdmin)

	claims, err := ts.tokenService.VerifyAccessToken(envelope.Data.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, envelope.Data.User.ID, claims.UserID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ts := newTestServer(t)
	ts.registerUser(t, "alice")

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    "alice@test.com",
		"username": "alice2",
		"password": "TestPassword123!",
	})
	assert.Equal(t, http.StatusConflict, resp.Code)

	var envelope testEnvelope[struct{}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.NotEmpty(t, envelope.Error)
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.registerUser(t, "alice")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "alice@test.com",
		"password": "WrongPassword123!",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogin_ReturnsNewSession(t *testing.T) {
	ts := newTestServer(t)
	ts.registerUser(t, "alice")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "alice@test.com",
		"password": "TestPassword123!",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.Equal(t, "alice", envelope.Data.User.Username)
}

func TestGetCurrentUser(t *testing.T) {
	ts := newTestServer(t)
	token, userID := ts.registerUser(t, "alice")

	resp := ts.api.Get("/api/v1/users/me", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[UserResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, userID, envelope.Data.ID)
	assert.Equal(t, "alice@test.com", envelope.Data.Email)
}

func TestGetCurrentUser_NoToken(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.api.Get("/api/v1/users/me")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRefresh_RotatesSession(t *testing.T) {
	ts := newTestServer(t)

	registerResp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    "alice@test.com",
		"username": "alice",
		"password": "TestPassword123!",
	})
	require.Equal(t, http.StatusOK, registerResp.Code)

	var registered testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(registerResp.Body.Bytes(), &registered))

	resp := ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": registered.Data.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var refreshed testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &refreshed))
	assert.NotEmpty(t, refreshed.Data.AccessToken)
	assert.NotEmpty(t, refreshed.Data.RefreshToken)

	// The new access token must be usable.
	meResp := ts.api.Get("/api/v1/users/me", bearer(refreshed.Data.AccessToken))
	assert.Equal(t, http.StatusOK, meResp.Code)
}

func TestRefresh_InvalidToken(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": "not-a-real-token",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestListSessions(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.registerUser(t, "alice")

	resp := ts.api.Get("/api/v1/auth/sessions", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ListSessionsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Sessions, 1)
	assert.True(t, envelope.Data.Sessions[0].Current)
}
