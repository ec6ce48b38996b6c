package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readloopapp/readloop-server/internal/auth"
	domainerrors "github.com/readloopapp/readloop-server/internal/errors"
)

func testDeviceInfo() auth.DeviceInfo {
	return auth.DeviceInfo{
		DeviceType:    "web",
		Platform:      "Web",
		ClientName:    "ReadLoop Web",
		ClientVersion: "1.0.0",
	}
}

func TestAuthService_Register_FirstUserIsAdmin(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	resp, err := ts.auth.Register(ctx, RegisterRequest{
		Email:      "alice@example.com",
		Username:   "alice",
		Password:   "correct-horse-battery",
		DeviceInfo: testDeviceInfo(),
	})
	require.NoError(t, err)
	assert.True(t, resp.User.IsAdmin)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Empty(t, resp.User.PasswordHash)

	second, err := ts.auth.Register(ctx, RegisterRequest{
		Email:      "bob@example.com",
		Username:   "bob",
		Password:   "correct-horse-battery",
		DeviceInfo: testDeviceInfo(),
	})
	require.NoError(t, err)
	assert.False(t, second.User.IsAdmin)
}

func TestAuthService_Register_Validation(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"bad email", RegisterRequest{Email: "not-an-email", Username: "alice", Password: "longenough1", DeviceInfo: testDeviceInfo()}},
		{"short password", RegisterRequest{Email: "a@example.com", Username: "alice", Password: "short", DeviceInfo: testDeviceInfo()}},
		{"bad username", RegisterRequest{Email: "a@example.com", Username: "Al!ce", Password: "longenough1", DeviceInfo: testDeviceInfo()}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ts.auth.Register(ctx, tc.req)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)
		})
	}
}

func TestAuthService_Register_DefaultsDeviceInfo(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	resp, err := ts.auth.Register(ctx, RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	sessions, err := ts.sessions.ListUserSessions(ctx, resp.User.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "web", sessions[0].DeviceType)
	assert.Equal(t, "Web", sessions[0].Platform)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	req := RegisterRequest{
		Email:      "alice@example.com",
		Username:   "alice",
		Password:   "correct-horse-battery",
		DeviceInfo: testDeviceInfo(),
	}
	_, err := ts.auth.Register(ctx, req)
	require.NoError(t, err)

	req.Username = "alice2"
	_, err = ts.auth.Register(ctx, req)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestAuthService_Login(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	_, err := ts.auth.Register(ctx, RegisterRequest{
		Email:      "alice@example.com",
		Username:   "alice",
		Password:   "correct-horse-battery",
		DeviceInfo: testDeviceInfo(),
	})
	require.NoError(t, err)

	resp, err := ts.auth.Login(ctx, LoginRequest{
		Email:      "alice@example.com",
		Password:   "correct-horse-battery",
		DeviceInfo: testDeviceInfo(),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.User.Username)
	assert.NotEmpty(t, resp.AccessToken)

	// Access token round-trips through verification.
	claims, err := ts.auth.VerifyAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	_, err = ts.auth.Login(ctx, LoginRequest{
		Email:      "alice@example.com",
		Password:   "wrong-password",
		DeviceInfo: testDeviceInfo(),
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	// Unknown email reads the same as a bad password.
	_, err = ts.auth.Login(ctx, LoginRequest{
		Email:      "nobody@example.com",
		Password:   "correct-horse-battery",
		DeviceInfo: testDeviceInfo(),
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	registered, err := ts.auth.Register(ctx, RegisterRequest{
		Email:      "alice@example.com",
		Username:   "alice",
		Password:   "correct-horse-battery",
		DeviceInfo: testDeviceInfo(),
	})
	require.NoError(t, err)

	refreshed, err := ts.auth.Refresh(ctx, registered.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, registered.SessionID, refreshed.SessionID)

	// The old refresh token died with the rotation.
	_, err = ts.auth.Refresh(ctx, registered.RefreshToken)
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)

	// The new one still works.
	_, err = ts.auth.Refresh(ctx, refreshed.RefreshToken)
	require.NoError(t, err)
}

func TestSessionService_Logout(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	registered, err := ts.auth.Register(ctx, RegisterRequest{
		Email:      "alice@example.com",
		Username:   "alice",
		Password:   "correct-horse-battery",
		DeviceInfo: testDeviceInfo(),
	})
	require.NoError(t, err)

	sessions, err := ts.sessions.ListUserSessions(ctx, registered.User.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	require.NoError(t, ts.sessions.DeleteSession(ctx, registered.SessionID))

	_, err = ts.auth.Refresh(ctx, registered.RefreshToken)
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)
}
