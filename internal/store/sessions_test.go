package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/readloopapp/readloop-server/internal/domain"
)

func makeTestSession(id, userID, tokenHash string) *domain.Session {
	now := time.Now()
	return &domain.Session{
		ID:               id,
		UserID:           userID,
		RefreshTokenHash: tokenHash,
		ExpiresAt:        now.Add(30 * 24 * time.Hour),
		CreatedAt:        now,
		LastSeenAt:       now,
		IPAddress:        "192.0.2.1",
		DeviceType:       "desktop",
		Platform:         "macOS",
		ClientName:       "ReadLoop Web",
	}
}

func TestCreateAndGetSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "usr-1")

	sess := makeTestSession("ses-1", "usr-1", "hash-abc")
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := s.GetSessionByTokenHash(ctx, "hash-abc")
	if err != nil {
		t.Fatalf("GetSessionByTokenHash: %v", err)
	}
	if got.ID != "ses-1" {
		t.Errorf("ID: got %q, want ses-1", got.ID)
	}
	if got.UserID != "usr-1" {
		t.Errorf("UserID: got %q, want usr-1", got.UserID)
	}
	if got.Platform != "macOS" {
		t.Errorf("Platform: got %q, want macOS", got.Platform)
	}

	_, err = s.GetSessionByTokenHash(ctx, "hash-unknown")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRotateSessionToken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "usr-1")

	sess := makeTestSession("ses-1", "usr-1", "hash-old")
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	newExpiry := time.Now().Add(60 * 24 * time.Hour)
	if err := s.RotateSessionToken(ctx, "ses-1", "hash-new", newExpiry); err != nil {
		t.Fatalf("RotateSessionToken: %v", err)
	}

	// Old hash no longer resolves; new one does.
	if _, err := s.GetSessionByTokenHash(ctx, "hash-old"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected old hash invalid, got %v", err)
	}
	got, err := s.GetSessionByTokenHash(ctx, "hash-new")
	if err != nil {
		t.Fatalf("GetSessionByTokenHash new: %v", err)
	}
	if got.ExpiresAt.Unix() != newExpiry.Unix() {
		t.Errorf("ExpiresAt: got %v, want %v", got.ExpiresAt, newExpiry)
	}

	if err := s.RotateSessionToken(ctx, "ses-ghost", "hash-x", newExpiry); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown session, got %v", err)
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "usr-1")

	live := makeTestSession("ses-live", "usr-1", "hash-live")
	if err := s.CreateSession(ctx, live); err != nil {
		t.Fatalf("CreateSession live: %v", err)
	}

	stale := makeTestSession("ses-stale", "usr-1", "hash-stale")
	stale.ExpiresAt = time.Now().Add(-time.Hour)
	if err := s.CreateSession(ctx, stale); err != nil {
		t.Fatalf("CreateSession stale: %v", err)
	}

	deleted, err := s.DeleteExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted: got %d, want 1", deleted)
	}

	sessions, err := s.ListUserSessions(ctx, "usr-1")
	if err != nil {
		t.Fatalf("ListUserSessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != "ses-live" {
		t.Errorf("remaining sessions: got %v, want [ses-live]", sessions)
	}
}

func TestDeleteUserSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "usr-1")

	for i, hash := range []string{"hash-1", "hash-2"} {
		sess := makeTestSession("ses-"+string(rune('a'+i)), "usr-1", hash)
		if err := s.CreateSession(ctx, sess); err != nil {
			t.Fatalf("CreateSession: %v", err)
		}
	}

	if err := s.DeleteUserSessions(ctx, "usr-1"); err != nil {
		t.Fatalf("DeleteUserSessions: %v", err)
	}
	sessions, err := s.ListUserSessions(ctx, "usr-1")
	if err != nil {
		t.Fatalf("ListUserSessions: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("sessions after logout-all: got %d, want 0", len(sessions))
	}
}
