package service

import (
	"context"
	"encoding/hex"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/readloopapp/readloop-server/internal/auth"
	"github.com/readloopapp/readloop-server/internal/domain"
	"github.com/readloopapp/readloop-server/internal/sse"
	"github.com/readloopapp/readloop-server/internal/store"
)

// testServices bundles the wired service layer over a temp database.
type testServices struct {
	store      *store.Store
	sseManager *sse.Manager

	auth     *AuthService
	sessions *SessionService
	shelves  *ShelfService
	reviews  *ReviewService
	social   *SocialService
	goals    *GoalService
	stats    *StatsService
	activity *ActivityService
	books    *BookService
	profiles *ProfileService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()

	s, err := store.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	manager := sse.NewManager(logger)
	s.SetEventEmitter(manager)

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokenService, err := auth.NewTokenService(hex.EncodeToString(key), 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	ts := &testServices{
		store:      s,
		sseManager: manager,
	}

	ts.sessions = NewSessionService(s, tokenService, logger)
	ts.auth = NewAuthService(s, tokenService, ts.sessions, logger)
	ts.activity = NewActivityService(s, logger)
	ts.goals = NewGoalService(s, manager, logger)
	ts.goals.SetActivityRecorder(ts.activity)
	ts.shelves = NewShelfService(s, manager, logger)
	ts.shelves.SetActivityRecorder(ts.activity)
	ts.shelves.SetGoalChecker(ts.goals)
	ts.reviews = NewReviewService(s, manager, logger)
	ts.reviews.SetActivityRecorder(ts.activity)
	ts.social = NewSocialService(s, manager, logger)
	ts.social.SetActivityRecorder(ts.activity)
	ts.stats = NewStatsService(s, ts.goals, logger)
	ts.books = NewBookService(s, manager, logger)
	ts.profiles = NewProfileService(s, logger)

	return ts
}

// seedUser creates a user directly in the store.
func (ts *testServices) seedUser(t *testing.T, id, username string) *domain.User {
	t.Helper()
	now := time.Now()
	user := &domain.User{
		Entity: domain.Entity{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "$argon2id$fakehashfortest",
		DisplayName:  "Test " + username,
		LastLoginAt:  now,
	}
	require.NoError(t, ts.store.CreateUser(context.Background(), user))
	return user
}

// seedBook creates a book directly in the store.
func (ts *testServices) seedBook(t *testing.T, id, title string) *domain.Book {
	t.Helper()
	now := time.Now()
	book := &domain.Book{
		Entity: domain.Entity{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:   title,
		Authors: []string{"Test Author"},
		Genres:  []string{"Fiction"},
	}
	require.NoError(t, ts.store.CreateBook(context.Background(), book))
	return book
}
