package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/readloopapp/readloop-server/internal/domain"
	domainerrors "github.com/readloopapp/readloop-server/internal/errors"
	"github.com/readloopapp/readloop-server/internal/normalize"
	"github.com/readloopapp/readloop-server/internal/store"
)

// ProfileService manages user profiles: display names, avatars, taglines
// and favorite genres.
type ProfileService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(store *store.Store, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		store:  store,
		logger: logger,
	}
}

// ProfileUpdate carries the editable profile fields. Nil pointers leave
// the current value untouched.
type ProfileUpdate struct {
	DisplayName    *string  `json:"display_name,omitempty"`
	Tagline        *string  `json:"tagline,omitempty"`
	FavoriteGenres []string `json:"favorite_genres,omitempty"`
}

// PublicProfile is a user's profile as other users see it.
type PublicProfile struct {
	UserID         string            `json:"user_id"`
	Username       string            `json:"username"`
	DisplayName    string            `json:"display_name"`
	AvatarType     string            `json:"avatar_type"`
	AvatarValue    string            `json:"avatar_value,omitempty"`
	Tagline        string            `json:"tagline,omitempty"`
	FavoriteGenres []string          `json:"favorite_genres,omitempty"`
	Stats          *domain.UserStats `json:"stats,omitempty"`
	IsFollowedByMe bool              `json:"is_followed_by_me,omitempty"`
}

// GetProfile returns a user's own profile, creating the default one on
// first access.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	profile = domain.NewUserProfile(userID)
	if err := s.store.UpsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return profile, nil
}

// UpdateProfile applies partial edits to the user's profile and display
// name.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*domain.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if update.DisplayName != nil {
		name := strings.TrimSpace(normalize.SanitizeString(*update.DisplayName))
		if name == "" {
			return nil, domainerrors.Validation("display name cannot be empty")
		}
		if len(name) > 100 {
			return nil, domainerrors.Validation("display name is too long")
		}

		user, err := s.store.GetUser(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, domainerrors.NotFound("user not found")
			}
			return nil, fmt.Errorf("get user: %w", err)
		}
		user.DisplayName = name
		user.Touch()
		if err := s.store.UpdateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
	}

	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Tagline != nil {
		tagline := strings.TrimSpace(*update.Tagline)
		if len(tagline) > domain.MaxTaglineLength {
			return nil, domainerrors.Validationf("tagline exceeds %d characters", domain.MaxTaglineLength)
		}
		profile.Tagline = tagline
	}
	if update.FavoriteGenres != nil {
		genres := make([]string, 0, len(update.FavoriteGenres))
		for _, g := range update.FavoriteGenres {
			if g = strings.TrimSpace(normalize.SanitizeString(g)); g != "" {
				genres = append(genres, g)
			}
		}
		profile.FavoriteGenres = genres
	}
	profile.UpdatedAt = time.Now()

	if err := s.store.UpsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	s.logger.Info("profile updated", "user_id", userID)

	return profile, nil
}

// GetPublicProfile returns the profile another user sees, with stats and
// the viewer's follow state. viewerID may be empty.
func (s *ProfileService) GetPublicProfile(ctx context.Context, username, viewerID string, stats *StatsService, social *SocialService) (*PublicProfile, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	pub := &PublicProfile{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.Name(),
		AvatarType:  string(domain.AvatarTypeAuto),
	}

	if profile, err := s.store.GetProfile(ctx, user.ID); err == nil {
		pub.AvatarType = string(profile.AvatarType)
		pub.AvatarValue = profile.AvatarValue
		pub.Tagline = profile.Tagline
		pub.FavoriteGenres = profile.FavoriteGenres
	}

	if stats != nil {
		if st, err := stats.GetUserStats(ctx, user.ID); err == nil {
			pub.Stats = st
		}
	}
	if social != nil && viewerID != "" && viewerID != user.ID {
		if following, err := social.IsFollowing(ctx, viewerID, user.ID); err == nil {
			pub.IsFollowedByMe = following
		}
	}

	return pub, nil
}

// SearchUsers finds users by username or display name prefix.
func (s *ProfileService) SearchUsers(ctx context.Context, query string, limit int) ([]*domain.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*domain.User{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	users, err := s.store.SearchUsers(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	for _, u := range users {
		u.PasswordHash = ""
	}
	return users, nil
}
