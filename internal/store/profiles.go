package store

import (
	"context"
	"database/sql"

	"github.com/readloopapp/readloop-server/internal/domain"
)

// GetProfile retrieves a user's profile.
// Returns ErrNotFound if no profile exists.
func (s *Store) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var (
		p         domain.UserProfile
		avatar    string
		genres    string
		createdAt string
		updatedAt string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, avatar_type, avatar_value, tagline, favorite_genres, created_at, updated_at
		FROM profiles WHERE user_id = ?`, userID).Scan(
		&p.UserID,
		&avatar,
		&p.AvatarValue,
		&p.Tagline,
		&genres,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	p.AvatarType = domain.AvatarType(avatar)
	p.FavoriteGenres, err = unmarshalStrings(genres)
	if err != nil {
		return nil, err
	}
	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// UpsertProfile creates or fully replaces a user's profile.
func (s *Store) UpsertProfile(ctx context.Context, profile *domain.UserProfile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, avatar_type, avatar_value, tagline, favorite_genres, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			avatar_type = excluded.avatar_type,
			avatar_value = excluded.avatar_value,
			tagline = excluded.tagline,
			favorite_genres = excluded.favorite_genres,
			updated_at = excluded.updated_at`,
		profile.UserID,
		string(profile.AvatarType),
		profile.AvatarValue,
		profile.Tagline,
		marshalStrings(profile.FavoriteGenres),
		formatTime(profile.CreatedAt),
		formatTime(profile.UpdatedAt),
	)
	return err
}
