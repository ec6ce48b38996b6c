package store

import (
	"context"

	"github.com/readloopapp/readloop-server/internal/domain"
)

// GetUserStats aggregates a user's shelf, review and social numbers.
// Goal progress is left nil; the service layer attaches it when a goal
// exists for the requested year.
func (s *Store) GetUserStats(ctx context.Context, userID string) (*domain.UserStats, error) {
	stats := &domain.UserStats{UserID: userID}

	var err error
	stats.Shelves, err = s.CountUserShelves(ctx, userID)
	if err != nil {
		return nil, err
	}

	// AVG is computed over the user's own ratings and rounded the same way
	// as book averages so both read back with two decimals.
	var avg float64
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(AVG(rating), 0), COALESCE(SUM(likes_count), 0)
		FROM reviews WHERE user_id = ?`,
		userID).Scan(&stats.ReviewsCount, &avg, &stats.LikesReceived)
	if err != nil {
		return nil, err
	}
	stats.AverageRatingGiven = domain.RoundRating(avg)

	counts, err := s.CountFollows(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.FollowersCount = counts.Followers
	stats.FollowingCount = counts.Following

	return stats, nil
}

// ListUsersWithStats returns the community listing: every user's public
// identity with read counts, review counts and followers, ordered by books
// read. When viewerID is non-empty, IsFollowedByMe reflects the viewer's
// follow edges.
func (s *Store) ListUsersWithStats(ctx context.Context, viewerID string, limit, offset int) ([]*domain.UserWithStats, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			u.id, u.username, u.display_name,
			COALESCE(p.avatar_type, 'auto'), COALESCE(p.avatar_value, ''), COALESCE(p.tagline, ''),
			(SELECT COUNT(*) FROM user_books ub WHERE ub.user_id = u.id AND ub.shelf = 'read') AS books_read,
			(SELECT COUNT(*) FROM reviews r WHERE r.user_id = u.id),
			(SELECT COALESCE(AVG(rating), 0) FROM reviews r WHERE r.user_id = u.id),
			(SELECT COUNT(*) FROM follows f WHERE f.followee_id = u.id),
			CASE WHEN ? = '' THEN 0 ELSE
				(SELECT COUNT(*) FROM follows f WHERE f.follower_id = ? AND f.followee_id = u.id)
			END
		FROM users u
		LEFT JOIN profiles p ON p.user_id = u.id
		ORDER BY books_read DESC, u.username COLLATE NOCASE ASC
		LIMIT ? OFFSET ?`,
		viewerID, viewerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.UserWithStats
	for rows.Next() {
		var uws domain.UserWithStats
		var avg float64
		var followedByMe int

		err := rows.Scan(
			&uws.UserID,
			&uws.Username,
			&uws.DisplayName,
			&uws.AvatarType,
			&uws.AvatarValue,
			&uws.Tagline,
			&uws.BooksRead,
			&uws.ReviewsCount,
			&avg,
			&uws.FollowersCount,
			&followedByMe,
		)
		if err != nil {
			return nil, err
		}

		uws.AverageRatingGiven = domain.RoundRating(avg)
		uws.IsFollowedByMe = followedByMe > 0
		if uws.DisplayName == "" {
			uws.DisplayName = uws.Username
		}
		users = append(users, &uws)
	}
	return users, rows.Err()
}
