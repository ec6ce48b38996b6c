package store

import (
	"context"
	"strings"

	"github.com/readloopapp/readloop-server/internal/domain"
)

// CreateFollow adds a directed edge to the follow graph.
// Returns ErrAlreadyExists if the edge is already present and ErrInvalidInput
// for self-follows or missing endpoints.
func (s *Store) CreateFollow(ctx context.Context, follow *domain.Follow) error {
	if !follow.Valid() {
		return ErrInvalidInput
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO follows (follower_id, followee_id, created_at)
		VALUES (?, ?, ?)`,
		follow.FollowerID,
		follow.FolloweeID,
		formatTime(follow.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrAlreadyExists
		}
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// DeleteFollow removes a directed edge from the follow graph.
// Returns ErrNotFound if the edge does not exist.
func (s *Store) DeleteFollow(ctx context.Context, followerID, followeeID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND followee_id = ?`,
		followerID, followeeID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// IsFollowing reports whether follower follows followee.
func (s *Store) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM follows WHERE follower_id = ? AND followee_id = ?`,
		followerID, followeeID).Scan(&count)
	return count > 0, err
}

// CountFollows returns the follower and following totals for a user.
func (s *Store) CountFollows(ctx context.Context, userID string) (domain.FollowCounts, error) {
	var counts domain.FollowCounts
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM follows WHERE followee_id = ?),
			(SELECT COUNT(*) FROM follows WHERE follower_id = ?)`,
		userID, userID).Scan(&counts.Followers, &counts.Following)
	return counts, err
}

// ListFollowers returns the users following the given user, most recent first.
func (s *Store) ListFollowers(ctx context.Context, userID string, limit, offset int) ([]*domain.User, error) {
	return s.listFollowEdge(ctx, `
		SELECT `+prefixColumns("u", userColumns)+`
		FROM follows f JOIN users u ON u.id = f.follower_id
		WHERE f.followee_id = ?
		ORDER BY f.created_at DESC
		LIMIT ? OFFSET ?`, userID, limit, offset)
}

// ListFollowing returns the users the given user follows, most recent first.
func (s *Store) ListFollowing(ctx context.Context, userID string, limit, offset int) ([]*domain.User, error) {
	return s.listFollowEdge(ctx, `
		SELECT `+prefixColumns("u", userColumns)+`
		FROM follows f JOIN users u ON u.id = f.followee_id
		WHERE f.follower_id = ?
		ORDER BY f.created_at DESC
		LIMIT ? OFFSET ?`, userID, limit, offset)
}

// ListFollowingIDs returns just the IDs the user follows, for feed queries.
func (s *Store) ListFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT followee_id FROM follows WHERE follower_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) listFollowEdge(ctx context.Context, query, userID string, limit, offset int) ([]*domain.User, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// prefixColumns qualifies a comma-separated column list with a table alias.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
