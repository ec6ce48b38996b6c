package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/readloopapp/readloop-server/internal/domain"
)

// activityColumns is the ordered list of columns selected in activity queries.
// Must match the scan order in scanActivity.
const activityColumns = `id, user_id, type, created_at,
	user_display_name, user_avatar_type, user_avatar_value,
	book_id, book_title, book_author_name, book_cover_path,
	is_reread, rating,
	target_user_id, target_user_display_name,
	goal_year, goal_target`

// scanActivity scans a sql.Row (or sql.Rows via its Scan method) into a domain.Activity.
func scanActivity(scanner interface{ Scan(dest ...any) error }) (*domain.Activity, error) {
	var a domain.Activity

	var (
		actType    string
		createdAt  string
		avatarType sql.NullString
		avatarVal  sql.NullString
		bookID     sql.NullString
		bookTitle  sql.NullString
		bookAuthor sql.NullString
		bookCover  sql.NullString
		isReread   int
		targetID   sql.NullString
		targetName sql.NullString
	)

	err := scanner.Scan(
		&a.ID,
		&a.UserID,
		&actType,
		&createdAt,
		&a.UserDisplayName,
		&avatarType,
		&avatarVal,
		&bookID,
		&bookTitle,
		&bookAuthor,
		&bookCover,
		&isReread,
		&a.Rating,
		&targetID,
		&targetName,
		&a.GoalYear,
		&a.GoalTarget,
	)
	if err != nil {
		return nil, err
	}

	a.Type = domain.ActivityType(actType)
	a.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	a.UserAvatarType = avatarType.String
	a.UserAvatarValue = avatarVal.String
	a.BookID = bookID.String
	a.BookTitle = bookTitle.String
	a.BookAuthorName = bookAuthor.String
	a.BookCoverPath = bookCover.String
	a.IsReread = isReread != 0
	a.TargetUserID = targetID.String
	a.TargetUserDisplayName = targetName.String

	return &a, nil
}

// CreateActivity appends an immutable activity event and announces it to
// connected clients.
func (s *Store) CreateActivity(ctx context.Context, activity *domain.Activity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (
			id, user_id, type, created_at,
			user_display_name, user_avatar_type, user_avatar_value,
			book_id, book_title, book_author_name, book_cover_path,
			is_reread, rating,
			target_user_id, target_user_display_name,
			goal_year, goal_target
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		activity.ID,
		activity.UserID,
		string(activity.Type),
		formatTime(activity.CreatedAt),
		activity.UserDisplayName,
		nullString(activity.UserAvatarType),
		nullString(activity.UserAvatarValue),
		nullString(activity.BookID),
		nullString(activity.BookTitle),
		nullString(activity.BookAuthorName),
		nullString(activity.BookCoverPath),
		boolToInt(activity.IsReread),
		activity.Rating,
		nullString(activity.TargetUserID),
		nullString(activity.TargetUserDisplayName),
		activity.GoalYear,
		activity.GoalTarget,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrAlreadyExists
		}
		return err
	}

	s.emitter.Emit("activity.created", activity)
	return nil
}

// ActivityFeedOptions filters a feed query. Before/BeforeID form a keyset
// cursor: only activities strictly older than the cursor row are returned,
// with the ID as tiebreaker so equal timestamps page stably.
type ActivityFeedOptions struct {
	UserIDs  []string // Actors to include; empty returns nothing
	Before   time.Time
	BeforeID string
	Limit    int
}

// ListActivities returns activities by the given actors, newest first.
func (s *Store) ListActivities(ctx context.Context, opts ActivityFeedOptions) ([]*domain.Activity, error) {
	if len(opts.UserIDs) == 0 {
		return nil, nil
	}
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 25
	}

	placeholders := strings.Repeat("?,", len(opts.UserIDs))
	placeholders = placeholders[:len(placeholders)-1]

	query := `SELECT ` + activityColumns + ` FROM activities WHERE user_id IN (` + placeholders + `)`
	args := make([]any, 0, len(opts.UserIDs)+3)
	for _, id := range opts.UserIDs {
		args = append(args, id)
	}

	if !opts.Before.IsZero() {
		query += ` AND (created_at < ? OR (created_at = ? AND id < ?))`
		before := formatTime(opts.Before)
		args = append(args, before, before, opts.BeforeID)
	}

	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, opts.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []*domain.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// DeleteUserActivities removes all activities by a user, for account deletion.
func (s *Store) DeleteUserActivities(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM activities WHERE user_id = ?`, userID)
	return err
}
