package domain

import "time"

// Follow represents a directed edge in the follow graph.
// The (follower, followee) pair is unique and self-follows are rejected.
type Follow struct {
	FollowerID string    `json:"follower_id"`
	FolloweeID string    `json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Valid reports whether the edge is well-formed: both ends present
// and not a self-follow.
func (f *Follow) Valid() bool {
	return f.FollowerID != "" && f.FolloweeID != "" && f.FollowerID != f.FolloweeID
}

// FollowCounts holds the follower/following totals for one user.
type FollowCounts struct {
	Followers int `json:"followers"`
	Following int `json:"following"`
}
