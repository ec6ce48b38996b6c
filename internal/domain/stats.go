package domain

// ShelfCounts holds per-shelf book totals for one user.
type ShelfCounts struct {
	WantToRead       int `json:"want_to_read"`
	CurrentlyReading int `json:"currently_reading"`
	Read             int `json:"read"`
}

// Total returns the number of shelved books across all shelves.
func (c ShelfCounts) Total() int {
	return c.WantToRead + c.CurrentlyReading + c.Read
}

// UserStats contains a user's aggregate reading and social numbers,
// served on the profile page.
type UserStats struct {
	UserID string `json:"user_id"`

	Shelves ShelfCounts `json:"shelves"`

	ReviewsCount       int     `json:"reviews_count"`
	AverageRatingGiven float64 `json:"average_rating_given"` // 0 when no reviews
	LikesReceived      int     `json:"likes_received"`

	FollowersCount int `json:"followers_count"`
	FollowingCount int `json:"following_count"`

	// Goal progress for the current year, if a goal is set.
	Goal *GoalProgress `json:"goal,omitempty"`
}

// UserWithStats pairs a user's public identity with their stats,
// used on the community page.
type UserWithStats struct {
	UserID             string  `json:"user_id"`
	Username           string  `json:"username"`
	DisplayName        string  `json:"display_name"`
	AvatarType         string  `json:"avatar_type,omitempty"`
	AvatarValue        string  `json:"avatar_value,omitempty"`
	Tagline            string  `json:"tagline,omitempty"`
	BooksRead          int     `json:"books_read"`
	ReviewsCount       int     `json:"reviews_count"`
	AverageRatingGiven float64 `json:"average_rating_given"`
	FollowersCount     int     `json:"followers_count"`
	IsFollowedByMe     bool    `json:"is_followed_by_me,omitempty"` // Set per-viewer
}
