package store

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// PaginationParams contains pagination request parameters.
type PaginationParams struct {
	Limit  int    // Items per page (defaults to 25 with a maximum of 100)
	Cursor string // Opaque cursor for the next page (empty for first page)
}

// PaginatedResult contains paginated data and metadata.
type PaginatedResult[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"` // Empty if no more pages
	HasMore    bool   `json:"has_more"`
}

// Validate checks and corrects pagination parameters.
func (p *PaginationParams) Validate() {
	if p.Limit <= 0 {
		p.Limit = 25
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

// EncodeFeedCursor creates an opaque cursor from the last row of a feed page.
// The cursor carries the row's timestamp and ID so the next page can resume
// with a keyset query instead of an offset.
func EncodeFeedCursor(createdAt time.Time, id string) string {
	if id == "" {
		return ""
	}
	raw := formatTime(createdAt) + "|" + id
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// DecodeFeedCursor decodes a cursor back into its timestamp and ID.
// An empty cursor decodes to the zero value, meaning first page.
func DecodeFeedCursor(cursor string) (time.Time, string, error) {
	if cursor == "" {
		return time.Time{}, "", nil
	}

	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid cursor: %w", err)
	}

	raw := string(decoded)
	sep := strings.IndexByte(raw, '|')
	if sep < 0 {
		return time.Time{}, "", fmt.Errorf("invalid cursor")
	}

	at, err := parseTime(raw[:sep])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid cursor: %w", err)
	}
	return at, raw[sep+1:], nil
}
