// Package domain contains the core business entities and domain logic for the ReadLoop catalogue.
package domain

import (
	"math"
	"strings"
	"time"
)

// Book represents a book in the catalogue.
type Book struct {
	Entity
	CoverImage    *CoverImage `json:"cover_image,omitempty"`
	ISBN          string      `json:"isbn,omitempty"`
	Title         string      `json:"title"`
	Subtitle      string      `json:"subtitle,omitempty"`
	Description   string      `json:"description,omitempty"` // Markdown
	Publisher     string      `json:"publisher,omitempty"`
	PublishYear   string      `json:"publish_year,omitempty"`
	Language      string      `json:"language,omitempty"` // ISO 639-1
	OpenLibraryID string      `json:"open_library_id,omitempty"`
	Authors       []string    `json:"authors"`
	Genres        []string    `json:"genres,omitempty"`
	PageCount     int         `json:"page_count,omitempty"`

	// Rating aggregates, maintained transactionally with review writes.
	AverageRating float64 `json:"average_rating"`
	RatingsCount  int     `json:"ratings_count"`
}

// CoverImage represents a processed cover image with its derivatives.
type CoverImage struct {
	Path          string `json:"path"`
	ThumbnailPath string `json:"thumbnail_path,omitempty"`
	Blurhash      string `json:"blurhash,omitempty"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Size          int64  `json:"size"`
}

// AuthorName returns the authors joined for display ("Jane Doe, John Roe").
func (b *Book) AuthorName() string {
	return strings.Join(b.Authors, ", ")
}

// PublishedAfter reports whether the book's publish year is strictly after the given year.
// Unparseable or missing years return false.
func (b *Book) PublishedAfter(year int) bool {
	if len(b.PublishYear) < 4 {
		return false
	}
	var y int
	for _, r := range b.PublishYear[:4] {
		if r < '0' || r > '9' {
			return false
		}
		y = y*10 + int(r-'0')
	}
	return y > year
}

// RoundRating rounds an average rating to two decimal places.
// All stored and served averages go through this so 5+3 reviews
// always read back as exactly 4.00.
func RoundRating(avg float64) float64 {
	return math.Round(avg*100) / 100
}

// ApplyRatings recomputes the book's aggregates from a full set of review ratings.
// An empty set resets both fields to zero.
func (b *Book) ApplyRatings(ratings []int) {
	b.RatingsCount = len(ratings)
	if len(ratings) == 0 {
		b.AverageRating = 0
		b.UpdatedAt = time.Now()
		return
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	b.AverageRating = RoundRating(float64(sum) / float64(len(ratings)))
	b.UpdatedAt = time.Now()
}
