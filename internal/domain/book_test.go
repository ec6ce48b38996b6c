package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBook_ApplyRatings(t *testing.T) {
	tests := []struct {
		name      string
		ratings   []int
		wantAvg   float64
		wantCount int
	}{
		{"no reviews resets to zero", nil, 0, 0},
		{"single review", []int{4}, 4, 1},
		{"five and three averages to exactly four", []int{5, 3}, 4.00, 2},
		{"thirds round to two decimals", []int{5, 4, 4}, 4.33, 3},
		{"two thirds round up", []int{5, 5, 4}, 4.67, 3},
		{"all ones", []int{1, 1, 1, 1}, 1, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Book{}
			b.ApplyRatings(tt.ratings)
			assert.InDelta(t, tt.wantAvg, b.AverageRating, 1e-9)
			assert.Equal(t, tt.wantCount, b.RatingsCount)
		})
	}
}

func TestBook_ApplyRatings_ResetAfterDeletes(t *testing.T) {
	b := &Book{}
	b.ApplyRatings([]int{5, 3})
	assert.InDelta(t, 4.0, b.AverageRating, 1e-9)

	// Last review deleted: aggregates go back to zero, not stale values.
	b.ApplyRatings(nil)
	assert.Zero(t, b.AverageRating)
	assert.Zero(t, b.RatingsCount)
}

func TestRoundRating(t *testing.T) {
	assert.InDelta(t, 4.33, RoundRating(13.0/3.0), 1e-9)
	assert.InDelta(t, 4.0, RoundRating(4.0), 1e-9)
	assert.InDelta(t, 3.67, RoundRating(11.0/3.0), 1e-9)
}

func TestBook_AuthorName(t *testing.T) {
	b := &Book{Authors: []string{"Ursula K. Le Guin"}}
	assert.Equal(t, "Ursula K. Le Guin", b.AuthorName())

	b.Authors = []string{"Terry Pratchett", "Neil Gaiman"}
	assert.Equal(t, "Terry Pratchett, Neil Gaiman", b.AuthorName())

	assert.Empty(t, (&Book{}).AuthorName())
}

func TestBook_PublishedAfter(t *testing.T) {
	assert.True(t, (&Book{PublishYear: "1997"}).PublishedAfter(1990))
	assert.False(t, (&Book{PublishYear: "1984"}).PublishedAfter(1990))
	assert.False(t, (&Book{PublishYear: ""}).PublishedAfter(1990))
	assert.False(t, (&Book{PublishYear: "19x4"}).PublishedAfter(1900))
}

func TestRatingValid(t *testing.T) {
	for r := MinRating; r <= MaxRating; r++ {
		assert.True(t, RatingValid(r), r)
	}
	assert.False(t, RatingValid(0))
	assert.False(t, RatingValid(6))
	assert.False(t, RatingValid(-1))
}
