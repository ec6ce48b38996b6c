// Package search provides full-text catalogue search using Bleve, with
// fuzzy matching, genre faceting and rating/year range filters.
package search

import (
	"strconv"

	"github.com/readloopapp/readloop-server/internal/domain"
)

// SearchDocument is the document structure for the Bleve index.
//
// Author names and genres are denormalized into the document so a single
// query covers everything a reader would type into the search box.
type SearchDocument struct {
	ID string `json:"id"`

	// Primary searchable text.
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle,omitempty"`
	Description string `json:"description,omitempty"`
	Author      string `json:"author,omitempty"`
	Publisher   string `json:"publisher,omitempty"`

	// Genres for exact filtering and faceting.
	Genres []string `json:"genres,omitempty"`

	// Language as an ISO 639-1 code, matched exactly.
	Language string `json:"language,omitempty"`

	// Numeric fields for range queries and sorting.
	PublishYear   int     `json:"publish_year,omitempty"`
	AverageRating float64 `json:"average_rating,omitempty"`
	RatingsCount  int     `json:"ratings_count,omitempty"`

	// Timestamps for sorting. Unix millis.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *SearchDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"title":      d.Title,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if d.Subtitle != "" {
		m["subtitle"] = d.Subtitle
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Author != "" {
		m["author"] = d.Author
	}
	if d.Publisher != "" {
		m["publisher"] = d.Publisher
	}
	if len(d.Genres) > 0 {
		m["genres"] = d.Genres
	}
	if d.Language != "" {
		m["language"] = d.Language
	}
	if d.PublishYear > 0 {
		m["publish_year"] = d.PublishYear
	}
	if d.AverageRating > 0 {
		m["average_rating"] = d.AverageRating
	}
	if d.RatingsCount > 0 {
		m["ratings_count"] = d.RatingsCount
	}

	return m
}

// BookToSearchDocument converts a domain Book to a SearchDocument.
func BookToSearchDocument(book *domain.Book) *SearchDocument {
	doc := &SearchDocument{
		ID:            book.ID,
		Title:         book.Title,
		Subtitle:      book.Subtitle,
		Description:   book.Description,
		Author:        book.AuthorName(),
		Publisher:     book.Publisher,
		Genres:        book.Genres,
		Language:      book.Language,
		AverageRating: book.AverageRating,
		RatingsCount:  book.RatingsCount,
		CreatedAt:     book.CreatedAt.UnixMilli(),
		UpdatedAt:     book.UpdatedAt.UnixMilli(),
	}

	if book.PublishYear != "" {
		if year, err := strconv.Atoi(book.PublishYear); err == nil {
			doc.PublishYear = year
		}
	}

	return doc
}
