package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readloopapp/readloop-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search the catalogue",
		Description: "Full-text search over titles, authors and descriptions, with filters and facets",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "reindexSearch",
		Method:      http.MethodPost,
		Path:        "/api/v1/search/reindex",
		Summary:     "Rebuild the search index",
		Description: "Drops and rebuilds the full-text index from the catalogue (admin only)",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReindexSearch)
}

// === DTOs ===

// SearchBooksInput contains search query parameters.
type SearchBooksInput struct {
	Authorization string  `header:"Authorization"`
	Query         string  `query:"q" doc:"Free-text query"`
	Genre         string  `query:"genre" doc:"Filter by exact genre"`
	Language      string  `query:"language" doc:"Filter by ISO 639-1 language code"`
	MinYear       int     `query:"min_year" doc:"Minimum publish year"`
	MaxYear       int     `query:"max_year" doc:"Maximum publish year"`
	MinRating     float64 `query:"min_rating" minimum:"0" maximum:"5" doc:"Minimum average rating"`
	SortBy        string  `query:"sort" enum:"relevance,title,author,recent,rating" default:"relevance" doc:"Sort field"`
	SortOrder     string  `query:"order" enum:"asc,desc" default:"desc" doc:"Sort direction"`
	Facets        bool    `query:"facets" doc:"Include genre and language facet counts"`
	Limit         int     `query:"limit" default:"25" minimum:"1" maximum:"100" doc:"Items per page"`
	Offset        int     `query:"offset" default:"0" minimum:"0" doc:"Items to skip"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body *search.SearchResult
}

// ReindexInput contains parameters for the reindex endpoint.
type ReindexInput struct {
	Authorization string `header:"Authorization"`
}

// ReindexResponse reports the result of an index rebuild.
type ReindexResponse struct {
	Indexed int `json:"indexed" doc:"Number of books indexed"`
}

// ReindexOutput wraps the reindex response for Huma.
type ReindexOutput struct {
	Body ReindexResponse
}

// === Handlers ===

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchBooksInput) (*SearchOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	params := search.SearchParams{
		Query:         input.Query,
		Language:      input.Language,
		MinYear:       input.MinYear,
		MaxYear:       input.MaxYear,
		MinRating:     input.MinRating,
		Limit:         input.Limit,
		Offset:        input.Offset,
		SortBy:        input.SortBy,
		SortOrder:     input.SortOrder,
		IncludeFacets: input.Facets,
	}
	if input.Genre != "" {
		params.Genres = []string{input.Genre}
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	return &SearchOutput{Body: result}, nil
}

func (s *Server) handleReindexSearch(ctx context.Context, _ *ReindexInput) (*ReindexOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	indexed, err := s.services.Search.Reindex(ctx)
	if err != nil {
		return nil, err
	}

	return &ReindexOutput{Body: ReindexResponse{Indexed: indexed}}, nil
}
