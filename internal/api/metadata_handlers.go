package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readloopapp/readloop-server/internal/metadata/openlibrary"
)

func (s *Server) registerMetadataRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchMetadata",
		Method:      http.MethodGet,
		Path:        "/api/v1/metadata/search",
		Summary:     "Search Open Library",
		Description: "Searches the Open Library catalogue for works to import",
		Tags:        []string{"Metadata"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchMetadata)

	huma.Register(s.api, huma.Operation{
		OperationID: "importMetadata",
		Method:      http.MethodPost,
		Path:        "/api/v1/metadata/import",
		Summary:     "Import a work",
		Description: "Imports a work from Open Library into the catalogue, cover included (admin only)",
		Tags:        []string{"Metadata"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleImportMetadata)
}

// === DTOs ===

// SearchMetadataInput contains Open Library search parameters.
type SearchMetadataInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Free-text query matched across titles and authors"`
	Title         string `query:"title" doc:"Restrict matches to book titles"`
	Author        string `query:"author" doc:"Restrict matches to author names"`
	Limit         int    `query:"limit" default:"25" minimum:"1" maximum:"50" doc:"Max results"`
}

// SearchMetadataResponse contains Open Library search hits.
type SearchMetadataResponse struct {
	Results []openlibrary.WorkHit `json:"results" doc:"Search hits"`
}

// SearchMetadataOutput wraps the metadata search response for Huma.
type SearchMetadataOutput struct {
	Body SearchMetadataResponse
}

// ImportMetadataRequest is the request body for importing a work.
// Clients post back one hit from a metadata search.
type ImportMetadataRequest struct {
	WorkID           string   `json:"work_id" doc:"Open Library work ID (e.g. OL45883W)"`
	Title            string   `json:"title,omitempty" doc:"Title from the search hit"`
	Authors          []string `json:"authors,omitempty" doc:"Author names from the search hit"`
	FirstPublishYear int      `json:"first_publish_year,omitempty" doc:"First publish year"`
	CoverURL         string   `json:"cover_url,omitempty" doc:"Cover image URL"`
	ISBN             string   `json:"isbn,omitempty" doc:"ISBN"`
	Languages        []string `json:"languages,omitempty" doc:"Language codes"`
	Publisher        string   `json:"publisher,omitempty" doc:"Publisher"`
}

// ImportMetadataInput wraps the import request for Huma.
type ImportMetadataInput struct {
	Authorization string `header:"Authorization"`
	Body          ImportMetadataRequest
}

// === Handlers ===

func (s *Server) handleSearchMetadata(ctx context.Context, input *SearchMetadataInput) (*SearchMetadataOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	results, err := s.services.Metadata.Search(ctx, openlibrary.SearchParams{
		Query:  input.Query,
		Title:  input.Title,
		Author: input.Author,
		Limit:  input.Limit,
	})
	if err != nil {
		return nil, err
	}

	if results == nil {
		results = []openlibrary.WorkHit{}
	}

	return &SearchMetadataOutput{Body: SearchMetadataResponse{Results: results}}, nil
}

func (s *Server) handleImportMetadata(ctx context.Context, input *ImportMetadataInput) (*BookOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	book, err := s.services.Metadata.ImportWork(ctx, openlibrary.WorkHit{
		WorkID:           input.Body.WorkID,
		Title:            input.Body.Title,
		Authors:          input.Body.Authors,
		FirstPublishYear: input.Body.FirstPublishYear,
		CoverURL:         input.Body.CoverURL,
		ISBN:             input.Body.ISBN,
		Languages:        input.Body.Languages,
		Publisher:        input.Body.Publisher,
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: book}, nil
}
