package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readloopapp/readloop-server/internal/domain"
	"github.com/readloopapp/readloop-server/internal/service"
)

func (s *Server) registerShelfRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getShelfCounts",
		Method:      http.MethodGet,
		Path:        "/api/v1/shelves",
		Summary:     "Get shelf counts",
		Description: "Returns per-shelf book totals for the current user",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetShelfCounts)

	huma.Register(s.api, huma.Operation{
		OperationID: "listShelf",
		Method:      http.MethodGet,
		Path:        "/api/v1/shelves/{shelf}",
		Summary:     "List a shelf",
		Description: "Returns the books on one of the current user's shelves",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListShelf)

	huma.Register(s.api, huma.Operation{
		OperationID: "setBookShelf",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}/shelf",
		Summary:     "Shelve a book",
		Description: "Places a book on one of the three shelves, moving it off any other. Reading timestamps are additive and survive reshelving.",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetBookShelf)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookShelf",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/shelf",
		Summary:     "Get a book's shelf entry",
		Description: "Returns the current user's shelf placement for a book, if any",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBookShelf)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeBookShelf",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}/shelf",
		Summary:     "Unshelve a book",
		Description: "Removes a book from the current user's shelves entirely",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveBookShelf)
}

// === DTOs ===

// GetShelfCountsInput contains parameters for the shelf counts endpoint.
type GetShelfCountsInput struct {
	Authorization string `header:"Authorization"`
}

// ShelfCountsOutput wraps shelf counts for Huma.
type ShelfCountsOutput struct {
	Body domain.ShelfCounts
}

// ListShelfInput contains parameters for listing one shelf.
type ListShelfInput struct {
	Authorization string `header:"Authorization"`
	Shelf         string `path:"shelf" enum:"want_to_read,currently_reading,read" doc:"Shelf name"`
	Limit         int    `query:"limit" default:"50" minimum:"1" maximum:"200" doc:"Items per page"`
	Offset        int    `query:"offset" default:"0" minimum:"0" doc:"Items to skip"`
}

// ListShelfResponse contains one shelf's entries.
type ListShelfResponse struct {
	Shelf   domain.Shelf          `json:"shelf" doc:"Shelf name"`
	Entries []*service.ShelfEntry `json:"entries" doc:"Books on the shelf, most recently updated first"`
}

// ListShelfOutput wraps the list shelf response for Huma.
type ListShelfOutput struct {
	Body ListShelfResponse
}

// SetBookShelfRequest is the request body for shelving a book.
type SetBookShelfRequest struct {
	Shelf string `json:"shelf" enum:"want_to_read,currently_reading,read" doc:"Target shelf"`
}

// SetBookShelfInput wraps the shelve request for Huma.
type SetBookShelfInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	Body          SetBookShelfRequest
}

// ShelfEntryOutput wraps a single shelf entry for Huma.
type ShelfEntryOutput struct {
	Body *domain.UserBook
}

// GetBookShelfInput contains parameters for reading a book's shelf entry.
type GetBookShelfInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// RemoveBookShelfInput contains parameters for unshelving a book.
type RemoveBookShelfInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// === Handlers ===

func (s *Server) handleGetShelfCounts(ctx context.Context, _ *GetShelfCountsInput) (*ShelfCountsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := s.services.Shelf.ShelfCounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ShelfCountsOutput{Body: counts}, nil
}

func (s *Server) handleListShelf(ctx context.Context, input *ListShelfInput) (*ListShelfOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	shelf := domain.Shelf(input.Shelf)
	entries, err := s.services.Shelf.ListShelf(ctx, userID, shelf, input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}

	if entries == nil {
		entries = []*service.ShelfEntry{}
	}

	return &ListShelfOutput{Body: ListShelfResponse{Shelf: shelf, Entries: entries}}, nil
}

func (s *Server) handleSetBookShelf(ctx context.Context, input *SetBookShelfInput) (*ShelfEntryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	entry, err := s.services.Shelf.SetShelf(ctx, userID, input.ID, domain.Shelf(input.Body.Shelf))
	if err != nil {
		return nil, err
	}

	return &ShelfEntryOutput{Body: entry}, nil
}

func (s *Server) handleGetBookShelf(ctx context.Context, input *GetBookShelfInput) (*ShelfEntryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	entry, err := s.services.Shelf.GetShelfEntry(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, huma.Error404NotFound("Book is not on any shelf")
	}

	return &ShelfEntryOutput{Body: entry}, nil
}

func (s *Server) handleRemoveBookShelf(ctx context.Context, input *RemoveBookShelfInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Shelf.RemoveFromShelf(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book removed from shelves"}}, nil
}
