package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readloopapp/readloop-server/internal/domain"
	"github.com/readloopapp/readloop-server/internal/service"
	"github.com/readloopapp/readloop-server/internal/store"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns a page of the catalogue, optionally filtered by genre",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a single catalogue entry",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "createBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books",
		Summary:     "Create book",
		Description: "Adds a book to the catalogue (admin only)",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Replaces a book's catalogue fields (admin only)",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Description: "Removes a book and its shelf entries and reviews (admin only)",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres",
		Summary:     "List genres",
		Description: "Returns the distinct genres present in the catalogue",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListGenres)
}

// === DTOs ===

// ListBooksInput contains query parameters for listing the catalogue.
type ListBooksInput struct {
	Authorization string `header:"Authorization"`
	Genre         string `query:"genre" doc:"Filter by exact genre"`
	Sort          string `query:"sort" enum:"recent,title,rating" default:"recent" doc:"Sort order"`
	Limit         int    `query:"limit" default:"50" minimum:"1" maximum:"200" doc:"Items per page"`
	Offset        int    `query:"offset" default:"0" minimum:"0" doc:"Items to skip"`
}

// ListBooksResponse contains a page of books.
type ListBooksResponse struct {
	Books []*domain.Book `json:"books" doc:"Books"`
}

// ListBooksOutput wraps the list books response for Huma.
type ListBooksOutput struct {
	Body ListBooksResponse
}

// GetBookInput contains parameters for getting a book.
type GetBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body *domain.Book
}

// BookRequest is the request body for creating or updating a book.
type BookRequest struct {
	Title       string   `json:"title" doc:"Book title"`
	Subtitle    string   `json:"subtitle,omitempty" doc:"Subtitle"`
	Description string   `json:"description,omitempty" doc:"Description (Markdown)"`
	Authors     []string `json:"authors" doc:"Author names"`
	Genres      []string `json:"genres,omitempty" doc:"Genres"`
	ISBN        string   `json:"isbn,omitempty" doc:"ISBN"`
	Publisher   string   `json:"publisher,omitempty" doc:"Publisher"`
	PublishYear string   `json:"publish_year,omitempty" doc:"Publish year"`
	Language    string   `json:"language,omitempty" doc:"Language name or code"`
	PageCount   int      `json:"page_count,omitempty" doc:"Page count"`
}

func (r BookRequest) toInput() service.BookInput {
	return service.BookInput{
		Title:       r.Title,
		Subtitle:    r.Subtitle,
		Description: r.Description,
		Authors:     r.Authors,
		Genres:      r.Genres,
		ISBN:        r.ISBN,
		Publisher:   r.Publisher,
		PublishYear: r.PublishYear,
		Language:    r.Language,
		PageCount:   r.PageCount,
	}
}

// CreateBookInput wraps the create book request for Huma.
type CreateBookInput struct {
	Authorization string `header:"Authorization"`
	Body          BookRequest
}

// UpdateBookInput wraps the update book request for Huma.
type UpdateBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	Body          BookRequest
}

// DeleteBookInput contains parameters for deleting a book.
type DeleteBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// ListGenresInput contains parameters for listing genres.
type ListGenresInput struct {
	Authorization string `header:"Authorization"`
}

// ListGenresResponse contains the catalogue's genres.
type ListGenresResponse struct {
	Genres []string `json:"genres" doc:"Distinct genres"`
}

// ListGenresOutput wraps the list genres response for Huma.
type ListGenresOutput struct {
	Body ListGenresResponse
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	books, err := s.services.Book.ListBooks(ctx, store.BookListOptions{
		Genre:  input.Genre,
		Sort:   input.Sort,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, err
	}

	return &ListBooksOutput{Body: ListBooksResponse{Books: books}}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	book, err := s.services.Book.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: book}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	book, err := s.services.Book.CreateBook(ctx, input.Body.toInput())
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: book}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	book, err := s.services.Book.UpdateBook(ctx, input.ID, input.Body.toInput())
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: book}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *DeleteBookInput) (*MessageOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Book.DeleteBook(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book deleted"}}, nil
}

func (s *Server) handleListGenres(ctx context.Context, _ *ListGenresInput) (*ListGenresOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	genres, err := s.services.Book.ListGenres(ctx)
	if err != nil {
		return nil, err
	}

	if genres == nil {
		genres = []string{}
	}

	return &ListGenresOutput{Body: ListGenresResponse{Genres: genres}}, nil
}
