package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/readloopapp/readloop-server/internal/domain"
)

func (s *Server) registerCoverRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getBookCover",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/cover",
		Summary:     "Get book cover",
		Description: "Redirects to the cover image for a book",
		Tags:        []string{"Covers"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBookCover)

	huma.Register(s.api, huma.Operation{
		OperationID:  "uploadBookCover",
		Method:       http.MethodPost,
		Path:         "/api/v1/books/{id}/cover",
		Summary:      "Upload book cover",
		Description:  "Uploads a cover image for a book (admin only)",
		Tags:         []string{"Covers"},
		Security:     []map[string][]string{{"bearer": {}}},
		MaxBodyBytes: MaxUploadSize,
	}, s.handleUploadBookCover)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBookCover",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}/cover",
		Summary:     "Delete book cover",
		Description: "Deletes the cover image for a book (admin only)",
		Tags:        []string{"Covers"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBookCover)

	// Direct chi route for cover streaming, huma can't serve raw bytes.
	s.router.Get("/covers/{path}", s.handleServeCover)
}

// === DTOs ===

type GetBookCoverInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

type CoverRedirectOutput struct {
	Status   int
	Location string `header:"Location"`
}

func (o *CoverRedirectOutput) StatusCode() int {
	return o.Status
}

type UploadBookCoverInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	RawBody       []byte
}

// CoverOutput wraps the processed cover metadata for Huma.
type CoverOutput struct {
	Body *domain.CoverImage
}

type DeleteBookCoverInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// === Handlers ===

func (s *Server) handleGetBookCover(ctx context.Context, input *GetBookCoverInput) (*CoverRedirectOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if book.CoverImage == nil || book.CoverImage.Path == "" {
		return nil, huma.Error404NotFound("Book has no cover")
	}

	return &CoverRedirectOutput{
		Status:   http.StatusTemporaryRedirect,
		Location: "/covers/" + book.CoverImage.Path,
	}, nil
}

func (s *Server) handleUploadBookCover(ctx context.Context, input *UploadBookCoverInput) (*CoverOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if len(input.RawBody) > MaxUploadSize {
		return nil, huma.NewError(http.StatusRequestEntityTooLarge, "Cover image too large")
	}

	cover, err := s.services.Cover.Upload(ctx, input.ID, input.RawBody)
	if err != nil {
		return nil, err
	}

	return &CoverOutput{Body: cover}, nil
}

func (s *Server) handleDeleteBookCover(ctx context.Context, input *DeleteBookCoverInput) (*MessageOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Cover.Remove(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Cover deleted"}}, nil
}

func (s *Server) handleServeCover(w http.ResponseWriter, r *http.Request) {
	// The path is the book ID, optionally with a _thumb suffix and a
	// .jpg extension: {id}.jpg or {id}_thumb.jpg.
	id := chi.URLParam(r, "path")
	if id == "" {
		http.Error(w, "path required", http.StatusBadRequest)
		return
	}
	id = strings.TrimSuffix(id, ".jpg")

	var data []byte
	var err error
	if base, ok := strings.CutSuffix(id, "_thumb"); ok {
		data, err = s.services.Cover.GetThumbnail(base)
	} else {
		data, err = s.services.Cover.Get(id)
	}
	if err != nil {
		http.Error(w, "cover not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", CacheOneWeek)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
