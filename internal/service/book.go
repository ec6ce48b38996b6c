package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/readloopapp/readloop-server/internal/domain"
	domainerrors "github.com/readloopapp/readloop-server/internal/errors"
	"github.com/readloopapp/readloop-server/internal/id"
	"github.com/readloopapp/readloop-server/internal/normalize"
	"github.com/readloopapp/readloop-server/internal/sse"
	"github.com/readloopapp/readloop-server/internal/store"
)

// BookService manages the shared catalogue. Catalogue writes are
// admin-only; every user reads from the same pool of books.
type BookService struct {
	store      *store.Store
	sseManager *sse.Manager
	logger     *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(store *store.Store, sseManager *sse.Manager, logger *slog.Logger) *BookService {
	return &BookService{
		store:      store,
		sseManager: sseManager,
		logger:     logger,
	}
}

// BookInput carries the editable catalogue fields for create and update.
type BookInput struct {
	Title       string   `json:"title" validate:"required,min=1,max=500"`
	Subtitle    string   `json:"subtitle,omitempty" validate:"max=500"`
	Description string   `json:"description,omitempty"`
	Authors     []string `json:"authors" validate:"required,min=1,dive,min=1,max=200"`
	Genres      []string `json:"genres,omitempty" validate:"dive,min=1,max=100"`
	ISBN        string   `json:"isbn,omitempty" validate:"max=20"`
	Publisher   string   `json:"publisher,omitempty" validate:"max=200"`
	PublishYear string   `json:"publish_year,omitempty" validate:"max=10"`
	Language    string   `json:"language,omitempty" validate:"max=50"`
	PageCount   int      `json:"page_count,omitempty" validate:"gte=0"`
}

// clean strips null bytes and surrounding whitespace from catalogue input.
func clean(s string) string {
	return strings.TrimSpace(normalize.SanitizeString(s))
}

// cleanList cleans each entry and drops the ones left empty.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, v := range items {
		if v = clean(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// sanitize cleans the input in place. It runs before validation, so a
// whitespace-only title fails `required` and empty author/genre entries
// are dropped rather than rejected.
func (in *BookInput) sanitize() {
	in.Title = clean(in.Title)
	in.Subtitle = clean(in.Subtitle)
	in.Description = strings.TrimSpace(in.Description)
	in.Authors = cleanList(in.Authors)
	in.Genres = cleanList(in.Genres)
	in.ISBN = strings.TrimSpace(in.ISBN)
	in.Publisher = clean(in.Publisher)
	in.PublishYear = strings.TrimSpace(in.PublishYear)
}

func (in *BookInput) apply(book *domain.Book) {
	book.Title = in.Title
	book.Subtitle = in.Subtitle
	book.Description = in.Description
	book.Authors = in.Authors
	book.Genres = in.Genres
	book.ISBN = in.ISBN
	book.Publisher = in.Publisher
	book.PublishYear = in.PublishYear
	book.Language = normalize.LanguageCode(in.Language)
	book.PageCount = in.PageCount
}

// CreateBook adds a book to the catalogue.
func (s *BookService) CreateBook(ctx context.Context, input BookInput) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	input.sanitize()
	if err := validate.Validate(input); err != nil {
		return nil, err
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := &domain.Book{}
	book.ID = bookID
	book.InitTimestamps()
	input.apply(book)

	if err := s.store.CreateBook(ctx, book); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("a book with this ID already exists")
		}
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.logger.Info("book created",
		"book_id", book.ID,
		"title", book.Title,
	)

	s.sseManager.Publish(sse.NewBookCreatedEvent(book))

	return book, nil
}

// UpdateBook replaces a book's editable fields. Rating aggregates and the
// cover are managed elsewhere and survive the update.
func (s *BookService) UpdateBook(ctx context.Context, bookID string, input BookInput) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	input.sanitize()
	if err := validate.Validate(input); err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	input.apply(book)
	book.Touch()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	s.logger.Info("book updated", "book_id", book.ID)

	s.sseManager.Publish(sse.NewBookUpdatedEvent(book))

	return book, nil
}

// DeleteBook removes a book from the catalogue, along with every shelf
// entry, review and like that references it.
func (s *BookService) DeleteBook(ctx context.Context, bookID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("book not found")
		}
		return fmt.Errorf("delete book: %w", err)
	}

	s.logger.Info("book deleted", "book_id", bookID)

	s.sseManager.Publish(sse.NewBookDeletedEvent(bookID, time.Now()))

	return nil
}

// GetBook returns one book by ID.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// ListBooks returns a page of the catalogue.
func (s *BookService) ListBooks(ctx context.Context, opts store.BookListOptions) ([]*domain.Book, error) {
	books, err := s.store.ListBooks(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// ListGenres returns every distinct genre in the catalogue, sorted.
func (s *BookService) ListGenres(ctx context.Context) ([]string, error) {
	genres, err := s.store.ListGenres(ctx)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	return genres, nil
}
