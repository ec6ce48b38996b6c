package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/readloopapp/readloop-server/internal/domain"
	domainerrors "github.com/readloopapp/readloop-server/internal/errors"
	"github.com/readloopapp/readloop-server/internal/id"
	"github.com/readloopapp/readloop-server/internal/media/covers"
	"github.com/readloopapp/readloop-server/internal/metadata/openlibrary"
	"github.com/readloopapp/readloop-server/internal/normalize"
	"github.com/readloopapp/readloop-server/internal/sse"
	"github.com/readloopapp/readloop-server/internal/store"
)

// MetadataService searches Open Library and imports works into the
// catalogue, cover included.
type MetadataService struct {
	store      *store.Store
	client     *openlibrary.Client
	downloader *covers.Downloader
	sseManager *sse.Manager
	logger     *slog.Logger
}

// NewMetadataService creates a new metadata service. client may be nil
// when metadata lookups are disabled in config.
func NewMetadataService(store *store.Store, client *openlibrary.Client, downloader *covers.Downloader, sseManager *sse.Manager, logger *slog.Logger) *MetadataService {
	return &MetadataService{
		store:      store,
		client:     client,
		downloader: downloader,
		sseManager: sseManager,
		logger:     logger,
	}
}

// Enabled reports whether metadata lookups are configured.
func (s *MetadataService) Enabled() bool {
	return s.client != nil
}

// Search proxies a catalogue search to Open Library.
func (s *MetadataService) Search(ctx context.Context, params openlibrary.SearchParams) ([]openlibrary.WorkHit, error) {
	if s.client == nil {
		return nil, domainerrors.Validation("metadata lookups are disabled")
	}

	results, err := s.client.Search(ctx, params)
	if err != nil {
		return nil, mapMetadataError(err)
	}
	return results, nil
}

// ImportWork fetches a work from Open Library and creates a catalogue
// book from it. The search result supplies the edition-level fields
// (authors, year, ISBN) that the work record lacks; the work record
// supplies the description and subjects. The cover downloads after the
// book row commits so a slow image never blocks the import.
func (s *MetadataService) ImportWork(ctx context.Context, result openlibrary.WorkHit) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.client == nil {
		return nil, domainerrors.Validation("metadata lookups are disabled")
	}
	if !openlibrary.ValidWorkID(result.WorkID) {
		return nil, domainerrors.Validationf("invalid work ID %q", result.WorkID)
	}

	work, err := s.client.GetWork(ctx, result.WorkID)
	if err != nil {
		return nil, mapMetadataError(err)
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := &domain.Book{
		Title:         work.Title,
		Subtitle:      work.Subtitle,
		Description:   work.Description,
		Genres:        work.Subjects,
		OpenLibraryID: work.WorkID,
		Authors:       result.Authors,
		ISBN:          result.ISBN,
		Publisher:     result.Publisher,
	}
	book.ID = bookID
	book.InitTimestamps()
	if book.Title == "" {
		book.Title = result.Title
	}
	if result.FirstPublishYear > 0 {
		book.PublishYear = strconv.Itoa(result.FirstPublishYear)
	}
	if len(result.Languages) > 0 {
		book.Language = normalize.LanguageCode(result.Languages[0])
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("this work is already in the catalogue")
		}
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.logger.Info("book imported",
		"book_id", book.ID,
		"work_id", work.WorkID,
		"title", book.Title,
	)

	coverURL := work.CoverURL
	if coverURL == "" {
		coverURL = result.CoverURL
	}
	if coverURL != "" && s.downloader != nil {
		if err := s.attachCover(ctx, book, coverURL); err != nil {
			// The book imported fine; a missing cover is recoverable.
			s.logger.Warn("failed to download cover",
				"error", err,
				"book_id", book.ID,
				"url", coverURL,
			)
		}
	}

	s.sseManager.Publish(sse.NewBookCreatedEvent(book))

	return book, nil
}

func (s *MetadataService) attachCover(ctx context.Context, book *domain.Book, url string) error {
	cover, err := s.downloader.Download(ctx, book.ID, url)
	if err != nil {
		return err
	}

	book.CoverImage = cover
	book.Touch()
	if err := s.store.UpdateBook(ctx, book); err != nil {
		return fmt.Errorf("save cover: %w", err)
	}
	return nil
}

// Close releases the underlying metadata client.
func (s *MetadataService) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// mapMetadataError converts Open Library client errors into user-facing ones.
func mapMetadataError(err error) error {
	switch {
	case errors.Is(err, openlibrary.ErrNotFound):
		return domainerrors.NotFound("work not found on Open Library")
	case errors.Is(err, openlibrary.ErrRateLimited):
		return domainerrors.Wrap(err, domainerrors.CodeConflict, "Open Library rate limit reached, try again shortly")
	case errors.Is(err, openlibrary.ErrBadRequest), errors.Is(err, openlibrary.ErrInvalidWorkID):
		return domainerrors.Validation("invalid metadata request")
	default:
		return fmt.Errorf("open library: %w", err)
	}
}
