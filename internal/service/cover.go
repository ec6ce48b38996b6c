package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/readloopapp/readloop-server/internal/domain"
	domainerrors "github.com/readloopapp/readloop-server/internal/errors"
	"github.com/readloopapp/readloop-server/internal/media/images"
	"github.com/readloopapp/readloop-server/internal/sse"
	"github.com/readloopapp/readloop-server/internal/store"
)

// maxCoverUploadSize caps uploaded cover files.
const maxCoverUploadSize = 10 << 20

// CoverService handles cover uploads and serves the processed images.
type CoverService struct {
	store      *store.Store
	processor  *images.Processor
	storage    *images.Storage
	sseManager *sse.Manager
	logger     *slog.Logger
}

// NewCoverService creates a new cover service.
func NewCoverService(store *store.Store, processor *images.Processor, storage *images.Storage, sseManager *sse.Manager, logger *slog.Logger) *CoverService {
	return &CoverService{
		store:      store,
		processor:  processor,
		storage:    storage,
		sseManager: sseManager,
		logger:     logger,
	}
}

// Upload processes an uploaded image and attaches it as the book's cover,
// replacing any existing one. The image is re-encoded to JPEG, scaled
// down, and gets a thumbnail and blurhash.
func (s *CoverService) Upload(ctx context.Context, bookID string, data []byte) (*domain.CoverImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, domainerrors.Validation("cover image is empty")
	}
	if len(data) > maxCoverUploadSize {
		return nil, domainerrors.Validationf("cover image exceeds %d bytes", maxCoverUploadSize)
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	cover, err := s.processor.Process(bookID, data)
	if err != nil {
		return nil, domainerrors.Validation("could not decode cover image").WithCause(err)
	}

	book.CoverImage = cover
	book.Touch()
	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("save cover: %w", err)
	}

	s.logger.Info("cover uploaded",
		"book_id", bookID,
		"width", cover.Width,
		"height", cover.Height,
		"size", cover.Size,
	)

	s.sseManager.Publish(sse.NewBookUpdatedEvent(book))

	return cover, nil
}

// Remove deletes a book's cover image and its files.
func (s *CoverService) Remove(ctx context.Context, bookID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("book not found")
		}
		return fmt.Errorf("get book: %w", err)
	}
	if book.CoverImage == nil {
		return nil
	}

	book.CoverImage = nil
	book.Touch()
	if err := s.store.UpdateBook(ctx, book); err != nil {
		return fmt.Errorf("clear cover: %w", err)
	}

	if err := s.processor.Delete(bookID); err != nil {
		s.logger.Warn("failed to delete cover files", "error", err, "book_id", bookID)
	}

	s.logger.Info("cover removed", "book_id", bookID)

	s.sseManager.Publish(sse.NewBookUpdatedEvent(book))

	return nil
}

// Get returns the full-size cover image bytes for a book.
func (s *CoverService) Get(bookID string) ([]byte, error) {
	data, err := s.storage.Get(bookID)
	if err != nil {
		return nil, domainerrors.NotFound("cover not found")
	}
	return data, nil
}

// GetThumbnail returns the thumbnail bytes for a book's cover.
func (s *CoverService) GetThumbnail(bookID string) ([]byte, error) {
	data, err := s.storage.GetThumbnail(bookID)
	if err != nil {
		return nil, domainerrors.NotFound("cover not found")
	}
	return data, nil
}
