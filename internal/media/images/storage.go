// Package images provides cover image processing and storage.
package images

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Storage manages image filesystem operations.
// Thread-safe for concurrent operations.
type Storage struct {
	basePath string
	mu       sync.RWMutex // Protects file operations
}

// NewStorage creates a new Storage instance for book covers.
// basePath should be the data directory (e.g., ~/ReadLoop/data).
// Covers are stored in {basePath}/covers/.
func NewStorage(basePath string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	storagePath := filepath.Join(basePath, "covers")

	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create covers directory: %w", err)
	}

	return &Storage{
		basePath: storagePath,
	}, nil
}

// Save stores full-size image data for a book.
// Filename format: {id}.jpg.
func (s *Storage) Save(id string, imgData []byte) error {
	return s.write(s.Path(id), id, imgData)
}

// SaveThumbnail stores thumbnail image data for a book.
// Filename format: {id}_thumb.jpg.
func (s *Storage) SaveThumbnail(id string, imgData []byte) error {
	return s.write(s.ThumbnailPath(id), id, imgData)
}

func (s *Storage) write(path, id string, imgData []byte) error {
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}
	if len(imgData) == 0 {
		return fmt.Errorf("image data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(path, imgData, 0644); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}

	return nil
}

// Get retrieves full-size image data for a book.
func (s *Storage) Get(id string) ([]byte, error) {
	return s.read(s.Path(id), id)
}

// GetThumbnail retrieves thumbnail image data for a book.
func (s *Storage) GetThumbnail(id string) ([]byte, error) {
	return s.read(s.ThumbnailPath(id), id)
}

func (s *Storage) read(path, id string) ([]byte, error) {
	if id == "" {
		return nil, fmt.Errorf("ID cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image not found for %s: %w", id, err)
		}
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}

	return data, nil
}

// Exists checks if a full-size image exists for a book.
func (s *Storage) Exists(id string) bool {
	if id == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.Path(id))
	return err == nil
}

// Delete removes a book's cover and thumbnail. Missing files are not errors.
func (s *Storage) Delete(id string) error {
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, path := range []string{s.Path(id), s.ThumbnailPath(id)} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete image file: %w", err)
		}
	}

	return nil
}

// Hash computes the SHA256 hash of a book's cover.
// Returns a hex-encoded string for ETag/cache validation.
func (s *Storage) Hash(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("ID cannot be empty")
	}

	data, err := s.Get(id)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// Filename returns the serve name for a book's cover, relative to the
// covers directory.
func (s *Storage) Filename(id string) string {
	return fmt.Sprintf("%s.jpg", id)
}

// ThumbnailFilename returns the serve name for a book's thumbnail.
func (s *Storage) ThumbnailFilename(id string) string {
	return fmt.Sprintf("%s_thumb.jpg", id)
}

// Path returns the full filesystem path for a book's cover.
func (s *Storage) Path(id string) string {
	return filepath.Join(s.basePath, s.Filename(id))
}

// ThumbnailPath returns the full filesystem path for a book's thumbnail.
func (s *Storage) ThumbnailPath(id string) string {
	return filepath.Join(s.basePath, s.ThumbnailFilename(id))
}
