package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/readloopapp/readloop-server/internal/domain"
)

// mappingVersion is bumped whenever the index mapping changes. A stored
// index with a different version is rebuilt on startup.
const mappingVersion = "2"

// indexBatchSize chunks bulk writes so a full reindex stays bounded.
const indexBatchSize = 500

// SearchIndex wraps a Bleve index with catalogue-specific operations.
// All methods are safe for concurrent use; Rebuild takes the write lock
// so readers never see a half-replaced index.
type SearchIndex struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage
	Logger   *slog.Logger // Logger for operations (stderr text handler if nil)
}

// NewSearchIndex opens the on-disk index, recreating it when it is
// missing, corrupt, or was written with an older mapping version.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	indexPath := filepath.Join(opts.DataPath, "search.bleve")
	versionPath := filepath.Join(opts.DataPath, "search.version")

	index := openUsableIndex(indexPath, versionPath, logger)
	if index == nil {
		if err := os.RemoveAll(indexPath); err != nil {
			return nil, fmt.Errorf("remove old index: %w", err)
		}
		var err error
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0644); err != nil {
			logger.Warn("failed to write search version file", "error", err)
		}
		logger.Info("created new search index", "path", indexPath, "mapping_version", mappingVersion)
	}

	return &SearchIndex{
		index:  index,
		path:   indexPath,
		logger: logger,
	}, nil
}

// openUsableIndex returns the existing index when it can still serve
// the current mapping, nil when a fresh one is needed.
func openUsableIndex(indexPath, versionPath string, logger *slog.Logger) bleve.Index {
	if _, err := os.Stat(indexPath); err != nil {
		return nil
	}

	storedVersion, err := os.ReadFile(versionPath)
	switch {
	case err != nil:
		// Index predates version tracking.
		logger.Info("search index has no version file, will rebuild with current mapping",
			"new_version", mappingVersion)
		return nil
	case string(storedVersion) != mappingVersion:
		logger.Info("search index mapping version changed, will rebuild",
			"old_version", string(storedVersion),
			"new_version", mappingVersion)
		return nil
	}

	index, err := bleve.Open(indexPath)
	if err != nil {
		logger.Warn("failed to open existing index, will recreate",
			"path", indexPath, "error", err)
		return nil
	}
	logger.Info("opened existing search index", "path", indexPath)
	return index
}

// Close releases the underlying index.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexDocument indexes a single document.
func (s *SearchIndex) IndexDocument(doc *SearchDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// The map form keeps field names aligned with the mapping.
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexDocuments indexes documents in batches.
func (s *SearchIndex) IndexDocuments(docs []*SearchDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for chunk := range slices.Chunk(docs, indexBatchSize) {
		batch := s.index.NewBatch()
		for _, doc := range chunk {
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit index batch: %w", err)
		}
	}
	return nil
}

// DeleteDocument removes a document from the index.
func (s *SearchIndex) DeleteDocument(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// DeleteDocuments removes several documents in one batch.
func (s *SearchIndex) DeleteDocuments(ids []string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch := s.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	return s.index.Batch(batch)
}

// DocumentCount returns the total number of indexed documents.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild replaces the index with an empty one under the current
// mapping. It holds the write lock, blocking every other operation
// until the new index exists.
func (s *SearchIndex) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}

	index, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	s.index = index
	s.logger.Info("rebuilt search index", "path", s.path)
	return nil
}

// IndexBook converts a book to a search document and indexes it.
// Together with DeleteBook this lets the index plug directly into the
// store as its indexer hook, so catalogue writes keep search current.
func (s *SearchIndex) IndexBook(book *domain.Book) error {
	return s.IndexDocument(BookToSearchDocument(book))
}

// DeleteBook removes a book from the index.
func (s *SearchIndex) DeleteBook(id string) error {
	return s.DeleteDocument(id)
}
