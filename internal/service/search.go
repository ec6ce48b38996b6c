package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/readloopapp/readloop-server/internal/search"
	"github.com/readloopapp/readloop-server/internal/store"
)

// SearchService fronts the full-text book index. Catalogue writes keep
// the index current through the store's indexer hook; this service only
// queries and rebuilds.
type SearchService struct {
	store  *store.Store
	index  *search.SearchIndex
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(store *store.Store, index *search.SearchIndex, logger *slog.Logger) *SearchService {
	return &SearchService{
		store:  store,
		index:  index,
		logger: logger,
	}
}

// Search runs a full-text query over the catalogue.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return result, nil
}

// Reindex drops the index and reindexes every book in the catalogue.
// Used after mapping changes or when the index and database drift.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	const pageSize = 200
	total := 0
	for offset := 0; ; offset += pageSize {
		books, err := s.store.ListBooks(ctx, store.BookListOptions{
			Limit:  pageSize,
			Offset: offset,
		})
		if err != nil {
			return total, fmt.Errorf("list books: %w", err)
		}
		if len(books) == 0 {
			break
		}

		docs := make([]*search.SearchDocument, len(books))
		for i, b := range books {
			docs[i] = search.BookToSearchDocument(b)
		}
		if err := s.index.IndexDocuments(docs); err != nil {
			return total, fmt.Errorf("index books: %w", err)
		}
		total += len(books)
	}

	s.logger.Info("search index rebuilt", "books", total)
	return total, nil
}
