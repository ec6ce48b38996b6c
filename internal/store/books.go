package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/readloopapp/readloop-server/internal/domain"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, created_at, updated_at,
	isbn, title, subtitle, description, publisher, publish_year,
	language, open_library_id, authors, genres, page_count,
	average_rating, ratings_count,
	cover_path, cover_thumbnail_path, cover_blurhash,
	cover_width, cover_height, cover_size`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		createdAt string
		updatedAt string
		isbn      sql.NullString
		subtitle  sql.NullString
		desc      sql.NullString
		publisher sql.NullString
		publishYr sql.NullString
		language  sql.NullString
		olID      sql.NullString
		authors   string
		genres    string

		coverPath     sql.NullString
		coverThumb    sql.NullString
		coverBlurhash sql.NullString
		coverWidth    sql.NullInt64
		coverHeight   sql.NullInt64
		coverSize     sql.NullInt64
	)

	err := scanner.Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
		&isbn,
		&b.Title,
		&subtitle,
		&desc,
		&publisher,
		&publishYr,
		&language,
		&olID,
		&authors,
		&genres,
		&b.PageCount,
		&b.AverageRating,
		&b.RatingsCount,
		&coverPath,
		&coverThumb,
		&coverBlurhash,
		&coverWidth,
		&coverHeight,
		&coverSize,
	)
	if err != nil {
		return nil, err
	}

	// Parse timestamps.
	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	// Optional string fields.
	if isbn.Valid {
		b.ISBN = isbn.String
	}
	if subtitle.Valid {
		b.Subtitle = subtitle.String
	}
	if desc.Valid {
		b.Description = desc.String
	}
	if publisher.Valid {
		b.Publisher = publisher.String
	}
	if publishYr.Valid {
		b.PublishYear = publishYr.String
	}
	if language.Valid {
		b.Language = language.String
	}
	if olID.Valid {
		b.OpenLibraryID = olID.String
	}

	// JSON array columns.
	b.Authors, err = unmarshalStrings(authors)
	if err != nil {
		return nil, err
	}
	b.Genres, err = unmarshalStrings(genres)
	if err != nil {
		return nil, err
	}

	// Cover image - only set if cover_path is present.
	if coverPath.Valid {
		b.CoverImage = &domain.CoverImage{
			Path:          coverPath.String,
			ThumbnailPath: coverThumb.String,
			Blurhash:      coverBlurhash.String,
			Width:         int(coverWidth.Int64),
			Height:        int(coverHeight.Int64),
			Size:          coverSize.Int64,
		}
	}

	return &b, nil
}

// bookCoverFields flattens the optional cover struct for insert/update args.
func bookCoverFields(b *domain.Book) (path, thumb, blurhash sql.NullString, width, height, size sql.NullInt64) {
	if b.CoverImage == nil {
		return
	}
	path = nullString(b.CoverImage.Path)
	thumb = nullString(b.CoverImage.ThumbnailPath)
	blurhash = nullString(b.CoverImage.Blurhash)
	width = sql.NullInt64{Int64: int64(b.CoverImage.Width), Valid: true}
	height = sql.NullInt64{Int64: int64(b.CoverImage.Height), Valid: true}
	size = sql.NullInt64{Int64: b.CoverImage.Size, Valid: true}
	return
}

// CreateBook inserts a new book into the catalogue and indexes it for search.
// Returns ErrAlreadyExists if the book ID already exists.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	coverPath, coverThumb, coverBlurhash, coverWidth, coverHeight, coverSize := bookCoverFields(book)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (
			id, created_at, updated_at,
			isbn, title, subtitle, description, publisher, publish_year,
			language, open_library_id, authors, genres, page_count,
			average_rating, ratings_count,
			cover_path, cover_thumbnail_path, cover_blurhash,
			cover_width, cover_height, cover_size
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
		nullString(book.ISBN),
		book.Title,
		nullString(book.Subtitle),
		nullString(book.Description),
		nullString(book.Publisher),
		nullString(book.PublishYear),
		nullString(book.Language),
		nullString(book.OpenLibraryID),
		marshalStrings(book.Authors),
		marshalStrings(book.Genres),
		book.PageCount,
		book.AverageRating,
		book.RatingsCount,
		coverPath,
		coverThumb,
		coverBlurhash,
		coverWidth,
		coverHeight,
		coverSize,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrAlreadyExists
		}
		return err
	}

	if err := s.indexer.IndexBook(book); err != nil {
		s.logger.Warn("index book failed", "book_id", book.ID, "error", err)
	}
	return nil
}

// GetBook retrieves a book by ID.
// Returns ErrNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetBooksByIDs retrieves multiple books in one query.
// Missing IDs are silently skipped; order follows the input order.
func (s *Store) GetBooksByIDs(ctx context.Context, ids []string) ([]*domain.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*domain.Book, len(ids))
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		byID[b.ID] = b
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	books := make([]*domain.Book, 0, len(byID))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			books = append(books, b)
		}
	}
	return books, nil
}

// BookListOptions filters and sorts catalogue listings.
type BookListOptions struct {
	Genre  string // Exact genre match (within the JSON genres array)
	Sort   string // "title", "rating", "recent" (default)
	Limit  int
	Offset int
}

// ListBooks returns a page of the catalogue, filtered and sorted.
func (s *Store) ListBooks(ctx context.Context, opts BookListOptions) ([]*domain.Book, error) {
	if opts.Limit <= 0 || opts.Limit > 200 {
		opts.Limit = 50
	}

	query := `SELECT ` + bookColumns + ` FROM books`
	var args []any

	if opts.Genre != "" {
		// Genres are a JSON array; EXISTS over json_each gives exact element match.
		query += ` WHERE EXISTS (SELECT 1 FROM json_each(books.genres) WHERE json_each.value = ?)`
		args = append(args, opts.Genre)
	}

	switch opts.Sort {
	case "title":
		query += ` ORDER BY title COLLATE NOCASE ASC`
	case "rating":
		query += ` ORDER BY average_rating DESC, ratings_count DESC`
	default:
		query += ` ORDER BY created_at DESC`
	}

	query += ` LIMIT ? OFFSET ?`
	args = append(args, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

// UpdateBook performs a full row update on an existing book and reindexes it.
// Rating aggregates are not touched here; they only change with review writes.
// Returns ErrNotFound if the book does not exist.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	coverPath, coverThumb, coverBlurhash, coverWidth, coverHeight, coverSize := bookCoverFields(book)

	result, err := s.db.ExecContext(ctx, `
		UPDATE books SET
			updated_at = ?,
			isbn = ?,
			title = ?,
			subtitle = ?,
			description = ?,
			publisher = ?,
			publish_year = ?,
			language = ?,
			open_library_id = ?,
			authors = ?,
			genres = ?,
			page_count = ?,
			cover_path = ?,
			cover_thumbnail_path = ?,
			cover_blurhash = ?,
			cover_width = ?,
			cover_height = ?,
			cover_size = ?
		WHERE id = ?`,
		formatTime(book.UpdatedAt),
		nullString(book.ISBN),
		book.Title,
		nullString(book.Subtitle),
		nullString(book.Description),
		nullString(book.Publisher),
		nullString(book.PublishYear),
		nullString(book.Language),
		nullString(book.OpenLibraryID),
		marshalStrings(book.Authors),
		marshalStrings(book.Genres),
		book.PageCount,
		coverPath,
		coverThumb,
		coverBlurhash,
		coverWidth,
		coverHeight,
		coverSize,
		book.ID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	if err := s.indexer.IndexBook(book); err != nil {
		s.logger.Warn("reindex book failed", "book_id", book.ID, "error", err)
	}
	return nil
}

// DeleteBook removes a book from the catalogue and the search index.
// Shelf entries and reviews cascade via foreign keys.
// Returns ErrNotFound if the book does not exist.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	if err := s.indexer.DeleteBook(id); err != nil {
		s.logger.Warn("deindex book failed", "book_id", id, "error", err)
	}
	return nil
}

// ListGenres returns the distinct genres present in the catalogue.
func (s *Store) ListGenres(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT json_each.value
		FROM books, json_each(books.genres)
		ORDER BY json_each.value COLLATE NOCASE ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genres []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}
