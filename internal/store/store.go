// Package store provides SQLite-backed persistence for the ReadLoop server.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/readloopapp/readloop-server/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

// EventEmitter receives store change notifications for SSE broadcast.
// The store calls it after successful writes; implementations must not block.
type EventEmitter interface {
	Emit(event string, payload any)
}

// noopEmitter drops all events. Used until the SSE manager is wired in.
type noopEmitter struct{}

func (noopEmitter) Emit(string, any) {}

// SearchIndexer maintains the book search index alongside book writes.
type SearchIndexer interface {
	IndexBook(book *domain.Book) error
	DeleteBook(id string) error
}

// noopSearchIndexer ignores indexing requests.
type noopSearchIndexer struct{}

func (noopSearchIndexer) IndexBook(*domain.Book) error { return nil }
func (noopSearchIndexer) DeleteBook(string) error      { return nil }

// Store provides SQLite-backed persistence for the ReadLoop server.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	emitter EventEmitter
	indexer SearchIndexer
}

// Open creates a new SQLite store at the given path.
// It configures WAL mode, sets pragmas, and runs schema migrations.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite allows a single writer; keep the pool small.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	// Run schema migration.
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &Store{
		db:      db,
		logger:  logger,
		emitter: noopEmitter{},
		indexer: noopSearchIndexer{},
	}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is usable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SetEventEmitter sets the emitter used for change notifications.
func (s *Store) SetEventEmitter(emitter EventEmitter) {
	if emitter != nil {
		s.emitter = emitter
	}
}

// SetSearchIndexer sets the search indexer used for maintaining the book index.
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	if indexer != nil {
		s.indexer = indexer
	}
}

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a RFC3339Nano string back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// parseNullableTime parses an optional time string.
func parseNullableTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// nullString returns a sql.NullString from a string, mapping empty to NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullTimeString returns a sql.NullString from a *time.Time.
func nullTimeString(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

// boolToInt converts a bool to an int for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// marshalStrings encodes a string slice as a JSON array column value.
// nil and empty both store as "[]".
func marshalStrings(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// unmarshalStrings decodes a JSON array column value into a string slice.
func unmarshalStrings(raw string) ([]string, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("unmarshal string array: %w", err)
	}
	return values, nil
}
