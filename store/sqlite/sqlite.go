/*
Package sqlite provides a SQLite-backed DocumentStore.

PURPOSE:
  Production persistence for the desk-booking engine. The engine sees
  an opaque document store; here every document is one row in a
  single table keyed by (collection, key).

SCHEMA:
  documents(collection, key, doc, updated_at) with a composite primary
  key. Key order inside a collection is the engine's ordering contract
  (DateKeys and audit IDs are built to sort correctly as text).

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/deskbook.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - booking/store.go: Interface definition and error contract
  - booking/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/deskbook/booking"
)

// Store implements booking.DocumentStore using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		key        TEXT NOT NULL,
		doc        BLOB NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (collection, key)
	);

	-- List queries walk one collection in key order (hot path for
	-- audit newest-first retrieval).
	CREATE INDEX IF NOT EXISTS idx_documents_collection_key
		ON documents(collection, key DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) GetEntry(ctx context.Context, collection, key string) ([]byte, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM documents WHERE collection = ? AND key = ?`,
		collection, key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s/%s: %w", collection, key, booking.ErrNotFound)
	}
	if err != nil {
		return nil, &booking.StorageError{Op: "get", Collection: collection, Key: key, Err: err}
	}
	return doc, nil
}

func (s *Store) SetEntry(ctx context.Context, collection, key string, doc []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, key, doc, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (collection, key) DO UPDATE SET
			doc = excluded.doc,
			updated_at = excluded.updated_at`,
		collection, key, doc, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return &booking.StorageError{Op: "set", Collection: collection, Key: key, Err: err}
	}
	return nil
}

func (s *Store) ListEntries(ctx context.Context, collection string, opts booking.ListOptions) ([]booking.KeyedDocument, error) {
	query := `SELECT key, doc FROM documents WHERE collection = ? ORDER BY key`
	if opts.Descending {
		query += ` DESC`
	}
	args := []any{collection}
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &booking.StorageError{Op: "list", Collection: collection, Err: err}
	}
	defer rows.Close()

	var result []booking.KeyedDocument
	for rows.Next() {
		var kd booking.KeyedDocument
		if err := rows.Scan(&kd.Key, &kd.Doc); err != nil {
			return nil, &booking.StorageError{Op: "list", Collection: collection, Err: err}
		}
		result = append(result, kd)
	}
	if err := rows.Err(); err != nil {
		return nil, &booking.StorageError{Op: "list", Collection: collection, Err: err}
	}
	return result, nil
}

func (s *Store) DeleteEntry(ctx context.Context, collection, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND key = ?`,
		collection, key)
	if err != nil {
		return &booking.StorageError{Op: "delete", Collection: collection, Key: key, Err: err}
	}
	return nil
}
