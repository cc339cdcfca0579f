package journal

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Store owns the SQLite database holding methods and trades. It is created
// once with Open, shared by the repositories and the stats engine, and torn
// down with Close.
//
// All access goes through a single connection, so writes are serialized.
type Store struct {
	mu  sync.RWMutex
	db  *sql.DB
	log *zap.Logger
}

// Open opens (creating if needed) the database at path, enables foreign keys
// and applies Schema. A failure here is fatal to startup.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if path == "" {
		return nil, validationErrorf("database path is required")
	}

	// The file: form is read as a URI, so #, ? and % in path must be escaped.
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", (&url.URL{Path: path}).EscapedPath())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, storageError("open database", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, storageError("apply schema", err)
	}

	log.Debug("journal store opened", zap.String("path", path))
	return &Store{db: db, log: log.Named("store")}, nil
}

// DB returns the underlying handle, or ErrNotInitialized if the store was
// never opened or has been closed.
func (s *Store) DB() (*sql.DB, error) {
	if s == nil {
		return nil, ErrNotInitialized
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

// withTx runs fn inside a transaction, committing on nil and rolling back
// otherwise. fn must only use tx: the store has one connection and any query
// on the plain handle would wait for it forever.
func (s *Store) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	db, err := s.DB()
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storageError(op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return storageError(op, err)
	}
	if err := tx.Commit(); err != nil {
		return storageError(op, err)
	}
	return nil
}

// Close releases the connection. Closing twice is a no-op; every later call
// on the store returns ErrNotInitialized.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
