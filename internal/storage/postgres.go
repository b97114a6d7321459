package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// DefaultTable is the table PostgresStore creates and uses.
const DefaultTable = "pixelpet_saves"

// PostgresStore keeps the blob in a single row of a key/value table.
type PostgresStore struct {
	db    *sql.DB
	table string
	key   string
}

// OpenPostgres connects to dsn and makes sure the table exists.
func OpenPostgres(ctx context.Context, dsn, key string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	s, err := NewPostgresStore(ctx, db, DefaultTable, key)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(ctx context.Context, db *sql.DB, table, key string) (*PostgresStore, error) {
	s := &PostgresStore{db: db, table: pq.QuoteIdentifier(table), key: key}
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+s.table+` (
			key TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", s.table, err)
	}
	return s, nil
}

// Load implements BlobStore.
func (s *PostgresStore) Load(ctx context.Context) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM `+s.table+` WHERE key = $1`, s.key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.key, err)
	}
	return []byte(data), nil
}

// Save implements BlobStore.
func (s *PostgresStore) Save(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO `+s.table+` (key, data, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		s.key, string(data))
	if err != nil {
		return fmt.Errorf("save %s: %w", s.key, err)
	}
	return nil
}

// Clear implements BlobStore.
func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM `+s.table+` WHERE key = $1`, s.key); err != nil {
		return fmt.Errorf("clear %s: %w", s.key, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
