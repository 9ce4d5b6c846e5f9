// Package state persists per-document indexing records so unchanged files can
// be skipped on later runs.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Record holds what an indexing pass needs to decide skip vs reindex.
type Record struct {
	Path       string
	Crc        uint32
	IndexedAt  time.Time
	ChunkCount int
}

// Store is a sqlite-backed keyed table of Records.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS index_records (
	path        TEXT PRIMARY KEY,
	crc         INTEGER NOT NULL,
	indexed_at  TEXT NOT NULL,
	chunk_count INTEGER NOT NULL
)`

// Open creates or opens the record database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating index_records table: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the record for path, or nil when the path was never indexed.
func (s *Store) Get(ctx context.Context, path string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT path, crc, indexed_at, chunk_count FROM index_records WHERE path = ?", path)

	var rec Record
	var indexedAt string
	err := row.Scan(&rec.Path, &rec.Crc, &indexedAt, &rec.ChunkCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying record %s: %w", path, err)
	}

	rec.IndexedAt, err = time.Parse(time.RFC3339Nano, indexedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing indexed_at for %s: %w", path, err)
	}

	return &rec, nil
}

// Put inserts or replaces the record for rec.Path.
func (s *Store) Put(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO index_records (path, crc, indexed_at, chunk_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			crc = excluded.crc,
			indexed_at = excluded.indexed_at,
			chunk_count = excluded.chunk_count
	`, rec.Path, rec.Crc, rec.IndexedAt.Format(time.RFC3339Nano), rec.ChunkCount)
	if err != nil {
		return fmt.Errorf("storing record %s: %w", rec.Path, err)
	}

	return nil
}

// Delete removes the record for path. Missing paths are not an error.
func (s *Store) Delete(ctx context.Context, path string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM index_records WHERE path = ?", path); err != nil {
		return fmt.Errorf("deleting record %s: %w", path, err)
	}

	return nil
}

// All returns every stored record.
func (s *Store) All(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT path, crc, indexed_at, chunk_count FROM index_records ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var rec Record
		var indexedAt string
		if err := rows.Scan(&rec.Path, &rec.Crc, &indexedAt, &rec.ChunkCount); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		rec.IndexedAt, err = time.Parse(time.RFC3339Nano, indexedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing indexed_at for %s: %w", rec.Path, err)
		}

		recs = append(recs, rec)
	}

	return recs, rows.Err()
}
