package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS report_cache (
	folder_path_hash TEXT PRIMARY KEY,
	pdfs_hash TEXT NOT NULL,
	report_json BLOB NOT NULL,
	created_at INTEGER NOT NULL
);`

// SQLiteStore is the default cache backend, a single local database file.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteStore opens (creating if needed) the cache database at path.
func NewSQLiteStore(path string, ttl time.Duration) (*SQLiteStore, error) {
	if path == "" {
		path = "cache.db"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache at %q: %w", path, err)
	}
	// A single connection avoids "database is locked" errors under concurrent
	// requests.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set sqlite journal mode: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create report_cache table: %w", err)
	}
	return &SQLiteStore{db: db, ttl: ttl, now: time.Now}, nil
}

// Get returns the cached payload for the folder if the PDF contents still
// match and the entry is fresh. Expired rows are deleted.
func (s *SQLiteStore) Get(ctx context.Context, folderHash, pdfsHash string) ([]byte, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT report_json, created_at FROM report_cache WHERE folder_path_hash = ? AND pdfs_hash = ?`,
		folderHash, pdfsHash)

	var payload []byte
	var createdAt int64
	if err := row.Scan(&payload, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("sqlite cache get: %w", err)
	}

	if s.now().Unix()-createdAt >= int64(s.ttl.Seconds()) {
		if _, err := s.db.ExecContext(ctx,
			`DELETE FROM report_cache WHERE folder_path_hash = ?`, folderHash); err != nil {
			return nil, false, fmt.Errorf("sqlite cache evict: %w", err)
		}
		return nil, false, nil
	}
	return payload, true, nil
}

// Put inserts or replaces the cached payload for the folder.
func (s *SQLiteStore) Put(ctx context.Context, folderHash, pdfsHash string, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO report_cache (folder_path_hash, pdfs_hash, report_json, created_at) VALUES (?, ?, ?, ?)`,
		folderHash, pdfsHash, payload, s.now().Unix())
	if err != nil {
		return fmt.Errorf("sqlite cache put: %w", err)
	}
	return nil
}

// Purge deletes every entry older than the TTL and reports how many went.
func (s *SQLiteStore) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM report_cache WHERE created_at < ?`,
		s.now().Unix()-int64(s.ttl.Seconds()))
	if err != nil {
		return 0, fmt.Errorf("sqlite cache purge: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return deleted, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
