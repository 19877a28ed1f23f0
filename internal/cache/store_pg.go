package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PGStore implements Store on Postgres. The report_cache table is created by
// the embedded goose migrations in internal/shared/storage/db.
type PGStore struct {
	DB  *sql.DB
	TTL time.Duration

	nowFn func() time.Time
}

// NewPGStore wraps an existing connection pool.
func NewPGStore(db *sql.DB, ttl time.Duration) *PGStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PGStore{DB: db, TTL: ttl, nowFn: time.Now}
}

func (s *PGStore) now() time.Time {
	if s.nowFn != nil {
		return s.nowFn()
	}
	return time.Now()
}

// Get returns the cached payload for the folder if fresh, deleting stale rows.
func (s *PGStore) Get(ctx context.Context, folderHash, pdfsHash string) ([]byte, bool, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT report_json, created_at FROM report_cache WHERE folder_path_hash = $1 AND pdfs_hash = $2`,
		folderHash, pdfsHash)

	var payload []byte
	var createdAt int64
	if err := row.Scan(&payload, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("pg cache get: %w", err)
	}

	if s.now().Unix()-createdAt >= int64(s.TTL.Seconds()) {
		if _, err := s.DB.ExecContext(ctx,
			`DELETE FROM report_cache WHERE folder_path_hash = $1`, folderHash); err != nil {
			return nil, false, fmt.Errorf("pg cache evict: %w", err)
		}
		return nil, false, nil
	}
	return payload, true, nil
}

// Put upserts the cached payload for the folder.
func (s *PGStore) Put(ctx context.Context, folderHash, pdfsHash string, payload []byte) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO report_cache (folder_path_hash, pdfs_hash, report_json, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (folder_path_hash)
		 DO UPDATE SET pdfs_hash = EXCLUDED.pdfs_hash, report_json = EXCLUDED.report_json, created_at = EXCLUDED.created_at`,
		folderHash, pdfsHash, payload, s.now().Unix())
	if err != nil {
		return fmt.Errorf("pg cache put: %w", err)
	}
	return nil
}

// Purge deletes entries older than the TTL.
func (s *PGStore) Purge(ctx context.Context) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM report_cache WHERE created_at < $1`,
		s.now().Unix()-int64(s.TTL.Seconds()))
	if err != nil {
		return 0, fmt.Errorf("pg cache purge: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return deleted, nil
}

// Close is a no-op: the pool is owned by the caller.
func (s *PGStore) Close() error {
	return nil
}
