// Package cache stores finished analysis responses keyed by folder path and
// PDF content hashes, with a fixed time-to-live.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long a cached report stays fresh.
const DefaultTTL = 72 * time.Hour

// Store is a TTL-bounded report cache. Get misses when the folder hash is
// unknown, the PDF contents changed, or the entry aged out; aged-out rows are
// deleted on read.
type Store interface {
	Get(ctx context.Context, folderHash, pdfsHash string) ([]byte, bool, error)
	Put(ctx context.Context, folderHash, pdfsHash string, payload []byte) error
	Purge(ctx context.Context) (int64, error)
	Close() error
}
