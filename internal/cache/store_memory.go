package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	pdfsHash  string
	payload   []byte
	createdAt time.Time
}

// MemoryStore is an in-process Store used in tests and as a fallback when no
// durable backend is configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore constructs an empty in-memory cache.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached payload if the PDF hash matches and the entry is fresh.
func (s *MemoryStore) Get(_ context.Context, folderHash, pdfsHash string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[folderHash]
	if !ok || entry.pdfsHash != pdfsHash {
		return nil, false, nil
	}
	if s.now().Sub(entry.createdAt) >= s.ttl {
		delete(s.entries, folderHash)
		return nil, false, nil
	}
	return entry.payload, true, nil
}

// Put stores the payload for the folder.
func (s *MemoryStore) Put(_ context.Context, folderHash, pdfsHash string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[folderHash] = memoryEntry{
		pdfsHash:  pdfsHash,
		payload:   payload,
		createdAt: s.now(),
	}
	return nil
}

// Purge removes expired entries.
func (s *MemoryStore) Purge(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for key, entry := range s.entries {
		if s.now().Sub(entry.createdAt) >= s.ttl {
			delete(s.entries, key)
			deleted++
		}
	}
	return deleted, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
