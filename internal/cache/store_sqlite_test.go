package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"), time.Hour)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "fh", "ph"); err != nil || ok {
		t.Fatalf("expected miss on fresh database, ok=%v err=%v", ok, err)
	}

	if err := store.Put(ctx, "fh", "ph", []byte(`{"report":"x"}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	payload, ok, err := store.Get(ctx, "fh", "ph")
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if string(payload) != `{"report":"x"}` {
		t.Fatalf("payload = %q", payload)
	}

	// Replacement keeps a single row per folder.
	if err := store.Put(ctx, "fh", "ph2", []byte("v2")); err != nil {
		t.Fatalf("put replace: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "fh", "ph"); ok {
		t.Fatalf("stale pdfs hash should miss after replacement")
	}
	payload, ok, _ = store.Get(ctx, "fh", "ph2")
	if !ok || string(payload) != "v2" {
		t.Fatalf("expected replacement payload, ok=%v payload=%q", ok, payload)
	}
}

func TestSQLiteStoreExpiry(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"), time.Hour)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	current := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return current }

	if err := store.Put(ctx, "fh", "ph", []byte("payload")); err != nil {
		t.Fatalf("put: %v", err)
	}

	current = current.Add(2 * time.Hour)
	if _, ok, _ := store.Get(ctx, "fh", "ph"); ok {
		t.Fatalf("expected miss after TTL")
	}

	if err := store.Put(ctx, "old", "ph", []byte("payload")); err != nil {
		t.Fatalf("put: %v", err)
	}
	current = current.Add(3 * time.Hour)
	deleted, err := store.Purge(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted = %d, want 1", deleted)
	}
}
