package cache

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockPGStore(t *testing.T, now time.Time) (*PGStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	store := NewPGStore(db, time.Hour)
	store.nowFn = func() time.Time { return now }
	return store, mock
}

func TestPGStoreGetHit(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store, mock := newMockPGStore(t, now)

	rows := sqlmock.NewRows([]string{"report_json", "created_at"}).
		AddRow([]byte("payload"), now.Unix()-60)
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT report_json, created_at FROM report_cache WHERE folder_path_hash = $1 AND pdfs_hash = $2`)).
		WithArgs("fh", "ph").
		WillReturnRows(rows)

	payload, ok, err := store.Get(context.Background(), "fh", "ph")
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if string(payload) != "payload" {
		t.Fatalf("payload = %q", payload)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGStoreGetExpiredDeletes(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store, mock := newMockPGStore(t, now)

	rows := sqlmock.NewRows([]string{"report_json", "created_at"}).
		AddRow([]byte("payload"), now.Add(-2*time.Hour).Unix())
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT report_json, created_at FROM report_cache WHERE folder_path_hash = $1 AND pdfs_hash = $2`)).
		WithArgs("fh", "ph").
		WillReturnRows(rows)
	mock.ExpectExec(regexp.QuoteMeta(
		`DELETE FROM report_cache WHERE folder_path_hash = $1`)).
		WithArgs("fh").
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, ok, err := store.Get(context.Background(), "fh", "ph")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("expected miss for expired entry")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGStorePutUpserts(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store, mock := newMockPGStore(t, now)

	mock.ExpectExec("INSERT INTO report_cache").
		WithArgs("fh", "ph", []byte("payload"), now.Unix()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Put(context.Background(), "fh", "ph", []byte("payload")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGStorePurge(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store, mock := newMockPGStore(t, now)

	mock.ExpectExec(regexp.QuoteMeta(
		`DELETE FROM report_cache WHERE created_at < $1`)).
		WithArgs(now.Unix() - int64(time.Hour.Seconds())).
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := store.Purge(context.Background())
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if deleted != 3 {
		t.Fatalf("deleted = %d, want 3", deleted)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
