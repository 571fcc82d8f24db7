package kv

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"resurate/internal/platform"
)

func newMock(t *testing.T) (*PGStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &PGStore{DB: db}, mock
}

func TestPGStoreGet(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value\nFROM kv_entries")).
		WithArgs("alice", "resume:1").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`{"id":"1"}`))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value\nFROM kv_entries")).
		WithArgs("alice", "resume:2").
		WillReturnError(sql.ErrNoRows)

	got, err := store.Get(context.Background(), "alice", "resume:1")
	if err != nil || got != `{"id":"1"}` {
		t.Fatalf("unexpected get %q %v", got, err)
	}
	if _, err := store.Get(context.Background(), "alice", "resume:2"); !errors.Is(err, platform.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGStoreSetUpserts(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO kv_entries (namespace, key, value, updated_at)")).
		WithArgs("alice", "resume:1", "{}").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Set(context.Background(), "alice", "resume:1", "{}"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGStoreListEscapesPrefix(t *testing.T) {
	store, mock := newMock(t)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT key, value, updated_at")).
		WithArgs("alice", `resume\_%`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value", "updated_at"}).
			AddRow("resume_2", "b", now).
			AddRow("resume_1", "a", now.Add(-time.Minute)))

	entries, err := store.List(context.Background(), "alice", "resume_")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].Key != "resume_2" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGStoreFlush(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM kv_entries WHERE namespace = $1")).
		WithArgs("alice").
		WillReturnResult(sqlmock.NewResult(0, 3))

	if err := store.Flush(context.Background(), "alice"); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
