package envbase

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func TestSQLiteBackendPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.db")

	backend, err := NewSQLiteBackend(ctx, path, "settings")
	if err != nil {
		t.Fatalf("NewSQLiteBackend: %v", err)
	}
	if err := backend.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if err := backend.Put(ctx, "durable", "yes"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := backend.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewSQLiteBackend(ctx, path, "settings")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close(ctx)

	value, err := reopened.Get(ctx, "durable")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if value != "yes" {
		t.Errorf("Get = %q, want %q", value, "yes")
	}
}

func TestSQLiteBackendRejectsBadCollection(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "x.db")

	_, err := NewSQLiteBackend(ctx, path, "bad name")
	if !errors.Is(err, ErrInvalidCollection) {
		t.Errorf("error = %v, want ErrInvalidCollection", err)
	}
}

// A caller-supplied handle stays open after the backend closes.
func TestSQLiteBackendFromDBOwnership(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shared.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()

	backend, err := NewSQLiteBackendFromDB(db, "settings")
	if err != nil {
		t.Fatalf("NewSQLiteBackendFromDB: %v", err)
	}
	if err := backend.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if err := backend.Put(ctx, "k", "v"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if err := backend.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// The handle must still work
	if err := db.PingContext(ctx); err != nil {
		t.Errorf("handle closed by backend: %v", err)
	}
}

// A bare *sql.DB descriptor classifies as embedded relational and opens
// through the same path as a string descriptor.
func TestOpenWithSQLDBHandle(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "open.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()

	backend, err := Open(ctx, db, "settings")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if backend.Kind() != KindEmbeddedRelational {
		t.Errorf("Kind = %v, want %v", backend.Kind(), KindEmbeddedRelational)
	}
}
