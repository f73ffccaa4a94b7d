package envbase

import (
	"errors"
	"os"
	"testing"
)

func TestMapMirror(t *testing.T) {
	m := NewMapMirror()

	if err := m.Set("DB_HOST", "localhost"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if v, ok := m.Lookup("DB_HOST"); !ok || v != "localhost" {
		t.Errorf("Lookup = (%q, %v), want (localhost, true)", v, ok)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}

	// Overwrite
	if err := m.Set("DB_HOST", "db.internal"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if v, _ := m.Lookup("DB_HOST"); v != "db.internal" {
		t.Errorf("Lookup after overwrite = %q", v)
	}
	if m.Len() != 1 {
		t.Errorf("Len after overwrite = %d, want 1", m.Len())
	}

	if err := m.Unset("DB_HOST"); err != nil {
		t.Fatalf("Unset error: %v", err)
	}
	if _, ok := m.Lookup("DB_HOST"); ok {
		t.Error("key still present after Unset")
	}
}

// Unsetting a key the mirror never held means the mirror and the store
// disagree about reality, which must fail loudly.
func TestMapMirrorDivergence(t *testing.T) {
	m := NewMapMirror()
	if err := m.Unset("NEVER_SET"); !errors.Is(err, ErrMirrorDiverged) {
		t.Errorf("Unset error = %v, want ErrMirrorDiverged", err)
	}
}

func TestMapMirrorSnapshot(t *testing.T) {
	m := NewMapMirror()
	m.Set("A", "1")
	m.Set("B", "2")

	snap := m.Snapshot()
	if len(snap) != 2 || snap["A"] != "1" || snap["B"] != "2" {
		t.Errorf("Snapshot = %v", snap)
	}

	// The snapshot is a copy, not a view
	snap["A"] = "mutated"
	if v, _ := m.Lookup("A"); v != "1" {
		t.Errorf("mirror changed through snapshot: A = %q", v)
	}
}

func TestProcessMirror(t *testing.T) {
	m := NewProcessMirror()
	const key = "ENVBASE_TEST_PROCESS_MIRROR"
	t.Setenv(key, "placeholder") // registers cleanup

	if err := m.Set(key, "live"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if os.Getenv(key) != "live" {
		t.Errorf("os.Getenv = %q, want live", os.Getenv(key))
	}
	if v, ok := m.Lookup(key); !ok || v != "live" {
		t.Errorf("Lookup = (%q, %v)", v, ok)
	}

	if err := m.Unset(key); err != nil {
		t.Fatalf("Unset error: %v", err)
	}
	if _, ok := os.LookupEnv(key); ok {
		t.Error("variable still set after Unset")
	}

	// Second Unset sees an absent key and reports divergence
	if err := m.Unset(key); !errors.Is(err, ErrMirrorDiverged) {
		t.Errorf("Unset error = %v, want ErrMirrorDiverged", err)
	}
}
