package kvstore

import (
	"context"
	"path/filepath"
	"testing"
)

// exerciseStore runs the Store contract against any backend.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}

	if err := s.Set(ctx, "tntId", "T1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := s.Get(ctx, "tntId")
	if err != nil || !ok || v != "T1" {
		t.Fatalf("expected T1, got %q ok=%v err=%v", v, ok, err)
	}

	if err := s.Set(ctx, "tntId", "T2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if v, _, _ := s.Get(ctx, "tntId"); v != "T2" {
		t.Errorf("expected overwrite to T2, got %q", v)
	}

	if err := s.Remove(ctx, "tntId"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "tntId"); ok {
		t.Error("expected key to be removed")
	}
	if err := s.Remove(ctx, "tntId"); err != nil {
		t.Errorf("removing an absent key must not fail: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(nil))
}

func TestMemoryStore_SeedIsCopied(t *testing.T) {
	seed := map[string]string{"a": "1"}
	s := NewMemoryStore(seed)
	seed["b"] = "2"
	if s.Len() != 1 {
		t.Errorf("expected 1 key, got %d", s.Len())
	}
	if snap := s.Snapshot(); snap["a"] != "1" {
		t.Errorf("unexpected snapshot %v", snap)
	}
}

func TestSQLiteStore(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "state", "delivery.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	s, err := NewSQLiteStore(db, "delivery")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	exerciseStore(t, s)
}

func TestSQLiteStore_NamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "delivery.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	primary, _ := NewSQLiteStore(db, "delivery")
	legacy, _ := NewSQLiteStore(db, "legacy")

	if err := legacy.Set(ctx, "tntId", "old"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, _ := primary.Get(ctx, "tntId"); ok {
		t.Error("namespaces must not share keys")
	}
	if primary.Namespace() != "delivery" {
		t.Errorf("unexpected namespace %q", primary.Namespace())
	}
}

func TestSQLiteStore_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "delivery.db")

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s, _ := NewSQLiteStore(db, "delivery")
	if err := s.Set(ctx, "sessionId", "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	db.Close()

	db2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db2.Close()
	s2, _ := NewSQLiteStore(db2, "delivery")
	if v, ok, _ := s2.Get(ctx, "sessionId"); !ok || v != "abc" {
		t.Errorf("expected persisted value, got %q ok=%v", v, ok)
	}
}

func TestNewSQLiteStore_Validation(t *testing.T) {
	if _, err := NewSQLiteStore(nil, "x"); err == nil {
		t.Error("expected error for nil db")
	}
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "delivery.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if _, err := NewSQLiteStore(db, "  "); err == nil {
		t.Error("expected error for blank namespace")
	}
}
