package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "test.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	s, _ := newTestStore(t)
	v, ok, err := s.Get(context.Background(), KeyExpenses)
	if err != nil || ok || v != "" {
		t.Fatalf("expected absent key, got %q ok=%v err=%v", v, ok, err)
	}
}

func TestSQLiteStore_SetGetOverwriteRemove(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, KeyCurrentUser, "a@example.com"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, KeyCurrentUser, "b@example.com"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, ok, err := s.Get(ctx, KeyCurrentUser)
	if err != nil || !ok || v != "b@example.com" {
		t.Fatalf("expected overwritten value, got %q ok=%v err=%v", v, ok, err)
	}

	if err := s.Remove(ctx, KeyCurrentUser); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := s.Get(ctx, KeyCurrentUser); ok {
		t.Fatal("expected key removed")
	}
	// removing an absent key is not an error
	if err := s.Remove(ctx, KeyCurrentUser); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()
	if err := s.Set(ctx, KeyBudgets, `[{"category":"Travel","limit":100}]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	s.Close()

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	v, ok, err := reopened.Get(ctx, KeyBudgets)
	if err != nil || !ok || v != `[{"category":"Travel","limit":100}]` {
		t.Fatalf("value lost across reopen: %q ok=%v err=%v", v, ok, err)
	}
	if err := reopened.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestMigrateKVStore_Idempotent(t *testing.T) {
	s, path := newTestStore(t)
	if got := s.SchemaVersion(); got != 1 {
		t.Fatalf("schema version after open = %d, want 1", got)
	}
	version, err := MigrateKVStore(path)
	if err != nil {
		t.Fatalf("second migration run should be a no-op: %v", err)
	}
	if version != 1 {
		t.Fatalf("schema version after rerun = %d, want 1", version)
	}
}
