package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"submeter/backend/services/submeter-service/internal/storage"
)

func setupTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := New(context.Background(), path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t, filepath.Join(t.TempDir(), "submeter.db"))

	if _, ok, err := s.Get(ctx, storage.PreviousReadingKey); err != nil || ok {
		t.Fatalf("Get on fresh db = (ok=%v, err=%v), want absent", ok, err)
	}

	for _, v := range []string{"1500", "1620.75"} {
		if err := s.Set(ctx, storage.PreviousReadingKey, v); err != nil {
			t.Fatalf("Set(%q): %v", v, err)
		}
	}

	v, ok, err := s.Get(ctx, storage.PreviousReadingKey)
	if err != nil || !ok || v != "1620.75" {
		t.Fatalf("Get=(%q,%v,%v) want (1620.75,true,nil)", v, ok, err)
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "submeter.db")

	first, err := New(ctx, path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := first.Set(ctx, storage.PreviousReadingKey, "980"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second := setupTestStore(t, path)
	v, ok, err := second.Get(ctx, storage.PreviousReadingKey)
	if err != nil || !ok || v != "980" {
		t.Fatalf("Get after reopen=(%q,%v,%v) want (980,true,nil)", v, ok, err)
	}
}
