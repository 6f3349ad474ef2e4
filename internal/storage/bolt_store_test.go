package storage

import (
	"path/filepath"
	"testing"
)

func TestBoltStoreSetGetDelete(t *testing.T) {
	dir := t.TempDir()

	store, err := openBolt(filepath.Join(dir, "nested", "credentials.db"))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	defer store.Close()

	got, err := store.Get("TOKEN")
	if err != nil || got != "" {
		t.Fatalf("expected empty value for missing key, got=%q err=%v", got, err)
	}

	if err := store.Set("TOKEN", "abc"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err = store.Get("TOKEN")
	if err != nil || got != "abc" {
		t.Fatalf("expected abc, got=%q err=%v", got, err)
	}

	if err := store.Delete("TOKEN"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err = store.Get("TOKEN")
	if err != nil || got != "" {
		t.Fatalf("expected value removed, got=%q err=%v", got, err)
	}
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.db")

	store, err := openBolt(path)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	if err := store.Set("TOKEN", "persisted"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := openBolt(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get("TOKEN")
	if err != nil || got != "persisted" {
		t.Fatalf("expected persisted token, got=%q err=%v", got, err)
	}
}

func TestNewStoreSupportsNoopAndMemory(t *testing.T) {
	store, err := NewStore("none", "")
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Set("x", "y"); err != nil {
		t.Fatalf("noop store Set: %v", err)
	}
	if got, _ := store.Get("x"); got != "" {
		t.Fatalf("noop store should not retain values, got %q", got)
	}

	mem, err := NewStore("memory", "")
	if err != nil {
		t.Fatalf("NewStore memory: %v", err)
	}
	_ = mem.Set("x", "y")
	if got, _ := mem.Get("x"); got != "y" {
		t.Fatalf("memory store lost value, got %q", got)
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", ""); err == nil {
		t.Fatalf("expected error for unsupported storage type")
	}
	if _, err := NewStore("bbolt", " "); err == nil {
		t.Fatalf("expected error for bbolt without path")
	}
}
