package storage

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T, opts Options) *boltStore {
	t.Helper()
	store, err := openBolt(filepath.Join(t.TempDir(), "karotz.db"), normalizeOptions(opts))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltStoreMarksAndExpiresSnapshots(t *testing.T) {
	store := openTestStore(t, Options{SnapshotTTL: time.Minute, CleanupInterval: time.Hour})
	clock := time.Now()
	store.now = func() time.Time { return clock }

	seen, err := store.SeenSnapshot("kitchen", "snap1")
	if err != nil || seen {
		t.Fatalf("expected unseen snapshot, seen=%v err=%v", seen, err)
	}

	if err := store.MarkSnapshot("kitchen", "snap1"); err != nil {
		t.Fatalf("MarkSnapshot: %v", err)
	}

	seen, err = store.SeenSnapshot("kitchen", "snap1")
	if err != nil || !seen {
		t.Fatalf("expected snapshot marked as seen, got seen=%v err=%v", seen, err)
	}

	seen, _ = store.SeenSnapshot("office", "snap1")
	if seen {
		t.Fatalf("snapshot markers must be scoped per device")
	}

	clock = clock.Add(2 * time.Minute)
	seen, err = store.SeenSnapshot("kitchen", "snap1")
	if err != nil {
		t.Fatalf("SeenSnapshot after expiry: %v", err)
	}
	if seen {
		t.Fatalf("expected marker to expire")
	}
}

func TestBoltStoreCleanupSweepsAllDevices(t *testing.T) {
	store := openTestStore(t, Options{SnapshotTTL: time.Minute, CleanupInterval: time.Minute})
	clock := time.Now()
	store.now = func() time.Time { return clock }

	for _, dev := range []string{"a", "b"} {
		if err := store.MarkSnapshot(dev, "s"); err != nil {
			t.Fatalf("MarkSnapshot(%s): %v", dev, err)
		}
	}

	clock = clock.Add(5 * time.Minute)
	if err := store.maybeCleanupExpired(clock); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if got := time.Unix(store.lastCleanup.Load(), 0); got.Before(clock.Add(-time.Second)) {
		t.Fatalf("cleanup timestamp not advanced: %v", got)
	}
	for _, dev := range []string{"a", "b"} {
		if seen, _ := store.SeenSnapshot(dev, "s"); seen {
			t.Fatalf("device %s marker survived cleanup", dev)
		}
	}
}

func TestBoltStoreState(t *testing.T) {
	store := openTestStore(t, Options{})

	got, err := store.LoadState("kitchen")
	if err != nil || got != nil {
		t.Fatalf("expected no state, got %q err=%v", got, err)
	}

	want := []byte(`{"sleep":true}`)
	if err := store.SaveState("kitchen", want); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	got, err = store.LoadState("kitchen")
	if err != nil || !bytes.Equal(got, want) {
		t.Fatalf("LoadState = %q, %v", got, err)
	}
}

func TestBoltStoreRejectsEmptyKeys(t *testing.T) {
	store := openTestStore(t, Options{})
	if err := store.MarkSnapshot("", "x"); err == nil {
		t.Fatalf("expected error for empty device id")
	}
	if _, err := store.SeenSnapshot("dev", " "); err == nil {
		t.Fatalf("expected error for empty snapshot id")
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.MarkSnapshot("dev", "x"); err != nil {
		t.Fatalf("noop store MarkSnapshot: %v", err)
	}
	if seen, _ := store.SeenSnapshot("dev", "x"); seen {
		t.Fatalf("noop store never remembers")
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected unsupported type error")
	}
	if _, err := NewStore("bbolt", "", Options{}); err == nil {
		t.Fatalf("expected missing path error")
	}
}
