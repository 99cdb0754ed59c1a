package client

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	want := Session{AccessToken: "token-1", WorkspaceID: "ws-1"}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 600", perm)
	}
}

func TestFileStoreMissingFileIsEmptySession(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != (Session{}) {
		t.Errorf("Load() = %+v, want empty session", got)
	}
}

func TestFileStoreCorruptFileIsEmptySession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	store := NewFileStore(path)
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != (Session{}) {
		t.Errorf("Load() = %+v, want empty session", got)
	}
}

func TestFileStoreClearIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	if err := store.Save(Session{AccessToken: "t"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Errorf("Clear() error = %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
	if got, _ := store.Load(); got != (Session{}) {
		t.Errorf("Load() after Clear() = %+v, want empty", got)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	want := Session{AccessToken: "t", WorkspaceID: "w"}
	if err := store.Save(want); err != nil {
		t.Fatal(err)
	}
	if got, _ := store.Load(); got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	if got, _ := store.Load(); got != (Session{}) {
		t.Errorf("Load() after Clear() = %+v, want empty", got)
	}
}
