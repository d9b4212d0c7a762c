package source

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"propinfo/internal/core/propertyinfo"
)

type memoryStore struct {
	mu       sync.Mutex
	payloads map[string][]byte
	lookups  int
	hits     int
	saves    int
	scans    int
	finished int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{payloads: make(map[string][]byte)}
}

func (s *memoryStore) BeginScan(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scans++
	return "scan", nil
}

func (s *memoryStore) Lookup(ctx context.Context, path, hash string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	payload, ok := s.payloads[path+"@"+hash]
	if ok {
		s.hits++
	}
	return payload, ok, nil
}

func (s *memoryStore) Save(ctx context.Context, scanID, path, hash, language string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	s.payloads[path+"@"+hash] = payload
	return nil
}

func (s *memoryStore) FinishScan(ctx context.Context, scanID string, files, classes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished++
	return nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestIndex(t *testing.T, root string, store SnapshotStore) *Index {
	t.Helper()
	idx, err := NewIndex(newTestParser(t), IndexOptions{
		Roots:        []string{root},
		ExcludeDirs:  []string{"vendor"},
		ExcludeFiles: []string{"*.gen.go"},
	}, store)
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	return idx
}

func TestIndex_Reload(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "models", "user.go"), goSource)
	writeFile(t, filepath.Join(root, "models", "user_methods.go"), "package models\n\nfunc (u *User) IsAdmin() bool { return false }\n")
	writeFile(t, filepath.Join(root, "models", "zz_dup.go"), "package models\n\ntype User struct {\n\tOther int\n}\n")
	writeFile(t, filepath.Join(root, "models", "models.gen.go"), "package models\n\ntype Generated struct{ A int }\n")
	writeFile(t, filepath.Join(root, "vendor", "lib", "lib.go"), "package lib\n\ntype Vendored struct{ A int }\n")
	writeFile(t, filepath.Join(root, "bank", "models.py"), pythonSource)

	idx := newTestIndex(t, root, nil)

	expected := []string{"models.Account", "models.Point", "models.User"}
	if got := idx.Classes(); !reflect.DeepEqual(got, expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}

	user, ok := idx.Lookup("models.User")
	if !ok {
		t.Fatal("expected models.User")
	}
	if filepath.Base(user.File) != "user.go" {
		t.Errorf("expected the first declaration to win, got %s", user.File)
	}
	if _, ok := user.Accessor("Admin", AccessorGetter); !ok {
		t.Error("expected method from another file to be attached")
	}
	if !user.HasInitializer("age") {
		t.Error("expected NewUser parameters to be attached")
	}

	if _, ok := idx.Lookup("Point"); !ok {
		t.Error("expected lookup by simple name")
	}
	if _, ok := idx.Lookup("Vendored"); ok {
		t.Error("expected vendor directory to be excluded")
	}
	if _, ok := idx.Lookup("Generated"); ok {
		t.Error("expected generated file to be excluded")
	}

	stats := idx.Stats()
	if stats.Files != 4 || stats.Classes != 3 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestIndex_ReloadSwapsClasses(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "shapes.go")
	writeFile(t, path, "package shapes\n\ntype Circle struct{ Radius float64 }\n")

	idx := newTestIndex(t, root, nil)
	if _, ok := idx.Lookup("Circle"); !ok {
		t.Fatal("expected Circle")
	}

	writeFile(t, path, "package shapes\n\ntype Square struct{ Side float64 }\n")
	if err := idx.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, ok := idx.Lookup("Circle"); ok {
		t.Error("expected Circle to be gone after reload")
	}
	if _, ok := idx.Lookup("shapes.Square"); !ok {
		t.Error("expected Square after reload")
	}
	if idx.Version() != 2 {
		t.Errorf("expected version 2, got %d", idx.Version())
	}
}

func TestIndex_UsesSnapshots(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "models", "user.go"), goSource)
	store := newMemoryStore()

	idx := newTestIndex(t, root, store)
	if store.saves != 1 || store.hits != 0 {
		t.Fatalf("expected one save and no hits, got saves=%d hits=%d", store.saves, store.hits)
	}

	if err := idx.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	if store.hits != 1 || store.saves != 1 {
		t.Fatalf("expected the unchanged file to come from the store, got saves=%d hits=%d", store.saves, store.hits)
	}
	if idx.Stats().Snapshots != 1 || store.finished != 2 {
		t.Errorf("unexpected stats %+v finished=%d", idx.Stats(), store.finished)
	}

	user, ok := idx.Lookup("models.User")
	if !ok {
		t.Fatal("expected models.User from snapshot")
	}
	if got := propertyinfo.FormatTypes(mustProperty(t, user, "Email").Types); got != "?string" {
		t.Errorf("expected types to survive the snapshot, got %s", got)
	}
}

func TestIndex_MissingRoot(t *testing.T) {
	idx, err := NewIndex(newTestParser(t), IndexOptions{Roots: []string{filepath.Join(t.TempDir(), "missing")}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.Reload(context.Background()); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestIndex_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "package a\n\ntype A struct{ X int }\n")
	idx, err := NewIndex(newTestParser(t), IndexOptions{Roots: []string{root}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := idx.Reload(ctx); err == nil {
		t.Fatal("expected cancelled reload to fail")
	}
	if len(idx.Classes()) != 0 {
		t.Error("expected a failed reload to leave the index untouched")
	}
}
