package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"canvasboard/internal/domain"
	"canvasboard/internal/storage"
)

func sampleSnapshot() *domain.Snapshot {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := domain.NewSnapshot()
	s.SavedAt = created.Add(time.Hour)
	s.Camera = domain.Camera{Zoom: 0.75, PanX: 120.5, PanY: -40}
	s.Groups[domain.InboxGroupID] = domain.Group{ID: domain.InboxGroupID, Title: "Inbox", Width: 1, Items: []string{"i3"}}
	s.Groups[domain.HiddenGroupID] = domain.Group{ID: domain.HiddenGroupID, Width: 1, Items: []string{}}
	s.Groups["g1"] = domain.Group{ID: "g1", Title: "Reading", Width: 2, X: 10, Y: 20.25, Z: 3, Items: []string{"i2", "i1"}}
	s.Items["i1"] = domain.Item{ID: "i1", URL: "https://a.example", Title: "A", GroupID: "g1", Index: 1, CreatedAt: created}
	s.Items["i2"] = domain.Item{ID: "i2", URL: "https://b.example", Title: "B", Image: "data:image/png;base64,AAAA", GroupID: "g1", Index: 0, CreatedAt: created}
	s.Items["i3"] = domain.Item{ID: "i3", URL: "https://c.example", Favicon: "https://c.example/favicon.ico", GroupID: domain.InboxGroupID, Index: 0, CreatedAt: created}
	return s
}

func assertSameSnapshot(t *testing.T, got, want *domain.Snapshot) {
	t.Helper()
	if got.Camera != want.Camera {
		t.Errorf("camera = %+v, want %+v", got.Camera, want.Camera)
	}
	if !got.SavedAt.Equal(want.SavedAt) {
		t.Errorf("savedAt = %v, want %v", got.SavedAt, want.SavedAt)
	}
	if !reflect.DeepEqual(got.Groups, want.Groups) {
		t.Errorf("groups = %+v\nwant %+v", got.Groups, want.Groups)
	}
	if len(got.Items) != len(want.Items) {
		t.Fatalf("items = %d, want %d", len(got.Items), len(want.Items))
	}
	for id, w := range want.Items {
		g := got.Items[id]
		if !g.CreatedAt.Equal(w.CreatedAt) {
			t.Errorf("item %s createdAt = %v, want %v", id, g.CreatedAt, w.CreatedAt)
		}
		g.CreatedAt, w.CreatedAt = time.Time{}, time.Time{}
		if g != w {
			t.Errorf("item %s = %+v, want %+v", id, g, w)
		}
	}
}

// ─────────────────────────────────────────────────────────────
// FileStore
// ─────────────────────────────────────────────────────────────

func TestFileStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "snapshot.json")
	fs, err := storage.NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}

	want := sampleSnapshot()
	if err := fs.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := fs.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertSameSnapshot(t, got, want)

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only the snapshot file, found %d entries", len(entries))
	}
}

func TestFileStore_MissingIsNotFound(t *testing.T) {
	fs, err := storage.NewFileStore(filepath.Join(t.TempDir(), "snapshot.json"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Load(context.Background()); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Load on missing file: %v, want ErrNotFound", err)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	os.WriteFile(path, []byte("{not json"), 0644)
	fs, _ := storage.NewFileStore(path)
	_, err := fs.Load(context.Background())
	if err == nil || errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Load on corrupt file: %v", err)
	}
}

func TestFileStore_ChangedIgnoresOwnWrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	fs, _ := storage.NewFileStore(path)

	if changed, err := fs.Changed(); err != nil || changed {
		t.Errorf("missing file: changed=%v err=%v", changed, err)
	}
	if err := fs.Save(ctx, sampleSnapshot()); err != nil {
		t.Fatal(err)
	}
	if changed, _ := fs.Changed(); changed {
		t.Error("own write reported as external change")
	}
	if err := os.WriteFile(path, []byte(`{"version":1}`), 0644); err != nil {
		t.Fatal(err)
	}
	if changed, _ := fs.Changed(); !changed {
		t.Error("external write not detected")
	}
	if _, err := fs.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if changed, _ := fs.Changed(); changed {
		t.Error("content just loaded reported as changed")
	}
}

// ─────────────────────────────────────────────────────────────
// SQLStore (sqlite)
// ─────────────────────────────────────────────────────────────

func openSQLite(t *testing.T) *storage.SQLStore {
	t.Helper()
	db, err := storage.OpenDB(domain.StoreDriverSQLite, filepath.Join(t.TempDir(), "canvas.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	s := storage.NewSQLStore(db)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	want := sampleSnapshot()
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertSameSnapshot(t, got, want)
}

func TestSQLStore_SaveReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	if err := s.Save(ctx, sampleSnapshot()); err != nil {
		t.Fatal(err)
	}
	smaller := domain.NewSnapshot()
	smaller.Camera = domain.Camera{Zoom: 1}
	smaller.Groups[domain.InboxGroupID] = domain.Group{ID: domain.InboxGroupID, Width: 1, Items: []string{"only"}}
	smaller.Items["only"] = domain.Item{ID: "only", GroupID: domain.InboxGroupID}
	if err := s.Save(ctx, smaller); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Groups) != 1 || len(got.Items) != 1 {
		t.Errorf("stale rows survived: %d groups, %d items", len(got.Groups), len(got.Items))
	}
}

func TestSQLStore_EmptyIsNotFound(t *testing.T) {
	s := openSQLite(t)
	if _, err := s.Load(context.Background()); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Load on empty db: %v, want ErrNotFound", err)
	}
}

func TestOpenDB_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canvas.db")
	for i := 0; i < 2; i++ {
		db, err := storage.OpenDB(domain.StoreDriverSQLite, path)
		if err != nil {
			t.Fatalf("open #%d: %v", i+1, err)
		}
		db.Close()
	}
}

// ─────────────────────────────────────────────────────────────
// Open
// ─────────────────────────────────────────────────────────────

func TestOpen_SelectsBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		cfg  domain.StoreConfig
		want any
	}{
		{domain.StoreConfig{DSN: filepath.Join(dir, "a.json")}, &storage.FileStore{}},
		{domain.StoreConfig{Driver: domain.StoreDriverFile, DSN: filepath.Join(dir, "b.json")}, &storage.FileStore{}},
		{domain.StoreConfig{Driver: domain.StoreDriverSQLite, DSN: filepath.Join(dir, "c.db")}, &storage.SQLStore{}},
	}
	for _, tt := range tests {
		s, err := storage.Open(ctx, tt.cfg)
		if err != nil {
			t.Errorf("Open(%+v): %v", tt.cfg, err)
			continue
		}
		if reflect.TypeOf(s) != reflect.TypeOf(tt.want) {
			t.Errorf("Open(%+v) = %T, want %T", tt.cfg, s, tt.want)
		}
		s.Close()
	}
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()
	bad := []domain.StoreConfig{
		{Driver: "oracle", DSN: "x"},
		{Driver: domain.StoreDriverPostgres},
		{Driver: domain.StoreDriverS3},
		{Driver: domain.StoreDriverMongoDB},
		{Driver: domain.StoreDriverFile},
	}
	for _, cfg := range bad {
		if s, err := storage.Open(ctx, cfg); err == nil {
			s.Close()
			t.Errorf("Open(%+v) succeeded", cfg)
		}
	}
}
