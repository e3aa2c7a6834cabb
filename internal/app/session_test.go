package app_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"canvasboard/internal/app"
	"canvasboard/internal/canvas"
	"canvasboard/internal/domain"
	"canvasboard/internal/service"
	"canvasboard/internal/storage"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

var idSeq atomic.Int64

// nextID is shared by every session in a test so ids never collide
// across sessions writing the same file.
func nextID() string {
	return fmt.Sprintf("id%d", idSeq.Add(1))
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSession(t *testing.T, path string, emit domain.EventEmitter) *app.Session {
	t.Helper()
	store, err := storage.NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	s := app.NewSession(app.SessionConfig{
		Store:   store,
		Logger:  quietLogger(),
		Emitter: emit,
		Clock:   func() time.Time { return epoch },
		Options: []canvas.Option{canvas.WithIDGenerator(nextID)},
	})
	s.Resize(1200, 800)
	return s
}

func TestSession_LoadMissingStartsEmpty(t *testing.T) {
	s := newSession(t, filepath.Join(t.TempDir(), "ws.json"), nil)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Workspace().ItemCount() != 0 || s.Workspace().GroupCount() != 0 {
		t.Error("workspace should be empty")
	}
}

func TestSession_LoadCorruptStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ws.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	s := newSession(t, path, nil)
	if err := s.Load(context.Background()); err == nil {
		t.Error("expected error for corrupt snapshot")
	}
	if s.Workspace().ItemCount() != 0 {
		t.Error("workspace should be empty after failed load")
	}
}

func TestSession_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ws.json")

	s := newSession(t, path, nil)
	ws := s.Workspace()
	g := canvas.User(ws.CreateGroup("Reading"))
	id := ws.CreateItem("https://go.dev", "Go", "", "", g)
	ws.SetWidth(g, 2)
	if err := s.SaveNow(ctx); err != nil {
		t.Fatalf("SaveNow: %v", err)
	}

	other := newSession(t, path, nil)
	if err := other.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	it, ok := other.Workspace().Item(id)
	if !ok {
		t.Fatalf("item %s not restored", id)
	}
	if it.Group() != g || it.Title() != "Go" {
		t.Errorf("item = group %v title %q", it.Group(), it.Title())
	}
	restored, _ := other.Workspace().Group(g)
	if restored.Width() != 2 || restored.Title() != "Reading" {
		t.Errorf("group = width %d title %q", restored.Width(), restored.Title())
	}
}

func TestSession_MaybeSaveRespectsInterval(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ws.json")
	s := newSession(t, path, nil)
	s.Load(ctx)

	if s.MaybeSave(ctx, epoch.Add(time.Second)) {
		t.Error("saved before the interval elapsed")
	}
	if !s.MaybeSave(ctx, epoch.Add(service.DefaultAutosaveInterval)) {
		t.Error("expected a save once the interval elapsed")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("snapshot file missing: %v", err)
	}
}

func TestSession_ReloadCommitsGestureAndMerges(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ws.json")
	emit := &service.MockEmitter{}
	s := newSession(t, path, emit)
	ws := s.Workspace()

	kept := ws.CreateItem("https://a.example", "", "", "", canvas.Inbox())
	if err := s.SaveNow(ctx); err != nil {
		t.Fatal(err)
	}

	// An external writer adds an item.
	editor := newSession(t, path, nil)
	editor.Load(ctx)
	added := editor.Workspace().CreateItem("https://b.example", "", "", "", canvas.Inbox())
	if err := editor.SaveNow(ctx); err != nil {
		t.Fatal(err)
	}

	s.Pointer(canvas.PointerEvent{Kind: canvas.PointerDown, X: 20, Y: 50, Button: canvas.ButtonLeft})
	s.Pointer(canvas.PointerEvent{Kind: canvas.PointerMove, X: 700, Y: 300})
	if s.Controller().State() != canvas.StateItemDragging {
		t.Fatalf("state = %v, want item-dragging", s.Controller().State())
	}

	if err := s.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if s.Controller().State() != canvas.StateIdle || ws.AnyDragging() {
		t.Error("gesture should be committed before merging")
	}
	for _, id := range []string{kept, added} {
		if _, ok := ws.Item(id); !ok {
			t.Errorf("item %s missing after reload", id)
		}
	}
	if err := ws.CheckInvariants(); err != nil {
		t.Errorf("invariants: %v", err)
	}
	if emit.Count(domain.EventSnapshotReloaded) != 1 {
		t.Errorf("reload events = %d, want 1", emit.Count(domain.EventSnapshotReloaded))
	}
}

func TestSession_ReloadMissingKeepsWorkspace(t *testing.T) {
	s := newSession(t, filepath.Join(t.TempDir(), "ws.json"), nil)
	id := s.Workspace().CreateItem("https://a.example", "", "", "", canvas.Inbox())

	err := s.Reload(context.Background())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, ok := s.Workspace().Item(id); !ok {
		t.Error("live item dropped by failed reload")
	}
}

func TestSession_FrameSettlesAnimation(t *testing.T) {
	s := newSession(t, filepath.Join(t.TempDir(), "ws.json"), nil)
	ws := s.Workspace()
	g := canvas.User(ws.CreateGroup("A"))
	for i := 0; i < 3; i++ {
		ws.CreateItem(fmt.Sprintf("https://%d.example", i), "", "", "", g)
	}
	ws.SetWidth(g, 1)
	if !ws.Animating() {
		t.Fatal("expected a relayout animation")
	}
	s.Frame(canvas.AnimationDuration)
	if ws.Animating() {
		t.Error("animation should settle after one full duration")
	}
}
