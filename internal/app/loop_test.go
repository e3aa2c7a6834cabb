package app_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"canvasboard/internal/app"
	"canvasboard/internal/canvas"
	"canvasboard/internal/storage"
)

func startLoop(t *testing.T, l *app.Loop) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	return cancel, done
}

func TestLoop_DoRunsOnLoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ws.json")
	s := newSession(t, path, nil)
	l := app.NewLoop(s, quietLogger())
	cancel, done := startLoop(t, l)

	var id string
	err := l.Do(context.Background(), func(s *app.Session) {
		id = s.Workspace().CreateItem("https://go.dev", "", "", "", canvas.Inbox())
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if id == "" {
		t.Fatal("command did not run")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
	}

	// The final snapshot is written on shutdown.
	store, _ := storage.NewFileStore(path)
	snap, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := snap.Items[id]; !ok {
		t.Errorf("item %s not in final snapshot", id)
	}

	if err := l.Do(context.Background(), func(*app.Session) {}); !errors.Is(err, app.ErrLoopStopped) {
		t.Errorf("Do after stop = %v, want ErrLoopStopped", err)
	}
}

func TestLoop_ReloadRequest(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ws.json")

	editor := newSession(t, path, nil)
	added := editor.Workspace().CreateItem("https://b.example", "", "", "", canvas.Inbox())
	if err := editor.SaveNow(ctx); err != nil {
		t.Fatal(err)
	}

	reloads := make(chan struct{}, 1)
	s := newSession(t, path, nil)
	l := app.NewLoop(s, quietLogger(), app.WithReloads(reloads))
	cancel, done := startLoop(t, l)
	defer func() {
		cancel()
		<-done
	}()

	reloads <- struct{}{}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		var found bool
		l.Do(ctx, func(s *app.Session) {
			_, found = s.Workspace().Item(added)
		})
		if found {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("item %s never merged", added)
}
