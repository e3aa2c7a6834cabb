package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"canvasboard/internal/canvas"
	"canvasboard/internal/domain"
	"canvasboard/internal/service"
	"canvasboard/internal/storage"
)

// Session is one open workspace together with its input controller and
// primary store. All methods must be called from a single goroutine.
type Session struct {
	ws       *canvas.Workspace
	ctrl     *canvas.Controller
	store    domain.SnapshotStore
	autosave *service.Autosaver
	log      *slog.Logger
	emit     domain.EventEmitter
	now      func() time.Time
}

// SessionConfig holds the collaborators of a Session.
type SessionConfig struct {
	Store            domain.SnapshotStore
	AutosaveInterval time.Duration
	Logger           *slog.Logger
	Emitter          domain.EventEmitter
	Clock            func() time.Time
	// Extra workspace options, e.g. a deterministic id generator in tests.
	Options []canvas.Option
}

func NewSession(cfg SessionConfig) *Session {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Emitter == nil {
		cfg.Emitter = domain.NopEmitter{}
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	opts := append([]canvas.Option{
		canvas.WithLogger(cfg.Logger),
		canvas.WithEmitter(cfg.Emitter),
		canvas.WithClock(cfg.Clock),
	}, cfg.Options...)

	ws := canvas.New(opts...)
	return &Session{
		ws:       ws,
		ctrl:     canvas.NewController(ws),
		store:    cfg.Store,
		autosave: service.NewAutosaver(cfg.Store, cfg.AutosaveInterval, cfg.Logger, cfg.Emitter),
		log:      cfg.Logger,
		emit:     cfg.Emitter,
		now:      cfg.Clock,
	}
}

func (s *Session) Workspace() *canvas.Workspace   { return s.ws }
func (s *Session) Controller() *canvas.Controller { return s.ctrl }
func (s *Session) Autosaver() *service.Autosaver  { return s.autosave }

// Load merges the stored snapshot into the workspace. A missing or
// unreadable snapshot leaves the workspace empty; only the latter is
// reported.
func (s *Session) Load(ctx context.Context) error {
	defer s.autosave.Touch(s.now())

	snap, err := s.store.Load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		s.log.Info("session: no saved workspace, starting empty")
		return nil
	}
	if err != nil {
		s.log.Error("session: load failed, starting empty", "err", err)
		return fmt.Errorf("load workspace: %w", err)
	}
	s.ws.Merge(snap)
	s.log.Info("session: workspace loaded", "groups", len(snap.Groups), "items", len(snap.Items))
	return nil
}

// Frame advances animations by dt. It reports whether anything moved.
func (s *Session) Frame(dt time.Duration) bool {
	return s.ws.Tick(dt)
}

// Pointer forwards a pointer event to the drag controller.
func (s *Session) Pointer(ev canvas.PointerEvent) {
	s.ctrl.Handle(ev)
}

// Wheel forwards a wheel event at screen position (sx, sy).
func (s *Session) Wheel(sx, sy, delta float64) {
	s.ws.Wheel(sx, sy, delta)
}

// Resize updates the viewport to a w×h pixel surface.
func (s *Session) Resize(w, h float64) {
	s.ws.SetViewport(canvas.Viewport{Width: w, Height: h})
}

// MaybeSave writes a snapshot when the autosave interval has elapsed.
func (s *Session) MaybeSave(ctx context.Context, now time.Time) bool {
	return s.autosave.MaybeSave(ctx, now, s.ws.Snapshot)
}

// SaveNow writes a snapshot immediately and restarts the interval.
func (s *Session) SaveNow(ctx context.Context) error {
	s.autosave.Touch(s.now())
	return s.autosave.Save(ctx, s.ws.Snapshot())
}

// Reload merges the stored snapshot over the live workspace. Any gesture
// in progress is committed first so the merge never sees drag transients.
func (s *Session) Reload(ctx context.Context) error {
	snap, err := s.store.Load(ctx)
	if err != nil {
		s.log.Warn("session: reload failed", "err", err)
		return fmt.Errorf("reload workspace: %w", err)
	}
	s.ctrl.Cancel()
	s.ws.Merge(snap)
	s.log.Info("session: workspace reloaded", "groups", len(snap.Groups), "items", len(snap.Items))
	s.emit.Emit(domain.EventSnapshotReloaded, len(snap.Items))
	return nil
}

// Backup hands the current snapshot to b, which writes it in the
// background.
func (s *Session) Backup(ctx context.Context, b *service.BackupScheduler) bool {
	return b.Run(ctx, s.ws.Snapshot())
}

// Close writes a final snapshot and closes the store.
func (s *Session) Close(ctx context.Context) error {
	s.ctrl.Cancel()
	saveErr := s.SaveNow(ctx)
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return saveErr
}
