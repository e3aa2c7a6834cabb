package service

import (
	"context"
	"log/slog"
	"time"

	"canvasboard/internal/domain"
)

// DefaultAutosaveInterval is how often the workspace is written to disk.
const DefaultAutosaveInterval = 5 * time.Second

// Autosaver writes full snapshots to the primary store at a fixed
// interval. Failures are logged and counted; in-memory state stays
// authoritative and the next interval simply tries again.
type Autosaver struct {
	store    domain.SnapshotStore
	interval time.Duration
	log      *slog.Logger
	emit     domain.EventEmitter

	last     time.Time
	saved    time.Time
	failures int
}

func NewAutosaver(store domain.SnapshotStore, interval time.Duration, log *slog.Logger, emit domain.EventEmitter) *Autosaver {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	if log == nil {
		log = slog.Default()
	}
	if emit == nil {
		emit = domain.NopEmitter{}
	}
	return &Autosaver{store: store, interval: interval, log: log, emit: emit}
}

func (a *Autosaver) Interval() time.Duration { return a.interval }
func (a *Autosaver) Failures() int           { return a.failures }

// LastSave returns when the last successful write finished. It is zero
// until one has.
func (a *Autosaver) LastSave() time.Time { return a.saved }

// Due reports whether an interval has elapsed since the last attempt.
func (a *Autosaver) Due(now time.Time) bool {
	return now.Sub(a.last) >= a.interval
}

// Touch restarts the interval without writing, e.g. right after a load.
func (a *Autosaver) Touch(now time.Time) {
	a.last = now
}

// MaybeSave saves when due. snapshot is only called when a write happens.
func (a *Autosaver) MaybeSave(ctx context.Context, now time.Time, snapshot func() *domain.Snapshot) bool {
	if !a.Due(now) {
		return false
	}
	a.last = now
	return a.Save(ctx, snapshot()) == nil
}

// Save writes snap immediately.
func (a *Autosaver) Save(ctx context.Context, snap *domain.Snapshot) error {
	start := time.Now()
	if err := a.store.Save(ctx, snap); err != nil {
		a.failures++
		a.log.Error("autosave: write failed", "err", err, "failures", a.failures)
		a.emit.Emit(domain.EventSnapshotFailed, err.Error())
		return err
	}
	a.saved = time.Now()
	a.log.Debug("autosave: snapshot written",
		"groups", len(snap.Groups), "items", len(snap.Items), "took", time.Since(start))
	a.emit.Emit(domain.EventSnapshotSaved, time.Since(start))
	return nil
}
