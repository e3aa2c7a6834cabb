package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"canvasboard/internal/domain"
)

// BackupScheduler copies workspace snapshots to a secondary store. A
// cron schedule produces backup requests; the host captures the
// snapshot on its own goroutine and hands it to Run, which writes it in
// the background. Overlapping writes are skipped.
type BackupScheduler struct {
	store    domain.SnapshotStore
	name     string
	log      *slog.Logger
	emit     domain.EventEmitter
	guard    backupGuard
	requests chan struct{}
	cron     *cron.Cron
}

// NewBackupScheduler validates schedule (standard five-field cron syntax
// or descriptors such as "@hourly"). An empty schedule disables the
// timer; Run can still be called on demand.
func NewBackupScheduler(store domain.SnapshotStore, name, schedule string, log *slog.Logger, emit domain.EventEmitter) (*BackupScheduler, error) {
	if log == nil {
		log = slog.Default()
	}
	if emit == nil {
		emit = domain.NopEmitter{}
	}
	b := &BackupScheduler{
		store:    store,
		name:     name,
		log:      log,
		emit:     emit,
		requests: make(chan struct{}, 1),
	}
	if schedule == "" {
		return b, nil
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, b.request); err != nil {
		return nil, fmt.Errorf("backup schedule %q: %w", schedule, err)
	}
	b.cron = c
	return b, nil
}

// Requests delivers one value per schedule firing that the host has not
// yet picked up.
func (b *BackupScheduler) Requests() <-chan struct{} {
	return b.requests
}

// Start begins firing the schedule.
func (b *BackupScheduler) Start() {
	if b.cron == nil {
		return
	}
	b.cron.Start()
	b.log.Info("backup cron: scheduled", "target", b.name)
}

// Stop halts the schedule and waits for an in-flight write or ctx.
func (b *BackupScheduler) Stop(ctx context.Context) {
	if b.cron != nil {
		<-b.cron.Stop().Done()
	}
	b.guard.WaitAll(ctx)
}

func (b *BackupScheduler) request() {
	select {
	case b.requests <- struct{}{}:
	default:
		b.log.Debug("backup cron: request already pending", "target", b.name)
	}
}

// Run writes snap to the backup store in the background. It returns
// false when a previous write to the same target is still running.
func (b *BackupScheduler) Run(ctx context.Context, snap *domain.Snapshot) bool {
	run := BackupRun{Target: b.name, Items: len(snap.Items), Started: time.Now()}
	if cur, ok := b.guard.Begin(run); !ok {
		b.log.Warn("backup: previous run still in progress, skipping",
			"target", b.name, "running_for", time.Since(cur.Started), "running_items", cur.Items)
		b.emit.Emit(domain.EventBackupSkipped, b.name)
		return false
	}
	go func() {
		defer b.guard.End(b.name)
		if err := b.Save(ctx, snap); err != nil {
			b.log.Error("backup: failed", "target", b.name, "err", err)
		}
	}()
	return true
}

// InFlight reports the background write currently running, if any.
func (b *BackupScheduler) InFlight() (BackupRun, bool) {
	return b.guard.Current(b.name)
}

// Save writes snap synchronously.
func (b *BackupScheduler) Save(ctx context.Context, snap *domain.Snapshot) error {
	start := time.Now()
	if err := b.store.Save(ctx, snap); err != nil {
		b.emit.Emit(domain.EventSnapshotFailed, b.name)
		return fmt.Errorf("backup to %s: %w", b.name, err)
	}
	b.log.Info("backup: snapshot written", "target", b.name, "items", len(snap.Items), "took", time.Since(start))
	b.emit.Emit(domain.EventSnapshotSaved, b.name)
	return nil
}
