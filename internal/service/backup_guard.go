package service

import (
	"context"
	"sync"
	"time"
)

// ExportedBackupGuard is an exported alias so _test packages can test the guard.
type ExportedBackupGuard = backupGuard

// BackupRun describes a backup write that is still in flight.
type BackupRun struct {
	Target  string
	Items   int
	Started time.Time
}

// backupGuard admits one write per backup target. A rejected caller gets
// the run that is blocking it so the skip can be reported.
type backupGuard struct {
	mu      sync.Mutex
	running map[string]BackupRun
	wg      sync.WaitGroup
}

// Begin registers run. If its target is busy it returns the blocking run
// and false.
func (g *backupGuard) Begin(run BackupRun) (BackupRun, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running == nil {
		g.running = make(map[string]BackupRun)
	}
	if cur, ok := g.running[run.Target]; ok {
		return cur, false
	}
	g.running[run.Target] = run
	g.wg.Add(1)
	return run, true
}

// End releases target. Must follow a successful Begin.
func (g *backupGuard) End(target string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, target)
	g.wg.Done()
}

// Current returns the run in flight for target, if any.
func (g *backupGuard) Current(target string) (BackupRun, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	run, ok := g.running[target]
	return run, ok
}

// WaitAll blocks until every run ends or ctx is cancelled.
func (g *backupGuard) WaitAll(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
