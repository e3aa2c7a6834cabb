package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"canvasboard/internal/service"
)

// FrameInterval is the headless animation tick.
const FrameInterval = 16 * time.Millisecond

// ErrLoopStopped is returned by Do once the loop has exited.
var ErrLoopStopped = errors.New("loop stopped")

type command struct {
	fn   func(*Session)
	done chan struct{}
}

// Loop drives a Session from one goroutine. Frames, autosaves, reloads,
// backups and commands from other goroutines are serialized through Run.
type Loop struct {
	session *Session
	log     *slog.Logger

	reloads <-chan struct{}
	backup  *service.BackupScheduler
	metrics *service.Metrics

	commands chan command
	stopped  chan struct{}
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithReloads merges the stored snapshot whenever ch fires.
func WithReloads(ch <-chan struct{}) LoopOption {
	return func(l *Loop) { l.reloads = ch }
}

// WithBackup services backup requests from b.
func WithBackup(b *service.BackupScheduler) LoopOption {
	return func(l *Loop) { l.backup = b }
}

// WithMetrics records frame timings and workspace sizes.
func WithMetrics(m *service.Metrics) LoopOption {
	return func(l *Loop) { l.metrics = m }
}

func NewLoop(s *Session, log *slog.Logger, opts ...LoopOption) *Loop {
	if log == nil {
		log = slog.Default()
	}
	l := &Loop{
		session:  s,
		log:      log,
		commands: make(chan command),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Do runs fn on the loop goroutine and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func(*Session)) error {
	cmd := command{fn: fn, done: make(chan struct{})}
	select {
	case l.commands <- cmd:
	case <-l.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-cmd.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes events until ctx is cancelled, then writes a final
// snapshot.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.stopped)

	frames := time.NewTicker(FrameInterval)
	defer frames.Stop()
	saves := time.NewTicker(l.session.Autosaver().Interval())
	defer saves.Stop()

	var backups <-chan struct{}
	if l.backup != nil {
		backups = l.backup.Requests()
	}

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			l.log.Info("loop: stopping")
			// ctx is done; the final write gets its own deadline.
			saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := l.session.SaveNow(saveCtx); err != nil {
				return err
			}
			return nil

		case now := <-frames.C:
			start := time.Now()
			l.session.Frame(now.Sub(last))
			last = now
			if l.metrics != nil {
				l.metrics.ObserveFrame(time.Since(start).Seconds())
			}

		case now := <-saves.C:
			if l.session.MaybeSave(ctx, now) && l.metrics != nil {
				ws := l.session.Workspace()
				l.metrics.ObserveWorkspace(ws.ItemCount(), ws.GroupCount())
			}

		case <-l.reloads:
			l.session.Reload(ctx)

		case <-backups:
			l.session.Backup(ctx, l.backup)

		case cmd := <-l.commands:
			cmd.fn(l.session)
			close(cmd.done)
		}
	}
}
