package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"canvasboard/internal/config"
	"canvasboard/internal/domain"
	"canvasboard/internal/service"
	"canvasboard/internal/storage"
)

// App wires a Session to its configured stores and background services.
type App struct {
	Config  *config.Config
	Log     *slog.Logger
	Metrics *service.Metrics
	Session *Session

	store       domain.SnapshotStore
	watcher     *service.SnapshotWatcher
	backup      *service.BackupScheduler
	backupStore domain.SnapshotStore
}

// Startup opens the primary store, loads the workspace and prepares the
// watcher and backup schedule. Call Start to run them and Shutdown when
// done.
func Startup(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	a := &App{Config: cfg, Log: log, Metrics: service.NewMetrics()}

	store, err := storage.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	a.store = store

	a.Session = NewSession(SessionConfig{
		Store:            store,
		AutosaveInterval: cfg.AutosaveInterval,
		Logger:           log,
		Emitter:          service.Fanout{a.Metrics},
	})
	// A failed load keeps an empty workspace; the error is already logged.
	a.Session.Load(ctx)
	ws := a.Session.Workspace()
	a.Metrics.ObserveWorkspace(ws.ItemCount(), ws.GroupCount())

	if fs, ok := store.(*storage.FileStore); ok {
		w, err := service.NewSnapshotWatcher(fs.Path(), fs, log)
		if err != nil {
			log.Warn("app: external edits will not be reloaded", "err", err)
		} else {
			a.watcher = w
		}
	}

	if cfg.Backup.Driver != "" {
		if err := a.openBackup(ctx); err != nil {
			a.Shutdown(ctx)
			return nil, err
		}
	}

	log.Info("app: started", "store", cfg.Store.Driver, "backup", cfg.Backup.Driver)
	return a, nil
}

func (a *App) openBackup(ctx context.Context) error {
	bs, err := storage.Open(ctx, a.Config.Backup.StoreConfig)
	if err != nil {
		return fmt.Errorf("open %s backup store: %w", a.Config.Backup.Driver, err)
	}
	a.backupStore = bs
	sched, err := service.NewBackupScheduler(bs, string(a.Config.Backup.Driver), a.Config.Backup.Schedule, a.Log, a.Metrics)
	if err != nil {
		return err
	}
	a.backup = sched
	return nil
}

// Start runs the file watcher and backup schedule.
func (a *App) Start(ctx context.Context) {
	if a.watcher != nil {
		a.watcher.Start(ctx)
	}
	if a.backup != nil {
		a.backup.Start()
	}
}

// Reloads fires when the snapshot file was edited externally. It is nil
// for stores that are not watched.
func (a *App) Reloads() <-chan struct{} {
	if a.watcher == nil {
		return nil
	}
	return a.watcher.Reloads()
}

// Backup returns the backup scheduler, or nil when none is configured.
func (a *App) Backup() *service.BackupScheduler { return a.backup }

// BackupNow writes the current workspace to the backup store and waits
// for the write.
func (a *App) BackupNow(ctx context.Context) error {
	if a.backup == nil {
		return errors.New("no backup store configured")
	}
	return a.backup.Save(ctx, a.Session.Workspace().Snapshot())
}

// Shutdown stops background services, writes a final snapshot and closes
// every store.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close watcher: %w", err))
		}
	}
	if a.backup != nil {
		a.backup.Stop(ctx)
	}
	if a.backupStore != nil {
		if err := a.backupStore.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close backup store: %w", err))
		}
	}
	if a.Session != nil {
		if err := a.Session.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	} else if a.store != nil {
		a.store.Close()
	}
	return errors.Join(errs...)
}
