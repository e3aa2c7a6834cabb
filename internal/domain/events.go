package domain

// Events emitted by the workspace engine.
const (
	EventItemCreated         = "item:created"
	EventItemMoved           = "item:moved"
	EventItemTrashed         = "item:trashed"
	EventGroupCreated        = "group:created"
	EventGroupDestroyed      = "group:destroyed"
	EventGroupResized        = "group:resized"
	EventGroupRenameRequired = "group:rename-requested"
	EventSnapshotSaved       = "snapshot:saved"
	EventSnapshotFailed      = "snapshot:failed"
	EventSnapshotReloaded    = "snapshot:reloaded"
	EventBackupSkipped       = "backup:skipped"
)

// EventEmitter receives notifications about workspace changes.
// Hosts use it to refresh views, count metrics or prompt the user.
type EventEmitter interface {
	Emit(event string, data any)
}

// NopEmitter discards all events.
type NopEmitter struct{}

func (NopEmitter) Emit(string, any) {}
