package domain

import (
	"context"
	"time"
)

// SnapshotVersion is bumped whenever the persisted layout changes incompatibly.
const SnapshotVersion = 1

// Snapshot represents the complete serializable state of a workspace.
// Groups and items are keyed by id so partial snapshots can be merged
// into a live workspace.
type Snapshot struct {
	Version int              `json:"version"`
	SavedAt time.Time        `json:"savedAt"`
	Camera  Camera           `json:"camera"`
	Groups  map[string]Group `json:"groups"`
	Items   map[string]Item  `json:"items"`
}

// NewSnapshot returns an empty snapshot with initialized maps.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Version: SnapshotVersion,
		Groups:  make(map[string]Group),
		Items:   make(map[string]Item),
	}
}

// SnapshotStore persists whole-workspace snapshots.
type SnapshotStore interface {
	// Load returns the stored snapshot. Implementations return an error
	// wrapping storage.ErrNotFound when nothing has been saved yet.
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, s *Snapshot) error
	Close() error
}
