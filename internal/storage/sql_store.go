package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"canvasboard/internal/domain"
)

const workspaceRowID = "default"

// SQLStore implements domain.SnapshotStore on top of a relational
// database. Each Save replaces the stored workspace in one transaction.
type SQLStore struct {
	db *DB
}

func NewSQLStore(db *DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	tx, err := s.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"canvas_items", "canvas_groups", "canvas_workspace"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	_, err = tx.ExecContext(ctx, s.db.rebind(
		`INSERT INTO canvas_workspace (id, version, zoom, pan_x, pan_y, saved_at) VALUES (?, ?, ?, ?, ?, ?)`),
		workspaceRowID, snap.Version, snap.Camera.Zoom, snap.Camera.PanX, snap.Camera.PanY, formatTime(snap.SavedAt),
	)
	if err != nil {
		return fmt.Errorf("insert workspace: %w", err)
	}

	insertGroup := s.db.rebind(`INSERT INTO canvas_groups (id, title, width, x, y, z) VALUES (?, ?, ?, ?, ?, ?)`)
	for id, g := range snap.Groups {
		if _, err := tx.ExecContext(ctx, insertGroup, id, g.Title, g.Width, g.X, g.Y, g.Z); err != nil {
			return fmt.Errorf("insert group %s: %w", id, err)
		}
	}

	insertItem := s.db.rebind(
		`INSERT INTO canvas_items (id, group_id, position, url, title, image, favicon, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	for id, it := range snap.Items {
		_, err := tx.ExecContext(ctx, insertItem,
			id, it.GroupID, it.Index, it.URL, it.Title, it.Image, it.Favicon, formatTime(it.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert item %s: %w", id, err)
		}
	}

	return tx.Commit()
}

func (s *SQLStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	snap := domain.NewSnapshot()

	var savedAt string
	err := s.db.Conn().QueryRowContext(ctx, s.db.rebind(
		`SELECT version, zoom, pan_x, pan_y, saved_at FROM canvas_workspace WHERE id = ?`), workspaceRowID,
	).Scan(&snap.Version, &snap.Camera.Zoom, &snap.Camera.PanX, &snap.Camera.PanY, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load workspace: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load workspace: %w", err)
	}
	snap.SavedAt = parseTime(savedAt)

	rows, err := s.db.Conn().QueryContext(ctx, `SELECT id, title, width, x, y, z FROM canvas_groups`)
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.ID, &g.Title, &g.Width, &g.X, &g.Y, &g.Z); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan group: %w", err)
		}
		g.Items = []string{}
		snap.Groups[g.ID] = g
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}

	rows, err = s.db.Conn().QueryContext(ctx,
		`SELECT id, group_id, position, url, title, image, favicon, created_at FROM canvas_items`)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var it domain.Item
		var createdAt string
		if err := rows.Scan(&it.ID, &it.GroupID, &it.Index, &it.URL, &it.Title, &it.Image, &it.Favicon, &createdAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		it.CreatedAt = parseTime(createdAt)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Arrangements are not stored separately; rebuild them from positions.
	sort.Slice(items, func(i, j int) bool {
		if items[i].Index != items[j].Index {
			return items[i].Index < items[j].Index
		}
		return items[i].ID < items[j].ID
	})
	for _, it := range items {
		snap.Items[it.ID] = it
		if g, ok := snap.Groups[it.GroupID]; ok {
			g.Items = append(g.Items, it.ID)
			snap.Groups[it.GroupID] = g
		}
	}
	return snap, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
