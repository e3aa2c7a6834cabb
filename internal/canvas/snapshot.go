package canvas

import (
	"sort"

	"canvasboard/internal/domain"
)

// Snapshot exports the persistent part of the workspace. Transients
// (drag, hover, animation) are not included.
func (w *Workspace) Snapshot() *domain.Snapshot {
	s := domain.NewSnapshot()
	s.SavedAt = w.now()
	s.Camera = w.camera.State()
	for _, g := range w.allGroups() {
		s.Groups[g.ID()] = domain.Group{
			ID:    g.ID(),
			Title: g.title,
			Width: g.width,
			X:     g.x,
			Y:     g.y,
			Z:     g.z,
			Items: g.Items(),
		}
	}
	for id, it := range w.items {
		s.Items[id] = domain.Item{
			ID:        id,
			URL:       it.url,
			Title:     it.title,
			Image:     it.image,
			Favicon:   it.favicon,
			GroupID:   it.group.String(),
			Index:     it.index,
			CreatedAt: it.createdAt,
		}
	}
	return s
}

// Merge deep-merges a snapshot into the live workspace. Entities present
// in the snapshot overwrite the matching live fields or are created;
// entities absent from it are kept. Arrangements are then repaired so
// every item sits exactly once in the group it names. Items naming an
// unknown group, or the transient hidden group, land in the inbox.
func (w *Workspace) Merge(s *domain.Snapshot) {
	if s == nil {
		return
	}
	if s.Camera.Zoom > 0 {
		w.camera.Restore(s.Camera)
	}

	for key, rec := range s.Groups {
		id := rec.ID
		if id == "" {
			id = key
		}
		ref := ParseGroupRef(id)
		g := w.group(ref)
		if g == nil {
			g = newGroup(ref, rec.Title, rec.Width)
			w.groups[id] = g
		}
		g.title = rec.Title
		if rec.Width >= 1 && ref.Resizable() {
			g.width = rec.Width
		}
		if !ref.ScreenAnchored() {
			g.x, g.y = rec.X, rec.Y
			g.z = rec.Z
		}
		g.resizing = false
	}

	// Desired membership: snapshot records win, live items keep theirs.
	want := make(map[string]GroupRef, len(w.items)+len(s.Items))
	wantIndex := make(map[string]int, len(s.Items))
	for id, it := range w.items {
		want[id] = it.group
	}
	for key, rec := range s.Items {
		id := rec.ID
		if id == "" {
			id = key
		}
		it := w.items[id]
		if it == nil {
			it = &Item{id: id, group: Inbox(), createdAt: rec.CreatedAt}
			w.items[id] = it
		}
		it.url = rec.URL
		it.title = rec.Title
		it.image = rec.Image
		it.favicon = rec.Favicon
		if !rec.CreatedAt.IsZero() {
			it.createdAt = rec.CreatedAt
		}
		want[id] = ParseGroupRef(rec.GroupID)
		wantIndex[id] = rec.Index
	}
	for id, ref := range want {
		if ref.Kind == KindHidden || w.group(ref) == nil {
			want[id] = Inbox()
		}
	}

	for _, g := range w.allGroups() {
		order := g.items
		if rec, ok := s.Groups[g.ID()]; ok && rec.Items != nil {
			order = rec.Items
		}
		seen := make(map[string]bool, len(order))
		next := make([]string, 0, len(order))
		for _, id := range order {
			if seen[id] || w.items[id] == nil || want[id] != g.ref {
				continue
			}
			seen[id] = true
			next = append(next, id)
		}

		var missing []string
		for id, ref := range want {
			if ref == g.ref && !seen[id] {
				missing = append(missing, id)
			}
		}
		sort.Slice(missing, func(i, j int) bool {
			if wantIndex[missing[i]] != wantIndex[missing[j]] {
				return wantIndex[missing[i]] < wantIndex[missing[j]]
			}
			return missing[i] < missing[j]
		})
		g.items = next
		for _, id := range missing {
			g.insert(id, wantIndex[id])
		}
	}

	for _, g := range w.allGroups() {
		w.reindex(g)
		g.t = 1
	}
	for _, it := range w.items {
		it.dragging = false
		it.t = 1
	}
	for _, g := range w.groups {
		if g.z > w.topZ {
			w.topZ = g.z
		}
	}
	w.anyDragging = false
	w.anyOverTrash = false
	w.reanchor()
}
