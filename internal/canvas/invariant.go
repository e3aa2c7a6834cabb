package canvas

import (
	"errors"
	"fmt"
)

// invariant reports a broken model invariant. Builds with the canvasdebug
// tag panic; regular builds log the violation and let the caller degrade
// to a no-op.
func (w *Workspace) invariant(ok bool, format string, args ...any) bool {
	if ok {
		return true
	}
	msg := fmt.Sprintf(format, args...)
	if debugInvariants {
		panic("canvas: invariant violated: " + msg)
	}
	w.log.Error("canvas: invariant violated", "detail", msg)
	return false
}

// CheckInvariants verifies the id cross-references between groups and
// items and the derived group dimensions.
func (w *Workspace) CheckInvariants() error {
	var errs []error
	for id, it := range w.items {
		g := w.group(it.group)
		if g == nil {
			errs = append(errs, fmt.Errorf("item %s: group %s does not exist", id, it.group))
			continue
		}
		if it.index < 0 || it.index >= len(g.items) || g.items[it.index] != id {
			errs = append(errs, fmt.Errorf("item %s: not at index %d of group %s", id, it.index, g.ID()))
		}
	}
	for _, g := range w.allGroups() {
		seen := make(map[string]bool, len(g.items))
		for i, id := range g.items {
			if seen[id] {
				errs = append(errs, fmt.Errorf("group %s: item %s listed twice", g.ID(), id))
			}
			seen[id] = true
			it := w.items[id]
			if it == nil {
				errs = append(errs, fmt.Errorf("group %s: unknown item %s at %d", g.ID(), id, i))
				continue
			}
			if it.group != g.ref {
				errs = append(errs, fmt.Errorf("group %s: item %s belongs to %s", g.ID(), id, it.group))
			}
		}
		if g.width < 1 {
			errs = append(errs, fmt.Errorf("group %s: width %d", g.ID(), g.width))
		}
		if g.Height() != rowsFor(len(g.items), g.EffectiveWidth()) {
			errs = append(errs, fmt.Errorf("group %s: height mismatch", g.ID()))
		}
	}
	return errors.Join(errs...)
}
