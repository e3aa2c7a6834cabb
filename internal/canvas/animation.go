package canvas

import (
	"math"
	"time"
)

// AnimationDuration is the length of every layout transition.
const AnimationDuration = 150 * time.Millisecond

// Tick advances every running transition by dt. Items being dragged are
// skipped because they follow the pointer. Tick only touches
// interpolation state and reports whether any transition is still
// running, so hosts can stop requesting frames when idle.
func (w *Workspace) Tick(dt time.Duration) bool {
	if dt < 0 {
		dt = 0
	}
	step := float64(dt) / float64(AnimationDuration)
	active := false
	for _, it := range w.items {
		if !it.animating() {
			continue
		}
		it.t = math.Min(1, it.t+step)
		if it.t < 1 {
			active = true
		}
	}
	for _, g := range w.allGroups() {
		if !g.animating() {
			continue
		}
		g.t = math.Min(1, g.t+step)
		if g.t < 1 {
			active = true
		}
	}
	return active
}

// Animating reports whether any transition has not finished.
func (w *Workspace) Animating() bool {
	for _, it := range w.items {
		if it.animating() {
			return true
		}
	}
	for _, g := range w.allGroups() {
		if g.animating() {
			return true
		}
	}
	return false
}
