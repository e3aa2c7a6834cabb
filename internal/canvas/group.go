package canvas

import "math"

// Group is a rectangular container that lays its items out in a
// row-major grid. Height is always derived from the arrangement.
type Group struct {
	ref   GroupRef
	title string
	items []string
	width int
	x, y  float64
	z     int

	// scale is the render scale applied to the unscaled layout. User
	// groups live in world space at scale 1; screen-anchored groups use
	// 1/zoom so they keep a constant on-screen size.
	scale float64

	moving        bool
	resizing      bool
	tempWidth     float64
	resizeStartPx float64
	hovering      bool
	renamePending bool

	// animation transients for the pixel size
	fromW, fromH float64
	t            float64
}

func newGroup(ref GroupRef, title string, width int) *Group {
	if width < 1 {
		width = 1
	}
	return &Group{ref: ref, title: title, width: width, scale: 1, t: 1}
}

func (g *Group) Ref() GroupRef       { return g.ref }
func (g *Group) ID() string          { return g.ref.String() }
func (g *Group) Title() string       { return g.title }
func (g *Group) Width() int          { return g.width }
func (g *Group) Z() int              { return g.z }
func (g *Group) Scale() float64      { return g.scale }
func (g *Group) Len() int            { return len(g.items) }
func (g *Group) Moving() bool        { return g.moving }
func (g *Group) Resizing() bool      { return g.resizing }
func (g *Group) Hovering() bool      { return g.hovering }
func (g *Group) RenamePending() bool { return g.renamePending }
func (g *Group) Progress() float64   { return g.t }

// Position returns the group's world-space origin.
func (g *Group) Position() (float64, float64) { return g.x, g.y }

// Items returns a copy of the arrangement.
func (g *Group) Items() []string {
	out := make([]string, len(g.items))
	copy(out, g.items)
	return out
}

// EffectiveWidth is the column count used for layout: the temporary
// width while a resize is in progress, the committed width otherwise.
func (g *Group) EffectiveWidth() int {
	if g.resizing {
		w := int(math.Floor(g.tempWidth))
		if w < 1 {
			w = 1
		}
		return w
	}
	return g.width
}

// Height is the number of grid rows, ceil(len(items)/width).
func (g *Group) Height() int {
	return rowsFor(len(g.items), g.EffectiveWidth())
}

// TargetSize is the world-space size the group is animating towards.
func (g *Group) TargetSize() (float64, float64) {
	w, h := gridPixelSize(g.EffectiveWidth(), g.Height())
	return w * g.scale, h * g.scale
}

// Size is the current, possibly mid-animation, world-space size.
func (g *Group) Size() (float64, float64) {
	tw, th := g.TargetSize()
	if g.t >= 1 {
		return tw, th
	}
	e := easeOut.At(g.t)
	return lerp(g.fromW, tw, e), lerp(g.fromH, th, e)
}

// Bounds is the current world-space rectangle of the group.
func (g *Group) Bounds() Rect {
	w, h := g.Size()
	return Rect{X: g.x, Y: g.y, W: w, H: h}
}

func (g *Group) indexOf(id string) int {
	for i, v := range g.items {
		if v == id {
			return i
		}
	}
	return -1
}

func (g *Group) remove(id string) bool {
	i := g.indexOf(id)
	if i < 0 {
		return false
	}
	g.items = append(g.items[:i], g.items[i+1:]...)
	return true
}

func (g *Group) insert(id string, at int) int {
	at = clampInt(at, 0, len(g.items))
	g.items = append(g.items, "")
	copy(g.items[at+1:], g.items[at:])
	g.items[at] = id
	return at
}

func (g *Group) animating() bool {
	return g.t < 1
}
