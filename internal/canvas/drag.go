package canvas

// PointerKind is the phase of a pointer event.
type PointerKind uint8

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
)

// Button identifies the pointer button of an event.
type Button uint8

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

// PointerEvent is a host pointer event in screen pixels.
type PointerEvent struct {
	Kind   PointerKind
	X, Y   float64
	Button Button
}

// DragState is the controller's interaction state.
type DragState uint8

const (
	StateIdle DragState = iota
	StateItemArmed
	StateItemDragging
	StateGroupArmed
	StateGroupResizing
	StateGroupMoving
)

func (s DragState) String() string {
	switch s {
	case StateItemArmed:
		return "item-armed"
	case StateItemDragging:
		return "item-dragging"
	case StateGroupArmed:
		return "group-armed"
	case StateGroupResizing:
		return "group-resizing"
	case StateGroupMoving:
		return "group-moving"
	default:
		return "idle"
	}
}

// Controller turns a pointer event stream into workspace mutations. Each
// event recomputes the drag outcome from scratch, so an abandoned drag
// leaves nothing to clean up beyond the transients cleared on release.
type Controller struct {
	ws    *Workspace
	state DragState

	downX, downY float64
	lastX, lastY float64

	// item drag
	itemID       string
	origin       GroupRef
	target       GroupRef
	hasTarget    bool
	grabX, grabY float64

	// group drag
	group  GroupRef
	resize bool
}

// NewController returns an idle controller for ws.
func NewController(ws *Workspace) *Controller {
	return &Controller{ws: ws}
}

func (c *Controller) State() DragState { return c.state }

// DraggedItem returns the id of the item being dragged, if any.
func (c *Controller) DraggedItem() (string, bool) {
	if c.state != StateItemDragging {
		return "", false
	}
	return c.itemID, true
}

// DropTarget returns the group the dragged item would land in if released
// now. ok is false over empty canvas, over the trash, or when idle.
func (c *Controller) DropTarget() (GroupRef, bool) {
	if c.state != StateItemDragging || !c.hasTarget {
		return GroupRef{}, false
	}
	return c.target, true
}

// Handle dispatches a pointer event.
func (c *Controller) Handle(ev PointerEvent) {
	switch ev.Kind {
	case PointerDown:
		c.PointerDown(ev)
	case PointerMove:
		c.PointerMove(ev)
	case PointerUp:
		c.PointerUp(ev)
	}
}

// PointerDown arms an item drag when pressing an item, otherwise a group
// resize (near the right edge) or move. The inbox column never arms a
// group gesture. A gesture still in flight is committed first.
func (c *Controller) PointerDown(ev PointerEvent) {
	if ev.Button != ButtonLeft {
		return
	}
	if c.state != StateIdle {
		c.Cancel()
	}
	c.downX, c.downY = ev.X, ev.Y
	c.lastX, c.lastY = ev.X, ev.Y

	if id, ok := c.ws.ItemAt(ev.X, ev.Y); ok {
		it := c.ws.items[id]
		x, y := c.ws.ItemPosition(it)
		wx, wy := c.ws.camera.ScreenToWorld(ev.X, ev.Y)
		c.itemID = id
		c.grabX, c.grabY = wx-x, wy-y
		c.state = StateItemArmed
		return
	}
	if c.ws.InInboxColumn(ev.X) {
		return
	}
	if ref, ok := c.ws.GroupAt(ev.X, ev.Y); ok {
		g := c.ws.group(ref)
		r := c.ws.GroupScreenBounds(g)
		c.group = ref
		c.resize = ev.X >= r.X+r.W-ResizeHandleMargin
		c.state = StateGroupArmed
		c.ws.BringToFront(ref)
	}
}

// PointerMove advances the active gesture, or tracks hover when idle.
func (c *Controller) PointerMove(ev PointerEvent) {
	defer func() { c.lastX, c.lastY = ev.X, ev.Y }()

	switch c.state {
	case StateIdle:
		c.trackHover(ev)

	case StateItemArmed:
		dx, dy := ev.X-c.downX, ev.Y-c.downY
		if dx*dx+dy*dy <= DragThresholdSq {
			return
		}
		it := c.ws.items[c.itemID]
		if it == nil || c.ws.group(it.group) == nil {
			c.reset()
			return
		}
		c.ws.beginItemDrag(it)
		c.origin = it.group
		c.target = it.group
		c.hasTarget = true
		c.state = StateItemDragging
		c.dragItem(ev)

	case StateItemDragging:
		c.dragItem(ev)

	case StateGroupArmed:
		if c.ws.group(c.group) == nil {
			c.reset()
			return
		}
		if c.resize {
			if !c.ws.BeginResize(c.group) {
				c.reset()
				return
			}
			c.state = StateGroupResizing
			c.ws.ResizeBy(c.group, ev.X-c.downX)
			return
		}
		if !c.ws.BeginMove(c.group) {
			c.reset()
			return
		}
		c.state = StateGroupMoving
		c.ws.MoveGroupBy(c.group, ev.X-c.lastX, ev.Y-c.lastY)

	case StateGroupResizing:
		if !c.ws.ResizeBy(c.group, ev.X-c.downX) {
			c.reset()
		}

	case StateGroupMoving:
		if !c.ws.MoveGroupBy(c.group, ev.X-c.lastX, ev.Y-c.lastY) {
			c.reset()
		}
	}
}

// dragItem runs one step of the drag-move algorithm.
func (c *Controller) dragItem(ev PointerEvent) {
	it := c.ws.items[c.itemID]
	if it == nil || c.ws.group(it.group) == nil {
		c.abort()
		return
	}
	wx, wy := c.ws.camera.ScreenToWorld(ev.X, ev.Y)
	c.ws.dragItemTo(it, wx-c.grabX, wy-c.grabY)

	if c.ws.OverTrash(ev.X, ev.Y) {
		c.ws.setOverTrash(true)
		c.hasTarget = false
		c.park(it)
		return
	}
	c.ws.setOverTrash(false)

	ref, ok := c.ws.ResolveDropTarget(ev.X, ev.Y)
	if !ok {
		// Over empty canvas: hold the item in the hidden group so the
		// origin group closes the gap while the drop is undecided.
		c.hasTarget = false
		c.park(it)
		return
	}
	c.target, c.hasTarget = ref, true

	if it.group != ref {
		g := c.ws.group(ref)
		c.ws.MoveItem(it.id, ref, len(g.items))
		c.ws.BringToFront(ref)
	}
	if idx := c.ws.IndexAt(ref, wx, wy); idx != it.index {
		c.ws.MoveItem(it.id, ref, idx)
	}
}

func (c *Controller) park(it *Item) {
	if it.group.Kind != KindHidden {
		c.ws.MoveItem(it.id, Hidden(), len(c.ws.hidden.items))
	}
}

// PointerUp resolves the active gesture.
func (c *Controller) PointerUp(ev PointerEvent) {
	switch c.state {
	case StateItemDragging:
		c.dropItem(ev)
	case StateGroupResizing:
		c.ws.EndResize(c.group)
	case StateGroupMoving:
		c.ws.EndMove(c.group)
	}
	c.reset()
}

func (c *Controller) dropItem(ev PointerEvent) {
	it := c.ws.items[c.itemID]
	if it == nil || c.ws.group(it.group) == nil {
		c.abort()
		return
	}

	var dest GroupRef
	hasDest := true
	switch {
	case c.ws.anyOverTrash:
		c.ws.endItemDrag(it)
		c.ws.RemoveItem(it.id)
		hasDest = false

	case !c.hasTarget:
		ox, oy := cellOffset(Cell{})
		g := c.ws.createGroupAt("", it.dragX-ox, it.dragY-oy)
		c.ws.MoveItem(it.id, g.ref, 0)
		c.ws.requestRename(g)
		c.ws.endItemDrag(it)
		dest = g.ref

	default:
		c.ws.endItemDrag(it)
		dest = it.group
	}

	if c.origin.Destroyable() {
		if g := c.ws.group(c.origin); g != nil {
			c.ws.destroyIfEmpty(g)
		}
	}
	c.ws.setOverTrash(false)
	c.ws.SetHover(dest, hasDest)
}

// abort drops a drag whose item or group disappeared out-of-band.
func (c *Controller) abort() {
	if it := c.ws.items[c.itemID]; it != nil {
		c.ws.endItemDrag(it)
	}
	c.ws.anyDragging = false
	c.ws.setOverTrash(false)
	c.reset()
}

// Cancel abandons the current gesture, committing whatever state the
// last event produced.
func (c *Controller) Cancel() {
	switch c.state {
	case StateItemDragging:
		c.PointerUp(PointerEvent{Kind: PointerUp, X: c.lastX, Y: c.lastY, Button: ButtonLeft})
	case StateGroupResizing:
		c.ws.EndResize(c.group)
	case StateGroupMoving:
		c.ws.EndMove(c.group)
	}
	c.reset()
}

func (c *Controller) trackHover(ev PointerEvent) {
	if c.ws.InInboxColumn(ev.X) {
		c.ws.SetHover(Inbox(), true)
		return
	}
	ref, ok := c.ws.GroupAt(ev.X, ev.Y)
	c.ws.SetHover(ref, ok)
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.itemID = ""
	c.origin = GroupRef{}
	c.target = GroupRef{}
	c.hasTarget = false
	c.group = GroupRef{}
	c.resize = false
}
