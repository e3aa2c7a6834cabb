package canvas

import (
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"canvasboard/internal/domain"
)

// DefaultGroupWidth is the column count of newly created user groups.
const DefaultGroupWidth = 3

// wheelZoomRate converts wheel delta pixels into an exponential zoom factor.
const wheelZoomRate = 0.002

// Option configures a Workspace.
type Option func(*Workspace)

// WithLogger sets the logger used for invariant and fallback reports.
func WithLogger(l *slog.Logger) Option {
	return func(w *Workspace) {
		if l != nil {
			w.log = l
		}
	}
}

// WithEmitter sets the receiver of workspace events.
func WithEmitter(e domain.EventEmitter) Option {
	return func(w *Workspace) {
		if e != nil {
			w.emit = e
		}
	}
}

// WithIDGenerator replaces uuid-based id generation. Used by tests.
func WithIDGenerator(f func() string) Option {
	return func(w *Workspace) {
		if f != nil {
			w.newID = f
		}
	}
}

// WithClock replaces time.Now for item timestamps.
func WithClock(f func() time.Time) Option {
	return func(w *Workspace) {
		if f != nil {
			w.now = f
		}
	}
}

// Workspace is the aggregate that owns the camera, all groups and all
// items. Entities refer to each other by id only, and every mutation goes
// through a Workspace method. A Workspace is not safe for concurrent use;
// hosts drive it from a single goroutine.
type Workspace struct {
	camera *Camera
	inbox  *Group
	hidden *Group
	groups map[string]*Group
	items  map[string]*Item

	anyDragging  bool
	anyOverTrash bool
	inboxScroll  float64
	topZ         int

	log   *slog.Logger
	emit  domain.EventEmitter
	newID func() string
	now   func() time.Time
}

// New creates an empty workspace with the inbox and hidden groups.
func New(opts ...Option) *Workspace {
	w := &Workspace{
		camera: NewCamera(),
		inbox:  newGroup(Inbox(), "Inbox", 1),
		hidden: newGroup(Hidden(), "", 1),
		groups: make(map[string]*Group),
		items:  make(map[string]*Item),
		log:    slog.Default(),
		emit:   domain.NopEmitter{},
		newID:  uuid.NewString,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.camera.changed = w.reanchor
	w.reanchor()
	return w
}

func (w *Workspace) Camera() *Camera      { return w.camera }
func (w *Workspace) AnyDragging() bool    { return w.anyDragging }
func (w *Workspace) AnyOverTrash() bool   { return w.anyOverTrash }
func (w *Workspace) InboxScroll() float64 { return w.inboxScroll }
func (w *Workspace) ItemCount() int       { return len(w.items) }
func (w *Workspace) GroupCount() int      { return len(w.groups) }

// Group looks up a group by reference.
func (w *Workspace) Group(ref GroupRef) (*Group, bool) {
	g := w.group(ref)
	return g, g != nil
}

// Item looks up an item by id.
func (w *Workspace) Item(id string) (*Item, bool) {
	it, ok := w.items[id]
	return it, ok
}

// Groups returns the user groups in stacking order, bottom first.
func (w *Workspace) Groups() []*Group {
	out := make([]*Group, 0, len(w.groups))
	for _, g := range w.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].z != out[j].z {
			return out[i].z < out[j].z
		}
		return out[i].ref.ID < out[j].ref.ID
	})
	return out
}

// GroupItems returns the items of a group in arrangement order.
func (w *Workspace) GroupItems(ref GroupRef) []*Item {
	g := w.group(ref)
	if g == nil {
		return nil
	}
	out := make([]*Item, 0, len(g.items))
	for _, id := range g.items {
		if it := w.items[id]; it != nil {
			out = append(out, it)
		}
	}
	return out
}

func (w *Workspace) group(ref GroupRef) *Group {
	switch ref.Kind {
	case KindInbox:
		return w.inbox
	case KindHidden:
		return w.hidden
	default:
		return w.groups[ref.ID]
	}
}

func (w *Workspace) allGroups() []*Group {
	out := make([]*Group, 0, len(w.groups)+2)
	out = append(out, w.inbox, w.hidden)
	for _, g := range w.groups {
		out = append(out, g)
	}
	return out
}

// reanchor keeps the screen-anchored groups fixed on screen after any
// camera change: the inbox follows the viewport's left edge, the hidden
// group the screen origin.
func (w *Workspace) reanchor() {
	s := 1 / w.camera.Zoom()
	w.inbox.scale = s
	w.hidden.scale = s
	w.inbox.x, w.inbox.y = w.camera.ScreenToWorld(0, -w.inboxScroll)
	w.hidden.x, w.hidden.y = w.camera.ScreenToWorld(0, 0)
}

// SetViewport records the host viewport size.
func (w *Workspace) SetViewport(v Viewport) {
	w.camera.SetViewport(v)
	w.ScrollInbox(0)
}

// ─────────────────────────────────────────────────────────────
// Item geometry
// ─────────────────────────────────────────────────────────────

func (w *Workspace) itemTarget(it *Item) (float64, float64) {
	g := w.group(it.group)
	if g == nil {
		return it.fromX, it.fromY
	}
	ox, oy := cellOffset(CellOf(it.index, g.EffectiveWidth()))
	return g.x + ox*g.scale, g.y + oy*g.scale
}

// ItemPosition returns the item's current world-space top-left corner:
// the pointer-tracking position while dragged, otherwise the eased
// position between its animation start and its grid cell.
func (w *Workspace) ItemPosition(it *Item) (float64, float64) {
	if it.dragging {
		return it.dragX, it.dragY
	}
	tx, ty := w.itemTarget(it)
	if it.t >= 1 {
		return tx, ty
	}
	e := easeOut.At(it.t)
	return lerp(it.fromX, tx, e), lerp(it.fromY, ty, e)
}

// ItemBounds returns the item's current world-space rectangle.
func (w *Workspace) ItemBounds(it *Item) Rect {
	scale := 1.0
	if g := w.group(it.group); g != nil {
		scale = g.scale
	}
	x, y := w.ItemPosition(it)
	return Rect{X: x, Y: y, W: ItemWidth * scale, H: ItemHeight * scale}
}

// ScreenRect projects a world-space rectangle into screen space.
func (w *Workspace) ScreenRect(r Rect) Rect {
	x0, y0 := w.camera.WorldToScreen(r.X, r.Y)
	x1, y1 := w.camera.WorldToScreen(r.X+r.W, r.Y+r.H)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// ─────────────────────────────────────────────────────────────
// Relayout bookkeeping
// ─────────────────────────────────────────────────────────────

type placement struct {
	group GroupRef
	cell  Cell
	x, y  float64
}

type sizeSnapshot struct {
	w, h   float64
	tw, th float64
}

func (w *Workspace) slotOf(it *Item) (GroupRef, Cell) {
	width := 1
	if g := w.group(it.group); g != nil {
		width = g.EffectiveWidth()
	}
	return it.group, CellOf(it.index, width)
}

// relayout applies mutate and starts a transition for every item of the
// given groups whose group or cell changed, and for every given group
// whose target size changed. Transitions start from the value rendered
// just before the change.
func (w *Workspace) relayout(mutate func(), refs ...GroupRef) {
	before := make(map[string]placement)
	sizes := make(map[GroupRef]sizeSnapshot)
	for _, ref := range refs {
		g := w.group(ref)
		if g == nil {
			continue
		}
		cw, ch := g.Size()
		tw, th := g.TargetSize()
		sizes[ref] = sizeSnapshot{w: cw, h: ch, tw: tw, th: th}
		for _, id := range g.items {
			it := w.items[id]
			if it == nil {
				continue
			}
			ref, cell := w.slotOf(it)
			x, y := w.ItemPosition(it)
			before[id] = placement{group: ref, cell: cell, x: x, y: y}
		}
	}

	mutate()

	for id, p := range before {
		it := w.items[id]
		if it == nil || it.dragging {
			continue
		}
		ref, cell := w.slotOf(it)
		if ref != p.group || cell != p.cell {
			it.fromX, it.fromY = p.x, p.y
			it.t = 0
		}
	}
	for ref, s := range sizes {
		g := w.group(ref)
		if g == nil {
			continue
		}
		tw, th := g.TargetSize()
		if tw != s.tw || th != s.th {
			g.fromW, g.fromH = s.w, s.h
			g.t = 0
		}
	}
}

func (w *Workspace) reindex(g *Group) {
	for i, id := range g.items {
		if it := w.items[id]; it != nil {
			it.group = g.ref
			it.index = i
		}
	}
}

// ─────────────────────────────────────────────────────────────
// Items
// ─────────────────────────────────────────────────────────────

// CreateItem saves a card at the front of a group and returns its id.
// Unknown groups and the hidden group fall back to the inbox.
func (w *Workspace) CreateItem(url, title, image, favicon string, into GroupRef) string {
	g := w.group(into)
	if g == nil || into.Kind == KindHidden {
		w.log.Warn("canvas: create item in unavailable group, using inbox", "group", into.String())
		g = w.inbox
	}
	it := &Item{
		id:        w.newID(),
		url:       url,
		title:     title,
		image:     image,
		favicon:   favicon,
		createdAt: w.now(),
		t:         1,
	}
	w.relayout(func() {
		w.items[it.id] = it
		g.insert(it.id, 0)
		w.reindex(g)
	}, g.ref)
	w.emit.Emit(domain.EventItemCreated, it.id)
	return it.id
}

// RemoveItem deletes an item. A user group left empty is destroyed.
func (w *Workspace) RemoveItem(id string) bool {
	it := w.items[id]
	if it == nil {
		return false
	}
	g := w.group(it.group)
	if !w.invariant(g != nil, "item %s references missing group %s", id, it.group) {
		delete(w.items, id)
		return true
	}
	w.relayout(func() {
		g.remove(id)
		delete(w.items, id)
		w.reindex(g)
	}, g.ref)
	w.emit.Emit(domain.EventItemTrashed, id)
	w.destroyIfEmpty(g)
	return true
}

// MoveItem places an item at index within a group, removing it from its
// current group first. Index is clamped to the valid range. It returns
// false when nothing changed or a reference is stale. A user group
// emptied by the move is destroyed unless the item is mid-drag.
func (w *Workspace) MoveItem(id string, ref GroupRef, index int) bool {
	it := w.items[id]
	if it == nil {
		return false
	}
	from := w.group(it.group)
	to := w.group(ref)
	if from == nil || to == nil {
		return false
	}
	if from == to {
		index = clampInt(index, 0, len(to.items)-1)
		if index == it.index {
			return false
		}
	}
	w.relayout(func() {
		from.remove(id)
		to.insert(id, index)
		w.reindex(from)
		if to != from {
			w.reindex(to)
		}
	}, from.ref, to.ref)
	w.emit.Emit(domain.EventItemMoved, id)
	if !it.dragging {
		w.destroyIfEmpty(from)
	}
	return true
}

// ─────────────────────────────────────────────────────────────
// Groups
// ─────────────────────────────────────────────────────────────

// CreateGroup creates an empty user group in free space near the top-left
// of the visible canvas and returns its id.
func (w *Workspace) CreateGroup(title string) string {
	gw, gh := gridPixelSize(DefaultGroupWidth, 0)
	ox, oy := w.camera.ScreenToWorld(InboxColumnWidth+newGroupMargin, newGroupMargin)
	existing := make([]Rect, 0, len(w.groups))
	for _, g := range w.groups {
		existing = append(existing, g.Bounds())
	}
	x, y := nextFreePosition(existing, gw, gh, ox, oy)
	return w.createGroupAt(title, x, y).ID()
}

// CreateGroupAt creates an empty user group with its origin at (x, y).
func (w *Workspace) CreateGroupAt(title string, x, y float64) string {
	return w.createGroupAt(title, x, y).ID()
}

func (w *Workspace) createGroupAt(title string, x, y float64) *Group {
	g := newGroup(User(w.newID()), title, DefaultGroupWidth)
	g.x, g.y = x, y
	w.topZ++
	g.z = w.topZ
	w.groups[g.ref.ID] = g
	w.emit.Emit(domain.EventGroupCreated, g.ID())
	return g
}

// DeleteGroup destroys a user group together with its items. Reserved
// groups cannot be deleted.
func (w *Workspace) DeleteGroup(ref GroupRef) bool {
	if !ref.Destroyable() {
		return false
	}
	g := w.groups[ref.ID]
	if g == nil {
		return false
	}
	for _, id := range g.items {
		delete(w.items, id)
	}
	g.items = nil
	w.destroyGroup(g)
	return true
}

func (w *Workspace) destroyGroup(g *Group) {
	delete(w.groups, g.ref.ID)
	w.emit.Emit(domain.EventGroupDestroyed, g.ID())
}

func (w *Workspace) destroyIfEmpty(g *Group) {
	if g.ref.Destroyable() && len(g.items) == 0 && w.groups[g.ref.ID] == g {
		w.destroyGroup(g)
	}
}

// RenameGroup sets a user group's title and clears its rename prompt.
func (w *Workspace) RenameGroup(ref GroupRef, title string) bool {
	if ref.Reserved() {
		return false
	}
	g := w.group(ref)
	if g == nil {
		return false
	}
	g.title = strings.TrimSpace(title)
	g.renamePending = false
	return true
}

// SetWidth commits a new column count; values below 1 are clamped.
func (w *Workspace) SetWidth(ref GroupRef, width int) bool {
	g := w.group(ref)
	if g == nil || !ref.Resizable() {
		return false
	}
	if width < 1 {
		width = 1
	}
	if width == g.width && !g.resizing {
		return false
	}
	w.relayout(func() {
		g.width = width
		g.resizing = false
	}, ref)
	w.emit.Emit(domain.EventGroupResized, g.ID())
	return true
}

// BeginResize starts an edge resize of a user group.
func (w *Workspace) BeginResize(ref GroupRef) bool {
	g := w.group(ref)
	if g == nil || !ref.Resizable() {
		return false
	}
	g.resizeStartPx, _ = gridPixelSize(g.width, g.Height())
	g.tempWidth = float64(g.width)
	g.resizing = true
	return true
}

// ResizeBy updates the temporary width from the total screen-space
// pointer travel since BeginResize.
func (w *Workspace) ResizeBy(ref GroupRef, dxScreen float64) bool {
	g := w.group(ref)
	if g == nil || !g.resizing {
		return false
	}
	dx, _ := w.camera.ScreenVectorToWorldVector(dxScreen, 0)
	temp := columnsForWidth(g.resizeStartPx + dx/g.scale)
	if temp < 1 {
		temp = 1
	}
	w.relayout(func() { g.tempWidth = temp }, ref)
	return true
}

// EndResize commits the temporary width. A group showing a single row
// rounds to the nearest column count; taller groups round down.
func (w *Workspace) EndResize(ref GroupRef) (int, bool) {
	g := w.group(ref)
	if g == nil || !g.resizing {
		return 0, false
	}
	var cols float64
	if g.Height() == 1 {
		cols = math.Round(g.tempWidth)
	} else {
		cols = math.Floor(g.tempWidth)
	}
	width := int(cols)
	if width < 1 {
		width = 1
	}
	w.relayout(func() {
		g.width = width
		g.resizing = false
	}, ref)
	w.emit.Emit(domain.EventGroupResized, g.ID())
	return width, true
}

// BeginMove marks a user group as being dragged.
func (w *Workspace) BeginMove(ref GroupRef) bool {
	g := w.group(ref)
	if g == nil || !ref.Draggable() {
		return false
	}
	g.moving = true
	return true
}

// MoveGroupBy translates a group by a screen-space delta converted to
// world space, so the group tracks the cursor at any zoom.
func (w *Workspace) MoveGroupBy(ref GroupRef, dxScreen, dyScreen float64) bool {
	g := w.group(ref)
	if g == nil || !ref.Draggable() {
		return false
	}
	dx, dy := w.camera.ScreenVectorToWorldVector(dxScreen, dyScreen)
	g.x += dx
	g.y += dy
	for _, id := range g.items {
		if it := w.items[id]; it != nil && it.t < 1 {
			it.fromX += dx
			it.fromY += dy
		}
	}
	return true
}

// EndMove clears the group's move transient.
func (w *Workspace) EndMove(ref GroupRef) {
	if g := w.group(ref); g != nil {
		g.moving = false
	}
}

// BringToFront raises a user group above all others.
func (w *Workspace) BringToFront(ref GroupRef) {
	if ref.Kind != KindUser {
		return
	}
	g := w.groups[ref.ID]
	if g == nil {
		return
	}
	w.topZ++
	g.z = w.topZ
}

// SetHover marks a single group as hovered, clearing all others. A zero
// GroupRef with ok=false clears hovering everywhere.
func (w *Workspace) SetHover(ref GroupRef, ok bool) {
	for _, g := range w.allGroups() {
		g.hovering = ok && g.ref == ref
	}
}

// HoveredGroup returns the currently hovered group, if any.
func (w *Workspace) HoveredGroup() (GroupRef, bool) {
	for _, g := range w.allGroups() {
		if g.hovering {
			return g.ref, true
		}
	}
	return GroupRef{}, false
}

// ─────────────────────────────────────────────────────────────
// Camera commands
// ─────────────────────────────────────────────────────────────

// ScrollInbox scrolls the inbox column by dy screen pixels.
func (w *Workspace) ScrollInbox(dy float64) {
	_, contentH := gridPixelSize(1, w.inbox.Height())
	maxScroll := math.Max(0, contentH-w.camera.Viewport().Height)
	w.inboxScroll = math.Max(0, math.Min(maxScroll, w.inboxScroll+dy))
	w.reanchor()
}

// Wheel handles a wheel event: over the inbox column it scrolls the
// inbox, elsewhere it zooms around the cursor.
func (w *Workspace) Wheel(sx, sy, delta float64) {
	if sx < InboxColumnWidth {
		w.ScrollInbox(delta)
		return
	}
	w.camera.ZoomAt(sx, sy, math.Exp(-delta*wheelZoomRate))
}

// CenterCamera fits all user groups into the part of the viewport right
// of the inbox column. With no groups it returns to the origin.
func (w *Workspace) CenterCamera() {
	if len(w.groups) == 0 {
		w.camera.SetZoom(DefaultZoom)
		w.camera.LookAt(0, 0)
		return
	}
	var bounds Rect
	first := true
	for _, g := range w.groups {
		if first {
			bounds = g.Bounds()
			first = false
			continue
		}
		bounds = bounds.Union(g.Bounds())
	}
	v := w.camera.Viewport()
	availW := math.Max(v.Width-InboxColumnWidth, 1)
	availH := math.Max(v.Height, 1)
	zoom := math.Min(availW/(bounds.W+2*newGroupMargin), availH/(bounds.H+2*newGroupMargin))
	w.camera.SetZoom(math.Min(zoom, DefaultZoom))

	shift, _ := w.camera.ScreenVectorToWorldVector(InboxColumnWidth/2, 0)
	w.camera.LookAt(bounds.X+bounds.W/2-shift, bounds.Y+bounds.H/2)
}

// CenterCameraOnItem centers the view on an item in a user group.
func (w *Workspace) CenterCameraOnItem(id string) bool {
	it := w.items[id]
	if it == nil {
		return false
	}
	g := w.group(it.group)
	if g == nil || g.ref.ScreenAnchored() {
		return false
	}
	x, y := w.itemTarget(it)
	w.camera.LookAt(x+ItemWidth*g.scale/2, y+ItemHeight*g.scale/2)
	return true
}

// ─────────────────────────────────────────────────────────────
// Spatial queries
// ─────────────────────────────────────────────────────────────

// GroupScreenBounds returns a group's current rectangle in screen space.
func (w *Workspace) GroupScreenBounds(g *Group) Rect {
	return w.ScreenRect(g.Bounds())
}

// ItemScreenBounds returns an item's current rectangle in screen space.
func (w *Workspace) ItemScreenBounds(it *Item) Rect {
	return w.ScreenRect(w.ItemBounds(it))
}

// InInboxColumn reports whether a screen x falls in the inbox column.
func (w *Workspace) InInboxColumn(sx float64) bool {
	return sx >= 0 && sx < InboxColumnWidth
}

// ItemAt returns the top-most rendered item under a screen point. The
// inbox column overlays the canvas; dragged items are skipped.
func (w *Workspace) ItemAt(sx, sy float64) (string, bool) {
	if w.InInboxColumn(sx) {
		return w.itemAtIn(w.inbox, sx, sy)
	}
	for _, g := range w.groupsTopDown() {
		if !w.GroupScreenBounds(g).Contains(sx, sy) {
			continue
		}
		return w.itemAtIn(g, sx, sy)
	}
	return "", false
}

func (w *Workspace) itemAtIn(g *Group, sx, sy float64) (string, bool) {
	for _, id := range g.items {
		it := w.items[id]
		if it == nil || it.dragging {
			continue
		}
		if w.ItemScreenBounds(it).Contains(sx, sy) {
			return id, true
		}
	}
	return "", false
}

// GroupAt returns the top-most user group whose screen rectangle contains
// the point.
func (w *Workspace) GroupAt(sx, sy float64) (GroupRef, bool) {
	for _, g := range w.groupsTopDown() {
		if w.GroupScreenBounds(g).Contains(sx, sy) {
			return g.ref, true
		}
	}
	return GroupRef{}, false
}

func (w *Workspace) groupsTopDown() []*Group {
	gs := w.Groups()
	for i, j := 0, len(gs)-1; i < j; i, j = i+1, j-1 {
		gs[i], gs[j] = gs[j], gs[i]
	}
	return gs
}

// ResolveDropTarget picks the group a drag over (sx, sy) would land in:
// the inbox inside its column, otherwise the top-most user group.
func (w *Workspace) ResolveDropTarget(sx, sy float64) (GroupRef, bool) {
	if w.InInboxColumn(sx) {
		return Inbox(), true
	}
	return w.GroupAt(sx, sy)
}

// IndexAt returns the arrangement index of the cell under a world point.
func (w *Workspace) IndexAt(ref GroupRef, wx, wy float64) int {
	g := w.group(ref)
	if g == nil {
		return 0
	}
	lx := (wx - g.x) / g.scale
	ly := (wy - g.y) / g.scale
	return indexAt(lx, ly, g.EffectiveWidth(), len(g.items))
}

// TrashRect returns the screen-space trash hitbox.
func (w *Workspace) TrashRect() Rect {
	return TrashRect(w.camera.Viewport())
}

// OverTrash reports whether a screen point is inside the trash hitbox.
func (w *Workspace) OverTrash(sx, sy float64) bool {
	return w.TrashRect().Contains(sx, sy)
}

// ─────────────────────────────────────────────────────────────
// Drag transients (driven by Controller)
// ─────────────────────────────────────────────────────────────

func (w *Workspace) beginItemDrag(it *Item) {
	it.dragX, it.dragY = w.ItemPosition(it)
	it.dragging = true
	w.anyDragging = true
}

func (w *Workspace) dragItemTo(it *Item, x, y float64) {
	it.dragX, it.dragY = x, y
}

// endItemDrag releases the item so it eases from where it was dropped
// into its grid cell.
func (w *Workspace) endItemDrag(it *Item) {
	if it.dragging {
		it.fromX, it.fromY = it.dragX, it.dragY
		it.t = 0
	}
	it.dragging = false
	w.anyDragging = false
}

func (w *Workspace) setOverTrash(v bool) {
	w.anyOverTrash = v
}

func (w *Workspace) requestRename(g *Group) {
	g.renamePending = true
	w.emit.Emit(domain.EventGroupRenameRequired, g.ID())
}
