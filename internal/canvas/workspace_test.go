package canvas

import (
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"canvasboard/internal/domain"
)

type recorder struct {
	events []string
}

func (r *recorder) Emit(event string, _ any) {
	r.events = append(r.events, event)
}

func (r *recorder) count(event string) int {
	n := 0
	for _, e := range r.events {
		if e == event {
			n++
		}
	}
	return n
}

func sequence() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
}

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestWorkspace(t *testing.T, opts ...Option) *Workspace {
	t.Helper()
	base := []Option{
		WithIDGenerator(sequence()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return epoch }),
	}
	ws := New(append(base, opts...)...)
	ws.SetViewport(Viewport{Width: 1200, Height: 800})
	return ws
}

// addItems creates items in ref so that the arrangement reads ids in the
// given order.
func addItems(ws *Workspace, ref GroupRef, n int) []string {
	ids := make([]string, n)
	for i := n - 1; i >= 0; i-- {
		ids[i] = ws.CreateItem(fmt.Sprintf("https://example.com/%d", i), "", "", "", ref)
	}
	return ids
}

func mustCheck(t *testing.T, ws *Workspace) {
	t.Helper()
	if err := ws.CheckInvariants(); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

func TestNew_ReservedGroupsExist(t *testing.T) {
	ws := newTestWorkspace(t)
	if _, ok := ws.Group(Inbox()); !ok {
		t.Error("inbox missing")
	}
	if _, ok := ws.Group(Hidden()); !ok {
		t.Error("hidden missing")
	}
	if ws.GroupCount() != 0 {
		t.Errorf("GroupCount = %d, want 0", ws.GroupCount())
	}
	mustCheck(t, ws)
}

func TestCreateItem_InsertsAtFront(t *testing.T) {
	ws := newTestWorkspace(t)
	a := ws.CreateItem("https://a", "A", "", "", Inbox())
	b := ws.CreateItem("https://b", "B", "", "", Inbox())

	g, _ := ws.Group(Inbox())
	if got := g.Items(); !reflect.DeepEqual(got, []string{b, a}) {
		t.Errorf("inbox = %v, want [%s %s]", got, b, a)
	}
	it, _ := ws.Item(a)
	if it.Index() != 1 || it.Group() != Inbox() {
		t.Errorf("item a at %v/%d", it.Group(), it.Index())
	}
	if !it.CreatedAt().Equal(epoch) {
		t.Errorf("CreatedAt = %v", it.CreatedAt())
	}
	mustCheck(t, ws)
}

func TestCreateItem_UnavailableGroupFallsBackToInbox(t *testing.T) {
	ws := newTestWorkspace(t)
	for _, ref := range []GroupRef{Hidden(), User("missing")} {
		id := ws.CreateItem("https://x", "", "", "", ref)
		it, _ := ws.Item(id)
		if it.Group() != Inbox() {
			t.Errorf("CreateItem(%v) landed in %v, want inbox", ref, it.Group())
		}
	}
}

func TestLayout_WidthChangeReflowsGrid(t *testing.T) {
	ws := newTestWorkspace(t)
	ref := User(ws.CreateGroupAt("A", 0, 0))
	ws.SetWidth(ref, 2)
	ids := addItems(ws, ref, 3)
	ws.Tick(time.Second)

	g, _ := ws.Group(ref)
	i3, _ := ws.Item(ids[2])
	if got := CellOf(i3.Index(), g.EffectiveWidth()); got != (Cell{Col: 0, Row: 1}) {
		t.Errorf("width 2: i3 at %v, want (0,1)", got)
	}
	if g.Height() != 2 {
		t.Errorf("width 2: Height = %d, want 2", g.Height())
	}

	ws.SetWidth(ref, 3)
	if got := CellOf(i3.Index(), g.EffectiveWidth()); got != (Cell{Col: 2, Row: 0}) {
		t.Errorf("width 3: i3 at %v, want (2,0)", got)
	}
	if g.Height() != 1 {
		t.Errorf("width 3: Height = %d, want 1", g.Height())
	}
	if i3.Progress() != 0 {
		t.Errorf("moved item progress = %v, want 0", i3.Progress())
	}
	for _, id := range ids[:2] {
		it, _ := ws.Item(id)
		if it.Progress() != 1 {
			t.Errorf("item %s kept its cell but restarted its transition", id)
		}
	}
	if g.Progress() != 0 {
		t.Errorf("group size transition not started")
	}
	mustCheck(t, ws)
}

func TestSetWidth_ClampsAndRejectsReserved(t *testing.T) {
	ws := newTestWorkspace(t)
	ref := User(ws.CreateGroupAt("A", 0, 0))
	ws.SetWidth(ref, -4)
	g, _ := ws.Group(ref)
	if g.Width() != 1 {
		t.Errorf("Width = %d, want 1", g.Width())
	}
	if ws.SetWidth(Inbox(), 3) {
		t.Error("inbox accepted a width change")
	}
}

func TestEndResize_RoundsSingleRowFloorsTaller(t *testing.T) {
	step := ItemWidth + ItemSpacing
	tests := []struct {
		name  string
		items int
		dx    float64
		want  int
	}{
		{"one row rounds up", 2, 1.6 * step, 5},
		{"one row rounds down", 2, 1.4 * step, 4},
		{"several rows floor", 7, 1.6 * step, 4},
		{"shrink clamps to one", 4, -10 * step, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := newTestWorkspace(t)
			ref := User(ws.CreateGroupAt("A", 0, 0))
			addItems(ws, ref, tt.items)

			if !ws.BeginResize(ref) {
				t.Fatal("BeginResize failed")
			}
			ws.ResizeBy(ref, tt.dx)
			got, ok := ws.EndResize(ref)
			if !ok || got != tt.want {
				t.Errorf("EndResize = %d, %v; want %d", got, ok, tt.want)
			}
			g, _ := ws.Group(ref)
			if g.Resizing() {
				t.Error("still resizing after release")
			}
			mustCheck(t, ws)
		})
	}
}

func TestResizeBy_FloorsTemporaryWidth(t *testing.T) {
	ws := newTestWorkspace(t)
	ref := User(ws.CreateGroupAt("A", 0, 0))
	addItems(ws, ref, 5)
	ws.BeginResize(ref)
	ws.ResizeBy(ref, 1.9*(ItemWidth+ItemSpacing))

	g, _ := ws.Group(ref)
	if g.EffectiveWidth() != 4 {
		t.Errorf("EffectiveWidth = %d, want 4", g.EffectiveWidth())
	}
	if g.Width() != 3 {
		t.Errorf("committed width changed during drag: %d", g.Width())
	}
}

func TestMoveItem(t *testing.T) {
	ws := newTestWorkspace(t)
	a := User(ws.CreateGroupAt("A", 0, 0))
	b := User(ws.CreateGroupAt("B", 800, 0))
	ai := addItems(ws, a, 3)
	bi := addItems(ws, b, 1)

	if ws.MoveItem(ai[1], a, 1) {
		t.Error("same-index move reported a change")
	}
	if !ws.MoveItem(ai[0], a, 99) {
		t.Fatal("clamped move failed")
	}
	ga, _ := ws.Group(a)
	if got := ga.Items(); !reflect.DeepEqual(got, []string{ai[1], ai[2], ai[0]}) {
		t.Errorf("A = %v", got)
	}

	ws.MoveItem(ai[2], b, 0)
	gb, _ := ws.Group(b)
	if got := gb.Items(); !reflect.DeepEqual(got, []string{ai[2], bi[0]}) {
		t.Errorf("B = %v", got)
	}
	if ws.MoveItem("missing", b, 0) || ws.MoveItem(ai[0], User("missing"), 0) {
		t.Error("stale reference moved")
	}
	mustCheck(t, ws)
}

func TestEmptiedUserGroupIsDestroyed(t *testing.T) {
	rec := &recorder{}
	ws := newTestWorkspace(t, WithEmitter(rec))
	a := User(ws.CreateGroupAt("A", 0, 0))
	b := User(ws.CreateGroupAt("B", 800, 0))
	ai := addItems(ws, a, 1)
	bi := addItems(ws, b, 1)
	in := addItems(ws, Inbox(), 1)

	ws.MoveItem(ai[0], Inbox(), 0)
	if _, ok := ws.Group(a); ok {
		t.Error("group emptied by move survived")
	}
	ws.RemoveItem(bi[0])
	if _, ok := ws.Group(b); ok {
		t.Error("group emptied by removal survived")
	}
	ws.RemoveItem(in[0])
	ws.RemoveItem(ai[0])
	if _, ok := ws.Group(Inbox()); !ok {
		t.Error("inbox destroyed")
	}
	if rec.count(domain.EventGroupDestroyed) != 2 {
		t.Errorf("destroyed events = %d, want 2", rec.count(domain.EventGroupDestroyed))
	}
	mustCheck(t, ws)
}

func TestDeleteGroup(t *testing.T) {
	ws := newTestWorkspace(t)
	a := User(ws.CreateGroupAt("A", 0, 0))
	addItems(ws, a, 3)

	if ws.DeleteGroup(Inbox()) || ws.DeleteGroup(Hidden()) {
		t.Error("reserved group deleted")
	}
	if !ws.DeleteGroup(a) {
		t.Fatal("DeleteGroup failed")
	}
	if ws.ItemCount() != 0 || ws.GroupCount() != 0 {
		t.Errorf("items=%d groups=%d after delete", ws.ItemCount(), ws.GroupCount())
	}
	mustCheck(t, ws)
}

func TestRenameGroup(t *testing.T) {
	ws := newTestWorkspace(t)
	a := User(ws.CreateGroupAt("", 0, 0))
	g, _ := ws.Group(a)
	g.renamePending = true

	if !ws.RenameGroup(a, "  Reading list ") {
		t.Fatal("rename failed")
	}
	if g.Title() != "Reading list" || g.RenamePending() {
		t.Errorf("title=%q pending=%v", g.Title(), g.RenamePending())
	}
	if ws.RenameGroup(Inbox(), "x") {
		t.Error("inbox renamed")
	}
}

func TestCreateGroup_AvoidsOverlap(t *testing.T) {
	ws := newTestWorkspace(t)
	first := User(ws.CreateGroup("one"))
	second := User(ws.CreateGroup("two"))
	g1, _ := ws.Group(first)
	g2, _ := ws.Group(second)
	if g1.Bounds().Intersects(g2.Bounds()) {
		t.Errorf("groups overlap: %+v %+v", g1.Bounds(), g2.Bounds())
	}
	if g2.Z() <= g1.Z() {
		t.Errorf("new group not on top: z %d <= %d", g2.Z(), g1.Z())
	}
}

func TestBringToFront(t *testing.T) {
	ws := newTestWorkspace(t)
	a := User(ws.CreateGroupAt("A", 0, 0))
	b := User(ws.CreateGroupAt("B", 100, 100))
	ws.BringToFront(a)
	gs := ws.Groups()
	if gs[len(gs)-1].Ref() != a {
		t.Errorf("top group = %v, want %v", gs[len(gs)-1].Ref(), a)
	}
	if ref, _ := ws.GroupAt(ws.Camera().WorldToScreen(150, 110)); ref != a {
		t.Errorf("GroupAt picked %v, want %v above %v", ref, a, b)
	}
}

func TestMoveGroupBy_UsesWorldDelta(t *testing.T) {
	ws := newTestWorkspace(t)
	a := User(ws.CreateGroupAt("A", 10, 20))
	ws.Camera().SetZoom(2)
	ws.MoveGroupBy(a, 100, -40)
	g, _ := ws.Group(a)
	x, y := g.Position()
	if !near(x, 60) || !near(y, 0) {
		t.Errorf("position = (%v, %v), want (60, 0)", x, y)
	}
	if ws.MoveGroupBy(Inbox(), 1, 1) {
		t.Error("inbox moved")
	}
}

func TestScrollInbox_Clamped(t *testing.T) {
	ws := newTestWorkspace(t)
	addItems(ws, Inbox(), 10)

	ws.ScrollInbox(100)
	if ws.InboxScroll() != 100 {
		t.Errorf("scroll = %v, want 100", ws.InboxScroll())
	}
	_, y := ws.Camera().WorldToScreen(ws.inbox.Position())
	if !near(y, -100) {
		t.Errorf("inbox screen y = %v, want -100", y)
	}

	_, contentH := gridPixelSize(1, 10)
	ws.ScrollInbox(1e6)
	if want := contentH - 800; !near(ws.InboxScroll(), want) {
		t.Errorf("scroll = %v, want %v", ws.InboxScroll(), want)
	}
	ws.ScrollInbox(-1e6)
	if ws.InboxScroll() != 0 {
		t.Errorf("scroll = %v, want 0", ws.InboxScroll())
	}
}

func TestWheel(t *testing.T) {
	ws := newTestWorkspace(t)
	addItems(ws, Inbox(), 10)

	ws.Wheel(50, 300, 40)
	if ws.InboxScroll() != 40 || ws.Camera().Zoom() != 1 {
		t.Errorf("wheel over inbox: scroll=%v zoom=%v", ws.InboxScroll(), ws.Camera().Zoom())
	}
	ws.Wheel(600, 400, -100)
	if ws.Camera().Zoom() <= 1 {
		t.Errorf("wheel up did not zoom in: %v", ws.Camera().Zoom())
	}
}

func TestCenterCamera_FitsAllGroups(t *testing.T) {
	ws := newTestWorkspace(t)
	a := User(ws.CreateGroupAt("A", -500, 300))
	b := User(ws.CreateGroupAt("B", 2400, 1800))
	addItems(ws, a, 4)
	addItems(ws, b, 2)
	ws.Tick(time.Second)

	ws.CenterCamera()
	visible := Rect{X: InboxColumnWidth, Y: 0, W: 1200 - InboxColumnWidth, H: 800}
	for _, ref := range []GroupRef{a, b} {
		g, _ := ws.Group(ref)
		r := ws.GroupScreenBounds(g)
		if r.X < visible.X || r.Y < visible.Y || r.X+r.W > visible.X+visible.W || r.Y+r.H > visible.Y+visible.H {
			t.Errorf("group %v at %+v outside %+v", ref, r, visible)
		}
	}
	if ws.Camera().Zoom() > 1 {
		t.Errorf("zoom = %v, want <= 1", ws.Camera().Zoom())
	}
}

func TestCenterCameraOnItem(t *testing.T) {
	ws := newTestWorkspace(t)
	a := User(ws.CreateGroupAt("A", 3000, -2000))
	ids := addItems(ws, a, 4)
	in := addItems(ws, Inbox(), 1)
	ws.Tick(time.Second)

	if !ws.CenterCameraOnItem(ids[3]) {
		t.Fatal("CenterCameraOnItem failed")
	}
	it, _ := ws.Item(ids[3])
	r := ws.ItemScreenBounds(it)
	if !near(r.X+r.W/2, 600) || !near(r.Y+r.H/2, 400) {
		t.Errorf("item center at (%v, %v), want (600, 400)", r.X+r.W/2, r.Y+r.H/2)
	}
	if ws.CenterCameraOnItem(in[0]) {
		t.Error("centered on an inbox item")
	}
}

func TestReservedGroupsKeepScreenSize(t *testing.T) {
	ws := newTestWorkspace(t)
	ids := addItems(ws, Inbox(), 2)
	it, _ := ws.Item(ids[0])

	before := ws.ItemScreenBounds(it)
	ws.Camera().SetZoom(0.5)
	ws.Camera().LookAt(900, -300)
	after := ws.ItemScreenBounds(it)
	if !near(before.X, after.X) || !near(before.Y, after.Y) || !near(before.W, after.W) {
		t.Errorf("inbox item moved on screen: %+v -> %+v", before, after)
	}
}

func TestCheckInvariants_DetectsCorruption(t *testing.T) {
	ws := newTestWorkspace(t)
	ids := addItems(ws, Inbox(), 2)
	ws.inbox.items = append(ws.inbox.items, ids[0])
	if err := ws.CheckInvariants(); err == nil {
		t.Error("duplicate arrangement entry not reported")
	}
}
