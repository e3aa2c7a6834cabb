package canvas

import (
	"reflect"
	"testing"
	"time"

	"canvasboard/internal/domain"
)

func TestSnapshot_MergeIntoEmptyWorkspaceReproducesState(t *testing.T) {
	ws := newTestWorkspace(t)
	a := User(ws.CreateGroupAt("Reading", 120, -80))
	b := User(ws.CreateGroupAt("Recipes", 900, 400))
	addItems(ws, a, 5)
	addItems(ws, b, 2)
	addItems(ws, Inbox(), 3)
	ws.SetWidth(a, 2)
	ws.BringToFront(a)
	ws.Camera().SetZoom(0.8)
	ws.Camera().LookAt(300, 120)
	ws.Tick(time.Second)

	snap := ws.Snapshot()
	if snap.Version != domain.SnapshotVersion {
		t.Errorf("version = %d", snap.Version)
	}
	if len(snap.Groups) != 4 || len(snap.Items) != 10 {
		t.Fatalf("snapshot has %d groups, %d items", len(snap.Groups), len(snap.Items))
	}

	restored := newTestWorkspace(t)
	restored.Merge(snap)
	mustCheck(t, restored)

	again := restored.Snapshot()
	if !reflect.DeepEqual(again.Groups, snap.Groups) {
		t.Errorf("groups differ:\n got %+v\nwant %+v", again.Groups, snap.Groups)
	}
	if !reflect.DeepEqual(again.Items, snap.Items) {
		t.Errorf("items differ:\n got %+v\nwant %+v", again.Items, snap.Items)
	}
	if again.Camera != snap.Camera {
		t.Errorf("camera = %+v, want %+v", again.Camera, snap.Camera)
	}
	if restored.Animating() {
		t.Error("merged workspace starts mid-transition")
	}
}

func TestMerge_RepairsArrangements(t *testing.T) {
	ws := newTestWorkspace(t)
	snap := domain.NewSnapshot()
	snap.Groups["g1"] = domain.Group{ID: "g1", Title: "G", Width: 2, Items: []string{"z", "z", "ghost", "w"}}
	snap.Items["z"] = domain.Item{ID: "z", GroupID: "g1", Index: 0}
	snap.Items["w"] = domain.Item{ID: "w", GroupID: "g1", Index: 1}
	snap.Items["x"] = domain.Item{ID: "x", GroupID: "no-such-group", Index: 0}
	snap.Items["y"] = domain.Item{ID: "y", GroupID: domain.HiddenGroupID, Index: 0}

	ws.Merge(snap)
	mustCheck(t, ws)

	g, ok := ws.Group(User("g1"))
	if !ok {
		t.Fatal("group g1 not created")
	}
	if !reflect.DeepEqual(g.Items(), []string{"z", "w"}) {
		t.Errorf("g1 = %v, want [z w]", g.Items())
	}
	for _, id := range []string{"x", "y"} {
		it, _ := ws.Item(id)
		if it.Group() != Inbox() {
			t.Errorf("item %s in %v, want inbox", id, it.Group())
		}
	}
	hidden, _ := ws.Group(Hidden())
	if hidden.Len() != 0 {
		t.Errorf("hidden kept %v", hidden.Items())
	}
}

func TestMerge_KeepsLiveEntitiesAndUpdatesFields(t *testing.T) {
	ws := newTestWorkspace(t)
	a := User(ws.CreateGroupAt("Old title", 0, 0))
	ids := addItems(ws, a, 2)
	live := addItems(ws, Inbox(), 1)

	snap := domain.NewSnapshot()
	snap.Groups[a.ID] = domain.Group{ID: a.ID, Title: "New title", Width: 1, X: 50, Y: 60, Z: 9, Items: []string{ids[1], ids[0]}}
	snap.Items["fresh"] = domain.Item{ID: "fresh", URL: "https://fresh", GroupID: a.ID, Index: 2}

	ws.Merge(snap)
	mustCheck(t, ws)

	g, _ := ws.Group(a)
	if g.Title() != "New title" || g.Width() != 1 || g.Z() != 9 {
		t.Errorf("group fields not updated: %q width=%d z=%d", g.Title(), g.Width(), g.Z())
	}
	if x, y := g.Position(); x != 50 || y != 60 {
		t.Errorf("position = (%v, %v)", x, y)
	}
	if want := []string{ids[1], ids[0], "fresh"}; !reflect.DeepEqual(g.Items(), want) {
		t.Errorf("arrangement = %v, want %v", g.Items(), want)
	}
	if _, ok := ws.Item(live[0]); !ok {
		t.Error("live inbox item dropped by merge")
	}
	ws.BringToFront(User(ws.CreateGroupAt("later", 0, 0)))
	if top := ws.Groups()[ws.GroupCount()-1]; top.Z() <= 9 {
		t.Errorf("z counter not advanced past merged groups: %d", top.Z())
	}
}

func TestMerge_KeepsEmptyUserGroups(t *testing.T) {
	ws := newTestWorkspace(t)
	snap := domain.NewSnapshot()
	snap.Groups["empty"] = domain.Group{ID: "empty", Title: "Later", Width: 3}
	ws.Merge(snap)
	if _, ok := ws.Group(User("empty")); !ok {
		t.Error("empty group dropped on merge")
	}
}

func TestMerge_Nil(t *testing.T) {
	ws := newTestWorkspace(t)
	ws.Merge(nil)
	mustCheck(t, ws)
}
