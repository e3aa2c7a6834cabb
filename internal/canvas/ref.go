package canvas

import "canvasboard/internal/domain"

// GroupKind distinguishes the two reserved groups from user groups.
type GroupKind uint8

const (
	KindUser GroupKind = iota
	KindInbox
	KindHidden
)

// GroupRef identifies a group. Reserved groups carry no id.
type GroupRef struct {
	Kind GroupKind
	ID   string
}

func Inbox() GroupRef         { return GroupRef{Kind: KindInbox} }
func Hidden() GroupRef        { return GroupRef{Kind: KindHidden} }
func User(id string) GroupRef { return GroupRef{Kind: KindUser, ID: id} }

// ParseGroupRef maps a persisted group id onto a GroupRef.
func ParseGroupRef(id string) GroupRef {
	switch id {
	case domain.InboxGroupID:
		return Inbox()
	case domain.HiddenGroupID:
		return Hidden()
	default:
		return User(id)
	}
}

// String returns the persisted id.
func (r GroupRef) String() string {
	switch r.Kind {
	case KindInbox:
		return domain.InboxGroupID
	case KindHidden:
		return domain.HiddenGroupID
	default:
		return r.ID
	}
}

type groupCaps struct {
	draggable      bool
	resizable      bool
	rendered       bool
	destroyable    bool
	screenAnchored bool
}

// caps is the single place where per-kind behavior is decided.
func (r GroupRef) caps() groupCaps {
	switch r.Kind {
	case KindInbox:
		return groupCaps{rendered: true, screenAnchored: true}
	case KindHidden:
		return groupCaps{screenAnchored: true}
	case KindUser:
		return groupCaps{draggable: true, resizable: true, rendered: true, destroyable: true}
	}
	return groupCaps{}
}

func (r GroupRef) Draggable() bool      { return r.caps().draggable }
func (r GroupRef) Resizable() bool      { return r.caps().resizable }
func (r GroupRef) Rendered() bool       { return r.caps().rendered }
func (r GroupRef) Destroyable() bool    { return r.caps().destroyable }
func (r GroupRef) ScreenAnchored() bool { return r.caps().screenAnchored }
func (r GroupRef) Reserved() bool       { return r.Kind != KindUser }
