package canvas

import "time"

// Item is a card placed in a group. Its fields are owned by the
// Workspace; hosts read them through the accessors.
type Item struct {
	id        string
	url       string
	title     string
	image     string
	favicon   string
	createdAt time.Time

	group GroupRef
	index int

	// drag transients; dragX/dragY is the item's world-space top-left
	// while it follows the pointer.
	dragging     bool
	dragX, dragY float64

	// animation transients
	fromX, fromY float64
	t            float64
}

func (it *Item) ID() string           { return it.id }
func (it *Item) URL() string          { return it.url }
func (it *Item) Title() string        { return it.title }
func (it *Item) Image() string        { return it.image }
func (it *Item) Favicon() string      { return it.favicon }
func (it *Item) CreatedAt() time.Time { return it.createdAt }
func (it *Item) Group() GroupRef      { return it.group }
func (it *Item) Index() int           { return it.index }
func (it *Item) Dragging() bool       { return it.dragging }

// Progress is the interpolation parameter of the item's current
// transition, 1 when settled.
func (it *Item) Progress() float64 { return it.t }

func (it *Item) animating() bool {
	return !it.dragging && it.t < 1
}
