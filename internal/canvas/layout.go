package canvas

import "math"

// Item cell and group chrome dimensions, in unscaled pixels.
const (
	ItemWidth      = 160.0
	ItemHeight     = 120.0
	ItemSpacing    = 12.0
	GroupPadding   = 12.0
	GroupBorder    = 2.0
	TitleBarHeight = 28.0

	MinGroupPixelWidth  = ItemWidth + 2*(GroupPadding+GroupBorder)
	MinGroupPixelHeight = TitleBarHeight + ItemHeight/2 + 2*(GroupPadding+GroupBorder)

	// InboxColumnWidth is the screen-space width of the inbox column
	// anchored to the viewport's left edge.
	InboxColumnWidth = ItemWidth + 2*(GroupPadding+GroupBorder)

	// ResizeHandleMargin is how close to a group's right edge a press
	// must land to start a resize instead of a move.
	ResizeHandleMargin = 10.0

	// DragThreshold is the pointer travel, in screen pixels, needed
	// before an armed item starts dragging. Moves are compared squared
	// against DragThresholdSq.
	DragThreshold   = 5.0
	DragThresholdSq = DragThreshold * DragThreshold

	TrashSize   = 96.0
	TrashMargin = 24.0

	// newGroupMargin separates a freshly dropped group from the viewport
	// edge when it is created by command rather than by drop.
	newGroupMargin = 40.0
)

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W && r.X+r.W > o.X &&
		r.Y < o.Y+o.H && r.Y+r.H > o.Y
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	x0 := math.Min(r.X, o.X)
	y0 := math.Min(r.Y, o.Y)
	x1 := math.Max(r.X+r.W, o.X+o.W)
	y1 := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Cell is a grid position inside a group.
type Cell struct {
	Col, Row int
}

// CellOf returns the row-major cell for arrangement index i.
func CellOf(i, width int) Cell {
	if width < 1 {
		width = 1
	}
	return Cell{Col: i % width, Row: i / width}
}

// rowsFor is ceil(count/width).
func rowsFor(count, width int) int {
	if width < 1 {
		width = 1
	}
	return (count + width - 1) / width
}

// cellOffset is the unscaled offset of a cell's top-left corner from the
// group's origin.
func cellOffset(c Cell) (float64, float64) {
	x := GroupBorder + GroupPadding + float64(c.Col)*(ItemWidth+ItemSpacing)
	y := GroupBorder + TitleBarHeight + GroupPadding + float64(c.Row)*(ItemHeight+ItemSpacing)
	return x, y
}

// gridPixelSize is the unscaled group size for the given column and row
// count, never smaller than the empty-group floor.
func gridPixelSize(cols, rows int) (float64, float64) {
	if cols < 1 {
		cols = 1
	}
	w := 2*(GroupBorder+GroupPadding) + float64(cols)*ItemWidth + float64(cols-1)*ItemSpacing
	h := 2*(GroupBorder+GroupPadding) + TitleBarHeight
	if rows > 0 {
		h += float64(rows)*ItemHeight + float64(rows-1)*ItemSpacing
	}
	return math.Max(w, MinGroupPixelWidth), math.Max(h, MinGroupPixelHeight)
}

// indexAt maps an unscaled group-local point onto an arrangement index in
// [0, count-1]. Points between cells snap to the nearer one.
func indexAt(lx, ly float64, width, count int) int {
	if count <= 0 {
		return 0
	}
	if width < 1 {
		width = 1
	}
	col := int(math.Floor((lx - GroupBorder - GroupPadding + ItemSpacing/2) / (ItemWidth + ItemSpacing)))
	row := int(math.Floor((ly - GroupBorder - TitleBarHeight - GroupPadding + ItemSpacing/2) / (ItemHeight + ItemSpacing)))
	col = clampInt(col, 0, width-1)
	if row < 0 {
		row = 0
	}
	return clampInt(row*width+col, 0, count-1)
}

// columnsForWidth converts an unscaled pixel width into a fractional
// column count.
func columnsForWidth(px float64) float64 {
	return (px - 2*(GroupBorder+GroupPadding) + ItemSpacing) / (ItemWidth + ItemSpacing)
}

// TrashRect returns the screen-space trash hitbox for a viewport. It sits
// in the bottom-right corner.
func TrashRect(v Viewport) Rect {
	return Rect{
		X: v.Width - TrashSize - TrashMargin,
		Y: v.Height - TrashSize - TrashMargin,
		W: TrashSize,
		H: TrashSize,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
