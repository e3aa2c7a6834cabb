package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"canvasboard/internal/canvas"
)

// A terminal cell covers CellWidth×CellHeight screen pixels.
const (
	CellWidth  = 8
	CellHeight = 16
)

type paint uint8

const (
	paintNone paint = iota
	paintInbox
	paintGroup
	paintGroupHover
	paintItem
	paintItemDragging
	paintTrash
	paintTrashActive
)

var styles = map[paint]lipgloss.Style{
	paintInbox:        lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	paintGroup:        lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
	paintGroupHover:   lipgloss.NewStyle().Foreground(lipgloss.Color("117")).Bold(true),
	paintItem:         lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	paintItemDragging: lipgloss.NewStyle().Foreground(lipgloss.Color("222")).Bold(true),
	paintTrash:        lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
	paintTrashActive:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Reverse(true),
}

// surface is a grid of runes with a paint class per cell.
type surface struct {
	cols, rows int
	runes      [][]rune
	paints     [][]paint
}

func newSurface(cols, rows int) *surface {
	s := &surface{cols: cols, rows: rows}
	s.runes = make([][]rune, rows)
	s.paints = make([][]paint, rows)
	for y := range s.runes {
		s.runes[y] = []rune(strings.Repeat(" ", cols))
		s.paints[y] = make([]paint, cols)
	}
	return s
}

func (s *surface) set(x, y int, r rune, p paint) {
	if x < 0 || y < 0 || x >= s.cols || y >= s.rows {
		return
	}
	s.runes[y][x] = r
	s.paints[y][x] = p
}

// cellRect maps a screen-pixel rectangle onto an inclusive cell range.
func cellRect(r canvas.Rect) (x0, y0, x1, y1 int) {
	x0 = int(math.Floor(r.X / CellWidth))
	y0 = int(math.Floor(r.Y / CellHeight))
	x1 = int(math.Ceil((r.X+r.W)/CellWidth)) - 1
	y1 = int(math.Ceil((r.Y+r.H)/CellHeight)) - 1
	return
}

// box draws a frame, clearing its interior so lower layers are hidden.
func (s *surface) box(r canvas.Rect, p paint) (x0, y0, x1, y1 int) {
	x0, y0, x1, y1 = cellRect(r)
	if x1 <= x0 || y1 <= y0 {
		s.set(x0, y0, '▪', p)
		return
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			var ch rune = ' '
			switch {
			case (x == x0 || x == x1) && (y == y0 || y == y1):
				ch = corner(x == x0, y == y0)
			case y == y0 || y == y1:
				ch = '─'
			case x == x0 || x == x1:
				ch = '│'
			}
			s.set(x, y, ch, p)
		}
	}
	return
}

func corner(left, top bool) rune {
	switch {
	case left && top:
		return '┌'
	case top:
		return '┐'
	case left:
		return '└'
	default:
		return '┘'
	}
}

// text writes str starting at (x, y), clipped to max cells.
func (s *surface) text(x, y, max int, str string, p paint) {
	if max <= 0 {
		return
	}
	rs := []rune(str)
	if len(rs) > max {
		rs = append(rs[:max-1], '…')
	}
	for i, r := range rs {
		s.set(x+i, y, r, p)
	}
}

func (s *surface) String() string {
	var b strings.Builder
	for y := 0; y < s.rows; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for x := 1; x <= s.cols; x++ {
			if x < s.cols && s.paints[y][x] == s.paints[y][start] {
				continue
			}
			run := string(s.runes[y][start:x])
			if st, ok := styles[s.paints[y][start]]; ok {
				run = st.Render(run)
			}
			b.WriteString(run)
			start = x
		}
	}
	return b.String()
}

// Render draws the workspace onto a cols×rows grid. Groups are painted
// bottom to top, then the inbox column, the trash while dragging, and
// dragged items last so they float above everything.
func Render(ws *canvas.Workspace, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	s := newSurface(cols, rows)
	var dragged []*canvas.Item

	drawGroup := func(g *canvas.Group, p paint) {
		x0, y0, x1, _ := s.box(ws.GroupScreenBounds(g), p)
		title := g.Title()
		if title == "" && g.RenamePending() {
			title = "(untitled)"
		}
		s.text(x0+1, y0, x1-x0-1, title, p)
		for _, it := range ws.GroupItems(g.Ref()) {
			if it.Dragging() {
				dragged = append(dragged, it)
				continue
			}
			drawItem(s, ws, it, paintItem)
		}
	}

	for _, g := range ws.Groups() {
		p := paintGroup
		if g.Hovering() {
			p = paintGroupHover
		}
		drawGroup(g, p)
	}
	if inbox, ok := ws.Group(canvas.Inbox()); ok {
		drawGroup(inbox, paintInbox)
	}
	if hidden, ok := ws.Group(canvas.Hidden()); ok {
		for _, it := range ws.GroupItems(hidden.Ref()) {
			if it.Dragging() {
				dragged = append(dragged, it)
			}
		}
	}

	if ws.AnyDragging() {
		p := paintTrash
		if ws.AnyOverTrash() {
			p = paintTrashActive
		}
		x0, y0, x1, _ := s.box(ws.TrashRect(), p)
		s.text(x0+1, y0+1, x1-x0-1, "trash", p)
	}
	for _, it := range dragged {
		drawItem(s, ws, it, paintItemDragging)
	}
	return s.String()
}

func drawItem(s *surface, ws *canvas.Workspace, it *canvas.Item, p paint) {
	x0, y0, x1, y1 := s.box(ws.ItemScreenBounds(it), p)
	label := it.Title()
	if label == "" {
		label = it.URL()
	}
	width := x1 - x0 - 1
	for i, line := 0, []rune(label); len(line) > 0 && y0+1+i < y1; i++ {
		n := min(width, len(line))
		if n <= 0 {
			break
		}
		s.text(x0+1, y0+1+i, width, string(line[:n]), p)
		line = line[n:]
	}
}
