package canvas

import "testing"

func TestCellOf(t *testing.T) {
	tests := []struct {
		i, width int
		want     Cell
	}{
		{0, 1, Cell{0, 0}},
		{2, 2, Cell{0, 1}},
		{2, 3, Cell{2, 0}},
		{7, 3, Cell{1, 2}},
		{4, 0, Cell{0, 4}},
	}
	for _, tt := range tests {
		if got := CellOf(tt.i, tt.width); got != tt.want {
			t.Errorf("CellOf(%d, %d) = %v, want %v", tt.i, tt.width, got, tt.want)
		}
	}
}

func TestGridPixelSize_EmptyFloor(t *testing.T) {
	w, h := gridPixelSize(1, 0)
	if w != MinGroupPixelWidth || h != MinGroupPixelHeight {
		t.Errorf("empty group size = (%v, %v), want floor (%v, %v)", w, h, MinGroupPixelWidth, MinGroupPixelHeight)
	}
}

func TestColumnsForWidth_InvertsGridWidth(t *testing.T) {
	for cols := 1; cols <= 6; cols++ {
		w, _ := gridPixelSize(cols, 1)
		if got := columnsForWidth(w); !near(got, float64(cols)) {
			t.Errorf("columnsForWidth(%v) = %v, want %d", w, got, cols)
		}
	}
}

func TestIndexAt(t *testing.T) {
	x1, y1 := cellOffset(Cell{Col: 1, Row: 1})
	tests := []struct {
		name         string
		lx, ly       float64
		width, count int
		want         int
	}{
		{"first cell", 20, 50, 3, 5, 0},
		{"second row second col", x1 + 5, y1 + 5, 3, 5, 4},
		{"past last item clamps", x1 + 5, y1 + 5, 3, 4, 3},
		{"left of grid clamps to col 0", -100, y1 + 5, 3, 6, 3},
		{"right of grid clamps to last col", 5000, 50, 3, 6, 2},
		{"empty group", 20, 50, 3, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := indexAt(tt.lx, tt.ly, tt.width, tt.count); got != tt.want {
				t.Errorf("indexAt = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNextFreePosition_EmptyCanvas(t *testing.T) {
	x, y := nextFreePosition(nil, 480, 360, 0, 0)
	if x != 0 || y != 0 {
		t.Errorf("expected (0, 0) for empty canvas, got (%.0f, %.0f)", x, y)
	}
}

func TestNextFreePosition_AvoidsExisting(t *testing.T) {
	existing := []Rect{
		{X: 0, Y: 0, W: 480, H: 360},
		{X: 540, Y: 0, W: 480, H: 360},
	}
	x, y := nextFreePosition(existing, 480, 360, 0, 0)
	r := Rect{X: x, Y: y, W: 480, H: 360}
	if overlapsAny(r, existing) {
		t.Errorf("position (%.0f, %.0f) overlaps an existing rect", x, y)
	}
}

func TestSnap(t *testing.T) {
	tests := []struct {
		input, want float64
	}{
		{0, 0},
		{15, 30},
		{29, 30},
		{45, 60},
		{100, 90},
	}
	for _, tt := range tests {
		if got := snap(tt.input); got != tt.want {
			t.Errorf("snap(%.0f) = %.0f, want %.0f", tt.input, got, tt.want)
		}
	}
}
