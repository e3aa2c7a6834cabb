package canvas

import "math"

const (
	placementGrid    = 30.0
	placementPadding = 60.0
	placementMaxRowW = 1800.0
	placementMaxRows = 400
)

// snap rounds v to the nearest placement grid point.
func snap(v float64) float64 {
	return math.Round(v/placementGrid) * placementGrid
}

// nextFreePosition finds the first grid position at or after (originX,
// originY), scanning rows top-to-bottom and columns left-to-right, where
// a w x h rectangle does not overlap any existing rectangle grown by the
// placement padding.
func nextFreePosition(existing []Rect, w, h, originX, originY float64) (float64, float64) {
	ox, oy := snap(originX), snap(originY)
	if len(existing) == 0 {
		return ox, oy
	}

	candidate := Rect{W: w, H: h}
	for row := 0; row < placementMaxRows; row++ {
		candidate.Y = oy + float64(row)*placementGrid
		for dx := 0.0; dx < placementMaxRowW; dx += placementGrid {
			candidate.X = ox + dx
			if !overlapsAny(candidate, existing) {
				return candidate.X, candidate.Y
			}
		}
	}

	// Fallback: below everything.
	maxY := oy
	for _, r := range existing {
		maxY = math.Max(maxY, r.Y+r.H)
	}
	return ox, snap(maxY + placementPadding)
}

func overlapsAny(c Rect, existing []Rect) bool {
	for _, r := range existing {
		padded := Rect{
			X: r.X - placementPadding,
			Y: r.Y - placementPadding,
			W: r.W + placementPadding*2,
			H: r.H + placementPadding*2,
		}
		if c.Intersects(padded) {
			return true
		}
	}
	return false
}
