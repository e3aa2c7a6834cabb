package canvas

// cubicBezier is a CSS-style timing curve through (0,0), (x1,y1), (x2,y2), (1,1).
type cubicBezier struct {
	x1, y1, x2, y2 float64
}

// easeOut matches CSS "ease-out".
var easeOut = cubicBezier{x1: 0, y1: 0, x2: 0.58, y2: 1}

func bezierCoord(p1, p2, t float64) float64 {
	c := 3 * p1
	b := 3*(p2-p1) - c
	a := 1 - c - b
	return ((a*t+b)*t + c) * t
}

func bezierSlope(p1, p2, t float64) float64 {
	c := 3 * p1
	b := 3*(p2-p1) - c
	a := 1 - c - b
	return (3*a*t+2*b)*t + c
}

// At returns the eased progress for linear progress x in [0,1].
func (cb cubicBezier) At(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}

	// Newton-Raphson on x(t) = x, falling back to bisection when the
	// slope flattens out.
	t := x
	for i := 0; i < 8; i++ {
		dx := bezierCoord(cb.x1, cb.x2, t) - x
		if dx > -1e-7 && dx < 1e-7 {
			return bezierCoord(cb.y1, cb.y2, t)
		}
		slope := bezierSlope(cb.x1, cb.x2, t)
		if slope > -1e-6 && slope < 1e-6 {
			break
		}
		t -= dx / slope
	}

	lo, hi := 0.0, 1.0
	t = x
	for i := 0; i < 32; i++ {
		v := bezierCoord(cb.x1, cb.x2, t)
		if v > x-1e-7 && v < x+1e-7 {
			break
		}
		if v < x {
			lo = t
		} else {
			hi = t
		}
		t = (lo + hi) / 2
	}
	return bezierCoord(cb.y1, cb.y2, t)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
