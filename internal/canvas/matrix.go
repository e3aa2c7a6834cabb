package canvas

import "math"

// affine is a 2D affine transform stored as the top two rows of a 3x3
// matrix:
//
//	x' = a*x + b*y + c
//	y' = d*x + e*y + f
type affine struct {
	a, b, c float64
	d, e, f float64
}

// ortho maps the world rectangle [left,right]x[top,bottom] onto clip space
// [-1,1]x[-1,1] with clip y pointing up, so top maps to +1.
func ortho(left, right, top, bottom float64) affine {
	return affine{
		a: 2 / (right - left), c: -(right + left) / (right - left),
		e: -2 / (bottom - top), f: (bottom + top) / (bottom - top),
	}
}

// clipToScreen maps clip space onto a width x height pixel area whose
// origin is the top-left corner.
func clipToScreen(width, height float64) affine {
	return affine{
		a: width / 2, c: width / 2,
		e: -height / 2, f: height / 2,
	}
}

// then returns the transform applying m first and n second.
func (m affine) then(n affine) affine {
	return affine{
		a: n.a*m.a + n.b*m.d,
		b: n.a*m.b + n.b*m.e,
		c: n.a*m.c + n.b*m.f + n.c,
		d: n.d*m.a + n.e*m.d,
		e: n.d*m.b + n.e*m.e,
		f: n.d*m.c + n.e*m.f + n.f,
	}
}

func (m affine) apply(x, y float64) (float64, float64) {
	return m.a*x + m.b*y + m.c, m.d*x + m.e*y + m.f
}

func (m affine) invert() (affine, bool) {
	det := m.a*m.e - m.b*m.d
	if math.Abs(det) < 1e-12 || math.IsNaN(det) {
		return affine{}, false
	}
	inv := affine{
		a: m.e / det, b: -m.b / det,
		d: -m.d / det, e: m.a / det,
	}
	inv.c = -(inv.a*m.c + inv.b*m.f)
	inv.f = -(inv.d*m.c + inv.e*m.f)
	return inv, true
}
