package canvas

import (
	"math"

	"canvasboard/internal/domain"
)

const (
	DefaultZoom    = 1.0
	DefaultMinZoom = 0.25
	DefaultMaxZoom = 4.0

	// absoluteMinZoom keeps the projection invertible no matter how far
	// the zoom floor has been ratcheted down.
	absoluteMinZoom = 0.01
)

// Viewport is the host-reported drawing area in screen pixels.
type Viewport struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Camera maps between world coordinates and screen pixels. Screen
// coordinates are relative to the viewport's top-left corner; the world
// point (PanX, PanY) is always at the viewport center.
type Camera struct {
	zoom    float64
	panX    float64
	panY    float64
	minZoom float64
	maxZoom float64

	viewport Viewport
	changed  func()
}

// NewCamera returns a camera at zoom 1 looking at the world origin.
func NewCamera() *Camera {
	return &Camera{
		zoom:    DefaultZoom,
		minZoom: DefaultMinZoom,
		maxZoom: DefaultMaxZoom,
	}
}

func (c *Camera) Zoom() float64       { return c.zoom }
func (c *Camera) Pan() (x, y float64) { return c.panX, c.panY }
func (c *Camera) MinZoom() float64    { return c.minZoom }
func (c *Camera) MaxZoom() float64    { return c.maxZoom }
func (c *Camera) Viewport() Viewport  { return c.viewport }

// SetViewport records the latest host viewport. All transforms use the
// most recently pushed value.
func (c *Camera) SetViewport(v Viewport) {
	c.viewport = v
	c.notify()
}

// SetZoom clamps z to [MinZoom, MaxZoom]. Zooming below the current floor
// lowers the floor to z; the floor never rises again.
func (c *Camera) SetZoom(z float64) {
	if math.IsNaN(z) || math.IsInf(z, 0) || z <= 0 {
		return
	}
	if z < absoluteMinZoom {
		z = absoluteMinZoom
	}
	if z < c.minZoom {
		c.minZoom = z
	}
	c.zoom = math.Max(c.minZoom, math.Min(c.maxZoom, z))
	c.notify()
}

// ZoomAt multiplies the zoom by factor while keeping the world point under
// the screen position (sx, sy) stationary.
func (c *Camera) ZoomAt(sx, sy, factor float64) {
	bx, by := c.ScreenToWorld(sx, sy)
	c.SetZoom(c.zoom * factor)
	ax, ay := c.ScreenToWorld(sx, sy)
	c.panX += bx - ax
	c.panY += by - ay
	c.notify()
}

// PanBy moves the view so that content shifts by (dx, dy) screen pixels.
func (c *Camera) PanBy(dx, dy float64) {
	wx, wy := c.ScreenVectorToWorldVector(dx, dy)
	c.panX -= wx
	c.panY -= wy
	c.notify()
}

// LookAt centers the viewport on the world point (x, y).
func (c *Camera) LookAt(x, y float64) {
	c.panX, c.panY = x, y
	c.notify()
}

func (c *Camera) WorldToScreen(wx, wy float64) (float64, float64) {
	return c.worldToScreen().apply(wx, wy)
}

func (c *Camera) ScreenToWorld(sx, sy float64) (float64, float64) {
	inv, ok := c.worldToScreen().invert()
	if !ok {
		return c.panX, c.panY
	}
	return inv.apply(sx, sy)
}

// ScreenVectorToWorldVector converts a screen-space delta into a
// world-space delta, ignoring translation.
func (c *Camera) ScreenVectorToWorldVector(dx, dy float64) (float64, float64) {
	x1, y1 := c.ScreenToWorld(dx, dy)
	x0, y0 := c.ScreenToWorld(0, 0)
	return x1 - x0, y1 - y0
}

// State returns the persisted form of the camera.
func (c *Camera) State() domain.Camera {
	return domain.Camera{Zoom: c.zoom, PanX: c.panX, PanY: c.panY}
}

// Restore applies a persisted camera state.
func (c *Camera) Restore(s domain.Camera) {
	c.panX, c.panY = s.PanX, s.PanY
	c.SetZoom(s.Zoom)
	c.notify()
}

func (c *Camera) size() (float64, float64) {
	w, h := c.viewport.Width, c.viewport.Height
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

func (c *Camera) worldToClip() affine {
	w, h := c.size()
	aspect := w / h
	halfH := h / (2 * c.zoom)
	halfW := halfH * aspect
	return ortho(c.panX-halfW, c.panX+halfW, c.panY-halfH, c.panY+halfH)
}

func (c *Camera) worldToScreen() affine {
	w, h := c.size()
	return c.worldToClip().then(clipToScreen(w, h))
}

func (c *Camera) notify() {
	if c.changed != nil {
		c.changed()
	}
}
