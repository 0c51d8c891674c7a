package boundary

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/flowfield/mpm/internal/core"
)

// SafeZone is the screen region available for particle rendering once UI
// panel rectangles are excluded (spec §4.C "safe zone").
type SafeZone struct {
	X, Y, W, H float32
}

// ViewportTracker polls the host window each frame rather than subscribing
// to resize callbacks, per spec §9's "replace handlers... with an explicit
// struct the host diffs" design note applied to window geometry too. A host
// with no live glfw.Window (headless, test) passes nil and the tracker just
// holds whatever Dims/SafeZone were last set directly.
type ViewportTracker struct {
	Window *glfw.Window

	width, height int
	panels        []SafeZone

	lastShape Shape
	lastDims  core.Dims
}

func NewViewportTracker(win *glfw.Window) *ViewportTracker {
	return &ViewportTracker{Window: win}
}

// SetUIPanels replaces the set of panel rectangles excluded from the safe
// zone. The host is responsible for discovering these (CSS-class lookup or
// equivalent); this package only does the geometry math.
func (v *ViewportTracker) SetUIPanels(panels []SafeZone) {
	v.panels = panels
}

// Poll reads the current window size (a no-op returning the last known size
// when Window is nil) and reports whether it changed since the last call.
func (v *ViewportTracker) Poll() (width, height int, changed bool) {
	if v.Window == nil {
		return v.width, v.height, false
	}
	w, h := v.Window.GetSize()
	changed = w != v.width || h != v.height
	v.width, v.height = w, h
	return w, h, changed
}

// SafeZone computes the screen rect excluding every registered UI panel,
// shrinking to the tightest axis-aligned rect that avoids all of them. This
// is deliberately simple (not a rect-packing solver): a panel at least as
// tall as it is wide trims the left/right edge, a wider one trims the
// top/bottom edge, and the rect is not re-centered.
func (v *ViewportTracker) SafeZone() SafeZone {
	zone := SafeZone{X: 0, Y: 0, W: float32(v.width), H: float32(v.height)}
	for _, p := range v.panels {
		vertical := p.H >= p.W
		if vertical && p.X <= zone.X && p.X+p.W > zone.X {
			cut := p.X + p.W - zone.X
			zone.X += cut
			zone.W -= cut
		}
		if !vertical && p.Y <= zone.Y && p.Y+p.H > zone.Y {
			cut := p.Y + p.H - zone.Y
			zone.Y += cut
			zone.H -= cut
		}
		if vertical && p.X+p.W >= zone.X+zone.W && p.X < zone.X+zone.W {
			zone.W = p.X - zone.X
		}
		if !vertical && p.Y+p.H >= zone.Y+zone.H && p.Y < zone.Y+zone.H {
			zone.H = p.Y - zone.Y
		}
	}
	if zone.W < 0 {
		zone.W = 0
	}
	if zone.H < 0 {
		zone.H = 0
	}
	return zone
}

// AdaptedDims derives the grid dimensions for the current shape (spec §4.C):
// None mode stretches Gx/Gy to the safe zone's aspect ratio; every other
// shape keeps the grid cubic so the container doesn't deform.
func (v *ViewportTracker) AdaptedDims(shape Shape, baseSize float32) core.Dims {
	if shape != ShapeNone {
		return core.CubeDims(baseSize)
	}
	zone := v.SafeZone()
	aspect := float32(1)
	if zone.H > 0 {
		aspect = zone.W / zone.H
	}
	gx := baseSize * maxf(1, aspect)
	gy := baseSize * maxf(1, 1/aspect)
	return core.Dims{X: gx, Y: gy, Z: baseSize}
}

// NeedsGeometryRebuild reports whether the renderer-facing boundary mesh
// must be disposed and recreated this frame: true on any shape change, or
// (in None mode) any safe-zone change (spec §4.C "disposed and recreated on
// every shape or safe-zone change").
func (v *ViewportTracker) NeedsGeometryRebuild(shape Shape, dims core.Dims) bool {
	changed := shape != v.lastShape || dims != v.lastDims
	v.lastShape, v.lastDims = shape, dims
	return changed
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
