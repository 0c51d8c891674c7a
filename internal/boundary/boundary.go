// Package boundary owns the boundary collision contract's uniform state and
// the viewport-adaptive sizing logic (spec §4.C). Grounded on mod_client.go's
// glfw window bring-up (the teacher's only glfw call site) generalized from
// one-shot window creation to per-frame size polling, and on the centralized
// grid/world/screen transform in internal/core, per spec §9's "collapse to
// one module" design note.
package boundary

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Shape selects the hard-boundary geometry. None means viewport mode: the
// collision function runs soft radial containment only (spec §4.C).
type Shape uint8

const (
	ShapeNone Shape = iota
	ShapeBox
	ShapeSphere
	ShapeTube
	ShapeDodecahedron
)

// CollisionMode selects the collision response applied once a hard shape is
// penetrated (spec §6.4).
type CollisionMode uint8

const (
	CollisionReflect CollisionMode = iota
	CollisionClamp
	CollisionWrap
	CollisionKill
)

// Params mirrors boundary.wgsl's BoundaryParams uniform, plus Enabled which
// the shader reads as a derived flag (Shape != None).
type Params struct {
	Shape         Shape
	CollisionMode CollisionMode

	Min, Max mgl32.Vec3
	Center   mgl32.Vec3
	Radius   float32

	Stiffness   float32
	Restitution float32
	Friction    float32

	ViewportCenter mgl32.Vec3
	ViewportRadius float32
	ViewportPulse  float32
}

// DefaultParams matches the spec's soft-containment defaults: viewport mode,
// centered on the midpoint of a cubic grid of the given size.
func DefaultParams(gridSize float32) Params {
	half := gridSize / 2
	return Params{
		Shape:          ShapeNone,
		CollisionMode:  CollisionReflect,
		Min:            mgl32.Vec3{0, 0, 0},
		Max:            mgl32.Vec3{gridSize, gridSize, gridSize},
		Center:         mgl32.Vec3{half, half, half},
		Radius:         half * 0.9,
		Stiffness:      8,
		Restitution:    0.3,
		Friction:       0.4,
		ViewportCenter: mgl32.Vec3{half, half, half},
		ViewportRadius: half,
	}
}

func (p Params) enabled() uint32 {
	if p.Shape == ShapeNone {
		return 0
	}
	return 1
}
