// Package core holds the data model shared by the solver, boundary and
// renderer-facing packages: particle and grid layouts, the material table,
// and the single grid/world/screen coordinate transform every component
// must go through (Design Note: "mixed coordinate transforms scattered
// across components").
package core

import "github.com/go-gl/mathgl/mgl32"

// DefaultGridSize is G in spec terms: a dense G^3 cell grid.
const DefaultGridSize = 64

// Dims is the (possibly anisotropic) extent of the simulation grid in grid
// space. BoundaryShape None (viewport) adapts Gx/Gy to the window aspect;
// every other shape keeps Dims cubic.
type Dims struct {
	X, Y, Z float32
}

func CubeDims(g float32) Dims { return Dims{g, g, g} }

// GridToWorld implements the fixed transform of spec §3.2: world x in
// [-0.5,0.5], y in [0,1], z compressed by 0.4. Every visible mesh (particles,
// boundary shells) must route through this function; no component bakes its
// own offset.
func GridToWorld(gridPos mgl32.Vec3, dims Dims) mgl32.Vec3 {
	return mgl32.Vec3{
		(gridPos.X() - dims.X/2) / dims.X,
		gridPos.Y() / dims.Y,
		(gridPos.Z() * 0.4) / dims.Z,
	}
}

func WorldToGrid(worldPos mgl32.Vec3, dims Dims) mgl32.Vec3 {
	return mgl32.Vec3{
		worldPos.X()*dims.X + dims.X/2,
		worldPos.Y() * dims.Y,
		(worldPos.Z() * dims.Z) / 0.4,
	}
}

// GridToScreen projects a grid-space position to pixel space given a camera
// viewport. Kept trivial (orthographic-ish placeholder): the renderer owns
// the real camera projection; this exists only so viewport-safe-zone code
// and gesture/ensemble math in the kinetic package share one conversion
// path instead of re-deriving it.
func GridToScreen(gridPos mgl32.Vec3, dims Dims, viewportW, viewportH float32) (x, y float32) {
	w := GridToWorld(gridPos, dims)
	x = (w.X() + 0.5) * viewportW
	y = (1 - w.Y()) * viewportH
	return
}

// Cell is one grid-node's physical state. Active cells only are touched by
// grid-update and the vorticity-curl kernel (sparse-grid skipping).
type Cell struct {
	Momentum  mgl32.Vec3
	Mass      float32
	Vorticity mgl32.Vec3
	Active    uint8
}

// CellIndex3D maps a 3D cell coordinate to the flat storage index used by
// both the CPU mirror and the GPU storage buffer layout (row-major, x
// fastest).
func CellIndex3D(x, y, z int, dims Dims) int {
	return x + int(dims.X)*(y+int(dims.Y)*z)
}

const CellEpsilonMass = 1e-6
