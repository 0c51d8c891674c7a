package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestGridToWorldAndBackRoundTrips(t *testing.T) {
	dims := CubeDims(64)
	grid := mgl32.Vec3{32, 16, 48}

	world := GridToWorld(grid, dims)
	back := WorldToGrid(world, dims)

	assert.InDelta(t, grid.X(), back.X(), 1e-3)
	assert.InDelta(t, grid.Y(), back.Y(), 1e-3)
	assert.InDelta(t, grid.Z(), back.Z(), 1e-3)
}

func TestGridToWorldRanges(t *testing.T) {
	dims := CubeDims(64)
	center := GridToWorld(mgl32.Vec3{32, 0, 0}, dims)
	assert.InDelta(t, 0, center.X(), 1e-6)

	top := GridToWorld(mgl32.Vec3{0, 64, 0}, dims)
	assert.InDelta(t, 1, top.Y(), 1e-6)
}

func TestCellIndex3DIsXFastest(t *testing.T) {
	dims := CubeDims(4)
	assert.Equal(t, 0, CellIndex3D(0, 0, 0, dims))
	assert.Equal(t, 1, CellIndex3D(1, 0, 0, dims))
	assert.Equal(t, 4, CellIndex3D(0, 1, 0, dims))
	assert.Equal(t, 16, CellIndex3D(0, 0, 1, dims))
}

func TestGridToScreenProjection(t *testing.T) {
	dims := CubeDims(64)
	x, y := GridToScreen(mgl32.Vec3{32, 0, 0}, dims, 800, 600)
	assert.InDelta(t, 400, x, 1)
	assert.InDelta(t, 600, y, 1)
}
