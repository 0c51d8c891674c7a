package boundary

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowfield/mpm/internal/core"
)

func TestViewportTrackerPollWithoutWindowIsNoop(t *testing.T) {
	v := NewViewportTracker(nil)
	w, h, changed := v.Poll()
	assert.Equal(t, 0, w)
	assert.Equal(t, 0, h)
	assert.False(t, changed)
}

func TestSafeZoneWithNoPanelsIsFullScreen(t *testing.T) {
	v := NewViewportTracker(nil)
	v.width, v.height = 800, 600
	zone := v.SafeZone()
	assert.Equal(t, float32(800), zone.W)
	assert.Equal(t, float32(600), zone.H)
}

func TestSafeZoneExcludesLeftPanel(t *testing.T) {
	v := NewViewportTracker(nil)
	v.width, v.height = 800, 600
	v.SetUIPanels([]SafeZone{{X: 0, Y: 0, W: 200, H: 600}})
	zone := v.SafeZone()
	assert.Equal(t, float32(200), zone.X)
	assert.Equal(t, float32(600), zone.W)
}

func TestAdaptedDimsCubicForHardShapes(t *testing.T) {
	v := NewViewportTracker(nil)
	v.width, v.height = 1600, 900
	dims := v.AdaptedDims(ShapeBox, 64)
	assert.Equal(t, float32(64), dims.X)
	assert.Equal(t, float32(64), dims.Y)
	assert.Equal(t, float32(64), dims.Z)
}

func TestAdaptedDimsStretchesForViewportMode(t *testing.T) {
	v := NewViewportTracker(nil)
	v.width, v.height = 1600, 800
	dims := v.AdaptedDims(ShapeNone, 64)
	assert.InDelta(t, 128, dims.X, 1e-3)
	assert.Equal(t, float32(64), dims.Z)
}

func TestNeedsGeometryRebuildOnShapeOrDimsChange(t *testing.T) {
	v := NewViewportTracker(nil)
	dims := core.CubeDims(64)

	assert.True(t, v.NeedsGeometryRebuild(ShapeBox, dims), "first call always rebuilds")
	assert.False(t, v.NeedsGeometryRebuild(ShapeBox, dims))
	assert.True(t, v.NeedsGeometryRebuild(ShapeSphere, dims))
}
