package mpm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowfield/mpm/internal/boundary"
	"github.com/flowfield/mpm/internal/config"
	"github.com/flowfield/mpm/internal/core"
)

func TestBoundarySystemAppliesConfig(t *testing.T) {
	state := &BoundaryState{
		Params: boundary.DefaultParams(64),
		Dims:   core.CubeDims(64),
	}
	tracker := boundary.NewViewportTracker(nil)
	cfg := &config.Resolved{
		BoundaryShape:   boundary.ShapeSphere,
		CollisionMode:   boundary.CollisionClamp,
		BoundaryEnabled: true,
	}

	boundarySystem(state, tracker, cfg)

	assert.Equal(t, boundary.ShapeSphere, state.Params.Shape)
	assert.Equal(t, boundary.CollisionClamp, state.Params.CollisionMode)
}

func TestBoundarySystemDisabledForcesShapeNone(t *testing.T) {
	state := &BoundaryState{
		Params: boundary.DefaultParams(64),
		Dims:   core.CubeDims(64),
	}
	tracker := boundary.NewViewportTracker(nil)
	cfg := &config.Resolved{
		BoundaryShape:   boundary.ShapeBox,
		BoundaryEnabled: false,
	}

	boundarySystem(state, tracker, cfg)

	assert.Equal(t, boundary.ShapeNone, state.Params.Shape)
}

func TestBoundarySystemFlagsRebuildOnShapeChange(t *testing.T) {
	state := &BoundaryState{
		Params: boundary.DefaultParams(64),
		Dims:   core.CubeDims(64),
	}
	tracker := boundary.NewViewportTracker(nil)
	cfg := &config.Resolved{BoundaryShape: boundary.ShapeBox, BoundaryEnabled: true}

	boundarySystem(state, tracker, cfg)
	assert.True(t, state.RebuildPending)

	boundarySystem(state, tracker, cfg)
	assert.False(t, state.RebuildPending)
}
