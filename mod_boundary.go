package mpm

import (
	"github.com/flowfield/mpm/internal/boundary"
	"github.com/flowfield/mpm/internal/config"
	"github.com/flowfield/mpm/internal/core"
)

// BoundaryState is the resource form of boundary.Params plus the
// viewport-adapted grid dims, refreshed once per frame by BoundaryModule.
// RebuildPending mirrors ViewportTracker.NeedsGeometryRebuild's result so a
// renderer module can pick it up without polling the tracker itself.
type BoundaryState struct {
	Params         boundary.Params
	Dims           core.Dims
	RebuildPending bool
}

// BoundaryModule keeps the boundary uniform and the viewport-adapted grid
// dims current (spec §4.C). It runs in Update, after FieldsModule may have
// changed live particle count but before SolverModule consumes Params.Bytes
// in PostUpdate.
type BoundaryModule struct {
	GridSize float32
}

func (m BoundaryModule) Install(app *App, cmd *Commands) {
	gridSize := m.GridSize
	if gridSize <= 0 {
		gridSize = core.DefaultGridSize
	}
	app.UseSystem(
		System(boundarySystem).
			InStage(Update).
			RunAlways(),
	)
	cmd.AddResources(
		&BoundaryState{
			Params: boundary.DefaultParams(gridSize),
			Dims:   core.CubeDims(gridSize),
		},
		boundary.NewViewportTracker(nil),
	)
}

func boundarySystem(state *BoundaryState, tracker *boundary.ViewportTracker, cfg *config.Resolved) {
	state.Params.Shape = cfg.BoundaryShape
	state.Params.CollisionMode = cfg.CollisionMode
	if !cfg.BoundaryEnabled {
		state.Params.Shape = boundary.ShapeNone
	}

	tracker.Poll()
	baseSize := state.Dims.Z
	dims := tracker.AdaptedDims(state.Params.Shape, baseSize)
	state.Dims = dims
	state.RebuildPending = tracker.NeedsGeometryRebuild(state.Params.Shape, dims)
}
