package mpm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowfield/mpm/internal/boundary"
	"github.com/flowfield/mpm/internal/config"
	"github.com/flowfield/mpm/internal/core"
	"github.com/flowfield/mpm/internal/fields"
	"github.com/flowfield/mpm/internal/kinetic"
)

func TestPresetSaveLoadRoundTrip(t *testing.T) {
	app := NewApp().UseModules(TimeModule{}, FieldsModule{Seed: 1}, BoundaryModule{GridSize: 64})
	app.build()
	cmd := app.Commands()

	cmd.AddEntity(&fields.Field{Kind: fields.Attractor, Position: mgl32.Vec3{1, 2, 3}, Strength: 4, Radius: 8})
	cmd.AddEntity(&fields.Emitter{Kind: fields.EmitterSphere, Rate: 5, Velocity: 2, Lifetime: 3})
	app.flushPending()

	pool := core.Allocate(4)
	idx, _ := pool.AllocateFromFreeList()
	pool.Particles[idx].Mass = 1

	materials := &MaterialTable{Table: core.DefaultMaterialTable()}
	boundaryState := &BoundaryState{Params: boundary.DefaultParams(64), Dims: core.CubeDims(64)}
	cfg := &config.Resolved{FlipRatio: 0.9, CFLTarget: 0.5}
	mapper := kinetic.NewMapper(4, 1)
	tm := &Time{Dt: 0.016}

	path := filepath.Join(t.TempDir(), "scene.json")
	err := savePreset(cmd, path, materials, boundaryState, cfg, pool, mapper, tm)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	// clear live state, then reload and confirm it's restored
	app2 := NewApp().UseModules(TimeModule{}, FieldsModule{Seed: 1}, BoundaryModule{GridSize: 64})
	app2.build()
	cmd2 := app2.Commands()

	materials2 := &MaterialTable{Table: core.DefaultMaterialTable()}
	boundaryState2 := &BoundaryState{Params: boundary.DefaultParams(64), Dims: core.CubeDims(64)}
	mapper2 := kinetic.NewMapper(4, 1)

	err = loadPreset(cmd2, path, materials2, boundaryState2, mapper2)
	require.NoError(t, err)
	app2.flushPending()

	var fieldCount, emitterCount int
	MakeQuery1[fields.Field](cmd2).Map(func(eid EntityId, f *fields.Field) bool {
		fieldCount++
		return true
	})
	MakeQuery1[fields.Emitter](cmd2).Map(func(eid EntityId, e *fields.Emitter) bool {
		emitterCount++
		return true
	})
	assert.Equal(t, 1, fieldCount)
	assert.Equal(t, 1, emitterCount)
}

func TestLoadPresetMissingFileReturnsError(t *testing.T) {
	app := NewApp().UseModules(TimeModule{}, FieldsModule{Seed: 1}, BoundaryModule{GridSize: 64})
	app.build()
	cmd := app.Commands()

	materials := &MaterialTable{Table: core.DefaultMaterialTable()}
	boundaryState := &BoundaryState{Params: boundary.DefaultParams(64), Dims: core.CubeDims(64)}
	mapper := kinetic.NewMapper(4, 1)

	err := loadPreset(cmd, filepath.Join(t.TempDir(), "missing.json"), materials, boundaryState, mapper)
	assert.Error(t, err)
}

func TestPresetRequestsQueueSaveAndLoad(t *testing.T) {
	r := &PresetRequests{}
	r.Save("a.json")
	r.Load("b.json")
	assert.Len(t, r.Pending, 2)
	assert.Equal(t, PresetSaveRequest, r.Pending[0].Kind)
	assert.Equal(t, PresetLoadRequest, r.Pending[1].Kind)
}
