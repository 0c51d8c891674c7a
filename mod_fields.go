package mpm

import (
	"math/rand"

	"github.com/flowfield/mpm/internal/core"
	"github.com/flowfield/mpm/internal/fields"
	"github.com/flowfield/mpm/internal/gpu"
)

// MaterialTable is the resource form of core.DefaultMaterialTable, mutable
// at runtime via preset import (spec §6.3 "materials").
type MaterialTable struct {
	Table []core.MaterialParams
}

// FieldState is the resource FieldsModule writes and SolverModule reads:
// the frame's closed-form force records, packed GPU-side.
type FieldState struct {
	Records []gpu.FieldRecord
}

// FieldsModule runs the ECS side of spec §3.4: force fields contribute a
// GPU record each frame, emitters tick their accumulator and spawn
// particles through the pool's free list. Grounded on fields.go's doc
// comment generalizing the teacher's particles_ecs.go
// ParticleEmitterComponent lifecycle from one component type to the two
// (Field, Emitter) this spec needs.
type FieldsModule struct {
	Seed int64
}

func (m FieldsModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(fieldsSystem).
			InStage(Update).
			RunAlways(),
	)
	seed := m.Seed
	if seed == 0 {
		seed = 1
	}
	cmd.AddResources(
		&MaterialTable{Table: core.DefaultMaterialTable()},
		&FieldState{},
		rand.New(rand.NewSource(seed)),
	)
}

func fieldsSystem(cmd *Commands, t *Time, pool *core.Pool, materials *MaterialTable, fieldState *FieldState, rng *rand.Rand) {
	dt := float32(t.Dt)

	records := fieldState.Records[:0]
	MakeQuery1[fields.Field](cmd).Map(func(eid EntityId, f *fields.Field) bool {
		if len(records) >= gpu.MaxFields {
			return false
		}
		records = append(records, f.ToGPU())
		return true
	})
	fieldState.Records = records

	if dt <= 0 {
		return
	}
	MakeQuery1[fields.Emitter](cmd).Map(func(eid EntityId, e *fields.Emitter) bool {
		spawned := e.Tick(dt, rng)
		for _, s := range spawned {
			idx, ok := pool.AllocateFromFreeList()
			if !ok {
				break
			}
			pool.Particles[idx] = s.ToParticle(materials.Table)
		}
		return true
	})
}
