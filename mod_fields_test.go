package mpm

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/flowfield/mpm/internal/core"
	"github.com/flowfield/mpm/internal/fields"
	"github.com/flowfield/mpm/internal/gpu"
)

func TestFieldsSystemCollectsFieldRecords(t *testing.T) {
	app := NewApp().UseModules(TimeModule{}, FieldsModule{Seed: 1})
	app.build()
	cmd := app.Commands()

	cmd.AddEntity(&fields.Field{Kind: fields.Vortex, Strength: 1, Radius: 5})
	cmd.AddEntity(&fields.Field{Kind: fields.Attractor, Strength: 2, Radius: 10})
	app.flushPending()

	pool := core.Allocate(16)
	materials := &MaterialTable{Table: core.DefaultMaterialTable()}
	fieldState := &FieldState{}
	rng := rand.New(rand.NewSource(1))
	tm := &Time{Dt: 0.1}

	fieldsSystem(cmd, tm, pool, materials, fieldState, rng)

	assert.Len(t, fieldState.Records, 2)
}

func TestFieldsSystemSpawnsFromEmitters(t *testing.T) {
	app := NewApp().UseModules(TimeModule{}, FieldsModule{Seed: 7})
	app.build()
	cmd := app.Commands()

	emitter := &fields.Emitter{
		Kind: fields.EmitterPoint, Pattern: fields.PatternContinuous,
		Position: mgl32.Vec3{1, 1, 1}, Direction: mgl32.Vec3{0, 1, 0},
		Rate: 100, Velocity: 1, Lifetime: 2, MaterialType: uint8(core.MaterialFluid),
	}
	cmd.AddEntity(emitter)
	app.flushPending()

	pool := core.Allocate(64)
	materials := &MaterialTable{Table: core.DefaultMaterialTable()}
	fieldState := &FieldState{}
	rng := rand.New(rand.NewSource(7))
	tm := &Time{Dt: 1}

	fieldsSystem(cmd, tm, pool, materials, fieldState, rng)

	assert.Greater(t, pool.LiveCount(), 0, "a 100/s emitter over 1s of dt should spawn particles")
}

func TestFieldsSystemCapsAtMaxFields(t *testing.T) {
	app := NewApp().UseModules(TimeModule{}, FieldsModule{Seed: 1})
	app.build()
	cmd := app.Commands()

	for i := 0; i < gpu.MaxFields+4; i++ {
		cmd.AddEntity(&fields.Field{Kind: fields.Turbulence, Strength: 1, Radius: 1})
	}
	app.flushPending()

	pool := core.Allocate(4)
	materials := &MaterialTable{Table: core.DefaultMaterialTable()}
	fieldState := &FieldState{}
	rng := rand.New(rand.NewSource(1))
	tm := &Time{Dt: 0}

	fieldsSystem(cmd, tm, pool, materials, fieldState, rng)

	assert.LessOrEqual(t, len(fieldState.Records), gpu.MaxFields)
}
