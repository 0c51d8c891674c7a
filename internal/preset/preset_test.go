package preset

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowfield/mpm/internal/boundary"
	"github.com/flowfield/mpm/internal/core"
	"github.com/flowfield/mpm/internal/fields"
)

func TestExportImport_RoundTripsPreset(t *testing.T) {
	p := Preset{
		Version:    1,
		Simulation: SimulationSection{GridSize: 64, Dt: 1.0 / 60, TransferMode: "Hybrid"},
		Particles:  ParticlesSection{Count: 131072, DefaultMaterial: 0},
		Materials:  FromMaterialTable(core.DefaultMaterialTable()),
		ForceFields: FromFields([]fields.Field{
			{Kind: fields.Attractor, Falloff: fields.FalloffLinear, Position: mgl32.Vec3{1, 2, 3}, Strength: 5, Radius: 10},
		}),
		Emitters: FromEmitters([]fields.Emitter{
			{Kind: fields.EmitterSphere, Pattern: fields.PatternBurst, Rate: 10, Velocity: 2, Lifetime: 3},
		}),
		Boundaries:  FromBoundary(boundary.DefaultParams(64)),
		AudioMacros: core.MacroState{Energy: 0.5},
		Metadata:    Metadata{Name: "test-scene", CreatedAt: 123456},
	}

	data, err := Export(p)
	require.NoError(t, err)

	decoded, err := Import(data)
	require.NoError(t, err)

	assert.Equal(t, p.Version, decoded.Version)
	assert.Equal(t, p.Simulation, decoded.Simulation)
	assert.Equal(t, p.Particles, decoded.Particles)
	assert.Equal(t, p.Materials, decoded.Materials)
	assert.Equal(t, p.ForceFields, decoded.ForceFields)
	assert.Equal(t, p.Emitters, decoded.Emitters)
	assert.Equal(t, p.Boundaries, decoded.Boundaries)
	assert.Equal(t, p.AudioMacros, decoded.AudioMacros)
	assert.Equal(t, p.Metadata, decoded.Metadata)
}

func TestApplyMaterials_InverseOfFromMaterialTable(t *testing.T) {
	table := core.DefaultMaterialTable()
	entries := FromMaterialTable(table)
	back := ApplyMaterials(entries)
	assert.Equal(t, table, back)
}

func TestApplyFields_RejectsUnknownKind(t *testing.T) {
	_, err := ApplyFields([]FieldEntry{{Kind: "Nonexistent", FalloffMode: "Linear"}})
	assert.Error(t, err)
}

func TestApplyBoundary_RoundTripsThroughDefaultParams(t *testing.T) {
	base := boundary.DefaultParams(64)
	section := FromBoundary(base)
	applied, err := ApplyBoundary(section, boundary.DefaultParams(64))
	require.NoError(t, err)
	assert.Equal(t, base.Shape, applied.Shape)
	assert.Equal(t, base.CollisionMode, applied.CollisionMode)
	assert.Equal(t, base.Stiffness, applied.Stiffness)
}
