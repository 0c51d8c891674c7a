package kinetic

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowfield/mpm/internal/core"
	"github.com/flowfield/mpm/internal/gpu"
)

func TestMapper_Advance_ReturnsOneDrivePerParticle(t *testing.T) {
	particles := makeParticles(50)
	m := NewMapper(50, 7)

	drives := m.Advance(particles, FrameInputs{
		Audio:    core.AudioFeatures{RMS: 0.6, OnsetEnergy: 0.8, BeatIntensity: 0.5},
		Groove:   core.GrooveState{RhythmConfidence: 0.7},
		Timing:   core.TimingState{TempoStable: true},
		Struct:   core.StructureState{Section: core.SectionDrop, Tension: 0.5},
		Camera:   CameraState{},
		CameraPos: mgl32.Vec3{0, 0, 0},
		GridDiag: 64,
		Dt:       0.016,
	})

	require.Len(t, drives, len(particles))
	for _, d := range drives {
		assert.LessOrEqual(t, int(d.Role), int(core.RoleAmbient))
	}
}

func TestMapper_Advance_SkipsDeadParticles(t *testing.T) {
	particles := makeParticles(5)
	particles[2].Mass = 0
	m := NewMapper(5, 7)

	drives := m.Advance(particles, FrameInputs{GridDiag: 16, Dt: 0.016})
	require.Len(t, drives, 5)
	assert.Equal(t, gpu.ParticleDrive{}, drives[2])
}
