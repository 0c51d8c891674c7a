package mpm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowfield/mpm/internal/config"
	"github.com/flowfield/mpm/internal/core"
	"github.com/flowfield/mpm/internal/groove"
	"github.com/flowfield/mpm/internal/kinetic"
)

func newKineticFixture(maxParticles int) (*Time, *PlaybackClock, *AudioFeaturesState, *groove.Engine, *groove.StructureAnalyzer, *groove.Timer, *kinetic.Mapper, *CameraResource, *config.Resolved, *core.Pool, *DriveState) {
	return &Time{Dt: 0.016},
		&PlaybackClock{},
		&AudioFeaturesState{},
		groove.NewEngine(),
		groove.NewStructureAnalyzer(),
		groove.NewTimer(),
		kinetic.NewMapper(maxParticles, 1),
		&CameraResource{},
		&config.Resolved{},
		core.Allocate(maxParticles),
		&DriveState{}
}

func TestKineticSystemProducesOneDriveRecordPerParticle(t *testing.T) {
	tm, clock, af, ge, sa, timer, mapper, cam, cfg, pool, drive := newKineticFixture(8)

	kineticSystem(tm, clock, af, ge, sa, timer, mapper, cam, cfg, pool, drive)

	assert.Len(t, drive.Records, len(pool.Particles))
}

func TestKineticSystemAppliesForcedPersonalityOverrideWithoutPanicking(t *testing.T) {
	tm, clock, af, ge, sa, timer, mapper, cam, cfg, pool, drive := newKineticFixture(4)
	forced := core.PersonalityAggressive
	cfg.ForcedPersonality = &forced

	assert.NotPanics(t, func() {
		kineticSystem(tm, clock, af, ge, sa, timer, mapper, cam, cfg, pool, drive)
	})
	assert.Len(t, drive.Records, len(pool.Particles))
}

func TestKineticSystemAppliesForcedFormationOverride(t *testing.T) {
	tm, clock, af, ge, sa, timer, mapper, cam, cfg, pool, drive := newKineticFixture(4)
	forced := core.FormationSpiral
	cfg.ForcedFormation = &forced

	kineticSystem(tm, clock, af, ge, sa, timer, mapper, cam, cfg, pool, drive)

	from, to, blend := mapper.Choreographer.SelectFormation(core.SectionIntro, tm.Dt)
	assert.Equal(t, forced, from)
	assert.Equal(t, forced, to)
	assert.Equal(t, float32(1), blend)
}

func TestKineticSystemConsumesRecordedMacroChangeEvents(t *testing.T) {
	tm, clock, af, ge, sa, timer, mapper, cam, cfg, pool, drive := newKineticFixture(4)
	tm.Dt = 0.2

	target := core.MacroState{Intensity: 0.8, Energy: 0.9}
	mapper.Recorder.StartRecording("test")
	mapper.Recorder.Advance(0.1)
	mapper.Recorder.Record(kinetic.EventMacroChange, kinetic.MacroChangePayload{Macro: target})
	seq := mapper.Recorder.StopRecording()
	mapper.Recorder.Play(seq, false, 1)

	before := mapper.Macros.Current()
	kineticSystem(tm, clock, af, ge, sa, timer, mapper, cam, cfg, pool, drive)
	after := mapper.Macros.Current()

	assert.NotEqual(t, before, after, "a fired MacroChange event should move the macro target")
}
