package mpm

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/flowfield/mpm/internal/config"
	"github.com/flowfield/mpm/internal/core"
)

func TestMaxParticleSpeedIgnoresDeadParticles(t *testing.T) {
	particles := []core.Particle{
		{Mass: 1, Velocity: mgl32.Vec3{3, 0, 0}},
		{Mass: 0, Velocity: mgl32.Vec3{100, 0, 0}},
		{Mass: 1, Velocity: mgl32.Vec3{0, 4, 0}},
	}
	assert.Equal(t, float32(4), maxParticleSpeed(particles))
}

func TestSubstepPlanFixedWhenAdaptiveDisabled(t *testing.T) {
	cfg := &config.Resolved{AdaptiveTimestep: false}
	dt, n := substepPlan(cfg, 1.0/60.0, 50)
	assert.Equal(t, float32(1.0/60.0), dt)
	assert.Equal(t, 1, n)
}

func TestSubstepPlanIncreasesSubstepsWithSpeed(t *testing.T) {
	cfg := &config.Resolved{AdaptiveTimestep: true, CFLTarget: 1.0}
	_, slow := substepPlan(cfg, 1.0/60.0, 1.0)
	_, fast := substepPlan(cfg, 1.0/60.0, 500.0)
	assert.GreaterOrEqual(t, fast, slow, "faster particles should demand at least as many substeps")
	assert.LessOrEqual(t, fast, maxSubsteps)
	assert.GreaterOrEqual(t, slow, minSubsteps)
}

func TestSubstepPlanDtTimesCountRecoversFrameDt(t *testing.T) {
	cfg := &config.Resolved{AdaptiveTimestep: true, CFLTarget: 1.0}
	frameDt := float32(1.0 / 30.0)
	dt, n := substepPlan(cfg, frameDt, 20.0)
	assert.InDelta(t, frameDt, dt*float32(n), 1e-6)
}

func TestSubstepPlanZeroSpeedStillBounded(t *testing.T) {
	cfg := &config.Resolved{AdaptiveTimestep: true, CFLTarget: 1.0}
	dt, n := substepPlan(cfg, 1.0/60.0, 0)
	assert.GreaterOrEqual(t, n, minSubsteps)
	assert.LessOrEqual(t, n, maxSubsteps)
	assert.Greater(t, dt, float32(0))
}
