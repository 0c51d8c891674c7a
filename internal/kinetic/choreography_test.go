package kinetic

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/flowfield/mpm/internal/core"
)

func makeParticles(n int) []core.Particle {
	ps := make([]core.Particle, n)
	for i := range ps {
		ps[i].Mass = 1
		ps[i].Position = mgl32.Vec3{float32(i), float32(i % 3), 0}
	}
	return ps
}

func TestChoreographer_AssignRoles_BucketsTopTenPercentAsLead(t *testing.T) {
	particles := makeParticles(100)
	c := NewChoreographer(100, 1)
	c.AssignRoles(particles, mgl32.Vec3{0, 0, 0}, 100, 3.0)

	leads := 0
	for _, p := range particles {
		if p.Role == core.RoleLead {
			leads++
		}
	}
	assert.InDelta(t, 10, leads, 2)
}

func TestChoreographer_HysteresisBlocksImmediateReassignment(t *testing.T) {
	particles := makeParticles(20)
	c := NewChoreographer(20, 1)
	c.AssignRoles(particles, mgl32.Vec3{0, 0, 0}, 20, 0.1)
	snapshot := make([]core.Role, len(particles))
	for i, p := range particles {
		snapshot[i] = p.Role
	}
	for i := range particles {
		particles[i].Position = particles[i].Position.Add(mgl32.Vec3{100, 100, 100})
	}
	c.AssignRoles(particles, mgl32.Vec3{0, 0, 0}, 20, 0.1)
	for i, p := range particles {
		assert.Equal(t, snapshot[i], p.Role)
	}
}

func TestSelectFormation_BlendsOverTwoSeconds(t *testing.T) {
	c := NewChoreographer(1, 1)
	_, _, blend := c.SelectFormation(core.SectionIntro, 0)
	assert.Equal(t, float32(1), blend)

	_, _, blend = c.SelectFormation(core.SectionDrop, 1.0)
	assert.Less(t, blend, float32(1))

	_, _, blend = c.SelectFormation(core.SectionDrop, 10.0)
	assert.Equal(t, float32(1), blend)
}

func TestFormationTarget_OrbitingStaysOnRadius(t *testing.T) {
	center := mgl32.Vec3{0, 0, 0}
	target := FormationTarget(core.FormationOrbiting, center, 5, 3, 12)
	dist := target.Sub(center).Len()
	assert.InDelta(t, 5, dist, 0.01)
}
