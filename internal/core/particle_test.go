package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestPoolAllocateResetSizing(t *testing.T) {
	p := Allocate(8)
	assert.Len(t, p.Particles, 8)
	for i := 0; i < 8; i++ {
		idx, ok := p.AllocateFromFreeList()
		assert.True(t, ok)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 8)
	}
	_, ok := p.AllocateFromFreeList()
	assert.False(t, ok, "pool should be saturated after draining the free list")
}

func TestPoolMarkDeadReturnsSlotToFreeList(t *testing.T) {
	p := Allocate(2)
	idx, _ := p.AllocateFromFreeList()
	p.Particles[idx].Mass = 1
	p.MarkDead(idx)
	assert.True(t, p.Particles[idx].IsDead())

	again, ok := p.AllocateFromFreeList()
	assert.True(t, ok)
	assert.Equal(t, idx, again)
}

func TestPoolReapExpired(t *testing.T) {
	p := Allocate(4)
	idx, _ := p.AllocateFromFreeList()
	p.Particles[idx].Mass = 1
	p.Particles[idx].Lifetime = 1
	p.Particles[idx].Age = 2

	immortalIdx, _ := p.AllocateFromFreeList()
	p.Particles[immortalIdx].Mass = 1
	p.Particles[immortalIdx].Lifetime = -1
	p.Particles[immortalIdx].Age = 1000

	p.ReapExpired()

	assert.True(t, p.Particles[idx].IsDead())
	assert.False(t, p.Particles[immortalIdx].IsDead())
}

func TestPoolTotalMassAndLiveCount(t *testing.T) {
	p := Allocate(4)
	for i := 0; i < 3; i++ {
		idx, _ := p.AllocateFromFreeList()
		p.Particles[idx].Mass = 2
	}
	assert.Equal(t, 3, p.LiveCount())
	assert.InDelta(t, 6.0, p.TotalMass(), 1e-9)
}

func TestPoolResetClearsLiveParticles(t *testing.T) {
	p := Allocate(4)
	idx, _ := p.AllocateFromFreeList()
	p.Particles[idx].Mass = 5
	p.Reset()
	assert.Equal(t, 0, p.LiveCount())
	_, ok := p.AllocateFromFreeList()
	assert.True(t, ok)
}

func TestParticleIsDeadConditions(t *testing.T) {
	dead := Particle{Mass: 0}
	assert.True(t, dead.IsDead())

	expired := Particle{Mass: 1, Lifetime: 1, Age: 2}
	assert.True(t, expired.IsDead())

	alive := Particle{Mass: 1, Lifetime: 1, Age: 0.5}
	assert.False(t, alive.IsDead())

	immortal := Particle{Mass: 1, Lifetime: -1, Age: 1e6}
	assert.False(t, immortal.IsDead())
}

func TestClampToGridStaysWithinBounds(t *testing.T) {
	dims := Dims{X: 10, Y: 10, Z: 10}
	eps := float32(0.1)

	inside := ClampToGrid(mgl32.Vec3{5, 5, 5}, dims, eps)
	assert.Equal(t, mgl32.Vec3{5, 5, 5}, inside)

	below := ClampToGrid(mgl32.Vec3{-5, -5, -5}, dims, eps)
	assert.Equal(t, mgl32.Vec3{eps, eps, eps}, below)

	above := ClampToGrid(mgl32.Vec3{50, 50, 50}, dims, eps)
	assert.Equal(t, mgl32.Vec3{10 - eps, 10 - eps, 10 - eps}, above)
}
