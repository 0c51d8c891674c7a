package core

import "github.com/go-gl/mathgl/mgl32"

// Role mirrors the Lead/Support/Ambient classification the ensemble
// choreographer assigns (spec §4.H.2).
type Role uint8

const (
	RoleLead Role = iota
	RoleSupport
	RoleAmbient
)

// Particle is the CPU-mirror layout of one particle's state. The GPU
// storage buffer keeps the same order for the fields it carries (see
// gpu.EncodeParticle and common.wgsl's Particle struct) so
// that mirrored sampling (adaptive-timestep speed estimation, free-list
// bookkeeping) never has to transcode.
type Particle struct {
	Position  mgl32.Vec3
	Velocity  mgl32.Vec3
	C         mgl32.Mat3 // affine velocity matrix (APIC/MLS-MPM)
	Mass      float32
	Density   float32
	Direction mgl32.Vec3
	Color     mgl32.Vec3

	MaterialType uint8
	Age          float32
	Lifetime     float32 // negative == immortal

	Role                  Role
	PersonalityPrimary    uint8
	PersonalitySecondary  uint8
	PersonalityBlend      float32
}

// IsDead reports the spec §3.1 death condition: non-negative lifetime that
// has been exceeded. Dead particles carry mass 0 and are skipped by P2G.
func (p *Particle) IsDead() bool {
	return p.Mass <= 0 || (p.Lifetime >= 0 && p.Age > p.Lifetime)
}

func (p *Particle) Kill() {
	p.Mass = 0
	p.Age = 0
	p.Lifetime = 0
}

// ClampToGrid enforces the G2P-exit invariant: position stays within
// [eps, dims-eps] on every axis.
func ClampToGrid(pos mgl32.Vec3, dims Dims, eps float32) mgl32.Vec3 {
	clampAxis := func(v, max float32) float32 {
		if v < eps {
			return eps
		}
		if v > max-eps {
			return max - eps
		}
		return v
	}
	return mgl32.Vec3{
		clampAxis(pos.X(), dims.X),
		clampAxis(pos.Y(), dims.Y),
		clampAxis(pos.Z(), dims.Z),
	}
}

// Pool owns a fixed-size particle array plus a free list of dead slots, so
// the buffer never reallocates after Allocate (spec §4.A invariant:
// "buffers are never resized after allocate").
type Pool struct {
	Particles []Particle
	freeList  []int
}

func Allocate(nMax int) *Pool {
	p := &Pool{Particles: make([]Particle, nMax)}
	p.Reset()
	return p
}

// Reset re-seeds the free list from scratch, marking every slot dead. Used
// by Allocate at init; it keeps the slice length, so a different N_max needs
// a fresh Allocate (full re-init, per spec §4.A).
func (p *Pool) Reset() {
	p.freeList = p.freeList[:0]
	for i := range p.Particles {
		p.Particles[i] = Particle{}
		p.freeList = append(p.freeList, len(p.Particles)-1-i)
	}
}

// AllocateFromFreeList pops a dead slot for an emitter to reuse, or reports
// ok=false when the pool is saturated.
func (p *Pool) AllocateFromFreeList() (index int, ok bool) {
	n := len(p.freeList)
	if n == 0 {
		return 0, false
	}
	index = p.freeList[n-1]
	p.freeList = p.freeList[:n-1]
	return index, true
}

// MarkDead returns a slot to the free list. Safe to call redundantly; the
// solver itself never calls this — only the CPU emitter path and the
// end-of-frame reap pass do (spec §4.A: "kernels communicate deadness only
// through mass=0").
func (p *Pool) MarkDead(i int) {
	p.Particles[i].Kill()
	p.freeList = append(p.freeList, i)
}

// ReapExpired scans for particles whose lifetime has elapsed and returns
// them to the free list. Called once per frame by the orchestrator after
// G2P, never mid-kernel.
func (p *Pool) ReapExpired() {
	for i := range p.Particles {
		pt := &p.Particles[i]
		if pt.Mass > 0 && pt.Lifetime >= 0 && pt.Age > pt.Lifetime {
			p.MarkDead(i)
		}
	}
}

// TotalMass sums live-particle mass; used by the mass-conservation
// invariant test (spec §8).
func (p *Pool) TotalMass() float64 {
	var sum float64
	for i := range p.Particles {
		sum += float64(p.Particles[i].Mass)
	}
	return sum
}

// LiveCount returns the number of particles with positive mass (spec §6.3
// preset metadata).
func (p *Pool) LiveCount() int {
	n := 0
	for i := range p.Particles {
		if p.Particles[i].Mass > 0 {
			n++
		}
	}
	return n
}
