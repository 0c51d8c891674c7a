// Package fields models force-field and emitter records as plain data
// (spec §3.4). Both are owned as ECS components on the root App's Ecs —
// generalizing the teacher's ParticleEmitterComponent CPU-lifecycle pattern
// from particles_ecs.go, which queried one component type per frame and
// wrote spawned particles through a free list exactly as FieldsModule's
// emitter step does here.
package fields

import "github.com/go-gl/mathgl/mgl32"

// Kind enumerates the eight closed-form force contributions (spec §4.D).
type Kind uint8

const (
	Attractor Kind = iota
	Repeller
	Vortex
	Turbulence
	Directional
	VortexTube
	Spherical
	CurlNoise
)

// FalloffMode selects the radial attenuation curve applied to a field's
// strength as distance approaches its radius.
type FalloffMode uint8

const (
	FalloffConstant FalloffMode = iota
	FalloffLinear
	FalloffQuadratic
	FalloffSmoothHermite
)

// Field is the ECS component form of a force-field record. At most 16 are
// ever marshaled into the GPU's per-frame uniform array (spec §3.4); a
// 17th entity with this component is silently ignored by the upload step,
// not an error.
type Field struct {
	Kind      Kind
	Falloff   FalloffMode
	Position  mgl32.Vec3
	Direction mgl32.Vec3
	Axis      mgl32.Vec3
	Strength  float32
	Radius    float32
}

// EmitterKind selects the spatial sampling shape an emitter spawns from.
type EmitterKind uint8

const (
	EmitterPoint EmitterKind = iota
	EmitterSphere
	EmitterDisc
	EmitterBox
	EmitterCone
	EmitterRing
)

// EmitterPattern selects the temporal emission rhythm.
type EmitterPattern uint8

const (
	PatternContinuous EmitterPattern = iota
	PatternBurst
	PatternPulse
	PatternFountain
	PatternExplosion
	PatternStream
)

// Emitter is the ECS component form of an emitter record (spec §3.4). The
// CPU-side lifecycle (accumulate, sample, allocate) runs once per frame in
// the root package's fieldsSystem; it never touches the GPU particle buffer
// directly — spawned particles are written into the CPU pool, which
// solverSystem uploads in one call per frame (spec §4.D "coalesced into a
// single upload region").
type Emitter struct {
	Kind      EmitterKind
	Pattern   EmitterPattern
	Position  mgl32.Vec3
	Direction mgl32.Vec3

	Rate           float32
	Velocity       float32
	VelocitySpread float32
	Lifetime       float32
	MaterialType   uint8

	SizeStart, SizeEnd   float32
	ColorStart, ColorEnd mgl32.Vec3

	emissionAccumulator float32
	elapsed             float32 // seconds since this emitter started ticking, drives Fountain/Stream envelopes
	fired               bool    // latched true after a Burst/Explosion one-shot fires
}
