package boundary

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ParamsStride matches boundary.wgsl's BoundaryParams layout worked out by
// hand (vec3<f32> aligns to 16 bytes in WGSL's uniform address space even
// though it stores 12): two leading u32s, three vec3s, four scalars, one
// more vec3, two scalars, one trailing u32, rounded up to a 16-byte
// multiple.
const ParamsStride = 112

// Bytes packs Params into the exact byte layout boundary.wgsl expects.
func (p Params) Bytes() []byte {
	buf := make([]byte, ParamsStride)
	le := binary.LittleEndian
	putU32 := func(o int, v uint32) { le.PutUint32(buf[o:], v) }
	putF32 := func(o int, v float32) { le.PutUint32(buf[o:], math.Float32bits(v)) }
	putVec3 := func(o int, v mgl32.Vec3) {
		putF32(o, v.X())
		putF32(o+4, v.Y())
		putF32(o+8, v.Z())
	}

	putU32(0, p.enabled())
	putU32(4, uint32(p.Shape))
	putVec3(16, p.Min)
	putVec3(32, p.Max)
	putVec3(48, p.Center)
	putF32(60, p.Radius)
	putF32(64, p.Stiffness)
	putF32(68, p.Restitution)
	putF32(72, p.Friction)
	putVec3(80, p.ViewportCenter)
	putF32(92, p.ViewportRadius)
	putF32(96, p.ViewportPulse)
	putU32(100, uint32(p.CollisionMode))
	return buf
}

// PulseSmoother applies the spec's exponential-moving-average smoothing
// (tau ~= 120 ms) to the bass-derived viewportPulse scalar, preventing the
// soft-containment radius from jittering frame to frame.
type PulseSmoother struct {
	Tau   float32
	value float32
}

func NewPulseSmoother() *PulseSmoother {
	return &PulseSmoother{Tau: 0.12}
}

// Advance blends toward target by dt/(tau+dt), with target clamped to
// [0, 0.3] per spec §4.C.
func (s *PulseSmoother) Advance(target float32, dt float32) float32 {
	if target < 0 {
		target = 0
	}
	if target > 0.3 {
		target = 0.3
	}
	alpha := dt / (s.Tau + dt)
	s.value += (target - s.value) * alpha
	return s.value
}

func (s *PulseSmoother) Value() float32 { return s.value }
