package gpu

import (
	"encoding/binary"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/flowfield/mpm/internal/core"
)

// TrailBuffer is the optional per-particle position-history ring exposed on
// the renderer contract (spec §6.1 "bounded per-particle history length
// 4-64"). Disabled by default (length 0); the host enables it by calling
// Resize with a nonzero length. Grounded on manager_compression.go's
// fixed-capacity ring-of-bricks storage buffer, generalized from one
// compressed-brick slot per entry to one vec3 per history slot.
type TrailBuffer struct {
	buf      *wgpu.Buffer
	length   int
	capacity int // max particles this trail buffer was sized for

	cpu    []mgl32.Vec3 // length = capacity*length, slot-major per particle
	cursor []uint32     // next write index per particle, wraps at length
}

// Disabled reports whether trails are currently off (TrailLength==0).
func (t *TrailBuffer) Disabled() bool { return t == nil || t.length == 0 }

// Resize (re)allocates the GPU ring for capacity particles holding length
// history entries each (clamped to the spec's 4-64 range; 0 disables
// trails and releases the buffer).
func (t *TrailBuffer) Resize(ctx *Context, capacity, length int) (*TrailBuffer, error) {
	if length != 0 {
		if length < 4 {
			length = 4
		}
		if length > 64 {
			length = 64
		}
	}
	if t != nil && t.buf != nil {
		t.buf.Release()
		t.buf, t.length = nil, 0
	}
	nt := &TrailBuffer{length: length, capacity: capacity}
	if length == 0 {
		return nt, nil
	}
	buf, err := ctx.createStorageBuffer("trail", uint64(capacity*length*12), wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	nt.buf = buf
	nt.cpu = make([]mgl32.Vec3, capacity*length)
	nt.cursor = make([]uint32, capacity)
	return nt, nil
}

// Buffer returns the underlying GPU storage buffer, or nil when disabled.
func (t *TrailBuffer) Buffer() *wgpu.Buffer {
	if t.Disabled() {
		return nil
	}
	return t.buf
}

// Length reports the configured history depth (0 when disabled).
func (t *TrailBuffer) Length() int { return t.length }

// Push records one new position per live particle into the ring (called
// once per frame after G2P, spec §6.1), overwriting the oldest slot.
func (t *TrailBuffer) Push(particles []core.Particle) {
	if t.Disabled() {
		return
	}
	n := len(particles)
	if n > t.capacity {
		n = t.capacity
	}
	for i := 0; i < n; i++ {
		slot := t.cursor[i]
		t.cpu[i*t.length+int(slot)] = particles[i].Position
		t.cursor[i] = (slot + 1) % uint32(t.length)
	}
}

// Flush uploads the CPU-side ring to the GPU buffer in one call, matching
// UploadParticles's single-WriteBuffer convention.
func (t *TrailBuffer) Flush(ctx *Context) {
	if t.Disabled() {
		return
	}
	out := make([]byte, len(t.cpu)*12)
	le := binary.LittleEndian
	for i, v := range t.cpu {
		o := i * 12
		le.PutUint32(out[o:], math.Float32bits(v.X()))
		le.PutUint32(out[o+4:], math.Float32bits(v.Y()))
		le.PutUint32(out[o+8:], math.Float32bits(v.Z()))
	}
	ctx.Queue.WriteBuffer(t.buf, 0, out)
}
