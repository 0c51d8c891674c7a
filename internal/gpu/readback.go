package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/flowfield/mpm/internal/core"
)

// readback is the staging buffer G2P's output is copied into before the CPU
// mirror can see it. Allocated once at buffer construction time, never
// resized, matching manager_hiz.go's ReadbackBuffer convention (the teacher's
// only texture/buffer readback path in the pack).
type readbackState struct {
	buf    *wgpu.Buffer
	size   uint64
	mapped bool
}

// EnableReadback allocates the staging buffer used by ReadbackParticles. The
// solver module calls this once during setup; a headless host that never
// reads particles back (e.g. a preset exporter) can skip it.
func (b *Buffers) EnableReadback(ctx *Context) error {
	size := uint64(b.MaxParticles * ParticleStride)
	buf, err := ctx.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "particle-readback",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create readback buffer: %w", err)
	}
	b.readback = &readbackState{buf: buf, size: size}
	return nil
}

// ReadbackParticles copies the first n particles' GPU state back into dst,
// blocking until the map completes. Grounded on manager_hiz.go's
// ReadbackHiZ: CopyBufferToBuffer into a MapRead staging buffer, then
// MapAsync/Device.Poll/GetMappedRange/Unmap, except this path polls with
// wait=true since the solver module reaps expired particles and pushes trail
// positions from the result in the same frame (and the next frame's kinetic
// systems read it), rather than amortizing the map over several frames.
func (b *Buffers) ReadbackParticles(ctx *Context, dst []core.Particle) error {
	if b.readback == nil {
		return fmt.Errorf("gpu: readback not enabled")
	}
	n := len(dst)
	size := uint64(n * ParticleStride)
	if size > b.readback.size {
		return fmt.Errorf("gpu: readback of %d particles exceeds staging capacity", n)
	}

	encoder, err := ctx.Device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "particle-readback-copy"})
	if err != nil {
		return fmt.Errorf("gpu: readback encoder: %w", err)
	}
	encoder.CopyBufferToBuffer(b.Particles, 0, b.readback.buf, 0, size)
	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("gpu: readback finish: %w", err)
	}
	ctx.Queue.Submit(cmd)

	b.readback.mapped = false
	var mapErr error
	b.readback.buf.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		if status == wgpu.BufferMapAsyncStatusSuccess {
			b.readback.mapped = true
		} else {
			mapErr = fmt.Errorf("gpu: readback map failed: status %d", status)
		}
	})

	for !b.readback.mapped && mapErr == nil {
		ctx.Device.Poll(true, nil)
	}
	if mapErr != nil {
		return mapErr
	}

	data := b.readback.buf.GetMappedRange(0, uint(size))
	for i := 0; i < n; i++ {
		dst[i] = DecodeParticle(data, i*ParticleStride)
	}
	b.readback.buf.Unmap()
	b.readback.mapped = false
	return nil
}
