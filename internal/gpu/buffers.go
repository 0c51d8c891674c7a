package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/flowfield/mpm/internal/core"
)

// Byte strides for the GPU-resident structs. WGSL's storage/uniform layout
// rules align vec3<f32> to 16 bytes even though it occupies 12, so these are
// larger than a naive sizeof(fields) count. Worked out by hand the way
// manager_compression.go's brick record layout is, rather than reflected.
const (
	ParticleStride = 144
	// CellStride: momentum_x/y/z + mass (4x atomic<u32>, 16B) + vorticity
	// (vec3<f32> at offset 16, 12B) + active (atomic<u32>, packed into the
	// vec3's trailing 4B at offset 28) + old_velocity (vec3<f32> at offset
	// 32, rounded up to 16B), for 48B total.
	CellStride  = 48
	FieldStride = 80
	DriveStride = 32
)

// EncodeParticle writes one particle's GPU representation into buf at byte
// offset off. buf must have at least off+ParticleStride bytes.
func EncodeParticle(buf []byte, off int, p *core.Particle) {
	le := binary.LittleEndian
	putVec3 := func(o int, v mgl32.Vec3) {
		le.PutUint32(buf[o:], math.Float32bits(v.X()))
		le.PutUint32(buf[o+4:], math.Float32bits(v.Y()))
		le.PutUint32(buf[o+8:], math.Float32bits(v.Z()))
	}
	putF32 := func(o int, v float32) { le.PutUint32(buf[o:], math.Float32bits(v)) }
	putU32 := func(o int, v uint32) { le.PutUint32(buf[o:], v) }

	b := buf[off:]
	putVec3(0, p.Position)
	putVec3(16, p.Velocity)
	// mgl32.Mat3 is column-major [9]float32; read it out row-wise by hand
	// rather than relying on a Row() accessor.
	putVec3(32, mgl32.Vec3{p.C[0], p.C[3], p.C[6]})
	putVec3(48, mgl32.Vec3{p.C[1], p.C[4], p.C[7]})
	putVec3(64, mgl32.Vec3{p.C[2], p.C[5], p.C[8]})
	putF32(76, p.Mass)
	putF32(80, p.Density)
	putVec3(96, p.Direction)
	putVec3(112, p.Color)
	putU32(124, uint32(p.MaterialType))
	putF32(128, p.Age)
	putF32(132, p.Lifetime)
	putU32(136, uint32(p.Role))
	_ = b
}

// DecodeParticle reverses EncodeParticle, used by the CPU mirror readback
// path (adaptive timestep sampling, pool bookkeeping).
func DecodeParticle(buf []byte, off int) core.Particle {
	le := binary.LittleEndian
	getVec3 := func(o int) mgl32.Vec3 {
		return mgl32.Vec3{
			math.Float32frombits(le.Uint32(buf[off+o:])),
			math.Float32frombits(le.Uint32(buf[off+o+4:])),
			math.Float32frombits(le.Uint32(buf[off+o+8:])),
		}
	}
	getF32 := func(o int) float32 { return math.Float32frombits(le.Uint32(buf[off+o:])) }
	getU32 := func(o int) uint32 { return le.Uint32(buf[off+o:]) }

	var p core.Particle
	p.Position = getVec3(0)
	p.Velocity = getVec3(16)
	r0, r1, r2 := getVec3(32), getVec3(48), getVec3(64)
	p.C = mgl32.Mat3{r0.X(), r1.X(), r2.X(), r0.Y(), r1.Y(), r2.Y(), r0.Z(), r1.Z(), r2.Z()}
	p.Mass = getF32(76)
	p.Density = getF32(80)
	p.Direction = getVec3(96)
	p.Color = getVec3(112)
	p.MaterialType = uint8(getU32(124))
	p.Age = getF32(128)
	p.Lifetime = getF32(132)
	p.Role = core.Role(getU32(136))
	return p
}

// FieldRecord mirrors fields.wgsl's FieldRecord, packed by hand for the same
// alignment reasons as EncodeParticle.
type FieldRecord struct {
	Kind        uint32
	FalloffMode uint32
	Position    mgl32.Vec3
	Direction   mgl32.Vec3
	Axis        mgl32.Vec3
	Strength    float32
	Radius      float32
}

func (f FieldRecord) Bytes() []byte {
	buf := make([]byte, FieldStride)
	le := binary.LittleEndian
	le.PutUint32(buf[0:], f.Kind)
	le.PutUint32(buf[4:], f.FalloffMode)
	putVec3At(buf, 16, f.Position)
	putVec3At(buf, 32, f.Direction)
	putVec3At(buf, 48, f.Axis)
	le.PutUint32(buf[60:], math.Float32bits(f.Strength))
	le.PutUint32(buf[64:], math.Float32bits(f.Radius))
	return buf
}

func putVec3At(buf []byte, o int, v mgl32.Vec3) {
	le := binary.LittleEndian
	le.PutUint32(buf[o:], math.Float32bits(v.X()))
	le.PutUint32(buf[o+4:], math.Float32bits(v.Y()))
	le.PutUint32(buf[o+8:], math.Float32bits(v.Z()))
}

// ParticleDrive mirrors g2p.wgsl's ParticleDrive, written by the kinetic
// mapper every frame (spec §4.H "gesture and role drive").
type ParticleDrive struct {
	Role                uint32
	PersonalityPrimary  uint32
	PersonalitySecondary uint32
	PersonalityBlend    float32
	GestureForce        mgl32.Vec3
	MacroForceScale     float32
}

func (d ParticleDrive) Bytes() []byte {
	buf := make([]byte, DriveStride)
	le := binary.LittleEndian
	le.PutUint32(buf[0:], d.Role)
	le.PutUint32(buf[4:], d.PersonalityPrimary)
	le.PutUint32(buf[8:], d.PersonalitySecondary)
	le.PutUint32(buf[12:], math.Float32bits(d.PersonalityBlend))
	putVec3At(buf, 16, d.GestureForce)
	le.PutUint32(buf[28:], math.Float32bits(d.MacroForceScale))
	return buf
}

// Buffers owns every GPU-resident allocation the solver touches. Sized once
// at construction and never resized afterward (spec §4.A).
type Buffers struct {
	Particles    *wgpu.Buffer
	Cells        *wgpu.Buffer
	Fields       *wgpu.Buffer
	FieldsParams *wgpu.Buffer
	Boundary     *wgpu.Buffer
	Materials    *wgpu.Buffer
	Drive        *wgpu.Buffer
	SimParams       *wgpu.Buffer
	GravityParams   *wgpu.Buffer
	FieldGrid       *wgpu.Buffer
	FieldGridParams *wgpu.Buffer

	MaxParticles int
	CellCount    int

	readback *readbackState
}

const MaxFields = 16
const MaterialParamsStride = 32

func NewBuffers(ctx *Context, maxParticles int, dims core.Dims) (*Buffers, error) {
	cellCount := int(dims.X) * int(dims.Y) * int(dims.Z)

	particleBuf, err := ctx.createStorageBuffer("particles", uint64(maxParticles*ParticleStride), 0)
	if err != nil {
		return nil, err
	}
	cellBuf, err := ctx.createStorageBuffer("cells", uint64(cellCount*CellStride), 0)
	if err != nil {
		return nil, err
	}
	fieldBuf, err := ctx.createStorageBuffer("fields", uint64(MaxFields*FieldStride), 0)
	if err != nil {
		return nil, err
	}
	fieldsParamsBuf, err := ctx.createUniformBuffer("fields-params", 16)
	if err != nil {
		return nil, err
	}
	boundaryBuf, err := ctx.createUniformBuffer("boundary-params", 128)
	if err != nil {
		return nil, err
	}
	materialsBuf, err := ctx.createStorageBuffer("materials", uint64(core.MaterialCount()*MaterialParamsStride), 0)
	if err != nil {
		return nil, err
	}
	driveBuf, err := ctx.createStorageBuffer("drive", uint64(maxParticles*DriveStride), wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	simParamsBuf, err := ctx.createUniformBuffer("sim-params", SimParamsSize)
	if err != nil {
		return nil, err
	}
	gravityParamsBuf, err := ctx.createUniformBuffer("gravity-params", 32)
	if err != nil {
		return nil, err
	}
	// The precomputed force-field texture is optional (spec §4.D "grid
	// mode"); a single-cell placeholder keeps the bind group layout valid
	// even when no one ever calls UploadFieldGrid.
	fieldGridBuf, err := ctx.createStorageBuffer("field-grid", 16, 0)
	if err != nil {
		return nil, err
	}
	fieldGridParamsBuf, err := ctx.createUniformBuffer("field-grid-params", 32)
	if err != nil {
		return nil, err
	}

	return &Buffers{
		Particles:       particleBuf,
		Cells:           cellBuf,
		Fields:          fieldBuf,
		FieldsParams:    fieldsParamsBuf,
		Boundary:        boundaryBuf,
		Materials:       materialsBuf,
		Drive:           driveBuf,
		SimParams:       simParamsBuf,
		GravityParams:   gravityParamsBuf,
		FieldGrid:       fieldGridBuf,
		FieldGridParams: fieldGridParamsBuf,
		MaxParticles:    maxParticles,
		CellCount:       cellCount,
	}, nil
}

// UploadParticles packs the whole pool and writes it in one queue call,
// matching manager_edit.go's FlushEdits batching convention rather than one
// WriteBuffer per particle.
func (b *Buffers) UploadParticles(ctx *Context, particles []core.Particle) error {
	if len(particles) > b.MaxParticles {
		return fmt.Errorf("gpu: %d particles exceeds capacity %d", len(particles), b.MaxParticles)
	}
	buf := make([]byte, len(particles)*ParticleStride)
	for i := range particles {
		EncodeParticle(buf, i*ParticleStride, &particles[i])
	}
	ctx.Queue.WriteBuffer(b.Particles, 0, buf)
	return nil
}

func (b *Buffers) UploadFields(ctx *Context, fields []FieldRecord) error {
	if len(fields) > MaxFields {
		fields = fields[:MaxFields]
	}
	buf := make([]byte, len(fields)*FieldStride)
	for i, f := range fields {
		copy(buf[i*FieldStride:], f.Bytes())
	}
	if len(buf) > 0 {
		ctx.Queue.WriteBuffer(b.Fields, 0, buf)
	}
	countBuf := make([]byte, 16)
	binary.LittleEndian.PutUint32(countBuf, uint32(len(fields)))
	ctx.Queue.WriteBuffer(b.FieldsParams, 0, countBuf)
	return nil
}

func (b *Buffers) UploadDrive(ctx *Context, drive []ParticleDrive) error {
	if len(drive) > b.MaxParticles {
		return fmt.Errorf("gpu: %d drive records exceeds capacity %d", len(drive), b.MaxParticles)
	}
	buf := make([]byte, len(drive)*DriveStride)
	for i, d := range drive {
		copy(buf[i*DriveStride:], d.Bytes())
	}
	if len(buf) > 0 {
		ctx.Queue.WriteBuffer(b.Drive, 0, buf)
	}
	return nil
}

// EncodeMaterialParams packs one material table entry into materials.wgsl's
// MaterialParams layout (eight 4-byte scalars, no vec3 members so no
// alignment padding is needed).
func EncodeMaterialParams(m *core.MaterialParams) []byte {
	buf := make([]byte, MaterialParamsStride)
	le := binary.LittleEndian
	le.PutUint32(buf[0:], math.Float32bits(m.Density0))
	le.PutUint32(buf[4:], math.Float32bits(m.Stiffness))
	le.PutUint32(buf[8:], math.Float32bits(m.Viscosity))
	le.PutUint32(buf[12:], math.Float32bits(m.DynamicViscosity))
	le.PutUint32(buf[16:], math.Float32bits(m.Friction))
	le.PutUint32(buf[20:], math.Float32bits(m.Cohesion))
	le.PutUint32(buf[24:], math.Float32bits(m.Elasticity))
	var flags uint32
	if m.IsGranular {
		flags |= 1
	}
	if m.IsElastic {
		flags |= 2
	}
	le.PutUint32(buf[28:], flags)
	return buf
}

// UploadMaterials writes the whole material table in one call, matching
// UploadParticles' batching convention.
func (b *Buffers) UploadMaterials(ctx *Context, materials []core.MaterialParams) error {
	if len(materials) > core.MaterialCount() {
		return fmt.Errorf("gpu: %d materials exceeds table capacity %d", len(materials), core.MaterialCount())
	}
	buf := make([]byte, len(materials)*MaterialParamsStride)
	for i := range materials {
		copy(buf[i*MaterialParamsStride:], EncodeMaterialParams(&materials[i]))
	}
	if len(buf) > 0 {
		ctx.Queue.WriteBuffer(b.Materials, 0, buf)
	}
	return nil
}

func (b *Buffers) UploadSimParams(ctx *Context, p SimParams) {
	ctx.Queue.WriteBuffer(b.SimParams, 0, p.Bytes())
}

func (b *Buffers) UploadGravityParams(ctx *Context, g GravityParams) {
	ctx.Queue.WriteBuffer(b.GravityParams, 0, g.Bytes())
}

// UploadBoundary accepts the already-packed boundary.Params bytes (the
// boundary package owns the struct; this just routes the write) to avoid an
// import cycle between internal/gpu and internal/boundary.
func (b *Buffers) UploadBoundary(ctx *Context, packed []byte) {
	ctx.Queue.WriteBuffer(b.Boundary, 0, packed)
}

// DisableFieldGrid writes the "off" flag for the optional precomputed
// force-field texture path (spec §4.D grid mode); the default state, since
// most presets drive fields analytically through the per-particle list.
func (b *Buffers) DisableFieldGrid(ctx *Context) {
	buf := make([]byte, 32)
	ctx.Queue.WriteBuffer(b.FieldGridParams, 0, buf)
}

func (b *Buffers) Release() {
	for _, buf := range []*wgpu.Buffer{
		b.Particles, b.Cells, b.Fields, b.FieldsParams, b.Boundary, b.Materials,
		b.Drive, b.SimParams, b.GravityParams, b.FieldGrid, b.FieldGridParams,
	} {
		if buf != nil {
			buf.Release()
		}
	}
	if b.readback != nil && b.readback.buf != nil {
		b.readback.buf.Release()
	}
}
