package gpu

import (
	"encoding/binary"
	"math"
)

// SimParams mirrors the WGSL SimParams struct byte-for-byte (common.wgsl).
// Packed manually rather than via reflection, matching the teacher's
// manager_compression.go convention of hand-rolled paramsData byte slices
// for uniform buffers.
type SimParams struct {
	Dt               float32
	GridX, GridY, GridZ float32
	GravityMode      uint32
	FlipRatio        float32
	TransferMode     uint32
	SparseGrid       uint32
	VorticityEnabled uint32
	VorticityEpsilon float32
	ParticleCount    uint32
	CellCount        uint32
}

const SimParamsSize = 12 * 4

func (s SimParams) Bytes() []byte {
	buf := make([]byte, SimParamsSize)
	le := binary.LittleEndian
	le.PutUint32(buf[0:], float32bits(s.Dt))
	le.PutUint32(buf[4:], float32bits(s.GridX))
	le.PutUint32(buf[8:], float32bits(s.GridY))
	le.PutUint32(buf[12:], float32bits(s.GridZ))
	le.PutUint32(buf[16:], s.GravityMode)
	le.PutUint32(buf[20:], float32bits(s.FlipRatio))
	le.PutUint32(buf[24:], s.TransferMode)
	le.PutUint32(buf[28:], s.SparseGrid)
	le.PutUint32(buf[32:], s.VorticityEnabled)
	le.PutUint32(buf[36:], float32bits(s.VorticityEpsilon))
	le.PutUint32(buf[40:], s.ParticleCount)
	le.PutUint32(buf[44:], s.CellCount)
	return buf
}

// GravityParams mirrors grid_update.wgsl's GravityParams struct.
type GravityParams struct {
	Mode      uint32
	Strength  float32
	DeviceDir [3]float32
}

func (g GravityParams) Bytes() []byte {
	buf := make([]byte, 8*4) // padded to 16-byte multiple for uniform alignment
	le := binary.LittleEndian
	le.PutUint32(buf[0:], g.Mode)
	le.PutUint32(buf[4:], float32bits(g.Strength))
	// device_dir is a vec3<f32>, so WGSL aligns it to offset 16.
	le.PutUint32(buf[16:], float32bits(g.DeviceDir[0]))
	le.PutUint32(buf[20:], float32bits(g.DeviceDir[1]))
	le.PutUint32(buf[24:], float32bits(g.DeviceDir[2]))
	return buf
}

func float32bits(f float32) uint32 {
	return math.Float32bits(f)
}
