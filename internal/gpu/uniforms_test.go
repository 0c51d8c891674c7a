package gpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimParamsBytesLayout(t *testing.T) {
	s := SimParams{
		Dt: 0.016, GridX: 64, GridY: 64, GridZ: 64,
		GravityMode: uint32(GravityCenter), FlipRatio: 0.95,
		TransferMode: uint32(TransferFLIP), SparseGrid: 1,
		VorticityEnabled: 1, VorticityEpsilon: 0.05,
		ParticleCount: 131072, CellCount: 64 * 64 * 64,
	}
	buf := s.Bytes()
	assert.Len(t, buf, SimParamsSize)

	le := binary.LittleEndian
	assert.Equal(t, float32(0.016), math.Float32frombits(le.Uint32(buf[0:])))
	assert.Equal(t, float32(64), math.Float32frombits(le.Uint32(buf[4:])))
	assert.Equal(t, uint32(GravityCenter), le.Uint32(buf[16:]))
	assert.Equal(t, uint32(131072), le.Uint32(buf[40:]))
}

func TestGravityParamsBytesLayout(t *testing.T) {
	g := GravityParams{Mode: uint32(GravityDevice), Strength: 9.8, DeviceDir: [3]float32{0, -1, 0}}
	buf := g.Bytes()
	le := binary.LittleEndian
	assert.Equal(t, uint32(GravityDevice), le.Uint32(buf[0:]))
	assert.Equal(t, float32(9.8), math.Float32frombits(le.Uint32(buf[4:])))
	assert.Equal(t, float32(-1), math.Float32frombits(le.Uint32(buf[20:])))
}

func TestTransferModeString(t *testing.T) {
	assert.Equal(t, "PIC", TransferPIC.String())
	assert.Equal(t, "FLIP", TransferFLIP.String())
	assert.Equal(t, "Hybrid", TransferMode(200).String())
}

func TestGravityModeString(t *testing.T) {
	assert.Equal(t, "Down", GravityDown.String())
	assert.Equal(t, "Center", GravityCenter.String())
	assert.Equal(t, "Device", GravityDevice.String())
	assert.Equal(t, "Off", GravityMode(200).String())
}
