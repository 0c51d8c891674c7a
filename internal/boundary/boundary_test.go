package boundary

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultParamsIsViewportModeAndCentered(t *testing.T) {
	p := DefaultParams(64)
	assert.Equal(t, ShapeNone, p.Shape)
	assert.Equal(t, uint32(0), p.enabled())
	assert.Equal(t, float32(32), p.Center.X())
	assert.Equal(t, float32(32), p.ViewportCenter.Y())
}

func TestParamsBytesLengthMatchesStride(t *testing.T) {
	p := DefaultParams(64)
	buf := p.Bytes()
	assert.Len(t, buf, ParamsStride)
}

func TestParamsBytesRoundTripsScalars(t *testing.T) {
	p := DefaultParams(64)
	p.Shape = ShapeSphere
	p.CollisionMode = CollisionKill
	p.Radius = 12.5

	buf := p.Bytes()
	le := binary.LittleEndian

	assert.Equal(t, uint32(1), le.Uint32(buf[0:]), "shape != None should set enabled")
	assert.Equal(t, uint32(ShapeSphere), le.Uint32(buf[4:]))
	assert.Equal(t, uint32(CollisionKill), le.Uint32(buf[100:]))
	assert.Equal(t, float32(12.5), math.Float32frombits(le.Uint32(buf[60:])))
}

func TestPulseSmootherClampsAndConverges(t *testing.T) {
	s := NewPulseSmoother()
	for i := 0; i < 1000; i++ {
		s.Advance(10, 0.016)
	}
	assert.LessOrEqual(t, s.Value(), float32(0.3))

	s2 := NewPulseSmoother()
	for i := 0; i < 1000; i++ {
		s2.Advance(-5, 0.016)
	}
	assert.GreaterOrEqual(t, s2.Value(), float32(0))
}

func TestPulseSmootherApproachesTarget(t *testing.T) {
	s := NewPulseSmoother()
	var v float32
	for i := 0; i < 500; i++ {
		v = s.Advance(0.2, 0.016)
	}
	assert.InDelta(t, 0.2, v, 0.01)
}
