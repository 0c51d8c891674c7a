package kinetic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowfield/mpm/internal/core"
)

func TestComposer_ForegroundGetsHigherForceMulThanBackground(t *testing.T) {
	c := NewComposer(2)
	fg := c.Compute(0, 0.1, CameraState{}, 0.2)
	bg := c.Compute(1, 0.9, CameraState{}, 0.2)
	assert.Greater(t, fg.ForceMul, bg.ForceMul)
	assert.Equal(t, core.LayerForeground, fg.Layer)
	assert.Equal(t, core.LayerBackground, bg.Layer)
}

func TestComposer_CachesUntil100ms(t *testing.T) {
	c := NewComposer(1)
	first := c.Compute(0, 0.1, CameraState{TonalRegister: 0}, 0.01)
	second := c.Compute(0, 0.1, CameraState{TonalRegister: 1}, 0.01)
	assert.Equal(t, first, second)

	third := c.Compute(0, 0.1, CameraState{TonalRegister: 1}, 0.2)
	assert.NotEqual(t, first, third)
}
