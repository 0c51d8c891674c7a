package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowfield/mpm/internal/core"
)

func TestTrailBuffer_DisabledByDefault(t *testing.T) {
	var tb *TrailBuffer
	assert.True(t, tb.Disabled())
}

func TestTrailBuffer_PushNoopsWhenDisabled(t *testing.T) {
	tb := &TrailBuffer{}
	particles := []core.Particle{{}}
	tb.Push(particles) // must not panic
	assert.True(t, tb.Disabled())
}
