package mpm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowfield/mpm/internal/config"
)

func baseEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		TransferMode:  "Hybrid",
		FlipRatio:     0.95,
		GravityMode:   "Down",
		ParticleCount: 1024,
		BoundaryShape: "None",
		CollisionMode: "Reflect",
	}
}

func TestConfigSystemAppliesChangedFields(t *testing.T) {
	base := baseEngineConfig()
	resolved, err := base.Resolve()
	require.NoError(t, err)

	requests := &ConfigRequests{}
	authored := &ConfigAuthored{Current: base}
	logger := NewDefaultLogger("test", false)

	next := base
	next.FlipRatio = 0.5
	requests.Apply(next)

	configSystem(requests, authored, &resolved, logger)

	assert.Equal(t, float32(0.5), resolved.FlipRatio)
	assert.Equal(t, next, authored.Current)
	assert.Empty(t, requests.Pending, "drained requests should not be reprocessed")
}

func TestConfigSystemNoopWhenNothingChanged(t *testing.T) {
	base := baseEngineConfig()
	resolved, err := base.Resolve()
	require.NoError(t, err)

	requests := &ConfigRequests{}
	authored := &ConfigAuthored{Current: base}
	logger := NewDefaultLogger("test", false)

	requests.Apply(base)
	before := resolved
	configSystem(requests, authored, &resolved, logger)

	assert.Equal(t, before, resolved, "an identical reconfigure should leave the resolved config untouched")
}

func TestConfigSystemRejectsInvalidEnumWithoutApplying(t *testing.T) {
	base := baseEngineConfig()
	resolved, err := base.Resolve()
	require.NoError(t, err)

	requests := &ConfigRequests{}
	authored := &ConfigAuthored{Current: base}
	logger := NewDefaultLogger("test", false)

	bad := base
	bad.TransferMode = "NotARealMode"
	requests.Apply(bad)

	configSystem(requests, authored, &resolved, logger)

	assert.Equal(t, base, authored.Current, "a rejected reconfigure should not become the new baseline")
	assert.Equal(t, "Hybrid", authored.Current.TransferMode)
}

func TestConfigRequestsApplyQueues(t *testing.T) {
	r := &ConfigRequests{}
	r.Apply(baseEngineConfig())
	assert.Len(t, r.Pending, 1)
}
