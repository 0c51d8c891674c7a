package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowfield/mpm/internal/gpu"
)

func TestLoad_EmbeddedDefaultsParseCleanly(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Hybrid", cfg.TransferMode)
	assert.Equal(t, 131072, cfg.ParticleCount)
}

func TestResolve_ParsesEnumsToTypedForm(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	resolved, err := cfg.Resolve()
	require.NoError(t, err)
	assert.Equal(t, gpu.TransferHybrid, resolved.TransferMode)
	assert.Equal(t, gpu.GravityDown, resolved.GravityMode)
	assert.Nil(t, resolved.ForcedPersonality)
}

func TestResolve_RejectsUnknownEnumValue(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.TransferMode = "Quantum"
	_, err = cfg.Resolve()
	assert.Error(t, err)
}

func TestResolve_HonorsForcedPersonalityOverride(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.ForcedPersonality = "Chaotic"
	resolved, err := cfg.Resolve()
	require.NoError(t, err)
	require.NotNil(t, resolved.ForcedPersonality)
}

func TestDiff_ReportsOnlyChangedFields(t *testing.T) {
	a, err := Load("")
	require.NoError(t, err)
	b := a
	b.FlipRatio = 0.1
	b.AutoAdapt = !a.AutoAdapt

	changed := a.Diff(b)
	assert.ElementsMatch(t, []string{"flipRatio", "autoAdapt"}, changed)
}

func TestDiff_EmptyWhenIdentical(t *testing.T) {
	a, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, a.Diff(a))
}
