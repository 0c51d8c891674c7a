package kinetic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowfield/mpm/internal/core"
)

func TestPersonalityEngine_Assign_PicksDistinctPrimarySecondaryUsually(t *testing.T) {
	e := NewPersonalityEngine(1)
	primary, secondary, blend := e.Assign(AssignmentInputs{
		Role: core.RoleLead, Audio: core.AudioFeatures{Bass: 0.8, BeatIntensity: 0.8},
		GlobalWeight: 0.3, RoleWeight: 0.3, AudioWeight: 0.3, RandWeight: 0.1,
	})
	assert.Less(t, int(primary), core.PersonalityCount())
	assert.Less(t, int(secondary), core.PersonalityCount())
	assert.GreaterOrEqual(t, blend, float32(0.5))
}

func TestPersonalityEngine_GlobalCrossfadeOverTwoSeconds(t *testing.T) {
	e := NewPersonalityEngine(1)
	e.SetGlobalTarget(core.PersonalityChaotic, true)
	assert.Equal(t, float32(0), e.globalBlendT)
	e.Advance(1.0)
	assert.InDelta(t, 0.5, e.globalBlendT, 0.01)
	e.Advance(1.0)
	assert.Equal(t, float32(1), e.globalBlendT)
	assert.Equal(t, core.PersonalityChaotic, e.globalCurrent)
}

func TestPersonalityEngine_SetGlobalTargetNoopsWithoutAutoAdapt(t *testing.T) {
	e := NewPersonalityEngine(1)
	e.SetGlobalTarget(core.PersonalityChaotic, false)
	assert.Equal(t, core.PersonalityKind(0), e.globalTarget)
}
