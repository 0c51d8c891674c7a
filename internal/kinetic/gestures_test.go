package kinetic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowfield/mpm/internal/core"
)

func TestGestureState_AttackFiresOnHighOnsetEnergy(t *testing.T) {
	var gs GestureState
	in := RuleInputs{
		Audio:  core.AudioFeatures{OnsetEnergy: 0.9, BeatIntensity: 0.5},
		Timing: core.TimingState{TempoStable: true},
		Groove: core.GrooveState{RhythmConfidence: 0.8},
	}
	active := gs.Advance(in, 0.016)
	found := false
	for _, g := range active {
		if g.Kind == core.GestureAttack {
			found = true
		}
	}
	assert.True(t, found)
}

func TestGestureState_CapsAtThreeSimultaneous(t *testing.T) {
	var gs GestureState
	in := RuleInputs{
		Audio:         core.AudioFeatures{OnsetEnergy: 0.9, BeatIntensity: 0.9, SpectralFlux: 0.01},
		Timing:        core.TimingState{TempoStable: true, NextDownbeatInMs: 50},
		Groove:        core.GrooveState{RhythmConfidence: 0.9},
		TensionSlope:  0.2,
		SustainedSecs: 3,
	}
	gs.Advance(in, 0.016)
	assert.LessOrEqual(t, len(gs.active), maxActiveGestures)
}

func TestGestureState_SuppressesPredictiveWhenTempoUnstable(t *testing.T) {
	var gs GestureState
	in := RuleInputs{
		Audio:  core.AudioFeatures{},
		Timing: core.TimingState{TempoStable: false, NextDownbeatInMs: 50},
		Groove: core.GrooveState{RhythmConfidence: 0.9},
	}
	active := gs.Advance(in, 0.016)
	for _, g := range active {
		assert.NotEqual(t, core.GestureAccent, g.Kind)
		assert.NotEqual(t, core.GestureSwell, g.Kind)
	}
}

func TestAnticipationWindowMs_MatchesSpecTable(t *testing.T) {
	assert.Equal(t, float32(400), AnticipationWindowMs(core.GestureSwell))
	assert.Equal(t, float32(200), AnticipationWindowMs(core.GestureAccent))
	assert.Equal(t, float32(300), AnticipationWindowMs(core.GestureBreath))
	assert.Equal(t, float32(50), AnticipationWindowMs(core.GestureAttack))
}
