package kinetic

import "github.com/flowfield/mpm/internal/core"

// macroTimeConstants holds, in seconds, one time constant per knob from the
// 150-400 ms range spec §4.H.5 allows; each
// knob picks a fixed point in that range rather than exposing it as a
// further tunable, since the spec treats it as an implementation detail of
// the smoothing, not a user-facing parameter.
var macroTimeConstants = core.MacroState{
	Intensity: 0.25, Chaos: 0.3, Smoothness: 0.4, Responsiveness: 0.15,
	Density: 0.3, Energy: 0.2, Coherence: 0.35, Complexity: 0.3,
}

// MacroSystem smooths the 8 macro knobs toward host-set targets with
// per-knob exponential time constants (spec §4.H.5).
type MacroSystem struct {
	current core.MacroState
	target  core.MacroState
}

func NewMacroSystem() *MacroSystem {
	return &MacroSystem{
		current: core.MacroState{Smoothness: 0.5, Responsiveness: 0.5},
		target:  core.MacroState{Smoothness: 0.5, Responsiveness: 0.5},
	}
}

func (m *MacroSystem) SetTarget(t core.MacroState) { m.target = t }

func (m *MacroSystem) Current() core.MacroState { return m.current }

// Advance exponentially blends current toward target, one time constant per
// knob (spec §4.H.5 "each macro interpolates toward target with time
// constant 150-400 ms").
func (m *MacroSystem) Advance(dt float32) core.MacroState {
	blend := func(cur, tgt, tau float32) float32 {
		alpha := dt / (tau + dt)
		return cur + (tgt-cur)*alpha
	}
	m.current.Intensity = blend(m.current.Intensity, m.target.Intensity, macroTimeConstants.Intensity)
	m.current.Chaos = blend(m.current.Chaos, m.target.Chaos, macroTimeConstants.Chaos)
	m.current.Smoothness = blend(m.current.Smoothness, m.target.Smoothness, macroTimeConstants.Smoothness)
	m.current.Responsiveness = blend(m.current.Responsiveness, m.target.Responsiveness, macroTimeConstants.Responsiveness)
	m.current.Density = blend(m.current.Density, m.target.Density, macroTimeConstants.Density)
	m.current.Energy = blend(m.current.Energy, m.target.Energy, macroTimeConstants.Energy)
	m.current.Coherence = blend(m.current.Coherence, m.target.Coherence, macroTimeConstants.Coherence)
	m.current.Complexity = blend(m.current.Complexity, m.target.Complexity, macroTimeConstants.Complexity)
	return m.current
}

// DerivedInfluences are the closed-form values §4.H.5 says multiply into the
// choreographer/personality/spatial stages.
type DerivedInfluences struct {
	GestureWeight   map[core.GestureKind]float32
	PersonalityWeight map[core.PersonalityKind]float32
	FormationBias   float32
	SpatialSpread   float32
}

// Derive computes §4.H.5's closed-form influence formulas from the current
// macro state.
func (m *MacroSystem) Derive() DerivedInfluences {
	s := m.current
	gw := map[core.GestureKind]float32{
		core.GestureSwell:   s.Smoothness * (1 - s.Energy),
		core.GestureAttack:  s.Energy * s.Responsiveness,
		core.GestureRelease: (1 - s.Energy) * s.Smoothness,
		core.GestureSustain: s.Coherence * (1 - s.Chaos),
		core.GestureAccent:  s.Energy * s.Responsiveness * (1 - s.Smoothness),
		core.GestureBreath:  s.Smoothness * s.Coherence,
	}
	pw := make(map[core.PersonalityKind]float32, core.PersonalityCount())
	table := core.DefaultPersonalityTable()
	for i, t := range table {
		pw[core.PersonalityKind(i)] = t.Energy*s.Energy + t.Smoothness*s.Smoothness + (1-t.Predictability)*s.Chaos + t.Independence*(1-s.Coherence)
	}
	return DerivedInfluences{
		GestureWeight:     gw,
		PersonalityWeight: pw,
		FormationBias:     s.Chaos*0.4 + (1-s.Coherence)*0.4 + s.Complexity*0.2,
		SpatialSpread:     s.Density*0.4 + (1-s.Coherence)*0.3 + s.Chaos*0.3,
	}
}
