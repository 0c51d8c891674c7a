// Package kinetic implements the audio-reactive mapping layer (spec §4.H):
// gesture interpretation, ensemble choreography, spatial composition,
// personality assignment, the macro system, and sequence
// recording/playback. Grounded on mod_flying_camera.go/mod_vox_rt.go's
// stateful-system-over-ECS-query idiom (a plain Go struct owning
// accumulated state, advanced once per frame by a method call) generalized
// from camera/voxel state to gesture/role/personality state, since the
// particle pool here is a flat CPU mirror rather than individual ECS
// entities (spec §4.A: particle storage is GPU-resident, not per-entity).
package kinetic

import (
	"math"

	"github.com/flowfield/mpm/internal/core"
)

const maxActiveGestures = 3

// gestureRule is one row of the spec §4.H.1 rule table: a predicate over the
// audio/timing/groove state plus the gesture it triggers.
type gestureRule struct {
	kind    core.GestureKind
	matches func(in RuleInputs) (bool, float32) // returns (fires, intensity)
}

// RuleInputs bundles everything the gesture rule table reads (spec §4.H.1).
type RuleInputs struct {
	Audio   core.AudioFeatures
	Timing  core.TimingState
	Groove  core.GrooveState
	Tension float32 // current structure tension, for slope tracking

	TensionSlope  float32 // computed by the caller across frames
	SustainedSecs float32 // seconds energy has stayed above 0.5
}

var rules = []gestureRule{
	{core.GestureAttack, func(in RuleInputs) (bool, float32) {
		return in.Audio.OnsetEnergy > 0.7 && in.Audio.BeatIntensity > 0, in.Audio.OnsetEnergy
	}},
	{core.GestureSwell, func(in RuleInputs) (bool, float32) {
		window := AnticipationWindowMs(core.GestureSwell)
		fires := in.TensionSlope > 0 && in.Timing.NextDownbeatInMs < window
		return fires, clamp01(in.Tension)
	}},
	{core.GestureRelease, func(in RuleInputs) (bool, float32) {
		return in.TensionSlope < -0.05, clamp01(-in.TensionSlope)
	}},
	{core.GestureSustain, func(in RuleInputs) (bool, float32) {
		return in.SustainedSecs >= 2.0, clamp01(in.Audio.RMS)
	}},
	{core.GestureAccent, func(in RuleInputs) (bool, float32) {
		fires := in.Timing.NextDownbeatInMs < 200 && in.Groove.RhythmConfidence > 0.6
		return fires, in.Groove.RhythmConfidence
	}},
	{core.GestureBreath, func(in RuleInputs) (bool, float32) {
		fires := in.Groove.RhythmConfidence > 0.6 && in.Audio.SpectralFlux < 0.1
		return fires, clamp01(1 - in.Audio.SpectralFlux)
	}},
}

// AnticipationWindowMs returns the gesture's predictive lookahead window in
// milliseconds (spec §4.G). Gestures without a window fire reactively only.
func AnticipationWindowMs(kind core.GestureKind) float32 {
	switch kind {
	case core.GestureSwell:
		return 400
	case core.GestureAccent:
		return 200
	case core.GestureBreath:
		return 300
	case core.GestureAttack:
		return 50
	default:
		return 0
	}
}

// GestureState tracks up to maxActiveGestures simultaneously active
// gestures, evicting the lowest-weight one when a new gesture would exceed
// the cap (spec §4.H.1).
type GestureState struct {
	active []core.ActiveGesture
	clock  float32
}

// Advance evaluates the rule table against in, ages existing gestures,
// applies envelopes, and returns the current active set. If
// tempoStable==false or rhythmConfidence<0.4 the predictive gestures
// (Swell, Accent) are suppressed per spec §4.G failure semantics.
func (g *GestureState) Advance(in RuleInputs, dt float32) []core.ActiveGesture {
	g.clock += dt

	predictiveOK := in.Timing.TempoStable && in.Groove.RhythmConfidence >= 0.4

	for _, r := range rules {
		if !predictiveOK && (r.kind == core.GestureSwell || r.kind == core.GestureAccent) {
			continue
		}
		fires, intensity := r.matches(in)
		if !fires {
			continue
		}
		g.trigger(r.kind, intensity)
	}

	out := g.active[:0]
	for i := range g.active {
		ag := &g.active[i]
		ag.Phase = envelopePhase(*ag, g.clock)
		ag.Weight *= decayFor(ag.Kind, dt)
		if ag.Phase < 1 || ag.Kind == core.GestureSustain {
			out = append(out, *ag)
		}
	}
	g.active = out
	return g.active
}

func (g *GestureState) trigger(kind core.GestureKind, intensity float32) {
	for i := range g.active {
		if g.active[i].Kind == kind {
			g.active[i].Intensity = intensity
			g.active[i].Weight = 1
			g.active[i].StartTime = g.clock
			return
		}
	}
	ng := core.ActiveGesture{
		Kind:      kind,
		Intensity: intensity,
		Phase:     0,
		StartTime: g.clock,
		Duration:  durationFor(kind),
		Weight:    1,
	}
	if len(g.active) < maxActiveGestures {
		g.active = append(g.active, ng)
		return
	}
	// Evict the lowest-weight gesture (spec §4.H.1 "lowest-weight is evicted").
	minIdx := 0
	for i := 1; i < len(g.active); i++ {
		if g.active[i].Weight < g.active[minIdx].Weight {
			minIdx = i
		}
	}
	if ng.Weight >= g.active[minIdx].Weight {
		g.active[minIdx] = ng
	}
}

func durationFor(kind core.GestureKind) float32 {
	switch kind {
	case core.GestureAttack:
		return 0.15
	case core.GestureSwell:
		return 0.6
	case core.GestureRelease:
		return 0.8
	case core.GestureSustain:
		return 2.0
	case core.GestureAccent:
		return 0.1
	case core.GestureBreath:
		return 1.2
	default:
		return 0.5
	}
}

// decayFor is the per-second weight-decay factor, distinct per primitive so
// sharp gestures (Attack, Accent) fall off faster than sustained ones.
func decayFor(kind core.GestureKind, dt float32) float32 {
	var halfLife float32
	switch kind {
	case core.GestureAttack, core.GestureAccent:
		halfLife = 0.2
	case core.GestureSwell, core.GestureBreath:
		halfLife = 0.6
	case core.GestureRelease:
		halfLife = 0.9
	case core.GestureSustain:
		halfLife = 2.5
	}
	if halfLife <= 0 {
		return 1
	}
	return float32(math.Exp2(float64(-dt / halfLife)))
}

// envelopePhase advances phase in [0,1] over Duration using each
// primitive's characteristic envelope shape (spec §4.H.1).
func envelopePhase(ag core.ActiveGesture, now float32) float32 {
	elapsed := now - ag.StartTime
	if ag.Duration <= 0 {
		return 1
	}
	return clamp01(elapsed / ag.Duration)
}

// EnvelopeValue evaluates the shaped intensity curve for a gesture at its
// current phase (spec §4.H.1's per-primitive fade shapes).
func EnvelopeValue(ag core.ActiveGesture) float32 {
	p := ag.Phase
	switch ag.Kind {
	case core.GestureAttack:
		return ag.Intensity * expDecay(p, 4)
	case core.GestureSwell:
		return ag.Intensity * smoothstepPulse(p)
	case core.GestureRelease:
		return ag.Intensity * expDecay(p, 1.5)
	case core.GestureSustain:
		return ag.Intensity
	case core.GestureAccent:
		return ag.Intensity * sharpSpike(p)
	case core.GestureBreath:
		return ag.Intensity * sinePulse(p)
	default:
		return ag.Intensity
	}
}

func expDecay(p, rate float32) float32  { return float32(math.Exp(float64(-p * rate))) }
func sharpSpike(p float32) float32      { return float32(math.Exp(float64(-p * 10))) }
func smoothstepPulse(p float32) float32 { return smoothstep(0, 0.3, p) * (1 - smoothstep(0.3, 1, p)) }
func sinePulse(p float32) float32       { return 0.5 - 0.5*float32(math.Cos(float64(p)*2*math.Pi)) }

func smoothstep(edge0, edge1, x float32) float32 {
	t := clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
