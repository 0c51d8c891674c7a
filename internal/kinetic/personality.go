package kinetic

import (
	"math/rand"

	"github.com/flowfield/mpm/internal/core"
)

const globalPersonalityTransitionSeconds = 2.0

// PersonalityEngine assigns per-particle primary/secondary personality
// blends and tracks a global dominant personality crossfade (spec §4.H.4).
type PersonalityEngine struct {
	table   []core.PersonalityTraits
	rng     *rand.Rand

	globalCurrent, globalTarget core.PersonalityKind
	globalBlendT                float32
}

func NewPersonalityEngine(seed int64) *PersonalityEngine {
	return &PersonalityEngine{
		table:       core.DefaultPersonalityTable(),
		rng:         rand.New(rand.NewSource(seed)),
		globalBlendT: 1,
	}
}

// AssignmentInputs is everything the weighted-pick formula reads for one
// particle (spec §4.H.4 "base + role*w_role + audioMatch*w_audio + globalInfluence + rand").
type AssignmentInputs struct {
	Role          core.Role
	Audio         core.AudioFeatures
	GlobalWeight  float32
	RoleWeight    float32
	AudioWeight   float32
	RandWeight    float32
}

// Assign picks the top-two personalities for one particle by the weighted
// score and returns (primary, secondary, blend) where blend in [0,1] is the
// primary's share.
func (e *PersonalityEngine) Assign(in AssignmentInputs) (primary, secondary uint8, blend float32) {
	scores := make([]float32, len(e.table))
	for i, t := range e.table {
		audioMatch := t.BassResponse*in.Audio.Bass + t.TrebleResponse*in.Audio.Treble + t.BeatResponse*in.Audio.BeatIntensity
		globalInfluence := float32(0)
		if core.PersonalityKind(i) == e.globalCurrent {
			globalInfluence = 1 - e.globalBlendT
		}
		if core.PersonalityKind(i) == e.globalTarget {
			globalInfluence += e.globalBlendT
		}
		scores[i] = t.Energy*0.2 +
			t.RoleAffinity[in.Role]*in.RoleWeight +
			audioMatch*in.AudioWeight +
			globalInfluence*in.GlobalWeight +
			e.rng.Float32()*in.RandWeight
	}

	best, second := 0, -1
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			second = best
			best = i
		} else if second == -1 || scores[i] > scores[second] {
			second = i
		}
	}
	if second == -1 {
		second = best
	}
	total := scores[best] + scores[second]
	b := float32(1)
	if total > 0 {
		b = scores[best] / total
	}
	return uint8(best), uint8(second), b
}

// SetGlobalTarget begins a 2s crossfade toward kind if autoAdapt allows it
// (spec §4.H.4 "Global personality transitions over 2s under autoAdapt").
func (e *PersonalityEngine) SetGlobalTarget(kind core.PersonalityKind, autoAdapt bool) {
	if !autoAdapt || kind == e.globalTarget {
		return
	}
	if e.globalBlendT >= 1 {
		e.globalCurrent = e.globalTarget
	}
	e.globalTarget = kind
	e.globalBlendT = 0
}

// Advance progresses the global crossfade by dt.
func (e *PersonalityEngine) Advance(dt float32) {
	if e.globalBlendT < 1 {
		e.globalBlendT += dt / globalPersonalityTransitionSeconds
		if e.globalBlendT >= 1 {
			e.globalBlendT = 1
			e.globalCurrent = e.globalTarget
		}
	}
}

func (e *PersonalityEngine) Table() []core.PersonalityTraits { return e.table }
