package kinetic

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/flowfield/mpm/internal/core"
	"github.com/flowfield/mpm/internal/gpu"
)

// Mapper runs the spec §4.H pipeline once per frame and produces the
// per-particle drive records the solver's G2P kernel consumes. It owns
// every stateful sub-component; the frame orchestrator calls Advance once
// and reads Drive() afterward.
type Mapper struct {
	Gestures      GestureState
	Choreographer *Choreographer
	Composer      *Composer
	Personality   *PersonalityEngine
	Macros        *MacroSystem
	Recorder      *Recorder

	prevTension float32
	sustainedT  float32
}

func NewMapper(maxParticles int, seed int64) *Mapper {
	return &Mapper{
		Choreographer: NewChoreographer(maxParticles, seed),
		Composer:      NewComposer(maxParticles),
		Personality:   NewPersonalityEngine(seed),
		Macros:        NewMacroSystem(),
		Recorder:      NewRecorder(),
	}
}

// FrameInputs bundles everything the mapper reads in one Advance call.
type FrameInputs struct {
	Audio     core.AudioFeatures
	Groove    core.GrooveState
	Timing    core.TimingState
	Struct    core.StructureState
	Camera    CameraState
	CameraPos mgl32.Vec3
	GridDiag  float32
	AutoAdapt bool
	Dt        float32

	// ForcedPersonality/ForcedFormation pin the global personality crossfade
	// and the choreographer's formation respectively, overriding the
	// section-driven defaults (spec §6's host/preset overrides). Nil means
	// no override.
	ForcedPersonality *core.PersonalityKind
	ForcedFormation   *core.Formation
}

// Advance runs steps 1-5 of spec §4.H against particles in place (roles and
// personality fields are written directly onto the particle pool) and
// returns per-particle gesture-force/macro-scale drive records in the same
// order as particles, ready for gpu.Buffers.UploadDrive.
func (m *Mapper) Advance(particles []core.Particle, in FrameInputs) []gpu.ParticleDrive {
	tensionSlope := (in.Struct.Tension - m.prevTension) / maxF(in.Dt, 1e-4)
	m.prevTension = in.Struct.Tension
	if in.Audio.RMS > 0.5 {
		m.sustainedT += in.Dt
	} else {
		m.sustainedT = 0
	}

	gestures := m.Gestures.Advance(RuleInputs{
		Audio:         in.Audio,
		Timing:        in.Timing,
		Groove:        in.Groove,
		Tension:       in.Struct.Tension,
		TensionSlope:  tensionSlope,
		SustainedSecs: m.sustainedT,
	}, in.Dt)
	for _, g := range gestures {
		m.Recorder.Record(EventGestureTrigger, GestureTriggerPayload{Kind: g.Kind, Intensity: g.Intensity})
	}

	m.Choreographer.AssignRoles(particles, in.CameraPos, in.GridDiag, in.Dt)
	m.Choreographer.ForceFormation(in.ForcedFormation)
	fromForm, toForm, formBlend := m.Choreographer.SelectFormation(in.Struct.Section, in.Dt)

	macros := m.Macros.Advance(in.Dt)
	influences := m.Macros.Derive()

	if in.ForcedPersonality != nil {
		m.Personality.SetGlobalTarget(*in.ForcedPersonality, true)
	} else {
		m.Personality.SetGlobalTarget(core.DefaultPersonalityForSection(in.Struct.Section), in.AutoAdapt)
	}
	m.Personality.Advance(in.Dt)

	drives := make([]gpu.ParticleDrive, len(particles))
	gestureForce := sumGestureForce(gestures, influences)

	for i := range particles {
		p := &particles[i]
		if p.Mass <= 0 {
			continue
		}

		primary, secondary, blend := m.Personality.Assign(AssignmentInputs{
			Role: p.Role, Audio: in.Audio, GlobalWeight: 0.3, RoleWeight: 0.3, AudioWeight: 0.3, RandWeight: 0.1,
		})
		p.PersonalityPrimary = primary
		p.PersonalitySecondary = secondary
		p.PersonalityBlend = blend

		// Grid-space Z is already camera-facing depth under the fixed
		// grid->world transform (core.GridToWorld compresses Z, not X/Y).
		depth := clampF(p.Position.Z()/maxF(in.GridDiag, 1e-4), 0, 1)
		mod := m.Composer.Compute(i, depth, in.Camera, in.Dt)

		target := FormationTarget(toForm, mgl32.Vec3{in.GridDiag / 2, in.GridDiag / 2, in.GridDiag / 2}, in.GridDiag*0.3, i, len(particles))
		fromTarget := FormationTarget(fromForm, mgl32.Vec3{in.GridDiag / 2, in.GridDiag / 2, in.GridDiag / 2}, in.GridDiag*0.3, i, len(particles))
		blended := fromTarget.Mul(1 - formBlend).Add(target.Mul(formBlend))
		formationForce := blended.Sub(p.Position).Mul(0.5 * mod.ForceMul * influences.FormationBias)

		total := gestureForce.Add(formationForce).Add(mgl32.Vec3{mod.ExtraForce[0], mod.ExtraForce[1], mod.ExtraForce[2]})

		drives[i] = gpu.ParticleDrive{
			Role:                 uint32(p.Role),
			PersonalityPrimary:   uint32(primary),
			PersonalitySecondary: uint32(secondary),
			PersonalityBlend:     blend,
			GestureForce:         total,
			MacroForceScale:      macros.Intensity * mod.ForceMul,
		}
	}

	return drives
}

func sumGestureForce(gestures []core.ActiveGesture, influences DerivedInfluences) mgl32.Vec3 {
	var force mgl32.Vec3
	for _, g := range gestures {
		v := EnvelopeValue(g) * influences.GestureWeight[g.Kind]
		switch g.Kind {
		case core.GestureAttack, core.GestureAccent:
			force = force.Add(mgl32.Vec3{0, v, 0})
		case core.GestureSwell:
			force = force.Add(mgl32.Vec3{0, v * 0.5, 0})
		case core.GestureRelease:
			force = force.Add(mgl32.Vec3{0, -v * 0.3, 0})
		}
	}
	return force
}

func maxF(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
