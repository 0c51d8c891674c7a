package mpm

import (
	"encoding/json"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/flowfield/mpm/internal/config"
	"github.com/flowfield/mpm/internal/core"
	"github.com/flowfield/mpm/internal/gpu"
	"github.com/flowfield/mpm/internal/groove"
	"github.com/flowfield/mpm/internal/kinetic"
)

// PlaybackClock tracks seconds elapsed since the engine started, the time
// base groove.Engine.OnBeat and groove.Timer.OnBeat both key off.
type PlaybackClock struct {
	Elapsed float64
}

// CameraResource is the host-owned camera state the kinetic layer reads.
// Position/NearPlane/FarPlane are set by whatever owns the actual camera;
// StereoBalance/TonalRegister/AccentPulse are derived from audio each frame
// by kineticSystem, since spec §4.H.3 ties them to the audio signal rather
// than to camera geometry.
type CameraResource struct {
	Position mgl32.Vec3
	State    kinetic.CameraState
}

// DriveState is the per-frame output the solver module uploads to the GPU's
// drive buffer (spec §4.H "gesture and role drive").
type DriveState struct {
	Records []gpu.ParticleDrive
}

// KineticModule wires groove/structure/timing analysis and the kinetic
// mapper into PreUpdate, so their output (roles, personality, drive
// records) is ready before FieldsModule and SolverModule run in Update and
// PostUpdate.
type KineticModule struct {
	MaxParticles int
	Seed         int64
}

func (m KineticModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(kineticSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
	cmd.AddResources(
		&PlaybackClock{},
		&CameraResource{},
		&DriveState{},
		groove.NewEngine(),
		groove.NewStructureAnalyzer(),
		groove.NewTimer(),
		kinetic.NewMapper(m.MaxParticles, m.Seed),
	)
}

func kineticSystem(
	t *Time,
	clock *PlaybackClock,
	af *AudioFeaturesState,
	grooveEngine *groove.Engine,
	structAnalyzer *groove.StructureAnalyzer,
	timer *groove.Timer,
	mapper *kinetic.Mapper,
	camera *CameraResource,
	cfg *config.Resolved,
	pool *core.Pool,
	drive *DriveState,
) {
	dt := float32(t.Dt)
	clock.Elapsed += t.Dt
	now := float32(clock.Elapsed)

	camera.State.StereoBalance = af.Features.StereoBalance
	camera.State.TonalRegister = clampF(af.Features.Treble-af.Features.Bass, -1, 1)
	if af.BeatDetected && af.Features.BeatIntensity > 0.6 {
		camera.State.AccentPulse = 1
	} else {
		camera.State.AccentPulse = 0
	}

	if af.BeatDetected {
		grooveEngine.OnBeat(clock.Elapsed)
		timer.OnBeat(now, af.Features.BeatIntensity > 0.7)
	}

	fv := groove.FeatureVector{
		BassEnergy:     af.Features.Bass,
		TreblePresence: af.Features.Treble,
		Flux:           af.Features.SpectralFlux,
		OnsetDensity:   af.Features.OnsetEnergy,
		HarmonicRatio:  af.Features.HarmonicRatio,
		DynamicRange:   af.Features.Peak - af.Features.RMS,
	}
	structState := structAnalyzer.Advance(fv, af.Features.RMS, dt)
	timingState := timer.State(now)
	grooveState := grooveEngine.State()

	gridDiag := mgl32.Vec3{core.DefaultGridSize, core.DefaultGridSize, core.DefaultGridSize}.Len()

	for _, ev := range mapper.Recorder.Advance(dt) {
		if ev.Type != kinetic.EventMacroChange {
			continue
		}
		var payload kinetic.MacroChangePayload
		if err := json.Unmarshal(ev.Payload, &payload); err == nil {
			mapper.Macros.SetTarget(payload.Macro)
		}
	}

	drive.Records = mapper.Advance(pool.Particles, kinetic.FrameInputs{
		Audio:             af.Features,
		Groove:            grooveState,
		Timing:            timingState,
		Struct:            structState,
		Camera:            camera.State,
		CameraPos:         camera.Position,
		GridDiag:          gridDiag,
		AutoAdapt:         cfg.AutoAdapt,
		Dt:                dt,
		ForcedPersonality: cfg.ForcedPersonality,
		ForcedFormation:   cfg.ForcedFormation,
	})
}

func clampF(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
