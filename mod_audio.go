package mpm

import (
	"github.com/flowfield/mpm/internal/audio"
	"github.com/flowfield/mpm/internal/config"
	"github.com/flowfield/mpm/internal/core"
)

// AudioInput decouples the host's capture callback (whatever goroutine that
// runs on) from the once-per-frame analyzer drain, per spec §5's
// single-writer/single-reader ring buffer contract. PushSamples is the only
// method a host's audio thread should call.
type AudioInput struct {
	Left, Right *audio.RingBuffer
}

func NewAudioInput(sampleRate int) *AudioInput {
	// ~200ms of headroom at 44.1kHz so a scheduling hitch on the render
	// thread doesn't drop samples the analyzer hasn't drained yet.
	capacity := sampleRate / 5
	if capacity < 4096 {
		capacity = 4096
	}
	return &AudioInput{
		Left:  audio.NewRingBuffer(capacity),
		Right: audio.NewRingBuffer(capacity),
	}
}

func (a *AudioInput) PushSamples(left, right []float32) {
	a.Left.Push(left)
	a.Right.Push(right)
}

// AudioFeaturesState is the resource downstream systems read: the latest
// analyzer output plus whether this frame's window crossed the analyzer's
// beat threshold (spec §4.F).
type AudioFeaturesState struct {
	Features     core.AudioFeatures
	BeatDetected bool
}

// AudioModule wraps internal/audio's FFT analyzer into the frame loop. It
// runs in Prelude (after the Prelude systems of the modules installed before
// it, TimeModule and ConfigModule in NewEngine), so that by PreUpdate the
// groove/structure/timing chain sees this frame's features rather than last
// frame's.
type AudioModule struct {
	SampleRate int
}

func (m AudioModule) Install(app *App, cmd *Commands) {
	sampleRate := m.SampleRate
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	app.UseSystem(
		System(audioAnalysisSystem).
			InStage(Prelude).
			RunAlways(),
	)
	cmd.AddResources(
		NewAudioInput(sampleRate),
		&AudioFeaturesState{},
		audio.NewAnalyzer(sampleRate),
	)
}

// audioDrainChunk is how many queued samples the analyzer consumes per frame;
// the analyzer's internal window slides over whatever arrives, so this only
// bounds how much of a backlog one frame can absorb.
const audioDrainChunk = 4096

func audioAnalysisSystem(input *AudioInput, analyzer *audio.Analyzer, state *AudioFeaturesState, cfg *config.Resolved) {
	available := input.Left.Available()
	if available == 0 {
		return
	}
	n := available
	if n > audioDrainChunk {
		n = audioDrainChunk
	}
	left := input.Left.Drain(n)
	right := input.Right.Drain(n)

	smoothness := cfg.MacroTargets.Smoothness
	beatSensitivity := cfg.MacroTargets.Responsiveness
	if beatSensitivity <= 0 {
		beatSensitivity = 1
	}

	features, beat := analyzer.Process(left, right, smoothness, beatSensitivity)
	state.Features = features
	state.BeatDetected = beat
}
