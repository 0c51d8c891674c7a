package mpm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowfield/mpm/internal/audio"
	"github.com/flowfield/mpm/internal/config"
	"github.com/flowfield/mpm/internal/core"
)

func sine(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(math.Sin(2 * math.Pi * 110 * float64(i) / 44100))
	}
	return out
}

func TestAudioAnalysisSystemDrainsRingBuffer(t *testing.T) {
	input := NewAudioInput(44100)
	analyzer := audio.NewAnalyzer(44100)
	state := &AudioFeaturesState{}
	cfg := &config.Resolved{MacroTargets: core.MacroState{Smoothness: 0.5, Responsiveness: 1}}

	samples := sine(audioDrainChunk)
	input.PushSamples(samples, samples)

	audioAnalysisSystem(input, analyzer, state, cfg)

	assert.Equal(t, 0, input.Left.Available(), "a full chunk should drain completely")
}

func TestAudioAnalysisSystemNoopOnEmptyBuffer(t *testing.T) {
	input := NewAudioInput(44100)
	analyzer := audio.NewAnalyzer(44100)
	state := &AudioFeaturesState{Features: core.AudioFeatures{RMS: 0.42}}
	cfg := &config.Resolved{}

	audioAnalysisSystem(input, analyzer, state, cfg)

	assert.Equal(t, float32(0.42), state.Features.RMS, "nothing to drain should leave state untouched")
}

func TestAudioAnalysisSystemCapsDrainAtChunkSize(t *testing.T) {
	// Big enough ring capacity that pushing 3 chunks doesn't wrap and
	// overwrite the tail the way RingBuffer does when full.
	input := NewAudioInput(64100 * 5)
	analyzer := audio.NewAnalyzer(44100)
	state := &AudioFeaturesState{}
	cfg := &config.Resolved{}

	samples := sine(audioDrainChunk * 3)
	input.PushSamples(samples, samples)

	audioAnalysisSystem(input, analyzer, state, cfg)

	assert.Equal(t, audioDrainChunk*2, input.Left.Available(), "only one chunk should drain per frame")
}
