package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sineWave(freq float64, sampleRate, n int, amp float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = amp * float32(math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return out
}

func TestAnalyzer_SilenceProducesZeroFeatures(t *testing.T) {
	a := NewAnalyzer(44100)
	silence := make([]float32, fftSize)
	feats, beat := a.Process(silence, silence, 0.5, 1.0)

	assert.False(t, beat)
	assert.Zero(t, feats.RMS)
	assert.Zero(t, feats.Bass)
}

func TestAnalyzer_BassTonePushesBassRatioUp(t *testing.T) {
	a := NewAnalyzer(44100)
	tone := sineWave(100, 44100, fftSize*4, 0.8)

	var bass, treble float32
	chunk := fftSize
	for i := 0; i+chunk <= len(tone); i += chunk {
		f, _ := a.Process(tone[i:i+chunk], tone[i:i+chunk], 0, 1.0)
		bass, treble = f.Bass, f.Treble
	}

	assert.Greater(t, bass, treble)
}

func TestAnalyzer_OutputsStableAcrossIdenticalInputs(t *testing.T) {
	tone := sineWave(440, 44100, fftSize, 0.5)

	a1 := NewAnalyzer(44100)
	f1, b1 := a1.Process(tone, tone, 0.5, 1.0)

	a2 := NewAnalyzer(44100)
	f2, b2 := a2.Process(tone, tone, 0.5, 1.0)

	require.Equal(t, b1, b2)
	assert.Equal(t, f1, f2)
}

func TestAnalyzer_TolatesVariableChunkSizes(t *testing.T) {
	a := NewAnalyzer(44100)
	tone := sineWave(440, 44100, fftSize*3, 0.5)

	sizes := []int{97, 512, 1, 4000, 33}
	pos := 0
	for _, sz := range sizes {
		end := pos + sz
		if end > len(tone) {
			end = len(tone)
		}
		assert.NotPanics(t, func() {
			a.Process(tone[pos:end], tone[pos:end], 0.5, 1.0)
		})
		pos = end
	}
}

func TestAnalyzer_StereoBalanceSignMatchesLouderChannel(t *testing.T) {
	a := NewAnalyzer(44100)
	loud := sineWave(440, 44100, fftSize, 0.9)
	quiet := sineWave(440, 44100, fftSize, 0.1)

	feats, _ := a.Process(quiet, loud, 0.5, 1.0)
	assert.Greater(t, feats.StereoBalance, float32(0))
}
