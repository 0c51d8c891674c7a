// Package groove implements the three stateful audio analyzers that sit
// between the raw per-frame AudioFeatures and the kinetic mapper: groove
// (swing/micro-timing/syncopation), structure (section classification), and
// predictive timing (spec §4.G). Grounded on the vscode-music-player
// extractor's onset-autocorrelation tempo estimate (generalized here from an
// offline whole-track pass into an online beat-timestamp tracker) and on
// gonum/stat for the descriptive statistics the spec calls for directly
// (std-dev of inter-onset intervals).
package groove

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/flowfield/mpm/internal/core"
)

const beatHistoryCapacity = 32

// Engine tracks beat timestamps and derives GrooveState (spec §4.G "Groove
// engine"). Beats are fed in as they're detected by the analyzer.
type Engine struct {
	beatTimes []float64 // seconds, ring buffer of up to beatHistoryCapacity
	cursor    int
	count     int

	smoothed core.GrooveState
}

func NewEngine() *Engine {
	return &Engine{beatTimes: make([]float64, beatHistoryCapacity)}
}

// OnBeat records a detected beat at time t (seconds since playback start)
// and recomputes the smoothed GrooveState.
func (e *Engine) OnBeat(t float64) {
	e.beatTimes[e.cursor] = t
	e.cursor = (e.cursor + 1) % beatHistoryCapacity
	if e.count < beatHistoryCapacity {
		e.count++
	}

	raw := e.computeRaw()
	const tau = 0.5 // spec §4.G "EMA (tau~=500ms)"
	const dt = 0.1  // approximate inter-beat update cadence; the blend only needs to be roughly tau-scaled
	alpha := float32(dt / (tau + dt))
	e.smoothed.SwingRatio += (raw.SwingRatio - e.smoothed.SwingRatio) * alpha
	e.smoothed.MicroTimingVariance += (raw.MicroTimingVariance - e.smoothed.MicroTimingVariance) * alpha
	e.smoothed.Syncopation += (raw.Syncopation - e.smoothed.Syncopation) * alpha
	e.smoothed.Density = raw.Density
	e.smoothed.RhythmConfidence += (raw.RhythmConfidence - e.smoothed.RhythmConfidence) * alpha
	e.smoothed.PatternPeriod = raw.PatternPeriod
}

// State returns the current smoothed GrooveState without requiring a new beat.
func (e *Engine) State() core.GrooveState { return e.smoothed }

func (e *Engine) orderedTimes() []float64 {
	if e.count == 0 {
		return nil
	}
	out := make([]float64, e.count)
	start := (e.cursor - e.count + beatHistoryCapacity) % beatHistoryCapacity
	for i := 0; i < e.count; i++ {
		out[i] = e.beatTimes[(start+i)%beatHistoryCapacity]
	}
	return out
}

func (e *Engine) computeRaw() core.GrooveState {
	times := e.orderedTimes()
	if len(times) < 3 {
		return core.GrooveState{}
	}

	iois := make([]float64, len(times)-1)
	for i := 1; i < len(times); i++ {
		iois[i-1] = times[i] - times[i-1]
	}

	var oddSum, evenSum float64
	var oddN, evenN int
	for i, ioi := range iois {
		if i%2 == 0 {
			evenSum += ioi
			evenN++
		} else {
			oddSum += ioi
			oddN++
		}
	}
	swing := float32(0.5)
	if oddN > 0 && evenN > 0 {
		oddMean, evenMean := oddSum/float64(oddN), evenSum/float64(evenN)
		if oddMean+evenMean > 0 {
			ratio := oddMean / (oddMean + evenMean)
			swing = float32(clamp01(ratio))
		}
	}

	mean := stat.Mean(iois, nil)
	variance := float32(0)
	if mean > 0 {
		variance = float32(stat.StdDev(iois, nil) / mean)
	}

	syncopation := syncopationFraction(times, mean)

	confidence := float32(1)
	if variance > 0 {
		confidence = float32(clamp01(1 - float64(variance)))
	}

	period := float32(mean)

	return core.GrooveState{
		SwingRatio:          swing,
		MicroTimingVariance: variance,
		Syncopation:         syncopation,
		Density:             float32(len(times)) / beatHistoryCapacity,
		RhythmConfidence:    confidence,
		PatternPeriod:       period,
	}
}

// syncopationFraction estimates the fraction of onsets falling away from the
// nearest integer multiple of the mean inter-onset interval (an off-beat
// subdivision proxy, spec §4.G).
func syncopationFraction(times []float64, meanIOI float64) float32 {
	if meanIOI <= 0 || len(times) < 2 {
		return 0
	}
	offBeat := 0
	base := times[0]
	for _, t := range times[1:] {
		phase := math.Mod(t-base, meanIOI) / meanIOI
		if phase > 0.15 && phase < 0.85 {
			offBeat++
		}
	}
	return float32(offBeat) / float32(len(times)-1)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
