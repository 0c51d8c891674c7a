package groove

import "github.com/flowfield/mpm/internal/core"

const maxPredictedBeats = 8

// tempoStabilityWindow is how many consecutive beats must agree on tempo
// (within tempoStabilityTolerance) before TempoStable flips true.
const tempoStabilityWindow = 4
const tempoStabilityTolerance = 0.08 // fractional BPM deviation allowed

// AnticipationWindows are the per-gesture lookahead windows predictive
// timing opens ahead of the predicted event (spec §4.G).
var AnticipationWindows = map[core.GestureKind]float32{
	core.GestureSwell:  0.400,
	core.GestureAccent: 0.200,
	core.GestureBreath: 0.300,
	core.GestureAttack: 0.050,
}

// Timer projects beats forward from the groove engine's observed IOIs
// (spec §4.G "Predictive timing"). It assumes 4-beat measures aligned to the
// latest strong beat for downbeat prediction.
type Timer struct {
	lastBeatTime   float32
	recentPeriods  []float32
	beatsSinceDown int
	bpm            float32
}

func NewTimer() *Timer {
	return &Timer{bpm: 120}
}

// OnBeat records a beat at time t (seconds) and whether the host flagged it
// as a downbeat-aligned strong beat (the caller decides this from onset
// strength; the timer itself just counts beats-since-downbeat otherwise).
func (t *Timer) OnBeat(now float32, strong bool) {
	if t.lastBeatTime > 0 {
		period := now - t.lastBeatTime
		if period > 0 {
			t.recentPeriods = append(t.recentPeriods, period)
			if len(t.recentPeriods) > tempoStabilityWindow {
				t.recentPeriods = t.recentPeriods[1:]
			}
			t.bpm = 60 / period
		}
	}
	t.lastBeatTime = now

	if strong {
		t.beatsSinceDown = 0
	} else {
		t.beatsSinceDown = (t.beatsSinceDown + 1) % 4
	}
}

func (t *Timer) tempoStable() bool {
	if len(t.recentPeriods) < tempoStabilityWindow {
		return false
	}
	mean := float32(0)
	for _, p := range t.recentPeriods {
		mean += p
	}
	mean /= float32(len(t.recentPeriods))
	if mean <= 0 {
		return false
	}
	for _, p := range t.recentPeriods {
		dev := (p - mean) / mean
		if dev < -tempoStabilityTolerance || dev > tempoStabilityTolerance {
			return false
		}
	}
	return true
}

// State projects the next 8 beats and the next downbeat from now.
func (t *Timer) State(now float32) core.TimingState {
	stable := t.tempoStable()
	period := float32(60) / t.bpm

	phase := float32(0)
	nextBeatIn := period
	if period > 0 && t.lastBeatTime > 0 {
		elapsed := now - t.lastBeatTime
		phase = clampF(elapsed/period, 0, 1)
		nextBeatIn = period - elapsed
		if nextBeatIn < 0 {
			nextBeatIn = 0
		}
	}

	beatsToDown := (4 - t.beatsSinceDown) % 4
	if beatsToDown == 0 {
		beatsToDown = 4
	}
	nextDownbeatIn := nextBeatIn + period*float32(beatsToDown-1)

	var predicted []float32
	if stable {
		predicted = make([]float32, maxPredictedBeats)
		for i := 0; i < maxPredictedBeats; i++ {
			predicted[i] = nextBeatIn + period*float32(i)
		}
	}

	return core.TimingState{
		BPM:              t.bpm,
		BeatPhase:        phase,
		NextBeatInMs:     nextBeatIn * 1000,
		NextDownbeatInMs: nextDownbeatIn * 1000,
		TempoStable:      stable,
		NextBeats:        predicted,
	}
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
