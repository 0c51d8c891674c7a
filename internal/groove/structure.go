package groove

import "github.com/flowfield/mpm/internal/core"

// sectionDominanceSeconds is the minimum time a section must keep winning
// before a transition is emitted (spec §4.G "dominates for >=1s").
const sectionDominanceSeconds = 1.0

// StructureAnalyzer scores the 8 section types from a rolling feature vector
// and emits transitions only once a candidate dominates for long enough to
// avoid flicker (spec §4.G "Structure analyzer").
type StructureAnalyzer struct {
	current      core.Section
	candidate    core.Section
	candidateFor float32
	phaseClock   float32

	energyEMA float32
	fluxMean  float32
	tension   float32
}

func NewStructureAnalyzer() *StructureAnalyzer {
	return &StructureAnalyzer{current: core.SectionIntro}
}

// FeatureVector is the (bassEnergy, treblePresence, flux, onsetDensity,
// harmonicRatio, dynamicRange) tuple spec §4.G scores sections from.
type FeatureVector struct {
	BassEnergy     float32
	TreblePresence float32
	Flux           float32
	OnsetDensity   float32
	HarmonicRatio  float32
	DynamicRange   float32
}

// Advance scores each section type against fv, updates the dominance timer,
// and returns the current (possibly just-transitioned) StructureState.
func (s *StructureAnalyzer) Advance(fv FeatureVector, rms float32, dt float32) core.StructureState {
	scores := scoreSections(fv)
	winner := argmax(scores)

	if winner == s.candidate {
		s.candidateFor += dt
	} else {
		s.candidate = winner
		s.candidateFor = dt
	}
	if s.candidate != s.current && s.candidateFor >= sectionDominanceSeconds {
		s.current = s.candidate
		s.phaseClock = 0
	}

	s.phaseClock += dt
	const alpha = 0.05
	s.energyEMA += (rms - s.energyEMA) * alpha
	centered := fv.Flux - s.fluxMean
	s.fluxMean += (fv.Flux - s.fluxMean) * alpha
	s.tension += (centered - s.tension) * alpha

	anticipation := float32(0)
	if s.current == core.SectionBuildUp {
		anticipation = s.tension * sectionPhaseEstimate(s.phaseClock)
	}

	return core.StructureState{
		Section:      s.current,
		SectionPhase: sectionPhaseEstimate(s.phaseClock),
		Energy:       s.energyEMA,
		Tension:      s.tension,
		Anticipation: anticipation,
	}
}

// sectionPhaseEstimate folds elapsed time in the current section into [0,1]
// against a nominal 16-second section length; sections don't carry an
// authoritative duration, so this is a presentation-only cue, not a
// scheduling input.
func sectionPhaseEstimate(elapsed float32) float32 {
	const nominal = 16.0
	phase := elapsed / nominal
	if phase > 1 {
		phase = 1
	}
	return phase
}

func scoreSections(fv FeatureVector) [8]float32 {
	var s [8]float32
	s[core.SectionIntro] = (1 - fv.OnsetDensity) * (1 - fv.BassEnergy)
	s[core.SectionVerse] = fv.HarmonicRatio * (1 - fv.Flux)
	s[core.SectionChorus] = fv.BassEnergy * fv.OnsetDensity
	s[core.SectionBridge] = fv.HarmonicRatio * fv.DynamicRange
	s[core.SectionBreakdown] = (1 - fv.BassEnergy) * fv.TreblePresence
	s[core.SectionBuildUp] = fv.Flux * fv.OnsetDensity
	s[core.SectionDrop] = fv.BassEnergy * fv.Flux
	s[core.SectionOutro] = (1 - fv.OnsetDensity) * fv.DynamicRange
	return s
}

func argmax(scores [8]float32) core.Section {
	best := core.Section(0)
	bestScore := scores[0]
	for i := 1; i < len(scores); i++ {
		if scores[i] > bestScore {
			bestScore = scores[i]
			best = core.Section(i)
		}
	}
	return best
}
