package fields

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/flowfield/mpm/internal/core"
)

// Pattern timing constants (spec §3.4/§4.D). Burst/Explosion reuse Rate as
// a quantity rather than a frequency (Explosion scaled by
// explosionMultiplier); Pulse keeps Rate as its firing frequency and emits
// pulseBatchSize particles per firing; Fountain/Stream
// reshape Continuous's rate curve over Emitter.elapsed instead of changing
// how particles are sampled per emission.
const (
	pulseBatchSize      = 12
	explosionMultiplier = 8.0
	fountainPeriod      = 1.5 // seconds per rise/fall cycle
	streamRampDuration  = 2.0 // seconds to reach full rate
)

// Spawned is one particle's initial state, staged by an emitter for the
// frame's coalesced upload (spec §4.D).
type Spawned struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Material uint8
	Lifetime float32
	Color    mgl32.Vec3
}

// Tick advances the emitter by frameDt and returns zero or more particles to
// spawn this frame. Continuous is the classic accumulator-based emission
// loop (scene/particles.go's ParticleEmitter); the other five patterns of
// spec §3.4 reshape that same accumulator rather than replacing it, so they
// all still respect Rate as their base cadence.
func (e *Emitter) Tick(frameDt float32, rng *rand.Rand) []Spawned {
	if e.Rate <= 0 {
		return nil
	}
	e.elapsed += frameDt

	switch e.Pattern {
	case PatternBurst:
		return e.tickOneShot(rng, 1.0)
	case PatternExplosion:
		return e.tickOneShot(rng, explosionMultiplier)
	case PatternPulse:
		return e.tickBatched(frameDt, rng, pulseBatchSize)
	case PatternFountain:
		// Rises and falls between 0 and 2x Rate so the average over a full
		// cycle matches Continuous at the same Rate.
		envelope := 1 - float32(math.Cos(2*math.Pi*float64(e.elapsed)/fountainPeriod))
		return e.tickContinuous(frameDt*envelope, rng)
	case PatternStream:
		ramp := float32(1)
		if e.elapsed < streamRampDuration {
			ramp = e.elapsed / streamRampDuration
		}
		return e.tickContinuous(frameDt*ramp, rng)
	default: // Continuous
		return e.tickContinuous(frameDt, rng)
	}
}

func (e *Emitter) tickContinuous(effectiveDt float32, rng *rand.Rand) []Spawned {
	e.emissionAccumulator += e.Rate * effectiveDt
	var out []Spawned
	for e.emissionAccumulator >= 1 {
		e.emissionAccumulator--
		out = append(out, e.sampleOne(rng))
	}
	return out
}

// tickBatched fires a fixed-size batch each time the Rate-driven accumulator
// crosses a threshold, instead of Continuous's one particle per crossing.
func (e *Emitter) tickBatched(frameDt float32, rng *rand.Rand, batch int) []Spawned {
	e.emissionAccumulator += e.Rate * frameDt
	var out []Spawned
	for e.emissionAccumulator >= 1 {
		e.emissionAccumulator--
		for i := 0; i < batch; i++ {
			out = append(out, e.sampleOne(rng))
		}
	}
	return out
}

// tickOneShot fires Rate*multiplier particles the first time it's called and
// never again, for Burst/Explosion's single-detonation emission.
func (e *Emitter) tickOneShot(rng *rand.Rand, multiplier float32) []Spawned {
	if e.fired {
		return nil
	}
	e.fired = true
	count := int(e.Rate * multiplier)
	if count < 1 {
		count = 1
	}
	out := make([]Spawned, count)
	for i := range out {
		out[i] = e.sampleOne(rng)
	}
	return out
}

func (e *Emitter) sampleOne(rng *rand.Rand) Spawned {
	pos, outward := e.samplePosition(rng)
	vel := e.sampleVelocity(outward, rng)
	return Spawned{
		Position: pos,
		Velocity: vel,
		Material: e.MaterialType,
		Lifetime: e.Lifetime,
		Color:    e.ColorStart,
	}
}

// samplePosition returns a spawn point and, for shapes with a natural
// surface normal, the outward direction used as the velocity mean.
func (e *Emitter) samplePosition(rng *rand.Rand) (pos, outward mgl32.Vec3) {
	switch e.Kind {
	case EmitterPoint:
		return e.Position, e.Direction

	case EmitterSphere:
		dir := randomUnitVector(rng)
		return e.Position.Add(dir.Mul(1.0)), dir

	case EmitterDisc:
		theta := float32(rng.Float64() * 2 * math.Pi)
		r := float32(math.Sqrt(rng.Float64())) // cosine-weighted via sqrt(u)
		local := mgl32.Vec3{r * float32(math.Cos(float64(theta))), 0, r * float32(math.Sin(float64(theta)))}
		return e.Position.Add(local), e.Direction

	case EmitterBox:
		half := float32(1.0)
		local := mgl32.Vec3{
			(rng.Float32()*2 - 1) * half,
			(rng.Float32()*2 - 1) * half,
			(rng.Float32()*2 - 1) * half,
		}
		return e.Position.Add(local), e.Direction

	case EmitterCone:
		spread := float32(0.35) // half-angle radians, matches a narrow default cone
		dir := jitterDirection(e.Direction, spread, rng)
		return e.Position, dir

	case EmitterRing:
		theta := float32(rng.Float64() * 2 * math.Pi)
		local := mgl32.Vec3{float32(math.Cos(float64(theta))), 0, float32(math.Sin(float64(theta)))}
		return e.Position.Add(local), local

	default:
		return e.Position, e.Direction
	}
}

func (e *Emitter) sampleVelocity(outward mgl32.Vec3, rng *rand.Rand) mgl32.Vec3 {
	mean := outward.Normalize().Mul(e.Velocity)
	spread := mgl32.Vec3{
		float32(rng.NormFloat64()) * e.VelocitySpread,
		float32(rng.NormFloat64()) * e.VelocitySpread,
		float32(rng.NormFloat64()) * e.VelocitySpread,
	}
	return mean.Add(spread)
}

func randomUnitVector(rng *rand.Rand) mgl32.Vec3 {
	z := rng.Float32()*2 - 1
	theta := float32(rng.Float64() * 2 * math.Pi)
	r := float32(math.Sqrt(float64(1 - z*z)))
	return mgl32.Vec3{r * float32(math.Cos(float64(theta))), z, r * float32(math.Sin(float64(theta)))}
}

func jitterDirection(mean mgl32.Vec3, halfAngle float32, rng *rand.Rand) mgl32.Vec3 {
	n := mean.Normalize()
	perturb := randomUnitVector(rng).Mul(halfAngle)
	return n.Add(perturb).Normalize()
}

// ToParticle materializes a Spawned into the pool's flat layout, applying
// the material table's base density as the particle mass (spec §4.D
// "Assign materialType, lifetime, age=0...").
func (s Spawned) ToParticle(materials []core.MaterialParams) core.Particle {
	mass := float32(1.0)
	if int(s.Material) < len(materials) {
		mass = materials[s.Material].Density0
	}
	return core.Particle{
		Position:     s.Position,
		Velocity:     s.Velocity,
		Mass:         mass,
		Direction:    s.Velocity.Normalize(),
		Color:        s.Color,
		MaterialType: s.Material,
		Lifetime:     s.Lifetime,
	}
}
