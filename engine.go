package mpm

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/flowfield/mpm/internal/config"
	"github.com/flowfield/mpm/internal/core"
)

// EngineOptions configures NewEngine's module wiring (spec §2's top-level
// assembly). ConfigPath may be empty, in which case the embedded defaults
// apply (see internal/config.Load).
type EngineOptions struct {
	ConfigPath string
	SampleRate int
	Seed       int64
}

// NewEngine wires every module in dependency order: audio analysis feeds
// the kinetic mapper, the kinetic mapper's drive records feed the solver,
// and fields/boundary both settle before the solver reads them in
// PostUpdate. Grounded on the teacher's app_builder.go UseModules chain,
// generalized from render/transform/hierarchy modules to the simulation
// pipeline this spec describes. The returned App has not been built yet;
// call Build (or Run) once the caller is ready to enter the frame loop.
func NewEngine(opts EngineOptions) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, NewConfigError("load engine config", err)
	}
	resolved, err := cfg.Resolve()
	if err != nil {
		return nil, NewConfigError("resolve engine config", err)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = 1
	}
	maxParticles := resolved.ParticleCount
	if maxParticles <= 0 {
		maxParticles = 32768
	}

	pool := initParticlePool(maxParticles, core.DefaultGridSize, seed)

	app := NewApp()
	app.UseModules(
		TimeModule{},
		LoggingModule{Prefix: "flowfield", Debug: false},
		ConfigModule{Initial: cfg, Resolved: resolved},
		AudioModule{SampleRate: opts.SampleRate},
		KineticModule{MaxParticles: maxParticles, Seed: seed},
		FieldsModule{Seed: seed},
		BoundaryModule{GridSize: core.DefaultGridSize},
		SolverModule{MaxParticles: maxParticles, Dims: core.CubeDims(core.DefaultGridSize), TrailLength: 64},
		PresetModule{},
	)

	cmd := app.Commands()
	cmd.AddResources(pool)

	return app, nil
}

// initParticlePool fills the first n slots with spec §3.1's init-time
// distribution: uniformly sampled within a sphere of radius 0.8*gridSize/2
// around the grid center, at rest, immortal, material 0 (Fluid).
func initParticlePool(n int, gridSize float32, seed int64) *core.Pool {
	pool := core.Allocate(n)
	rng := rand.New(rand.NewSource(seed))
	center := mgl32.Vec3{gridSize / 2, gridSize / 2, gridSize / 2}
	radius := 0.8 * gridSize / 2

	for i := 0; i < n; i++ {
		idx, ok := pool.AllocateFromFreeList()
		if !ok {
			break
		}
		p := &pool.Particles[idx]
		dir := randomUnitVec3(rng)
		r := radius * float32(math.Cbrt(rng.Float64()))
		p.Position = center.Add(dir.Mul(r))
		p.Mass = 1.0
		p.Lifetime = -1
		p.Role = core.RoleAmbient
		p.Color = mgl32.Vec3{0.2, 0.5, 0.9}
	}
	return pool
}

func randomUnitVec3(rng *rand.Rand) mgl32.Vec3 {
	for {
		v := mgl32.Vec3{
			float32(rng.Float64()*2 - 1),
			float32(rng.Float64()*2 - 1),
			float32(rng.Float64()*2 - 1),
		}
		l := v.Len()
		if l > 1e-6 && l <= 1 {
			return v.Mul(1 / l)
		}
	}
}
