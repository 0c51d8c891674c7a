package kinetic

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/flowfield/mpm/internal/core"
)

const (
	roleHysteresisSeconds = 2.0
	formationBlendSeconds = 2.0
	leadSupportRadius     = 0.25 // grid-space (normalized) radius a Support searches for a Lead
)

// PriorityWeights are the w_cam/w_energy/w_height/w_rand coefficients of
// spec §4.H.2's priority score.
type PriorityWeights struct {
	Camera, Energy, Height, Rand float32
}

func DefaultPriorityWeights() PriorityWeights {
	return PriorityWeights{Camera: 0.4, Energy: 0.3, Height: 0.2, Rand: 0.1}
}

// ParticleRoleState is the per-particle bookkeeping the choreographer needs
// beyond what core.Particle already stores: the time a role assignment was
// last made, for the hysteresis window.
type ParticleRoleState struct {
	LastAssigned float32
	LeadIndex    int // nearest lead index for Support particles, -1 if none
}

// Choreographer assigns roles and drives formation selection/blending
// (spec §4.H.2).
type Choreographer struct {
	weights       PriorityWeights
	roleState     []ParticleRoleState
	clock         float32
	currentForm   core.Formation
	targetForm    core.Formation
	formBlendT    float32
	lastSection   core.Section
	rng           *rand.Rand
	forcedForm    *core.Formation
}

// ForceFormation pins the choreographer to f, skipping section-driven
// selection and the 2s blend, until cleared with ForceFormation(nil). Used
// to apply a host- or preset-level formation override (spec §6's forced
// overrides) that section changes would otherwise fight.
func (c *Choreographer) ForceFormation(f *core.Formation) {
	c.forcedForm = f
	if f != nil {
		c.currentForm = *f
		c.targetForm = *f
		c.formBlendT = 1
	}
}

func NewChoreographer(n int, seed int64) *Choreographer {
	c := &Choreographer{
		weights:   DefaultPriorityWeights(),
		roleState: make([]ParticleRoleState, n),
		rng:       rand.New(rand.NewSource(seed)),
	}
	c.formBlendT = 1
	return c
}

// AssignRoles computes priority scores for all live particles and buckets
// the top 10%/next 30%/rest into Lead/Support/Ambient, honoring a 2s
// hysteresis window per particle (spec §4.H.2).
func (c *Choreographer) AssignRoles(particles []core.Particle, cameraPos mgl32.Vec3, dimsDiag float32, dt float32) {
	c.clock += dt
	if len(c.roleState) != len(particles) {
		c.roleState = make([]ParticleRoleState, len(particles))
	}

	live := make([]scoredParticle, 0, len(particles))
	for i := range particles {
		p := &particles[i]
		if p.Mass <= 0 {
			continue
		}
		dCam := p.Position.Sub(cameraPos).Len()
		score := c.weights.Camera*(1-clampF(dCam/dimsDiag, 0, 1)) +
			c.weights.Energy*clampF(p.Velocity.Len(), 0, 1) +
			c.weights.Height*clampF(p.Position.Y()/dimsDiag, 0, 1) +
			c.weights.Rand*c.rng.Float32()
		live = append(live, scoredParticle{i, score})
	}
	sortByScoreDesc(live)

	leadCut := len(live) / 10
	supportCut := leadCut + (len(live)*3)/10

	for rank, s := range live {
		want := core.RoleAmbient
		switch {
		case rank < leadCut:
			want = core.RoleLead
		case rank < supportCut:
			want = core.RoleSupport
		}
		st := &c.roleState[s.idx]
		cur := particles[s.idx].Role
		if cur == want {
			continue
		}
		if c.clock-st.LastAssigned < roleHysteresisSeconds {
			continue
		}
		particles[s.idx].Role = want
		st.LastAssigned = c.clock
	}

	c.resolveSupportLeads(particles)
}

// resolveSupportLeads finds, for each Support particle, the nearest Lead
// within leadSupportRadius (spec §4.H.2).
func (c *Choreographer) resolveSupportLeads(particles []core.Particle) {
	var leads []int
	for i := range particles {
		if particles[i].Mass > 0 && particles[i].Role == core.RoleLead {
			leads = append(leads, i)
		}
	}
	for i := range particles {
		if particles[i].Mass <= 0 || particles[i].Role != core.RoleSupport {
			c.roleState[i].LeadIndex = -1
			continue
		}
		best, bestDist := -1, leadSupportRadius
		for _, li := range leads {
			d := particles[i].Position.Sub(particles[li].Position).Len()
			if d < bestDist {
				bestDist = d
				best = li
			}
		}
		c.roleState[i].LeadIndex = best
	}
}

// LeadIndexFor reports the nearest lead for a Support particle, or -1.
func (c *Choreographer) LeadIndexFor(i int) int {
	if i < 0 || i >= len(c.roleState) {
		return -1
	}
	return c.roleState[i].LeadIndex
}

// SelectFormation begins (or continues) a 2s blend toward the formation
// associated with the current section (spec §4.H.2).
func (c *Choreographer) SelectFormation(section core.Section, dt float32) (from, to core.Formation, blend float32) {
	if c.forcedForm != nil {
		return *c.forcedForm, *c.forcedForm, 1
	}
	if section != c.lastSection {
		c.lastSection = section
		next := core.DefaultFormationForSection(section)
		if next != c.targetForm {
			c.currentForm = c.blendedFormation()
			c.targetForm = next
			c.formBlendT = 0
		}
	}
	if c.formBlendT < 1 {
		c.formBlendT += dt / formationBlendSeconds
		if c.formBlendT > 1 {
			c.formBlendT = 1
		}
	}
	return c.currentForm, c.targetForm, c.formBlendT
}

func (c *Choreographer) blendedFormation() core.Formation {
	if c.formBlendT >= 0.5 {
		return c.targetForm
	}
	return c.currentForm
}

// FormationTarget computes the closed-form attraction target for particle i
// under formation f, given the grid center and a per-particle deterministic
// slot index (used by Grid/Spiral to avoid clumping).
func FormationTarget(f core.Formation, center mgl32.Vec3, radius float32, slot, totalSlots int) mgl32.Vec3 {
	t := float32(slot) / float32(maxInt(totalSlots, 1))
	switch f {
	case core.FormationScattered:
		return center
	case core.FormationClustered:
		return center
	case core.FormationOrbiting:
		angle := t * 2 * math.Pi
		return center.Add(mgl32.Vec3{radius * float32(math.Cos(float64(angle))), 0, radius * float32(math.Sin(float64(angle)))})
	case core.FormationFlowing:
		return center.Add(mgl32.Vec3{0, radius * (t - 0.5), 0})
	case core.FormationLayered:
		layer := float32(slot%3) / 3
		return center.Add(mgl32.Vec3{0, radius * (layer - 0.5), 0})
	case core.FormationRadial:
		angle := t * 2 * math.Pi
		r := radius * (0.3 + 0.7*t)
		return center.Add(mgl32.Vec3{r * float32(math.Cos(float64(angle))), 0, r * float32(math.Sin(float64(angle)))})
	case core.FormationGrid:
		side := int(math.Ceil(math.Sqrt(float64(maxInt(totalSlots, 1)))))
		gx, gz := float32(slot%side), float32(slot/side)
		return center.Add(mgl32.Vec3{(gx - float32(side)/2) * radius / float32(side), 0, (gz - float32(side)/2) * radius / float32(side)})
	case core.FormationSpiral:
		angle := t * 2 * math.Pi * 4
		r := radius * t
		return center.Add(mgl32.Vec3{r * float32(math.Cos(float64(angle))), radius * (t - 0.5), r * float32(math.Sin(float64(angle)))})
	default:
		return center
	}
}

type scoredParticle struct {
	idx   int
	score float32
}

func sortByScoreDesc(s []scoredParticle) {
	for i := 1; i < len(s); i++ {
		v := s[i]
		j := i - 1
		for j >= 0 && s[j].score < v.score {
			s[j+1] = s[j]
			j--
		}
		s[j+1] = v
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

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
