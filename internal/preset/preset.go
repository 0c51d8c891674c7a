// Package preset implements the two persisted JSON shapes of spec §6.3:
// scene presets and kinetic sequences. Grounded on the teacher's
// asset_vox_spawner.go (the only teacher code that deserializes an on-disk
// scene description into live simulation state) and on
// internal/kinetic/sequence.go's Export/Import for the sibling sequence
// format, using encoding/json throughout like the rest of the corpus's
// config/save-file code.
package preset

import (
	"encoding/json"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/flowfield/mpm/internal/boundary"
	"github.com/flowfield/mpm/internal/core"
	"github.com/flowfield/mpm/internal/fields"
)

// Preset is the persisted scene configuration (spec §6.3).
type Preset struct {
	Version int `json:"version"`

	Simulation SimulationSection `json:"simulation"`
	Particles  ParticlesSection  `json:"particles"`
	Materials  []MaterialEntry   `json:"materials"`
	ForceFields []FieldEntry     `json:"forceFields"`
	Emitters    []EmitterEntry   `json:"emitters"`
	Boundaries  BoundarySection  `json:"boundaries"`
	AudioMacros core.MacroState  `json:"audioMacros"`
	Metadata    Metadata         `json:"metadata"`
}

// SimulationSection mirrors spec §3's scalar solver fields.
type SimulationSection struct {
	GridSize         float32 `json:"gridSize"`
	Dt               float32 `json:"dt"`
	TransferMode     string  `json:"transferMode"`
	FlipRatio        float32 `json:"flipRatio"`
	VorticityEnabled bool    `json:"vorticityEnabled"`
	VorticityEpsilon float32 `json:"vorticityEpsilon"`
	SparseGrid       bool    `json:"sparseGrid"`
	AdaptiveTimestep bool    `json:"adaptiveTimestep"`
	CFLTarget        float32 `json:"cflTarget"`
	GravityMode      string  `json:"gravityMode"`
}

type ParticlesSection struct {
	Count           int `json:"count"`
	DefaultMaterial int `json:"defaultMaterial"`
}

type MaterialEntry struct {
	Name             string     `json:"name"`
	Density          float32    `json:"density"`
	Stiffness        float32    `json:"stiffness"`
	Viscosity        float32    `json:"viscosity"`
	DynamicViscosity float32    `json:"dynamicViscosity"`
	Friction         float32    `json:"friction"`
	Cohesion         float32    `json:"cohesion"`
	Elasticity       float32    `json:"elasticity"`
	IsGranular       bool       `json:"isGranular"`
	IsElastic        bool       `json:"isElastic"`
	BaseColor        [3]float32 `json:"baseColor"`
}

type FieldEntry struct {
	Kind        string     `json:"kind"`
	FalloffMode string     `json:"falloffMode"`
	Position    mgl32.Vec3 `json:"position"`
	Direction   mgl32.Vec3 `json:"direction"`
	Axis        mgl32.Vec3 `json:"axis"`
	Strength    float32    `json:"strength"`
	Radius      float32    `json:"radius"`
}

type EmitterEntry struct {
	Kind           string     `json:"kind"`
	Pattern        string     `json:"pattern"`
	Position       mgl32.Vec3 `json:"position"`
	Direction      mgl32.Vec3 `json:"direction"`
	Rate           float32    `json:"rate"`
	Velocity       float32    `json:"velocity"`
	VelocitySpread float32    `json:"velocitySpread"`
	Lifetime       float32    `json:"lifetime"`
	MaterialType   uint8      `json:"materialType"`
	SizeStart      float32    `json:"sizeStart"`
	SizeEnd        float32    `json:"sizeEnd"`
	ColorStart     mgl32.Vec3 `json:"colorStart"`
	ColorEnd       mgl32.Vec3 `json:"colorEnd"`
}

type BoundarySection struct {
	Shape         string  `json:"shape"`
	Enabled       bool    `json:"enabled"`
	Stiffness     float32 `json:"stiffness"`
	Restitution   float32 `json:"restitution"`
	Friction      float32 `json:"friction"`
	CollisionMode string  `json:"collisionMode"`
}

type Metadata struct {
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
}

// Export/Import round-trip a Preset as JSON (spec §6.3).
func Export(p Preset) ([]byte, error) { return json.MarshalIndent(p, "", "  ") }

func Import(data []byte) (Preset, error) {
	var p Preset
	err := json.Unmarshal(data, &p)
	return p, err
}

// FromMaterialTable converts the live material table into its persisted
// form (the reverse of ApplyMaterials).
func FromMaterialTable(table []core.MaterialParams) []MaterialEntry {
	out := make([]MaterialEntry, len(table))
	for i, m := range table {
		out[i] = MaterialEntry{
			Name: m.Name, Density: m.Density0, Stiffness: m.Stiffness,
			Viscosity: m.Viscosity, DynamicViscosity: m.DynamicViscosity,
			Friction: m.Friction, Cohesion: m.Cohesion, Elasticity: m.Elasticity,
			IsGranular: m.IsGranular, IsElastic: m.IsElastic,
			BaseColor: m.BaseColor,
		}
	}
	return out
}

// ApplyMaterials converts persisted material entries back into the live
// table form, preserving whatever length the preset authored.
func ApplyMaterials(entries []MaterialEntry) []core.MaterialParams {
	out := make([]core.MaterialParams, len(entries))
	for i, e := range entries {
		out[i] = core.MaterialParams{
			Name: e.Name, Density0: e.Density, Stiffness: e.Stiffness,
			Viscosity: e.Viscosity, DynamicViscosity: e.DynamicViscosity,
			Friction: e.Friction, Cohesion: e.Cohesion, Elasticity: e.Elasticity,
			IsGranular: e.IsGranular, IsElastic: e.IsElastic,
			BaseColor: e.BaseColor,
		}
	}
	return out
}

// FromFields/ApplyFields and FromEmitters/ApplyEmitters mirror the
// materials converters for force fields and emitters.
func FromFields(live []fields.Field) []FieldEntry {
	out := make([]FieldEntry, len(live))
	for i, f := range live {
		out[i] = FieldEntry{
			Kind: fieldKindName(f.Kind), FalloffMode: falloffModeName(f.Falloff),
			Position: f.Position, Direction: f.Direction, Axis: f.Axis,
			Strength: f.Strength, Radius: f.Radius,
		}
	}
	return out
}

func ApplyFields(entries []FieldEntry) ([]fields.Field, error) {
	out := make([]fields.Field, len(entries))
	for i, e := range entries {
		kind, err := parseFieldKind(e.Kind)
		if err != nil {
			return nil, err
		}
		falloff, err := parseFalloffMode(e.FalloffMode)
		if err != nil {
			return nil, err
		}
		out[i] = fields.Field{
			Kind: kind, Falloff: falloff,
			Position: e.Position, Direction: e.Direction, Axis: e.Axis,
			Strength: e.Strength, Radius: e.Radius,
		}
	}
	return out, nil
}

func FromEmitters(live []fields.Emitter) []EmitterEntry {
	out := make([]EmitterEntry, len(live))
	for i, e := range live {
		out[i] = EmitterEntry{
			Kind: emitterKindName(e.Kind), Pattern: emitterPatternName(e.Pattern),
			Position: e.Position, Direction: e.Direction,
			Rate: e.Rate, Velocity: e.Velocity, VelocitySpread: e.VelocitySpread,
			Lifetime: e.Lifetime, MaterialType: e.MaterialType,
			SizeStart: e.SizeStart, SizeEnd: e.SizeEnd,
			ColorStart: e.ColorStart, ColorEnd: e.ColorEnd,
		}
	}
	return out
}

func ApplyEmitters(entries []EmitterEntry) ([]fields.Emitter, error) {
	out := make([]fields.Emitter, len(entries))
	for i, e := range entries {
		kind, err := parseEmitterKind(e.Kind)
		if err != nil {
			return nil, err
		}
		pattern, err := parseEmitterPattern(e.Pattern)
		if err != nil {
			return nil, err
		}
		out[i] = fields.Emitter{
			Kind: kind, Pattern: pattern,
			Position: e.Position, Direction: e.Direction,
			Rate: e.Rate, Velocity: e.Velocity, VelocitySpread: e.VelocitySpread,
			Lifetime: e.Lifetime, MaterialType: e.MaterialType,
			SizeStart: e.SizeStart, SizeEnd: e.SizeEnd,
			ColorStart: e.ColorStart, ColorEnd: e.ColorEnd,
		}
	}
	return out, nil
}

// FromBoundary/ApplyBoundary mirror boundary.Params.
func FromBoundary(p boundary.Params) BoundarySection {
	return BoundarySection{
		Shape: boundaryShapeName(p.Shape), Enabled: p.Shape != boundary.ShapeNone,
		Stiffness: p.Stiffness, Restitution: p.Restitution, Friction: p.Friction,
		CollisionMode: collisionModeName(p.CollisionMode),
	}
}

func ApplyBoundary(s BoundarySection, base boundary.Params) (boundary.Params, error) {
	shape, err := parseBoundaryShape(s.Shape)
	if err != nil {
		return boundary.Params{}, err
	}
	mode, err := parseCollisionMode(s.CollisionMode)
	if err != nil {
		return boundary.Params{}, err
	}
	base.Shape = shape
	base.CollisionMode = mode
	base.Stiffness = s.Stiffness
	base.Restitution = s.Restitution
	base.Friction = s.Friction
	return base, nil
}

// NewMetadata stamps a metadata block with the current time; callers in
// tests that need determinism should build Metadata directly instead.
func NewMetadata(name string) Metadata {
	return Metadata{Name: name, CreatedAt: time.Now().UnixMilli()}
}
