// Package config holds the engine's runtime-tunable surface (spec §6.4):
// solver mode selection, boundary/collision mode, particle counts, macro
// targets, and optional forced personality/formation overrides. Grounded on
// pthm-soup/config/config.go's embed-defaults-then-overlay-user-file pattern,
// generalized from a single global Config singleton to a value type the host
// owns and diffs frame-to-frame (SPEC_FULL.md §4 "config diffing" supplement).
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/flowfield/mpm/internal/boundary"
	"github.com/flowfield/mpm/internal/core"
	"github.com/flowfield/mpm/internal/gpu"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// EngineConfig is the authored/serializable form of spec §6.4's
// configuration surface. Solver/boundary mode selectors are kept as strings
// here (so the YAML stays human-authorable) and resolved to their typed enum
// form by Resolve.
type EngineConfig struct {
	TransferMode     string  `yaml:"transferMode"`
	FlipRatio        float32 `yaml:"flipRatio"`
	VorticityEnabled bool    `yaml:"vorticityEnabled"`
	VorticityEpsilon float32 `yaml:"vorticityEpsilon"`
	SparseGrid       bool    `yaml:"sparseGrid"`
	AdaptiveTimestep bool    `yaml:"adaptiveTimestep"`
	CFLTarget        float32 `yaml:"cflTarget"`
	GravityMode      string  `yaml:"gravityMode"`

	ParticleCount int     `yaml:"particleCount"`
	ParticleSize  float32 `yaml:"particleSize"`

	BoundaryShape   string `yaml:"boundaryShape"`
	BoundaryEnabled bool   `yaml:"boundaryEnabled"`
	CollisionMode   string `yaml:"collisionMode"`

	AutoAdapt    bool            `yaml:"autoAdapt"`
	MacroTargets core.MacroState `yaml:"macroTargets"`

	// ForcedPersonality/ForcedFormation are optional overrides (spec §6.4
	// "forced personality/formation override"); empty string means no
	// override and the respective engine picks automatically.
	ForcedPersonality string `yaml:"forcedPersonality"`
	ForcedFormation   string `yaml:"forcedFormation"`
}

// Load reads the embedded defaults, then overlays path's contents if path is
// non-empty (unset fields in the file keep the default's value, matching
// YAML's merge-by-unmarshal-into-same-struct semantics).
func Load(path string) (EngineConfig, error) {
	var cfg EngineConfig
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("config: parsing embedded defaults: %w", err)
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Resolved is EngineConfig with every enum field parsed into the typed form
// the solver/boundary packages actually consume.
type Resolved struct {
	TransferMode     gpu.TransferMode
	FlipRatio        float32
	VorticityEnabled bool
	VorticityEpsilon float32
	SparseGrid       bool
	AdaptiveTimestep bool
	CFLTarget        float32
	GravityMode      gpu.GravityMode

	ParticleCount int
	ParticleSize  float32

	BoundaryShape   boundary.Shape
	BoundaryEnabled bool
	CollisionMode   boundary.CollisionMode

	AutoAdapt    bool
	MacroTargets core.MacroState

	ForcedPersonality *core.PersonalityKind
	ForcedFormation   *core.Formation
}

// Resolve parses every string-enum field, returning a ConfigError-worthy
// error (wrapped by the caller) on an unrecognized value.
func (c EngineConfig) Resolve() (Resolved, error) {
	transferMode, err := parseTransferMode(c.TransferMode)
	if err != nil {
		return Resolved{}, err
	}
	gravityMode, err := parseGravityMode(c.GravityMode)
	if err != nil {
		return Resolved{}, err
	}
	boundaryShape, err := parseBoundaryShape(c.BoundaryShape)
	if err != nil {
		return Resolved{}, err
	}
	collisionMode, err := parseCollisionMode(c.CollisionMode)
	if err != nil {
		return Resolved{}, err
	}

	r := Resolved{
		TransferMode:     transferMode,
		FlipRatio:        c.FlipRatio,
		VorticityEnabled: c.VorticityEnabled,
		VorticityEpsilon: c.VorticityEpsilon,
		SparseGrid:       c.SparseGrid,
		AdaptiveTimestep: c.AdaptiveTimestep,
		CFLTarget:        c.CFLTarget,
		GravityMode:      gravityMode,
		ParticleCount:    c.ParticleCount,
		ParticleSize:     c.ParticleSize,
		BoundaryShape:    boundaryShape,
		BoundaryEnabled:  c.BoundaryEnabled,
		CollisionMode:    collisionMode,
		AutoAdapt:        c.AutoAdapt,
		MacroTargets:     c.MacroTargets,
	}

	if c.ForcedPersonality != "" {
		kind, err := parsePersonality(c.ForcedPersonality)
		if err != nil {
			return Resolved{}, err
		}
		r.ForcedPersonality = &kind
	}
	if c.ForcedFormation != "" {
		form, err := parseFormation(c.ForcedFormation)
		if err != nil {
			return Resolved{}, err
		}
		r.ForcedFormation = &form
	}
	return r, nil
}

// Diff reports the field names whose value changed between c and next
// (SPEC_FULL.md §4 "config diffing" supplement). ConfigModule calls it on each
// queued reconfigure to skip one that changes nothing and to log which fields
// changed; a reconfigure that changes anything is resolved and applied whole.
func (c EngineConfig) Diff(next EngineConfig) []string {
	var changed []string
	add := func(name string, differs bool) {
		if differs {
			changed = append(changed, name)
		}
	}
	add("transferMode", c.TransferMode != next.TransferMode)
	add("flipRatio", c.FlipRatio != next.FlipRatio)
	add("vorticityEnabled", c.VorticityEnabled != next.VorticityEnabled)
	add("vorticityEpsilon", c.VorticityEpsilon != next.VorticityEpsilon)
	add("sparseGrid", c.SparseGrid != next.SparseGrid)
	add("adaptiveTimestep", c.AdaptiveTimestep != next.AdaptiveTimestep)
	add("cflTarget", c.CFLTarget != next.CFLTarget)
	add("gravityMode", c.GravityMode != next.GravityMode)
	add("particleCount", c.ParticleCount != next.ParticleCount)
	add("particleSize", c.ParticleSize != next.ParticleSize)
	add("boundaryShape", c.BoundaryShape != next.BoundaryShape)
	add("boundaryEnabled", c.BoundaryEnabled != next.BoundaryEnabled)
	add("collisionMode", c.CollisionMode != next.CollisionMode)
	add("autoAdapt", c.AutoAdapt != next.AutoAdapt)
	add("macroTargets", c.MacroTargets != next.MacroTargets)
	add("forcedPersonality", c.ForcedPersonality != next.ForcedPersonality)
	add("forcedFormation", c.ForcedFormation != next.ForcedFormation)
	return changed
}

func parseTransferMode(s string) (gpu.TransferMode, error) {
	switch s {
	case "PIC":
		return gpu.TransferPIC, nil
	case "FLIP":
		return gpu.TransferFLIP, nil
	case "Hybrid", "":
		return gpu.TransferHybrid, nil
	default:
		return 0, fmt.Errorf("config: unknown transferMode %q", s)
	}
}

func parseGravityMode(s string) (gpu.GravityMode, error) {
	switch s {
	case "Down", "":
		return gpu.GravityDown, nil
	case "Center":
		return gpu.GravityCenter, nil
	case "Device":
		return gpu.GravityDevice, nil
	case "Off":
		return gpu.GravityOff, nil
	default:
		return 0, fmt.Errorf("config: unknown gravityMode %q", s)
	}
}

func parseBoundaryShape(s string) (boundary.Shape, error) {
	switch s {
	case "None", "":
		return boundary.ShapeNone, nil
	case "Box":
		return boundary.ShapeBox, nil
	case "Sphere":
		return boundary.ShapeSphere, nil
	case "Tube":
		return boundary.ShapeTube, nil
	case "Dodecahedron":
		return boundary.ShapeDodecahedron, nil
	default:
		return 0, fmt.Errorf("config: unknown boundaryShape %q", s)
	}
}

func parseCollisionMode(s string) (boundary.CollisionMode, error) {
	switch s {
	case "Reflect", "":
		return boundary.CollisionReflect, nil
	case "Clamp":
		return boundary.CollisionClamp, nil
	case "Wrap":
		return boundary.CollisionWrap, nil
	case "Kill":
		return boundary.CollisionKill, nil
	default:
		return 0, fmt.Errorf("config: unknown collisionMode %q", s)
	}
}

func parsePersonality(s string) (core.PersonalityKind, error) {
	names := [...]string{"Calm", "Energetic", "Chaotic", "Graceful", "Aggressive", "Ethereal", "Playful", "Majestic"}
	for i, n := range names {
		if n == s {
			return core.PersonalityKind(i), nil
		}
	}
	return 0, fmt.Errorf("config: unknown forcedPersonality %q", s)
}

func parseFormation(s string) (core.Formation, error) {
	names := [...]string{"Scattered", "Clustered", "Orbiting", "Flowing", "Layered", "Radial", "Grid", "Spiral"}
	for i, n := range names {
		if n == s {
			return core.Formation(i), nil
		}
	}
	return 0, fmt.Errorf("config: unknown forcedFormation %q", s)
}
