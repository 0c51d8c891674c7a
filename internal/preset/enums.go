package preset

import (
	"fmt"

	"github.com/flowfield/mpm/internal/boundary"
	"github.com/flowfield/mpm/internal/fields"
)

var fieldKindNames = [...]string{"Attractor", "Repeller", "Vortex", "Turbulence", "Directional", "VortexTube", "Spherical", "CurlNoise"}

func fieldKindName(k fields.Kind) string { return nameOrUnknown(fieldKindNames[:], int(k)) }

func parseFieldKind(s string) (fields.Kind, error) {
	for i, n := range fieldKindNames {
		if n == s {
			return fields.Kind(i), nil
		}
	}
	return 0, fmt.Errorf("preset: unknown field kind %q", s)
}

var falloffModeNames = [...]string{"Constant", "Linear", "Quadratic", "SmoothHermite"}

func falloffModeName(f fields.FalloffMode) string { return nameOrUnknown(falloffModeNames[:], int(f)) }

func parseFalloffMode(s string) (fields.FalloffMode, error) {
	for i, n := range falloffModeNames {
		if n == s {
			return fields.FalloffMode(i), nil
		}
	}
	return 0, fmt.Errorf("preset: unknown falloff mode %q", s)
}

var emitterKindNames = [...]string{"Point", "Sphere", "Disc", "Box", "Cone", "Ring"}

func emitterKindName(k fields.EmitterKind) string { return nameOrUnknown(emitterKindNames[:], int(k)) }

func parseEmitterKind(s string) (fields.EmitterKind, error) {
	for i, n := range emitterKindNames {
		if n == s {
			return fields.EmitterKind(i), nil
		}
	}
	return 0, fmt.Errorf("preset: unknown emitter kind %q", s)
}

var emitterPatternNames = [...]string{"Continuous", "Burst", "Pulse", "Fountain", "Explosion", "Stream"}

func emitterPatternName(p fields.EmitterPattern) string { return nameOrUnknown(emitterPatternNames[:], int(p)) }

func parseEmitterPattern(s string) (fields.EmitterPattern, error) {
	for i, n := range emitterPatternNames {
		if n == s {
			return fields.EmitterPattern(i), nil
		}
	}
	return 0, fmt.Errorf("preset: unknown emitter pattern %q", s)
}

var boundaryShapeNames = [...]string{"None", "Box", "Sphere", "Tube", "Dodecahedron"}

func boundaryShapeName(s boundary.Shape) string { return nameOrUnknown(boundaryShapeNames[:], int(s)) }

func parseBoundaryShape(s string) (boundary.Shape, error) {
	for i, n := range boundaryShapeNames {
		if n == s {
			return boundary.Shape(i), nil
		}
	}
	return 0, fmt.Errorf("preset: unknown boundary shape %q", s)
}

var collisionModeNames = [...]string{"Reflect", "Clamp", "Wrap", "Kill"}

func collisionModeName(m boundary.CollisionMode) string { return nameOrUnknown(collisionModeNames[:], int(m)) }

func parseCollisionMode(s string) (boundary.CollisionMode, error) {
	for i, n := range collisionModeNames {
		if n == s {
			return boundary.CollisionMode(i), nil
		}
	}
	return 0, fmt.Errorf("preset: unknown collision mode %q", s)
}

func nameOrUnknown(names []string, i int) string {
	if i >= 0 && i < len(names) {
		return names[i]
	}
	return "Unknown"
}
