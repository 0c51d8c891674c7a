package fields

import "github.com/flowfield/mpm/internal/gpu"

// ToGPU packs a Field into the wire record the G2P kernel consumes. Kind and
// FalloffMode share the WGSL kernel's integer encoding by construction
// (iota order matches fields.wgsl's comment table).
func (f Field) ToGPU() gpu.FieldRecord {
	return gpu.FieldRecord{
		Kind:        uint32(f.Kind),
		FalloffMode: uint32(f.Falloff),
		Position:    f.Position,
		Direction:   f.Direction,
		Axis:        f.Axis,
		Strength:    f.Strength,
		Radius:      f.Radius,
	}
}
