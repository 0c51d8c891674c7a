package core

// MaterialKind indexes the material table (spec §3.3); the predefined
// entries are the minimum required by the spec.
type MaterialKind uint8

const (
	MaterialFluid MaterialKind = iota
	MaterialElastic
	MaterialSand
	MaterialSnow
	MaterialFoam
	MaterialViscous
	MaterialRigid
	MaterialPlasma
	materialCount
)

// MaterialCount returns the number of predefined material slots, for sizing
// the GPU material-parameter buffer.
func MaterialCount() int {
	return int(materialCount)
}

func (k MaterialKind) String() string {
	names := [...]string{"Fluid", "Elastic", "Sand", "Snow", "Foam", "Viscous", "Rigid", "Plasma"}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// MaterialParams is one entry of the material table: the constitutive
// parameters consumed by the GPU stress branch (spec §4.E) plus a base
// color for the default color mode.
type MaterialParams struct {
	Name             string
	Density0         float32
	Stiffness        float32
	Viscosity        float32
	DynamicViscosity float32
	Friction         float32
	Cohesion         float32
	Elasticity       float32
	IsGranular       bool
	IsElastic        bool
	BaseColor        [3]float32
}

// DefaultMaterialTable returns the >=8 predefined materials in table order.
// Implementers are free to append custom entries at runtime (preset import,
// §6.3 "materials") — the table is a plain slice, not a fixed array.
func DefaultMaterialTable() []MaterialParams {
	return []MaterialParams{
		MaterialFluid: {
			Name: "Fluid", Density0: 1.0, Stiffness: 50, Viscosity: 0.05, DynamicViscosity: 0.1,
			Friction: 0, Cohesion: 0, Elasticity: 0, BaseColor: [3]float32{0.2, 0.5, 0.95},
		},
		MaterialElastic: {
			Name: "Elastic", Density0: 1.2, Stiffness: 80, Viscosity: 0, DynamicViscosity: 0,
			Friction: 0.1, Cohesion: 0.3, Elasticity: 0.9, IsElastic: true, BaseColor: [3]float32{0.9, 0.4, 0.3},
		},
		MaterialSand: {
			Name: "Sand", Density0: 1.6, Stiffness: 40, Viscosity: 0, DynamicViscosity: 0,
			Friction: 0.7, Cohesion: 0.05, Elasticity: 0.1, IsGranular: true, BaseColor: [3]float32{0.85, 0.7, 0.4},
		},
		MaterialSnow: {
			Name: "Snow", Density0: 0.5, Stiffness: 30, Viscosity: 0, DynamicViscosity: 0,
			Friction: 0.3, Cohesion: 0.4, Elasticity: 0.6, BaseColor: [3]float32{0.95, 0.95, 1.0},
		},
		MaterialFoam: {
			Name: "Foam", Density0: 0.2, Stiffness: 8, Viscosity: 0.02, DynamicViscosity: 0.05,
			Friction: 0, Cohesion: 0, Elasticity: 0, BaseColor: [3]float32{1.0, 1.0, 0.95},
		},
		MaterialViscous: {
			Name: "Viscous", Density0: 1.3, Stiffness: 20, Viscosity: 0.6, DynamicViscosity: 0.8,
			Friction: 0.1, Cohesion: 0, Elasticity: 0, BaseColor: [3]float32{0.5, 0.3, 0.1},
		},
		MaterialRigid: {
			Name: "Rigid", Density0: 2.5, Stiffness: 500, Viscosity: 0, DynamicViscosity: 0,
			Friction: 0.4, Cohesion: 1.0, Elasticity: 0, BaseColor: [3]float32{0.6, 0.6, 0.65},
		},
		MaterialPlasma: {
			Name: "Plasma", Density0: 0.3, Stiffness: 35, Viscosity: 0.01, DynamicViscosity: 0.02,
			Friction: 0, Cohesion: 0, Elasticity: 0, BaseColor: [3]float32{0.8, 0.2, 0.9},
		},
	}
}
