// Package shaders embeds the WGSL source for each MLS-MPM compute kernel,
// following the teacher's shaders.go go:embed convention (one string per
// shader asset, concatenated at pipeline-creation time since WGSL has no
// #include directive).
package shaders

import _ "embed"

//go:embed common.wgsl
var Common string

//go:embed materials.wgsl
var Materials string

//go:embed fields.wgsl
var Fields string

//go:embed boundary.wgsl
var Boundary string

//go:embed clear_grid.wgsl
var ClearGrid string

//go:embed p2g1.wgsl
var P2G1 string

//go:embed p2g2.wgsl
var P2G2 string

//go:embed grid_update.wgsl
var GridUpdate string

//go:embed vorticity.wgsl
var Vorticity string

//go:embed g2p.wgsl
var G2P string

// ClearGridModule, P2G1Module etc. are the fully-linked WGSL sources ready
// to hand to wgpu.ShaderModuleWGSLDescriptor — each kernel file only
// declares its own bindings and entry point, so the shared structs and
// helper functions are prefixed in source order.
var (
	ClearGridModule  = Common + ClearGrid
	P2G1Module       = Common + P2G1
	P2G2Module       = Common + Materials + P2G2
	GridUpdateModule = Common + GridUpdate
	VorticityModule  = Common + Vorticity
	G2PModule        = Common + Materials + Fields + Boundary + G2P
)
