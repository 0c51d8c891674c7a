package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/flowfield/mpm/internal/core"
	"github.com/flowfield/mpm/internal/gpu/shaders"
)

// TransferMode selects the FLIP/PIC blend G2P uses (spec §4.B.5).
type TransferMode uint32

const (
	TransferPIC TransferMode = iota
	TransferFLIP
	TransferHybrid
)

func (m TransferMode) String() string {
	switch m {
	case TransferPIC:
		return "PIC"
	case TransferFLIP:
		return "FLIP"
	default:
		return "Hybrid"
	}
}

// GravityMode selects grid-update's gravity direction source.
type GravityMode uint32

const (
	GravityDown GravityMode = iota
	GravityCenter
	GravityDevice
	GravityOff
)

func (m GravityMode) String() string {
	switch m {
	case GravityDown:
		return "Down"
	case GravityCenter:
		return "Center"
	case GravityDevice:
		return "Device"
	default:
		return "Off"
	}
}

// Solver owns the compute pipelines and bind groups for the full substep
// chain: clear-grid -> P2G1 -> P2G2 -> grid-update -> [vorticity-curl] ->
// G2P. Grounded on voxelrt/rt/gpu/manager_compression.go's pipeline/bind
// group bring-up and manager_edit.go's per-pass command encoder pattern,
// generalized from one compression kernel to the six-kernel MPM chain.
type Solver struct {
	ctx     *Context
	buffers *Buffers
	dims    core.Dims

	clearGrid    *wgpu.ComputePipeline
	p2g1         *wgpu.ComputePipeline
	p2g2         *wgpu.ComputePipeline
	gridUpdate   *wgpu.ComputePipeline
	vorticity    *wgpu.ComputePipeline
	g2p          *wgpu.ComputePipeline

	bgClearGrid  *wgpu.BindGroup
	bgP2G1       *wgpu.BindGroup
	bgP2G2Group0 *wgpu.BindGroup
	bgP2G2Group1 *wgpu.BindGroup
	bgGridUpdate *wgpu.BindGroup
	bgVorticity  *wgpu.BindGroup
	bgG2PGroup0  *wgpu.BindGroup
	bgG2PGroup1  *wgpu.BindGroup
	bgG2PGroup2  *wgpu.BindGroup
	bgG2PGroup3  *wgpu.BindGroup

	VorticityEnabled bool
}

// NewSolver compiles every kernel and binds every buffer once; nothing here
// is recreated per frame (spec §4.A "no per-frame allocation").
func NewSolver(ctx *Context, buffers *Buffers, dims core.Dims) (*Solver, error) {
	s := &Solver{ctx: ctx, buffers: buffers, dims: dims}

	pipelines := []struct {
		dst   **wgpu.ComputePipeline
		label string
		entry string
		code  string
	}{
		{&s.clearGrid, "clear-grid", "clear_grid", shaders.ClearGridModule},
		{&s.p2g1, "p2g1", "p2g1", shaders.P2G1Module},
		{&s.p2g2, "p2g2", "p2g2", shaders.P2G2Module},
		{&s.gridUpdate, "grid-update", "grid_update", shaders.GridUpdateModule},
		{&s.vorticity, "vorticity-curl", "vorticity_curl", shaders.VorticityModule},
		{&s.g2p, "g2p", "g2p", shaders.G2PModule},
	}
	for _, p := range pipelines {
		pipeline, err := ctx.createComputePipeline(p.label, p.entry, p.code)
		if err != nil {
			return nil, fmt.Errorf("gpu: solver init: %w", err)
		}
		*p.dst = pipeline
	}

	if err := s.createBindGroups(); err != nil {
		return nil, fmt.Errorf("gpu: solver bind groups: %w", err)
	}
	return s, nil
}

func (s *Solver) createBindGroups() error {
	b := s.buffers
	dev := s.ctx.Device

	group0 := func(pipeline *wgpu.ComputePipeline, entries ...wgpu.BindGroupEntry) (*wgpu.BindGroup, error) {
		layout := pipeline.GetBindGroupLayout(0)
		defer layout.Release()
		return dev.CreateBindGroup(&wgpu.BindGroupDescriptor{Layout: layout, Entries: entries})
	}

	var err error
	s.bgClearGrid, err = group0(s.clearGrid,
		bindGroupEntryBuffer(0, b.Cells),
		bindGroupEntryBuffer(1, b.SimParams),
	)
	if err != nil {
		return err
	}

	s.bgP2G1, err = group0(s.p2g1,
		bindGroupEntryBuffer(0, b.Particles),
		bindGroupEntryBuffer(1, b.Cells),
		bindGroupEntryBuffer(2, b.SimParams),
	)
	if err != nil {
		return err
	}

	s.bgP2G2Group0, err = group0(s.p2g2,
		bindGroupEntryBuffer(0, b.Particles),
		bindGroupEntryBuffer(1, b.Cells),
		bindGroupEntryBuffer(2, b.SimParams),
	)
	if err != nil {
		return err
	}

	p2g2Layout1 := s.p2g2.GetBindGroupLayout(1)
	defer p2g2Layout1.Release()
	s.bgP2G2Group1, err = dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  p2g2Layout1,
		Entries: []wgpu.BindGroupEntry{bindGroupEntryBuffer(0, b.Materials)},
	})
	if err != nil {
		return err
	}

	s.bgGridUpdate, err = group0(s.gridUpdate,
		bindGroupEntryBuffer(0, b.Cells),
		bindGroupEntryBuffer(1, b.SimParams),
		bindGroupEntryBuffer(2, b.GravityParams),
		bindGroupEntryBuffer(3, b.FieldGrid),
		bindGroupEntryBuffer(4, b.FieldGridParams),
	)
	if err != nil {
		return err
	}

	s.bgVorticity, err = group0(s.vorticity,
		bindGroupEntryBuffer(0, b.Cells),
		bindGroupEntryBuffer(1, b.SimParams),
	)
	if err != nil {
		return err
	}

	s.bgG2PGroup0, err = group0(s.g2p,
		bindGroupEntryBuffer(0, b.Particles),
		bindGroupEntryBuffer(1, b.Cells),
		bindGroupEntryBuffer(2, b.SimParams),
	)
	if err != nil {
		return err
	}

	layout1 := s.g2p.GetBindGroupLayout(1)
	defer layout1.Release()
	s.bgG2PGroup1, err = dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: layout1,
		Entries: []wgpu.BindGroupEntry{
			bindGroupEntryBuffer(0, b.Materials),
			bindGroupEntryBuffer(1, b.Fields),
			bindGroupEntryBuffer(2, b.FieldsParams),
		},
	})
	if err != nil {
		return err
	}

	layout2 := s.g2p.GetBindGroupLayout(2)
	defer layout2.Release()
	s.bgG2PGroup2, err = dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  layout2,
		Entries: []wgpu.BindGroupEntry{bindGroupEntryBuffer(0, b.Boundary)},
	})
	if err != nil {
		return err
	}

	layout3 := s.g2p.GetBindGroupLayout(3)
	defer layout3.Release()
	s.bgG2PGroup3, err = dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  layout3,
		Entries: []wgpu.BindGroupEntry{bindGroupEntryBuffer(0, b.Drive)},
	})
	return err
}

const workgroupSize1D = 64

func dispatch1D(n int) uint32 {
	return uint32((n + workgroupSize1D - 1) / workgroupSize1D)
}

func dispatch3D(dims core.Dims) (x, y, z uint32) {
	const w = 4
	x = uint32((int(dims.X) + w - 1) / w)
	y = uint32((int(dims.Y) + w - 1) / w)
	z = uint32((int(dims.Z) + w - 1) / w)
	return
}

// Substep runs exactly one solver step: clear-grid, P2G1, P2G2,
// grid-update, an optional vorticity-curl pass, then G2P. Each kernel gets
// its own command encoder and submit, which is the teacher's convention
// (manager_edit.go never batches unrelated passes into one encoder) and
// also gives every pass a full memory barrier against the next, which the
// MPM pipeline requires (spec §5 "no pass may begin before the previous
// pass's writes are visible").
func (s *Solver) Substep(particleCount int) error {
	passes := []struct {
		label    string
		pipeline *wgpu.ComputePipeline
		bind     func(*wgpu.ComputePassEncoder)
		x, y, z  uint32
	}{
		{
			label:    "clear-grid",
			pipeline: s.clearGrid,
			bind:     func(p *wgpu.ComputePassEncoder) { p.SetBindGroup(0, s.bgClearGrid, nil) },
			x:        dispatch1D(s.buffers.CellCount),
			y:        1, z: 1,
		},
		{
			label:    "p2g1",
			pipeline: s.p2g1,
			bind:     func(p *wgpu.ComputePassEncoder) { p.SetBindGroup(0, s.bgP2G1, nil) },
			x:        dispatch1D(particleCount),
			y:        1, z: 1,
		},
		{
			label:    "p2g2",
			pipeline: s.p2g2,
			bind: func(p *wgpu.ComputePassEncoder) {
				p.SetBindGroup(0, s.bgP2G2Group0, nil)
				p.SetBindGroup(1, s.bgP2G2Group1, nil)
			},
			x: dispatch1D(particleCount),
			y: 1, z: 1,
		},
	}

	for _, pass := range passes {
		if err := s.runPass(pass.label, pass.pipeline, pass.bind, pass.x, pass.y, pass.z); err != nil {
			return err
		}
	}

	gx, gy, gz := dispatch3D(s.dims)
	if err := s.runPass("grid-update", s.gridUpdate, func(p *wgpu.ComputePassEncoder) {
		p.SetBindGroup(0, s.bgGridUpdate, nil)
	}, gx, gy, gz); err != nil {
		return err
	}

	if s.VorticityEnabled {
		if err := s.runPass("vorticity-curl", s.vorticity, func(p *wgpu.ComputePassEncoder) {
			p.SetBindGroup(0, s.bgVorticity, nil)
		}, gx, gy, gz); err != nil {
			return err
		}
	}

	return s.runPass("g2p", s.g2p, func(p *wgpu.ComputePassEncoder) {
		p.SetBindGroup(0, s.bgG2PGroup0, nil)
		p.SetBindGroup(1, s.bgG2PGroup1, nil)
		p.SetBindGroup(2, s.bgG2PGroup2, nil)
		p.SetBindGroup(3, s.bgG2PGroup3, nil)
	}, dispatch1D(particleCount), 1, 1)
}

func (s *Solver) runPass(label string, pipeline *wgpu.ComputePipeline, bind func(*wgpu.ComputePassEncoder), x, y, z uint32) error {
	encoder, err := s.ctx.Device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return fmt.Errorf("gpu: %s encoder: %w", label, err)
	}
	pass := encoder.BeginComputePass(&wgpu.ComputePassDescriptor{Label: label})
	pass.SetPipeline(pipeline)
	bind(pass)
	pass.DispatchWorkgroups(x, y, z)
	pass.End()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("gpu: %s finish: %w", label, err)
	}
	s.ctx.Queue.Submit(cmd)
	return nil
}

func (s *Solver) Release() {
	for _, p := range []*wgpu.ComputePipeline{s.clearGrid, s.p2g1, s.p2g2, s.gridUpdate, s.vorticity, s.g2p} {
		if p != nil {
			p.Release()
		}
	}
	for _, g := range []*wgpu.BindGroup{
		s.bgClearGrid, s.bgP2G1, s.bgP2G2Group0, s.bgP2G2Group1, s.bgGridUpdate, s.bgVorticity,
		s.bgG2PGroup0, s.bgG2PGroup1, s.bgG2PGroup2, s.bgG2PGroup3,
	} {
		if g != nil {
			g.Release()
		}
	}
}
