package mpm

import (
	"os"

	"github.com/flowfield/mpm/internal/boundary"
	"github.com/flowfield/mpm/internal/config"
	"github.com/flowfield/mpm/internal/core"
	"github.com/flowfield/mpm/internal/fields"
	"github.com/flowfield/mpm/internal/kinetic"
	"github.com/flowfield/mpm/internal/preset"
)

// PresetRequestKind distinguishes a save from a load in the pending queue.
type PresetRequestKind int

const (
	PresetSaveRequest PresetRequestKind = iota
	PresetLoadRequest
)

// PresetRequest is one host-issued save/load command (spec §6.3). Requests
// queue up during the frame and drain in Finale, after every other module
// has settled this frame's state.
type PresetRequest struct {
	Kind PresetRequestKind
	Path string
}

// PresetRequests is the resource a host (UI, CLI, network command) appends
// to; PresetModule owns draining it.
type PresetRequests struct {
	Pending []PresetRequest
	LastErr error
}

func (r *PresetRequests) Save(path string) { r.Pending = append(r.Pending, PresetRequest{Kind: PresetSaveRequest, Path: path}) }
func (r *PresetRequests) Load(path string) { r.Pending = append(r.Pending, PresetRequest{Kind: PresetLoadRequest, Path: path}) }

// PresetModule implements spec §6.3's scene-preset round trip, grounded on
// the teacher's mod_presets.go SavePreset/LoadPreset pair: query live ECS
// components directly rather than trusting a cached snapshot, walk them
// into a plain serializable struct, and go through os.ReadFile/WriteFile
// the same way the teacher does for its own preset format.
type PresetModule struct{}

func (m PresetModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(presetSystem).
			InStage(Finale).
			RunAlways(),
	)
	cmd.AddResources(&PresetRequests{})
}

func presetSystem(
	cmd *Commands,
	requests *PresetRequests,
	materials *MaterialTable,
	boundaryState *BoundaryState,
	cfg *config.Resolved,
	pool *core.Pool,
	mapper *kinetic.Mapper,
	t *Time,
	logger *DefaultLogger,
) {
	if len(requests.Pending) == 0 {
		return
	}
	pending := requests.Pending
	requests.Pending = nil

	for _, req := range pending {
		var err error
		switch req.Kind {
		case PresetSaveRequest:
			err = savePreset(cmd, req.Path, materials, boundaryState, cfg, pool, mapper, t)
		case PresetLoadRequest:
			err = loadPreset(cmd, req.Path, materials, boundaryState, mapper)
		}
		if err != nil {
			requests.LastErr = err
			logger.Errorf("preset: %v", err)
		}
	}
}

func savePreset(
	cmd *Commands,
	path string,
	materials *MaterialTable,
	boundaryState *BoundaryState,
	cfg *config.Resolved,
	pool *core.Pool,
	mapper *kinetic.Mapper,
	t *Time,
) error {
	var liveFields []fields.Field
	MakeQuery1[fields.Field](cmd).Map(func(eid EntityId, f *fields.Field) bool {
		liveFields = append(liveFields, *f)
		return true
	})
	var liveEmitters []fields.Emitter
	MakeQuery1[fields.Emitter](cmd).Map(func(eid EntityId, e *fields.Emitter) bool {
		liveEmitters = append(liveEmitters, *e)
		return true
	})

	p := preset.Preset{
		Version: 1,
		Simulation: preset.SimulationSection{
			GridSize:         boundaryState.Dims.X,
			Dt:               float32(t.Dt),
			TransferMode:     cfg.TransferMode.String(),
			FlipRatio:        cfg.FlipRatio,
			VorticityEnabled: cfg.VorticityEnabled,
			VorticityEpsilon: cfg.VorticityEpsilon,
			SparseGrid:       cfg.SparseGrid,
			AdaptiveTimestep: cfg.AdaptiveTimestep,
			CFLTarget:        cfg.CFLTarget,
			GravityMode:      cfg.GravityMode.String(),
		},
		Particles: preset.ParticlesSection{
			Count:           pool.LiveCount(),
			DefaultMaterial: 0,
		},
		Materials:   preset.FromMaterialTable(materials.Table),
		ForceFields: preset.FromFields(liveFields),
		Emitters:    preset.FromEmitters(liveEmitters),
		Boundaries:  preset.FromBoundary(boundaryState.Params),
		AudioMacros: mapper.Macros.Current(),
		Metadata:    preset.NewMetadata(path),
	}

	data, err := preset.Export(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func loadPreset(
	cmd *Commands,
	path string,
	materials *MaterialTable,
	boundaryState *BoundaryState,
	mapper *kinetic.Mapper,
) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	p, err := preset.Import(data)
	if err != nil {
		return err
	}

	if len(p.Materials) > 0 {
		materials.Table = preset.ApplyMaterials(p.Materials)
	}

	MakeQuery1[fields.Field](cmd).Map(func(eid EntityId, f *fields.Field) bool {
		cmd.RemoveEntity(eid)
		return true
	})
	MakeQuery1[fields.Emitter](cmd).Map(func(eid EntityId, e *fields.Emitter) bool {
		cmd.RemoveEntity(eid)
		return true
	})

	liveFields, err := preset.ApplyFields(p.ForceFields)
	if err != nil {
		return err
	}
	for _, f := range liveFields {
		field := f
		cmd.AddEntity(&field)
	}

	liveEmitters, err := preset.ApplyEmitters(p.Emitters)
	if err != nil {
		return err
	}
	for _, e := range liveEmitters {
		emitter := e
		cmd.AddEntity(&emitter)
	}

	base := boundary.DefaultParams(boundaryState.Dims.X)
	applied, err := preset.ApplyBoundary(p.Boundaries, base)
	if err != nil {
		return err
	}
	boundaryState.Params = applied

	mapper.Macros.SetTarget(p.AudioMacros)
	return nil
}
