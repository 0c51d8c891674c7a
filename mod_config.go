package mpm

import "github.com/flowfield/mpm/internal/config"

// ConfigRequests is the host-writable queue a UI, CLI, or network command
// appends a whole new EngineConfig to (spec §6.4's runtime-tunable
// surface). ConfigModule is the only thing that drains it, and only one
// EngineConfig is ever live: config.Resolved, the typed form every other
// system reads.
type ConfigRequests struct {
	Pending []config.EngineConfig
}

func (r *ConfigRequests) Apply(cfg config.EngineConfig) {
	r.Pending = append(r.Pending, cfg)
}

// ConfigAuthored keeps the last-applied authored EngineConfig around so the
// next reconfigure has something to diff against (config.Resolved has
// already thrown away the string form Diff compares).
type ConfigAuthored struct {
	Current config.EngineConfig
}

// ConfigModule owns the live config.Resolved resource and applies queued
// reconfigures in Prelude, ahead of every module that reads it this frame.
// Grounded on the teacher's resource-module shape, generalized to own a
// mutable shared resource instead of a fixed one; the diff-before-apply
// step is SPEC_FULL.md §4's "config diffing" supplement, so a reconfigure that only
// touches, say, macroTargets doesn't get logged as though boundaryShape
// changed too.
type ConfigModule struct {
	Initial  config.EngineConfig
	Resolved config.Resolved
}

func (m ConfigModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(configSystem).
			InStage(Prelude).
			RunAlways(),
	)
	resolved := m.Resolved
	cmd.AddResources(
		&ConfigRequests{},
		&ConfigAuthored{Current: m.Initial},
		&resolved,
	)
}

func configSystem(requests *ConfigRequests, authored *ConfigAuthored, resolved *config.Resolved, logger *DefaultLogger) {
	if len(requests.Pending) == 0 {
		return
	}
	pending := requests.Pending
	requests.Pending = nil

	for _, next := range pending {
		changed := authored.Current.Diff(next)
		if len(changed) == 0 {
			continue
		}
		r, err := next.Resolve()
		if err != nil {
			logger.Errorf("config: reconfigure rejected: %v", err)
			continue
		}
		logger.Infof("config: applied change to %v", changed)
		authored.Current = next
		*resolved = r
	}
}
