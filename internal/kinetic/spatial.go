package kinetic

import "github.com/flowfield/mpm/internal/core"

// spatialCacheSeconds is how long a computed depth-layer modulation is
// reused before recomputing (spec §4.H.3 "cached for 100 ms").
const spatialCacheSeconds = 0.1

// SpatialModulation is the per-particle output of the spatial composer: the
// multipliers and additive camera-aware forces that the final drive record
// folds in (spec §4.H.3).
type SpatialModulation struct {
	Layer             core.DepthLayer
	ForceMul, SpeedMul float32
	Brightness, Saturation, Scale, Opacity float32
	ExtraForce        [3]float32
}

// Composer caches depth-layer modulations per particle for spatialCacheSeconds.
type Composer struct {
	cacheAge []float32
	cached   []SpatialModulation
}

func NewComposer(n int) *Composer {
	return &Composer{cacheAge: make([]float32, n), cached: make([]SpatialModulation, n)}
}

// CameraState bundles the inputs the spatial composer needs from the host
// renderer each frame (spec §4.H.3 "camera-aware dynamics").
type CameraState struct {
	NearPlane, FarPlane float32
	StereoBalance       float32 // from AudioFeatures, drives lateral force
	TonalRegister       float32 // bass-to-treble balance in [-1,1], drives vertical force
	AccentPulse         float32 // 1 on an Accent/Release gesture edge, else 0
}

// Compute returns the modulation for particle i at camera-space depth
// (0=near,1=far), recomputing only when the per-particle cache has aged
// past spatialCacheSeconds.
func (c *Composer) Compute(i int, depth float32, cam CameraState, dt float32) SpatialModulation {
	if i >= len(c.cacheAge) {
		return computeModulation(depth, cam)
	}
	c.cacheAge[i] += dt
	if c.cacheAge[i] < spatialCacheSeconds {
		return c.cached[i]
	}
	c.cacheAge[i] = 0
	mod := computeModulation(depth, cam)
	c.cached[i] = mod
	return mod
}

func computeModulation(depth float32, cam CameraState) SpatialModulation {
	layer := core.DepthLayerFor(depth)
	scale := core.DefaultLayerScales[layer]

	// Frequency bias: treble pushes toward Foreground, bass toward
	// Background (spec §4.H.3); expressed as a depth-dependent weighting on
	// TonalRegister, not a separate scalar, so it folds directly into the
	// existing force multiplier.
	freqBias := float32(1)
	switch layer {
	case core.LayerForeground:
		freqBias += clampF(cam.TonalRegister, 0, 1) * 0.3
	case core.LayerBackground:
		freqBias += clampF(-cam.TonalRegister, 0, 1) * 0.3
	}

	lateral := cam.StereoBalance * 0.5
	vertical := cam.TonalRegister * 0.3
	approach := cam.AccentPulse * (1 - depth) * 0.4

	return SpatialModulation{
		Layer:      layer,
		ForceMul:   scale.Force * freqBias,
		SpeedMul:   scale.Speed,
		Brightness: scale.Brightness,
		Saturation: scale.Saturation,
		Scale:      scale.Scale,
		Opacity:    scale.Opacity,
		ExtraForce: [3]float32{lateral, vertical, approach},
	}
}
