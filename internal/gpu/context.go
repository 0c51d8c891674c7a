// Package gpu owns the WebGPU device and the compute pipelines for the five
// MLS-MPM kernels plus the vorticity-curl pass (spec §4.B). It is grounded
// on the teacher's gpu_operations.go (instance/adapter/device bring-up) and
// voxelrt/rt/gpu/manager*.go (compute pipeline creation, bind groups,
// dispatch); unlike the teacher's render-focused manager it never touches a
// swapchain — the renderer surface is an external collaborator (spec §1).
package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Context is the headless compute device: instance -> adapter -> device ->
// queue, with no surface. A host embedding a renderer is expected to share
// its own wgpu.Device in that case; NewContext is for the common case of
// owning the device outright (tests, a CLI preview host).
type Context struct {
	instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
}

// NewContext requests a high-performance adapter and a device with no
// surface requirement (compute-only). Failure here is a ResourceError per
// spec §7 ("adapter lost") and is fatal to the session.
func NewContext() (*Context, error) {
	instance := wgpu.CreateInstance(nil)

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("gpu: request adapter: %w", err)
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:            "mpm-solver-device",
		RequiredFeatures: nil,
		RequiredLimits:   nil,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("gpu: request device: %w", err)
	}

	return &Context{
		instance: instance,
		Adapter:  adapter,
		Device:   device,
		Queue:    device.GetQueue(),
	}, nil
}

func (c *Context) Release() {
	if c.instance != nil {
		c.instance.Release()
	}
}

// createComputePipeline compiles a WGSL module and wraps one entry point in
// a pipeline, matching manager_compression.go's CreateCompressionPipeline.
func (c *Context) createComputePipeline(label, entryPoint, code string) (*wgpu.ComputePipeline, error) {
	shader, err := c.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: code},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: compile %s: %w", label, err)
	}
	defer shader.Release()

	pipeline, err := c.Device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: label,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     shader,
			EntryPoint: entryPoint,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create pipeline %s: %w", label, err)
	}
	return pipeline, nil
}

func (c *Context) createStorageBuffer(label string, size uint64, extraUsage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	buf, err := c.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc | extraUsage,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create buffer %s: %w", label, err)
	}
	return buf, nil
}

func (c *Context) createUniformBuffer(label string, size uint64) (*wgpu.Buffer, error) {
	buf, err := c.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create uniform %s: %w", label, err)
	}
	return buf, nil
}

func bindGroupEntryBuffer(binding uint32, buf *wgpu.Buffer) wgpu.BindGroupEntry {
	return wgpu.BindGroupEntry{Binding: binding, Buffer: buf, Size: wgpu.WholeSize}
}
