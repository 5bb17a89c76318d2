//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Embedded WGSL shader sources.

//go:embed shaders/blur_accumulate.wgsl
var blurAccumulateShaderSource string

//go:embed shaders/blur_resolve.wgsl
var blurResolveShaderSource string

//go:embed shaders/combine.wgsl
var combineShaderSource string

// workgroupSize is the side of the 8x8 workgroup declared by every shader.
const workgroupSize = 8

// compileShaderToSPIRV compiles WGSL source to SPIR-V words.
func compileShaderToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile shader: SPIR-V length %d is not word aligned", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return spirvCode, nil
}

// computeProgram is one compiled compute shader with its layouts.
type computeProgram struct {
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline
}

// programSpec describes a computeProgram to build.
type programSpec struct {
	label    string
	source   string
	bindings []gputypes.BufferBindingType
}

var (
	blurAccumulateProgram = programSpec{
		label:  "blur_accumulate",
		source: blurAccumulateShaderSource,
		bindings: []gputypes.BufferBindingType{
			gputypes.BufferBindingTypeUniform,
			gputypes.BufferBindingTypeReadOnlyStorage,
			gputypes.BufferBindingTypeStorage,
		},
	}
	blurResolveProgram = programSpec{
		label:  "blur_resolve",
		source: blurResolveShaderSource,
		bindings: []gputypes.BufferBindingType{
			gputypes.BufferBindingTypeUniform,
			gputypes.BufferBindingTypeReadOnlyStorage,
			gputypes.BufferBindingTypeStorage,
		},
	}
	combineProgram = programSpec{
		label:  "combine",
		source: combineShaderSource,
		bindings: []gputypes.BufferBindingType{
			gputypes.BufferBindingTypeUniform,
			gputypes.BufferBindingTypeReadOnlyStorage,
			gputypes.BufferBindingTypeReadOnlyStorage,
			gputypes.BufferBindingTypeStorage,
		},
	}
)

// createProgram compiles spec and builds its compute pipeline on device.
// On error every partially created object is destroyed.
func createProgram(device hal.Device, spec programSpec) (*computeProgram, error) {
	spirv, err := compileShaderToSPIRV(spec.source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", spec.label, err)
	}

	p := &computeProgram{}
	p.shader, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  spec.label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s shader module: %w", spec.label, err)
	}

	entries := make([]gputypes.BindGroupLayoutEntry, len(spec.bindings))
	for i, typ := range spec.bindings {
		entries[i] = gputypes.BindGroupLayoutEntry{
			Binding:    uint32(i), //nolint:gosec // binding count is tiny
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: typ},
		}
	}
	p.bindLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   spec.label + "_bind_layout",
		Entries: entries,
	})
	if err != nil {
		p.destroy(device)
		return nil, fmt.Errorf("create %s bind group layout: %w", spec.label, err)
	}

	p.pipeLayout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            spec.label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		p.destroy(device)
		return nil, fmt.Errorf("create %s pipeline layout: %w", spec.label, err)
	}

	p.pipeline, err = device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   spec.label + "_pipeline",
		Layout:  p.pipeLayout,
		Compute: hal.ComputeState{Module: p.shader, EntryPoint: "main"},
	})
	if err != nil {
		p.destroy(device)
		return nil, fmt.Errorf("create %s compute pipeline: %w", spec.label, err)
	}

	return p, nil
}

// destroy releases the program objects in reverse creation order.
func (p *computeProgram) destroy(device hal.Device) {
	if p == nil || device == nil {
		return
	}
	if p.pipeline != nil {
		device.DestroyComputePipeline(p.pipeline)
	}
	if p.pipeLayout != nil {
		device.DestroyPipelineLayout(p.pipeLayout)
	}
	if p.bindLayout != nil {
		device.DestroyBindGroupLayout(p.bindLayout)
	}
	if p.shader != nil {
		device.DestroyShaderModule(p.shader)
	}
}
