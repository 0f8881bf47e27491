package pipeline

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"github.com/Carmen-Shannon/sturdy-go/common"
	"github.com/Carmen-Shannon/sturdy-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// Handle is the backend object of a compiled render pipeline.
type Handle interface {
	// Release frees the backend pipeline.
	Release()
}

// Compiler turns a pipeline description into a backend render pipeline. A GPU device satisfies this.
type Compiler interface {
	// CreateRenderPipeline compiles the shader modules and fixed-function state of p
	// through an empty pipeline layout.
	//
	// Parameters:
	//   - p: the pipeline description to compile; its Handle is nil during the call
	//
	// Returns:
	//   - Handle: the compiled backend pipeline
	//   - error: an error if the backend rejects the description
	CreateRenderPipeline(p Pipeline) (Handle, error)
}

// pipeline is the implementation of the Pipeline interface.
// It is immutable once Build returns; a new surface format requires a new pipeline.
type pipeline struct {
	// label is the debug label passed to the backend
	label string
	// key is the hash of everything the compiled pipeline depends on
	key string
	// format is the single color target format, equal to the surface pixel format
	format wgpu.TextureFormat

	vertexShader, fragmentShader shader.Shader

	// vertexLayouts holds the buffer layouts in slot order: 0 per-vertex, 1 per-instance
	vertexLayouts []wgpu.VertexBufferLayout

	cullMode   wgpu.CullMode
	topology   wgpu.PrimitiveTopology
	frontFace  wgpu.FrontFace
	writeMask  wgpu.ColorWriteMask
	blendState *wgpu.BlendState

	handle Handle
}

// Pipeline is an immutable compiled render pipeline bound to one surface pixel format.
type Pipeline interface {
	// Label returns the debug label of the pipeline.
	//
	// Returns:
	//   - string: the label
	Label() string

	// Key returns the hash of the layouts, format, shader sources and fixed state.
	// Two pipelines with equal keys are interchangeable.
	//
	// Returns:
	//   - string: the pipeline key
	Key() string

	// Format returns the color target format the pipeline was compiled for.
	//
	// Returns:
	//   - wgpu.TextureFormat: the color target format
	Format() wgpu.TextureFormat

	// Shader retrieves the shader for the given stage.
	//
	// Parameters:
	//   - shaderType: the stage to retrieve
	//
	// Returns:
	//   - shader.Shader: the shader, or nil for an unknown stage
	Shader(shaderType shader.ShaderType) shader.Shader

	// VertexLayouts returns the vertex buffer layouts in slot order.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: slot 0 per-vertex, slot 1 per-instance
	VertexLayouts() []wgpu.VertexBufferLayout

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode for this pipeline
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology for this pipeline
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order for this pipeline
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask configured for this pipeline.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the color write mask for this pipeline
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state configured for this pipeline.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state for this pipeline, or nil to disable blending
	BlendState() *wgpu.BlendState

	// Handle returns the compiled backend pipeline.
	//
	// Returns:
	//   - Handle: the backend pipeline, or nil once released
	Handle() Handle

	// Release frees the backend pipeline. Safe to call more than once.
	Release()
}

var _ Pipeline = &pipeline{}

// newPipeline returns a pipeline description with the fixed render state defaults applied.
func newPipeline(format wgpu.TextureFormat, vs, fs shader.Shader, vertexLayout, instanceLayout wgpu.VertexBufferLayout, opts ...PipelineBuilderOption) *pipeline {
	p := &pipeline{
		label:          "Render Pipeline",
		format:         format,
		vertexShader:   vs,
		fragmentShader: fs,
		vertexLayouts:  []wgpu.VertexBufferLayout{vertexLayout, instanceLayout},
		cullMode:       wgpu.CullModeBack,
		topology:       wgpu.PrimitiveTopologyTriangleList,
		frontFace:      wgpu.FrontFaceCCW,
		writeMask:      wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.key = p.computeKey()
	return p
}

// Build loads both shader stages from disk and compiles a pipeline for the given surface format.
//
// Parameters:
//   - compiler: the device to compile on
//   - format: the surface pixel format used as the single color target
//   - vertexLayout: the per-vertex buffer layout bound at slot 0
//   - instanceLayout: the per-instance buffer layout bound at slot 1
//   - vertexPath: the WGSL vertex stage file
//   - fragmentPath: the WGSL fragment stage file
//   - opts: options overriding the fixed render state
//
// Returns:
//   - Pipeline: the compiled pipeline
//   - error: *common.ShaderLoadError when a file cannot be read, common.ErrPipelineCompileFailed otherwise
func Build(compiler Compiler, format wgpu.TextureFormat, vertexLayout, instanceLayout wgpu.VertexBufferLayout, vertexPath, fragmentPath string, opts ...PipelineBuilderOption) (Pipeline, error) {
	vs, err := shader.Load(vertexPath, shader.ShaderTypeVertex, vertexPath)
	if err != nil {
		return nil, err
	}
	fs, err := shader.Load(fragmentPath, shader.ShaderTypeFragment, fragmentPath)
	if err != nil {
		return nil, err
	}
	return Compile(compiler, format, vs, fs, vertexLayout, instanceLayout, opts...)
}

// Compile compiles a pipeline from already loaded shaders. Every attribute of both layouts
// must be declared by the vertex shader at the same location and with the same format.
//
// Parameters:
//   - compiler: the device to compile on
//   - format: the surface pixel format used as the single color target
//   - vs: the vertex stage
//   - fs: the fragment stage
//   - vertexLayout: the per-vertex buffer layout bound at slot 0
//   - instanceLayout: the per-instance buffer layout bound at slot 1
//   - opts: options overriding the fixed render state
//
// Returns:
//   - Pipeline: the compiled pipeline
//   - error: common.ErrPipelineCompileFailed if the stages do not match or the backend fails
func Compile(compiler Compiler, format wgpu.TextureFormat, vs, fs shader.Shader, vertexLayout, instanceLayout wgpu.VertexBufferLayout, opts ...PipelineBuilderOption) (Pipeline, error) {
	if vs == nil || vs.ShaderType() != shader.ShaderTypeVertex {
		return nil, fmt.Errorf("%w: missing vertex stage", common.ErrPipelineCompileFailed)
	}
	if fs == nil || fs.ShaderType() != shader.ShaderTypeFragment {
		return nil, fmt.Errorf("%w: missing fragment stage", common.ErrPipelineCompileFailed)
	}

	p := newPipeline(format, vs, fs, vertexLayout, instanceLayout, opts...)
	if err := p.checkInputs(); err != nil {
		return nil, err
	}

	handle, err := compiler.CreateRenderPipeline(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrPipelineCompileFailed, err)
	}
	p.handle = handle

	common.Logger().Debug("pipeline compiled", "label", p.label, "key", p.key, "format", format)
	return p, nil
}

// Rebuild compiles a copy of p for a different surface format, reusing its shaders and state.
// The old pipeline is left untouched; callers release it once the new one is in place.
//
// Parameters:
//   - compiler: the device to compile on
//   - p: the pipeline to copy
//   - format: the new color target format
//
// Returns:
//   - Pipeline: the compiled pipeline
//   - error: common.ErrPipelineCompileFailed if the backend fails
func Rebuild(compiler Compiler, p Pipeline, format wgpu.TextureFormat) (Pipeline, error) {
	layouts := p.VertexLayouts()
	return Compile(compiler, format,
		p.Shader(shader.ShaderTypeVertex), p.Shader(shader.ShaderTypeFragment),
		layouts[0], layouts[1],
		WithLabel(p.Label()),
		WithCullMode(p.CullMode()),
		WithTopology(p.Topology()),
		WithFrontFace(p.FrontFace()),
		WithWriteMask(p.WriteMask()),
		WithBlendState(p.BlendState()),
	)
}

// checkInputs verifies the vertex stage declares every location the buffer layouts feed.
func (p *pipeline) checkInputs() error {
	declared := p.vertexShader.VertexInputs()
	for slot, layout := range p.vertexLayouts {
		for _, attr := range layout.Attributes {
			got, ok := declared[attr.ShaderLocation]
			if !ok {
				return fmt.Errorf("%w: vertex shader %q does not declare @location(%d) fed by buffer slot %d",
					common.ErrPipelineCompileFailed, p.vertexShader.Key(), attr.ShaderLocation, slot)
			}
			if got != attr.Format {
				return fmt.Errorf("%w: vertex shader %q declares @location(%d) as %v, buffer slot %d provides %v",
					common.ErrPipelineCompileFailed, p.vertexShader.Key(), attr.ShaderLocation, got, slot, attr.Format)
			}
		}
	}
	return nil
}

// computeKey hashes everything the compiled pipeline depends on.
func (p *pipeline) computeKey() string {
	h := fnv.New64a()
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}

	put(uint64(p.format))
	for _, layout := range p.vertexLayouts {
		put(layout.ArrayStride)
		put(uint64(layout.StepMode))
		for _, attr := range layout.Attributes {
			put(uint64(attr.Format))
			put(attr.Offset)
			put(uint64(attr.ShaderLocation))
		}
	}
	for _, s := range []shader.Shader{p.vertexShader, p.fragmentShader} {
		h.Write([]byte(s.Source()))
		h.Write([]byte{0})
	}
	put(uint64(p.cullMode))
	put(uint64(p.topology))
	put(uint64(p.frontFace))
	put(uint64(p.writeMask))
	if p.blendState != nil {
		for _, c := range []wgpu.BlendComponent{p.blendState.Color, p.blendState.Alpha} {
			put(uint64(c.SrcFactor))
			put(uint64(c.DstFactor))
			put(uint64(c.Operation))
		}
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

func (p *pipeline) Label() string {
	return p.label
}

func (p *pipeline) Key() string {
	return p.key
}

func (p *pipeline) Format() wgpu.TextureFormat {
	return p.format
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) VertexLayouts() []wgpu.VertexBufferLayout {
	return p.vertexLayouts
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) Handle() Handle {
	return p.handle
}

func (p *pipeline) Release() {
	if p.handle != nil {
		p.handle.Release()
		p.handle = nil
	}
}
