package renderer

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/sturdy-go/common"
	"github.com/Carmen-Shannon/sturdy-go/engine/geometry"
	"github.com/Carmen-Shannon/sturdy-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/sturdy-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// defaultVertexSource draws each instance of a mesh with its transform, tinted by the instance color.
//
//go:embed assets/shaders/quad.vert.wgsl
var defaultVertexSource string

// defaultFragmentSource outputs the interpolated vertex color.
//
//go:embed assets/shaders/quad.frag.wgsl
var defaultFragmentSource string

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     Backend
	lifecycle   SurfaceLifecycle
	frames      FrameRenderer
	asset       *geometry.Asset

	// Pre-creation config collected from builder options
	pipelineFactory      PipelineFactory
	presentMode          PresentMode
	forceFallbackAdapter bool
	maxFramesInFlight    uint32
	clearColor           wgpu.Color
}

// Renderer draws every instance of one mesh into one window surface per frame.
//
// It combines a SurfaceLifecycle, which owns the GPU context, with a FrameRenderer, which
// records and presents frames. The backend is chosen by RendererBackendType and created lazily.
type Renderer interface {
	// Init creates the backend and the lifecycle. CreateSurface calls it when needed.
	//
	// Returns:
	//   - error: an error if the backend type is unknown
	Init() error

	// CreateSurface attaches the renderer to a window.
	//
	// Parameters:
	//   - handle: the window to present into
	//   - width: the initial surface width in pixels
	//   - height: the initial surface height in pixels
	//
	// Returns:
	//   - error: the attach error, see SurfaceLifecycle.Attach
	CreateSurface(handle WindowHandle, width, height int) error

	// Render draws one frame with the given instances.
	//
	// Parameters:
	//   - instances: one record per copy of the mesh
	//
	// Returns:
	//   - FrameStatus: what happened to the frame
	Render(instances []geometry.InstanceRecord) FrameStatus

	// Resize configures the surface for a new window size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// Detach releases every GPU resource. The renderer can be attached again afterwards.
	Detach()

	// State reports the lifecycle state, StateUninitialized before Init.
	//
	// Returns:
	//   - LifecycleState: the current state
	State() LifecycleState

	// Lifecycle returns the underlying lifecycle, or nil before Init.
	//
	// Returns:
	//   - SurfaceLifecycle: the lifecycle
	Lifecycle() SurfaceLifecycle

	// Asset returns the mesh drawn every frame.
	//
	// Returns:
	//   - *geometry.Asset: the mesh asset
	Asset() *geometry.Asset
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer for the specified backend type. No GPU work happens until
// Init or CreateSurface is called. By default the renderer draws geometry.SampleQuad with the
// built-in shaders and prefers low-latency presentation.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:                &sync.Mutex{},
		backendType:       backendType,
		presentMode:       PresentModeLowLatency,
		maxFramesInFlight: DefaultMaxFramesInFlight,
		clearColor:        DefaultClearColor,
	}
	for _, opt := range options {
		opt(r)
	}
	if r.asset == nil {
		r.asset = geometry.NewAsset("Quad", geometry.SampleQuad())
	}
	if r.pipelineFactory == nil {
		r.pipelineFactory = ShaderSourcePipelineFactory("Quad", defaultVertexSource, defaultFragmentSource)
	}
	r.frames = NewFrameRenderer(r.clearColor)
	return r
}

// ShaderFilePipelineFactory compiles pipelines from two WGSL files for geometry.Vertex and
// geometry.InstanceRecord buffers. Files are read again on every compile.
//
// Parameters:
//   - vertexPath: the WGSL vertex stage file
//   - fragmentPath: the WGSL fragment stage file
//   - opts: options overriding the fixed render state
//
// Returns:
//   - PipelineFactory: the factory
func ShaderFilePipelineFactory(vertexPath, fragmentPath string, opts ...pipeline.PipelineBuilderOption) PipelineFactory {
	return func(compiler pipeline.Compiler, format wgpu.TextureFormat) (pipeline.Pipeline, error) {
		return pipeline.Build(compiler, format, geometry.VertexLayout(), geometry.InstanceLayout(), vertexPath, fragmentPath, opts...)
	}
}

// ShaderSourcePipelineFactory compiles pipelines from in-memory WGSL for geometry.Vertex and
// geometry.InstanceRecord buffers.
//
// Parameters:
//   - label: the pipeline label and shader key prefix
//   - vertexSource: the WGSL vertex stage
//   - fragmentSource: the WGSL fragment stage
//   - opts: options overriding the fixed render state
//
// Returns:
//   - PipelineFactory: the factory
func ShaderSourcePipelineFactory(label, vertexSource, fragmentSource string, opts ...pipeline.PipelineBuilderOption) PipelineFactory {
	return func(compiler pipeline.Compiler, format wgpu.TextureFormat) (pipeline.Pipeline, error) {
		vs, err := shader.Parse(label+".vert", shader.ShaderTypeVertex, vertexSource)
		if err != nil {
			return nil, err
		}
		fs, err := shader.Parse(label+".frag", shader.ShaderTypeFragment, fragmentSource)
		if err != nil {
			return nil, err
		}
		all := append([]pipeline.PipelineBuilderOption{pipeline.WithLabel(label + " Pipeline")}, opts...)
		return pipeline.Compile(compiler, format, vs, fs, geometry.VertexLayout(), geometry.InstanceLayout(), all...)
	}
}

func (r *renderer) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lifecycle != nil {
		return nil
	}
	if r.backend == nil {
		switch r.backendType {
		case BackendTypeWGPU:
			r.backend = newWGPUBackend()
		default:
			return fmt.Errorf("unknown renderer backend type %d", r.backendType)
		}
	}
	r.lifecycle = NewSurfaceLifecycle(r.backend, LifecycleConfig{
		PresentMode:          r.presentMode,
		ForceFallbackAdapter: r.forceFallbackAdapter,
		MaxFramesInFlight:    r.maxFramesInFlight,
		Pipeline:             r.pipelineFactory,
	})
	return nil
}

func (r *renderer) CreateSurface(handle WindowHandle, width, height int) error {
	if err := r.Init(); err != nil {
		return err
	}
	if err := r.lifecycle.Attach(handle, width, height); err != nil {
		common.Logger().Error("surface attach failed", "error", err)
		return err
	}
	return nil
}

func (r *renderer) Render(instances []geometry.InstanceRecord) FrameStatus {
	if r.lifecycle == nil {
		return FrameIdle
	}
	return r.frames.RenderFrame(r.lifecycle, r.asset, instances)
}

func (r *renderer) Resize(width, height int) {
	if r.lifecycle == nil {
		return
	}
	r.lifecycle.Resize(width, height)
}

func (r *renderer) Detach() {
	if r.lifecycle == nil {
		return
	}
	r.lifecycle.Detach()
}

func (r *renderer) State() LifecycleState {
	if r.lifecycle == nil {
		return StateUninitialized
	}
	return r.lifecycle.State()
}

func (r *renderer) Lifecycle() SurfaceLifecycle {
	return r.lifecycle
}

func (r *renderer) Asset() *geometry.Asset {
	return r.asset
}
