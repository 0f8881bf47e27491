package renderer

import (
	"github.com/Carmen-Shannon/sturdy-go/engine/geometry"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithBackend replaces the backend selected by the backend type. Used to run the renderer
// against an alternative GPU API implementation.
//
// Parameters:
//   - backend: the Backend to attach with
//
// Returns:
//   - RendererBuilderOption: a function that applies the backend option to a renderer
func WithBackend(backend Backend) RendererBuilderOption {
	return func(r *renderer) {
		r.backend = backend
	}
}

// WithPresentMode sets the presentation preference resolved against the surface on attach.
//
// Parameters:
//   - mode: the PresentMode to use (LowLatency, VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithShaders loads the vertex and fragment stages from WGSL files instead of the built-in shaders.
// The vertex stage must declare the geometry.Vertex and geometry.InstanceRecord locations.
//
// Parameters:
//   - vertexPath: the WGSL vertex stage file
//   - fragmentPath: the WGSL fragment stage file
//
// Returns:
//   - RendererBuilderOption: a function that applies the shaders option to a renderer
func WithShaders(vertexPath, fragmentPath string) RendererBuilderOption {
	return func(r *renderer) {
		r.pipelineFactory = ShaderFilePipelineFactory(vertexPath, fragmentPath)
	}
}

// WithPipelineFactory replaces how the render pipeline is compiled.
//
// Parameters:
//   - factory: the PipelineFactory to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the pipeline factory option to a renderer
func WithPipelineFactory(factory PipelineFactory) RendererBuilderOption {
	return func(r *renderer) {
		r.pipelineFactory = factory
	}
}

// WithMesh sets the mesh drawn every frame. Defaults to geometry.SampleQuad.
//
// Parameters:
//   - label: debug label for the mesh buffers
//   - mesh: the mesh to draw
//
// Returns:
//   - RendererBuilderOption: a function that applies the mesh option to a renderer
func WithMesh(label string, mesh geometry.Mesh) RendererBuilderOption {
	return func(r *renderer) {
		r.asset = geometry.NewAsset(label, mesh)
	}
}

// WithClearColor sets the background color of every frame. Defaults to DefaultClearColor.
//
// Parameters:
//   - color: the clear color
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color option to a renderer
func WithClearColor(color wgpu.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = color
	}
}

// WithMaxFramesInFlight sets how many frames the surface may queue ahead of the display.
// Values below 1 keep the default.
//
// Parameters:
//   - n: the frame latency
//
// Returns:
//   - RendererBuilderOption: a function that applies the frame latency option to a renderer
func WithMaxFramesInFlight(n int) RendererBuilderOption {
	return func(r *renderer) {
		if n >= 1 {
			r.maxFramesInFlight = uint32(n)
		}
	}
}
