package renderer

import (
	"github.com/Carmen-Shannon/sturdy-go/engine/geometry"
	"github.com/Carmen-Shannon/sturdy-go/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped

	// PresentModeLowLatency replaces the queued frame with the newest one when the surface
	// supports it, falling back to VSync otherwise. This is the default.
	PresentModeLowLatency
)

// DefaultMaxFramesInFlight is the number of frames the surface may queue ahead of the display.
const DefaultMaxFramesInFlight = 2

// WindowHandle is anything a presentable surface can be created from.
type WindowHandle interface {
	// SurfaceDescriptor returns the platform-specific descriptor for WebGPU surface creation.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the surface descriptor
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
}

// AdapterOptions select the physical GPU.
type AdapterOptions struct {
	PowerPreference      wgpu.PowerPreference
	ForceFallbackAdapter bool
}

// SurfaceCapabilities lists what a surface supports on a given adapter, in preference order.
type SurfaceCapabilities struct {
	Formats      []wgpu.TextureFormat
	PresentModes []wgpu.PresentMode
	AlphaModes   []wgpu.CompositeAlphaMode
}

// SurfaceConfig is the configuration applied to a surface.
type SurfaceConfig struct {
	Format            wgpu.TextureFormat
	Width             uint32
	Height            uint32
	PresentMode       wgpu.PresentMode
	AlphaMode         wgpu.CompositeAlphaMode
	MaxFramesInFlight uint32
}

// Backend is the entry point of a GPU API. It creates surfaces and finds adapters for them.
type Backend interface {
	// CreateSurface creates a presentable surface bound to a window.
	//
	// Parameters:
	//   - handle: the window to present into
	//
	// Returns:
	//   - Surface: the unconfigured surface
	//   - error: an error if the platform refused the handle
	CreateSurface(handle WindowHandle) (Surface, error)

	// RequestAdapter finds an adapter able to present to surface.
	//
	// Parameters:
	//   - surface: the surface the adapter must be compatible with
	//   - opts: the adapter selection options
	//
	// Returns:
	//   - Adapter: the adapter
	//   - error: an error if no compatible adapter exists
	RequestAdapter(surface Surface, opts AdapterOptions) (Adapter, error)
}

// Adapter is a physical GPU.
type Adapter interface {
	// RequestDevice opens a logical device and its submission queue.
	//
	// Parameters:
	//   - label: debug label for the device
	//
	// Returns:
	//   - Device: the logical device
	//   - Queue: the device's queue
	//   - error: an error if the adapter refused the request
	RequestDevice(label string) (Device, Queue, error)

	Release()
}

// Surface is a presentable target bound to a window.
type Surface interface {
	// Capabilities reports the formats and modes the surface supports on adapter.
	Capabilities(adapter Adapter) SurfaceCapabilities

	// Configure (re)allocates the surface's textures.
	Configure(adapter Adapter, device Device, config SurfaceConfig)

	// AcquireTexture returns the next texture to render into.
	//
	// Returns:
	//   - SurfaceTexture: the acquired texture
	//   - error: wrapping common.ErrSurfaceAcquireTransient when reconfiguring recovers, common.ErrSurfaceAcquireFatal otherwise
	AcquireTexture() (SurfaceTexture, error)

	// Present queues the most recently acquired texture for display.
	Present()

	Release()
}

// SurfaceTexture is a texture acquired from a Surface for a single frame.
type SurfaceTexture interface {
	Release()
}

// Device is a logical GPU device. It allocates buffers, compiles pipelines and records commands.
type Device interface {
	geometry.BufferAllocator
	pipeline.Compiler

	// CreateCommandEncoder starts recording a command buffer.
	//
	// Parameters:
	//   - label: debug label for the encoder
	//
	// Returns:
	//   - CommandEncoder: the encoder
	//   - error: an error if the device is lost
	CreateCommandEncoder(label string) (CommandEncoder, error)

	Release()
}

// Queue submits recorded command buffers to the device.
type Queue interface {
	Submit(commands ...CommandBuffer)
	Release()
}

// CommandEncoder records render passes into a command buffer.
type CommandEncoder interface {
	// BeginRenderPass begins a pass whose single color attachment is target, cleared to clear.
	BeginRenderPass(target SurfaceTexture, clear wgpu.Color) (RenderPass, error)

	// Finish ends recording.
	Finish() (CommandBuffer, error)

	Release()
}

// RenderPass records draw state and draw calls.
type RenderPass interface {
	SetPipeline(p pipeline.Handle)
	SetVertexBuffer(slot uint32, buffer geometry.Buffer)
	SetIndexBuffer(buffer geometry.Buffer)
	DrawIndexed(indexCount, instanceCount uint32)
	End()
}

// CommandBuffer is a finished recording ready for submission.
type CommandBuffer interface {
	Release()
}
