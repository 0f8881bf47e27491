package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/sturdy-go/common"
	"github.com/Carmen-Shannon/sturdy-go/engine/geometry"
	"github.com/Carmen-Shannon/sturdy-go/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// LifecycleState reports which variant a SurfaceLifecycle is in.
type LifecycleState int

const (
	// StateUninitialized is the state before the first successful Attach.
	StateUninitialized LifecycleState = iota

	// StateAttached holds a live device, queue, configured surface and pipeline.
	StateAttached

	// StateDetached is the state after Detach; every GPU resource has been released.
	StateDetached
)

func (s LifecycleState) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateAttached:
		return "Attached"
	case StateDetached:
		return "Detached"
	default:
		return fmt.Sprintf("LifecycleState(%d)", int(s))
	}
}

// PipelineFactory compiles the render pipeline for a surface format.
type PipelineFactory func(compiler pipeline.Compiler, format wgpu.TextureFormat) (pipeline.Pipeline, error)

// SurfaceState is the configuration of an attached surface.
type SurfaceState struct {
	Surface           Surface
	Format            wgpu.TextureFormat
	PresentMode       wgpu.PresentMode
	AlphaMode         wgpu.CompositeAlphaMode
	Width             uint32
	Height            uint32
	MaxFramesInFlight uint32
}

// LifecycleConfig holds what a SurfaceLifecycle needs to attach.
type LifecycleConfig struct {
	// PresentMode is the presentation preference resolved against the surface on attach.
	PresentMode PresentMode

	// ForceFallbackAdapter requests a software adapter.
	ForceFallbackAdapter bool

	// MaxFramesInFlight defaults to DefaultMaxFramesInFlight when zero.
	MaxFramesInFlight uint32

	// Pipeline compiles the render pipeline once the surface format is known.
	Pipeline PipelineFactory
}

// lifecycleState is the tagged variant behind SurfaceLifecycle.
type lifecycleState interface {
	tag() LifecycleState
}

type uninitializedState struct{}

type detachedState struct{}

// attachedState exclusively owns the GPU context, the surface, the pipeline and every
// mesh buffer derived from them.
type attachedState struct {
	adapter  Adapter
	device   Device
	queue    Queue
	surface  SurfaceState
	pipeline pipeline.Pipeline
	meshes   map[*geometry.Asset]*geometry.MeshBuffers
}

func (uninitializedState) tag() LifecycleState { return StateUninitialized }
func (detachedState) tag() LifecycleState      { return StateDetached }
func (*attachedState) tag() LifecycleState     { return StateAttached }

// surfaceLifecycle is the implementation of the SurfaceLifecycle interface.
type surfaceLifecycle struct {
	mu      *sync.Mutex
	backend Backend
	config  LifecycleConfig
	state   lifecycleState
}

// SurfaceLifecycle owns the GPU context and presentable surface of one window, moving
// between Uninitialized, Attached and Detached. Resize and render are only meaningful
// while Attached; callers serialize them with Attach and Detach.
type SurfaceLifecycle interface {
	// State reports the current variant.
	//
	// Returns:
	//   - LifecycleState: StateUninitialized, StateAttached or StateDetached
	State() LifecycleState

	// Attach creates the surface for handle, requests an adapter, device and queue, configures
	// the surface at the clamped size and builds the pipeline. On failure every resource acquired
	// so far is released and the state is unchanged.
	//
	// Parameters:
	//   - handle: the window to present into
	//   - width: the initial surface width in pixels, clamped to at least 1
	//   - height: the initial surface height in pixels, clamped to at least 1
	//
	// Returns:
	//   - error: common.ErrAlreadyAttached, common.ErrSurfaceUnavailable, common.ErrAdapterUnavailable,
	//     common.ErrDeviceRequestFailed or common.ErrPipelineBuildFailed
	Attach(handle WindowHandle, width, height int) error

	// Resize reconfigures the surface when the clamped size differs from the current one.
	// The pipeline is never rebuilt. No-op unless Attached.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// Reconfigure re-queries the surface capabilities and configures the surface at its last size,
	// rebuilding the pipeline only if the selected format changed. No-op unless Attached.
	//
	// Returns:
	//   - error: common.ErrAdapterUnavailable or common.ErrPipelineBuildFailed
	Reconfigure() error

	// Detach releases mesh buffers and the pipeline, then the surface, device, queue and adapter.
	// Idempotent; no-op unless Attached.
	Detach()

	// SurfaceState returns the configuration of the attached surface.
	//
	// Returns:
	//   - SurfaceState: the surface configuration
	//   - bool: false unless Attached
	SurfaceState() (SurfaceState, bool)

	// Pipeline returns the pipeline of the attached surface, or nil unless Attached.
	//
	// Returns:
	//   - pipeline.Pipeline: the current pipeline
	Pipeline() pipeline.Pipeline

	// attached returns the attached variant, or nil.
	attached() *attachedState
}

var _ SurfaceLifecycle = &surfaceLifecycle{}

// NewSurfaceLifecycle creates an Uninitialized lifecycle.
//
// Parameters:
//   - backend: the GPU API to attach with
//   - config: the attach configuration
//
// Returns:
//   - SurfaceLifecycle: the lifecycle
func NewSurfaceLifecycle(backend Backend, config LifecycleConfig) SurfaceLifecycle {
	if config.MaxFramesInFlight == 0 {
		config.MaxFramesInFlight = DefaultMaxFramesInFlight
	}
	return &surfaceLifecycle{
		mu:      &sync.Mutex{},
		backend: backend,
		config:  config,
		state:   uninitializedState{},
	}
}

// WithAttached attaches l, runs fn and detaches on every exit path, including a panic in fn.
//
// Parameters:
//   - l: the lifecycle to attach
//   - handle: the window to present into
//   - width: the initial surface width in pixels
//   - height: the initial surface height in pixels
//   - fn: the work to run while attached
//
// Returns:
//   - error: the attach error, or fn's error
func WithAttached(l SurfaceLifecycle, handle WindowHandle, width, height int, fn func() error) error {
	if err := l.Attach(handle, width, height); err != nil {
		return err
	}
	defer l.Detach()
	return fn()
}

func (l *surfaceLifecycle) State() LifecycleState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.tag()
}

func (l *surfaceLifecycle) Attach(handle WindowHandle, width, height int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.state.(*attachedState); ok {
		return common.ErrAlreadyAttached
	}

	surface, err := l.backend.CreateSurface(handle)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrSurfaceUnavailable, err)
	}

	adapter, err := l.backend.RequestAdapter(surface, AdapterOptions{
		PowerPreference:      wgpu.PowerPreferenceHighPerformance,
		ForceFallbackAdapter: l.config.ForceFallbackAdapter,
	})
	if err != nil {
		releaseContext(surface, nil, nil, nil)
		return fmt.Errorf("%w: %w", common.ErrAdapterUnavailable, err)
	}
	common.Logger().Info("adapter acquired", "fallback", l.config.ForceFallbackAdapter)

	device, queue, err := adapter.RequestDevice("Main Device")
	if err != nil {
		releaseContext(surface, nil, nil, adapter)
		return fmt.Errorf("%w: %w", common.ErrDeviceRequestFailed, err)
	}

	caps := surface.Capabilities(adapter)
	format, ok := SelectSurfaceFormat(caps.Formats)
	if !ok {
		releaseContext(surface, device, queue, adapter)
		return fmt.Errorf("%w: surface reports no formats for this adapter", common.ErrAdapterUnavailable)
	}

	st := &attachedState{
		adapter: adapter,
		device:  device,
		queue:   queue,
		surface: SurfaceState{
			Surface:           surface,
			Format:            format,
			PresentMode:       SelectPresentMode(caps.PresentModes, l.config.PresentMode),
			AlphaMode:         selectAlphaMode(caps.AlphaModes),
			Width:             common.ClampDimension(width),
			Height:            common.ClampDimension(height),
			MaxFramesInFlight: l.config.MaxFramesInFlight,
		},
		meshes: make(map[*geometry.Asset]*geometry.MeshBuffers),
	}
	st.configure()

	if l.config.Pipeline == nil {
		releaseContext(surface, device, queue, adapter)
		return fmt.Errorf("%w: no pipeline factory configured", common.ErrPipelineBuildFailed)
	}
	p, err := l.config.Pipeline(device, format)
	if err != nil {
		releaseContext(surface, device, queue, adapter)
		return fmt.Errorf("%w: %w", common.ErrPipelineBuildFailed, err)
	}
	st.pipeline = p

	l.state = st
	common.Logger().Info("surface attached",
		"width", st.surface.Width, "height", st.surface.Height,
		"format", format, "presentMode", st.surface.PresentMode)
	return nil
}

func (l *surfaceLifecycle) Resize(width, height int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.state.(*attachedState)
	if !ok {
		return
	}
	w, h := common.ClampDimension(width), common.ClampDimension(height)
	if w == st.surface.Width && h == st.surface.Height {
		return
	}
	st.surface.Width = w
	st.surface.Height = h
	st.configure()
	common.Logger().Debug("surface resized", "width", w, "height", h)
}

func (l *surfaceLifecycle) Reconfigure() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.state.(*attachedState)
	if !ok {
		return nil
	}

	caps := st.surface.Surface.Capabilities(st.adapter)
	format, ok := SelectSurfaceFormat(caps.Formats)
	if !ok {
		return fmt.Errorf("%w: surface reports no formats for this adapter", common.ErrAdapterUnavailable)
	}

	if format != st.surface.Format {
		p, err := pipeline.Rebuild(st.device, st.pipeline, format)
		if err != nil {
			return fmt.Errorf("%w: %w", common.ErrPipelineBuildFailed, err)
		}
		st.pipeline.Release()
		st.pipeline = p
		common.Logger().Debug("pipeline rebuilt for new surface format", "from", st.surface.Format, "to", format, "key", p.Key())
		st.surface.Format = format
	}
	st.surface.PresentMode = SelectPresentMode(caps.PresentModes, l.config.PresentMode)
	st.surface.AlphaMode = selectAlphaMode(caps.AlphaModes)
	st.configure()
	return nil
}

func (l *surfaceLifecycle) Detach() {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.state.(*attachedState)
	if !ok {
		return
	}
	for asset, mb := range st.meshes {
		mb.Release()
		delete(st.meshes, asset)
	}
	if st.pipeline != nil {
		st.pipeline.Release()
	}
	releaseContext(st.surface.Surface, st.device, st.queue, st.adapter)
	l.state = detachedState{}
	common.Logger().Info("surface detached")
}

func (l *surfaceLifecycle) SurfaceState() (SurfaceState, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.state.(*attachedState)
	if !ok {
		return SurfaceState{}, false
	}
	return st.surface, true
}

func (l *surfaceLifecycle) Pipeline() pipeline.Pipeline {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.state.(*attachedState)
	if !ok {
		return nil
	}
	return st.pipeline
}

func (l *surfaceLifecycle) attached() *attachedState {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, _ := l.state.(*attachedState)
	return st
}

// configure applies the current surface state.
func (st *attachedState) configure() {
	st.surface.Surface.Configure(st.adapter, st.device, SurfaceConfig{
		Format:            st.surface.Format,
		Width:             st.surface.Width,
		Height:            st.surface.Height,
		PresentMode:       st.surface.PresentMode,
		AlphaMode:         st.surface.AlphaMode,
		MaxFramesInFlight: st.surface.MaxFramesInFlight,
	})
	common.Logger().Debug("surface configured", "width", st.surface.Width, "height", st.surface.Height, "format", st.surface.Format)
}

// meshBuffers returns the buffers of asset on this device, uploading them on first use.
func (st *attachedState) meshBuffers(asset *geometry.Asset) (*geometry.MeshBuffers, error) {
	if mb, ok := st.meshes[asset]; ok {
		return mb, nil
	}
	mb, err := geometry.Upload(st.device, asset.Label(), asset.Mesh())
	if err != nil {
		return nil, err
	}
	st.meshes[asset] = mb
	return mb, nil
}

// releaseContext releases whatever part of a GPU context exists, surface first and adapter last.
func releaseContext(surface Surface, device Device, queue Queue, adapter Adapter) {
	if surface != nil {
		surface.Release()
	}
	if device != nil {
		device.Release()
	}
	if queue != nil {
		queue.Release()
	}
	if adapter != nil {
		adapter.Release()
	}
}
