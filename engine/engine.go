package engine

import (
	"errors"
	"time"

	"github.com/Carmen-Shannon/sturdy-go/common"
	"github.com/Carmen-Shannon/sturdy-go/engine/geometry"
	"github.com/Carmen-Shannon/sturdy-go/engine/profiler"
	"github.com/Carmen-Shannon/sturdy-go/engine/renderer"
	"github.com/Carmen-Shannon/sturdy-go/engine/window"
)

// ErrNoWindow is returned by Run when the engine was built without a window.
var ErrNoWindow = errors.New("engine has no window")

// engine implements the Engine interface.
// Routes window events to the renderer on the window's thread.
type engine struct {
	window   window.Window
	renderer renderer.Renderer

	profiler         *profiler.Profiler
	profilingEnabled bool

	instanceCallback func(deltaTime float32) []geometry.InstanceRecord
	frameCallback    func(status renderer.FrameStatus)

	lastFrame        time.Time
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point for the engine.
// It attaches the renderer to the window and drives one frame per window redraw.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer frames are drawn with.
	//
	// Returns:
	//   - renderer.Renderer: the renderer instance
	Renderer() renderer.Renderer

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetInstanceCallback registers the function producing the instances drawn each frame.
	// Without one, frames only clear the surface.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds and returning the frame's instances
	SetInstanceCallback(callback func(deltaTime float32) []geometry.InstanceRecord)

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run attaches the renderer to the window and processes window events until the window
	// closes. The renderer is detached on every exit path.
	//
	// Returns:
	//   - error: ErrNoWindow, or the attach error
	Run() error

	// Quit asks the window to close; Run returns after the current event.
	// Safe to call multiple times.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Without WithRenderer, a WebGPU renderer drawing the sample quad is created.
//
// Parameters:
//   - options: functional options for engine configuration (window, renderer, profiling, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		profiler:         profiler.NewProfiler(profiler.DefaultInterval),
		profilingEnabled: false,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.renderer == nil {
		e.renderer = renderer.NewRenderer(renderer.BackendTypeWGPU)
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Run() error {
	if e.window == nil {
		return ErrNoWindow
	}

	if err := e.renderer.CreateSurface(e.window, e.window.Width(), e.window.Height()); err != nil {
		common.Logger().Error("engine failed to attach renderer", "error", err)
		return err
	}
	defer e.renderer.Detach()

	e.window.SetResizeCallback(e.handleResize)
	e.window.SetRedrawCallback(e.handleRedraw)
	e.window.SetCloseCallback(e.handleClose)

	e.lastFrame = time.Now()
	e.window.ProcessMessages()
	return nil
}

func (e *engine) Quit() {
	if e.window != nil {
		e.window.RequestClose()
	}
}

// handleResize forwards framebuffer sizes; zero sizes are clamped by the surface lifecycle.
func (e *engine) handleResize(width, height int) {
	e.renderer.Resize(width, height)
}

// handleClose releases the GPU resources before the window goes away.
func (e *engine) handleClose() {
	e.renderer.Detach()
}

// handleRedraw renders one frame with the instances for this delta time.
func (e *engine) handleRedraw() {
	now := time.Now()
	dt := float32(now.Sub(e.lastFrame).Seconds())
	e.lastFrame = now

	var instances []geometry.InstanceRecord
	if e.instanceCallback != nil {
		instances = e.instanceCallback(dt)
	}
	status := e.renderer.Render(instances)
	if e.frameCallback != nil {
		e.frameCallback(status)
	}

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}

	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - time.Since(now); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetInstanceCallback(callback func(deltaTime float32) []geometry.InstanceRecord) {
	e.instanceCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameDuration(fps)
}

// frameDuration converts a frame rate cap to a minimum frame duration; 0 when uncapped.
func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
