package engine

import (
	"time"

	"github.com/Carmen-Shannon/sturdy-go/engine/geometry"
	"github.com/Carmen-Shannon/sturdy-go/engine/profiler"
	"github.com/Carmen-Shannon/sturdy-go/engine/renderer"
	"github.com/Carmen-Shannon/sturdy-go/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfilingInterval sets how often profiling stats are logged.
//
// Parameters:
//   - interval: the reporting interval (default 1s)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfilingInterval(interval time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = profiler.NewProfiler(interval)
	}
}

// WithWindow sets the window the engine attaches to and takes events from.
//
// Parameters:
//   - w: a spawned Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets a custom configured renderer rather than the default WebGPU quad renderer.
//
// Parameters:
//   - r: a Renderer that has not been attached yet
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithInstanceCallback registers the function producing the instances drawn each frame.
//
// Parameters:
//   - callback: function receiving the delta time in seconds and returning the frame's instances
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithInstanceCallback(callback func(deltaTime float32) []geometry.InstanceRecord) EngineBuilderOption {
	return func(e *engine) {
		e.instanceCallback = callback
	}
}

// WithFrameCallback registers a function told the outcome of every frame.
//
// Parameters:
//   - callback: function receiving the frame's status
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameCallback(callback func(status renderer.FrameStatus)) EngineBuilderOption {
	return func(e *engine) {
		e.frameCallback = callback
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.renderFrameLimit = frameDuration(fps)
	}
}
