package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// dontCare leaves a size limit unconstrained. Matches glfw.DontCare.
const dontCare = -1

// Window provides a platform window that a renderer can present into.
// Wraps platform-specific window implementations with a common interface.
type Window interface {
	// SetResizeCallback sets the function called when the framebuffer is resized.
	// Sizes are in pixels and are zero while the window is minimized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetCloseCallback sets the function called once when the window is asked to close,
	// by the platform, the Escape key or RequestClose.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetCloseCallback(callback func())

	// SetRedrawCallback sets the function called each message loop iteration while the window runs.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetRedrawCallback(callback func())

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// RequestClose stops the message loop after the current iteration and fires the close callback.
	RequestClose()

	// Close destroys the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls the redraw callback each iteration.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and event callbacks.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// maxWidth is the maximum allowed window width during resize; 0 leaves it unconstrained.
	maxWidth int

	// maxHeight is the maximum allowed window height during resize; 0 leaves it unconstrained.
	maxHeight int

	// minWidth is the minimum allowed window width during resize; 0 leaves it unconstrained.
	minWidth int

	// minHeight is the minimum allowed window height during resize; 0 leaves it unconstrained.
	minHeight int

	// width is the current framebuffer width in pixels.
	width int

	// height is the current framebuffer height in pixels.
	height int

	// closing is set once a close has been requested.
	closing bool

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	// onResize is called when the framebuffer is resized.
	onResize func(width, height int)

	// onClose is called once when the window is asked to close.
	onClose func()

	// onRedraw is called each iteration of the message loop.
	onRedraw func()
}

var _ Window = &engineWindow{}

// NewWindow creates and spawns a new Window with the specified options.
// The calling goroutine is locked to its OS thread; the message loop and every GPU call
// must run on it.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the spawned window
//   - error: error if the platform window cannot be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	runtime.LockOSThread()

	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	return w, nil
}

// newEngineWindow applies default values first, then each option in order.
func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:  "Default Window Title",
		width:  1280,
		height: 720,
	}
	for _, opt := range options {
		opt(w)
	}
	w.width, w.height = w.clampSize(w.width, w.height)
	return w
}

// sizeLimits returns the min and max size passed to the platform, dontCare where unset.
func (w *engineWindow) sizeLimits() (minWidth, minHeight, maxWidth, maxHeight int) {
	limit := func(v int) int {
		if v <= 0 {
			return dontCare
		}
		return v
	}
	minWidth, minHeight = limit(w.minWidth), limit(w.minHeight)
	maxWidth, maxHeight = limit(w.maxWidth), limit(w.maxHeight)
	if maxWidth != dontCare && minWidth > maxWidth {
		maxWidth = minWidth
	}
	if maxHeight != dontCare && minHeight > maxHeight {
		maxHeight = minHeight
	}
	return minWidth, minHeight, maxWidth, maxHeight
}

// clampSize fits an initial size into the configured limits.
func (w *engineWindow) clampSize(width, height int) (int, int) {
	minW, minH, maxW, maxH := w.sizeLimits()
	clamp := func(v, lo, hi int) int {
		if lo != dontCare && v < lo {
			v = lo
		}
		if hi != dontCare && v > hi {
			v = hi
		}
		return v
	}
	return clamp(width, minW, maxW), clamp(height, minH, maxH)
}

// handleResize records the framebuffer size and forwards it.
func (w *engineWindow) handleResize(width, height int) {
	w.width = width
	w.height = height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}

// handleClose fires the close callback the first time a close is requested.
func (w *engineWindow) handleClose() {
	if w.closing {
		return
	}
	w.closing = true
	if w.onClose != nil {
		w.onClose()
	}
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetCloseCallback(callback func()) {
	w.onClose = callback
}

func (w *engineWindow) SetRedrawCallback(callback func()) {
	w.onRedraw = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return !w.closing && platformIsRunningCheck(w)
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
	w.handleClose()
}

func (w *engineWindow) Close() error {
	w.handleClose()
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onRedraw != nil && !w.closing {
			w.onRedraw()
		}
	}
	w.handleClose()
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
